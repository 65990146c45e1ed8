package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/syntaxwanderer/syntexa-core-sub000/errcode"
	"github.com/syntaxwanderer/syntexa-core-sub000/logger"
)

// Recovery Gin panic 恢复中间件（结构化日志）
// 替代 gin.Recovery()：记录完整堆栈，对客户端返回统一 500 响应，
// 不向客户端暴露堆栈信息
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				stack := string(debug.Stack())

				logger.GetLogger("http").ErrorCtx(c.Request.Context(), "Panic recovered",
					zap.Any("error", err),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.String("client_ip", c.ClientIP()),
					zap.String("stack", stack),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code": errcode.ErrInternal.Code(),
					"msg":  "Internal Server Error",
				})
			}
		}()

		c.Next()
	}
}
