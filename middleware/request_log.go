package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/syntaxwanderer/syntexa-core-sub000/logger"
)

// RequestLogConfig HTTP 请求日志配置
type RequestLogConfig struct {
	// SkipPaths 跳过记录的路径列表（健康检查等高频端点）
	SkipPaths []string

	// Module 日志模块名
	Module string
}

// DefaultRequestLogConfig 默认请求日志配置
func DefaultRequestLogConfig() RequestLogConfig {
	return RequestLogConfig{
		SkipPaths: []string{},
		Module:    "http",
	}
}

// RequestLog Gin HTTP 请求日志中间件（结构化日志）
// 替代 gin.Logger()，按状态码分级：500+ Error，400+ Warn，其余 Info
// 通过 Context API 自动关联请求 ID
func RequestLog() gin.HandlerFunc {
	return RequestLogWithConfig(DefaultRequestLogConfig())
}

// RequestLogWithConfig 使用自定义配置创建请求日志中间件
func RequestLogWithConfig(cfg RequestLogConfig) gin.HandlerFunc {
	if cfg.Module == "" {
		cfg.Module = "http"
	}
	skipPathsMap := make(map[string]bool, len(cfg.SkipPaths))
	for _, path := range cfg.SkipPaths {
		skipPathsMap[path] = true
	}

	return func(c *gin.Context) {
		if skipPathsMap[c.Request.URL.Path] {
			c.Next()
			return
		}

		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", statusCode),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("body_size", c.Writer.Size()),
		}

		if errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String(); errorMessage != "" {
			fields = append(fields, zap.String("error", errorMessage))
		}

		ctx := c.Request.Context()
		log := logger.GetLogger(cfg.Module)
		switch {
		case statusCode >= 500:
			log.ErrorCtx(ctx, "HTTP 请求", fields...)
		case statusCode >= 400:
			log.WarnCtx(ctx, "HTTP 请求", fields...)
		default:
			log.InfoCtx(ctx, "HTTP 请求", fields...)
		}
	}
}
