package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/syntaxwanderer/syntexa-core-sub000/errcode"
)

// Response 统一响应包络
type Response struct {
	Code int    `json:"code"`           // 0 = 成功，非 0 = 分层错误码
	Msg  string `json:"msg"`            // 提示信息
	Data any    `json:"data,omitempty"` // 业务数据
}

// Success 写出成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: "ok", Data: data})
}

// HandleError 统一错误处理
// LayeredError 按其 HTTP 状态与错误码写出；其余错误归入内部错误
func HandleError(c *gin.Context, err error) {
	le := errcode.FromError(err)
	if le == nil {
		Success(c, nil)
		return
	}
	body := Response{Code: le.Code(), Msg: le.Message()}
	if len(le.Data()) > 0 {
		body.Data = le.Data()
	}
	c.JSON(le.HTTPStatus(), body)
}

// NoRouteHandler 404 统一响应
func NoRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleError(c, errcode.ErrRouteNotFound)
	}
}

// NoMethodHandler 405 统一响应
func NoMethodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleError(c, errcode.ErrMethodNotAllowed)
	}
}
