// Package middleware 提供请求生命周期相关的 Gin 中间件
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/syntaxwanderer/syntexa-core-sub000/container"
	"github.com/syntaxwanderer/syntexa-core-sub000/httpx"
	"github.com/syntaxwanderer/syntexa-core-sub000/logger"
)

// ScopeKey gin.Context 中存放 RequestScope 的键
const ScopeKey = "syntexa.scope"

// RequestScope 请求作用域中间件
// 每请求派生一个 RequestScope，在业务 handler 运行前完成三要素 Set
// （request / session / cookiejar，同一 goroutine 内无悬挂点），
// 请求结束无条件 Reset（含 panic 路径），防止状态泄漏
func RequestScope(c *container.Container) gin.HandlerFunc {
	return func(gc *gin.Context) {
		scope := c.Scope()

		req := httpx.NewRequest(gc.Request)
		jar := httpx.NewCookieJar(gc.Request)
		sess := restoreSession(gc.Request)

		// 三要素全部就位后业务代码才会执行
		_ = scope.Set(container.IDRequest, req)
		_ = scope.Set(container.IDSession, sess)
		_ = scope.Set(container.IDCookieJar, jar)

		gc.Set(ScopeKey, scope)
		defer scope.Reset()

		// 新会话下发会话 Cookie
		if sess.IsNew() {
			jar.Set(&http.Cookie{
				Name:     httpx.SessionCookieName,
				Value:    sess.ID(),
				Path:     "/",
				HttpOnly: true,
			})
		}

		// 响应体一旦开始写出就无法再追加 Set-Cookie，
		// 包一层 Writer 在首次写出前刷入 jar 中的待写 Cookie
		fw := &cookieFlushWriter{ResponseWriter: gc.Writer, jar: jar}
		gc.Writer = fw

		// 请求 ID 透传给日志层
		gc.Request = gc.Request.WithContext(
			logger.WithRequestID(gc.Request.Context(), "request_id", req.ID()))
		gc.Header("X-Request-Id", req.ID())

		gc.Next()

		// 兜底：handler 未写任何响应体时（204 等）也要刷出 Cookie
		fw.flushCookies()
	}
}

// cookieFlushWriter 在首次写出响应前把待写 Cookie 刷入响应头
type cookieFlushWriter struct {
	gin.ResponseWriter
	jar     *httpx.CookieJar
	flushed bool
}

func (w *cookieFlushWriter) flushCookies() {
	if w.flushed {
		return
	}
	w.flushed = true
	for _, c := range w.jar.Pending() {
		http.SetCookie(w.ResponseWriter, c)
	}
}

func (w *cookieFlushWriter) WriteHeader(code int) {
	w.flushCookies()
	w.ResponseWriter.WriteHeader(code)
}

func (w *cookieFlushWriter) Write(b []byte) (int, error) {
	w.flushCookies()
	return w.ResponseWriter.Write(b)
}

func (w *cookieFlushWriter) WriteString(s string) (int, error) {
	w.flushCookies()
	return w.ResponseWriter.WriteString(s)
}

// restoreSession 从会话 Cookie 恢复会话，不存在则新建
func restoreSession(r *http.Request) *httpx.Session {
	if c, err := r.Cookie(httpx.SessionCookieName); err == nil && c.Value != "" {
		return httpx.NewSession(c.Value)
	}
	return httpx.NewSession("")
}

// ScopeFrom 从 gin.Context 取回当前请求的 RequestScope
// 未安装 RequestScope 中间件时返回 nil
func ScopeFrom(gc *gin.Context) *container.RequestScope {
	if v, ok := gc.Get(ScopeKey); ok {
		if scope, ok := v.(*container.RequestScope); ok {
			return scope
		}
	}
	return nil
}
