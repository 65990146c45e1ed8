package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntaxwanderer/syntexa-core-sub000/container"
	"github.com/syntaxwanderer/syntexa-core-sub000/contract"
	"github.com/syntaxwanderer/syntexa-core-sub000/httpx"
)

// greeter 测试用契约与请求作用域实现

type greeter interface{ Greet() string }

type scopedGreeter struct {
	req *httpx.Request
}

func (g *scopedGreeter) Greet() string {
	if g.req == nil {
		return "anonymous"
	}
	return "req:" + g.req.ID()
}
func (g *scopedGreeter) RequestScoped()              {}
func (g *scopedGreeter) CloneScoped() any            { cp := *g; return &cp }
func (g *scopedGreeter) SetRequest(r *httpx.Request) { g.req = r }

func buildContainer(t *testing.T) *container.Container {
	t.Helper()
	set := contract.NewSet([]string{"core"}).
		Provide(contract.Iface[greeter](), &scopedGreeter{}, "core")
	c := container.New(set)
	require.NoError(t, c.Build())
	return c
}

func newEngine(c *container.Container) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestScope(c))
	return engine
}

// TestRequestScope_ContextAvailableToHandler 测试 handler 运行前三要素已就位
func TestRequestScope_ContextAvailableToHandler(t *testing.T) {
	c := buildContainer(t)
	engine := newEngine(c)

	var captured *container.RequestScope
	engine.GET("/greet", func(gc *gin.Context) {
		scope := ScopeFrom(gc)
		require.NotNil(t, scope)
		captured = scope

		// 三要素全部可解析
		for _, id := range []string{container.IDRequest, container.IDSession, container.IDCookieJar} {
			_, err := scope.Get(id)
			require.NoError(t, err, "id %q", id)
		}

		// 可变服务拿到本请求的上下文克隆
		g, err := scope.Get(container.IDOf[greeter]())
		require.NoError(t, err)
		gc.String(http.StatusOK, g.(greeter).Greet())
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/greet", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "req:")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	// 请求结束后作用域已 Reset
	_, err := captured.Get(container.IDRequest)
	assert.True(t, container.IsContextNotInitialized(err))
}

// TestRequestScope_NewSessionCookie 测试新会话自动下发会话 Cookie
func TestRequestScope_NewSessionCookie(t *testing.T) {
	c := buildContainer(t)
	engine := newEngine(c)
	engine.GET("/", func(gc *gin.Context) { gc.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, httpx.SessionCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

// TestRequestScope_RestoresSession 测试携带会话 Cookie 时恢复会话（不重复下发）
func TestRequestScope_RestoresSession(t *testing.T) {
	c := buildContainer(t)
	engine := newEngine(c)

	var sessionID string
	engine.GET("/", func(gc *gin.Context) {
		sess, err := ScopeFrom(gc).Get(container.IDSession)
		require.NoError(t, err)
		sessionID = sess.(*httpx.Session).ID()
		gc.Status(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: "sess-99"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "sess-99", sessionID)
	assert.Empty(t, w.Result().Cookies())
}

// TestRequestScope_PendingCookiesWritten 测试 handler 写入的 Cookie 随响应刷出
func TestRequestScope_PendingCookiesWritten(t *testing.T) {
	c := buildContainer(t)
	engine := newEngine(c)

	engine.GET("/", func(gc *gin.Context) {
		jar, err := ScopeFrom(gc).Get(container.IDCookieJar)
		require.NoError(t, err)
		jar.(*httpx.CookieJar).Set(&http.Cookie{Name: "theme", Value: "dark"})
		gc.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: httpx.SessionCookieName, Value: "sess-1"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	names := []string{}
	for _, ck := range w.Result().Cookies() {
		names = append(names, ck.Name)
	}
	assert.Contains(t, names, "theme")
}

// TestRequestScope_IsolationAcrossRequests 测试相邻请求的作用域互不泄漏
func TestRequestScope_IsolationAcrossRequests(t *testing.T) {
	c := buildContainer(t)
	engine := newEngine(c)

	seen := map[string]bool{}
	engine.GET("/", func(gc *gin.Context) {
		g, err := ScopeFrom(gc).Get(container.IDOf[greeter]())
		require.NoError(t, err)
		seen[g.(greeter).Greet()] = true
		gc.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	}

	// 每个请求的克隆携带各自的请求 ID
	assert.Len(t, seen, 3)
}

// TestScopeFrom_MissingMiddleware 测试未安装中间件时返回 nil
func TestScopeFrom_MissingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	gc, _ := gin.CreateTestContext(w)
	assert.Nil(t, ScopeFrom(gc))
}
