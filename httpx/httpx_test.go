package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRequest 测试请求包装与请求 ID 分配
func TestNewRequest(t *testing.T) {
	raw := httptest.NewRequest("POST", "/orders?sort=desc", nil)
	raw.Header.Set("X-Api-Key", "secret")

	req := NewRequest(raw)

	assert.NotEmpty(t, req.ID())
	assert.Equal(t, "POST", req.Method())
	assert.Equal(t, "/orders", req.Path())
	assert.Equal(t, "desc", req.Query("sort"))
	assert.Equal(t, "secret", req.Header("X-Api-Key"))
	assert.Same(t, raw, req.Raw())

	// 每次包装分配独立 ID
	other := NewRequest(raw)
	assert.NotEqual(t, req.ID(), other.ID())
}

// TestSession_NewVsRestored 测试新建会话与恢复会话
func TestSession_NewVsRestored(t *testing.T) {
	// 空 ID → 新会话，分配 ID
	fresh := NewSession("")
	assert.True(t, fresh.IsNew())
	assert.NotEmpty(t, fresh.ID())

	// 带 ID → 恢复会话
	restored := NewSession("abc-123")
	assert.False(t, restored.IsNew())
	assert.Equal(t, "abc-123", restored.ID())
}

// TestSession_Values 测试会话值读写
func TestSession_Values(t *testing.T) {
	s := NewSession("")

	_, ok := s.Get("user_id")
	assert.False(t, ok)
	assert.Empty(t, s.GetString("user_id"))

	s.Set("user_id", "u-1")
	s.Set("attempts", 3)

	assert.Equal(t, "u-1", s.GetString("user_id"))
	// 类型不符返回空串
	assert.Empty(t, s.GetString("attempts"))
	assert.Equal(t, 2, s.Len())

	s.Delete("user_id")
	assert.Equal(t, 1, s.Len())
}

// TestCookieJar_IncomingAndPending 测试入站 Cookie 读取与待写出队列
func TestCookieJar_IncomingAndPending(t *testing.T) {
	raw := httptest.NewRequest("GET", "/", nil)
	raw.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

	jar := NewCookieJar(raw)

	assert.Equal(t, "dark", jar.Value("theme"))
	assert.Empty(t, jar.Value("missing"))
	_, ok := jar.Get("missing")
	assert.False(t, ok)

	jar.Set(&http.Cookie{Name: "lang", Value: "zh"})
	jar.Set(&http.Cookie{Name: "ab", Value: "b"})
	require.Len(t, jar.Pending(), 2)

	// WriteTo 刷到响应头
	w := httptest.NewRecorder()
	jar.WriteTo(w)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "lang", cookies[0].Name)
}

// TestCookieJar_NilRequest 测试 nil 请求场景（测试便利）
func TestCookieJar_NilRequest(t *testing.T) {
	jar := NewCookieJar(nil)
	assert.Empty(t, jar.Value("any"))
	assert.Empty(t, jar.Pending())
}
