package httpx

import (
	"net/http"
	"sync"
)

// CookieJar 每请求 Cookie 包
// 持有入站 Cookie（只读）与待写出的响应 Cookie
type CookieJar struct {
	mu       sync.RWMutex
	incoming map[string]*http.Cookie
	pending  []*http.Cookie
}

// NewCookieJar 从入站请求构建 CookieJar；r 可为 nil（测试场景）
func NewCookieJar(r *http.Request) *CookieJar {
	jar := &CookieJar{incoming: make(map[string]*http.Cookie)}
	if r != nil {
		for _, c := range r.Cookies() {
			jar.incoming[c.Name] = c
		}
	}
	return jar
}

// Get 读取入站 Cookie
func (j *CookieJar) Get(name string) (*http.Cookie, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	c, ok := j.incoming[name]
	return c, ok
}

// Value 读取入站 Cookie 值（缺失返回空串）
func (j *CookieJar) Value(name string) string {
	if c, ok := j.Get(name); ok {
		return c.Value
	}
	return ""
}

// Set 追加待写出的响应 Cookie
func (j *CookieJar) Set(c *http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pending = append(j.pending, c)
}

// Pending 返回待写出的响应 Cookie（追加顺序）
func (j *CookieJar) Pending() []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]*http.Cookie, len(j.pending))
	copy(out, j.pending)
	return out
}

// WriteTo 把待写出的 Cookie 刷到响应头
func (j *CookieJar) WriteTo(w http.ResponseWriter) {
	for _, c := range j.Pending() {
		http.SetCookie(w, c)
	}
}
