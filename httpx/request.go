// Package httpx 提供 HTTP 请求面的统一模型
// Request / Session / CookieJar 是每请求注入的三个请求上下文值
// 这是底层包，不依赖容器包（容器包反向依赖这里的类型与能力接口）
package httpx

import (
	"net/http"

	"github.com/google/uuid"
)

// Request 入站请求包装
// 每请求创建一次，携带框架级请求 ID
type Request struct {
	id  string
	raw *http.Request
}

// NewRequest 包装一个入站 *http.Request 并分配请求 ID
func NewRequest(r *http.Request) *Request {
	return &Request{
		id:  uuid.NewString(),
		raw: r,
	}
}

// ID 框架级请求 ID（uuid）
func (r *Request) ID() string {
	return r.id
}

// Raw 底层 *http.Request
func (r *Request) Raw() *http.Request {
	return r.raw
}

// Method 请求方法
func (r *Request) Method() string {
	if r.raw == nil {
		return ""
	}
	return r.raw.Method
}

// Path 请求路径
func (r *Request) Path() string {
	if r.raw == nil || r.raw.URL == nil {
		return ""
	}
	return r.raw.URL.Path
}

// Header 读取请求头
func (r *Request) Header(key string) string {
	if r.raw == nil {
		return ""
	}
	return r.raw.Header.Get(key)
}

// Query 读取查询参数
func (r *Request) Query(key string) string {
	if r.raw == nil || r.raw.URL == nil {
		return ""
	}
	return r.raw.URL.Query().Get(key)
}
