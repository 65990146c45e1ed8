package container

import (
	"github.com/syntaxwanderer/syntexa-core-sub000/httpx"
)

// 三个请求上下文值的服务 ID
const (
	IDRequest   = "request"
	IDSession   = "session"
	IDCookieJar = "cookiejar"
)

// RequestScoped 请求作用域标记能力
// 实现该接口的服务在容器构建时被归类为可变（每请求克隆）
// —— 显式声明，取代按类名推断生命周期的做法
// httpx.Handler 的方法集包含同名标记方法，实现 Handler 即自动带上该标记
type RequestScoped interface {
	RequestScoped()
}

// Mutable 克隆能力
// 每个可变服务类型必须实现：返回自身的浅拷贝（共享/工厂字段保留，
// 克隆字段随后由容器替换为新克隆）
// 构建时静态检查，缺失视为装配错误
type Mutable interface {
	CloneScoped() any
}

// TenantAware 可注入租户上下文的能力
type TenantAware interface {
	SetTenant(t *TenantContext)
}

// RequestContext 每请求上下文（不可变包）
// 仅当 request / session / cookiejar 三个值都已提供时才存在；
// 每请求新建，请求结束即销毁
type RequestContext struct {
	request   *httpx.Request
	session   *httpx.Session
	cookieJar *httpx.CookieJar
}

// NewRequestContext 构建请求上下文（三要素必须齐全）
func NewRequestContext(req *httpx.Request, sess *httpx.Session, jar *httpx.CookieJar) *RequestContext {
	if req == nil || sess == nil || jar == nil {
		return nil
	}
	return &RequestContext{request: req, session: sess, cookieJar: jar}
}

// Request 入站请求
func (rc *RequestContext) Request() *httpx.Request {
	return rc.request
}

// Session 会话
func (rc *RequestContext) Session() *httpx.Session {
	return rc.session
}

// CookieJar Cookie 包
func (rc *RequestContext) CookieJar() *httpx.CookieJar {
	return rc.cookieJar
}

// inject 把上下文注入克隆体（按能力接口，编译期可查）
func (rc *RequestContext) inject(instance any) {
	if rc == nil {
		return
	}
	if a, ok := instance.(httpx.RequestAware); ok {
		a.SetRequest(rc.request)
	}
	if a, ok := instance.(httpx.SessionAware); ok {
		a.SetSession(rc.session)
	}
	if a, ok := instance.(httpx.CookieJarAware); ok {
		a.SetCookieJar(rc.cookieJar)
	}
}

// TenantContext 租户上下文（请求生命周期，独立于 RequestContext）
type TenantContext struct {
	// TenantID 租户标识
	TenantID string

	// Strategy 租户识别策略（header / domain / path 等）
	Strategy string

	// Source 识别来源的原始值
	Source string
}
