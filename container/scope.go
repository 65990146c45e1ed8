package container

import (
	"fmt"
	"sync"

	"github.com/syntaxwanderer/syntexa-core-sub000/httpx"
)

// RequestScope 请求作用域包装器
// 持有当前请求的上下文三要素与可选租户值，其余解析全部委托给容器
//
// 每个请求派生独立的 RequestScope（container.Scope()），归属该请求的
// goroutine —— 上下文不落在容器的共享字段上，并发在途的请求互不可见。
// 调用方纪律：三个 Set 必须在本请求解析任何可变服务之前全部完成；
// 请求结束（无论成败）必须调用 Reset，防止状态泄漏到下一次复用
type RequestScope struct {
	c *Container

	mu        sync.Mutex
	request   *httpx.Request
	session   *httpx.Session
	cookieJar *httpx.CookieJar
	ctx       *RequestContext
	tenant    *TenantContext
}

// Set 提供一个请求上下文值，只接受三个特定 ID，顺序任意、次数不限
// 每当三要素齐全，就构建一个全新的 RequestContext（替换旧值）
func (s *RequestScope) Set(id string, instance any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch id {
	case IDRequest:
		v, ok := instance.(*httpx.Request)
		if !ok {
			return fmt.Errorf("container: scope Set(%q) requires *httpx.Request, got %T", id, instance)
		}
		s.request = v
	case IDSession:
		v, ok := instance.(*httpx.Session)
		if !ok {
			return fmt.Errorf("container: scope Set(%q) requires *httpx.Session, got %T", id, instance)
		}
		s.session = v
	case IDCookieJar:
		v, ok := instance.(*httpx.CookieJar)
		if !ok {
			return fmt.Errorf("container: scope Set(%q) requires *httpx.CookieJar, got %T", id, instance)
		}
		s.cookieJar = v
	default:
		return fmt.Errorf("container: scope Set only accepts %q/%q/%q, got %q",
			IDRequest, IDSession, IDCookieJar, id)
	}

	if s.request != nil && s.session != nil && s.cookieJar != nil {
		s.ctx = NewRequestContext(s.request, s.session, s.cookieJar)
	}
	return nil
}

// Get 解析服务
// 三个特定 ID 返回本请求缓存值，未 Set 时报"未初始化"——
// 绝不静默回退到上一请求的旧值；其余 ID 委托容器（注入本作用域的上下文）
func (s *RequestScope) Get(id string) (any, error) {
	s.mu.Lock()
	switch id {
	case IDRequest:
		v := s.request
		s.mu.Unlock()
		if v == nil {
			return nil, &ContextNotInitializedError{ID: id}
		}
		return v, nil
	case IDSession:
		v := s.session
		s.mu.Unlock()
		if v == nil {
			return nil, &ContextNotInitializedError{ID: id}
		}
		return v, nil
	case IDCookieJar:
		v := s.cookieJar
		s.mu.Unlock()
		if v == nil {
			return nil, &ContextNotInitializedError{ID: id}
		}
		return v, nil
	}
	rc, tc := s.ctx, s.tenant
	s.mu.Unlock()

	return s.c.resolve(id, rc, tc)
}

// MustGet 解析服务，失败 panic
func (s *RequestScope) MustGet(id string) any {
	v, err := s.Get(id)
	if err != nil {
		panic(fmt.Sprintf("container: scope MustGet(%q): %v", id, err))
	}
	return v
}

// Has 与 Get 相同的查找逻辑，无副作用
func (s *RequestScope) Has(id string) bool {
	s.mu.Lock()
	switch id {
	case IDRequest:
		defer s.mu.Unlock()
		return s.request != nil
	case IDSession:
		defer s.mu.Unlock()
		return s.session != nil
	case IDCookieJar:
		defer s.mu.Unlock()
		return s.cookieJar != nil
	}
	s.mu.Unlock()
	return s.c.Has(id)
}

// Context 当前请求上下文（三要素未齐全时为 nil）
func (s *RequestScope) Context() *RequestContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// SetTenant 写入租户上下文（独立于 RequestContext）
func (s *RequestScope) SetTenant(t *TenantContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenant = t
}

// Tenant 当前租户上下文（未设置为 nil）
func (s *RequestScope) Tenant() *TenantContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tenant
}

// Reset 清空请求上下文缓存与租户值
// 必须在每个请求结束时无条件调用（成功或失败），
// 防止内存随 Worker 生命周期无界增长、防止值泄漏
func (s *RequestScope) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.request = nil
	s.session = nil
	s.cookieJar = nil
	s.ctx = nil
	s.tenant = nil
}
