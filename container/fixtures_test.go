package container

import (
	"reflect"

	"github.com/syntaxwanderer/syntexa-core-sub000/contract"
	"github.com/syntaxwanderer/syntexa-core-sub000/httpx"
)

// 测试用契约

type notifier interface{ NotifyUser() string }

type payGateway interface{ Pay() string }

type auditSink interface{ RecordAudit(msg string) }

type spanTracer interface{ SpanName() string }

type orderProcessor interface{ ProcessOrder() string }

type checkoutSvc interface{ Checkout() (string, error) }

// payFactory 支付网关工厂能力接口（与 contract.Factory 结构化匹配）
type payFactory interface {
	GetDefault() any
	Get(key string) (any, error)
	Keys() []string
}

// ──────────────────────────────────────────────
// 只读实现
// ──────────────────────────────────────────────

type emailNotifier struct{ From string }

func (n *emailNotifier) NotifyUser() string { return "email" }

type smsNotifier struct{}

func (n *smsNotifier) NotifyUser() string { return "sms" }

type stripeGateway struct{}

func (g *stripeGateway) Pay() string { return "stripe" }

type paypalGateway struct{}

func (g *paypalGateway) Pay() string { return "paypal" }

// smtpNotifier 构造函数注入的只读实现
type smtpNotifier struct {
	gw payGateway
}

func newSmtpNotifier(gw payGateway) (*smtpNotifier, error) {
	return &smtpNotifier{gw: gw}, nil
}

func (n *smtpNotifier) NotifyUser() string { return "smtp:" + n.gw.Pay() }

// checkout 携带工厂注入点的只读实现
type checkout struct {
	Gateways payFactory `inject:"factory"`
}

func (c *checkout) Checkout() (string, error) {
	gw, err := c.Gateways.Get("shop::stripeGateway")
	if err != nil {
		return "", err
	}
	return gw.(payGateway).Pay(), nil
}

// ──────────────────────────────────────────────
// 可变（请求作用域）实现
// ──────────────────────────────────────────────

// auditLog 每请求审计日志
type auditLog struct {
	Entries []string
}

func (l *auditLog) RecordAudit(msg string) { l.Entries = append(l.Entries, msg) }
func (l *auditLog) RequestScoped()         {}
func (l *auditLog) CloneScoped() any {
	cp := &auditLog{}
	cp.Entries = append(cp.Entries, l.Entries...)
	return cp
}

// reqTracer 每请求追踪器，克隆注入审计日志（菱形场景的另一条边）
type reqTracer struct {
	Audit *auditLog `inject:"cloned"`
	name  string
}

func (t *reqTracer) SpanName() string { return t.name }
func (t *reqTracer) RequestScoped()   {}
func (t *reqTracer) CloneScoped() any { cp := *t; return &cp }

// orderHandler 每请求订单处理器
// shared 注入只读通知器；cloned 注入审计日志与追踪器（与 reqTracer 构成菱形）
type orderHandler struct {
	Notifier notifier   `inject:"shared"`
	Audit    *auditLog  `inject:"cloned"`
	Trace    *reqTracer `inject:"cloned"`

	req  *httpx.Request
	sess *httpx.Session
}

func (h *orderHandler) ProcessOrder() string            { return "processed" }
func (h *orderHandler) RequestScoped()                  {}
func (h *orderHandler) CloneScoped() any                { cp := *h; return &cp }
func (h *orderHandler) SetRequest(r *httpx.Request)     { h.req = r }
func (h *orderHandler) SetSession(s *httpx.Session)     { h.sess = s }
func (h *orderHandler) SetCookieJar(j *httpx.CookieJar) {}

// noClone 标记了请求作用域但缺 CloneScoped
type noClone struct{}

func (n *noClone) SpanName() string { return "no-clone" }
func (n *noClone) RequestScoped()   {}

// ──────────────────────────────────────────────
// 装配错误场景
// ──────────────────────────────────────────────

// badReadonly 只读类却带 cloned 注入点（配置 bug）
type badReadonly struct {
	Audit *auditLog `inject:"cloned"`
}

func (b *badReadonly) NotifyUser() string { return "bad" }

// sharedToMutable shared 注入点指向请求作用域类型（配置 bug）
type sharedToMutable struct {
	Audit *auditLog `inject:"shared"`
}

func (s *sharedToMutable) NotifyUser() string { return "bad" }

// 克隆依赖环 A → B → A
type cycleA struct {
	B *cycleB `inject:"cloned"`
}

func (a *cycleA) SpanName() string { return "a" }
func (a *cycleA) RequestScoped()   {}
func (a *cycleA) CloneScoped() any { cp := *a; return &cp }

type cycleB struct {
	A *cycleA `inject:"cloned"`
}

func (b *cycleB) NotifyUser() string { return "b" }
func (b *cycleB) RequestScoped()     {}
func (b *cycleB) CloneScoped() any   { cp := *b; return &cp }

// tenantHandler 租户感知的请求作用域服务
type tenantHandler struct {
	tenant *TenantContext
}

func (h *tenantHandler) ProcessOrder() string        { return "tenant" }
func (h *tenantHandler) RequestScoped()              {}
func (h *tenantHandler) CloneScoped() any            { cp := *h; return &cp }
func (h *tenantHandler) SetTenant(tc *TenantContext) { h.tenant = tc }

// ──────────────────────────────────────────────
// 标准发现结果
// ──────────────────────────────────────────────

// shopSet 覆盖常规场景的发现结果
// 模块顺序 [shop, vendor]：支付契约两个实现，shop 的 stripe 胜出
func shopSet() *contract.Set {
	return contract.NewSet([]string{"shop", "vendor"}).
		Provide(contract.Iface[notifier](), &emailNotifier{}, "shop").
		Provide(contract.Iface[payGateway](), &stripeGateway{}, "shop").
		Provide(contract.Iface[payGateway](), &paypalGateway{}, "vendor").
		Provide(contract.Iface[auditSink](), &auditLog{}, "shop").
		Provide(contract.Iface[spanTracer](), &reqTracer{}, "shop").
		Provide(contract.Iface[orderProcessor](), &orderHandler{}, "shop")
}

// tenantSet 租户场景的发现结果
func tenantSet() *contract.Set {
	return contract.NewSet([]string{"shop"}).
		Provide(contract.Iface[orderProcessor](), &tenantHandler{}, "shop")
}

func mustBuild(set *contract.Set) *Container {
	c := New(set)
	if err := c.Build(); err != nil {
		panic(err)
	}
	return c
}

func ifaceOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
