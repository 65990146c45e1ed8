package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syntaxwanderer/syntexa-core-sub000/contract"
)

// TestFactory_BuiltForMultiImplContracts 测试 ≥2 实现的契约自动获得工厂
func TestFactory_BuiltForMultiImplContracts(t *testing.T) {
	c := mustBuild(shopSet())

	// payGateway 有两个实现 → 有工厂
	f, err := c.Get(FactoryID(contract.Iface[payGateway]()))
	require.NoError(t, err)
	require.Implements(t, (*contract.Factory)(nil), f)

	// notifier 只有一个实现 → 无工厂
	_, err = c.Get(FactoryID(contract.Iface[notifier]()))
	assert.True(t, IsNotFound(err))
}

// TestFactory_GetDefault 测试默认实现 = 模块顺序胜者
func TestFactory_GetDefault(t *testing.T) {
	c := mustBuild(shopSet())

	f := c.MustGet(FactoryID(contract.Iface[payGateway]())).(contract.Factory)
	def := f.GetDefault()
	assert.Equal(t, "stripe", def.(payGateway).Pay())
}

// TestFactory_GetDefaultFollowsResolver 测试解析器选择在构建时固化为默认实现
func TestFactory_GetDefaultFollowsResolver(t *testing.T) {
	set := shopSet()
	set.AddResolver(contract.ResolverBinding{
		Contract: contract.Iface[payGateway](),
		New: func(impls []any) contract.Resolver {
			return pickLast{impls: impls}
		},
	})
	c := mustBuild(set)

	f := c.MustGet(FactoryID(contract.Iface[payGateway]())).(contract.Factory)
	assert.Equal(t, "paypal", f.GetDefault().(payGateway).Pay())
}

// TestFactory_KeyLookupCaseInsensitive 测试组合键大小写不敏感精确匹配
func TestFactory_KeyLookupCaseInsensitive(t *testing.T) {
	c := mustBuild(shopSet())
	f := c.MustGet(FactoryID(contract.Iface[payGateway]())).(contract.Factory)

	for _, key := range []string{
		"vendor::paypalGateway",
		"VENDOR::PAYPALGATEWAY",
		"Vendor::PaypalGateway",
	} {
		got, err := f.Get(key)
		require.NoError(t, err, "key %q", key)
		assert.Equal(t, "paypal", got.(payGateway).Pay())
	}
}

// TestFactory_UnknownKeyListsAvailable 测试未知键错误列出全部可用键
func TestFactory_UnknownKeyListsAvailable(t *testing.T) {
	c := mustBuild(shopSet())
	f := c.MustGet(FactoryID(contract.Iface[payGateway]())).(contract.Factory)

	_, err := f.Get("shop::NoSuchGateway")
	require.Error(t, err)

	var uk *UnknownFactoryKeyError
	require.ErrorAs(t, err, &uk)
	assert.Equal(t, "shop::NoSuchGateway", uk.Key)
	assert.ElementsMatch(t, []string{"shop::stripeGateway", "vendor::paypalGateway"}, uk.Available)
	assert.Contains(t, err.Error(), "shop::stripeGateway")
	assert.Contains(t, err.Error(), "vendor::paypalGateway")
}

// TestFactory_Keys 测试键列表稳定排序
func TestFactory_Keys(t *testing.T) {
	c := mustBuild(shopSet())
	f := c.MustGet(FactoryID(contract.Iface[payGateway]())).(contract.Factory)

	keys := f.Keys()
	assert.Equal(t, []string{"shop::stripeGateway", "vendor::paypalGateway"}, keys)

	// 返回副本，调用方改动不影响工厂
	keys[0] = "mutated"
	assert.Equal(t, []string{"shop::stripeGateway", "vendor::paypalGateway"}, f.Keys())
}

// TestFactory_MutableImplsAreCloned 测试工厂交付可变实现时克隆（原型不外泄）
func TestFactory_MutableImplsAreCloned(t *testing.T) {
	// 同一契约两个请求作用域实现
	set := contract.NewSet([]string{"shop", "vendor"}).
		Provide(contract.Iface[auditSink](), &auditLog{}, "shop").
		Provide(contract.Iface[spanTracer](), &reqTracer{}, "shop").
		Provide(contract.Iface[spanTracer](), &cycleFreeTracer{}, "vendor")

	c := mustBuild(set)
	f := c.MustGet(FactoryID(contract.Iface[spanTracer]())).(contract.Factory)

	a, err := f.Get("shop::reqTracer")
	require.NoError(t, err)
	b, err := f.Get("shop::reqTracer")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}

// cycleFreeTracer 第二个追踪器实现（无依赖）
type cycleFreeTracer struct{}

func (t *cycleFreeTracer) SpanName() string { return "free" }
func (t *cycleFreeTracer) RequestScoped()   {}
func (t *cycleFreeTracer) CloneScoped() any { cp := *t; return &cp }

// TestFactory_InjectionPointBackfill 测试 factory 注入点回填能力接口
func TestFactory_InjectionPointBackfill(t *testing.T) {
	set := shopSet()
	set.Provide(contract.Iface[checkoutSvc](), &checkout{}, "shop")
	set.AddFactory(contract.FactoryBinding{
		Contract: contract.Iface[payGateway](),
		Iface:    ifaceOf[payFactory](),
	})

	c := mustBuild(set)

	svc := c.MustGet(IDOf[checkoutSvc]()).(*checkout)
	require.NotNil(t, svc.Gateways)

	got, err := svc.Checkout()
	require.NoError(t, err)
	assert.Equal(t, "stripe", got)

	// 能力接口本身也可按 ID 解析
	f, err := c.Get(IDOf[payFactory]())
	require.NoError(t, err)
	assert.NotNil(t, f)
}

// TestFactory_UnboundInjectionPointFailsBuild 测试未绑定工厂的注入点使 Build 失败
func TestFactory_UnboundInjectionPointFailsBuild(t *testing.T) {
	set := shopSet()
	set.Provide(contract.Iface[checkoutSvc](), &checkout{}, "shop")
	// 缺 AddFactory 绑定

	c := New(set)
	err := c.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no factory bound")
}

// TestFactory_HandAuthored 测试手写工厂绑定优先于通用工厂
func TestFactory_HandAuthored(t *testing.T) {
	var gotDefault any
	var gotKeys int

	set := shopSet()
	set.AddFactory(contract.FactoryBinding{
		Contract: contract.Iface[payGateway](),
		Iface:    ifaceOf[payFactory](),
		New: func(def any, byKey map[string]any) contract.Factory {
			gotDefault = def
			gotKeys = len(byKey)
			return &staticFactory{def: def}
		},
	})

	c := mustBuild(set)

	f := c.MustGet(FactoryID(contract.Iface[payGateway]())).(contract.Factory)
	assert.IsType(t, &staticFactory{}, f)
	assert.Equal(t, "stripe", gotDefault.(payGateway).Pay())
	assert.Equal(t, 2, gotKeys)
}

// staticFactory 手写工厂（测试用）
type staticFactory struct{ def any }

func (f *staticFactory) GetDefault() any             { return f.def }
func (f *staticFactory) Get(key string) (any, error) { return f.def, nil }
func (f *staticFactory) Keys() []string              { return nil }
