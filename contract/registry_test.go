package contract

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试用契约与实现

type PaymentGateway interface {
	Charge(amount int) string
}

type StripeGateway struct{}

func (g *StripeGateway) Charge(amount int) string { return "stripe" }

type PaypalGateway struct{}

func (g *PaypalGateway) Charge(amount int) string { return "paypal" }

type MockGateway struct{}

func (g *MockGateway) Charge(amount int) string { return "mock" }

type Notifier interface {
	Notify() string
}

type EmailNotifier struct{}

func (n *EmailNotifier) Notify() string { return "email" }

// NotAGateway 不实现 PaymentGateway
type NotAGateway struct{}

// TestRegistry_SingleImplementation 测试单实现契约
func TestRegistry_SingleImplementation(t *testing.T) {
	set := NewSet([]string{"core"}).
		Provide(Iface[Notifier](), &EmailNotifier{}, "core")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	impl, ok := reg.Active(Iface[Notifier]())
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(&EmailNotifier{}), impl.Type)
	assert.Equal(t, "core", impl.Module)
	assert.Equal(t, "EmailNotifier", impl.ShortName())
}

// TestRegistry_ModuleOrderWins 测试模块顺序决出 active 实现
// 模块顺序 [app, vendor]：app 更具体，app 的实现胜出
func TestRegistry_ModuleOrderWins(t *testing.T) {
	set := NewSet([]string{"app", "vendor"}).
		Provide(Iface[PaymentGateway](), &PaypalGateway{}, "vendor").
		Provide(Iface[PaymentGateway](), &StripeGateway{}, "app")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	impl, ok := reg.Active(Iface[PaymentGateway]())
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(&StripeGateway{}), impl.Type)

	// 全部实现按发现顺序保留
	impls := reg.Implementations(Iface[PaymentGateway]())
	require.Len(t, impls, 2)
	assert.Equal(t, "vendor", impls[0].Module)
	assert.Equal(t, "app", impls[1].Module)
}

// TestRegistry_DeterministicUnderPermutation 测试发现顺序置换不改变选择结果
func TestRegistry_DeterministicUnderPermutation(t *testing.T) {
	order := []string{"app", "vendor", "legacy"}

	build := func(permute bool) Implementation {
		set := NewSet(order)
		if permute {
			set.Provide(Iface[PaymentGateway](), &MockGateway{}, "legacy").
				Provide(Iface[PaymentGateway](), &StripeGateway{}, "app").
				Provide(Iface[PaymentGateway](), &PaypalGateway{}, "vendor")
		} else {
			set.Provide(Iface[PaymentGateway](), &StripeGateway{}, "app").
				Provide(Iface[PaymentGateway](), &PaypalGateway{}, "vendor").
				Provide(Iface[PaymentGateway](), &MockGateway{}, "legacy")
		}
		reg := NewRegistry(set)
		require.NoError(t, reg.Build())
		impl, ok := reg.Active(Iface[PaymentGateway]())
		require.True(t, ok)
		return impl
	}

	// 相同模块顺序 + 相同候选集合 → 相同 active
	assert.Equal(t, build(false).Type, build(true).Type)
}

// TestRegistry_UnknownModuleRanksLast 测试不在顺序中的模块排最后
func TestRegistry_UnknownModuleRanksLast(t *testing.T) {
	set := NewSet([]string{"vendor"}).
		Provide(Iface[PaymentGateway](), &MockGateway{}, "unlisted").
		Provide(Iface[PaymentGateway](), &PaypalGateway{}, "vendor")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	impl, ok := reg.Active(Iface[PaymentGateway]())
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf(&PaypalGateway{}), impl.Type)
}

// TestRegistry_TieBrokenByDiscoveryOrder 测试同 rank 时按发现顺序取先者
func TestRegistry_TieBrokenByDiscoveryOrder(t *testing.T) {
	// 两个实现都不在模块顺序中（同 rank）
	set := NewSet([]string{}).
		Provide(Iface[PaymentGateway](), &PaypalGateway{}, "b-module").
		Provide(Iface[PaymentGateway](), &StripeGateway{}, "a-module")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	impl, ok := reg.Active(Iface[PaymentGateway]())
	require.True(t, ok)
	// 发现顺序先者胜出，与模块名字典序无关
	assert.Equal(t, reflect.TypeOf(&PaypalGateway{}), impl.Type)
}

// TestRegistry_SkipsNonImplementing 测试未实现契约的候选被静默跳过
func TestRegistry_SkipsNonImplementing(t *testing.T) {
	set := NewSet([]string{"core"}).
		Provide(Iface[PaymentGateway](), &NotAGateway{}, "core").
		Provide(Iface[PaymentGateway](), &StripeGateway{}, "core")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	impls := reg.Implementations(Iface[PaymentGateway]())
	require.Len(t, impls, 1)
	assert.Equal(t, reflect.TypeOf(&StripeGateway{}), impls[0].Type)
}

// TestRegistry_AbsentContract 测试候选全部被跳过时契约整体缺席（不是错误）
func TestRegistry_AbsentContract(t *testing.T) {
	set := NewSet([]string{"core"}).
		Provide(Iface[PaymentGateway](), &NotAGateway{}, "core")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	_, ok := reg.Active(Iface[PaymentGateway]())
	assert.False(t, ok)
	assert.Empty(t, reg.Implementations(Iface[PaymentGateway]()))
	assert.Empty(t, reg.SortedContracts())
}

// TestRegistry_EmptyModuleFallsToCore 测试空模块名归入 core 模块
func TestRegistry_EmptyModuleFallsToCore(t *testing.T) {
	set := NewSet([]string{"core"}).
		Provide(Iface[Notifier](), &EmailNotifier{}, "")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	impl, ok := reg.Active(Iface[Notifier]())
	require.True(t, ok)
	assert.Equal(t, CoreModule, impl.Module)
}

// TestRegistry_NormalizesStructToPointer 测试结构体类型统一规范化为指针
func TestRegistry_NormalizesStructToPointer(t *testing.T) {
	set := NewSet([]string{"core"}).
		Provide(Iface[Notifier](), reflect.TypeOf(EmailNotifier{}), "core")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	impl, ok := reg.Active(Iface[Notifier]())
	require.True(t, ok)
	assert.Equal(t, reflect.Ptr, impl.Type.Kind())
	assert.Equal(t, reflect.TypeOf(&EmailNotifier{}), impl.Type)
}

// TestRegistry_ContractDetails 测试巡检输出
func TestRegistry_ContractDetails(t *testing.T) {
	set := NewSet([]string{"app", "vendor"}).
		Provide(Iface[PaymentGateway](), &StripeGateway{}, "app").
		Provide(Iface[PaymentGateway](), &PaypalGateway{}, "vendor").
		Provide(Iface[Notifier](), &EmailNotifier{}, "app")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	details := reg.ContractDetails()
	require.Len(t, details, 2)

	d := details[Iface[PaymentGateway]()]
	assert.Len(t, d.Implementations, 2)
	assert.Equal(t, reflect.TypeOf(&StripeGateway{}), d.Active.Type)

	// SortedContracts 输出稳定
	sorted := reg.SortedContracts()
	require.Len(t, sorted, 2)
	assert.Equal(t, sorted, reg.SortedContracts())
}

// TestRegistry_ImplTypesDeduplicated 测试实现类型去重（同一实现服务多个契约）
func TestRegistry_ImplTypesDeduplicated(t *testing.T) {
	set := NewSet([]string{"core"}).
		Provide(Iface[Notifier](), &EmailNotifier{}, "core").
		Provide(Iface[Notifier](), &EmailNotifier{}, "core")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	assert.Len(t, reg.ImplTypes(), 1)
}

// TestRegistry_BindingLookup 测试按实现类型反查 Binding
func TestRegistry_BindingLookup(t *testing.T) {
	ctor := func() *EmailNotifier { return &EmailNotifier{} }
	set := NewSet([]string{"core"}).
		ProvideFunc(Iface[Notifier](), ctor, "core")

	reg := NewRegistry(set)
	require.NoError(t, reg.Build())

	b, ok := reg.Binding(reflect.TypeOf(&EmailNotifier{}))
	require.True(t, ok)
	assert.NotNil(t, b.Constructor)
	assert.Equal(t, "core", b.Module)
}
