// Package contract 提供契约（Contract）模型定义
// 这是依赖注入内核的最底层包，不依赖任何其他业务包
//
// 契约 = 一个命名能力（Go interface），可由多个模块各自提供实现
// 当多个模块竞争同一契约时，由模块顺序（最具体的模块优先）决出唯一 active 实现
package contract

import "reflect"

// CoreModule 合成模块名
// 无法归属任何模块的实现统一记入 core 模块
const CoreModule = "core"

// Iface 获取接口类型的 reflect.Type
// 用法：
//
//	contract.Iface[PaymentGateway]()
func Iface[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Implementation 契约的一个实现
type Implementation struct {
	// Module 提供该实现的模块名
	Module string

	// Type 实现的具体类型（指针类型，如 *StripeGateway）
	Type reflect.Type
}

// ShortName 实现类型的短名（不含包路径，如 StripeGateway）
func (i Implementation) ShortName() string {
	t := i.Type
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Binding 一条契约发现记录 (contract, impl, module)
// 由外围的扫描器/注册代码显式构造，注入给 Registry
// （替代原有的全局反射扫描，保证 Registry 是其输入的纯函数）
type Binding struct {
	// Contract 契约接口类型（通过 contract.Iface[T]() 获取）
	Contract reflect.Type

	// Impl 实现的具体类型
	// 允许传结构体类型或其指针类型，内部统一规范化为指针类型
	Impl reflect.Type

	// Constructor 可选构造函数：func(deps...) *Impl 或 func(deps...) (*Impl, error)
	// 参数在容器构建时按类型从只读实例和引导单例中解析
	// 为 nil 时通过零值实例化 + 字段注入构造
	Constructor any

	// Module 所属模块名，空值归入 CoreModule
	Module string
}

// Resolver 契约解析器（可选，手写类型）
// 在调用时动态决定契约的 active 实现，覆盖静态的模块顺序选择
// （例如按配置键切换支付网关）
type Resolver interface {
	// Resolve 返回当前应视为 active 的实现实例
	Resolve() any
}

// ResolverBinding 契约 → 解析器构造函数
// New 在容器构建末期被调用，传入该契约的全部实现实例（发现顺序）
type ResolverBinding struct {
	Contract reflect.Type
	New      func(impls []any) Resolver
}

// Factory 契约工厂能力接口
// 供需要按键选择特定（而非 active）实现的调用方使用
type Factory interface {
	// GetDefault 返回默认实现（模块顺序胜者或解析器选择，构建时固化）
	GetDefault() any

	// Get 按组合键（module::ShortName，大小写不敏感）精确匹配
	// 未命中时返回列出全部可用键的错误，绝不猜测
	Get(key string) (any, error)

	// Keys 返回可用键列表（稳定排序）
	Keys() []string
}

// FactoryBinding 契约 → 工厂能力接口绑定
// New 为 nil 时使用容器内置的通用工厂（必须满足 Iface）
type FactoryBinding struct {
	Contract reflect.Type

	// Iface 工厂能力接口类型（注入点字段按此类型匹配）
	Iface reflect.Type

	// New 可选的手写工厂构造函数
	New func(def any, byKey map[string]any) Factory
}
