package contract

import "reflect"

// Set 显式的契约发现结果（值对象）
// 包含全部 Binding、模块顺序、可选的解析器与工厂绑定
// Set 只是数据，可在测试中直接构造，不依赖任何进程级扫描状态
type Set struct {
	bindings  []Binding
	modules   []string
	resolvers []ResolverBinding
	factories []FactoryBinding
}

// NewSet 创建发现结果
// moduleOrder: 模块全序（最具体的模块在前），由模块注册方提供
func NewSet(moduleOrder []string) *Set {
	order := make([]string, len(moduleOrder))
	copy(order, moduleOrder)
	return &Set{modules: order}
}

// Add 追加一条发现记录（保持插入顺序 = 发现顺序）
func (s *Set) Add(b Binding) *Set {
	s.bindings = append(s.bindings, b)
	return s
}

// Provide 便捷注册：Provide[*StripeGateway] 风格由调用方用 reflect 表达
//
//	set.Provide(contract.Iface[PaymentGateway](), &StripeGateway{}, "payment")
//
// impl 传实例样本（只取其类型）或 reflect.Type
func (s *Set) Provide(contractType reflect.Type, impl any, module string) *Set {
	t, ok := impl.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(impl)
	}
	return s.Add(Binding{Contract: contractType, Impl: t, Module: module})
}

// ProvideFunc 便捷注册：带构造函数的实现
func (s *Set) ProvideFunc(contractType reflect.Type, constructor any, module string) *Set {
	ft := reflect.TypeOf(constructor)
	var implType reflect.Type
	if ft != nil && ft.Kind() == reflect.Func && ft.NumOut() >= 1 {
		implType = ft.Out(0)
	}
	return s.Add(Binding{
		Contract:    contractType,
		Impl:        implType,
		Constructor: constructor,
		Module:      module,
	})
}

// AddResolver 注册契约解析器绑定
func (s *Set) AddResolver(rb ResolverBinding) *Set {
	s.resolvers = append(s.resolvers, rb)
	return s
}

// AddFactory 注册契约工厂绑定
func (s *Set) AddFactory(fb FactoryBinding) *Set {
	s.factories = append(s.factories, fb)
	return s
}

// Bindings 返回全部发现记录（发现顺序）
func (s *Set) Bindings() []Binding {
	return s.bindings
}

// ModuleOrder 返回模块顺序（最具体的模块在前）
func (s *Set) ModuleOrder() []string {
	return s.modules
}

// Resolvers 返回全部解析器绑定
func (s *Set) Resolvers() []ResolverBinding {
	return s.resolvers
}

// Factories 返回全部工厂绑定
func (s *Set) Factories() []FactoryBinding {
	return s.factories
}
