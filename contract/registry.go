package contract

import (
	"reflect"
	"sort"
)

// Details 单个契约的完整信息
type Details struct {
	// Implementations 全部实现（发现顺序）
	Implementations []Implementation

	// Active 唯一的 active 实现
	Active Implementation
}

// entry 内部条目：实现 + 原始 Binding（容器需要构造函数）
type entry struct {
	impl    Implementation
	binding Binding
}

// Registry 契约注册中心
// 对发现结果分组排名，为每个契约选出唯一 active 实现
//
// 选择规则：
//   - 候选按其模块在模块顺序中的位置排名（最具体的模块在前 = rank 最小）
//   - 不在顺序中的模块排最后
//   - 同 rank 时按发现顺序取先者（模块顺序为全序时不会发生）
//
// 失败语义：Impl 未实现契约接口、或不可实例化（非结构体）的候选
// 被静默跳过；一个契约的候选全部被跳过时该契约整体缺席（不是错误），
// 调用方必须把"契约不存在"当作正常情况处理
type Registry struct {
	set       *Set
	contracts map[reflect.Type][]entry
	active    map[reflect.Type]entry
	byImpl    map[reflect.Type]Binding
	implOrder []reflect.Type
	rank      map[string]int
}

// NewRegistry 创建契约注册中心（不触发构建）
func NewRegistry(set *Set) *Registry {
	return &Registry{
		set:       set,
		contracts: make(map[reflect.Type][]entry),
		active:    make(map[reflect.Type]entry),
		byImpl:    make(map[reflect.Type]Binding),
		rank:      make(map[string]int),
	}
}

// Build 扫描发现结果并决出各契约的 active 实现
// 对相同的模块顺序与相同的候选集合，结果与扫描顺序无关（确定性）
func (r *Registry) Build() error {
	for i, m := range r.set.ModuleOrder() {
		if _, ok := r.rank[m]; !ok {
			r.rank[m] = i
		}
	}

	for _, b := range r.set.Bindings() {
		implType, ok := normalizeImpl(b.Impl)
		if !ok {
			continue // 不可实例化，跳过
		}
		if b.Contract == nil || b.Contract.Kind() != reflect.Interface {
			continue
		}
		if !implType.Implements(b.Contract) {
			continue // 未实现契约，跳过
		}

		module := b.Module
		if module == "" {
			module = CoreModule
		}
		e := entry{
			impl:    Implementation{Module: module, Type: implType},
			binding: normalizedBinding(b, implType, module),
		}
		r.contracts[b.Contract] = append(r.contracts[b.Contract], e)
		if _, seen := r.byImpl[implType]; !seen {
			r.byImpl[implType] = e.binding
			r.implOrder = append(r.implOrder, implType)
		}
	}

	// 为每个契约选出 active：rank 最小者；同 rank 取发现顺序先者
	for c, entries := range r.contracts {
		best := entries[0]
		bestRank := r.moduleRank(best.impl.Module)
		for _, e := range entries[1:] {
			if rk := r.moduleRank(e.impl.Module); rk < bestRank {
				best, bestRank = e, rk
			}
		}
		r.active[c] = best
	}

	return nil
}

// moduleRank 模块在全序中的位置，缺席的模块排最后
func (r *Registry) moduleRank(module string) int {
	if rk, ok := r.rank[module]; ok {
		return rk
	}
	return len(r.rank) + len(r.set.Bindings())
}

// Contracts 返回 契约 → active 实现类型
func (r *Registry) Contracts() map[reflect.Type]reflect.Type {
	out := make(map[reflect.Type]reflect.Type, len(r.active))
	for c, e := range r.active {
		out[c] = e.impl.Type
	}
	return out
}

// ContractDetails 返回 契约 → {实现列表, active}
// 供运维巡检命令列出当前绑定
func (r *Registry) ContractDetails() map[reflect.Type]Details {
	out := make(map[reflect.Type]Details, len(r.contracts))
	for c, entries := range r.contracts {
		d := Details{Active: r.active[c].impl}
		for _, e := range entries {
			d.Implementations = append(d.Implementations, e.impl)
		}
		out[c] = d
	}
	return out
}

// SortedContracts 返回按类型名排序的契约列表（巡检输出需要稳定顺序）
func (r *Registry) SortedContracts() []reflect.Type {
	out := make([]reflect.Type, 0, len(r.contracts))
	for c := range r.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Active 查询契约的 active 实现
func (r *Registry) Active(c reflect.Type) (Implementation, bool) {
	e, ok := r.active[c]
	return e.impl, ok
}

// Implementations 查询契约的全部实现（发现顺序）
func (r *Registry) Implementations(c reflect.Type) []Implementation {
	entries := r.contracts[c]
	out := make([]Implementation, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.impl)
	}
	return out
}

// ImplTypes 返回全部实现类型（去重，发现顺序）
// 容器按此顺序实例化只读实例与可变原型
func (r *Registry) ImplTypes() []reflect.Type {
	out := make([]reflect.Type, len(r.implOrder))
	copy(out, r.implOrder)
	return out
}

// Binding 按实现类型反查其 Binding（容器构建时取构造函数）
func (r *Registry) Binding(implType reflect.Type) (Binding, bool) {
	b, ok := r.byImpl[implType]
	return b, ok
}

// normalizeImpl 把实现类型规范化为 *Struct 指针类型
// 非结构体（接口、函数等）视为不可实例化
func normalizeImpl(t reflect.Type) (reflect.Type, bool) {
	if t == nil {
		return nil, false
	}
	switch t.Kind() {
	case reflect.Ptr:
		if t.Elem().Kind() != reflect.Struct {
			return nil, false
		}
		return t, true
	case reflect.Struct:
		return reflect.PtrTo(t), true
	default:
		return nil, false
	}
}

func normalizedBinding(b Binding, implType reflect.Type, module string) Binding {
	b.Impl = implType
	b.Module = module
	return b
}
