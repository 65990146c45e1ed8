package container

import (
	"reflect"
	"sort"
	"strings"

	"github.com/syntaxwanderer/syntexa-core-sub000/contract"
)

// FactoryKey 组合键：module::ShortName
func FactoryKey(module, shortName string) string {
	return module + "::" + shortName
}

// contractFactory 通用契约工厂
// default 在构建时固化（解析器选择或模块顺序胜者），每次调用不再重估；
// 可变实现以 thunk 表达，取用时克隆，原型永不外泄
type contractFactory struct {
	contractName string
	def          func() (any, error)
	items        map[string]func() (any, error) // 小写键 → thunk
	keys         []string                       // 原始键，稳定排序
}

var _ contract.Factory = (*contractFactory)(nil)

// GetDefault 返回默认实现
func (f *contractFactory) GetDefault() any {
	v, err := f.def()
	if err != nil {
		// thunk 只在原型缺失时出错，构建完成后不可能发生
		panic("container: contract factory default: " + err.Error())
	}
	return v
}

// Get 按键取实现（大小写不敏感精确匹配）
// 未命中时返回列出全部可用键的错误
func (f *contractFactory) Get(key string) (any, error) {
	thunk, ok := f.items[strings.ToLower(key)]
	if !ok {
		return nil, &UnknownFactoryKeyError{
			Contract:  f.contractName,
			Key:       key,
			Available: f.Keys(),
		}
	}
	return thunk()
}

// Keys 可用键列表（稳定顺序）
func (f *contractFactory) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// buildFactories 为每个 ≥2 实现的契约构建工厂
// 手写工厂绑定优先；否则使用通用工厂并（若声明了能力接口）校验其满足该接口
func (c *Container) buildFactories() error {
	bindings := make(map[reflect.Type]contract.FactoryBinding)
	for _, fb := range c.set.Factories() {
		bindings[fb.Contract] = fb
	}

	for _, ct := range c.reg.SortedContracts() {
		implList := c.reg.Implementations(ct)
		if len(implList) < 2 {
			continue
		}

		// 默认实现：解析器选择（构建时固化）或 active
		defType := c.active[ct]
		if r, ok := c.resolvers[ct]; ok {
			if inst := r.Resolve(); inst != nil {
				defType = reflect.TypeOf(inst)
			}
		}

		items := make(map[string]func() (any, error), len(implList))
		rawItems := make(map[string]any, len(implList))
		keys := make([]string, 0, len(implList))
		for _, im := range implList {
			key := FactoryKey(im.Module, im.ShortName())
			keys = append(keys, key)
			items[strings.ToLower(key)] = c.fetchThunk(im.Type)
			rawItems[key] = c.instanceOf(im.Type)
		}
		sort.Strings(keys)

		var factory contract.Factory = &contractFactory{
			contractName: ct.String(),
			def:          c.fetchThunk(defType),
			items:        items,
			keys:         keys,
		}

		fb, hasBinding := bindings[ct]
		if hasBinding && fb.New != nil {
			factory = fb.New(c.instanceOf(defType), rawItems)
			if factory == nil {
				return wiringErrorf("factory constructor for contract %s returned nil", ct.String())
			}
		}
		if hasBinding && fb.Iface != nil {
			if fb.Iface.Kind() != reflect.Interface {
				return wiringErrorf("factory capability %s of contract %s is not an interface",
					fb.Iface.String(), ct.String())
			}
			if !reflect.TypeOf(factory).Implements(fb.Iface) {
				return wiringErrorf("factory %T does not satisfy capability interface %s (contract %s)",
					factory, fb.Iface.String(), ct.String())
			}
			c.factoriesByIface[fb.Iface] = factory
			c.factoriesByID[TypeID(fb.Iface)] = factory
		}

		c.factoriesByID[FactoryID(ct)] = factory
	}
	return nil
}

// fetchThunk 实现类型 → 取用 thunk
// 只读实现直接返回共享实例；可变实现每次取用克隆（不带请求上下文）
func (c *Container) fetchThunk(t reflect.Type) func() (any, error) {
	return func() (any, error) {
		if inst, ok := c.readonly[t]; ok {
			return inst, nil
		}
		if _, ok := c.prototypes[t]; ok {
			return c.cloneInstance(t, nil, nil)
		}
		return nil, &NotFoundError{ID: TypeID(t)}
	}
}

// backfillFactories 回填所有实例（只读实例与可变原型）上的 factory 注入点
// 字段类型必须是已绑定工厂的能力接口
func (c *Container) backfillFactories(impls []reflect.Type) error {
	for _, t := range impls {
		inst := c.instanceOf(t)
		if inst == nil {
			continue
		}
		descs, err := descriptorsOf(t)
		if err != nil {
			return err
		}
		rv := reflect.ValueOf(inst).Elem()
		for _, d := range descs {
			if d.Kind != KindFactory {
				continue
			}
			if d.Type.Kind() != reflect.Interface {
				return wiringErrorf("factory injection point %s.%s must be an interface type, got %s",
					t.String(), d.Field, d.Type.String())
			}
			f, ok := c.factoriesByIface[d.Type]
			if !ok {
				return wiringErrorf("no factory bound to capability interface %s (field %s of %s); register a contract.FactoryBinding",
					d.Type.String(), d.Field, t.String())
			}
			rv.FieldByIndex(d.Index).Set(reflect.ValueOf(f))
		}
	}
	return nil
}
