// Package container 实现契约驱动的依赖注入容器
//
// 生命周期模型：
//   - 只读服务：每 Worker 实例化一次，被所有并发请求共享，构建后视为只读
//   - 可变服务：每 Worker 构建一个原型（模板），每请求返回独立克隆，
//     原型本身绝不对外交付
//
// 状态机：Uninitialized → Built（Build 只执行一次，不可逆）
// Build 之前调用 Get/Has 立即失败（fail fast）
package container

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/syntaxwanderer/syntexa-core-sub000/contract"
	"github.com/syntaxwanderer/syntexa-core-sub000/logger"
)

// TypeID 类型的规范服务 ID（pkgpath.TypeName，指针自动解引用）
func TypeID(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// IDOf 实例/接口 token 的规范服务 ID
//
//	container.IDOf[PaymentGateway]()
func IDOf[T any]() string {
	return TypeID(reflect.TypeOf((*T)(nil)).Elem())
}

// FactoryID 契约对应的通用工厂服务 ID
func FactoryID(contractType reflect.Type) string {
	return TypeID(contractType) + ".Factory"
}

// clonedEdge 构建期解析好的克隆依赖边（克隆时直接按索引写字段）
type clonedEdge struct {
	index  []int
	target reflect.Type
}

// Option 容器选项
type Option func(*Container)

// WithLogger 注入构建期诊断日志
func WithLogger(l *logger.CtxZapLogger) Option {
	return func(c *Container) {
		c.log = l
	}
}

// Container 依赖注入容器
type Container struct {
	mu  sync.RWMutex
	set *contract.Set
	reg *contract.Registry
	log *logger.CtxZapLogger

	built bool

	// 引导单例（Build 前经 SetInstance 注册的预构建对象）
	bootstrap map[string]any

	// 服务索引
	contractsByID map[string]reflect.Type // 契约 ID -> 接口类型
	implsByID     map[string]reflect.Type // 实现 ID -> 实现类型
	active        map[reflect.Type]reflect.Type

	// 对象图
	readonly   map[reflect.Type]any
	prototypes map[reflect.Type]any
	mutableSet map[reflect.Type]bool
	cloned     map[reflect.Type][]clonedEdge

	// 解析器与工厂
	resolvers        map[reflect.Type]contract.Resolver
	factoriesByIface map[reflect.Type]contract.Factory
	factoriesByID    map[string]contract.Factory
}

// New 创建容器（不触发构建）
func New(set *contract.Set, opts ...Option) *Container {
	c := &Container{
		set:              set,
		bootstrap:        make(map[string]any),
		contractsByID:    make(map[string]reflect.Type),
		implsByID:        make(map[string]reflect.Type),
		active:           make(map[reflect.Type]reflect.Type),
		readonly:         make(map[reflect.Type]any),
		prototypes:       make(map[reflect.Type]any),
		mutableSet:       make(map[reflect.Type]bool),
		cloned:           make(map[reflect.Type][]clonedEdge),
		resolvers:        make(map[reflect.Type]contract.Resolver),
		factoriesByIface: make(map[reflect.Type]contract.Factory),
		factoriesByID:    make(map[string]contract.Factory),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetInstance 注册引导单例（如进程级配置）
// 只允许在 Build 之前调用；实例跨 Worker 生命周期身份稳定
func (c *Container) SetInstance(id string, instance any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.built {
		return ErrAlreadyBuilt
	}
	if id == "" || instance == nil {
		return wiringErrorf("bootstrap instance requires non-empty id and non-nil instance")
	}
	c.bootstrap[id] = instance
	return nil
}

// Registry 契约注册中心（Build 后可用，供巡检命令消费）
func (c *Container) Registry() *contract.Registry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.reg
}

// Built 是否已构建
func (c *Container) Built() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.built
}

// Build 构建完整对象图，每 Worker 只执行一次，必须在任何 Get 之前完成
// 确定性单趟流程：
//  1. 契约注册中心决出各契约 active 实现，建立 ID 索引
//  2. 可变性分类（RequestScoped 标记 / 被 cloned 注入）
//  3. 注入点提取
//  4. 克隆依赖环检测（任何环 = 配置 bug，启动失败）
//  5. 只读图拓扑实例化
//  6. 可变原型拓扑实例化
//  7. 解析器构建
//  8. 工厂构建（≥2 实现的契约）
//  9. 工厂字段回填
func (c *Container) Build() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.built {
		return ErrAlreadyBuilt
	}

	reg := contract.NewRegistry(c.set)
	if err := reg.Build(); err != nil {
		return err
	}
	c.reg = reg

	// 1. ID 索引：契约（接口 → active 实现）与每个实现类
	for ct, impl := range reg.Contracts() {
		c.contractsByID[TypeID(ct)] = ct
		c.active[ct] = impl
	}
	impls := reg.ImplTypes()
	for _, t := range impls {
		c.implsByID[TypeID(t)] = t
	}

	// 2. 可变性分类
	if err := c.classify(impls); err != nil {
		return err
	}

	// 3+4. 克隆边解析与环检测
	if err := c.resolveClonedEdges(impls); err != nil {
		return err
	}
	if err := c.checkCloneCycles(); err != nil {
		return err
	}

	// 5. 只读图
	for _, t := range impls {
		if c.mutableSet[t] {
			continue
		}
		if err := c.buildReadonly(t, nil); err != nil {
			return err
		}
	}

	// 6. 可变原型
	for _, t := range impls {
		if !c.mutableSet[t] {
			continue
		}
		if err := c.buildPrototype(t); err != nil {
			return err
		}
	}

	// 7. 解析器
	for _, rb := range c.set.Resolvers() {
		implList := reg.Implementations(rb.Contract)
		if len(implList) == 0 {
			continue // 契约缺席是正常情况
		}
		instances := make([]any, 0, len(implList))
		for _, im := range implList {
			instances = append(instances, c.instanceOf(im.Type))
		}
		c.resolvers[rb.Contract] = rb.New(instances)
	}

	// 8. 工厂
	if err := c.buildFactories(); err != nil {
		return err
	}

	// 9. 工厂字段回填
	if err := c.backfillFactories(impls); err != nil {
		return err
	}

	c.built = true
	if c.log != nil {
		c.log.Info("🧩 容器构建完成",
			zap.Int("contracts", len(c.contractsByID)),
			zap.Int("readonly", len(c.readonly)),
			zap.Int("prototypes", len(c.prototypes)),
			zap.Int("factories", len(c.factoriesByID)),
		)
	}
	return nil
}

// classify 可变性分类
// 可变条件：(a) 实现 RequestScoped 标记；(b) 被任何类以 cloned 方式注入
// 其余默认只读
func (c *Container) classify(impls []reflect.Type) error {
	requestScoped := reflect.TypeOf((*RequestScoped)(nil)).Elem()
	for _, t := range impls {
		if t.Implements(requestScoped) {
			c.mutableSet[t] = true
		}
	}
	for _, t := range impls {
		descs, err := descriptorsOf(t)
		if err != nil {
			return err
		}
		for _, d := range descs {
			if d.Kind != KindCloned {
				continue
			}
			target, err := c.targetImpl(d.Type, t, d.Field)
			if err != nil {
				return err
			}
			c.mutableSet[target] = true
		}
	}

	// 只读类携带 cloned 注入点 = 共享实例持有每请求克隆，属配置 bug
	for _, t := range impls {
		if c.mutableSet[t] {
			continue
		}
		descs, _ := descriptorsOf(t)
		for _, d := range descs {
			if d.Kind == KindCloned {
				return wiringErrorf("readonly service %s has cloned injection point %s; mark it request-scoped or inject shared",
					t.String(), d.Field)
			}
		}
	}
	return nil
}

// resolveClonedEdges 把可变类的 cloned 字段解析为 (字段索引, 目标实现) 边
func (c *Container) resolveClonedEdges(impls []reflect.Type) error {
	for _, t := range impls {
		if !c.mutableSet[t] {
			continue
		}
		descs, err := descriptorsOf(t)
		if err != nil {
			return err
		}
		for _, d := range descs {
			if d.Kind != KindCloned {
				continue
			}
			target, err := c.targetImpl(d.Type, t, d.Field)
			if err != nil {
				return err
			}
			c.cloned[t] = append(c.cloned[t], clonedEdge{index: d.Index, target: target})
		}
	}
	return nil
}

// checkCloneCycles 克隆依赖环检测
// 只看可变类之间的 cloned 边；任何环都使 Build 失败并带出完整路径
func (c *Container) checkCloneCycles() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[reflect.Type]int)
	var path []reflect.Type

	var visit func(t reflect.Type) *WiringError
	visit = func(t reflect.Type) *WiringError {
		color[t] = gray
		path = append(path, t)
		for _, e := range c.cloned[t] {
			switch color[e.target] {
			case gray:
				// 找到环：截取 path 中自 target 起的一段
				cycle := []string{}
				for i := len(path) - 1; i >= 0; i-- {
					cycle = append([]string{path[i].String()}, cycle...)
					if path[i] == e.target {
						break
					}
				}
				cycle = append(cycle, e.target.String())
				return &WiringError{Detail: "cloned dependency cycle detected", Cycle: cycle}
			case white:
				if err := visit(e.target); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[t] = black
		return nil
	}

	// 稳定遍历顺序，保证报错确定性
	nodes := make([]reflect.Type, 0, len(c.mutableSet))
	for t := range c.mutableSet {
		nodes = append(nodes, t)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].String() < nodes[j].String() })
	for _, t := range nodes {
		if color[t] == white {
			if err := visit(t); err != nil {
				return err
			}
		}
	}
	return nil
}

// targetImpl 把注入点声明类型解析为具体实现类型
// 接口 → 该契约的 active 实现；*Struct → 必须是已注册实现
func (c *Container) targetImpl(ft reflect.Type, holder reflect.Type, field string) (reflect.Type, error) {
	switch ft.Kind() {
	case reflect.Interface:
		if impl, ok := c.active[ft]; ok {
			return impl, nil
		}
		return nil, wiringErrorf("no implementation for contract %s (injected at %s.%s)",
			ft.String(), holder.String(), field)
	case reflect.Ptr:
		if _, ok := c.implsByID[TypeID(ft)]; ok {
			return ft, nil
		}
		return nil, wiringErrorf("type %s is not a registered implementation (injected at %s.%s)",
			ft.String(), holder.String(), field)
	default:
		return nil, wiringErrorf("uninjectable field type %s at %s.%s", ft.String(), holder.String(), field)
	}
}

// buildReadonly 实例化一个只读服务（依赖先行，深度优先）
// visiting 记录构建路径，shared/构造函数依赖成环同样是装配错误
func (c *Container) buildReadonly(t reflect.Type, visiting []reflect.Type) error {
	if _, ok := c.readonly[t]; ok {
		return nil
	}
	for _, v := range visiting {
		if v == t {
			cycle := make([]string, 0, len(visiting)+1)
			for _, p := range visiting {
				cycle = append(cycle, p.String())
			}
			cycle = append(cycle, t.String())
			return &WiringError{Detail: "shared dependency cycle detected", Cycle: cycle}
		}
	}
	visiting = append(visiting, t)

	inst, err := c.instantiate(t, visiting)
	if err != nil {
		return err
	}

	descs, err := descriptorsOf(t)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(inst).Elem()
	for _, d := range descs {
		if d.Kind != KindShared {
			continue
		}
		dep, err := c.sharedDep(d.Type, t, d.Field, visiting)
		if err != nil {
			return err
		}
		rv.FieldByIndex(d.Index).Set(reflect.ValueOf(dep))
	}

	c.readonly[t] = inst
	return nil
}

// buildPrototype 实例化一个可变原型
// shared 字段取只读实例；cloned 字段指向其他原型（不是共享实例）
func (c *Container) buildPrototype(t reflect.Type) error {
	if _, ok := c.prototypes[t]; ok {
		return nil
	}

	inst, err := c.instantiate(t, nil)
	if err != nil {
		return err
	}
	if _, ok := inst.(Mutable); !ok {
		return wiringErrorf("request-scoped service %s must implement CloneScoped() any", t.String())
	}

	descs, err := descriptorsOf(t)
	if err != nil {
		return err
	}
	rv := reflect.ValueOf(inst).Elem()
	for _, d := range descs {
		switch d.Kind {
		case KindShared:
			dep, err := c.sharedDep(d.Type, t, d.Field, nil)
			if err != nil {
				return err
			}
			rv.FieldByIndex(d.Index).Set(reflect.ValueOf(dep))
		case KindCloned:
			target, err := c.targetImpl(d.Type, t, d.Field)
			if err != nil {
				return err
			}
			if err := c.buildPrototype(target); err != nil {
				return err
			}
			rv.FieldByIndex(d.Index).Set(reflect.ValueOf(c.prototypes[target]))
		}
	}

	c.prototypes[t] = inst
	return nil
}

// instantiate 构造实例：优先走构造函数，否则零值实例化
func (c *Container) instantiate(t reflect.Type, visiting []reflect.Type) (any, error) {
	b, ok := c.reg.Binding(t)
	if ok && b.Constructor != nil {
		return c.callConstructor(t, b.Constructor, visiting)
	}
	return reflect.New(t.Elem()).Interface(), nil
}

// callConstructor 调用构造函数，参数按类型从只读实例与引导单例解析
func (c *Container) callConstructor(t reflect.Type, ctor any, visiting []reflect.Type) (any, error) {
	v := reflect.ValueOf(ctor)
	vt := v.Type()
	if vt.Kind() != reflect.Func {
		return nil, wiringErrorf("constructor of %s is not a function", t.String())
	}

	args := make([]reflect.Value, vt.NumIn())
	for i := 0; i < vt.NumIn(); i++ {
		dep, err := c.constructorParam(vt.In(i), t, i, visiting)
		if err != nil {
			return nil, err
		}
		args[i] = reflect.ValueOf(dep)
	}

	outs := v.Call(args)
	if len(outs) == 2 && !outs[1].IsNil() {
		err, _ := outs[1].Interface().(error)
		return nil, wiringErrorf("constructor of %s failed: %v", t.String(), err)
	}
	if len(outs) == 0 {
		return nil, wiringErrorf("constructor of %s returns nothing", t.String())
	}
	return outs[0].Interface(), nil
}

// constructorParam 解析一个构造函数参数
func (c *Container) constructorParam(pt reflect.Type, holder reflect.Type, pos int, visiting []reflect.Type) (any, error) {
	// 已注册实现 / 契约 active 实现
	if dep, err, handled := c.readonlyByType(pt, visiting); handled {
		if err != nil {
			return nil, err
		}
		return dep, nil
	}

	// 引导单例按可赋值类型匹配
	for _, inst := range c.bootstrap {
		if reflect.TypeOf(inst).AssignableTo(pt) {
			return inst, nil
		}
	}

	return nil, wiringErrorf("missing constructor dependency %s (param #%d of %s)",
		pt.String(), pos, holder.String())
}

// sharedDep 解析一个 shared 注入点 → 只读实例
// 目标是可变类时报错：共享字段不得指向请求作用域服务
func (c *Container) sharedDep(ft reflect.Type, holder reflect.Type, field string, visiting []reflect.Type) (any, error) {
	target, err := c.targetImpl(ft, holder, field)
	if err != nil {
		return nil, err
	}
	if c.mutableSet[target] {
		return nil, wiringErrorf("shared injection point %s.%s targets request-scoped type %s; use cloned",
			holder.String(), field, target.String())
	}
	if err := c.buildReadonly(target, visiting); err != nil {
		return nil, err
	}
	return c.readonly[target], nil
}

// readonlyByType 按构造参数类型查只读实例
// 返回 handled=false 表示该类型不归容器管（转引导单例匹配）
func (c *Container) readonlyByType(pt reflect.Type, visiting []reflect.Type) (any, error, bool) {
	var target reflect.Type
	switch pt.Kind() {
	case reflect.Interface:
		impl, ok := c.active[pt]
		if !ok {
			return nil, nil, false
		}
		target = impl
	case reflect.Ptr:
		if _, ok := c.implsByID[TypeID(pt)]; !ok {
			return nil, nil, false
		}
		target = pt
	default:
		return nil, nil, false
	}
	if c.mutableSet[target] {
		return nil, wiringErrorf("constructor dependency %s resolves to request-scoped type %s",
			pt.String(), target.String()), true
	}
	if err := c.buildReadonly(target, visiting); err != nil {
		return nil, err, true
	}
	return c.readonly[target], nil, true
}

// instanceOf 实现类型 → 实例（只读实例或可变原型）
func (c *Container) instanceOf(t reflect.Type) any {
	if inst, ok := c.readonly[t]; ok {
		return inst
	}
	return c.prototypes[t]
}

// Get 解析服务
// 解析顺序：引导单例 → 工厂 → 契约（解析器优先）→ 实现类
// 可变服务返回不带请求上下文的新克隆；请求内解析请走 RequestScope
func (c *Container) Get(id string) (any, error) {
	return c.resolve(id, nil, nil)
}

// MustGet 解析服务，失败 panic（核心装配场景 fail fast）
func (c *Container) MustGet(id string) any {
	v, err := c.Get(id)
	if err != nil {
		panic(fmt.Sprintf("container: MustGet(%q): %v", id, err))
	}
	return v
}

// Has 与 Get 相同的查找逻辑，但无副作用
func (c *Container) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.built {
		return false
	}
	if _, ok := c.bootstrap[id]; ok {
		return true
	}
	if _, ok := c.factoriesByID[id]; ok {
		return true
	}
	if _, ok := c.contractsByID[id]; ok {
		return true
	}
	_, ok := c.implsByID[id]
	return ok
}

// resolve 统一解析入口（请求上下文与租户上下文只注入克隆体）
func (c *Container) resolve(id string, rc *RequestContext, tc *TenantContext) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.built {
		return nil, ErrNotBuilt
	}

	if inst, ok := c.bootstrap[id]; ok {
		return inst, nil
	}
	if f, ok := c.factoriesByID[id]; ok {
		return f, nil
	}

	if ct, ok := c.contractsByID[id]; ok {
		if r, ok := c.resolvers[ct]; ok {
			inst := r.Resolve()
			t := reflect.TypeOf(inst)
			if _, isProto := c.prototypes[t]; isProto {
				return c.cloneInstance(t, rc, tc)
			}
			return inst, nil
		}
		return c.instanceFor(c.active[ct], rc, tc)
	}

	if t, ok := c.implsByID[id]; ok {
		return c.instanceFor(t, rc, tc)
	}

	return nil, &NotFoundError{ID: id}
}

// instanceFor 实现类型 → 交付实例（原型永不直接交付）
func (c *Container) instanceFor(t reflect.Type, rc *RequestContext, tc *TenantContext) (any, error) {
	if _, ok := c.prototypes[t]; ok {
		return c.cloneInstance(t, rc, tc)
	}
	if inst, ok := c.readonly[t]; ok {
		return inst, nil
	}
	return nil, &NotFoundError{ID: TypeID(t)}
}

// cloneInstance 从原型派生请求级克隆
// memo 保证同一次解析中的菱形依赖共享同一克隆
func (c *Container) cloneInstance(t reflect.Type, rc *RequestContext, tc *TenantContext) (any, error) {
	memo := make(map[reflect.Type]any)
	return c.cloneWithMemo(t, rc, tc, memo)
}

func (c *Container) cloneWithMemo(t reflect.Type, rc *RequestContext, tc *TenantContext, memo map[reflect.Type]any) (any, error) {
	if inst, ok := memo[t]; ok {
		return inst, nil
	}
	proto, ok := c.prototypes[t]
	if !ok {
		return nil, &NotFoundError{ID: TypeID(t)}
	}

	inst := proto.(Mutable).CloneScoped()
	memo[t] = inst

	// cloned 字段替换为依赖的新克隆（环已在构建期排除）
	if edges := c.cloned[t]; len(edges) > 0 {
		rv := reflect.ValueOf(inst).Elem()
		for _, e := range edges {
			dep, err := c.cloneWithMemo(e.target, rc, tc, memo)
			if err != nil {
				return nil, err
			}
			rv.FieldByIndex(e.index).Set(reflect.ValueOf(dep))
		}
	}

	rc.inject(inst)
	if tc != nil {
		if a, ok := inst.(TenantAware); ok {
			a.SetTenant(tc)
		}
	}
	return inst, nil
}

// Scope 派生一个请求作用域包装器（每请求一个，归属单个请求 goroutine）
func (c *Container) Scope() *RequestScope {
	return &RequestScope{c: c}
}

// Resolve 泛型解析辅助：Get + 类型断言
func Resolve[T any](g interface{ Get(string) (any, error) }, id string) (T, error) {
	var zero T
	v, err := g.Get(id)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: service %q resolved to %T", zero, id, v)
	}
	return typed, nil
}
