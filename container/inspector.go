package container

import (
	"reflect"
	"sync"
)

// InjectKind 注入点种类（封闭的三元枚举）
type InjectKind int

const (
	// KindShared 注入 Worker 级共享单例
	KindShared InjectKind = iota

	// KindCloned 注入每请求克隆实例
	KindCloned

	// KindFactory 注入契约工厂
	KindFactory
)

// String 种类名（与 inject 标签取值一致）
func (k InjectKind) String() string {
	switch k {
	case KindShared:
		return "shared"
	case KindCloned:
		return "cloned"
	case KindFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// Descriptor 注入点描述：一个 (类型, 字段) 对
type Descriptor struct {
	// Field 字段名
	Field string

	// Index 字段索引（reflect.FieldByIndex 用）
	Index []int

	// Kind 注入种类
	Kind InjectKind

	// Type 字段声明类型（接口或 *Struct）
	Type reflect.Type
}

// descriptorCache 注入点缓存（每类型只检查一次，Worker 生命周期内复用）
var descriptorCache sync.Map // reflect.Type -> []Descriptor

// descriptorsOf 提取一个具体类型的全部注入点
// 规则：
//   - 只看导出字段上的 inject 标签（shared / cloned / factory 三选一）
//   - 未导出字段、无标签字段永远不是注入点
//   - 内建类型（非接口、非结构体指针）字段永远不是注入点，带了标签也忽略
//   - 标签取值非法时报装配错误
//
// t 接受 *Struct 或 Struct 类型
func descriptorsOf(t reflect.Type) ([]Descriptor, error) {
	st := t
	if st.Kind() == reflect.Ptr {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return nil, nil
	}

	if cached, ok := descriptorCache.Load(st); ok {
		return cached.([]Descriptor), nil
	}

	var out []Descriptor
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if f.PkgPath != "" {
			continue // 未导出
		}
		tag, ok := f.Tag.Lookup("inject")
		if !ok {
			continue
		}
		if !injectable(f.Type) {
			continue // 内建类型不是注入点
		}

		var kind InjectKind
		switch tag {
		case "shared":
			kind = KindShared
		case "cloned":
			kind = KindCloned
		case "factory":
			kind = KindFactory
		default:
			return nil, wiringErrorf("invalid inject tag %q on %s.%s (want shared|cloned|factory)",
				tag, st.String(), f.Name)
		}

		out = append(out, Descriptor{
			Field: f.Name,
			Index: f.Index,
			Kind:  kind,
			Type:  f.Type,
		})
	}

	descriptorCache.Store(st, out)
	return out, nil
}

// injectable 字段类型是否可作为注入点（接口 或 结构体指针）
func injectable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface:
		return true
	case reflect.Ptr:
		return t.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}
