package container

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// 容器的错误分类（§错误语义）
// 全部属于程序/配置错误：不重试、不吞掉，始终向直接调用方传播
var (
	// ErrNotBuilt 容器尚未 Build 就调用 Get/Has
	ErrNotBuilt = errors.New("container: not built yet, call Build() first")

	// ErrAlreadyBuilt Build 只允许执行一次
	ErrAlreadyBuilt = errors.New("container: already built")
)

// NotFoundError 服务 ID 无法解析
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("container: service not found: %q", e.ID)
}

// IsNotFound 判断是否为 Not Found 错误
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// WiringError 构建期装配错误（缺依赖、克隆依赖成环、缺克隆能力等）
// 只在 Build() 期间产生，必须使 Worker 启动失败（fail fast），
// 绝不带着装配不完整的对象图对外服务
type WiringError struct {
	// Detail 错误描述
	Detail string

	// Cycle 检出的克隆依赖环（完整路径，首尾同名）；非环错误为空
	Cycle []string
}

func (e *WiringError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("container: wiring error: %s: %s", e.Detail, strings.Join(e.Cycle, " -> "))
	}
	return "container: wiring error: " + e.Detail
}

func wiringErrorf(format string, args ...any) *WiringError {
	return &WiringError{Detail: fmt.Sprintf(format, args...)}
}

// ContextNotInitializedError 请求上下文值在本请求内尚未 Set 就被请求
// 与 Not Found 区分开，便于定位生命周期顺序 bug
type ContextNotInitializedError struct {
	ID string
}

func (e *ContextNotInitializedError) Error() string {
	return fmt.Sprintf("container: request context value %q not initialized for current request", e.ID)
}

// IsContextNotInitialized 判断是否为上下文未就绪错误
func IsContextNotInitialized(err error) bool {
	var ce *ContextNotInitializedError
	return errors.As(err, &ce)
}

// UnknownFactoryKeyError 工厂键未命中
// 消息必须列出全部可用键（辅助排障，绝不猜测）
type UnknownFactoryKeyError struct {
	Contract  string
	Key       string
	Available []string
}

func (e *UnknownFactoryKeyError) Error() string {
	avail := make([]string, len(e.Available))
	copy(avail, e.Available)
	sort.Strings(avail)
	return fmt.Sprintf("container: unknown key %q for contract %s, available keys: [%s]",
		e.Key, e.Contract, strings.Join(avail, ", "))
}
