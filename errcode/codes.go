package errcode

import "net/http"

// 模块码分配
// 10 = container（依赖注入内核）
// 11 = config
// 12 = server（HTTP 入口）
const (
	ModuleContainer = 10
	ModuleConfig    = 11
	ModuleServer    = 12
)

// 框架自身的错误码
var (
	// ErrServiceNotFound 服务 ID 无法解析
	ErrServiceNotFound = New(ModuleContainer, 1, "container", "service not found", http.StatusNotFound)

	// ErrContextNotInitialized 请求上下文未就绪（三要素未全部 set）
	ErrContextNotInitialized = New(ModuleContainer, 2, "container", "request context not initialized", http.StatusInternalServerError)

	// ErrUnknownFactoryKey 工厂键未命中
	ErrUnknownFactoryKey = New(ModuleContainer, 3, "container", "unknown factory key", http.StatusInternalServerError)

	// ErrWiring 构建期装配错误（缺依赖 / 克隆依赖成环）
	ErrWiring = New(ModuleContainer, 4, "container", "container wiring error", http.StatusInternalServerError)

	// ErrConfigLoad 配置加载失败
	ErrConfigLoad = New(ModuleConfig, 1, "config", "config load failed", http.StatusInternalServerError)

	// ErrInternal 未分类内部错误
	ErrInternal = New(ModuleServer, 1, "server", "internal server error", http.StatusInternalServerError)

	// ErrRouteNotFound 路由不存在
	ErrRouteNotFound = New(ModuleServer, 2, "server", "route not found", http.StatusNotFound)

	// ErrMethodNotAllowed 方法不允许
	ErrMethodNotAllowed = New(ModuleServer, 3, "server", "method not allowed", http.StatusMethodNotAllowed)
)
