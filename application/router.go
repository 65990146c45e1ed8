package application

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/syntaxwanderer/syntexa-core-sub000/container"
	"github.com/syntaxwanderer/syntexa-core-sub000/errcode"
	"github.com/syntaxwanderer/syntexa-core-sub000/httpx"
	"github.com/syntaxwanderer/syntexa-core-sub000/middleware"
)

// RouterRegistrar 业务层路由注册接口
type RouterRegistrar interface {
	RegisterRoutes(r *Router)
}

// RouterRegistrarFunc 函数式路由注册器
type RouterRegistrarFunc func(r *Router)

func (f RouterRegistrarFunc) RegisterRoutes(r *Router) { f(r) }

// Router 路由注册器
// 把服务 ID 绑定到路由：handler 每请求从请求作用域解析（可变服务拿到
// 的是带上下文的克隆体），只读 handler 直接复用共享实例
type Router struct {
	engine *gin.Engine
	c      *container.Container
	prefix string
}

// NewRouter 创建路由注册器
func NewRouter(engine *gin.Engine, c *container.Container) *Router {
	return &Router{engine: engine, c: c}
}

// Group 创建带前缀的子路由器
func (r *Router) Group(prefix string) *Router {
	return &Router{engine: r.engine, c: r.c, prefix: r.prefix + prefix}
}

// Handle 把服务 ID 绑定到 method+path
// 服务必须实现 httpx.Handler；解析或断言失败走统一错误响应
func (r *Router) Handle(method, path, serviceID string) *Router {
	r.engine.Handle(method, r.prefix+path, r.handlerFor(serviceID))
	return r
}

// GET 绑定 GET 路由
func (r *Router) GET(path, serviceID string) *Router {
	return r.Handle("GET", path, serviceID)
}

// POST 绑定 POST 路由
func (r *Router) POST(path, serviceID string) *Router {
	return r.Handle("POST", path, serviceID)
}

// PUT 绑定 PUT 路由
func (r *Router) PUT(path, serviceID string) *Router {
	return r.Handle("PUT", path, serviceID)
}

// DELETE 绑定 DELETE 路由
func (r *Router) DELETE(path, serviceID string) *Router {
	return r.Handle("DELETE", path, serviceID)
}

// HandleFunc 直接绑定 gin.HandlerFunc（不经容器的轻量端点）
func (r *Router) HandleFunc(method, path string, fn gin.HandlerFunc) *Router {
	r.engine.Handle(method, r.prefix+path, fn)
	return r
}

// handlerFor 服务 ID → gin.HandlerFunc
func (r *Router) handlerFor(serviceID string) gin.HandlerFunc {
	return func(gc *gin.Context) {
		scope := middleware.ScopeFrom(gc)
		if scope == nil {
			httpx.HandleError(gc, fmt.Errorf("request scope middleware not installed"))
			return
		}

		v, err := scope.Get(serviceID)
		if err != nil {
			httpx.HandleError(gc, containerError(err))
			return
		}
		h, ok := v.(httpx.Handler)
		if !ok {
			httpx.HandleError(gc, fmt.Errorf("service %q does not implement httpx.Handler", serviceID))
			return
		}

		if err := h.Handle(gc); err != nil {
			httpx.HandleError(gc, containerError(err))
		}
	}
}

// containerError 把容器错误归到对应的分层错误码
// httpx 在容器的下层，不能反向依赖容器包，映射放在路由层做；
// 非容器错误原样返回，由 HandleError 按通用规则处理
func containerError(err error) error {
	var uk *container.UnknownFactoryKeyError
	var we *container.WiringError
	switch {
	case container.IsNotFound(err):
		return errcode.ErrServiceNotFound.WithMsg(err.Error()).WithCause(err)
	case container.IsContextNotInitialized(err):
		return errcode.ErrContextNotInitialized.WithMsg(err.Error()).WithCause(err)
	case errors.As(err, &uk):
		return errcode.ErrUnknownFactoryKey.WithMsg(err.Error()).WithCause(err)
	case errors.As(err, &we):
		return errcode.ErrWiring.WithCause(err)
	}
	return err
}
