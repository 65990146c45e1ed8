package httpx

import "github.com/gin-gonic/gin"

// Handler 请求处理器能力
// 实现该接口的服务自动声明为请求作用域（每请求克隆，见容器的可变性分类）：
// Handler 的方法集包含 RequestScoped() 标记方法，与容器的 RequestScoped
// 标记接口结构化匹配，无需导入容器包
type Handler interface {
	// Handle 处理一次请求
	Handle(c *gin.Context) error

	// RequestScoped 请求作用域标记（空实现即可）
	RequestScoped()
}

// RequestAware 可注入入站请求的能力
// 克隆可变服务时，容器对实现该接口的克隆体调用 SetRequest
type RequestAware interface {
	SetRequest(r *Request)
}

// SessionAware 可注入会话的能力
type SessionAware interface {
	SetSession(s *Session)
}

// CookieJarAware 可注入 CookieJar 的能力
type CookieJarAware interface {
	SetCookieJar(j *CookieJar)
}
