package application

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/syntaxwanderer/syntexa-core-sub000/container"
	"github.com/syntaxwanderer/syntexa-core-sub000/httpx"
	"github.com/syntaxwanderer/syntexa-core-sub000/logger"
	"github.com/syntaxwanderer/syntexa-core-sub000/middleware"
)

// HTTPServer 封装 HTTP 服务（基于 Gin）
type HTTPServer struct {
	engine     *gin.Engine
	httpServer *http.Server
	port       int
	mode       string
}

// NewHTTPServer 创建 HTTP 服务（统一日志方案）
// 中间件顺序：RequestLog（最外层记录最终状态码）→ Recovery（panic 兜底）
// → RequestScope（每请求作用域，业务 handler 之前三要素已就位）
func NewHTTPServer(cfg ServerConfig, middlewareCfg MiddlewareConfig, c *container.Container) *HTTPServer {
	// 接管 Gin 内核日志输出
	gin.DefaultWriter = logger.NewGinLogWriter("gin")
	gin.DefaultErrorWriter = logger.NewGinLogWriter("gin")

	gin.SetMode(cfg.Mode)

	// 用 gin.New() 而不是 gin.Default()，Logger/Recovery 用自定义版本
	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	if middlewareCfg.RequestLog.Enable {
		requestLogCfg := middleware.DefaultRequestLogConfig()
		requestLogCfg.SkipPaths = middlewareCfg.RequestLog.SkipPaths
		engine.Use(middleware.RequestLogWithConfig(requestLogCfg))
	}

	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestScope(c))

	// 404/405 统一响应
	engine.NoRoute(httpx.NoRouteHandler())
	engine.NoMethod(httpx.NoMethodHandler())

	return &HTTPServer{
		engine: engine,
		port:   cfg.Port,
		mode:   cfg.Mode,
	}
}

// Engine 获取 Gin 引擎（业务层注册路由用）
func (s *HTTPServer) Engine() *gin.Engine {
	return s.engine
}

// Start 非阻塞启动（短暂等待确认启动成功）
func (s *HTTPServer) Start() error {
	addr := fmt.Sprintf(":%d", s.port)

	// 预检端口可用性
	if err := s.checkPortAvailable(); err != nil {
		return fmt.Errorf("端口 %d 不可用: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.GetLogger("http").Debug("🚀 HTTP server starting",
			zap.Int("port", s.port),
			zap.String("mode", s.mode))

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// 短暂等待足以发现端口绑定类错误
	select {
	case err := <-errChan:
		logger.GetLogger("http").Error("❌ HTTP server start failed", zap.Error(err))
		return fmt.Errorf("HTTP 服务启动失败: %w", err)
	case <-time.After(50 * time.Millisecond):
		logger.GetLogger("http").Debug("✅ HTTP server started successfully", zap.Int("port", s.port))
		return nil
	}
}

// Serve 阻塞运行到 ctx 取消，随后在 shutdownTimeout 内优雅关停
// 监听 goroutine 与关停 goroutine 用 errgroup 归并收敛
func (s *HTTPServer) Serve(ctx context.Context, shutdownTimeout time.Duration) error {
	if err := s.checkPortAvailable(); err != nil {
		return fmt.Errorf("端口 %d 不可用: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.engine,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// checkPortAvailable 检查端口是否可用
func (s *HTTPServer) checkPortAvailable() error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return err
	}
	return ln.Close()
}

// Shutdown 优雅关闭 HTTP 服务
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	log := logger.GetLogger("http")
	log.Debug("Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP Server 关闭失败: %w", err)
	}

	log.Debug("✅ HTTP server closed")
	return nil
}
