// Package application 提供 Worker 型应用的启动框架
// 一次启动构建依赖容器（只读实例 + 可变原型），随后每请求派生独立的
// 请求作用域，Worker 生命周期内容器图保持只读
package application

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/syntaxwanderer/syntexa-core-sub000/config"
	"github.com/syntaxwanderer/syntexa-core-sub000/container"
	"github.com/syntaxwanderer/syntexa-core-sub000/contract"
	"github.com/syntaxwanderer/syntexa-core-sub000/logger"
)

// AppState 应用状态
type AppState int

const (
	StateInit AppState = iota
	StateSetup
	StateRunning
	StateStopping
	StateStopped
)

// String 状态字符串表示
func (s AppState) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateSetup:
		return "Setup"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// WorkerApplication Worker 型 HTTP 应用
// 生命周期：New → Setup（配置/日志/容器构建）→ Run（HTTP 服务）→ Shutdown
type WorkerApplication struct {
	name         string
	version      string
	configPath   string
	configPrefix string

	discovery *contract.Set

	// 核心组件（Setup 阶段初始化）
	loader    *config.Loader
	log       *logger.CtxZapLogger
	container *container.Container
	appConfig *AppConfig

	// HTTP
	httpServer      *HTTPServer
	routerRegistrar RouterRegistrar

	// 额外的 bootstrap 实例（Setup 时注册进容器）
	bootstrap map[string]any

	// 生命周期
	ctx    context.Context
	cancel context.CancelFunc
	state  AppState
	mu     sync.RWMutex

	// 回调
	onSetup    func(*WorkerApplication) error
	onReady    func(*WorkerApplication) error
	onShutdown func(context.Context) error
}

// New 创建 Worker 应用
// name: 应用名；set: 服务发现结果（模块顺序 + 契约绑定）
func New(name string, set *contract.Set) *WorkerApplication {
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerApplication{
		name:         name,
		configPath:   "../configs/" + name,
		configPrefix: "APP",
		discovery:    set,
		bootstrap:    make(map[string]any),
		ctx:          ctx,
		cancel:       cancel,
		state:        StateInit,
	}
}

// WithConfigPath 设置配置目录（链式调用）
func (a *WorkerApplication) WithConfigPath(path string) *WorkerApplication {
	a.configPath = path
	return a
}

// WithConfigPrefix 设置环境变量前缀（链式调用）
func (a *WorkerApplication) WithConfigPrefix(prefix string) *WorkerApplication {
	a.configPrefix = prefix
	return a
}

// WithVersion 设置应用版本号（链式调用），启动时打印
func (a *WorkerApplication) WithVersion(version string) *WorkerApplication {
	a.version = version
	return a
}

// WithBootstrap 注册额外的 bootstrap 实例（Setup 时进入容器）
func (a *WorkerApplication) WithBootstrap(id string, instance any) *WorkerApplication {
	a.bootstrap[id] = instance
	return a
}

// RegisterRoutes 注册 HTTP 路由
func (a *WorkerApplication) RegisterRoutes(registrar RouterRegistrar) *WorkerApplication {
	a.routerRegistrar = registrar
	return a
}

// OnSetup 注册 Setup 阶段回调
func (a *WorkerApplication) OnSetup(fn func(*WorkerApplication) error) *WorkerApplication {
	a.onSetup = fn
	return a
}

// OnReady 注册启动完成回调
func (a *WorkerApplication) OnReady(fn func(*WorkerApplication) error) *WorkerApplication {
	a.onReady = fn
	return a
}

// OnShutdown 注册关闭前回调（清理资源）
func (a *WorkerApplication) OnShutdown(fn func(context.Context) error) *WorkerApplication {
	a.onShutdown = fn
	return a
}

// Setup 初始化：配置 → 日志 → 容器构建
// 任何装配错误（缺依赖、克隆依赖成环）都在这里失败，不进入服务状态
func (a *WorkerApplication) Setup() error {
	a.setState(StateSetup)

	// 1. 配置（文件 + 环境变量覆盖）
	a.loader = config.DefaultLoader(a.configPath, a.configPrefix)
	if err := a.loader.Load(); err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if err := config.Validate(a.loader); err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}
	appCfg, err := loadAppConfig(a.loader)
	if err != nil {
		return fmt.Errorf("解析应用配置失败: %w", err)
	}
	a.appConfig = appCfg

	// 2. 日志
	logger.InitManager(loggerConfigFrom(a.loader, a.name))
	a.log = logger.GetLogger(a.name)

	// 3. 依赖容器：bootstrap 实例先注册，随后一次性构建
	c := container.New(a.discovery, container.WithLogger(a.log))
	if err := c.SetInstance("config", a.loader); err != nil {
		return err
	}
	if err := c.SetInstance("logger", a.log); err != nil {
		return err
	}
	for id, inst := range a.bootstrap {
		if err := c.SetInstance(id, inst); err != nil {
			return err
		}
	}
	if err := c.Build(); err != nil {
		return fmt.Errorf("容器构建失败: %w", err)
	}
	a.container = c

	a.log.DebugCtx(a.ctx, "✅ 应用初始化完成",
		zap.String("config_path", a.configPath),
		zap.Strings("config_files", a.loader.LoadedFiles()))

	if a.onSetup != nil {
		if err := a.onSetup(a); err != nil {
			return fmt.Errorf("onSetup failed: %w", err)
		}
	}
	return nil
}

// Run 启动应用并阻塞到收到关闭信号（SIGINT/SIGTERM）
// 第一次信号触发优雅关停；关停期间再次收到信号走系统默认处理（立即退出）
func (a *WorkerApplication) Run() error {
	if err := a.Setup(); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(a.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	if a.routerRegistrar == nil {
		<-ctx.Done()
		return a.finish()
	}

	a.httpServer = NewHTTPServer(a.appConfig.Server, a.appConfig.Middleware, a.container)
	a.routerRegistrar.RegisterRoutes(NewRouter(a.httpServer.Engine(), a.container))

	a.setState(StateRunning)
	if a.onReady != nil {
		if err := a.onReady(a); err != nil {
			return fmt.Errorf("onReady failed: %w", err)
		}
	}

	fields := []zap.Field{zap.Int("port", a.appConfig.Server.Port)}
	if a.version != "" {
		fields = append(fields, zap.String("version", a.version))
	}
	a.log.InfoCtx(a.ctx, "✅ Worker 应用已启动", fields...)

	serveErr := a.httpServer.Serve(ctx, a.appConfig.Server.ShutdownTimeout)
	if err := a.finish(); err != nil {
		return err
	}
	return serveErr
}

// finish 收尾：业务清理回调 + 日志刷盘 + 状态落定
func (a *WorkerApplication) finish() error {
	a.setState(StateStopping)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.onShutdown != nil {
		if err := a.onShutdown(ctx); err != nil {
			a.log.ErrorCtx(ctx, "OnShutdown callback failed", zap.Error(err))
		}
	}

	logger.Sync()
	a.setState(StateStopped)
	return nil
}

// RunNonBlocking 非阻塞启动（测试或需要手动控制生命周期的场景）
func (a *WorkerApplication) RunNonBlocking() error {
	if err := a.Setup(); err != nil {
		return fmt.Errorf("setup failed: %w", err)
	}

	if err := a.startHTTPServer(); err != nil {
		return err
	}

	a.setState(StateRunning)
	if a.onReady != nil {
		if err := a.onReady(a); err != nil {
			return fmt.Errorf("onReady failed: %w", err)
		}
	}

	fields := []zap.Field{zap.String("state", a.GetState().String())}
	if a.version != "" {
		fields = append(fields, zap.String("version", a.version))
	}
	a.log.InfoCtx(a.ctx, "✅ Worker 应用已启动", fields...)
	return nil
}

// startHTTPServer 启动 HTTP 服务（未注册路由时跳过）
func (a *WorkerApplication) startHTTPServer() error {
	if a.routerRegistrar == nil {
		return nil
	}

	a.httpServer = NewHTTPServer(a.appConfig.Server, a.appConfig.Middleware, a.container)
	a.routerRegistrar.RegisterRoutes(NewRouter(a.httpServer.Engine(), a.container))
	a.log.DebugCtx(a.ctx, "✅ 路由注册完成")

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("启动 HTTP 服务失败: %w", err)
	}
	return nil
}

// WaitShutdown 等待关闭信号
// 双信号机制：第一次信号触发优雅关停，第二次信号立即强制退出
func (a *WorkerApplication) WaitShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		a.log.DebugCtx(a.ctx, "收到关闭信号，开始优雅关停", zap.String("signal", sig.String()))
		a.cancel()

		go func() {
			sig := <-quit
			a.log.WarnCtx(context.Background(), "⚠️  第二次信号，强制退出", zap.String("signal", sig.String()))
			os.Exit(1)
		}()

	case <-a.ctx.Done():
		a.log.DebugCtx(context.Background(), "Context 已取消，开始优雅关停")
	}
}

// gracefulShutdown 优雅关闭：先停 HTTP，再收尾
// RunNonBlocking 启动的应用走这条路径（Run 由 Serve 自行停 HTTP）
func (a *WorkerApplication) gracefulShutdown() error {
	timeout := 10 * time.Second
	if a.appConfig != nil && a.appConfig.Server.ShutdownTimeout > 0 {
		timeout = a.appConfig.Server.ShutdownTimeout
	}

	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.log.ErrorCtx(ctx, "HTTP 服务关闭失败", zap.Error(err))
		}
		cancel()
	}

	return a.finish()
}

// Cancel 手动触发关闭（测试或程序控制）
func (a *WorkerApplication) Cancel() {
	a.cancel()
}

// Shutdown 手动触发完整关停（非阻塞启动场景配套使用）
func (a *WorkerApplication) Shutdown() error {
	a.cancel()
	return a.gracefulShutdown()
}

// Name 应用名
func (a *WorkerApplication) Name() string {
	return a.name
}

// Version 应用版本号
func (a *WorkerApplication) Version() string {
	return a.version
}

// Container 依赖容器（Setup 后可用）
func (a *WorkerApplication) Container() *container.Container {
	return a.container
}

// ConfigLoader 配置加载器（Setup 后可用）
func (a *WorkerApplication) ConfigLoader() *config.Loader {
	return a.loader
}

// Logger 应用日志实例（Setup 后可用）
func (a *WorkerApplication) Logger() *logger.CtxZapLogger {
	if a.log == nil {
		panic("logger not initialized, please call Setup() first")
	}
	return a.log
}

// HTTPServer HTTP 服务实例（测试用）
func (a *WorkerApplication) HTTPServer() *HTTPServer {
	return a.httpServer
}

// GetState 当前状态（线程安全）
func (a *WorkerApplication) GetState() AppState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Context 应用上下文
func (a *WorkerApplication) Context() context.Context {
	return a.ctx
}

// setState 设置状态（线程安全）
func (a *WorkerApplication) setState(state AppState) {
	a.mu.Lock()
	defer a.mu.Unlock()

	oldState := a.state
	a.state = state

	if a.log != nil {
		a.log.DebugCtx(a.ctx, "State changed",
			zap.String("from", oldState.String()),
			zap.String("to", state.String()))
	}
}
