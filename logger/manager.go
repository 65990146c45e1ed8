package logger

import (
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Manager Logger 管理器（管理多个模块 Logger 实例）
type Manager struct {
	baseConfig ManagerConfig
	loggers    map[string]*CtxZapLogger // 模块名 -> CtxZapLogger
	mu         sync.RWMutex
}

var (
	globalManager *Manager
	globalMu      sync.RWMutex
)

// NewManager 创建独立的 Manager 实例
// cfg 中的零值字段会自动填充为默认值
func NewManager(cfg ManagerConfig) *Manager {
	cfg.ApplyDefaults()
	return &Manager{
		baseConfig: cfg,
		loggers:    make(map[string]*CtxZapLogger),
	}
}

// InitManager 初始化全局 Logger 管理器
// 允许重复调用（后者覆盖前者），便于 Worker 重建日志配置
func InitManager(cfg ManagerConfig) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalManager = NewManager(cfg)
}

// GetLogger 从全局管理器获取模块 Logger
// 全局管理器未初始化时自动使用默认配置（保证测试可用）
func GetLogger(module string) *CtxZapLogger {
	globalMu.RLock()
	m := globalManager
	globalMu.RUnlock()
	if m == nil {
		globalMu.Lock()
		if globalManager == nil {
			globalManager = NewManager(DefaultManagerConfig())
		}
		m = globalManager
		globalMu.Unlock()
	}
	return m.GetLogger(module)
}

// GetLogger 获取指定模块的 CtxZapLogger（线程安全，按需创建）
// 返回的 Logger 已自动包含 module 字段
func (m *Manager) GetLogger(module string) *CtxZapLogger {
	m.mu.RLock()
	if l, ok := m.loggers[module]; ok {
		m.mu.RUnlock()
		return l
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// 双重检查（避免并发创建）
	if l, ok := m.loggers[module]; ok {
		return l
	}

	base := m.createLogger(module).With(zap.String("module", module))
	l := &CtxZapLogger{
		base:   base.WithOptions(zap.AddCallerSkip(1)),
		module: module,
		config: &m.baseConfig,
	}
	m.loggers[module] = l
	return l
}

// createLogger 创建底层 zap.Logger
func (m *Manager) createLogger(module string) *zap.Logger {
	cfg := m.baseConfig
	level := ParseLevel(cfg.Level)

	var encoder zapcore.Encoder
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Encoding == "console" {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	var cores []zapcore.Core
	if cfg.EnableConsole {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(stdout())), level))
	}
	if cfg.EnableFile {
		w := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.BaseLogDir, module+".log"),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(w), level))
	}
	if len(cores) == 0 {
		return zap.NewNop()
	}

	opts := []zap.Option{}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(zapcore.NewTee(cores...), opts...)
}

// Sync 刷新全部模块 Logger 的缓冲
func (m *Manager) Sync() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.loggers {
		_ = l.base.Sync()
	}
}

// Sync 刷新全局管理器全部 Logger 的缓冲（应用退出前调用）
func Sync() {
	globalMu.RLock()
	m := globalManager
	globalMu.RUnlock()
	if m != nil {
		m.Sync()
	}
}
