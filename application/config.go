package application

import (
	"time"

	"github.com/syntaxwanderer/syntexa-core-sub000/config"
	"github.com/syntaxwanderer/syntexa-core-sub000/logger"
)

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	RequestLog RequestLogOptions `mapstructure:"request_log"`
}

// RequestLogOptions 请求日志中间件配置
type RequestLogOptions struct {
	Enable    bool     `mapstructure:"enable"`
	SkipPaths []string `mapstructure:"skip_paths"`
}

// AppConfig 应用总配置
type AppConfig struct {
	Server     ServerConfig     `mapstructure:"server"`
	Middleware MiddlewareConfig `mapstructure:"middleware"`
}

// loadAppConfig 从配置加载器抽取应用配置并补默认值
func loadAppConfig(l *config.Loader) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := l.UnmarshalKey("server", &cfg.Server); err != nil {
		return nil, err
	}
	if err := l.UnmarshalKey("middleware", &cfg.Middleware); err != nil {
		return nil, err
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	return cfg, nil
}

// loggerConfigFrom 从配置加载器构建日志管理器配置
func loggerConfigFrom(l *config.Loader, appName string) logger.ManagerConfig {
	cfg := logger.ManagerConfig{
		AppName:       l.GetStringDefault("app.name", appName),
		Level:         l.GetStringDefault("logger.level", "info"),
		Encoding:      l.GetStringDefault("logger.encoding", "console"),
		BaseLogDir:    l.GetStringDefault("logger.base_log_dir", ""),
		EnableConsole: l.GetBool("logger.enable_console") || !l.Has("logger.enable_console"),
		EnableFile:    l.GetBool("logger.enable_file"),
		EnableCaller:  l.GetBool("logger.enable_caller"),
	}
	cfg.ApplyDefaults()
	return cfg
}
