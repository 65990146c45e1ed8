package logger

import (
	"go.uber.org/zap/zapcore"
)

// ManagerConfig 全局日志管理器配置（所有模块共享）
type ManagerConfig struct {
	AppName       string `mapstructure:"app_name"`       // 应用名（自动注入所有日志）
	Level         string `mapstructure:"level"`          // debug / info / warn / error
	Encoding      string `mapstructure:"encoding"`       // json 或 console
	BaseLogDir    string `mapstructure:"base_log_dir"`   // 日志根目录（默认 logs/）
	EnableConsole bool   `mapstructure:"enable_console"` // 是否输出到控制台
	EnableFile    bool   `mapstructure:"enable_file"`    // 是否输出到文件
	EnableCaller  bool   `mapstructure:"enable_caller"`  // 是否记录调用位置

	// 文件切割配置（lumberjack）
	MaxSize    int  `mapstructure:"max_size"`    // 单文件最大体积（MB）
	MaxBackups int  `mapstructure:"max_backups"` // 保留旧文件数
	MaxAge     int  `mapstructure:"max_age"`     // 保留天数
	Compress   bool `mapstructure:"compress"`    // 是否压缩

	// 请求 ID 提取配置
	RequestIDKey       string `mapstructure:"request_id_key"`        // context 中的 key（默认 request_id）
	RequestIDFieldName string `mapstructure:"request_id_field_name"` // 日志字段名（默认 request_id）
}

// ApplyDefaults 零值字段填充默认值
func (c *ManagerConfig) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Encoding == "" {
		c.Encoding = "console"
	}
	if c.BaseLogDir == "" {
		c.BaseLogDir = "logs"
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 100
	}
	if c.MaxBackups <= 0 {
		c.MaxBackups = 5
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 7
	}
	if c.RequestIDKey == "" {
		c.RequestIDKey = "request_id"
	}
	if c.RequestIDFieldName == "" {
		c.RequestIDFieldName = "request_id"
	}
}

// DefaultManagerConfig 返回默认配置（控制台输出，info 级别）
func DefaultManagerConfig() ManagerConfig {
	cfg := ManagerConfig{EnableConsole: true}
	cfg.ApplyDefaults()
	return cfg
}

// ParseLevel 解析日志级别字符串（非法值回退 info）
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
