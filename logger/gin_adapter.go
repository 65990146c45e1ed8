package logger

import (
	"strings"
)

// GinLogWriter Gin 日志适配器（实现 io.Writer 接口）
// 把 Gin 的文本日志接入结构化日志组件
type GinLogWriter struct {
	module string
}

// NewGinLogWriter 创建 Gin 日志适配器
// module: 日志模块名（如 gin-route、gin-internal）
func NewGinLogWriter(module string) *GinLogWriter {
	return &GinLogWriter{module: module}
}

// Write 实现 io.Writer 接口
// 按日志内容分类转换为对应级别的结构化日志
func (w *GinLogWriter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return len(p), nil
	}

	l := GetLogger(w.module)
	switch {
	case strings.Contains(msg, "[GIN-debug]"):
		l.Debug(msg)
	case strings.Contains(msg, "[Recovery]") || strings.Contains(msg, "panic recovered"):
		l.Error(msg)
	default:
		l.Info(msg)
	}

	return len(p), nil
}
