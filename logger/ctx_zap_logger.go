// Package logger 提供基于 zap 的结构化日志组件
package logger

import (
	"context"
	"os"

	"go.uber.org/zap"
)

// ctxKey context key 类型（避免与外部字符串 key 冲突时仍兼容字符串 key）
type ctxKey string

// CtxZapLogger Context-Aware 的 Zap Logger 包装器
// module 在创建时绑定，使用时只需传递 ctx（自动提取 request_id）
type CtxZapLogger struct {
	base   *zap.Logger
	module string
	config *ManagerConfig
}

// InfoCtx 记录 Info 级别日志（自动提取 request_id）
func (l *CtxZapLogger) InfoCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Info(msg, l.enrichFields(ctx, fields)...)
}

// Info 记录 Info 级别日志（无 context 便捷方法）
func (l *CtxZapLogger) Info(msg string, fields ...zap.Field) {
	l.InfoCtx(context.Background(), msg, fields...)
}

// DebugCtx 记录 Debug 级别日志
func (l *CtxZapLogger) DebugCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Debug(msg, l.enrichFields(ctx, fields)...)
}

// Debug 记录 Debug 级别日志（无 context 便捷方法）
func (l *CtxZapLogger) Debug(msg string, fields ...zap.Field) {
	l.DebugCtx(context.Background(), msg, fields...)
}

// WarnCtx 记录 Warn 级别日志
func (l *CtxZapLogger) WarnCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Warn(msg, l.enrichFields(ctx, fields)...)
}

// Warn 记录 Warn 级别日志（无 context 便捷方法）
func (l *CtxZapLogger) Warn(msg string, fields ...zap.Field) {
	l.WarnCtx(context.Background(), msg, fields...)
}

// ErrorCtx 记录 Error 级别日志
func (l *CtxZapLogger) ErrorCtx(ctx context.Context, msg string, fields ...zap.Field) {
	l.base.Error(msg, l.enrichFields(ctx, fields)...)
}

// Error 记录 Error 级别日志（无 context 便捷方法）
func (l *CtxZapLogger) Error(msg string, fields ...zap.Field) {
	l.ErrorCtx(context.Background(), msg, fields...)
}

// With 返回带预设字段的新 Logger（链式调用）
func (l *CtxZapLogger) With(fields ...zap.Field) *CtxZapLogger {
	return &CtxZapLogger{
		base:   l.base.With(fields...),
		module: l.module,
		config: l.config,
	}
}

// Module 返回绑定的模块名
func (l *CtxZapLogger) Module() string {
	return l.module
}

// GetZapLogger 获取底层 *zap.Logger（第三方库集成用）
func (l *CtxZapLogger) GetZapLogger() *zap.Logger {
	return l.base
}

// enrichFields 自动添加 app_name 与 request_id
func (l *CtxZapLogger) enrichFields(ctx context.Context, fields []zap.Field) []zap.Field {
	enriched := make([]zap.Field, 0, len(fields)+2)
	if l.config != nil {
		enriched = append(enriched, zap.String("app_name", l.config.AppName))
		if rid := requestIDFromContext(ctx, l.config.RequestIDKey); rid != "" {
			enriched = append(enriched, zap.String(l.config.RequestIDFieldName, rid))
		}
	}
	return append(enriched, fields...)
}

// WithRequestID 把请求 ID 写入 context（中间件调用）
func WithRequestID(ctx context.Context, key, requestID string) context.Context {
	return context.WithValue(ctx, ctxKey(key), requestID)
}

// requestIDFromContext 从 context 提取请求 ID
// 同时兼容 ctxKey 与裸字符串 key（外部代码可能用后者）
func requestIDFromContext(ctx context.Context, key string) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(ctxKey(key)); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if v := ctx.Value(key); v != nil { //nolint:staticcheck // 兼容字符串 key
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// stdout 便于测试替换的标准输出
func stdout() *os.File {
	return os.Stdout
}
