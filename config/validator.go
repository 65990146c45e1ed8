package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate 校验框架关心的配置节
// 只校验已出现的键，缺省值由各组件自行填充
func Validate(l *Loader) error {
	if l.Has("server.port") {
		if err := validation.Validate(l.GetInt("server.port"),
			validation.Min(1), validation.Max(65535)); err != nil {
			return validation.Errors{"server.port": err}
		}
	}
	if l.Has("logger.level") {
		if err := validation.Validate(l.GetString("logger.level"),
			validation.In("debug", "info", "warn", "error")); err != nil {
			return validation.Errors{"logger.level": err}
		}
	}
	if l.Has("server.mode") {
		if err := validation.Validate(l.GetString("server.mode"),
			validation.In("debug", "release", "test")); err != nil {
			return validation.Errors{"server.mode": err}
		}
	}
	return nil
}
