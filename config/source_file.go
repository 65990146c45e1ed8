package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// FileSource YAML file configuration source
type FileSource struct {
	path     string
	optional bool
}

// NewFileSource creates a file source
// optional: missing file is not an error (returns empty map)
func NewFileSource(path string, optional bool) *FileSource {
	return &FileSource{path: path, optional: optional}
}

// Name implements ConfigSource
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Priority implements ConfigSource
func (s *FileSource) Priority() int {
	return PriorityFile
}

// Path the file path (for logging which files were loaded)
func (s *FileSource) Path() string {
	return s.path
}

// Load reads the YAML file and flattens it to dot-separated keys
func (s *FileSource) Load() (map[string]any, error) {
	if _, err := os.Stat(s.path); err != nil {
		if s.optional && os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", s.path, err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", s.path, err)
	}

	out := make(map[string]any)
	for _, key := range v.AllKeys() {
		out[key] = v.Get(key)
	}
	return out, nil
}
