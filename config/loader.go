package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Loader configuration loader (supporting multiple data sources)
// The loaded *Loader is the canonical bootstrap singleton registered into
// the dependency container (id "config") before Build
type Loader struct {
	sources      []ConfigSource
	mergedConfig map[string]any
	v            *viper.Viper
	loadedFiles  []string
}

// NewLoader creates an empty configuration loader
func NewLoader() *Loader {
	return &Loader{
		sources:      make([]ConfigSource, 0),
		mergedConfig: make(map[string]any),
		v:            viper.New(),
	}
}

// DefaultLoader builds the standard loader: app.yaml in configPath + env overrides
func DefaultLoader(configPath, envPrefix string) *Loader {
	l := NewLoader()
	l.AddSource(NewFileSource(filepath.Join(configPath, "app.yaml"), true))
	if envPrefix != "" {
		l.AddSource(NewEnvSource(envPrefix))
	}
	return l
}

// AddSource adds a configuration data source
func (l *Loader) AddSource(source ConfigSource) {
	l.sources = append(l.sources, source)
}

// Load merges all data sources (low priority first, higher overrides)
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	l.mergedConfig = make(map[string]any)
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("加载数据源 %s 失败: %w", source.Name(), err)
		}
		if fs, ok := source.(*FileSource); ok {
			l.loadedFiles = append(l.loadedFiles, fs.Path())
		}
		for k, v := range data {
			l.mergedConfig[k] = v
		}
	}

	l.syncToViper()
	return nil
}

// syncToViper rebuilds the viper instance from the merged flat map
// (viper provides the typed getters and Unmarshal support)
func (l *Loader) syncToViper() {
	v := viper.New()
	for key, value := range l.mergedConfig {
		v.Set(key, value)
	}
	l.v = v
}

// LoadedFiles the files that contributed configuration (for startup logging)
func (l *Loader) LoadedFiles() []string {
	return l.loadedFiles
}

// Has reports whether a key is present
func (l *Loader) Has(key string) bool {
	_, ok := l.mergedConfig[strings.ToLower(key)]
	if ok {
		return true
	}
	return l.v.IsSet(key)
}

// GetString typed getter
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetStringDefault returns def when the key is absent
func (l *Loader) GetStringDefault(key, def string) string {
	if !l.Has(key) {
		return def
	}
	return l.v.GetString(key)
}

// GetInt typed getter
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// GetIntDefault returns def when the key is absent
func (l *Loader) GetIntDefault(key string, def int) int {
	if !l.Has(key) {
		return def
	}
	return l.v.GetInt(key)
}

// GetBool typed getter
func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

// GetDuration typed getter
func (l *Loader) GetDuration(key string) time.Duration {
	return l.v.GetDuration(key)
}

// GetStringSlice typed getter
func (l *Loader) GetStringSlice(key string) []string {
	return l.v.GetStringSlice(key)
}

// UnmarshalKey decodes a config subtree into a struct (mapstructure tags)
func (l *Loader) UnmarshalKey(key string, target any) error {
	return l.v.UnmarshalKey(key, target)
}

// AllKeys all merged keys (sorted, for diagnostics)
func (l *Loader) AllKeys() []string {
	keys := make([]string, 0, len(l.mergedConfig))
	for k := range l.mergedConfig {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
