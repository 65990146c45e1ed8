// Package config provides a multi-source configuration loader
// Sources are merged by priority (higher priority overrides lower)
package config

// ConfigSource a configuration data source
// Load returns a flat map (dot-separated keys, e.g. "server.port")
type ConfigSource interface {
	// Name source name (for diagnostics)
	Name() string

	// Priority merge priority, higher overrides lower
	Priority() int

	// Load reads the source into a flat key map
	Load() (map[string]any, error)
}

// Source priorities (file < env)
const (
	PriorityFile = 10
	PriorityEnv  = 20
)
