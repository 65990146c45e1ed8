package config

import (
	"os"
	"strings"
)

// EnvSource environment variable configuration source
// APP_SERVER_PORT=9000 (prefix "APP") maps to "server.port" = "9000"
type EnvSource struct {
	prefix string
}

// NewEnvSource creates an env source with the given prefix (e.g. "APP")
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{prefix: strings.ToUpper(prefix)}
}

// Name implements ConfigSource
func (s *EnvSource) Name() string {
	return "env:" + s.prefix
}

// Priority implements ConfigSource
func (s *EnvSource) Priority() int {
	return PriorityEnv
}

// Load scans the environment for prefixed variables
func (s *EnvSource) Load() (map[string]any, error) {
	out := make(map[string]any)
	if s.prefix == "" {
		return out, nil
	}

	marker := s.prefix + "_"
	for _, kv := range os.Environ() {
		eq := strings.IndexByte(kv, '=')
		if eq <= 0 {
			continue
		}
		name, value := kv[:eq], kv[eq+1:]
		if !strings.HasPrefix(name, marker) {
			continue
		}
		// APP_SERVER_PORT -> server.port
		key := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(name, marker), "_", "."))
		if key == "" {
			continue
		}
		out[key] = value
	}
	return out, nil
}
