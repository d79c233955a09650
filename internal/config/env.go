package config

import "os"

// Environment variable names.
const (
	EnvDataFile        = "TASKTRACK_FILE"
	EnvBackend         = "TASKTRACK_BACKEND"
	EnvDefaultPriority = "TASKTRACK_DEFAULT_PRIORITY"
	EnvLogLevel        = "TASKTRACK_LOG_LEVEL"
	EnvLogFormat       = "TASKTRACK_LOG_FORMAT"
)

// loadFromEnv overrides config from environment variables. Empty values are
// ignored.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	bindings := []struct {
		env    string
		field  string
		target *string
	}{
		{EnvDataFile, "data_file", &cfg.DataFile},
		{EnvBackend, "backend", &cfg.Backend},
		{EnvDefaultPriority, "default_priority", &cfg.DefaultPriority},
		{EnvLogLevel, "log_level", &cfg.LogLevel},
		{EnvLogFormat, "log_format", &cfg.LogFormat},
	}
	for _, b := range bindings {
		if v := os.Getenv(b.env); v != "" {
			*b.target = v
			sources[b.field] = SourceEnv
		}
	}
}
