package config

import "errors"

// ErrInvalid is wrapped by every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
}

// Default values.
const (
	DefaultDataFile  = "tasks.json"
	DefaultBackend   = "auto"
	DefaultPriority  = "medium"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Config holds the full configuration for tasktrack.
type Config struct {
	// Storage
	DataFile string `toml:"data_file"`
	Backend  string `toml:"backend"`

	// Priority used by "add" when none is given
	DefaultPriority string `toml:"default_priority"`

	// Logging configuration
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Working directory relative data paths resolve against (computed)
	WorkDir string `toml:"-"`
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_file",
		"backend",
		"default_priority",
		"log_level",
		"log_format",
	}
}

// Value returns the current value of a field by its config key.
func (c *Config) Value(field string) string {
	switch field {
	case "data_file":
		return c.DataFile
	case "backend":
		return c.Backend
	case "default_priority":
		return c.DefaultPriority
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	}
	return ""
}

// Fields returns the configurable keys in display order.
func Fields() []string {
	return configFields()
}

// ConfigFile returns the highest-priority config file that was read, if any.
func (cws *ConfigWithSources) ConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
