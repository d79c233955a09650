package config

import (
	"flag"
)

// flagFields maps global flag names to config keys.
var flagFields = map[string]string{
	"file":             "data_file",
	"backend":          "backend",
	"default-priority": "default_priority",
	"log-level":        "log_level",
	"log-format":       "log_format",
}

// registerFlags defines the global flags on fs, bound to cfg.
func registerFlags(cfg *Config, fs *flag.FlagSet) {
	fs.StringVar(&cfg.DataFile, "file", cfg.DataFile, "Path to the task data file (.json, or .db/.sqlite for SQLite)")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Storage backend: auto, json, or sqlite")
	fs.StringVar(&cfg.DefaultPriority, "default-priority", cfg.DefaultPriority, "Priority for new tasks: low, medium, or high")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text, json, logfmt")
}

// parseFlags defines and parses the global flags, recording explicitly set
// ones in sources.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet(appName, flag.ContinueOnError)
	}
	registerFlags(cfg, fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			sources[field] = SourceFlag
		}
	})
	return nil
}
