package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/nibzard/tasktrack/internal/logging"
	"github.com/nibzard/tasktrack/internal/tasks"
)

// Backends lists the accepted backend values.
var Backends = []string{"auto", "json", "sqlite"}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.tasktrack/tasktrack.toml or OS-specific config dir)
// 3. Project config file (tasktrack.toml or .tasktrack.toml in current directory)
// 4. Environment variables
// 5. CLI flags
//
// Flags are parsed from args with fs; fs.Args() holds what remains.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cfg := &Config{}
	sources := make(map[string]ConfigSource)
	var files []string

	// 1. Set defaults (all fields start with default source)
	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg.WorkDir = wd

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("%w: loading user config file %s: %w", ErrInvalid, path, err)
		}
		files = append(files, path)
	}

	// 3. Project config file (overrides user config)
	if path := findProjectConfigFile(wd); path != "" {
		if err := loadConfigFile(cfg, path, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("%w: loading project config file %s: %w", ErrInvalid, path, err)
		}
		files = append(files, path)
	}

	// 4. Environment
	loadFromEnv(cfg, sources)

	// 5. CLI flags override everything
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("%w: parsing flags: %w", ErrInvalid, err)
	}

	// 6. Normalize and validate
	if err := finalizeConfig(cfg); err != nil {
		return nil, err
	}

	return &ConfigWithSources{Config: cfg, Sources: sources, Files: files}, nil
}

// loadConfigFile decodes a TOML file over cfg and marks the keys it defines.
func loadConfigFile(cfg *Config, path string, sources map[string]ConfigSource, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown key(s) %s", strings.Join(keys, ", "))
	}
	for _, field := range configFields() {
		if md.IsDefined(field) {
			sources[field] = source
		}
	}
	return nil
}

// finalizeConfig normalizes values, resolves the data path and validates.
func finalizeConfig(cfg *Config) error {
	cfg.DataFile = strings.TrimSpace(cfg.DataFile)
	if cfg.DataFile == "" {
		return fmt.Errorf("%w: data_file must not be empty", ErrInvalid)
	}
	cfg.DataFile = expandPath(cfg.DataFile)
	if !filepath.IsAbs(cfg.DataFile) {
		cfg.DataFile = filepath.Join(cfg.WorkDir, cfg.DataFile)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	if !slices.Contains(Backends, cfg.Backend) {
		return fmt.Errorf("%w: backend %q: must be one of %s", ErrInvalid, cfg.Backend, strings.Join(Backends, ", "))
	}

	p, err := tasks.ParsePriority(cfg.DefaultPriority)
	if err != nil {
		return fmt.Errorf("%w: default_priority: %w", ErrInvalid, err)
	}
	cfg.DefaultPriority = string(p)

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if _, err := logging.ParseFormat(cfg.LogFormat); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// LoggingOptions returns the logger options for this config.
func (c *Config) LoggingOptions() logging.Options {
	opts := logging.DefaultOptions()
	opts.Level = c.LogLevel
	opts.Format = c.LogFormat
	return opts
}
