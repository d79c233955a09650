package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/nibzard/tasktrack/internal/config"
)

// projectConfigName is the file written by "config -init".
const projectConfigName = "tasktrack.toml"

// configCommand shows the effective configuration and where each value came
// from, or writes an example project config file.
func configCommand(e *env, args []string) error {
	fs := e.newFlagSet("config", "[options]")
	initFile := fs.Bool("init", false, "Write an example "+projectConfigName+" in the working directory")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return flagError(err)
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: unexpected arguments: %s", ErrUsage, strings.Join(rest, " "))
	}

	if *initFile {
		return writeExampleConfig(e)
	}

	cfg := e.sources.Config
	if file := e.sources.ConfigFile(); file != "" {
		fmt.Fprintf(e.stdout, "Config file: %s\n\n", file)
	} else {
		fmt.Fprintf(e.stdout, "Config file: (none)\n\n")
	}

	tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	for _, field := range config.Fields() {
		source := e.sources.Sources[field]
		if source == "" {
			source = config.SourceDefault
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", field, cfg.Value(field), source)
	}
	return tw.Flush()
}

func writeExampleConfig(e *env) error {
	path := filepath.Join(e.cfg.WorkDir, projectConfigName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s already exists", ErrUsage, path)
		}
		return fmt.Errorf("create config file: %w", err)
	}
	if _, err := f.WriteString(config.ExampleConfig()); err != nil {
		_ = f.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	fmt.Fprintf(e.stdout, "Wrote %s\n", path)
	return nil
}
