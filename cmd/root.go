// Package cmd implements the CLI command structure for tasktrack.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasktrack/internal/config"
	"github.com/nibzard/tasktrack/internal/logging"
	"github.com/nibzard/tasktrack/internal/store"
	"github.com/nibzard/tasktrack/internal/tasks"
)

// Version is set via ldflags at build time.
var Version = "dev"

// ErrUsage marks malformed command lines.
var ErrUsage = errors.New("usage error")

// Exit codes returned by ExitCode.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
	ExitCorrupt  = 4
)

// env carries what every subcommand needs.
type env struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	log     *log.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// Run executes the tasktrack CLI against the process stdout and stderr.
func Run(ctx context.Context, args []string) error {
	return Execute(ctx, args, os.Stdout, os.Stderr)
}

// Execute runs the CLI with the given output streams.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("tasktrack", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	logger, err := logging.New(stderr, cfg.LoggingOptions())
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	e := &env{cfg: cfg, sources: cws, log: logger, stdout: stdout, stderr: stderr}

	remaining := fs.Args()
	if len(remaining) == 0 {
		printUsage(fs, stderr)
		return fmt.Errorf("%w: no command given", ErrUsage)
	}
	subcommand, rest := remaining[0], remaining[1:]

	switch subcommand {
	case "add":
		return addCommand(ctx, e, rest)
	case "list", "ls":
		return listCommand(ctx, e, rest)
	case "update":
		return updateCommand(ctx, e, rest)
	case "complete", "done":
		return completeCommand(ctx, e, rest)
	case "delete", "rm":
		return deleteCommand(ctx, e, rest)
	case "show":
		return showCommand(ctx, e, rest)
	case "export":
		return exportCommand(ctx, e, rest)
	case "tui":
		return tuiCommand(ctx, e, rest)
	case "config":
		return configCommand(e, rest)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		printUsage(fs, stderr)
		return fmt.Errorf("%w: unknown command: %s", ErrUsage, subcommand)
	}
}

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, store.ErrCorruptState):
		return ExitCorrupt
	case errors.Is(err, tasks.ErrTaskNotFound):
		return ExitNotFound
	case errors.Is(err, ErrUsage),
		errors.Is(err, config.ErrInvalid),
		errors.Is(err, tasks.ErrInvalidPriority),
		errors.Is(err, tasks.ErrInvalidTitle),
		errors.Is(err, tasks.ErrInvalidDue),
		errors.Is(err, tasks.ErrInvalidStatus):
		return ExitUsage
	default:
		return ExitFailure
	}
}

// openStore opens the configured data file.
func (e *env) openStore() (*store.Store, error) {
	kind, err := store.ResolveKind(e.cfg.DataFile, e.cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	e.log.Debug("opening task store", "path", e.cfg.DataFile, "backend", kind)
	s, err := store.Open(e.cfg.DataFile, kind)
	if err != nil {
		return nil, fmt.Errorf("opening task store: %w", err)
	}
	return s, nil
}

// newFlagSet returns a subcommand flag set that reports to stderr.
func (e *env) newFlagSet(name, usage string) *flag.FlagSet {
	fs := flag.NewFlagSet("tasktrack "+name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage:\n  tasktrack %s %s\n", name, usage)
		if hasFlags(fs) {
			fmt.Fprintln(e.stderr, "\nOptions:")
			fs.PrintDefaults()
		}
	}
	return fs
}

func hasFlags(fs *flag.FlagSet) bool {
	found := false
	fs.VisitAll(func(*flag.Flag) { found = true })
	return found
}

// parseArgs parses flags that may appear before, between or after positional
// arguments. Everything after "--" is positional.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional, tail []string
	for i, arg := range args {
		if arg == "--" {
			tail = args[i+1:]
			args = args[:i]
			break
		}
	}
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
	return append(positional, tail...), nil
}

// flagError maps a flag parse failure to a usage error. A help request has
// already printed usage and is not an error.
func flagError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUsage, err)
}

// isSet reports whether any of the named flags was given on the command line.
func isSet(fs *flag.FlagSet, names ...string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				set = true
			}
		}
	})
	return set
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tasktrack version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "tasktrack - a small personal task tracker")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tasktrack [global options] <command> [options] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <title>       Add a new task")
	fmt.Fprintln(w, "  list              List tasks, optionally filtered")
	fmt.Fprintln(w, "  update <id>       Change the title, priority or due date of a task")
	fmt.Fprintln(w, "  complete <id>     Mark a task as completed")
	fmt.Fprintln(w, "  delete <id>       Delete a task")
	fmt.Fprintln(w, "  show <id>         Show every field of one task")
	fmt.Fprintln(w, "  export            Export tasks as csv, json or a table")
	fmt.Fprintln(w, "  tui               Launch the read-only terminal viewer")
	fmt.Fprintln(w, "  config            Show the effective configuration")
	fmt.Fprintln(w, "  version           Show version information")
	fmt.Fprintln(w, "  help              Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'tasktrack <command> -h' for command options.")
}

// parseID parses a task id argument.
func parseID(args []string, command string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s requires a task id", ErrUsage, command)
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("%w: unexpected arguments: %s", ErrUsage, strings.Join(args[1:], " "))
	}
	id, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid task id %q", ErrUsage, args[0])
	}
	return id, nil
}
