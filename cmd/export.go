package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/tasktrack/internal/export"
)

// exportCommand writes tasks as csv, json or a table to stdout or a file.
func exportCommand(ctx context.Context, e *env, args []string) (err error) {
	fs := e.newFlagSet("export", "[options]")
	format := fs.String("format", string(export.FormatCSV), "Output format: csv, json, table")
	var output, status, priority string
	fs.StringVar(&output, "output", "", "Write to this file instead of stdout")
	fs.StringVar(&output, "o", "", "Output file (shorthand)")
	fs.StringVar(&status, "status", "", "Filter by status: pending, completed")
	fs.StringVar(&status, "s", "", "Filter by status (shorthand)")
	fs.StringVar(&priority, "priority", "", "Filter by priority: low, medium, high")
	fs.StringVar(&priority, "p", "", "Filter by priority (shorthand)")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return flagError(err)
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: unexpected arguments: %s", ErrUsage, strings.Join(rest, " "))
	}
	f, err := export.ParseFormat(*format)
	if err != nil || f == export.FormatPlain {
		return fmt.Errorf("%w: export format must be csv, json or table, got %q", ErrUsage, *format)
	}
	filter, err := parseFilter(status, priority)
	if err != nil {
		return err
	}

	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("export tasks: %w", err)
	}
	rows := c.Rows(filter)

	var w io.Writer = e.stdout
	if output != "" {
		file, cerr := os.Create(output)
		if cerr != nil {
			return fmt.Errorf("create export file: %w", cerr)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close export file: %w", cerr)
			}
		}()
		buf := bufio.NewWriter(file)
		defer func() {
			if ferr := buf.Flush(); ferr != nil && err == nil {
				err = fmt.Errorf("write export file: %w", ferr)
			}
		}()
		w = buf
	}

	if err := export.Write(w, f, rows); err != nil {
		return fmt.Errorf("export tasks: %w", err)
	}
	e.log.Debug("tasks exported", "format", f, "rows", len(rows), "output", output)
	if output != "" {
		fmt.Fprintf(e.stderr, "Exported %d task(s) to %s\n", len(rows), output)
	}
	return nil
}
