package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/nibzard/tasktrack/internal/ui"
)

// tuiCommand launches the read-only task viewer.
func tuiCommand(ctx context.Context, e *env, args []string) error {
	fs := e.newFlagSet("tui", "")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return flagError(err)
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: unexpected arguments: %s", ErrUsage, strings.Join(rest, " "))
	}

	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	return ui.Run(ctx, s, s.Location())
}
