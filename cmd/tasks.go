package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/nibzard/tasktrack/internal/export"
	"github.com/nibzard/tasktrack/internal/tasks"
)

// addCommand creates a new pending task.
func addCommand(ctx context.Context, e *env, args []string) error {
	fs := e.newFlagSet("add", "<title> [options]")
	var priority, due string
	fs.StringVar(&priority, "priority", e.cfg.DefaultPriority, "Task priority: low, medium, high")
	fs.StringVar(&priority, "p", e.cfg.DefaultPriority, "Task priority (shorthand)")
	fs.StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	fs.StringVar(&due, "d", "", "Due date (shorthand)")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return flagError(err)
	}
	if len(rest) == 0 {
		fs.Usage()
		return fmt.Errorf("%w: add requires a title", ErrUsage)
	}
	title := strings.Join(rest, " ")

	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var added tasks.Task
	c, err := s.Update(ctx, func(c *tasks.Collection) error {
		var addErr error
		added, addErr = c.Add(title, priority, due)
		return addErr
	})
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	e.log.Debug("task added", "id", added.ID, "tasks", len(c.Tasks), "next_id", c.NextID)

	fmt.Fprintf(e.stdout, "Task #%d added: '%s'\n", added.ID, added.Title)
	return nil
}

// listCommand prints tasks matching the given filters.
func listCommand(ctx context.Context, e *env, args []string) error {
	fs := e.newFlagSet("list", "[options]")
	var status, priority string
	fs.StringVar(&status, "status", "", "Filter by status: pending, completed")
	fs.StringVar(&status, "s", "", "Filter by status (shorthand)")
	fs.StringVar(&priority, "priority", "", "Filter by priority: low, medium, high")
	fs.StringVar(&priority, "p", "", "Filter by priority (shorthand)")
	format := fs.String("format", string(export.FormatTable), "Output format: table, plain")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return flagError(err)
	}
	if len(rest) > 0 {
		return fmt.Errorf("%w: unexpected arguments: %s", ErrUsage, strings.Join(rest, " "))
	}
	filter, err := parseFilter(status, priority)
	if err != nil {
		return err
	}
	f, err := export.ParseFormat(*format)
	if err != nil || (f != export.FormatTable && f != export.FormatPlain) {
		return fmt.Errorf("%w: list format must be table or plain, got %q", ErrUsage, *format)
	}

	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(c.Tasks) == 0 {
		fmt.Fprintln(e.stdout, "No tasks found. Add one with 'tasktrack add'!")
		return nil
	}
	rows := c.Rows(filter)
	e.log.Debug("listing tasks", "total", len(c.Tasks), "matched", len(rows))
	if len(rows) == 0 {
		fmt.Fprintln(e.stdout, "No tasks match the specified filters.")
		return nil
	}
	return export.Write(e.stdout, f, rows)
}

// updateCommand changes the title, priority or due date of a task. Only flags
// given on the command line are applied.
func updateCommand(ctx context.Context, e *env, args []string) error {
	fs := e.newFlagSet("update", "<id> [options]")
	var title, priority, due string
	fs.StringVar(&title, "title", "", "New title")
	fs.StringVar(&title, "t", "", "New title (shorthand)")
	fs.StringVar(&priority, "priority", "", "New priority: low, medium, high")
	fs.StringVar(&priority, "p", "", "New priority (shorthand)")
	fs.StringVar(&due, "due", "", "New due date (YYYY-MM-DD); empty clears it")
	fs.StringVar(&due, "d", "", "New due date (shorthand)")

	rest, err := parseArgs(fs, args)
	if err != nil {
		return flagError(err)
	}
	id, err := parseID(rest, "update")
	if err != nil {
		return err
	}

	var changes tasks.Changes
	if isSet(fs, "title", "t") {
		changes.Title = &title
	}
	if isSet(fs, "priority", "p") {
		changes.Priority = &priority
	}
	if isSet(fs, "due", "d") {
		changes.Due = &due
	}

	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	if _, ok := c.Find(id); !ok {
		return fmt.Errorf("update task %d: %w", id, notFound(id))
	}
	if changes.IsEmpty() {
		fmt.Fprintln(e.stdout, "No changes provided. Nothing to update.")
		return nil
	}

	if _, err := c.Update(id, changes); err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	if err := s.Save(ctx, c); err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	e.log.Debug("task updated", "id", id)

	fmt.Fprintf(e.stdout, "Task #%d updated.\n", id)
	return nil
}

// completeCommand marks a task completed.
func completeCommand(ctx context.Context, e *env, args []string) error {
	fs := e.newFlagSet("complete", "<id>")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return flagError(err)
	}
	id, err := parseID(rest, "complete")
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
		return fmt.Errorf("complete task %d: %w", id, err)
	}
	task, ok := c.Find(id)
	if !ok {
		return fmt.Errorf("complete task %d: %w", id, notFound(id))
	}
	if task.IsCompleted() {
		fmt.Fprintf(e.stdout, "Task #%d is already marked as complete.\n", id)
		return nil
	}

	if _, err := c.Complete(id); err != nil {
		return fmt.Errorf("complete task %d: %w", id, err)
	}
	if err := s.Save(ctx, c); err != nil {
		return fmt.Errorf("complete task %d: %w", id, err)
	}
	e.log.Debug("task completed", "id", id)

	fmt.Fprintf(e.stdout, "Task #%d marked as complete!\n", id)
	return nil
}

// deleteCommand removes a task. The id is never reused.
func deleteCommand(ctx context.Context, e *env, args []string) error {
	fs := e.newFlagSet("delete", "<id>")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return flagError(err)
	}
	id, err := parseID(rest, "delete")
	if err != nil {
		return err
	}

	s, err := e.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.Update(ctx, func(c *tasks.Collection) error {
		_, err := c.Delete(id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	e.log.Debug("task deleted", "id", id, "remaining", len(c.Tasks))

	fmt.Fprintf(e.stdout, "Task #%d has been deleted.\n", id)
	return nil
}

// showCommand prints every field of one task.
func showCommand(ctx context.Context, e *env, args []string) error {
	fs := e.newFlagSet("show", "<id>")
	rest, err := parseArgs(fs, args)
	if err != nil {
		return flagError(err)
	}
	id, err := parseID(rest, "show")
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
		return fmt.Errorf("show task %d: %w", id, err)
	}
	task, ok := c.Find(id)
	if !ok {
		return fmt.Errorf("show task %d: %w", id, notFound(id))
	}

	r := task.Record()
	due := r.Due
	if due == "" {
		due = "N/A"
	}
	fmt.Fprintf(e.stdout, "Task #%s\n", r.ID)
	fmt.Fprintf(e.stdout, "  Title:    %s\n", r.Title)
	fmt.Fprintf(e.stdout, "  Status:   %s\n", r.Status)
	fmt.Fprintf(e.stdout, "  Priority: %s\n", r.Priority)
	fmt.Fprintf(e.stdout, "  Due:      %s\n", due)
	fmt.Fprintf(e.stdout, "  Created:  %s\n", r.CreatedAt)
	return nil
}

// parseFilter validates list and export filter flags.
func parseFilter(status, priority string) (tasks.Filter, error) {
	var f tasks.Filter
	if status != "" {
		st, err := tasks.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if priority != "" {
		p, err := tasks.ParsePriority(priority)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	return f, nil
}

func notFound(id int) error {
	return fmt.Errorf("%w: #%d", tasks.ErrTaskNotFound, id)
}
