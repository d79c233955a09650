package tasks

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks every collection invariant and returns all violations
// joined together, or nil.
func (c *Collection) Validate() error {
	var errs []error

	if c.Tasks == nil {
		errs = append(errs, &ValidationError{Path: "tasks", Err: errors.New("missing required field")})
	}
	if c.NextID < 1 {
		errs = append(errs, &ValidationError{
			Path: "next_id",
			Err:  fmt.Errorf("must be at least 1, got %d", c.NextID),
		})
	}

	seen := make(map[int]int, len(c.Tasks))
	maxID := 0
	for i, task := range c.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if prev, ok := seen[task.ID]; ok {
			errs = append(errs, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %d (also at tasks[%d])", task.ID, prev),
			})
		}
		seen[task.ID] = i
		if task.ID > maxID {
			maxID = task.ID
		}
		errs = append(errs, validateTask(&task, path)...)
	}

	if len(c.Tasks) > 0 && c.NextID <= maxID {
		errs = append(errs, &ValidationError{
			Path: "next_id",
			Err:  fmt.Errorf("must be greater than every id, got %d with max id %d", c.NextID, maxID),
		})
	}

	return errors.Join(errs...)
}

func validateTask(task *Task, path string) []error {
	var errs []error
	if task.ID < 1 {
		errs = append(errs, &ValidationError{
			Path: path + ".id",
			Err:  fmt.Errorf("must be at least 1, got %d", task.ID),
		})
	}
	if err := checkTitle(task.Title); err != nil {
		errs = append(errs, &ValidationError{Path: path + ".title", Err: err})
	}
	if !task.Priority.IsValid() {
		errs = append(errs, &ValidationError{
			Path: path + ".priority",
			Err:  fmt.Errorf("%w %q: must be one of low, medium, high", ErrInvalidPriority, task.Priority),
		})
	}
	if !task.Status.IsValid() {
		errs = append(errs, &ValidationError{
			Path: path + ".status",
			Err:  fmt.Errorf("%w %q: must be one of pending, completed", ErrInvalidStatus, task.Status),
		})
	}
	if task.Due != "" {
		if _, err := ParseDue(task.Due); err != nil || task.Due != strings.TrimSpace(task.Due) {
			errs = append(errs, &ValidationError{
				Path: path + ".due",
				Err:  fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDue, task.Due),
			})
		}
	}
	if task.CreatedAt.IsZero() {
		errs = append(errs, &ValidationError{Path: path + ".created_at", Err: errors.New("missing required field")})
	}
	return errs
}
