package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidTitle    = errors.New("invalid title")
	ErrInvalidDue      = errors.New("invalid due date")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrTaskNotFound    = errors.New("task not found")
)

// DueLayout is the accepted format for due dates.
const DueLayout = time.DateOnly

// Priority is the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every valid priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// ParsePriority normalizes user input (case-insensitive, surrounding space
// ignored) into a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w %q: must be one of low, medium, high", ErrInvalidPriority, s)
	}
	return p, nil
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted:
		return true
	default:
		return false
	}
}

// ParseStatus normalizes user input into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w %q: must be one of pending, completed", ErrInvalidStatus, s)
	}
	return st, nil
}

// ParseDue checks that s is a YYYY-MM-DD date. The empty string means no due
// date and is accepted.
func ParseDue(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if _, err := time.Parse(DueLayout, s); err != nil {
		return "", fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDue, s)
	}
	return s, nil
}

func checkTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidTitle)
	}
	if !utf8.ValidString(title) {
		return fmt.Errorf("%w: title is not valid UTF-8", ErrInvalidTitle)
	}
	return nil
}

// Task is a single trackable unit of work.
type Task struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Priority  Priority  `json:"priority"`
	Due       string    `json:"due,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// IsCompleted reports whether the task has been completed.
func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// HasDue reports whether the task carries a due date.
func (t Task) HasDue() bool {
	return t.Due != ""
}

// Collection is the full task set plus the id counter. It is loaded and saved
// as one unit.
type Collection struct {
	Tasks  []Task `json:"tasks"`
	NextID int    `json:"next_id"`
}

// NewCollection returns an empty collection whose first id will be 1.
func NewCollection() *Collection {
	return &Collection{Tasks: []Task{}, NextID: 1}
}

// Clone returns a deep copy of the collection.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := &Collection{NextID: c.NextID}
	if c.Tasks != nil {
		out.Tasks = make([]Task, len(c.Tasks))
		copy(out.Tasks, c.Tasks)
	}
	return out
}

// Counts returns the number of tasks per status.
func (c *Collection) Counts() map[Status]int {
	counts := map[Status]int{
		StatusPending:   0,
		StatusCompleted: 0,
	}
	for _, t := range c.Tasks {
		counts[t.Status]++
	}
	return counts
}

// now is the creation clock. Tests replace it.
var now = func() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
