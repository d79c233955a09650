// Package store persists task collections.
//
// A Store loads and saves the whole collection as one unit through a Backend.
// Every load is validated; content that cannot be parsed or that breaks a
// collection invariant is reported as a *CorruptStateError and never repaired.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/nibzard/tasktrack/internal/tasks"
)

// ErrCorruptState matches any *CorruptStateError.
var ErrCorruptState = errors.New("corrupt task state")

// CorruptStateError reports persisted content that exists but is unusable.
type CorruptStateError struct {
	Location string
	Err      error
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("%s in %s: %v", ErrCorruptState, e.Location, e.Err)
}

func (e *CorruptStateError) Unwrap() error {
	return e.Err
}

func (e *CorruptStateError) Is(target error) bool {
	return target == ErrCorruptState
}

// Backend reads and writes a whole collection.
//
// Read returns (nil, nil) when nothing has been persisted yet. Write must be
// all-or-nothing: a failed Write leaves the previous content readable.
type Backend interface {
	Read(ctx context.Context) (*tasks.Collection, error)
	Write(ctx context.Context, c *tasks.Collection) error
	Location() string
	Close() error
}

// Store owns load and save of the task collection.
type Store struct {
	backend Backend
}

// New returns a store over the given backend.
func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Location describes where the collection is persisted.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Load reads the collection. When nothing is persisted yet an empty collection
// is written first and returned.
func (s *Store) Load(ctx context.Context) (*tasks.Collection, error) {
	c, err := s.backend.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	if c == nil {
		c = tasks.NewCollection()
		if err := s.backend.Write(ctx, c); err != nil {
			return nil, fmt.Errorf("initialize tasks: %w", err)
		}
		return c, nil
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("load tasks: %w", &CorruptStateError{Location: s.backend.Location(), Err: err})
	}
	return c, nil
}

// Save replaces the persisted collection. Invalid collections are refused
// before anything is written.
func (s *Store) Save(ctx context.Context, c *tasks.Collection) error {
	if c == nil {
		return errors.New("save tasks: nil collection")
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("save tasks: refusing to write invalid collection: %w", err)
	}
	if err := s.backend.Write(ctx, c); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

// Update runs one load, mutate, save cycle. Nothing is written when fn fails.
func (s *Store) Update(ctx context.Context, fn func(*tasks.Collection) error) (*tasks.Collection, error) {
	c, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Close releases the backend.
func (s *Store) Close() error {
	if s == nil || s.backend == nil {
		return nil
	}
	return s.backend.Close()
}
