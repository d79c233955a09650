package store

import (
	"context"
	"sync"

	"github.com/nibzard/tasktrack/internal/tasks"
)

// MemoryBackend holds the collection in process. Reads and writes copy.
type MemoryBackend struct {
	mu     sync.Mutex
	c      *tasks.Collection
	writes int
}

// NewMemoryBackend returns a backend seeded with c. A nil seed reads as
// nothing persisted.
func NewMemoryBackend(c *tasks.Collection) *MemoryBackend {
	return &MemoryBackend{c: c.Clone()}
}

func (b *MemoryBackend) Location() string {
	return "memory"
}

func (b *MemoryBackend) Read(ctx context.Context) (*tasks.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.c.Clone(), nil
}

func (b *MemoryBackend) Write(ctx context.Context, c *tasks.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.c = c.Clone()
	b.writes++
	return nil
}

// Writes reports how many writes have succeeded.
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

func (b *MemoryBackend) Close() error {
	return nil
}
