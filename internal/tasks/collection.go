package tasks

import "fmt"

// Changes lists the fields an update should overwrite. Nil fields are left
// untouched.
type Changes struct {
	Title    *string
	Priority *string
	Due      *string
}

// IsEmpty reports whether no field was supplied.
func (c Changes) IsEmpty() bool {
	return c.Title == nil && c.Priority == nil && c.Due == nil
}

// Filter selects tasks. Zero-valued fields match everything.
type Filter struct {
	Status   Status
	Priority Priority
}

func (f Filter) matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// Add validates the input and appends a new pending task with the next id.
// The collection is unchanged when validation fails.
func (c *Collection) Add(title, priority, due string) (Task, error) {
	p, err := ParsePriority(priority)
	if err != nil {
		return Task{}, err
	}
	if err := checkTitle(title); err != nil {
		return Task{}, err
	}
	d, err := ParseDue(due)
	if err != nil {
		return Task{}, err
	}

	if c.NextID < 1 {
		c.NextID = 1
	}
	task := Task{
		ID:        c.NextID,
		Title:     title,
		Priority:  p,
		Due:       d,
		Status:    StatusPending,
		CreatedAt: now(),
	}
	c.Tasks = append(c.Tasks, task)
	c.NextID++
	return task, nil
}

// Find returns the task with the given id.
func (c *Collection) Find(id int) (Task, bool) {
	if i := c.index(id); i >= 0 {
		return c.Tasks[i], true
	}
	return Task{}, false
}

// Update overwrites the supplied fields of a task. Every supplied value is
// validated before any field is written.
func (c *Collection) Update(id int, changes Changes) (Task, error) {
	i := c.index(id)
	if i < 0 {
		return Task{}, notFound(id)
	}

	next := c.Tasks[i]
	if changes.Title != nil {
		if err := checkTitle(*changes.Title); err != nil {
			return Task{}, err
		}
		next.Title = *changes.Title
	}
	if changes.Priority != nil {
		p, err := ParsePriority(*changes.Priority)
		if err != nil {
			return Task{}, err
		}
		next.Priority = p
	}
	if changes.Due != nil {
		d, err := ParseDue(*changes.Due)
		if err != nil {
			return Task{}, err
		}
		next.Due = d
	}

	c.Tasks[i] = next
	return next, nil
}

// Complete marks a task completed. Completing an already completed task is a
// no-op that returns it unchanged.
func (c *Collection) Complete(id int) (Task, error) {
	i := c.index(id)
	if i < 0 {
		return Task{}, notFound(id)
	}
	c.Tasks[i].Status = StatusCompleted
	return c.Tasks[i], nil
}

// Delete removes a task and returns it. A missing id is reported as
// ErrTaskNotFound. NextID is never decremented, so ids are not reused.
func (c *Collection) Delete(id int) (Task, error) {
	i := c.index(id)
	if i < 0 {
		return Task{}, notFound(id)
	}
	removed := c.Tasks[i]
	c.Tasks = append(c.Tasks[:i], c.Tasks[i+1:]...)
	return removed, nil
}

// Filter returns copies of the tasks matching every set predicate, in
// insertion order.
func (c *Collection) Filter(f Filter) []Task {
	out := make([]Task, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (c *Collection) index(id int) int {
	for i := range c.Tasks {
		if c.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func notFound(id int) error {
	return fmt.Errorf("%w: #%d", ErrTaskNotFound, id)
}
