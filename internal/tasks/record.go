package tasks

import (
	"strconv"
	"time"
)

// Columns is the fixed export column order.
var Columns = []string{"id", "title", "priority", "due", "status", "created_at"}

// Record is a task flattened into plain strings, one per column.
type Record struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Priority  string `json:"priority"`
	Due       string `json:"due"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// Values returns the record fields in Columns order.
func (r Record) Values() []string {
	return []string{r.ID, r.Title, r.Priority, r.Due, r.Status, r.CreatedAt}
}

// Map returns the record keyed by column name.
func (r Record) Map() map[string]string {
	values := r.Values()
	out := make(map[string]string, len(Columns))
	for i, col := range Columns {
		out[col] = values[i]
	}
	return out
}

// Record flattens the task for export.
func (t Task) Record() Record {
	return Record{
		ID:        strconv.Itoa(t.ID),
		Title:     t.Title,
		Priority:  string(t.Priority),
		Due:       t.Due,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// Rows returns one record per task matching f, in insertion order.
func (c *Collection) Rows(f Filter) []Record {
	matched := c.Filter(f)
	rows := make([]Record, 0, len(matched))
	for _, t := range matched {
		rows = append(rows, t.Record())
	}
	return rows
}
