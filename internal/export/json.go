package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nibzard/tasktrack/internal/tasks"
)

// WriteJSON writes the records as an indented JSON array. An empty input
// writes "[]".
func WriteJSON(w io.Writer, rows []tasks.Record) error {
	if rows == nil {
		rows = []tasks.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
