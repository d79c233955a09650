package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nibzard/tasktrack/internal/tasks"
)

// WriteCSV writes a header line followed by one line per record.
func WriteCSV(w io.Writer, rows []tasks.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tasks.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Values()); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
