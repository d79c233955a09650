// Package export renders task records as CSV, JSON, or terminal tables.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/tasktrack/internal/tasks"
)

// Format names an output format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatPlain Format = "plain"
)

// Formats lists every format accepted by Write.
var Formats = []Format{FormatCSV, FormatJSON, FormatTable, FormatPlain}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, known := range Formats {
		names[i] = string(known)
	}
	return "", fmt.Errorf("unknown format %q: must be one of %s", s, strings.Join(names, ", "))
}

// Write renders rows to w in the given format.
func Write(w io.Writer, format Format, rows []tasks.Record) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatJSON:
		return WriteJSON(w, rows)
	case FormatTable:
		return WriteTable(w, rows)
	case FormatPlain:
		return WritePlain(w, rows)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
