package export

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nibzard/tasktrack/internal/tasks"
)

const maxTitleWidth = 30

// WriteTable renders the records as a bordered table. Colors are used only
// when w is a terminal.
func WriteTable(w io.Writer, rows []tasks.Record) error {
	r := lipgloss.NewRenderer(w)
	var (
		headerStyle    = r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
		cellStyle      = r.NewStyle().Padding(0, 1)
		completedStyle = cellStyle.Foreground(lipgloss.Color("8"))
		highStyle      = cellStyle.Foreground(lipgloss.Color("9"))
		borderStyle    = r.NewStyle().Foreground(lipgloss.Color("8"))
	)

	headers := make([]string, len(tasks.Columns))
	for i, col := range tasks.Columns {
		headers[i] = strings.ToUpper(strings.ReplaceAll(col, "_", " "))
	}

	data := make([][]string, len(rows))
	for i, row := range rows {
		values := row.Values()
		values[1] = truncate(values[1], maxTitleWidth)
		data[i] = values
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(rows) {
				return cellStyle
			}
			switch {
			case rows[row].Status == string(tasks.StatusCompleted):
				return completedStyle
			case col == 2 && rows[row].Priority == string(tasks.PriorityHigh):
				return highStyle
			}
			return cellStyle
		})

	if _, err := fmt.Fprintln(w, t.String()); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// WritePlain writes a fixed-width text listing without colors or borders.
func WritePlain(w io.Writer, rows []tasks.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s | %-30s | %-12s | %-10s | %-12s\n", "ID", "Title", "Status", "Priority", "Due Date")
	b.WriteString(strings.Repeat("-", 80))
	b.WriteByte('\n')
	for _, r := range rows {
		title := r.Title
		if r.Status == string(tasks.StatusCompleted) {
			title += " (✓)"
		}
		due := r.Due
		if due == "" {
			due = "N/A"
		}
		fmt.Fprintf(&b, "%-4s | %s | %-12s | %-10s | %-12s\n",
			r.ID, pad(truncate(title, maxTitleWidth), maxTitleWidth), r.Status, r.Priority, due)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}

// truncate shortens s to at most n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

func pad(s string, n int) string {
	if count := utf8.RuneCountInString(s); count < n {
		return s + strings.Repeat(" ", n-count)
	}
	return s
}
