// Package ui provides the read-only terminal viewer.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/tasktrack/internal/tasks"
)

// ErrNotTTY is returned by Run when stdout is not a terminal.
var ErrNotTTY = errors.New("tui requires a TTY")

// Loader supplies the collection on every refresh.
type Loader interface {
	Load(ctx context.Context) (*tasks.Collection, error)
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	filterStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

const (
	defaultTick  = 2 * time.Second
	titleContent = "tasktrack"
)

// Run starts the viewer and blocks until the user quits or ctx is done.
func Run(ctx context.Context, loader Loader, location string) error {
	if !IsTTY(os.Stdout) {
		return ErrNotTTY
	}
	m := newModel(ctx, loader, location)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

type model struct {
	ctx          context.Context
	loader       Loader
	location     string
	loadErr      error
	data         *viewData
	filter       tasks.Filter
	showHelp     bool
	tickInterval time.Duration
}

type viewData struct {
	statusCounts   map[tasks.Status]int
	priorityCounts map[tasks.Priority]int
	total          int
	tasks          []tasks.Task
}

type tickMsg time.Time

func newModel(ctx context.Context, loader Loader, location string) *model {
	return &model{
		ctx:          ctx,
		loader:       loader,
		location:     location,
		tickInterval: defaultTick,
	}
}

func (m *model) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
		case "?":
			m.showHelp = !m.showHelp
		case "1":
			m.setStatus(tasks.StatusPending)
		case "2":
			m.setStatus(tasks.StatusCompleted)
		case "l":
			m.setPriority(tasks.PriorityLow)
		case "m":
			m.setPriority(tasks.PriorityMedium)
		case "h":
			m.setPriority(tasks.PriorityHigh)
		case "0":
			m.filter = tasks.Filter{}
			m.refresh()
		}
		return m, nil
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *model) setStatus(s tasks.Status) {
	m.filter.Status = s
	m.refresh()
}

func (m *model) setPriority(p tasks.Priority) {
	m.filter.Priority = p
	m.refresh()
}

func (m *model) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if label := filterLabel(m.filter); label != "" {
		b.WriteString(filterStyle.Render("Filter: "+label+" (0 to clear)") + "\n\n")
	}

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading tasks:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}
	if m.data == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	writeOverview(&b, m.data)
	writeTasks(&b, m.data)
	b.WriteString(footerStyle.Render("Data: "+m.location) + "\n")
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *model) refresh() {
	c, err := m.loader.Load(m.ctx)
	if err != nil {
		m.loadErr = err
		m.data = nil
		return
	}
	m.loadErr = nil
	m.data = buildData(c, m.filter)
}

// buildData counts every task and keeps the ones matching f.
func buildData(c *tasks.Collection, f tasks.Filter) *viewData {
	data := &viewData{
		statusCounts:   c.Counts(),
		priorityCounts: make(map[tasks.Priority]int, len(tasks.Priorities)),
		total:          len(c.Tasks),
		tasks:          c.Filter(f),
	}
	for _, p := range tasks.Priorities {
		data.priorityCounts[p] = 0
	}
	for _, t := range c.Tasks {
		data.priorityCounts[t.Priority]++
	}
	return data
}

func filterLabel(f tasks.Filter) string {
	var parts []string
	if f.Status != "" {
		parts = append(parts, "status="+string(f.Status))
	}
	if f.Priority != "" {
		parts = append(parts, "priority="+string(f.Priority))
	}
	return strings.Join(parts, " ")
}

func writeTitle(b *strings.Builder) {
	b.WriteString(titleStyle.Render(titleContent) + "\n")
	b.WriteString(strings.Repeat("=", len(titleContent)) + "\n\n")
}

func writeOverview(b *strings.Builder, data *viewData) {
	b.WriteString(headerStyle.Render("Overview") + "\n\n")
	fmt.Fprintf(b, "  Total: %d  Pending: %d  Completed: %d\n",
		data.total,
		data.statusCounts[tasks.StatusPending],
		data.statusCounts[tasks.StatusCompleted],
	)
	fmt.Fprintf(b, "  High: %d  Medium: %d  Low: %d\n\n",
		data.priorityCounts[tasks.PriorityHigh],
		data.priorityCounts[tasks.PriorityMedium],
		data.priorityCounts[tasks.PriorityLow],
	)
}

func writeTasks(b *strings.Builder, data *viewData) {
	b.WriteString(headerStyle.Render("Tasks") + "\n\n")
	if len(data.tasks) == 0 {
		if data.total == 0 {
			b.WriteString("  No tasks found. Add one with 'tasktrack add'!\n\n")
		} else {
			b.WriteString("  No tasks match the specified filters.\n\n")
		}
		return
	}
	for _, t := range data.tasks {
		b.WriteString(formatTask(t) + "\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString(headerStyle.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  r, F5        Refresh data\n")
	b.WriteString("  ?            Toggle this help screen\n")
	b.WriteString("  1            Show pending tasks\n")
	b.WriteString("  2            Show completed tasks\n")
	b.WriteString("  l, m, h      Show low, medium or high priority\n")
	b.WriteString("  0            Clear filters\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(footerStyle.Render(fmt.Sprintf("Press ? for help | q to quit | Refreshing every %s", interval)) + "\n")
}

func formatTask(t tasks.Task) string {
	icon := " "
	if t.IsCompleted() {
		icon = "x"
	}
	line := fmt.Sprintf("  [%s] #%d %s", icon, t.ID, t.Title)
	priority := fmt.Sprintf("(%s)", t.Priority)
	if t.Priority == tasks.PriorityHigh {
		priority = highStyle.Render(priority)
	}
	line += " " + priority
	if t.HasDue() {
		line += " due " + t.Due
	}
	if t.IsCompleted() {
		return doneStyle.Render(line)
	}
	return line
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
