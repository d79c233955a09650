// Package cmd provides tests for CLI command handlers.
package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/nibzard/tasktrack/internal/config"
	"github.com/nibzard/tasktrack/internal/store"
	"github.com/nibzard/tasktrack/internal/tasks"
	"github.com/nibzard/tasktrack/internal/ui"
)

// setup isolates the test from user config and environment and moves into a
// fresh working directory, which holds the default data file.
func setup(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, name := range []string{
		config.EnvDataFile, config.EnvBackend, config.EnvDefaultPriority,
		config.EnvLogLevel, config.EnvLogFormat,
	} {
		t.Setenv(name, "")
	}
	work := t.TempDir()
	// t.Chdir needs Go 1.24; equivalent change-and-restore for older toolchains.
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PWD", work)
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Error(err)
		}
	})
	if resolved, err := os.Getwd(); err == nil {
		work = resolved
	}
	return work
}

func execute(args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	err = Execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

// mustExecute runs the CLI and fails the test on error.
func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := execute(args...)
	if err != nil {
		t.Fatalf("tasktrack %s: %v\nstderr: %s", strings.Join(args, " "), err, stderr)
	}
	return stdout
}

func loadFile(t *testing.T, path string) *tasks.Collection {
	t.Helper()
	c, err := store.New(store.NewFileBackend(path)).Load(context.Background())
	if err != nil {
		t.Fatalf("loading %s: %v", path, err)
	}
	return c
}

func TestHelpAndVersion(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"-help"}, {"--help"}, {"help"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			setup(t)
			stdout := mustExecute(t, args...)
			if !strings.Contains(stdout, "Commands:") || !strings.Contains(stdout, "-file") {
				t.Errorf("usage missing commands or global flags:\n%s", stdout)
			}
		})
	}
	for _, args := range [][]string{{"-v"}, {"-version"}, {"version"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			setup(t)
			stdout := mustExecute(t, args...)
			if want := "tasktrack version " + Version + "\n"; stdout != want {
				t.Errorf("got %q, want %q", stdout, want)
			}
		})
	}
}

func TestSubcommandHelp(t *testing.T) {
	setup(t)
	_, stderr, err := execute("add", "-h")
	if err != nil {
		t.Fatalf("add -h: %v", err)
	}
	if !strings.Contains(stderr, "tasktrack add <title>") || !strings.Contains(stderr, "-priority") {
		t.Errorf("add usage:\n%s", stderr)
	}
}

func TestNoCommand(t *testing.T) {
	setup(t)
	_, _, err := execute()
	if !errors.Is(err, ErrUsage) {
		t.Errorf("got %v, want ErrUsage", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	setup(t)
	_, _, err := execute("frobnicate")
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "unknown command: frobnicate") {
		t.Errorf("got %v, want unknown command usage error", err)
	}
}

func TestListEmpty(t *testing.T) {
	work := setup(t)
	stdout := mustExecute(t, "list")
	if want := "No tasks found. Add one with 'tasktrack add'!\n"; stdout != want {
		t.Errorf("got %q, want %q", stdout, want)
	}
	// Listing initializes the data file.
	c := loadFile(t, filepath.Join(work, config.DefaultDataFile))
	if !reflect.DeepEqual(c, tasks.NewCollection()) {
		t.Errorf("data file: got %+v, want empty collection", c)
	}
}

func TestTaskLifecycle(t *testing.T) {
	work := setup(t)
	dataFile := filepath.Join(work, config.DefaultDataFile)

	if got := mustExecute(t, "add", "Buy", "milk", "-p", "high", "-d", "2025-01-01"); got != "Task #1 added: 'Buy milk'\n" {
		t.Errorf("add: got %q", got)
	}
	if got := mustExecute(t, "add", "Call mom"); got != "Task #2 added: 'Call mom'\n" {
		t.Errorf("add: got %q", got)
	}

	c := loadFile(t, dataFile)
	if c.NextID != 3 || len(c.Tasks) != 2 {
		t.Fatalf("after add: got %+v", c)
	}
	if c.Tasks[0].Priority != tasks.PriorityHigh || c.Tasks[0].Due != "2025-01-01" {
		t.Errorf("task 1: got %+v", c.Tasks[0])
	}
	if c.Tasks[1].Priority != tasks.Priority(config.DefaultPriority) || c.Tasks[1].Status != tasks.StatusPending {
		t.Errorf("task 2: got %+v", c.Tasks[1])
	}

	listing := mustExecute(t, "list", "-format", "plain")
	for _, want := range []string{"Buy milk", "Call mom", "2025-01-01", "N/A"} {
		if !strings.Contains(listing, want) {
			t.Errorf("list missing %q:\n%s", want, listing)
		}
	}
	if got := mustExecute(t, "list", "-s", "completed"); got != "No tasks match the specified filters.\n" {
		t.Errorf("list completed: got %q", got)
	}

	if got := mustExecute(t, "complete", "1"); got != "Task #1 marked as complete!\n" {
		t.Errorf("complete: got %q", got)
	}
	if got := mustExecute(t, "done", "#1"); got != "Task #1 is already marked as complete.\n" {
		t.Errorf("complete again: got %q", got)
	}
	completed := mustExecute(t, "list", "-s", "completed", "-format", "plain")
	if !strings.Contains(completed, "Buy milk (✓)") || strings.Contains(completed, "Call mom") {
		t.Errorf("list completed:\n%s", completed)
	}

	if got := mustExecute(t, "update", "2", "-t", "Call dad", "-p", "low"); got != "Task #2 updated.\n" {
		t.Errorf("update: got %q", got)
	}
	if got := mustExecute(t, "update", "2"); got != "No changes provided. Nothing to update.\n" {
		t.Errorf("update without changes: got %q", got)
	}
	shown := mustExecute(t, "show", "2")
	for _, want := range []string{"Task #2", "Title:    Call dad", "Priority: low", "Status:   pending", "Due:      N/A"} {
		if !strings.Contains(shown, want) {
			t.Errorf("show missing %q:\n%s", want, shown)
		}
	}

	if got := mustExecute(t, "delete", "1"); got != "Task #1 has been deleted.\n" {
		t.Errorf("delete: got %q", got)
	}
	if got := mustExecute(t, "add", "Third"); got != "Task #3 added: 'Third'\n" {
		t.Errorf("add after delete: got %q", got)
	}

	c = loadFile(t, dataFile)
	if c.NextID != 4 || len(c.Tasks) != 2 || c.Tasks[0].ID != 2 || c.Tasks[1].ID != 3 {
		t.Errorf("final state: got %+v", c)
	}
}

func TestUpdateClearsDue(t *testing.T) {
	work := setup(t)
	mustExecute(t, "add", "Pay rent", "-d", "2025-02-01")
	mustExecute(t, "update", "1", "-due", "")

	c := loadFile(t, filepath.Join(work, config.DefaultDataFile))
	if c.Tasks[0].HasDue() {
		t.Errorf("due not cleared: got %+v", c.Tasks[0])
	}
}

func TestInterspersedFlags(t *testing.T) {
	setup(t)
	mustExecute(t, "add", "-p", "high", "Buy milk")
	mustExecute(t, "add", "Write", "-p", "low", "report", "--", "-draft")

	shown := mustExecute(t, "show", "2")
	if !strings.Contains(shown, "Title:    Write report -draft") || !strings.Contains(shown, "Priority: low") {
		t.Errorf("show:\n%s", shown)
	}
}

func TestListTable(t *testing.T) {
	setup(t)
	mustExecute(t, "add", "Buy milk", "-p", "high")
	listing := mustExecute(t, "ls")
	for _, want := range []string{"TITLE", "Buy milk", "high", "pending"} {
		if !strings.Contains(listing, want) {
			t.Errorf("table missing %q:\n%s", want, listing)
		}
	}
}

func TestErrorExitCodes(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"complete missing", []string{"complete", "9"}, ExitNotFound},
		{"delete missing", []string{"delete", "9"}, ExitNotFound},
		{"update missing", []string{"update", "9", "-t", "x"}, ExitNotFound},
		{"show missing", []string{"show", "9"}, ExitNotFound},
		{"invalid priority", []string{"add", "Task", "-p", "urgent"}, ExitUsage},
		{"blank title", []string{"add", "  "}, ExitUsage},
		{"missing title", []string{"add"}, ExitUsage},
		{"invalid due", []string{"add", "Task", "-d", "tomorrow"}, ExitUsage},
		{"invalid status filter", []string{"list", "-s", "done"}, ExitUsage},
		{"invalid id", []string{"complete", "abc"}, ExitUsage},
		{"missing id", []string{"delete"}, ExitUsage},
		{"unknown flag", []string{"list", "-bogus"}, ExitUsage},
		{"invalid backend", []string{"-backend", "yaml", "list"}, ExitUsage},
		{"invalid log level", []string{"-log-level", "loud", "list"}, ExitUsage},
		{"plain export", []string{"export", "-format", "plain"}, ExitUsage},
		{"csv list", []string{"list", "-format", "csv"}, ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t)
			_, _, err := execute(tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := ExitCode(err); got != tt.want {
				t.Errorf("ExitCode(%v): got %d, want %d", err, got, tt.want)
			}
		})
	}
}

func TestInvalidAddLeavesStateUnchanged(t *testing.T) {
	work := setup(t)
	mustExecute(t, "add", "Buy milk")
	if _, _, err := execute("add", "Task", "-p", "urgent"); !errors.Is(err, tasks.ErrInvalidPriority) {
		t.Fatalf("got %v, want ErrInvalidPriority", err)
	}

	c := loadFile(t, filepath.Join(work, config.DefaultDataFile))
	if len(c.Tasks) != 1 || c.NextID != 2 {
		t.Errorf("state changed: got %+v", c)
	}
}

func TestCorruptDataFile(t *testing.T) {
	work := setup(t)
	path := filepath.Join(work, config.DefaultDataFile)
	content := `{"tasks": [`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{{"list"}, {"add", "Task"}, {"export"}} {
		_, _, err := execute(args...)
		if got := ExitCode(err); got != ExitCorrupt {
			t.Errorf("%v: ExitCode(%v): got %d, want %d", args, err, got, ExitCorrupt)
		}
	}
	data, _ := os.ReadFile(path)
	if string(data) != content {
		t.Errorf("corrupt file modified: got %q", data)
	}
}

func TestExport(t *testing.T) {
	work := setup(t)
	mustExecute(t, "add", "Buy milk", "-p", "high", "-d", "2025-01-01")
	mustExecute(t, "add", "Call mom", "-p", "low")
	mustExecute(t, "complete", "2")

	t.Run("csv", func(t *testing.T) {
		out := mustExecute(t, "export")
		lines := strings.Split(strings.TrimSpace(out), "\n")
		if len(lines) != 3 {
			t.Fatalf("got %d lines, want 3:\n%s", len(lines), out)
		}
		if lines[0] != "id,title,priority,due,status,created_at" {
			t.Errorf("header: got %q", lines[0])
		}
		if !strings.HasPrefix(lines[1], "1,Buy milk,high,2025-01-01,pending,") {
			t.Errorf("row 1: got %q", lines[1])
		}
		if !strings.HasPrefix(lines[2], "2,Call mom,low,,completed,") {
			t.Errorf("row 2: got %q", lines[2])
		}
	})

	t.Run("json", func(t *testing.T) {
		out := mustExecute(t, "export", "-format", "json", "-p", "high")
		var rows []map[string]string
		if err := json.Unmarshal([]byte(out), &rows); err != nil {
			t.Fatalf("unmarshal: %v\n%s", err, out)
		}
		if len(rows) != 1 || rows[0]["title"] != "Buy milk" || rows[0]["due"] != "2025-01-01" {
			t.Errorf("rows: got %v", rows)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(work, "pending.csv")
		stdout, stderr, err := execute("export", "-o", path, "-s", "pending")
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		if stdout != "" {
			t.Errorf("stdout should be empty, got %q", stdout)
		}
		if !strings.Contains(stderr, "Exported 1 task(s)") {
			t.Errorf("stderr: got %q", stderr)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if n := strings.Count(string(data), "\n"); n != 2 {
			t.Errorf("got %d lines, want 2:\n%s", n, data)
		}
	})
}

func TestSQLiteDataFile(t *testing.T) {
	work := setup(t)
	dbPath := filepath.Join(work, "data", "tasks.db")

	mustExecute(t, "-file", dbPath, "add", "Buy milk")
	mustExecute(t, "-file", dbPath, "complete", "1")
	listing := mustExecute(t, "-file", dbPath, "list", "-format", "plain")
	if !strings.Contains(listing, "Buy milk (✓)") {
		t.Errorf("list:\n%s", listing)
	}

	data, err := os.ReadFile(dbPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("SQLite format 3")) {
		t.Errorf("%s is not a SQLite database", dbPath)
	}
	if _, err := os.Stat(filepath.Join(work, config.DefaultDataFile)); !os.IsNotExist(err) {
		t.Errorf("default data file should not exist: %v", err)
	}
}

func TestConfigCommand(t *testing.T) {
	work := setup(t)
	projectFile := filepath.Join(work, "tasktrack.toml")
	if err := os.WriteFile(projectFile, []byte("default_priority = \"high\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvLogLevel, "error")

	out := mustExecute(t, "-log-format", "json", "config")
	if !strings.Contains(out, "Config file: "+projectFile) {
		t.Errorf("config file not reported:\n%s", out)
	}
	want := map[string]string{
		"data_file":        string(config.SourceDefault),
		"backend":          string(config.SourceDefault),
		"default_priority": string(config.SourceProjFile),
		"log_level":        string(config.SourceEnv),
		"log_format":       string(config.SourceFlag),
	}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		source, ok := want[fields[0]]
		if !ok {
			continue
		}
		if !strings.HasSuffix(line, source) {
			t.Errorf("%s: got line %q, want source %q", fields[0], line, source)
		}
		delete(want, fields[0])
	}
	if len(want) != 0 {
		t.Errorf("missing keys in output: %v\n%s", want, out)
	}

	// The project default priority applies to new tasks.
	mustExecute(t, "add", "Task")
	if shown := mustExecute(t, "show", "1"); !strings.Contains(shown, "Priority: high") {
		t.Errorf("show:\n%s", shown)
	}
}

func TestConfigInit(t *testing.T) {
	work := setup(t)
	path := filepath.Join(work, "tasktrack.toml")

	if got := mustExecute(t, "config", "-init"); got != fmt.Sprintf("Wrote %s\n", path) {
		t.Errorf("got %q", got)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != config.ExampleConfig() {
		t.Error("written config does not match the example config")
	}

	_, _, err = execute("config", "-init")
	if ExitCode(err) != ExitUsage || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second init: got %v", err)
	}
}

func TestTUIRequiresTTY(t *testing.T) {
	if ui.IsTTY(os.Stdout) {
		t.Skip("stdout is a terminal")
	}
	setup(t)
	_, _, err := execute("tui")
	if !errors.Is(err, ui.ErrNotTTY) {
		t.Errorf("got %v, want ErrNotTTY", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{errors.New("disk full"), ExitFailure},
		{fmt.Errorf("%w: bad", ErrUsage), ExitUsage},
		{fmt.Errorf("loading config: %w", config.ErrInvalid), ExitUsage},
		{fmt.Errorf("add task: %w", tasks.ErrInvalidPriority), ExitUsage},
		{fmt.Errorf("delete task 3: %w", tasks.ErrTaskNotFound), ExitNotFound},
		{&store.CorruptStateError{Location: "tasks.json", Err: errors.New("bad json")}, ExitCorrupt},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v): got %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args     []string
		wantPos  []string
		wantFlag string
	}{
		{[]string{"a", "b"}, []string{"a", "b"}, ""},
		{[]string{"-p", "high", "a"}, []string{"a"}, "high"},
		{[]string{"a", "-p", "low", "b"}, []string{"a", "b"}, "low"},
		{[]string{"a", "--", "-p", "x"}, []string{"a", "-p", "x"}, ""},
		{nil, nil, ""},
	}
	for _, tt := range tests {
		fs := (&env{stderr: &bytes.Buffer{}}).newFlagSet("test", "")
		p := fs.String("p", "", "")
		got, err := parseArgs(fs, tt.args)
		if err != nil {
			t.Fatalf("parseArgs(%v): %v", tt.args, err)
		}
		if !reflect.DeepEqual(got, tt.wantPos) {
			t.Errorf("parseArgs(%v): got %q, want %q", tt.args, got, tt.wantPos)
		}
		if *p != tt.wantFlag {
			t.Errorf("parseArgs(%v) flag: got %q, want %q", tt.args, *p, tt.wantFlag)
		}
	}
}

func TestParseID(t *testing.T) {
	for _, in := range []string{"3", "#3"} {
		id, err := parseID([]string{in}, "show")
		if err != nil || id != 3 {
			t.Errorf("parseID(%q): got %d, %v", in, id, err)
		}
	}
	for _, args := range [][]string{nil, {"0"}, {"-1"}, {"x"}, {"1", "2"}} {
		if _, err := parseID(args, "show"); !errors.Is(err, ErrUsage) {
			t.Errorf("parseID(%v): got %v, want ErrUsage", args, err)
		}
	}
}
