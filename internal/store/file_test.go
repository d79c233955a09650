package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/nibzard/tasktrack/internal/tasks"
)

func TestFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	s := New(NewFileBackend(path))
	if err := s.Save(context.Background(), sampleCollection()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	content := string(data)

	if !strings.HasSuffix(content, "}\n") {
		t.Error("file should end with a newline")
	}
	if !strings.Contains(content, "\n  \"tasks\": [") {
		t.Errorf("expected 2-space indentation, got:\n%s", content)
	}
	for _, key := range []string{`"next_id": 4`, `"created_at": "2025-01-01T09:30:00Z"`, `"due": "2025-01-01"`} {
		if !strings.Contains(content, key) {
			t.Errorf("expected %s in:\n%s", key, content)
		}
	}
	// Task 3 has no due date.
	if strings.Count(content, `"due"`) != 1 {
		t.Errorf("empty due should be omitted:\n%s", content)
	}
}

func TestFileEmptyInitializes(t *testing.T) {
	for _, content := range []string{"", "  \n\t"} {
		path := filepath.Join(t.TempDir(), "tasks.json")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}

		s := New(NewFileBackend(path))
		c, err := s.Load(context.Background())
		if err != nil {
			t.Fatalf("Load(%q) failed: %v", content, err)
		}
		if len(c.Tasks) != 0 || c.NextID != 1 {
			t.Errorf("Load(%q): got %+v", content, c)
		}

		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), `"next_id": 1`) {
			t.Errorf("initial collection not persisted, file holds %q", data)
		}
	}
}

func TestFileCorruptContent(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantPath string
	}{
		{"truncated json", `{"tasks": [`, ""},
		{"not an object", `[1, 2, 3]`, ""},
		{"trailing data", `{"tasks": [], "next_id": 1} {}`, ""},
		{"missing next_id", `{"tasks": []}`, ""},
		{"unknown field", `{"tasks": [], "next_id": 1, "extra": true}`, ""},
		{"bad priority", `{"tasks": [{"id": 1, "title": "x", "priority": "urgent", "status": "pending", "created_at": "2025-01-01T00:00:00Z"}], "next_id": 2}`, "tasks[0].priority"},
		{"bad due format", `{"tasks": [{"id": 1, "title": "x", "priority": "low", "due": "soon", "status": "pending", "created_at": "2025-01-01T00:00:00Z"}], "next_id": 2}`, "tasks[0].due"},
		{"bad created_at", `{"tasks": [{"id": 1, "title": "x", "priority": "low", "status": "pending", "created_at": "yesterday"}], "next_id": 2}`, "tasks[0].created_at"},
		{"duplicate ids", `{"tasks": [
			{"id": 1, "title": "a", "priority": "low", "status": "pending", "created_at": "2025-01-01T00:00:00Z"},
			{"id": 1, "title": "b", "priority": "low", "status": "pending", "created_at": "2025-01-01T00:00:00Z"}], "next_id": 2}`, "tasks[1].id"},
		{"next_id not above max", `{"tasks": [{"id": 5, "title": "x", "priority": "low", "status": "pending", "created_at": "2025-01-01T00:00:00Z"}], "next_id": 5}`, "next_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			s := New(NewFileBackend(path))
			_, err := s.Load(context.Background())
			if !errors.Is(err, ErrCorruptState) {
				t.Fatalf("Load: got %v, want ErrCorruptState", err)
			}
			var ce *CorruptStateError
			if !errors.As(err, &ce) || ce.Location != path {
				t.Errorf("CorruptStateError location: got %+v, want %s", ce, path)
			}
			if tt.wantPath != "" {
				var ve *tasks.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected *tasks.ValidationError in %v", err)
				}
				if !strings.Contains(err.Error(), tt.wantPath) {
					t.Errorf("error %q does not mention %s", err, tt.wantPath)
				}
			}

			// Corrupt content is never rewritten.
			data, _ := os.ReadFile(path)
			if string(data) != tt.content {
				t.Errorf("file modified: got %q, want %q", data, tt.content)
			}
		})
	}
}

func TestFileFailedWriteKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	b := NewFileBackend(path)
	s := New(b)

	want := sampleCollection()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	next := want.Clone()
	next.Tasks = next.Tasks[:1]

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		if err := b.Write(canceled, next); err == nil {
			t.Fatal("Write: expected error for canceled context")
		}
		assertUnchanged(t, s, path, before, want)
	})

	t.Run("read-only directory", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("directory permissions are not enforced")
		}
		if err := os.Chmod(dir, 0o555); err != nil {
			t.Fatalf("Chmod failed: %v", err)
		}
		t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

		if err := b.Write(ctx, next); err == nil {
			t.Fatal("Write: expected error in read-only directory")
		}
		assertUnchanged(t, s, path, before, want)
	})
}

func assertUnchanged(t *testing.T, s *Store, path string, before []byte, want *tasks.Collection) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(data, before) {
		t.Errorf("file modified: got %q, want %q", data, before)
	}
	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load: got %+v, want %+v", got, want)
	}
}

func TestFileFailedRenameLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	// A directory at the target path makes the final rename fail.
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	b := NewFileBackend(path)
	if err := b.Write(context.Background(), sampleCollection()); err == nil {
		t.Fatal("Write: expected error when target is a directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		t.Errorf("target replaced: %v", err)
	}
}

func TestFileEmptyDueMeansNone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `{"tasks": [{"id": 1, "title": "x", "priority": "low", "due": "", "status": "pending", "created_at": "2025-01-01T00:00:00Z"}], "next_id": 2}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c, err := New(NewFileBackend(path)).Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Tasks[0].HasDue() {
		t.Errorf("Due: got %q, want empty", c.Tasks[0].Due)
	}
}

func TestFileCreatedAtNormalizedToUTC(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `{"tasks": [{"id": 1, "title": "x", "priority": "low", "status": "pending", "created_at": "2025-01-01T10:00:00+05:00"}], "next_id": 2}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	fromJSON, err := New(NewFileBackend(path)).Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := time.Date(2025, 1, 1, 5, 0, 0, 0, time.UTC)
	if got := fromJSON.Tasks[0].CreatedAt; !got.Equal(want) || got.Location() != time.UTC {
		t.Errorf("CreatedAt: got %v, want %v", got, want)
	}

	sqlite := New(openMemorySQLite(t))
	if err := sqlite.Save(ctx, fromJSON); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	fromSQLite, err := sqlite.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(fromSQLite, fromJSON) {
		t.Errorf("sqlite: got %+v, want %+v", fromSQLite, fromJSON)
	}
}

func TestFileWriteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "tasks.json")
	s := New(NewFileBackend(path))
	if _, err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("data file not created: %v", err)
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := map[string]string{
		"":                  "",
		"#":                 "",
		"/next_id":          "next_id",
		"/tasks/0/priority": "tasks[0].priority",
		"#/tasks/12/title":  "tasks[12].title",
		"/a~1b/c~0d":        "a/b.c~d",
	}
	for in, want := range tests {
		if got := jsonPointerToPath(in); got != want {
			t.Errorf("jsonPointerToPath(%q): got %q, want %q", in, got, want)
		}
	}
}
