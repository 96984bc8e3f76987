package events

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func TestCSVLoggerWritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.csv")
	l, err := NewCSVLogger(path, []string{"trial", "key", "rt"}, false)
	if err != nil {
		t.Fatalf("NewCSVLogger() = %v", err)
	}

	if err := l.Log(1, "space", 0.412); err != nil {
		t.Fatalf("Log() = %v", err)
	}
	if err := l.Log(2, "f", 0.377); err != nil {
		t.Fatalf("Log() = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	lines := readLines(t, path)
	want := []string{"trial,key,rt", "1,space,0.412", "2,f,0.377"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCSVLoggerFlushesPerRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.csv")
	l, err := NewCSVLogger(path, []string{"trial"}, false)
	if err != nil {
		t.Fatalf("NewCSVLogger() = %v", err)
	}
	defer l.Close()

	if err := l.Log(1); err != nil {
		t.Fatalf("Log() = %v", err)
	}

	// Visible on disk without Close.
	lines := readLines(t, path)
	if len(lines) != 2 || lines[1] != "1" {
		t.Errorf("lines before Close = %q, want header plus %q", lines, "1")
	}
}

func TestCSVLoggerRejectsDuplicateColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.csv")
	_, err := NewCSVLogger(path, []string{"a", "b", "a"}, false)
	if !errors.Is(err, ErrColumnsNotUnique) {
		t.Errorf("NewCSVLogger() = %v, want ErrColumnsNotUnique", err)
	}
}

func TestCSVLoggerRejectsWrongArity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.csv")
	l, err := NewCSVLogger(path, []string{"a", "b"}, false)
	if err != nil {
		t.Fatalf("NewCSVLogger() = %v", err)
	}
	defer l.Close()

	if err := l.Log(1); !errors.Is(err, ErrColumnCount) {
		t.Errorf("Log(1) = %v, want ErrColumnCount", err)
	}
	if err := l.Log(1, 2, 3); !errors.Is(err, ErrColumnCount) {
		t.Errorf("Log(1,2,3) = %v, want ErrColumnCount", err)
	}
}

func TestCSVLoggerExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trials.csv")
	if err := os.WriteFile(path, []byte("old data\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewCSVLogger(path, []string{"a"}, false); !errors.Is(err, ErrFileExists) {
		t.Errorf("NewCSVLogger(overwrite=false) = %v, want ErrFileExists", err)
	}

	l, err := NewCSVLogger(path, []string{"a"}, true)
	if err != nil {
		t.Fatalf("NewCSVLogger(overwrite=true) = %v", err)
	}
	l.Close()

	lines := readLines(t, path)
	if lines[0] != "a" {
		t.Errorf("header after overwrite = %q, want %q", lines[0], "a")
	}

	// An existing empty file needs no overwrite flag.
	empty := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	l2, err := NewCSVLogger(empty, []string{"a"}, false)
	if err != nil {
		t.Fatalf("NewCSVLogger(empty existing file) = %v", err)
	}
	l2.Close()
}

func TestCSVLoggerLogCols(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.csv")
	l, err := NewCSVLogger(path, []string{"trial", "key", "rt"}, false)
	if err != nil {
		t.Fatalf("NewCSVLogger() = %v", err)
	}

	// Named columns may come in any order; unnamed ones stay empty.
	if err := l.LogCols([]string{"rt", "trial"}, 0.5, 7); err != nil {
		t.Fatalf("LogCols() = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	lines := readLines(t, path)
	if lines[1] != "7,,0.5" {
		t.Errorf("row = %q, want %q", lines[1], "7,,0.5")
	}
}

func TestCSVLoggerLogColsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trials.csv")
	l, err := NewCSVLogger(path, []string{"a", "b"}, false)
	if err != nil {
		t.Fatalf("NewCSVLogger() = %v", err)
	}
	defer l.Close()

	if err := l.LogCols([]string{"c"}, 1); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("LogCols(unknown) = %v, want ErrUnknownColumn", err)
	}
	if err := l.LogCols([]string{"a", "a"}, 1, 2); !errors.Is(err, ErrColumnsNotUnique) {
		t.Errorf("LogCols(dup) = %v, want ErrColumnsNotUnique", err)
	}
	if err := l.LogCols([]string{"a", "b"}, 1); !errors.Is(err, ErrColumnCount) {
		t.Errorf("LogCols(arity) = %v, want ErrColumnCount", err)
	}
}

func TestBIDSLoggerPathValidation(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewBIDSLogger(filepath.Join(dir, "trials.tsv"), nil, false); !errors.Is(err, ErrBIDSPath) {
		t.Errorf("NewBIDSLogger(bad path) = %v, want ErrBIDSPath", err)
	}

	l, err := NewBIDSLogger(filepath.Join(dir, "sub-01_task-flicker_events.tsv"), []string{"trial"}, false)
	if err != nil {
		t.Fatalf("NewBIDSLogger() = %v", err)
	}
	l.Close()
}

func TestBIDSLoggerRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.tsv")
	l, err := NewBIDSLogger(path, []string{"trial", "response"}, false)
	if err != nil {
		t.Fatalf("NewBIDSLogger() = %v", err)
	}

	if err := l.Log(500*time.Millisecond, 1, "space"); err != nil {
		t.Fatalf("Log() = %v", err)
	}
	if err := l.LogCols([]string{"trial"}, time.Second, 2); err != nil {
		t.Fatalf("LogCols() = %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	lines := readLines(t, path)
	if lines[0] != "onset\tduration\ttrial\tresponse" {
		t.Fatalf("header = %q", lines[0])
	}

	fields := strings.Split(lines[1], "\t")
	if len(fields) != 4 {
		t.Fatalf("row 1 = %q, want 4 fields", lines[1])
	}
	onset1, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || onset1 < 0 {
		t.Errorf("onset = %q, want non-negative float", fields[0])
	}
	if fields[1] != "0.5" || fields[2] != "1" || fields[3] != "space" {
		t.Errorf("row 1 = %q, want duration 0.5, trial 1, response space", lines[1])
	}

	fields2 := strings.Split(lines[2], "\t")
	if len(fields2) != 4 {
		t.Fatalf("row 2 = %q, want 4 fields", lines[2])
	}
	onset2, err := strconv.ParseFloat(fields2[0], 64)
	if err != nil || onset2 < onset1 {
		t.Errorf("onsets not monotonic: %q then %q", fields[0], fields2[0])
	}
	if fields2[1] != "1" || fields2[2] != "2" || fields2[3] != "" {
		t.Errorf("row 2 = %q, want duration 1, trial 2, empty response", lines[2])
	}
}
