// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package events

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"
)

// CSVLogger appends experiment events to a delimited text file, one row
// per event. The column set is fixed at creation; every row is flushed to
// disk immediately so a crash mid-experiment loses at most the event
// being written.
//
// CSVLogger is safe for concurrent use.
type CSVLogger struct {
	mu      sync.Mutex
	path    string
	columns []string
	file    *os.File
	w       *csv.Writer
}

// NewCSVLogger creates a comma-delimited event log at path with the given
// header columns. If the file already exists and is not empty, overwrite
// must be true or the call fails with ErrFileExists.
func NewCSVLogger(path string, columns []string, overwrite bool) (*CSVLogger, error) {
	return newDelimitedLogger(path, columns, ',', overwrite)
}

func newDelimitedLogger(path string, columns []string, delim rune, overwrite bool) (*CSVLogger, error) {
	if !uniqueColumns(columns) {
		return nil, fmt.Errorf("%w: %v", ErrColumnsNotUnique, columns)
	}

	if fi, err := os.Stat(path); err == nil && fi.Size() > 0 && !overwrite {
		return nil, fmt.Errorf("%w: %s", ErrFileExists, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("events: create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	w.Comma = delim

	cols := make([]string, len(columns))
	copy(cols, columns)
	if err := w.Write(cols); err != nil {
		f.Close()
		return nil, fmt.Errorf("events: write header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("events: write header: %w", err)
	}

	return &CSVLogger{path: path, columns: cols, file: f, w: w}, nil
}

// Path returns the file the logger writes to.
func (l *CSVLogger) Path() string { return l.path }

// Columns returns the logger's header columns.
func (l *CSVLogger) Columns() []string {
	out := make([]string, len(l.columns))
	copy(out, l.columns)
	return out
}

// Log writes one event row. Values are formatted with fmt.Sprint and must
// match the column count exactly.
func (l *CSVLogger) Log(values ...any) error {
	if len(values) != len(l.columns) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrColumnCount, len(values), len(l.columns))
	}
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = fmt.Sprint(v)
	}
	return l.writeRow(row)
}

// LogCols writes one event row giving values for a subset of columns, in
// any order. Columns not named are written empty. Every name must be one
// of the logger's columns and names must be unique.
func (l *CSVLogger) LogCols(names []string, values ...any) error {
	if len(names) != len(values) {
		return fmt.Errorf("%w: got %d values for %d named columns", ErrColumnCount, len(values), len(names))
	}
	if !uniqueColumns(names) {
		return fmt.Errorf("%w: %v", ErrColumnsNotUnique, names)
	}

	byName := make(map[string]any, len(names))
	for i, n := range names {
		byName[n] = values[i]
	}
	for n := range byName {
		if !l.hasColumn(n) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, n)
		}
	}

	row := make([]string, len(l.columns))
	for i, c := range l.columns {
		if v, ok := byName[c]; ok {
			row[i] = fmt.Sprint(v)
		}
	}
	return l.writeRow(row)
}

func (l *CSVLogger) hasColumn(name string) bool {
	for _, c := range l.columns {
		if c == name {
			return true
		}
	}
	return false
}

func (l *CSVLogger) writeRow(row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.w.Write(row); err != nil {
		return fmt.Errorf("events: write row: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("events: write row: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *CSVLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.file.Close()
		return fmt.Errorf("events: flush: %w", err)
	}
	return l.file.Close()
}
