// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package events

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BIDSLogger writes a tab-delimited events.tsv file following the BIDS
// convention: every row starts with an onset column (seconds since the
// logger was created) and a duration column, followed by the
// experiment-defined columns.
type BIDSLogger struct {
	csv   *CSVLogger
	start time.Time
}

// NewBIDSLogger creates a BIDS event log. The path must end with
// "events.tsv"; columns lists the experiment-defined columns, onset and
// duration are prepended automatically.
func NewBIDSLogger(path string, columns []string, overwrite bool) (*BIDSLogger, error) {
	if !strings.HasSuffix(path, "events.tsv") {
		return nil, fmt.Errorf("%w: %s", ErrBIDSPath, path)
	}

	cols := append([]string{"onset", "duration"}, columns...)
	csv, err := newDelimitedLogger(path, cols, '\t', overwrite)
	if err != nil {
		return nil, err
	}
	return &BIDSLogger{csv: csv, start: time.Now()}, nil
}

// Path returns the file the logger writes to.
func (l *BIDSLogger) Path() string { return l.csv.Path() }

// Log writes one event row. The onset is the time elapsed since the
// logger was created; values must match the experiment-defined columns.
func (l *BIDSLogger) Log(duration time.Duration, values ...any) error {
	row := append([]any{l.onset(), formatSeconds(duration.Seconds())}, values...)
	return l.csv.Log(row...)
}

// LogCols writes one event row for a subset of the experiment-defined
// columns. The onset and duration columns are always filled.
func (l *BIDSLogger) LogCols(names []string, duration time.Duration, values ...any) error {
	allNames := append([]string{"onset", "duration"}, names...)
	allValues := append([]any{l.onset(), formatSeconds(duration.Seconds())}, values...)
	return l.csv.LogCols(allNames, allValues...)
}

// Close flushes and closes the underlying file.
func (l *BIDSLogger) Close() error { return l.csv.Close() }

func (l *BIDSLogger) onset() string {
	return formatSeconds(time.Since(l.start).Seconds())
}

func formatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', -1, 64)
}
