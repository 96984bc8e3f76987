// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package events writes trial events to tabular files during an
// experiment. CSVLogger is the general form; BIDSLogger produces
// BIDS-compatible events.tsv files with mandatory onset and duration
// columns.
package events

import "errors"

var (
	// ErrColumnsNotUnique is returned when a logger is created with, or
	// LogCols is called with, duplicate column names.
	ErrColumnsNotUnique = errors.New("events: column names not unique")

	// ErrColumnCount is returned when the number of values does not
	// match the number of columns.
	ErrColumnCount = errors.New("events: value count does not match column count")

	// ErrUnknownColumn is returned by LogCols for a column the logger
	// was not created with.
	ErrUnknownColumn = errors.New("events: unknown column")

	// ErrFileExists is returned when the target file already holds data
	// and overwrite was not requested.
	ErrFileExists = errors.New("events: file exists and is not empty")

	// ErrBIDSPath is returned for a BIDS logger path that does not end
	// with "events.tsv".
	ErrBIDSPath = errors.New(`events: BIDS path must end with "events.tsv"`)
)

func uniqueColumns(columns []string) bool {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return false
		}
		seen[c] = struct{}{}
	}
	return true
}
