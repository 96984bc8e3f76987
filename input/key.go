// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package input provides keyboard capture for experiment code.
//
// Key events produced by the host event loop are fanned out through a
// Broadcast so that any number of experiment routines can observe the
// same stream independently, each with its own bounded buffer.
package input

import (
	"fmt"
	"time"

	"github.com/gogpu/gpucontext"
)

// Key identifies a physical key. It aliases gpucontext.Key so that values
// reported by the windowing layer can be matched without conversion.
type Key = gpucontext.Key

// KeyState selects which transition of a key a caller is interested in.
// It is a match predicate, not an event field: StateAny matches both
// presses and releases.
type KeyState int

const (
	// StatePressed matches key-down transitions only.
	StatePressed KeyState = iota

	// StateReleased matches key-up transitions only.
	StateReleased

	// StateAny matches both transitions.
	StateAny
)

// String returns the string representation of a KeyState.
func (s KeyState) String() string {
	switch s {
	case StatePressed:
		return "Pressed"
	case StateReleased:
		return "Released"
	case StateAny:
		return "Any"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Matches reports whether an event with the given pressed flag satisfies
// the predicate.
func (s KeyState) Matches(pressed bool) bool {
	switch s {
	case StatePressed:
		return pressed
	case StateReleased:
		return !pressed
	default:
		return true
	}
}

// KeyEvent is a single key transition observed by the host event loop.
type KeyEvent struct {
	// Key is the key that changed state.
	Key Key

	// Pressed is true for key-down, false for key-up.
	Pressed bool

	// Timestamp is the wall-clock time the event was observed. Reaction
	// times are derived from it relative to a loop start time.
	Timestamp time.Time
}
