// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package psykit

import (
	"time"

	"github.com/gogpu/psykit/input"
)

// LoopResult reports how a trial loop ended: with a matched key or by
// timeout, and how long it ran. Elapsed counts from after the first body
// execution, so the first frame's build cost is excluded.
type LoopResult struct {
	// Key is the matched key. Only meaningful when Matched is true.
	Key input.Key

	// Matched reports whether a target key ended the loop.
	Matched bool

	// Elapsed is the loop duration from after the first body run until
	// the match or timeout was detected.
	Elapsed time.Duration
}

// LoopOption configures a LoopFrames call.
type LoopOption func(*loopConfig)

type loopConfig struct {
	keys    []input.Key
	state   input.KeyState
	timeout time.Duration
}

// WithKeys sets the target key set. Without it, no key ends the loop and
// only a timeout can.
func WithKeys(keys ...input.Key) LoopOption {
	return func(c *loopConfig) { c.keys = keys }
}

// WithKeyState restricts matches to pressed or released events. The
// default is StateAny.
func WithKeyState(s input.KeyState) LoopOption {
	return func(c *loopConfig) { c.state = s }
}

// WithTimeout sets the maximum loop duration. Without it the loop runs
// until a key matches.
func WithTimeout(d time.Duration) LoopOption {
	return func(c *loopConfig) { c.timeout = d }
}

func (c *loopConfig) matches(ev input.KeyEvent) bool {
	if !c.state.Matches(ev.Pressed) {
		return false
	}
	for _, k := range c.keys {
		if k == ev.Key {
			return true
		}
	}
	return false
}

// loopState is a phase of the LoopFrames state machine.
type loopState int

const (
	loopInit loopState = iota
	loopCheckTimeout
	loopDrainEvents
	loopRunBody
	loopTerminal
)

// LoopFrames runs a trial loop: it activates a fresh listener on kb, then
// repeatedly checks the timeout, drains pending key events looking for a
// match, and executes body once per iteration. The body typically builds
// a frame and presents it, so the loop emits a frame every refresh while
// watching for input; input latency never exceeds one render cycle.
//
// The body runs once before the clock starts, so Elapsed measures from
// the moment the first frame could have been on its way to the display.
// A body error aborts the loop and is returned as-is.
func LoopFrames(kb *input.Broadcast, body func() error, opts ...LoopOption) (LoopResult, error) {
	cfg := loopConfig{state: input.StateAny}
	for _, o := range opts {
		o(&cfg)
	}

	l := kb.Listen()
	defer l.Close()

	var (
		res   LoopResult
		start time.Time
	)
	state := loopInit
	for state != loopTerminal {
		switch state {
		case loopInit:
			if err := body(); err != nil {
				return res, err
			}
			start = time.Now()
			state = loopCheckTimeout

		case loopCheckTimeout:
			if cfg.timeout > 0 && time.Since(start) > cfg.timeout {
				res.Elapsed = time.Since(start)
				state = loopTerminal
				break
			}
			state = loopDrainEvents

		case loopDrainEvents:
			state = loopRunBody
			for {
				ev, ok := l.TryNext()
				if !ok {
					break
				}
				if cfg.matches(ev) {
					res.Key = ev.Key
					res.Matched = true
					res.Elapsed = time.Since(start)
					state = loopTerminal
					break
				}
			}

		case loopRunBody:
			if err := body(); err != nil {
				res.Elapsed = time.Since(start)
				return res, err
			}
			state = loopCheckTimeout
		}
	}
	return res, nil
}
