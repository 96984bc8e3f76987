// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package psykit

// VideoMode is one resolution and refresh rate a monitor supports.
type VideoMode struct {
	Width  uint32
	Height uint32

	// RefreshRateMilliHz is the vertical refresh rate in millihertz
	// (60000 = 60 Hz).
	RefreshRateMilliHz uint32
}

// Monitor describes one attached display.
type Monitor struct {
	Name  string
	Modes []VideoMode
}

// SelectMonitor picks the monitor at index, falling back to the first
// (current) monitor when the index has no match. ok is false only when
// monitors is empty.
func SelectMonitor(monitors []Monitor, index int) (m Monitor, ok bool) {
	if len(monitors) == 0 {
		return Monitor{}, false
	}
	if index < 0 || index >= len(monitors) {
		return monitors[0], true
	}
	return monitors[index], true
}

// pickFullscreen resolves a fullscreen request to a concrete monitor and
// video mode: the monitor at index (the current one on no match) and its
// largest, fastest mode. ok is false when no monitor or no mode exists.
func pickFullscreen(monitors []Monitor, index int) (Monitor, VideoMode, bool) {
	mon, ok := SelectMonitor(monitors, index)
	if !ok {
		return Monitor{}, VideoMode{}, false
	}
	mode, ok := SelectVideoMode(mon.Modes)
	if !ok {
		return Monitor{}, VideoMode{}, false
	}
	return mon, mode, true
}

// SelectVideoMode picks the mode with the largest resolution, breaking
// ties by the highest refresh rate. ok is false only when modes is
// empty.
func SelectVideoMode(modes []VideoMode) (m VideoMode, ok bool) {
	if len(modes) == 0 {
		return VideoMode{}, false
	}
	best := modes[0]
	for _, c := range modes[1:] {
		bestPx := uint64(best.Width) * uint64(best.Height)
		px := uint64(c.Width) * uint64(c.Height)
		switch {
		case px > bestPx:
			best = c
		case px == bestPx && c.RefreshRateMilliHz > best.RefreshRateMilliHz:
			best = c
		}
	}
	return best, true
}
