// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"sync"

	"github.com/gogpu/gputypes"
)

// Frame is one ordered batch of stimuli presented together in a single
// display refresh. A frame is created fresh each trial tick by the
// experiment goroutine, consumed exactly once by the render task, then
// dropped.
//
// The mutex mediates the shared ownership between the builder and the
// render task: the render task calls back into each stimulus's mutable
// state during preparation, which may overlap with the experiment mutating
// stimuli for a future frame.
type Frame struct {
	mu      sync.Mutex
	stimuli []Renderable
	bg      gputypes.Color
}

// NewFrame returns an empty frame with an opaque black background.
func NewFrame() *Frame {
	return &Frame{bg: gputypes.Color{R: 0, G: 0, B: 0, A: 1}}
}

// NewFrameBG returns an empty frame with the given background color.
func NewFrameBG(bg gputypes.Color) *Frame {
	return &Frame{bg: bg}
}

// SetBGColor sets the color the surface is cleared to before any stimulus
// renders. A frame with no stimuli presents the bare background, which is
// how blank inter-trial intervals are shown.
func (f *Frame) SetBGColor(bg gputypes.Color) {
	f.mu.Lock()
	f.bg = bg
	f.mu.Unlock()
}

// BGColor returns the frame's background color.
func (f *Frame) BGColor() gputypes.Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bg
}

// Add appends a stimulus. Stimuli render in insertion order.
func (f *Frame) Add(s Renderable) {
	if s == nil {
		return
	}
	f.mu.Lock()
	f.stimuli = append(f.stimuli, s)
	f.mu.Unlock()
}

// Clear removes all stimuli.
func (f *Frame) Clear() {
	f.mu.Lock()
	f.stimuli = f.stimuli[:0]
	f.mu.Unlock()
}

// Len returns the number of stimuli in the frame.
func (f *Frame) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stimuli)
}

// snapshot returns the stimulus list as of now. The render task takes one
// snapshot per frame so that preparation and rendering see the same order.
func (f *Frame) snapshot() []Renderable {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Renderable, len(f.stimuli))
	copy(out, f.stimuli)
	return out
}
