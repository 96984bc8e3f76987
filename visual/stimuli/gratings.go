// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stimuli

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/psykit/visual"
)

// Gratings renders a sine luminance grating. The cycle length may be
// given in any Size unit; it is resolved to pixels during preparation
// using the window's physical geometry, so a grating specified in degrees
// of visual angle stays calibrated when the viewing distance changes.
type Gratings struct {
	base

	cycleLength Size
	phase       float32
}

var _ visual.Renderable = (*Gratings)(nil)

// NewGratings creates a fullscreen white sine grating with the given
// cycle length and starting phase in radians.
func NewGratings(cycleLength Size, phase float32, opts ...Option) *Gratings {
	g := &Gratings{
		base: base{
			label: "gratings_stimulus",
			wgsl:  gratingsShaderSource,
			rect:  FullscreenRect(),
			color: gputypes.Color{R: 1, G: 1, B: 1, A: 1},
		},
		cycleLength: cycleLength,
		phase:       phase,
	}
	g.base.onPrepare = g.resolveParams
	applyOptions(&g.base, opts)
	return g
}

// SetPhase sets the grating phase in radians. Takes effect on the next
// prepared frame, which is how drifting gratings are animated: advance
// the phase in the trial-loop body each tick.
func (g *Gratings) SetPhase(phase float32) {
	g.mu.Lock()
	g.phase = phase
	g.mu.Unlock()
}

// Phase returns the current phase in radians.
func (g *Gratings) Phase() float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// SetCycleLength sets the length of one grating cycle.
func (g *Gratings) SetCycleLength(s Size) {
	g.mu.Lock()
	g.cycleLength = s
	g.mu.Unlock()
}

// CycleLength returns the configured cycle length.
func (g *Gratings) CycleLength() Size {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cycleLength
}

// resolveParams runs under the base mutex during Prepare.
func (g *Gratings) resolveParams(rc *visual.RenderContext) error {
	cyclePx := g.cycleLength.ToPixels(
		rc.PhysicalWidthMM, rc.ViewingDistanceMM,
		rc.Config.Width, rc.Config.Height,
	)
	g.params[0] = g.phase
	g.params[1] = float32(cyclePx)
	return nil
}
