// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stimuli

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"

	"github.com/gogpu/psykit/visual"
)

// Custom is a stimulus driven by a caller-supplied WGSL module. The
// module must declare the StimulusUniforms block at group(0) binding(0)
// and export vs_main/fs_main entry points; see shaders/fill.wgsl for the
// expected layout. Up to four scalar parameters reach the shader through
// uniforms params.
type Custom struct {
	base
}

var _ visual.Renderable = (*Custom)(nil)

// NewCustom validates wgsl and creates a fullscreen stimulus from it.
// Validation runs through naga at construction so a malformed shader
// fails here, before the experiment starts, rather than on the first
// frame of a trial.
func NewCustom(wgsl string, opts ...Option) (*Custom, error) {
	if _, err := naga.Compile(wgsl); err != nil {
		return nil, fmt.Errorf("stimuli: invalid stimulus shader: %w", err)
	}
	c := &Custom{base: base{
		label: "custom_stimulus",
		wgsl:  wgsl,
		rect:  FullscreenRect(),
		color: gputypes.Color{R: 1, G: 1, B: 1, A: 1},
	}}
	applyOptions(&c.base, opts)
	return c, nil
}

// SetParams sets the four scalar shader parameters.
func (c *Custom) SetParams(params [4]float32) {
	c.mu.Lock()
	c.params = params
	c.mu.Unlock()
}

// Params returns the current shader parameters.
func (c *Custom) Params() [4]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.params
}
