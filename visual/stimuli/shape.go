// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stimuli

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/psykit/visual"
)

// Shape is a solid-color rectangle. The zero-configuration form covers
// the whole surface, which is what flicker and blanking stimuli want.
type Shape struct {
	base
}

var _ visual.Renderable = (*Shape)(nil)

// NewShape creates a fullscreen rectangle filled with color.
func NewShape(color gputypes.Color, opts ...Option) *Shape {
	s := &Shape{base: base{
		label: "shape_stimulus",
		wgsl:  fillShaderSource,
		rect:  FullscreenRect(),
		color: color,
	}}
	applyOptions(&s.base, opts)
	return s
}
