// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SurfaceConfig describes the current swapchain surface.
type SurfaceConfig struct {
	// Width and Height are the surface size in physical pixels.
	Width  uint32
	Height uint32

	// Format is the swapchain texture format render pipelines must target.
	Format gputypes.TextureFormat
}

// RenderContext carries everything a stimulus needs during preparation:
// the GPU device pair, the target view, the current surface configuration,
// and the physical display geometry used to convert size units (degrees of
// visual angle, millimeters) into pixels.
type RenderContext struct {
	Device hal.Device
	Queue  hal.Queue
	Target hal.TextureView
	Config SurfaceConfig

	// PhysicalWidthMM is the physical width of the display area in mm.
	PhysicalWidthMM float64

	// ViewingDistanceMM is the observer's distance from the display in mm.
	ViewingDistanceMM float64
}

// Renderable is the capability every stimulus type must implement to be
// placed into a Frame.
//
// The render task guarantees that Prepare is called for every stimulus in
// a frame before Render is called for any of them, and that all Render
// calls of one frame record into a single command encoder submitted
// exactly once. Render passes opened by a stimulus must load the existing
// target contents rather than clear them, so stimuli composite in frame
// order without sharing render-pass ownership.
type Renderable interface {
	// Prepare uploads or updates GPU-visible state (uniforms, textures,
	// vertex data) for this frame. It must be idempotent for unchanged
	// inputs; side effects are confined to GPU state owned by the
	// stimulus.
	Prepare(rc *RenderContext) error

	// Render records draw commands for the stimulus into the shared
	// encoder, targeting view.
	Render(enc hal.CommandEncoder, view hal.TextureView) error
}
