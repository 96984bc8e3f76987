// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Backend abstracts the swapchain and command submission from the render
// task. The production implementation bridges to the windowing host's draw
// callback; tests substitute an in-memory fake.
//
// Acquire and Present may block until the display engine is ready and must
// therefore never be called while holding the Window's surfaces lock.
type Backend interface {
	// Device returns the logical GPU device.
	Device() hal.Device

	// Queue returns the device's submission queue.
	Queue() hal.Queue

	// Acquire blocks until the next swapchain texture is available and
	// returns its view.
	Acquire() (hal.TextureView, error)

	// NewEncoder creates a command encoder ready for recording.
	NewEncoder(label string) (hal.CommandEncoder, error)

	// Clear records a render pass into enc that clears view to color.
	// It runs before any stimulus renders, so stimuli can open load-op
	// passes and composite over the background.
	Clear(enc hal.CommandEncoder, view hal.TextureView, color gputypes.Color) error

	// Submit finishes the encoder and hands its commands to the queue.
	Submit(enc hal.CommandEncoder) error

	// Present schedules the acquired texture for display. It completes the
	// cycle started by Acquire.
	Present() error
}
