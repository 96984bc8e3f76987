// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package visual implements the frame-presentation pipeline.
//
// An experiment goroutine builds a Frame (an ordered batch of stimuli),
// submits it to the Window, and waits for the acknowledgement that the
// frame's GPU work has been handed to the presentation engine. A dedicated
// render goroutine consumes frames one at a time, so the producer can never
// run more than one frame ahead of the display. This single-frame-in-flight
// backpressure is what makes stimulus-duration measurements trustworthy.
//
// # Pipeline
//
//	experiment        Window               render task
//	   |   Submit(frame)  |                     |
//	   |------------------|----> frames ------->|  Acquire view
//	   |                  |                     |  Prepare all stimuli
//	   |                  |                     |  Render all stimuli
//	   |                  |                     |  Submit encoder once
//	   |                  |                     |  Present
//	   |   WaitAck()      |<------ acks --------|
//	   |<-----------------|                     |
//
// # Locking discipline
//
// The surface configuration is the only state mutated by more than one
// goroutine (the host event loop on resize, the render task during frame
// preparation). Both take the Window's surfaces lock, and neither ever
// holds it while waiting on a channel — the render task acquires the
// swapchain view and sends the acknowledgement outside the lock. Violating
// this rule deadlocks the host loop against the render task.
package visual
