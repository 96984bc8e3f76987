// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"errors"
	"fmt"
)

// RunRenderTask consumes submitted frames until the window closes. It
// runs on its own goroutine, started by the host after the GPU surface
// exists.
//
// A GPU submission failure is not recoverable mid-experiment: the task
// closes the window so every pending Submit and WaitAck unblocks with
// ErrWindowClosed, then returns the error.
func (w *Window) RunRenderTask() error {
	slogger().Debug("render task started")
	for {
		select {
		case <-w.done:
			slogger().Debug("render task stopped")
			return nil
		case f := <-w.frames:
			if err := w.renderFrame(f); err != nil {
				if errors.Is(err, ErrWindowClosed) {
					// Shutdown raced the frame; not a failure.
					slogger().Debug("render task stopped mid-frame")
					return nil
				}
				slogger().Error("render task failed", "error", err)
				w.Close()
				return err
			}
			if w.Closed() {
				// A frame finishing mid-shutdown must not latch an ack
				// that could mask the closed state.
				slogger().Debug("render task stopped")
				return nil
			}
			// Ack first, then free the in-flight slot: the next Submit
			// may only proceed once this frame's ack has been posted.
			w.postAck()
			<-w.tokens
		}
	}
}

// renderFrame runs one frame through the pipeline: acquire the swapchain
// view, prepare every stimulus, record clear plus all draws into one
// encoder, submit it once, present.
func (w *Window) renderFrame(f *Frame) error {
	// Acquire blocks on the display engine, so it stays outside the
	// surfaces lock.
	view, err := w.backend.Acquire()
	if err != nil {
		return fmt.Errorf("acquire surface: %w", err)
	}

	stimuli := f.snapshot()

	w.mu.Lock()
	rc := &RenderContext{
		Device:            w.backend.Device(),
		Queue:             w.backend.Queue(),
		Target:            view,
		Config:            w.config,
		PhysicalWidthMM:   w.physWidthMM.Load(),
		ViewingDistanceMM: w.viewDistMM.Load(),
	}

	for _, s := range stimuli {
		if err := s.Prepare(rc); err != nil {
			w.mu.Unlock()
			return fmt.Errorf("prepare stimulus: %w", err)
		}
	}

	enc, err := w.backend.NewEncoder("frame")
	if err != nil {
		w.mu.Unlock()
		return fmt.Errorf("create encoder: %w", err)
	}
	if err := w.backend.Clear(enc, view, f.BGColor()); err != nil {
		w.mu.Unlock()
		return fmt.Errorf("clear pass: %w", err)
	}
	for _, s := range stimuli {
		if err := s.Render(enc, view); err != nil {
			w.mu.Unlock()
			return fmt.Errorf("render stimulus: %w", err)
		}
	}
	err = w.backend.Submit(enc)
	w.mu.Unlock()
	if err != nil {
		return fmt.Errorf("submit frame: %w", err)
	}

	return w.backend.Present()
}

// postAck latches the acknowledgement, replacing any ack the producer
// never consumed.
func (w *Window) postAck() {
	select {
	case <-w.acks:
	default:
	}
	w.acks <- struct{}{}
}
