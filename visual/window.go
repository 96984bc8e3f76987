// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/psykit/input"
)

// Default physical display geometry, used to convert degrees of visual
// angle and millimeters into pixels until the experiment overrides them.
const (
	DefaultPhysicalWidthMM   = 300.0
	DefaultViewingDistanceMM = 570.0
)

// Window is the shared handle an experiment uses to present frames and
// observe keyboard input. It is created by the host once the GPU surface
// exists and stays valid until Close.
//
// Submit and WaitAck implement single-frame-in-flight backpressure over a
// capacity-1 slot: a second Submit suspends until the render task has
// acknowledged the previous frame. See the package documentation for the
// pipeline and locking rules.
type Window struct {
	backend  Backend
	keyboard *input.Broadcast

	// tokens is the capacity-1 in-flight slot. Submit fills it; the
	// render task drains it only after the frame's ack has been posted.
	tokens chan struct{}
	frames chan *Frame
	// acks is a latch: the render task posts (replacing any unconsumed
	// ack) so a producer that never calls WaitAck cannot stall the
	// pipeline.
	acks chan struct{}

	done      chan struct{}
	closeOnce sync.Once

	// mu is the surfaces lock. It guards config against concurrent
	// mutation by the host (resize) and the render task (frame
	// preparation). Never held across Acquire, Present, or any channel
	// operation.
	mu     sync.Mutex
	config SurfaceConfig

	physWidthMM atomicFloat64
	viewDistMM  atomicFloat64
}

// NewWindow creates a window over backend with the given initial surface
// configuration.
func NewWindow(backend Backend, cfg SurfaceConfig) *Window {
	w := &Window{
		backend:  backend,
		keyboard: input.NewBroadcast(input.DefaultBufferSize),
		tokens:   make(chan struct{}, 1),
		frames:   make(chan *Frame, 1),
		acks:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		config:   cfg,
	}
	w.physWidthMM.Store(DefaultPhysicalWidthMM)
	w.viewDistMM.Store(DefaultViewingDistanceMM)
	return w
}

// Submit hands a frame to the render task. If a previous frame has not
// been acknowledged yet, Submit suspends until it is. Returns
// ErrWindowClosed once the window has shut down.
func (w *Window) Submit(f *Frame) error {
	select {
	case <-w.done:
		return ErrWindowClosed
	default:
	}
	select {
	case w.tokens <- struct{}{}:
		// A Close may race the token acquisition; back the token out so
		// a producer unblocked by shutdown never hands off a frame.
		select {
		case <-w.done:
			select {
			case <-w.tokens:
			default:
			}
			return ErrWindowClosed
		default:
		}
	case <-w.done:
		return ErrWindowClosed
	}
	// The token guarantees the slot is free, but the render task may not
	// have drained yet, so the send still selects against shutdown.
	select {
	case w.frames <- f:
		return nil
	case <-w.done:
		return ErrWindowClosed
	}
}

// WaitAck suspends until the render task signals that the previously
// submitted frame's GPU work has been handed to the presentation engine.
// Returns ErrWindowClosed once the window has shut down.
func (w *Window) WaitAck() error {
	select {
	case <-w.acks:
		// Shutdown may have raced the ack; the closed state wins so a
		// caller never observes a successful wait on a closed window.
		select {
		case <-w.done:
			return ErrWindowClosed
		default:
		}
		return nil
	case <-w.done:
		return ErrWindowClosed
	}
}

// Present submits a frame and waits for its acknowledgement. This is the
// common per-refresh call in trial loops.
func (w *Window) Present(f *Frame) error {
	if err := w.Submit(f); err != nil {
		return err
	}
	return w.WaitAck()
}

// Keyboard returns the window's key event broadcast. Call Listen on it to
// observe key events; the host publishes into it from the event loop.
func (w *Window) Keyboard() *input.Broadcast {
	return w.keyboard
}

// Close shuts the window down. Pending and future Submit/WaitAck calls
// return ErrWindowClosed, the render task exits, and keyboard listeners
// are deactivated. Close is idempotent.
func (w *Window) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		w.keyboard.Close()
		slogger().Debug("window closed")
	})
}

// Closed reports whether Close has been called.
func (w *Window) Closed() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// Config returns the current surface configuration.
func (w *Window) Config() SurfaceConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.config
}

// Reconfigure records a new surface size. The host calls this from its
// resize handler; the surfaces lock serializes it against frame
// preparation, so a resize observed during an in-flight frame applies to
// the next frame, never the one being prepared.
func (w *Window) Reconfigure(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	w.mu.Lock()
	w.config.Width = width
	w.config.Height = height
	w.mu.Unlock()
	slogger().Debug("surface reconfigured", "width", width, "height", height)
}

// PhysicalWidthMM returns the physical width of the display area in
// millimeters.
func (w *Window) PhysicalWidthMM() float64 { return w.physWidthMM.Load() }

// SetPhysicalWidthMM sets the physical width of the display area.
func (w *Window) SetPhysicalWidthMM(mm float64) { w.physWidthMM.Store(mm) }

// ViewingDistanceMM returns the observer's distance from the display in
// millimeters.
func (w *Window) ViewingDistanceMM() float64 { return w.viewDistMM.Load() }

// SetViewingDistanceMM sets the observer's distance from the display.
func (w *Window) SetViewingDistanceMM(mm float64) { w.viewDistMM.Store(mm) }

// atomicFloat64 is a float64 with atomic load/store, stored as raw bits.
type atomicFloat64 struct {
	bits atomic.Uint64
}

func (a *atomicFloat64) Load() float64   { return math.Float64frombits(a.bits.Load()) }
func (a *atomicFloat64) Store(v float64) { a.bits.Store(math.Float64bits(v)) }
