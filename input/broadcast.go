// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package input

import (
	"sync"
)

// DefaultBufferSize is the per-listener event buffer capacity used by
// NewBroadcast when no explicit capacity is given.
const DefaultBufferSize = 100

// Broadcast fans key events out to any number of independent listeners.
//
// Each listener owns a bounded ring buffer. When a new event would exceed
// a listener's capacity, the OLDEST buffered event for that listener is
// dropped, never the newest: a listener that stopped draining always holds
// the most recent events, which is what an input-responsiveness consumer
// wants. Listeners that are not active cost the publisher nothing.
//
// Broadcast is safe for concurrent use. Publish is called by the host
// event loop; Listen/Close and the listener receive methods may be called
// from any goroutine.
type Broadcast struct {
	mu        sync.Mutex
	listeners map[*Listener]struct{}
	capacity  int
	closed    bool
}

// NewBroadcast creates a broadcast whose listeners buffer up to capacity
// events each. A non-positive capacity falls back to DefaultBufferSize.
func NewBroadcast(capacity int) *Broadcast {
	if capacity <= 0 {
		capacity = DefaultBufferSize
	}
	return &Broadcast{
		listeners: make(map[*Listener]struct{}),
		capacity:  capacity,
	}
}

// Publish delivers ev to every active listener, evicting the oldest
// buffered event of any listener that is full. Publishing on a closed
// broadcast is a no-op.
func (b *Broadcast) Publish(ev KeyEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for l := range b.listeners {
		l.push(ev)
	}
}

// Listen activates a fresh listener. The listener observes only events
// published after this call. Callers must Close the listener when done so
// the broadcast stops buffering for it.
func (b *Broadcast) Listen() *Listener {
	l := &Listener{
		b:   b,
		buf: make([]KeyEvent, b.capacity),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		l.closed = true
		return l
	}
	b.listeners[l] = struct{}{}
	return l
}

// Close deactivates all listeners and marks the broadcast closed.
// Buffered events remain drainable on each listener.
func (b *Broadcast) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for l := range b.listeners {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
	}
	b.listeners = nil
}

// ListenerCount returns the number of active listeners.
func (b *Broadcast) ListenerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// Listener is one independently-draining view over the shared key event
// stream. It is safe for concurrent use, though a single consumer per
// listener is the intended pattern.
type Listener struct {
	b *Broadcast

	mu     sync.Mutex
	buf    []KeyEvent // ring storage, len(buf) == capacity
	head   int        // index of the oldest buffered event
	count  int        // number of buffered events
	closed bool
}

// push appends ev, evicting the oldest event when the ring is full.
func (l *Listener) push(ev KeyEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if l.count == len(l.buf) {
		// Full: overwrite the oldest slot and advance the head.
		l.buf[l.head] = ev
		l.head = (l.head + 1) % len(l.buf)
		return
	}
	l.buf[(l.head+l.count)%len(l.buf)] = ev
	l.count++
}

// TryNext returns the oldest buffered event, or ok=false when the buffer
// is empty. It never blocks.
func (l *Listener) TryNext() (ev KeyEvent, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return KeyEvent{}, false
	}
	ev = l.buf[l.head]
	l.head = (l.head + 1) % len(l.buf)
	l.count--
	return ev, true
}

// Len returns the number of buffered events.
func (l *Listener) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Close deactivates the listener. Further published events are not
// buffered for it; already-buffered events are discarded.
func (l *Listener) Close() {
	if l.b != nil {
		l.b.mu.Lock()
		delete(l.b.listeners, l)
		l.b.mu.Unlock()
	}
	l.mu.Lock()
	l.closed = true
	l.count = 0
	l.mu.Unlock()
}
