// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package platform abstracts the scheduling primitives the bootstrap
// depends on behind a small strategy interface, so experiment and render
// tasks are spawned and torn down the same way under a real windowing
// host and in tests.
package platform

import (
	"sync"
	"time"
)

// Runtime spawns tasks and sleeps. Implementations must be safe for
// concurrent use.
type Runtime interface {
	// Sleep blocks for at least d and returns the time actually slept,
	// which on a loaded system can exceed d.
	Sleep(d time.Duration) time.Duration

	// Spawn runs fn on its own task.
	Spawn(fn func())

	// Wait blocks until every spawned task has returned.
	Wait()
}

type native struct {
	wg sync.WaitGroup
}

// Native returns the goroutine-backed runtime used outside of tests.
func Native() Runtime {
	return &native{}
}

func (n *native) Sleep(d time.Duration) time.Duration {
	start := time.Now()
	time.Sleep(d)
	return time.Since(start)
}

func (n *native) Spawn(fn func()) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		fn()
	}()
}

func (n *native) Wait() {
	n.wg.Wait()
}
