// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package psykit

import (
	"time"

	"github.com/gogpu/psykit/internal/platform"
)

var sleepRuntime = platform.Native()

// Sleep blocks for at least d and returns the time actually slept.
// Experiment code should record the returned value rather than d when a
// precise timing log matters, since the scheduler may overshoot.
func Sleep(d time.Duration) time.Duration {
	return sleepRuntime.Sleep(d)
}

// SleepSecs is Sleep with the duration given in seconds.
func SleepSecs(secs float64) time.Duration {
	return Sleep(time.Duration(secs * float64(time.Second)))
}
