// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package visual

import "errors"

var (
	// ErrWindowClosed is returned by Submit and WaitAck after the window
	// has shut down. Callers treat it as the end of the experiment, not a
	// recoverable fault.
	ErrWindowClosed = errors.New("visual: window closed")
)
