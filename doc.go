// Package psykit presents visual stimuli for perception experiments
// where stimulus onset must be aligned to the display refresh and
// keyboard responses must be captured without misattribution across
// tightly timed trials.
//
// # Overview
//
// An experiment is a function that receives a window handle, builds
// frames of stimuli, and presents them. The pipeline enforces
// single-frame-in-flight backpressure: a submitted frame must be
// acknowledged by the render task before the next one is accepted, so
// the experiment always knows which refresh its stimuli reached.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gputypes"
//
//	    "github.com/gogpu/psykit"
//	    "github.com/gogpu/psykit/visual"
//	    "github.com/gogpu/psykit/visual/stimuli"
//	)
//
//	err := psykit.Run(psykit.DefaultConfig().WithTitle("Demo"),
//	    func(win *visual.Window) error {
//	        square := stimuli.NewShape(gputypes.Color{R: 1, A: 1},
//	            stimuli.WithCenteredSize(stimuli.Pixels(200), stimuli.Pixels(200)))
//	        for i := 0; i < 600; i++ {
//	            frame := visual.NewFrame()
//	            if i%2 == 0 {
//	                frame.Add(square)
//	            }
//	            if err := win.Present(frame); err != nil {
//	                return err
//	            }
//	        }
//	        return nil
//	    })
//
// # Architecture
//
// The library is organized into:
//   - Root: bootstrap (Run, Config), the trial-loop construct
//     (LoopFrames), monitor selection policy, logging setup
//   - visual: Frame, Window, the render task, the Renderable contract
//   - visual/stimuli: shapes, gratings, images, text
//   - input: keyboard broadcast with per-listener drop-oldest buffers
//   - events: CSV and BIDS trial-event logging
//
// # Concurrency
//
// Three long-lived tasks cooperate: the host event loop (owns the OS
// window and input pump), the render task (consumes frames, drives GPU
// submission), and the experiment task (user code). They communicate
// only over bounded channels; the surface configuration is the single
// lock-guarded shared resource, and no task holds that lock while
// waiting on a channel.
package psykit
