// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package psykit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/psykit/input"
	"github.com/gogpu/psykit/internal/platform"
	"github.com/gogpu/psykit/visual"
)

var (
	// ErrNoDeviceProvider is returned by Run when the windowing host
	// exposes no GPU device provider.
	ErrNoDeviceProvider = errors.New("psykit: windowing host exposed no GPU device provider")

	// ErrNoHalDevice is returned by Run when the device provider does
	// not expose raw hal device and queue handles.
	ErrNoHalDevice = errors.New("psykit: device provider does not expose hal handles")
)

// halProvider is implemented by device providers that expose the raw hal
// device and queue.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// appStopper and appQuitter are implemented by hosts that support
// programmatic shutdown.
type appStopper interface{ Stop() }
type appQuitter interface{ Quit() }

// keyReleaseSource is implemented by event sources that report key
// releases in addition to presses.
type keyReleaseSource interface {
	OnKeyRelease(func(gpucontext.Key, gpucontext.Modifiers))
}

// monitorSource is implemented by windowing hosts that enumerate the
// attached displays and their video modes.
type monitorSource interface {
	Monitors() []Monitor
}

// fullscreenHost is implemented by windowing hosts that support
// exclusive fullscreen on a named monitor.
type fullscreenHost interface {
	SetFullscreen(monitor string, width, height, refreshMilliHz uint32)
}

// applyFullscreen resolves the configured monitor and its best video mode
// and applies them when the host supports exclusive fullscreen. Hosts
// lacking either capability fall back to windowed mode with a warning.
func applyFullscreen(app any, cfg *Config) {
	src, ok := app.(monitorSource)
	if !ok {
		Logger().Warn("fullscreen not supported by the windowing host, running windowed",
			"monitor", cfg.monitor)
		return
	}
	mon, mode, ok := pickFullscreen(src.Monitors(), cfg.monitor)
	if !ok {
		Logger().Warn("no usable video mode, running windowed", "monitor", cfg.monitor)
		return
	}
	Logger().Info("fullscreen mode selected",
		"monitor", mon.Name, "width", mode.Width, "height", mode.Height,
		"refresh_mhz", mode.RefreshRateMilliHz)
	fh, ok := app.(fullscreenHost)
	if !ok {
		Logger().Warn("host cannot apply exclusive fullscreen, running windowed",
			"monitor", mon.Name)
		return
	}
	fh.SetFullscreen(mon.Name, mode.Width, mode.Height, mode.RefreshRateMilliHz)
}

// appBackend bridges the windowing host's per-refresh draw callback to
// the render task's Acquire/Present cycle. The draw callback hands the
// swapchain view over on views and then blocks until the render task
// signals released, so the host's surface flip happens right after the
// frame's GPU work is submitted.
type appBackend struct {
	device hal.Device
	queue  hal.Queue

	views    chan hal.TextureView
	released chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newAppBackend() *appBackend {
	return &appBackend{
		views:    make(chan hal.TextureView),
		released: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (b *appBackend) bind(provider gpucontext.DeviceProvider) error {
	hp, ok := provider.(halProvider)
	if !ok {
		return ErrNoHalDevice
	}
	dev, ok := hp.HalDevice().(hal.Device)
	if !ok {
		return ErrNoHalDevice
	}
	q, ok := hp.HalQueue().(hal.Queue)
	if !ok {
		return ErrNoHalDevice
	}
	b.device = dev
	b.queue = q
	return nil
}

func (b *appBackend) stop() {
	b.stopOnce.Do(func() { close(b.done) })
}

func (b *appBackend) Device() hal.Device { return b.device }
func (b *appBackend) Queue() hal.Queue   { return b.queue }

func (b *appBackend) Acquire() (hal.TextureView, error) {
	select {
	case v := <-b.views:
		return v, nil
	case <-b.done:
		return nil, visual.ErrWindowClosed
	}
}

func (b *appBackend) NewEncoder(label string) (hal.CommandEncoder, error) {
	enc, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: label,
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := enc.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return enc, nil
}

func (b *appBackend) Clear(enc hal.CommandEncoder, view hal.TextureView, color gputypes.Color) error {
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "background_clear",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: color,
		}},
	})
	rp.End()
	return nil
}

func (b *appBackend) Submit(enc hal.CommandEncoder) error {
	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	// No CPU-side completion wait: queue submissions are ordered, nothing
	// is read back, and Present already paces the frame to the host's
	// surface flip.
	if _, err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}

func (b *appBackend) Present() error {
	select {
	case b.released <- struct{}{}:
		return nil
	case <-b.done:
		return visual.ErrWindowClosed
	}
}

// Run opens the experiment window and calls experiment on its own task
// once the GPU surface exists. It drives the host event loop until the
// experiment returns, the participant presses escape, or the window is
// closed, then tears everything down and reports the first error.
//
// Escape is the global terminate signal: the host intercepts it and it
// never reaches the keyboard broadcast.
func Run(cfg *Config, experiment func(win *visual.Window) error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(cfg.title).
		WithSize(cfg.width, cfg.height).
		WithContinuousRender(true))

	if cfg.fullscreen {
		applyFullscreen(any(app), cfg)
	}

	backend := newAppBackend()
	rt := platform.Native()

	var (
		mu       sync.Mutex
		win      *visual.Window
		startErr error
		expErr   error
	)

	currentWindow := func() *visual.Window {
		mu.Lock()
		defer mu.Unlock()
		return win
	}

	stopApp := func() {
		backend.stop()
		switch a := any(app).(type) {
		case appStopper:
			a.Stop()
		case appQuitter:
			a.Quit()
		}
	}

	var initOnce sync.Once
	app.OnDraw(func(dc *gogpu.Context) {
		initOnce.Do(func() {
			provider := app.GPUContextProvider()
			if provider == nil {
				mu.Lock()
				startErr = ErrNoDeviceProvider
				mu.Unlock()
				stopApp()
				return
			}
			if err := backend.bind(provider); err != nil {
				mu.Lock()
				startErr = err
				mu.Unlock()
				stopApp()
				return
			}

			sw, sh := dc.SurfaceSize()
			w := visual.NewWindow(backend, visual.SurfaceConfig{
				Width:  uint32(sw),
				Height: uint32(sh),
				Format: provider.SurfaceFormat(),
			})
			w.SetPhysicalWidthMM(cfg.physicalWidthMM)
			w.SetViewingDistanceMM(cfg.viewingDistanceMM)

			mu.Lock()
			win = w
			mu.Unlock()
			Logger().Info("experiment window ready",
				"width", sw, "height", sh, "backend", dc.Backend())

			rt.Spawn(func() {
				if err := w.RunRenderTask(); err != nil {
					Logger().Error("render task failed", "error", err)
				}
				stopApp()
			})
			rt.Spawn(func() {
				err := experiment(w)
				if err != nil && !errors.Is(err, visual.ErrWindowClosed) {
					mu.Lock()
					expErr = err
					mu.Unlock()
					Logger().Error("experiment failed", "error", err)
				}
				w.Close()
				stopApp()
			})
		})

		w := currentWindow()
		if w == nil || w.Closed() {
			return
		}

		sw, sh := dc.SurfaceSize()
		w.Reconfigure(uint32(sw), uint32(sh))

		var anyView any = dc.SurfaceView()
		view, ok := anyView.(hal.TextureView)
		if !ok {
			return
		}
		select {
		case backend.views <- view:
			// A frame is being recorded against this view. Hold the
			// callback open until the render task presents, so the
			// host's surface flip follows the frame's GPU submission
			// immediately.
			select {
			case <-backend.released:
			case <-backend.done:
			}
		default:
			// No frame pending this refresh.
		}
	})

	events := app.EventSource()
	events.OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if key == gpucontext.KeyEscape {
			Logger().Info("escape pressed, terminating")
			if w := currentWindow(); w != nil {
				w.Close()
			}
			stopApp()
			return
		}
		if w := currentWindow(); w != nil {
			w.Keyboard().Publish(input.KeyEvent{
				Key:       key,
				Pressed:   true,
				Timestamp: time.Now(),
			})
		}
	})
	if krs, ok := any(events).(keyReleaseSource); ok {
		krs.OnKeyRelease(func(key gpucontext.Key, _ gpucontext.Modifiers) {
			if key == gpucontext.KeyEscape {
				return
			}
			if w := currentWindow(); w != nil {
				w.Keyboard().Publish(input.KeyEvent{
					Key:       key,
					Pressed:   false,
					Timestamp: time.Now(),
				})
			}
		})
	}

	app.OnClose(func() {
		if w := currentWindow(); w != nil {
			w.Close()
		}
		backend.stop()
	})

	runErr := app.Run()

	// Unblock anything still parked on the backend, then wait for the
	// render and experiment tasks to drain.
	backend.stop()
	if w := currentWindow(); w != nil {
		w.Close()
	}
	rt.Wait()

	mu.Lock()
	defer mu.Unlock()
	switch {
	case startErr != nil:
		return startErr
	case expErr != nil:
		return expErr
	default:
		return runErr
	}
}
