// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package psykit

import "github.com/gogpu/psykit/visual"

// Config describes how Run opens the experiment window. Build one with
// DefaultConfig and the With* chain:
//
//	cfg := psykit.DefaultConfig().
//	    WithTitle("Flicker").
//	    WithSize(1024, 768).
//	    WithPhysicalWidthMM(531).
//	    WithViewingDistanceMM(600)
type Config struct {
	title  string
	width  int
	height int

	// monitor is the preferred monitor index for fullscreen
	// presentation; negative means the current monitor.
	monitor    int
	fullscreen bool

	physicalWidthMM   float64
	viewingDistanceMM float64
}

// DefaultConfig returns a windowed 800x600 configuration with the
// standard physical display geometry.
func DefaultConfig() *Config {
	return &Config{
		title:             "psykit experiment",
		width:             800,
		height:            600,
		monitor:           -1,
		physicalWidthMM:   visual.DefaultPhysicalWidthMM,
		viewingDistanceMM: visual.DefaultViewingDistanceMM,
	}
}

// WithTitle sets the window title.
func (c *Config) WithTitle(title string) *Config {
	c.title = title
	return c
}

// WithSize sets the windowed-mode size in pixels.
func (c *Config) WithSize(width, height int) *Config {
	c.width = width
	c.height = height
	return c
}

// WithMonitor sets the preferred monitor index for fullscreen
// presentation. An index with no matching monitor falls back to the
// current one.
func (c *Config) WithMonitor(index int) *Config {
	c.monitor = index
	return c
}

// WithFullscreen requests exclusive fullscreen on the selected monitor's
// best video mode. Hosts without fullscreen support fall back to a
// window and log a warning.
func (c *Config) WithFullscreen(on bool) *Config {
	c.fullscreen = on
	return c
}

// WithPhysicalWidthMM sets the physical width of the display area in
// millimeters, used to convert stimulus sizes given in millimeters or
// degrees of visual angle into pixels.
func (c *Config) WithPhysicalWidthMM(mm float64) *Config {
	c.physicalWidthMM = mm
	return c
}

// WithViewingDistanceMM sets the observer's distance from the display in
// millimeters.
func (c *Config) WithViewingDistanceMM(mm float64) *Config {
	c.viewingDistanceMM = mm
	return c
}
