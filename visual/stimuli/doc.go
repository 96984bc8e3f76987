// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package stimuli provides the built-in stimulus types: solid shapes,
// sine gratings, raster images, text, and caller-shaded quads. Every
// type implements visual.Renderable and can be added to a visual.Frame.
//
// Sizes and positions are given as stimuli.Size values in pixels,
// millimeters, degrees of visual angle, or fractions of the surface, and
// are resolved against the window's physical geometry each frame.
package stimuli
