// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stimuli

import (
	"fmt"
	"math"
)

// Unit is the measurement unit of a Size.
type Unit int

const (
	// UnitPixels is a length in physical pixels.
	UnitPixels Unit = iota

	// UnitMillimeters is a length on the display surface in millimeters.
	UnitMillimeters

	// UnitDegrees is a visual angle in degrees, converted to a length on
	// the display using the observer's viewing distance.
	UnitDegrees

	// UnitScreenWidth is a fraction of the surface width (1.0 = full
	// width).
	UnitScreenWidth

	// UnitScreenHeight is a fraction of the surface height.
	UnitScreenHeight
)

// String returns the unit's conventional abbreviation.
func (u Unit) String() string {
	switch u {
	case UnitPixels:
		return "px"
	case UnitMillimeters:
		return "mm"
	case UnitDegrees:
		return "deg"
	case UnitScreenWidth:
		return "sw"
	case UnitScreenHeight:
		return "sh"
	default:
		return fmt.Sprintf("Unknown(%d)", int(u))
	}
}

// Size is a length in one of the supported units. Sizes are resolved to
// pixels at frame-preparation time, so a stimulus configured in degrees of
// visual angle adapts when the viewing distance or resolution changes.
type Size struct {
	Value float64
	Unit  Unit
}

// Pixels returns a Size of v physical pixels.
func Pixels(v float64) Size { return Size{Value: v, Unit: UnitPixels} }

// Millimeters returns a Size of v millimeters on the display surface.
func Millimeters(v float64) Size { return Size{Value: v, Unit: UnitMillimeters} }

// Degrees returns a Size of v degrees of visual angle.
func Degrees(v float64) Size { return Size{Value: v, Unit: UnitDegrees} }

// ScreenWidth returns a Size of v times the surface width.
func ScreenWidth(v float64) Size { return Size{Value: v, Unit: UnitScreenWidth} }

// ScreenHeight returns a Size of v times the surface height.
func ScreenHeight(v float64) Size { return Size{Value: v, Unit: UnitScreenHeight} }

// ToPixels resolves the size against the physical display geometry:
// physWidthMM is the physical width of the display area, viewDistMM the
// observer's distance from it, widthPx and heightPx the surface size.
func (s Size) ToPixels(physWidthMM, viewDistMM float64, widthPx, heightPx uint32) float64 {
	pxPerMM := float64(widthPx) / physWidthMM
	switch s.Unit {
	case UnitPixels:
		return s.Value
	case UnitMillimeters:
		return s.Value * pxPerMM
	case UnitDegrees:
		// A visual angle of s.Value degrees subtends
		// 2*d*tan(angle/2) millimeters at distance d.
		mm := 2 * viewDistMM * math.Tan(s.Value/2*math.Pi/180)
		return mm * pxPerMM
	case UnitScreenWidth:
		return s.Value * float64(widthPx)
	case UnitScreenHeight:
		return s.Value * float64(heightPx)
	default:
		return s.Value
	}
}

// Rect is a rectangle on the display, each edge independently sized.
// The origin is the top-left corner of the surface.
type Rect struct {
	X, Y, W, H Size

	// centered marks X,Y as the rectangle's center rather than its
	// top-left corner.
	centered bool
}

// FullscreenRect covers the whole surface regardless of resolution.
func FullscreenRect() Rect {
	return Rect{
		X: Pixels(0),
		Y: Pixels(0),
		W: ScreenWidth(1),
		H: ScreenHeight(1),
	}
}

// CenteredRect is a w-by-h rectangle centered on the surface.
func CenteredRect(w, h Size) Rect {
	return Rect{
		X:        ScreenWidth(0.5), // adjusted by half the resolved size, see toPixels
		Y:        ScreenHeight(0.5),
		W:        w,
		H:        h,
		centered: true,
	}
}

// toPixels resolves all four edges.
func (r Rect) toPixels(physWidthMM, viewDistMM float64, widthPx, heightPx uint32) (x, y, w, h float32) {
	w = float32(r.W.ToPixels(physWidthMM, viewDistMM, widthPx, heightPx))
	h = float32(r.H.ToPixels(physWidthMM, viewDistMM, widthPx, heightPx))
	x = float32(r.X.ToPixels(physWidthMM, viewDistMM, widthPx, heightPx))
	y = float32(r.Y.ToPixels(physWidthMM, viewDistMM, widthPx, heightPx))
	if r.centered {
		x -= w / 2
		y -= h / 2
	}
	return x, y, w, h
}
