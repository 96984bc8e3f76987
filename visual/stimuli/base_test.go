// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stimuli

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/psykit/visual"
)

func testRenderContext() *visual.RenderContext {
	return &visual.RenderContext{
		Config: visual.SurfaceConfig{
			Width:  testWidthPx,
			Height: testHeightPx,
			Format: gputypes.TextureFormatBGRA8Unorm,
		},
		PhysicalWidthMM:   testPhysWidthMM,
		ViewingDistanceMM: testViewDistMM,
	}
}

func uniformF32(buf [uniformSize]byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestPackUniformsLayout(t *testing.T) {
	s := NewShape(gputypes.Color{R: 0.25, G: 0.5, B: 0.75, A: 1},
		WithRect(Rect{X: Pixels(10), Y: Pixels(20), W: Pixels(30), H: Pixels(40)}))
	s.params = [4]float32{1, 2, 3, 4}

	buf := s.packUniforms(testRenderContext())

	checks := []struct {
		name   string
		offset int
		want   float32
	}{
		{"viewport width", 0, testWidthPx},
		{"viewport height", 4, testHeightPx},
		{"rect x", 16, 10},
		{"rect y", 20, 20},
		{"rect w", 24, 30},
		{"rect h", 28, 40},
		{"color r", 32, 0.25},
		{"color g", 36, 0.5},
		{"color b", 40, 0.75},
		{"color a", 44, 1},
		{"params[0]", 48, 1},
		{"params[1]", 52, 2},
		{"params[2]", 56, 3},
		{"params[3]", 60, 4},
	}
	for _, c := range checks {
		if got := uniformF32(buf, c.offset); got != c.want {
			t.Errorf("%s at offset %d = %v, want %v", c.name, c.offset, got, c.want)
		}
	}
}

func TestPackUniformsStableForUnchangedInput(t *testing.T) {
	s := NewShape(gputypes.Color{R: 1, A: 1})
	rc := testRenderContext()
	first := s.packUniforms(rc)
	second := s.packUniforms(rc)
	if first != second {
		t.Error("packUniforms not deterministic for unchanged input")
	}

	s.SetColor(gputypes.Color{G: 1, A: 1})
	if third := s.packUniforms(rc); third == first {
		t.Error("packUniforms did not change after SetColor")
	}
}

func TestShapeDefaultsFullscreen(t *testing.T) {
	s := NewShape(gputypes.Color{R: 1, A: 1})
	buf := s.packUniforms(testRenderContext())
	if got := uniformF32(buf, 24); got != testWidthPx {
		t.Errorf("default width = %v px, want full surface %v", got, testWidthPx)
	}
	if got := uniformF32(buf, 28); got != testHeightPx {
		t.Errorf("default height = %v px, want full surface %v", got, testHeightPx)
	}
}

func TestWithOpacity(t *testing.T) {
	s := NewShape(gputypes.Color{R: 1, A: 1}, WithOpacity(0.5))
	if got := s.Color().A; got != 0.5 {
		t.Errorf("alpha = %v, want 0.5", got)
	}
}

func TestRenderBeforePrepareFails(t *testing.T) {
	s := NewShape(gputypes.Color{R: 1, A: 1})
	if err := s.Render(nil, nil); err == nil {
		t.Error("Render before Prepare should fail")
	}
}

func TestSetTextureMarksDirty(t *testing.T) {
	var b base
	b.setTexture(make([]byte, 16), 2, 2)
	if !b.texDirty {
		t.Error("setTexture should mark the staging data dirty")
	}
	if b.texW != 2 || b.texH != 2 {
		t.Errorf("texture size = %dx%d, want 2x2", b.texW, b.texH)
	}
}
