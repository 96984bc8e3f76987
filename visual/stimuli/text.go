// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stimuli

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/psykit/visual"
)

// Text presents a string, rasterized on the CPU with gg and uploaded as a
// texture. Rasterization happens during frame preparation and only when
// the text, color, or resolved size changed, so presenting the same text
// every frame costs one texture sample per pixel and nothing else.
type Text struct {
	base

	text string
	face text.Face

	// autoRect tracks whether the stimulus sizes itself from the text
	// metrics (the default) or was placed explicitly.
	autoRect bool
	dirty    bool
	lastW    uint32
	lastH    uint32
}

var _ visual.Renderable = (*Text)(nil)

// textPaddingPx keeps glyph extrema (accents, descenders) inside the
// texture when the stimulus sizes itself from the font metrics.
const textPaddingPx = 8

// NewText creates a white text stimulus centered on the surface, sized
// from the face's metrics. face must not be nil.
func NewText(s string, face text.Face, opts ...Option) *Text {
	t := &Text{
		base: base{
			label:    "text_stimulus",
			wgsl:     texturedShaderSource,
			textured: true,
			color:    gputypes.Color{R: 1, G: 1, B: 1, A: 1},
		},
		text:  s,
		face:  face,
		dirty: true,
	}
	applyOptions(&t.base, opts)
	if t.rect == (Rect{}) {
		t.autoRect = true
		t.fitRect()
	}
	t.base.onPrepare = t.rasterize
	return t
}

// SetText replaces the presented string. The texture re-rasterizes on
// the next prepared frame.
func (t *Text) SetText(s string) {
	t.mu.Lock()
	if s != t.text {
		t.text = s
		t.dirty = true
		if t.autoRect {
			t.fitRect()
		}
	}
	t.mu.Unlock()
}

// Text returns the presented string.
func (t *Text) Text() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.text
}

// SetColor sets the text color and re-rasterizes on the next prepared
// frame.
func (t *Text) SetColor(c gputypes.Color) {
	t.mu.Lock()
	t.color = c
	t.dirty = true
	t.mu.Unlock()
}

// fitRect sizes the stimulus from the face metrics. Caller holds mu.
// A nil face leaves the fallback placement; Prepare reports the error.
func (t *Text) fitRect() {
	if t.face == nil {
		t.rect = CenteredRect(ScreenWidth(0.5), ScreenHeight(0.2))
		return
	}
	m := t.face.Metrics()
	w := t.face.Advance(t.text) + 2*textPaddingPx
	h := m.Ascent + m.Descent + 2*textPaddingPx
	t.rect = CenteredRect(Pixels(math.Ceil(w)), Pixels(math.Ceil(h)))
}

// rasterize repaints the texture when needed. Runs under the base mutex
// during Prepare.
func (t *Text) rasterize(rc *visual.RenderContext) error {
	if t.face == nil {
		return fmt.Errorf("stimuli: text stimulus has no font face")
	}
	_, _, wf, hf := t.rect.toPixels(
		rc.PhysicalWidthMM, rc.ViewingDistanceMM,
		rc.Config.Width, rc.Config.Height,
	)
	w := uint32(math.Ceil(float64(wf)))
	h := uint32(math.Ceil(float64(hf)))
	if w == 0 || h == 0 {
		return fmt.Errorf("stimuli: text stimulus resolved to empty rect")
	}
	if !t.dirty && w == t.lastW && h == t.lastH {
		return nil
	}

	dc := gg.NewContext(int(w), int(h))
	defer dc.Close()
	dc.SetFont(t.face)
	dc.SetRGBA(t.color.R, t.color.G, t.color.B, 1)
	dc.DrawStringAnchored(t.text, float64(w)/2, float64(h)/2, 0.5, 0.5)

	pixels, pw, ph := rgbaPixels(dc.Image())
	t.setTexture(pixels, pw, ph)
	t.lastW = w
	t.lastH = h
	t.dirty = false
	return nil
}
