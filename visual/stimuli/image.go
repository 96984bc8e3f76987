// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stimuli

import (
	"image"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/psykit/visual"
)

// Image presents a raster image, uploaded once as an RGBA8 texture and
// sampled in the fragment shader. The default placement stretches the
// image over the whole surface; pass WithRect or WithCenteredSize to
// place it.
type Image struct {
	base
}

var _ visual.Renderable = (*Image)(nil)

// NewImage creates an image stimulus from img.
func NewImage(img image.Image, opts ...Option) *Image {
	i := &Image{base: base{
		label:    "image_stimulus",
		wgsl:     texturedShaderSource,
		textured: true,
		rect:     FullscreenRect(),
		color:    gputypes.Color{R: 1, G: 1, B: 1, A: 1},
	}}
	applyOptions(&i.base, opts)
	i.SetImage(img)
	return i
}

// SetImage replaces the presented image. The texture re-uploads on the
// next prepared frame.
func (i *Image) SetImage(img image.Image) {
	pixels, w, h := rgbaPixels(img)
	i.mu.Lock()
	i.setTexture(pixels, w, h)
	i.mu.Unlock()
}

// SetImageScaled replaces the presented image, resampling it to w-by-h
// texels first. Useful to cap texture memory for large photographs.
func (i *Image) SetImageScaled(img image.Image, w, h int) {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	i.mu.Lock()
	i.setTexture(dst.Pix, uint32(w), uint32(h))
	i.mu.Unlock()
}

// rgbaPixels converts img to tightly packed zero-origin RGBA bytes.
func rgbaPixels(img image.Image) (pixels []byte, w, h uint32) {
	bounds := img.Bounds()
	dst, ok := img.(*image.RGBA)
	if !ok || dst.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		dst = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		xdraw.Draw(dst, dst.Bounds(), img, bounds.Min, xdraw.Src)
	}
	return dst.Pix, uint32(bounds.Dx()), uint32(bounds.Dy())
}
