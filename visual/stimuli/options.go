// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stimuli

// Option adjusts a stimulus at construction. Everything an Option sets
// can also be changed later through the stimulus's setters.
type Option func(*base)

// WithRect places the stimulus at r instead of covering the surface.
func WithRect(r Rect) Option {
	return func(b *base) { b.rect = r }
}

// WithCenteredSize places the stimulus centered on the surface with the
// given size.
func WithCenteredSize(w, h Size) Option {
	return func(b *base) { b.rect = CenteredRect(w, h) }
}

// WithOpacity scales the stimulus alpha (1 = opaque).
func WithOpacity(a float64) Option {
	return func(b *base) { b.color.A = a }
}

func applyOptions(b *base, opts []Option) {
	for _, o := range opts {
		o(b)
	}
}
