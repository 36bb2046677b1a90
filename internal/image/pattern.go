package image

import (
	"image"
	"math"
)

// Pattern is an image tiled over destination pixel space, as a canvas
// "repeat" pattern is. Its origin sits at the destination origin.
type Pattern struct {
	image   *image.RGBA
	opacity float64
}

// NewPattern creates a repeating pattern from img.
// Returns nil if img is empty.
func NewPattern(img *image.RGBA) *Pattern {
	if IsEmpty(img) {
		return nil
	}
	return &Pattern{image: img, opacity: 1}
}

// WithOpacity sets the pattern opacity, clamped to [0, 1].
func (p *Pattern) WithOpacity(opacity float64) *Pattern {
	if p == nil {
		return nil
	}
	p.opacity = math.Max(0, math.Min(1, opacity))
	return p
}

// Sample returns the premultiplied texel at destination coordinates (x, y).
func (p *Pattern) Sample(x, y float64) Texel {
	if p == nil {
		return Texel{}
	}
	w, h := float64(p.image.Rect.Dx()), float64(p.image.Rect.Dy())
	t := Bilinear(p.image, wrap(x, w), wrap(y, h))
	if p.opacity < 1 {
		t = t.Scale(p.opacity)
	}
	return t
}

func wrap(t, size float64) float64 {
	return t - size*math.Floor(t/size)
}
