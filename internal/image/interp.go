package image

import (
	"image"
	"math"
)

// Texel is a premultiplied RGBA sample with channels in [0, 255].
type Texel struct {
	R, G, B, A float64
}

// Scale multiplies every channel by k.
func (t Texel) Scale(k float64) Texel {
	return Texel{t.R * k, t.G * k, t.B * k, t.A * k}
}

// Bytes rounds the texel to 8-bit channels, keeping colour within alpha.
func (t Texel) Bytes() (r, g, b, a byte) {
	a = toByte(t.A)
	return min(toByte(t.R), a), min(toByte(t.G), a), min(toByte(t.B), a), a
}

func toByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}

// At returns the texel at integer coordinates, clamped to the edges.
func At(img *image.RGBA, x, y int) Texel {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	x = clamp(x, 0, w-1)
	y = clamp(y, 0, h-1)
	i := y*img.Stride + x*4
	p := img.Pix[i : i+4 : i+4]
	return Texel{float64(p[0]), float64(p[1]), float64(p[2]), float64(p[3])}
}

// Bilinear samples img at pixel-space coordinates (x, y), where pixel (i, j)
// covers [i, i+1) x [j, j+1) and its centre is at (i+0.5, j+0.5).
// Coordinates outside the image clamp to the edge texels.
// Interpolation runs on premultiplied values, so transparent texels do not
// bleed their colour into neighbours.
func Bilinear(img *image.RGBA, x, y float64) Texel {
	if img.Rect.Empty() {
		return Texel{}
	}
	fx := x - 0.5
	fy := y - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	c00 := At(img, x0, y0)
	c10 := At(img, x0+1, y0)
	c01 := At(img, x0, y0+1)
	c11 := At(img, x0+1, y0+1)

	return Texel{
		R: lerp2D(c00.R, c10.R, c01.R, c11.R, tx, ty),
		G: lerp2D(c00.G, c10.G, c01.G, c11.G, tx, ty),
		B: lerp2D(c00.B, c10.B, c01.B, c11.B, tx, ty),
		A: lerp2D(c00.A, c10.A, c01.A, c11.A, tx, ty),
	}
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	return lerp(lerp(v00, v10, tx), lerp(v01, v11, tx), ty)
}
