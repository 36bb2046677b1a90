package image

import (
	"image"
	"math"

	"github.com/gogpu/effectpic/internal/blend"
)

// DrawParams specifies how DrawImage maps and blends the source.
type DrawParams struct {
	// Transform maps source pixel space into destination pixel space.
	Transform Affine

	// Opacity scales the source, 0.0 to 1.0.
	Opacity float64

	// Mode is the composite operation.
	Mode blend.Mode

	// Mipmaps, when set, must be the chain of the source and is used for
	// minifying transforms.
	Mipmaps *MipmapChain
}

// DrawImage draws src onto dst through params.Transform.
//
// For each destination pixel the centre is mapped back into the source;
// centres outside the source see a transparent source texel. Bounded modes
// only visit the source's destination footprint. Unbounded modes such as
// destination-in visit every destination pixel, so uncovered pixels are
// composited against transparent source.
func DrawImage(dst, src *image.RGBA, params DrawParams) {
	if IsEmpty(dst) || IsEmpty(src) {
		if params.Mode.Unbounded() && !IsEmpty(dst) {
			FillTexel(dst, Texel{}, params.Mode)
		}
		return
	}
	inv, ok := params.Transform.Invert()
	if !ok {
		return
	}
	opacity := math.Max(0, math.Min(1, params.Opacity))
	sw, sh := float64(src.Rect.Dx()), float64(src.Rect.Dy())

	sample := src
	kx, ky := 1.0, 1.0
	if params.Mipmaps != nil {
		scale := math.Sqrt(math.Abs(params.Transform.Det()))
		if lvl := params.Mipmaps.LevelForScale(scale); lvl != nil && lvl != src {
			sample = lvl
			kx = float64(lvl.Rect.Dx()) / sw
			ky = float64(lvl.Rect.Dy()) / sh
		}
	}

	area := dst.Rect
	if !params.Mode.Unbounded() {
		area = footprint(params.Transform, sw, sh).Intersect(dst.Rect)
	}

	fn := params.Mode.Func()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := area.Min.X; x < area.Max.X; x++ {
			sx, sy := inv.TransformPoint(float64(x)+0.5, float64(y)+0.5)

			var t Texel
			if sx >= 0 && sy >= 0 && sx < sw && sy < sh {
				t = Bilinear(sample, sx*kx, sy*ky)
				if opacity < 1 {
					t = t.Scale(opacity)
				}
			}
			sr, sg, sb, sa := t.Bytes()
			if sa == 0 && !params.Mode.Unbounded() {
				continue
			}
			p := row[x*4 : x*4+4 : x*4+4]
			p[0], p[1], p[2], p[3] = fn(sr, sg, sb, sa, p[0], p[1], p[2], p[3])
		}
	}
}

// FillPattern fills all of dst with pat using mode.
func FillPattern(dst *image.RGBA, pat *Pattern, mode blend.Mode) {
	if IsEmpty(dst) {
		return
	}
	fn := mode.Func()
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			sr, sg, sb, sa := pat.Sample(float64(x)+0.5, float64(y)+0.5).Bytes()
			p := row[x*4 : x*4+4 : x*4+4]
			p[0], p[1], p[2], p[3] = fn(sr, sg, sb, sa, p[0], p[1], p[2], p[3])
		}
	}
}

// FillTexel fills all of dst with a uniform premultiplied texel using mode.
func FillTexel(dst *image.RGBA, t Texel, mode blend.Mode) {
	fn := mode.Func()
	sr, sg, sb, sa := t.Bytes()
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+4 : x*4+4]
			p[0], p[1], p[2], p[3] = fn(sr, sg, sb, sa, p[0], p[1], p[2], p[3])
		}
	}
}

// footprint returns the integer bounding box of the source rectangle
// [0,w]x[0,h] after transformation.
func footprint(t Affine, w, h float64) image.Rectangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range [4][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}} {
		x, y := t.TransformPoint(c[0], c[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return image.Rect(
		int(math.Floor(clampCoord(minX))), int(math.Floor(clampCoord(minY))),
		int(math.Ceil(clampCoord(maxX))), int(math.Ceil(clampCoord(maxY))),
	)
}

func clampCoord(v float64) float64 {
	const limit = 1 << 30
	return math.Max(-limit, math.Min(limit, v))
}
