package mesh

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	imgutil "github.com/gogpu/effectpic/internal/image"
	"github.com/gogpu/effectpic/internal/parallel"
)

// Rotate returns buf rotated by degrees about its centre, clockwise on
// screen, with bilinear filtering. The dimensions are unchanged and content
// leaving the buffer is clipped. A whole number of turns returns buf itself.
func Rotate(buf *image.RGBA, degrees float64) *image.RGBA {
	if math.Mod(degrees, 360) == 0 || imgutil.IsEmpty(buf) {
		return buf
	}
	w := float64(buf.Rect.Dx())
	h := float64(buf.Rect.Dy())
	rad := degrees * math.Pi / 180

	dst := image.NewRGBA(buf.Rect)
	m := imgutil.RotateAt(rad, w/2, h/2)
	draw.BiLinear.Transform(dst, m.ToAff3(), buf, buf.Rect, draw.Src, nil)
	return dst
}

// Bounds returns the smallest rectangle holding every pixel of buf whose
// alpha is above zero. The rectangle is half-open, so a single opaque pixel
// yields a 1x1 rectangle. A fully transparent buffer yields the empty
// rectangle.
func Bounds(r parallel.Runner, buf *image.RGBA) image.Rectangle {
	if imgutil.IsEmpty(buf) {
		return image.Rectangle{}
	}
	var acc boundsAccumulator
	rows := buf.Rect.Dy()
	w := buf.Rect.Dx()
	_ = r.Bands(rows, max(1, rows/32), func(lo, hi int) {
		minX, minY, maxX, maxY := w, hi, -1, -1
		for y := lo; y < hi; y++ {
			row := buf.Pix[y*buf.Stride : y*buf.Stride+w*4]
			for x := 0; x < w; x++ {
				if row[x*4+3] == 0 {
					continue
				}
				minX = min(minX, x)
				maxX = max(maxX, x)
				minY = min(minY, y)
				maxY = y
			}
		}
		if maxX >= 0 {
			acc.add(image.Rect(minX, minY, maxX+1, maxY+1))
		}
	})
	return acc.rect.Add(buf.Rect.Min)
}

// Crop copies rect out of buf into a new origin-anchored buffer.
func Crop(buf *image.RGBA, rect image.Rectangle) *image.RGBA {
	rect = rect.Intersect(buf.Rect)
	if rect.Empty() {
		return imgutil.Empty()
	}
	return imgutil.Clone(buf.SubImage(rect).(*image.RGBA))
}

// AutoCrop trims the fully transparent border of buf.
func AutoCrop(r parallel.Runner, buf *image.RGBA) *image.RGBA {
	return Crop(buf, Bounds(r, buf))
}
