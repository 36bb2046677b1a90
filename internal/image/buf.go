// Package image provides the premultiplied RGBA raster primitives of the
// compositor: allocation, sampling, mipmaps, repeating patterns, affine draws,
// buffer pooling and codecs.
//
// All buffers are *image.RGBA anchored at the origin. Pixels are stored
// premultiplied, as the standard library defines for image.RGBA.
package image

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/gogpu/effectpic/internal/errkind"
)

// MaxDimension bounds either side of a buffer the package will allocate.
const MaxDimension = 1 << 15

// New allocates a transparent width x height buffer.
// It fails with ErrResourceUnavailable when the dimensions are not positive
// or exceed MaxDimension.
func New(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("image: cannot allocate %dx%d buffer: %w", width, height, errkind.ErrResourceUnavailable)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

// Empty returns a zero-size buffer.
func Empty() *image.RGBA {
	return image.NewRGBA(image.Rectangle{})
}

// FromImage returns img as an origin-anchored *image.RGBA.
// An *image.RGBA already anchored at the origin is returned as is; anything
// else is converted into a fresh buffer.
func FromImage(img image.Image) *image.RGBA {
	if img == nil {
		return Empty()
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}

// Clone returns a deep copy of img.
func Clone(img *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, img.Rect.Dx(), img.Rect.Dy()))
	for y := 0; y < dst.Rect.Dy(); y++ {
		src := img.Pix[img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y):]
		copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src)
	}
	return dst
}

// Clear sets every pixel to transparent.
func Clear(img *image.RGBA) {
	clear(img.Pix)
}

// Fill paints every pixel of img with c (premultiplied).
func Fill(img *image.RGBA, c color.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return
	}
	row := img.Pix[:w*4]
	for x := 0; x < w; x++ {
		row[x*4+0] = c.R
		row[x*4+1] = c.G
		row[x*4+2] = c.B
		row[x*4+3] = c.A
	}
	for y := 1; y < h; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+w*4], row)
	}
}

// Premultiplied converts any color to premultiplied 8-bit RGBA.
func Premultiplied(c color.Color) color.RGBA {
	return color.RGBAModel.Convert(c).(color.RGBA)
}

// IsEmpty reports whether img has no pixels.
func IsEmpty(img *image.RGBA) bool {
	return img == nil || img.Rect.Empty()
}
