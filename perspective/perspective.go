// Package perspective maps an image through the projective transform that
// takes four source points onto four destination points.
package perspective

import (
	"context"
	"fmt"
	"image"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/gogpu/effectpic/internal/errkind"
	imgutil "github.com/gogpu/effectpic/internal/image"
)

// ErrInvalidArgument reports a point list of the wrong length or a
// degenerate quad.
var ErrInvalidArgument = errkind.ErrInvalidArgument

// maxCondition bounds the condition number of a solvable system. Above it
// the quad is treated as degenerate.
const maxCondition = 1e12

// Quad holds four points as x0, y0, ..., x3, y3.
type Quad [8]float64

// NewQuad copies exactly eight values into a Quad.
func NewQuad(pts []float64) (Quad, error) {
	var q Quad
	if len(pts) != len(q) {
		return q, fmt.Errorf("perspective: quad needs 8 values, got %d: %w", len(pts), ErrInvalidArgument)
	}
	copy(q[:], pts)
	return q, nil
}

// Corners returns the corners of a w x h image: top-left, top-right,
// bottom-right, bottom-left.
func Corners(w, h float64) Quad {
	return Quad{0, 0, w, 0, w, h, 0, h}
}

// Homography is a 3x3 projective matrix stored row by row.
type Homography [9]float64

// Solve returns the homography taking each point of src to the matching
// point of dst. Collinear or coincident points have no solution and fail
// with ErrInvalidArgument.
func Solve(src, dst Quad) (Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := range 4 {
		x, y := src[2*i], src[2*i+1]
		u, v := dst[2*i], dst[2*i+1]
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -x * u, -y * u})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -x * v, -y * v})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var lu mat.LU
	lu.Factorize(a)
	if c := lu.Cond(); math.IsInf(c, 1) || math.IsNaN(c) || c > maxCondition {
		return Homography{}, fmt.Errorf("perspective: degenerate quad: %w", ErrInvalidArgument)
	}
	var h mat.VecDense
	if err := lu.SolveVecTo(&h, false, b); err != nil {
		return Homography{}, fmt.Errorf("perspective: %w: %w", ErrInvalidArgument, err)
	}

	var m Homography
	for i := range 8 {
		m[i] = h.AtVec(i)
	}
	m[8] = 1
	return m, nil
}

// Apply maps (x, y) through h. Points on the line at infinity map to NaN.
func (h Homography) Apply(x, y float64) (float64, float64) {
	w := h[6]*x + h[7]*y + h[8]
	if w == 0 {
		return math.NaN(), math.NaN()
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w
}

// Inverse returns the inverse homography.
func (h Homography) Inverse() (Homography, error) {
	var inv mat.Dense
	if err := inv.Inverse(mat.NewDense(3, 3, h[:])); err != nil {
		return Homography{}, fmt.Errorf("perspective: singular homography: %w", ErrInvalidArgument)
	}
	var out Homography
	for r := range 3 {
		for c := range 3 {
			out[r*3+c] = inv.At(r, c)
		}
	}
	return out, nil
}

// Transform resamples src so that the points srcPts land on dstPts.
//
// srcPts nil means the image corners. The output has the size of src. Each
// output pixel centre is mapped back into src and sampled bilinearly; centres
// falling outside src fade out over one pixel and are transparent beyond.
func Transform(ctx context.Context, src image.Image, dstPts, srcPts []float64) (*image.RGBA, error) {
	tex := imgutil.FromImage(src)
	w, h := tex.Rect.Dx(), tex.Rect.Dy()

	if srcPts == nil {
		c := Corners(float64(w), float64(h))
		srcPts = c[:]
	}
	sq, err := NewQuad(srcPts)
	if err != nil {
		return nil, err
	}
	dq, err := NewQuad(dstPts)
	if err != nil {
		return nil, err
	}
	fwd, err := Solve(sq, dq)
	if err != nil {
		return nil, err
	}
	inv, err := fwd.Inverse()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if imgutil.IsEmpty(tex) {
		return imgutil.Empty(), nil
	}
	dst, err := imgutil.New(w, h)
	if err != nil {
		return nil, fmt.Errorf("perspective: output buffer: %w", err)
	}
	fw, fh := float64(w), float64(h)
	for y := range h {
		if y%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := dst.Pix[y*dst.Stride:]
		for x := range w {
			sx, sy := inv.Apply(float64(x)+0.5, float64(y)+0.5)
			if math.IsNaN(sx) || math.IsNaN(sy) {
				continue
			}
			cx := math.Max(0, math.Min(fw, sx))
			cy := math.Max(0, math.Min(fh, sy))
			fade := 1 - math.Hypot(sx-cx, sy-cy)
			if fade <= 0 {
				continue
			}
			t := imgutil.Bilinear(tex, cx, cy)
			if fade < 1 {
				t = t.Scale(fade)
			}
			p := row[x*4 : x*4+4 : x*4+4]
			p[0], p[1], p[2], p[3] = t.Bytes()
		}
	}
	return dst, nil
}
