package mesh

import (
	"image"
	"math"
	"sync"

	"github.com/gogpu/effectpic/internal/blend"
	imgutil "github.com/gogpu/effectpic/internal/image"
	"github.com/gogpu/effectpic/internal/parallel"
)

// subpixelBits is the fixed-point precision of rasterized vertices.
// Snapping to a fixed grid makes the edge functions exact, so triangles that
// share an edge agree on which pixels it owns.
const subpixelBits = 8

const (
	subpixel = 1 << subpixelBits
	halfPix  = subpixel / 2
)

// Projection maps patch space into the scratch buffer.
//
// The buffer is twice the plane size in each direction and is viewed through
// an orthographic projection of half-extent Width/ScaleX by Height/ScaleY, so a
// patch point (x, y) lands at pixel
//
//	(Width + (x - Width/2)*ScaleX, Height + (y - Height/2)*ScaleY).
type Projection struct {
	Width, Height  float64
	ScaleX, ScaleY float64
}

// Apply projects a patch-space point into buffer pixels.
func (p Projection) Apply(x, y float64) (float64, float64) {
	return p.Width + (x-p.Width/2)*p.ScaleX, p.Height + (y-p.Height/2)*p.ScaleY
}

type vertex struct {
	x, y int64   // fixed point
	u, v float64 // normalized texture coordinates
}

type triangle struct {
	v     [3]vertex
	area  int64
	tl    [3]bool // top-left flag of the edge opposite each vertex
	box   image.Rectangle
	level *image.RGBA
}

// Rasterize draws the deformed grid into dst with source-over compositing.
//
// positions and uvs are the outputs of Plane after Deform. Each grid cell is
// split into two triangles, sampled bilinearly from the mipmap level matching
// the triangle's minification. Bands of rows are rasterized through r; every
// band walks the triangles in the same order, so the result does not depend
// on the runner.
func Rasterize(r parallel.Runner, dst *image.RGBA, positions, uvs []float32, segments int, proj Projection, tex *imgutil.MipmapChain) error {
	if tex.NumLevels() == 0 || imgutil.IsEmpty(dst) {
		return nil
	}
	tris := triangulate(positions, uvs, segments, proj, tex, dst.Rect)

	rows := dst.Rect.Dy()
	return r.Bands(rows, min(64, max(1, rows/16)), func(lo, hi int) {
		band := image.Rect(dst.Rect.Min.X, lo, dst.Rect.Max.X, hi)
		for i := range tris {
			fill(dst, &tris[i], band)
		}
	})
}

func triangulate(positions, uvs []float32, segments int, proj Projection, tex *imgutil.MipmapChain, clip image.Rectangle) []triangle {
	n := segments + 1
	verts := make([]vertex, n*n)
	for i := range verts {
		x, y := proj.Apply(float64(positions[i*3]), float64(positions[i*3+1]))
		verts[i] = vertex{
			x: snap(x),
			y: snap(y),
			u: float64(uvs[i*2]),
			v: float64(uvs[i*2+1]),
		}
	}

	base := tex.Level(0)
	texArea := float64(base.Rect.Dx() * base.Rect.Dy())

	tris := make([]triangle, 0, segments*segments*2)
	for iy := range segments {
		for ix := range segments {
			a := iy*n + ix
			b := a + 1
			c := a + n
			d := c + 1
			for _, idx := range [2][3]int{{a, c, b}, {c, d, b}} {
				t, ok := newTriangle(verts[idx[0]], verts[idx[1]], verts[idx[2]], clip)
				if !ok {
					continue
				}
				t.level = tex.LevelForScale(minification(&t, texArea))
				tris = append(tris, t)
			}
		}
	}
	return tris
}

func snap(v float64) int64 {
	const limit = 1 << 40
	return int64(math.Round(math.Max(-limit, math.Min(limit, v*subpixel))))
}

func edge(a, b vertex, px, py int64) int64 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// isTopLeft reports whether edge a->b is a top or left edge for a triangle
// with positive area in y-down coordinates.
func isTopLeft(a, b vertex) bool {
	dx, dy := b.x-a.x, b.y-a.y
	return (dy == 0 && dx > 0) || dy < 0
}

func newTriangle(v0, v1, v2 vertex, clip image.Rectangle) (triangle, bool) {
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 {
		return triangle{}, false
	}
	if area < 0 {
		// Both windings are drawn, as for a double-sided material.
		v1, v2 = v2, v1
		area = -area
	}
	minX := min(v0.x, v1.x, v2.x)
	maxX := max(v0.x, v1.x, v2.x)
	minY := min(v0.y, v1.y, v2.y)
	maxY := max(v0.y, v1.y, v2.y)
	box := image.Rect(
		int(floorDiv(minX, subpixel)), int(floorDiv(minY, subpixel)),
		int(floorDiv(maxX, subpixel))+1, int(floorDiv(maxY, subpixel))+1,
	).Intersect(clip)
	if box.Empty() {
		return triangle{}, false
	}
	return triangle{
		v:    [3]vertex{v0, v1, v2},
		area: area,
		tl:   [3]bool{isTopLeft(v1, v2), isTopLeft(v2, v0), isTopLeft(v0, v1)},
		box:  box,
	}, true
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && (a < 0) {
		q--
	}
	return q
}

// minification returns the linear ratio of screen size to texel size.
func minification(t *triangle, texArea float64) float64 {
	v := t.v
	uvArea := math.Abs((v[1].u-v[0].u)*(v[2].v-v[0].v) - (v[2].u-v[0].u)*(v[1].v-v[0].v))
	texels := uvArea * texArea
	if texels == 0 {
		return 1
	}
	pixels := float64(t.area) / (subpixel * subpixel)
	return math.Sqrt(pixels / texels)
}

func fill(dst *image.RGBA, t *triangle, band image.Rectangle) {
	box := t.box.Intersect(band)
	if box.Empty() {
		return
	}
	over := blend.SourceOver.Func()
	lw := float64(t.level.Rect.Dx())
	lh := float64(t.level.Rect.Dy())
	inv := 1 / float64(t.area)
	v0, v1, v2 := t.v[0], t.v[1], t.v[2]

	for y := box.Min.Y; y < box.Max.Y; y++ {
		py := int64(y)*subpixel + halfPix
		row := dst.Pix[(y-dst.Rect.Min.Y)*dst.Stride:]
		for x := box.Min.X; x < box.Max.X; x++ {
			px := int64(x)*subpixel + halfPix

			w0 := edge(v1, v2, px, py)
			if w0 < 0 || (w0 == 0 && !t.tl[0]) {
				continue
			}
			w1 := edge(v2, v0, px, py)
			if w1 < 0 || (w1 == 0 && !t.tl[1]) {
				continue
			}
			w2 := edge(v0, v1, px, py)
			if w2 < 0 || (w2 == 0 && !t.tl[2]) {
				continue
			}

			b0, b1, b2 := float64(w0)*inv, float64(w1)*inv, float64(w2)*inv
			u := b0*v0.u + b1*v1.u + b2*v2.u
			v := b0*v0.v + b1*v1.v + b2*v2.v

			sr, sg, sb, sa := imgutil.Bilinear(t.level, u*lw, v*lh).Bytes()
			if sa == 0 {
				continue
			}
			o := (x - dst.Rect.Min.X) * 4
			p := row[o : o+4 : o+4]
			p[0], p[1], p[2], p[3] = over(sr, sg, sb, sa, p[0], p[1], p[2], p[3])
		}
	}
}

// boundsAccumulator merges per-band bounding boxes.
type boundsAccumulator struct {
	mu   sync.Mutex
	rect image.Rectangle
}

func (b *boundsAccumulator) add(r image.Rectangle) {
	if r.Empty() {
		return
	}
	b.mu.Lock()
	b.rect = b.rect.Union(r)
	b.mu.Unlock()
}
