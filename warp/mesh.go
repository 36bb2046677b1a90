package warp

import (
	"fmt"
	"image"

	"github.com/gogpu/effectpic/internal/mesh"
	"github.com/gogpu/effectpic/internal/parallel"
)

// Vertex is one mesh vertex. X and Y are in patch space; Z is always 0.
// U and V are the texture coordinates of the undeformed position, with
// V = 0 on the top row of the image.
type Vertex struct {
	X, Y, Z float64
	U, V    float64
}

// Mesh is a planar grid of (Segments+1)^2 vertices over a Width x Height
// plane centred on the origin, y pointing up.
type Mesh struct {
	Segments      int
	Width, Height float64

	// Positions holds x, y, z per vertex; UVs holds u, v per vertex.
	Positions []float32
	UVs       []float32
}

// NewMesh tessellates a w x h plane into segments x segments cells.
func NewMesh(w, h float64, segments int) (*Mesh, error) {
	if segments < 1 {
		return nil, fmt.Errorf("warp: segments %d: %w", segments, ErrInvalidArgument)
	}
	if !(w > 0 && h > 0) {
		return nil, fmt.Errorf("warp: plane size %vx%v: %w", w, h, ErrInvalidArgument)
	}
	pos, uvs := mesh.Plane(w, h, segments)
	return &Mesh{
		Segments:  segments,
		Width:     w,
		Height:    h,
		Positions: pos,
		UVs:       uvs,
	}, nil
}

// Len returns the number of vertices.
func (m *Mesh) Len() int {
	return len(m.Positions) / 3
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i int) Vertex {
	return Vertex{
		X: float64(m.Positions[i*3]),
		Y: float64(m.Positions[i*3+1]),
		Z: float64(m.Positions[i*3+2]),
		U: float64(m.UVs[i*2]),
		V: float64(m.UVs[i*2+1]),
	}
}

// Deform moves every vertex of m onto the patch described by grid.
// Only X and Y change.
func Deform(m *Mesh, grid Grid) error {
	k := grid.kernel()
	return mesh.Deform(parallel.Serial{}, m.Positions, &k, m.Width, m.Height)
}

// Rotate returns buf rotated clockwise by degrees about its centre.
// The size is unchanged; content leaving the buffer is clipped.
func Rotate(buf *image.RGBA, degrees float64) *image.RGBA {
	return mesh.Rotate(buf, degrees)
}

// Bounds returns the half-open bounding rectangle of the pixels of buf whose
// alpha is above zero, or the empty rectangle when there is none.
func Bounds(buf *image.RGBA) image.Rectangle {
	return mesh.Bounds(parallel.Serial{}, buf)
}

// AutoCrop returns a copy of buf trimmed to Bounds. A fully transparent
// buffer yields a zero-size image.
func AutoCrop(buf *image.RGBA) *image.RGBA {
	return mesh.AutoCrop(parallel.Serial{}, buf)
}
