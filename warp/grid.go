package warp

import (
	"fmt"

	"github.com/gogpu/effectpic/internal/mesh"
)

// Point is a control point in image coordinates, y pointing down.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Grid is a 4x4 control point grid. Point (i, j) is stored at i + 4*j, so
// row 0 runs along the top edge of the image and row 3 along the bottom.
type Grid [mesh.GridSize]Point

// NewGrid builds a grid from the first 16 points.
// Fewer than 16 points is an error; extra points are ignored.
func NewGrid(points []Point) (Grid, error) {
	var g Grid
	if len(points) < mesh.GridSize {
		return g, fmt.Errorf("warp: grid needs %d points, got %d: %w", mesh.GridSize, len(points), ErrInvalidArgument)
	}
	copy(g[:], points)
	return g, nil
}

// GridFromPairs builds a grid from [x, y] pairs, the shape used by layer
// descriptors.
func GridFromPairs(pairs [][]float64) (Grid, error) {
	var g Grid
	if len(pairs) < mesh.GridSize {
		return g, fmt.Errorf("warp: grid needs %d points, got %d: %w", mesh.GridSize, len(pairs), ErrInvalidArgument)
	}
	for i := range g {
		if len(pairs[i]) < 2 {
			return g, fmt.Errorf("warp: grid point %d has %d coordinates: %w", i, len(pairs[i]), ErrInvalidArgument)
		}
		g[i] = Point{X: pairs[i][0], Y: pairs[i][1]}
	}
	return g, nil
}

// DefaultGrid returns the evenly spaced grid over a w x h image.
// Warping with it reproduces the image unchanged.
func DefaultGrid(w, h float64) Grid {
	var g Grid
	for j := range 4 {
		for i := range 4 {
			g[i+4*j] = Point{X: w * float64(i) / 3, Y: h * float64(j) / 3}
		}
	}
	return g
}

// Eval returns the patch point at parameters (u, v), both in [0, 1].
func (g *Grid) Eval(u, v float64) Point {
	k := g.kernel()
	x, y := k.Eval(u, v)
	return Point{X: x, Y: y}
}

// Pairs returns the grid as [x, y] pairs.
func (g *Grid) Pairs() [][]float64 {
	out := make([][]float64, len(g))
	for i, p := range g {
		out[i] = []float64{p.X, p.Y}
	}
	return out
}

func (g *Grid) kernel() mesh.Grid {
	var k mesh.Grid
	for i, p := range g {
		k[i] = [2]float64{p.X, p.Y}
	}
	return k
}

// Bernstein returns the Bernstein basis polynomial C(n,k) t^k (1-t)^(n-k).
func Bernstein(n, k int, t float64) float64 {
	return mesh.Bernstein(n, k, t)
}
