// Package mesh holds the numeric kernels of the surface warp: the bicubic
// Bezier deformation of a planar vertex grid, triangle rasterization into a
// scratch buffer, rotation and transparent-border cropping.
//
// The kernels work on plain slices so the same code runs inline and inside an
// offload worker.
package mesh

// GridSize is the number of control points of a bicubic patch.
const GridSize = 16

// Grid holds 16 control points, index i + 4*j for column i and row j, in
// image space with y pointing down.
type Grid [GridSize][2]float64

// binomial3 holds C(3, k).
var binomial3 = [4]float64{1, 3, 3, 1}

// Bernstein returns the Bernstein basis polynomial C(n,k) t^k (1-t)^(n-k).
func Bernstein(n, k int, t float64) float64 {
	if k < 0 || k > n {
		return 0
	}
	var c float64
	if n == 3 {
		c = binomial3[k]
	} else {
		c = 1
		for x := n - k + 1; x <= n; x++ {
			c *= float64(x)
		}
		for x := 2; x <= k; x++ {
			c /= float64(x)
		}
	}
	return c * pow(t, k) * pow(1-t, n-k)
}

func pow(t float64, k int) float64 {
	r := 1.0
	for range k {
		r *= t
	}
	return r
}

// cubic returns the four cubic Bernstein weights at t.
func cubic(t float64) [4]float64 {
	s := 1 - t
	return [4]float64{s * s * s, 3 * t * s * s, 3 * t * t * s, t * t * t}
}

// Eval returns the patch point P(u, v) = sum B_i(u) B_j(v) grid[i+4j].
func (g *Grid) Eval(u, v float64) (x, y float64) {
	bu := cubic(u)
	bv := cubic(v)
	for j := range 4 {
		for i := range 4 {
			w := bu[i] * bv[j]
			p := g[i+4*j]
			x += w * p[0]
			y += w * p[1]
		}
	}
	return x, y
}
