package mesh

import "github.com/gogpu/effectpic/internal/parallel"

// Plane returns the vertex positions (x, y, z triples) and texture
// coordinates (u, v pairs) of a width x height plane centred on the origin
// and split into segments x segments cells.
//
// Rows run from the top edge (y = height/2) downwards, columns from the
// left edge. Texture v grows downwards, so v = 0 is the top row of the image.
func Plane(width, height float64, segments int) (positions, uvs []float32) {
	n := segments + 1
	positions = make([]float32, 0, n*n*3)
	uvs = make([]float32, 0, n*n*2)
	for iy := range n {
		fy := float64(iy) / float64(segments)
		y := height/2 - fy*height
		for ix := range n {
			fx := float64(ix) / float64(segments)
			x := fx*width - width/2
			positions = append(positions, float32(x), float32(y), 0)
			uvs = append(uvs, float32(fx), float32(fy))
		}
	}
	return positions, uvs
}

// Deform replaces the x and y of every planar vertex with its image on the
// Bezier patch. The patch parameters come from the undeformed position:
//
//	u = (x + width/2) / width
//	v = 1 - (y + height/2) / height
//
// z is left untouched. Vertices are processed in bands through r.
func Deform(r parallel.Runner, positions []float32, grid *Grid, width, height float64) error {
	count := len(positions) / 3
	return r.Bands(count, 64, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p := positions[i*3 : i*3+2 : i*3+2]
			u := (float64(p[0]) + width/2) / width
			v := 1 - (float64(p[1])+height/2)/height
			x, y := grid.Eval(u, v)
			p[0] = float32(x)
			p[1] = float32(y)
		}
	})
}
