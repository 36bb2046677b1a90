package offload

import (
	"fmt"

	"github.com/gogpu/effectpic/internal/mesh"
)

// Kind tags a message exchanged with a session worker.
type Kind uint8

const (
	KindWarp Kind = iota + 1
	KindPostprocess
	KindWarpResult
	KindPostprocessResult
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindWarp:
		return "warp"
	case KindPostprocess:
		return "postprocess"
	case KindWarpResult:
		return "warpResult"
	case KindPostprocessResult:
		return "postprocessResult"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// WarpRequest asks the worker to deform planar vertex positions.
type WarpRequest struct {
	// Vertices are x, y, z triples of the undeformed plane.
	Vertices []float32
	// Grid holds the 16 control points, index i + 4*j.
	Grid          [mesh.GridSize][2]float64
	Width, Height float64
}

// WarpResult carries the deformed vertex positions.
type WarpResult struct {
	Vertices []float32
}

// PostprocessRequest asks the worker to rotate and crop a rendered buffer.
type PostprocessRequest struct {
	// Pixels is premultiplied RGBA, Width*Height*4 bytes, rows top-down.
	Pixels        []byte
	Width, Height int
	// Rotate is in degrees, clockwise on screen, about the buffer centre.
	Rotate float64
}

// PostprocessResult carries the cropped raster.
type PostprocessResult struct {
	Pixels        []byte
	Width, Height int
}

// Message is a worker reply. Exactly one payload matches Kind.
type Message struct {
	Kind        Kind
	Warp        *WarpResult
	Postprocess *PostprocessResult
	Err         error
}

type request struct {
	kind  Kind
	warp  *WarpRequest
	post  *PostprocessRequest
	reply chan Message
}
