package effectpic

import "github.com/gogpu/effectpic/internal/errkind"

// Errors returned by compositions. Match them with errors.Is; the same values
// are exported by the warp, perspective, offload and source packages.
var (
	// ErrInvalidArgument reports malformed input: an empty component list,
	// a bad size, duplicate or unknown names, short point arrays, an
	// unknown composite operation.
	ErrInvalidArgument = errkind.ErrInvalidArgument

	// ErrUnsupportedComponentType reports a component type outside
	// background, foreground and custom.
	ErrUnsupportedComponentType = errkind.ErrUnsupportedComponentType

	// ErrResourceUnavailable reports that a raster surface could not be
	// allocated.
	ErrResourceUnavailable = errkind.ErrResourceUnavailable

	// ErrLoadFailure reports that a component's source image could not be
	// loaded. It poisons the composition.
	ErrLoadFailure = errkind.ErrLoadFailure

	// ErrWorkerFailure reports a failed offloaded warp.
	ErrWorkerFailure = errkind.ErrWorkerFailure
)
