package warp

import "github.com/gogpu/effectpic/internal/errkind"

var (
	// ErrInvalidArgument reports a short grid, a bad size or bad segments.
	ErrInvalidArgument = errkind.ErrInvalidArgument

	// ErrResourceUnavailable reports that the scratch buffer could not be
	// allocated.
	ErrResourceUnavailable = errkind.ErrResourceUnavailable

	// ErrWorkerFailure reports a failed offloaded phase.
	ErrWorkerFailure = errkind.ErrWorkerFailure
)
