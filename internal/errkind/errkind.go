// Package errkind holds the sentinel errors shared by every effectpic package.
//
// Public packages re-export these values so callers can match with errors.Is
// regardless of which package produced the error.
package errkind

import "errors"

var (
	// ErrInvalidArgument reports malformed input: wrong-length point arrays,
	// an empty component list, an unknown component name, bad dimensions.
	ErrInvalidArgument = errors.New("effectpic: invalid argument")

	// ErrUnsupportedComponentType reports a component type outside
	// background, foreground and custom.
	ErrUnsupportedComponentType = errors.New("effectpic: unsupported component type")

	// ErrResourceUnavailable reports that a raster surface could not be acquired.
	ErrResourceUnavailable = errors.New("effectpic: resource unavailable")

	// ErrLoadFailure reports that a component source image failed to load.
	ErrLoadFailure = errors.New("effectpic: load failure")

	// ErrWorkerFailure reports that an offloaded computation failed.
	ErrWorkerFailure = errors.New("effectpic: worker failure")
)
