package warp

import "github.com/gogpu/effectpic/offload"

// DefaultSegments is the default mesh resolution per side.
const DefaultSegments = 150

// Option configures a Warp call.
type Option func(*options)

type options struct {
	width, height  float64
	segments       int
	scaleX, scaleY float64
	rotate         float64
	coord          *offload.Coordinator
}

func defaultOptions() options {
	return options{
		segments: DefaultSegments,
		scaleX:   1,
		scaleY:   1,
	}
}

// WithSize overrides the plane size. By default the source image size is
// used.
func WithSize(w, h float64) Option {
	return func(o *options) {
		o.width, o.height = w, h
	}
}

// WithSegments sets the mesh resolution per side.
func WithSegments(n int) Option {
	return func(o *options) {
		o.segments = n
	}
}

// WithScale scales the rasterized patch about the buffer centre.
// Zero means 1 for either axis.
func WithScale(sx, sy float64) Option {
	return func(o *options) {
		if sx == 0 {
			sx = 1
		}
		if sy == 0 {
			sy = 1
		}
		o.scaleX, o.scaleY = sx, sy
	}
}

// WithRotation rotates the result clockwise by degrees before cropping.
func WithRotation(degrees float64) Option {
	return func(o *options) {
		o.rotate = degrees
	}
}

// WithOffload runs deformation and post-processing on a worker session of c
// and rasterizes on c's pool. A nil coordinator keeps the inline path.
func WithOffload(c *offload.Coordinator) Option {
	return func(o *options) {
		o.coord = c
	}
}
