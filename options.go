package effectpic

import (
	"log/slog"

	"github.com/gogpu/effectpic/offload"
	"github.com/gogpu/effectpic/warp"
)

// Options is the composition descriptor.
type Options struct {
	Name       string      `json:"name"`
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Components []Component `json:"components"`
}

// Option configures a Composition during creation.
//
// Example:
//
//	coord := offload.NewCoordinator(0)
//	defer coord.Close()
//	c, err := effectpic.New(opts, loader,
//	    effectpic.WithOffload(coord),
//	    effectpic.WithWarpSegments(100),
//	)
type Option func(*config)

type config struct {
	segments   int
	layerLimit int
	coord      *offload.Coordinator
	logger     *slog.Logger
}

func defaultConfig() config {
	return config{segments: warp.DefaultSegments}
}

// WithWarpSegments sets the mesh resolution used for custom layer warps.
// Values below 1 are rejected by New.
func WithWarpSegments(n int) Option {
	return func(c *config) {
		c.segments = n
	}
}

// WithLayerCacheLimit keeps at most n rendered layers. When the limit is
// exceeded the least recently used layer is dropped, and Combine renders
// that component again without input. 0 means unlimited; negative values
// are rejected by New.
func WithLayerCacheLimit(n int) Option {
	return func(c *config) {
		c.layerLimit = n
	}
}

// WithOffload runs custom layer warps on worker sessions of coord.
// The coordinator is shared, not owned: the caller closes it.
func WithOffload(coord *offload.Coordinator) Option {
	return func(c *config) {
		c.coord = coord
	}
}

// WithLogger sets a logger for this composition instead of the package
// logger returned by Logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
