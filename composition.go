package effectpic

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/effectpic/internal/cache"
	imgutil "github.com/gogpu/effectpic/internal/image"
	"github.com/gogpu/effectpic/offload"
	"github.com/gogpu/effectpic/source"
	"github.com/gogpu/effectpic/warp"
)

// Composition composites background, custom and foreground layers into one
// output raster.
//
// Source images load in the background as soon as the composition is
// created. Every blocking operation first waits for loading to finish; if
// any source fails to load, that failure is returned by every operation.
//
// Thread safety: Composition is safe for concurrent use. Render and combine
// operations are serialized.
type Composition struct {
	name          string
	width, height int
	components    []Component
	keys          []string       // NFC names, parallel to components
	byKey         map[string]int // NFC name -> index into components

	loader   source.Loader
	logger   *slog.Logger
	segments int
	coord    *offload.Coordinator

	ready    chan struct{}
	readyErr error                  // set before ready is closed
	sources  map[string]*image.RGBA // set before ready is closed

	mu       sync.Mutex
	rendered *cache.Cache[string, *image.RGBA]
	grids    *cache.Cache[string, warp.Grid]
	out      *image.RGBA
	combined bool
}

// New validates opts and starts loading every component source through
// loader.
//
// Validation is synchronous: an empty component list, a non-positive size,
// a missing or duplicate name, an unknown composite operation or a
// component without a layer fail here.
func New(opts Options, loader source.Loader, copts ...Option) (*Composition, error) {
	cfg := defaultConfig()
	for _, opt := range copts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = Logger()
	}

	if len(opts.Components) == 0 {
		return nil, fmt.Errorf("effectpic: components is required: %w", ErrInvalidArgument)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("effectpic: canvas size %dx%d: %w", opts.Width, opts.Height, ErrInvalidArgument)
	}
	if cfg.segments < 1 {
		return nil, fmt.Errorf("effectpic: warp segments %d: %w", cfg.segments, ErrInvalidArgument)
	}
	if cfg.layerLimit < 0 {
		return nil, fmt.Errorf("effectpic: layer cache limit %d: %w", cfg.layerLimit, ErrInvalidArgument)
	}
	if loader == nil {
		return nil, fmt.Errorf("effectpic: nil loader: %w", ErrInvalidArgument)
	}

	c := &Composition{
		name:       opts.Name,
		width:      opts.Width,
		height:     opts.Height,
		components: slices.Clone(opts.Components),
		keys:       make([]string, len(opts.Components)),
		byKey:      make(map[string]int, len(opts.Components)),
		loader:     loader,
		logger:     cfg.logger,
		segments:   cfg.segments,
		coord:      cfg.coord,
		ready:      make(chan struct{}),
		grids:      cache.New[string, warp.Grid](0),
	}
	c.rendered = cache.New[string, *image.RGBA](cfg.layerLimit, cache.WithEvict(c.dropLayer))
	for i, comp := range c.components {
		if err := validate(comp); err != nil {
			return nil, err
		}
		key := norm.NFC.String(comp.Name)
		if _, dup := c.byKey[key]; dup {
			return nil, fmt.Errorf("effectpic: duplicate component name %q: %w", comp.Name, ErrInvalidArgument)
		}
		c.keys[i] = key
		c.byKey[key] = i
	}

	out, err := imgutil.New(c.width, c.height)
	if err != nil {
		return nil, fmt.Errorf("effectpic: output canvas: %w", err)
	}
	c.out = out

	go c.load()
	return c, nil
}

func validate(comp Component) error {
	if comp.Name == "" {
		return fmt.Errorf("effectpic: component without name: %w", ErrInvalidArgument)
	}
	switch l := comp.Layer.(type) {
	case Background, Foreground:
	case Custom:
		if _, err := l.CompositeOp.mode(); err != nil {
			return fmt.Errorf("effectpic: component %q: %w", comp.Name, err)
		}
	default:
		return fmt.Errorf("effectpic: component %q has layer %T: %w", comp.Name, comp.Layer, ErrUnsupportedComponentType)
	}
	return nil
}

// load fetches every source concurrently and then opens the readiness
// barrier.
func (c *Composition) load() {
	defer close(c.ready)

	images := make([]*image.RGBA, len(c.components))
	g, ctx := errgroup.WithContext(context.Background())
	for i, comp := range c.components {
		g.Go(func() error {
			img, err := c.loader.Load(ctx, comp.Src)
			if err == nil && (img == nil || img.Bounds().Empty()) {
				err = errors.New("empty image")
			}
			if err != nil {
				if !errors.Is(err, ErrLoadFailure) {
					err = fmt.Errorf("%w: %w", ErrLoadFailure, err)
				}
				return fmt.Errorf("effectpic: component %s image load failed: %w", comp.Name, err)
			}
			images[i] = imgutil.FromImage(img)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		c.logger.Error("effectpic: load failed", "composition", c.name, "error", err)
		c.readyErr = err
		return
	}

	c.sources = make(map[string]*image.RGBA, len(images))
	for i, img := range images {
		c.sources[c.keys[i]] = img
	}
	c.logger.Debug("effectpic: sources loaded", "composition", c.name, "count", len(images))
}

// Ready waits until every source has loaded. It returns the load failure,
// if any, or ctx.Err() when ctx ends first.
func (c *Composition) Ready(ctx context.Context) error {
	select {
	case <-c.ready:
		return c.readyErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Name returns the composition name.
func (c *Composition) Name() string {
	return c.name
}

// Size returns the canvas size.
func (c *Composition) Size() (width, height int) {
	return c.width, c.height
}

// Components returns a copy of the component descriptors in declaration
// order.
func (c *Composition) Components() []Component {
	return slices.Clone(c.components)
}

// dropLayer recycles a layer leaving the cache. It runs with c.mu held.
func (c *Composition) dropLayer(key string, layer *image.RGBA) {
	c.logger.Debug("effectpic: layer dropped", "composition", c.name, "component", key)
	imgutil.Put(layer)
}

// lookup returns the index of the component called name.
func (c *Composition) lookup(name string) (int, error) {
	i, ok := c.byKey[norm.NFC.String(name)]
	if !ok {
		return 0, fmt.Errorf("effectpic: component %s not found: %w", name, ErrInvalidArgument)
	}
	return i, nil
}
