package effectpic

import (
	"cmp"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"time"

	"github.com/gogpu/effectpic/internal/blend"
	imgutil "github.com/gogpu/effectpic/internal/image"
	"github.com/gogpu/effectpic/perspective"
	"github.com/gogpu/effectpic/warp"
)

// veil is laid under a custom input before deformation so the whole
// deformed quad keeps a nonzero alpha and survives auto-crop.
var veil = imgutil.Premultiplied(color.NRGBA{R: 255, G: 255, B: 255, A: 3})

// RenderInput pairs a component name with the image to render it with.
type RenderInput struct {
	Name  string
	Input image.Image
}

// RenderComponent renders the named component and stores the layer,
// replacing any earlier one. input is the user image for a custom
// component; background and foreground components ignore it.
func (c *Composition) RenderComponent(ctx context.Context, name string, input image.Image) error {
	if err := c.Ready(ctx); err != nil {
		return err
	}
	i, err := c.lookup(name)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	layer, err := c.render(ctx, i, input)
	if err != nil {
		return err
	}
	c.rendered.Set(c.keys[i], layer)
	return nil
}

// RenderAll renders each input in order, stopping at the first error.
// An empty list fails with ErrInvalidArgument.
func (c *Composition) RenderAll(ctx context.Context, inputs []RenderInput) error {
	if len(inputs) == 0 {
		return fmt.Errorf("effectpic: components is required: %w", ErrInvalidArgument)
	}
	for _, in := range inputs {
		if err := c.RenderComponent(ctx, in.Name, in.Input); err != nil {
			return err
		}
	}
	return nil
}

// Combine draws every layer into the output: backgrounds, then custom
// layers, then foregrounds, each group by descending Index. Components
// without a stored layer are rendered without input and not stored.
func (c *Composition) Combine(ctx context.Context) error {
	if err := c.Ready(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.combined = false
	imgutil.Clear(c.out)
	for _, typ := range []LayerType{TypeBackground, TypeCustom, TypeForeground} {
		for _, i := range c.drawOrder(typ) {
			if err := ctx.Err(); err != nil {
				return err
			}
			layer, cached := c.rendered.Get(c.keys[i])
			if !cached {
				var err error
				if layer, err = c.render(ctx, i, nil); err != nil {
					return err
				}
			}
			imgutil.DrawImage(c.out, layer, imgutil.DrawParams{
				Transform: imgutil.Identity(),
				Opacity:   1,
				Mode:      blend.SourceOver,
			})
			if !cached {
				imgutil.Put(layer)
			}
		}
	}
	c.combined = true

	st := c.rendered.Stats()
	c.logger.Debug("effectpic: combined",
		"composition", c.name,
		"layers", st.Len,
		"hits", st.Hits,
		"misses", st.Misses,
		"evictions", st.Evictions)
	return nil
}

// drawOrder returns the indices of the components of typ sorted by
// descending Index. Equal indices keep declaration order.
func (c *Composition) drawOrder(typ LayerType) []int {
	var idx []int
	for i, comp := range c.components {
		if comp.Type() == typ {
			idx = append(idx, i)
		}
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(c.components[b].Index, c.components[a].Index)
	})
	return idx
}

// ClearCache drops every stored layer and marks the output stale. Loaded
// sources and default warp grids are kept.
func (c *Composition) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.combined = false
	c.rendered.Clear()
}

// drawOp is one step of a layer render.
type drawOp struct {
	img       *image.RGBA
	transform imgutil.Affine
	opacity   float64
	mode      blend.Mode
	tile      bool // fill the canvas with img repeated from the origin
}

func (op drawOp) apply(dst *image.RGBA) {
	if op.tile {
		pat := imgutil.NewPattern(op.img).WithOpacity(op.opacity)
		imgutil.FillPattern(dst, pat, op.mode)
		return
	}
	var mips *imgutil.MipmapChain
	if math.Abs(op.transform.Det()) < 0.25 {
		mips = imgutil.GenerateMipmaps(op.img)
		defer mips.Release()
	}
	imgutil.DrawImage(dst, op.img, imgutil.DrawParams{
		Transform: op.transform,
		Opacity:   op.opacity,
		Mode:      op.mode,
		Mipmaps:   mips,
	})
}

// render produces the layer of component i on a fresh canvas.
// c.mu must be held.
func (c *Composition) render(ctx context.Context, i int, input image.Image) (*image.RGBA, error) {
	start := time.Now()
	comp := c.components[i]
	ops, err := c.plan(ctx, i, input)
	if err != nil {
		return nil, fmt.Errorf("effectpic: render component %s: %w", comp.Name, err)
	}
	layer := imgutil.Get(c.width, c.height)
	for _, op := range ops {
		op.apply(layer)
	}
	c.logger.Debug("effectpic: component rendered",
		"component", comp.Name,
		"type", comp.Type(),
		"input", input != nil,
		"elapsed", time.Since(start))
	return layer, nil
}

// plan lists the draw operations that render component i.
func (c *Composition) plan(ctx context.Context, i int, input image.Image) ([]drawOp, error) {
	comp := c.components[i]
	src := c.sources[c.keys[i]]
	sw, sh := float64(src.Rect.Dx()), float64(src.Rect.Dy())
	w, h := float64(c.width), float64(c.height)
	stretched := drawOp{
		img:       src,
		transform: imgutil.RectTo(sw, sh, 0, 0, w, h),
		opacity:   1,
		mode:      blend.SourceOver,
	}

	switch l := comp.Layer.(type) {
	case Background:
		if input != nil {
			c.logger.Warn("effectpic: background image should not be provided", "component", comp.Name)
		}
		return []drawOp{stretched}, nil

	case Foreground:
		if input != nil {
			c.logger.Warn("effectpic: foreground image should not be provided", "component", comp.Name)
		}
		fw, fh := sw*orOne(l.ScaleX), sh*orOne(l.ScaleY)
		xf := imgutil.RectTo(sw, sh, -fw/2+l.Position.X, -fh/2+l.Position.Y, fw, fh).
			Then(imgutil.Rotate(l.Rotate * math.Pi / 180)).
			Then(imgutil.Translate(w/2, h/2))
		return []drawOp{{img: src, transform: xf, opacity: orOne(l.Opacity), mode: blend.SourceOver}}, nil

	case Custom:
		if input == nil {
			return []drawOp{stretched}, nil
		}
		return c.planCustom(ctx, i, l, src, input)
	}
	return nil, fmt.Errorf("layer %T: %w", comp.Layer, ErrUnsupportedComponentType)
}

func (c *Composition) planCustom(ctx context.Context, i int, l Custom, src *image.RGBA, input image.Image) ([]drawOp, error) {
	in := imgutil.FromImage(input)
	if imgutil.IsEmpty(in) {
		return nil, fmt.Errorf("empty input image: %w", ErrInvalidArgument)
	}
	iw, ih := in.Rect.Dx(), in.Rect.Dy()
	veiled := imgutil.Get(iw, ih)
	defer imgutil.Put(veiled)
	imgutil.Fill(veiled, veil)
	imgutil.DrawImage(veiled, in, imgutil.DrawParams{
		Transform: imgutil.Identity(),
		Opacity:   1,
		Mode:      blend.SourceOver,
	})

	pos := l.Position
	var (
		deformed *image.RGBA
		err      error
	)
	switch d := l.Deform.(type) {
	case TransformDeform:
		var srcPts []float64
		if d.Src != nil {
			srcPts = d.Src[:]
		}
		if deformed, err = perspective.Transform(ctx, veiled, d.Dst[:], srcPts); err != nil {
			return nil, err
		}
		pos = Point{}
	default:
		var grid warp.Grid
		if wd, ok := d.(WarpDeform); ok {
			grid = wd.Grid
		} else {
			grid = c.grids.GetOrCreate(c.keys[i], func() warp.Grid {
				return warp.DefaultGrid(float64(iw), float64(ih))
			})
		}
		opts := []warp.Option{
			warp.WithSegments(c.segments),
			warp.WithScale(orOne(l.ScaleX), orOne(l.ScaleY)),
			warp.WithRotation(l.Rotate),
		}
		if c.coord != nil {
			opts = append(opts, warp.WithOffload(c.coord))
		}
		if deformed, err = warp.Warp(ctx, veiled, grid, opts...); err != nil {
			return nil, err
		}
	}

	mode, err := l.CompositeOp.mode()
	if err != nil {
		return nil, err
	}
	// The opacity holds for all three steps, like a canvas globalAlpha.
	alpha := orOne(l.Opacity)
	w, h := float64(c.width), float64(c.height)
	sw, sh := float64(src.Rect.Dx()), float64(src.Rect.Dy())
	return []drawOp{
		{img: deformed, transform: imgutil.Translate(pos.X, pos.Y), opacity: alpha, mode: blend.SourceOver},
		{img: src, transform: imgutil.RectTo(sw, sh, 0, 0, w, h), opacity: alpha, mode: blend.DestinationIn},
		{img: src, opacity: alpha, mode: mode, tile: true},
	}, nil
}
