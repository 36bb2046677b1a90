package warp

import (
	"context"
	"fmt"
	"image"
	"math"

	imgutil "github.com/gogpu/effectpic/internal/image"
	"github.com/gogpu/effectpic/internal/mesh"
	"github.com/gogpu/effectpic/internal/parallel"
	"github.com/gogpu/effectpic/offload"
)

// Warp deforms src along the patch described by grid.
//
// The result is the rasterized patch, rotated and trimmed to its opaque
// bounding box. A patch that leaves no visible pixel yields a zero-size
// image and no error. With the default grid, scale 1 and no rotation the
// result equals src.
func Warp(ctx context.Context, src image.Image, grid Grid, opts ...Option) (*image.RGBA, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	tex := imgutil.FromImage(src)
	if o.width == 0 && o.height == 0 {
		o.width = float64(tex.Rect.Dx())
		o.height = float64(tex.Rect.Dy())
	}
	m, err := NewMesh(o.width, o.height, o.segments)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bw := int(math.Round(o.width)) * 2
	bh := int(math.Round(o.height)) * 2
	buf, err := imgutil.New(bw, bh)
	if err != nil {
		return nil, fmt.Errorf("warp: scratch buffer: %w", err)
	}
	if imgutil.IsEmpty(tex) {
		return imgutil.Empty(), nil
	}

	if o.coord != nil {
		return warpOffload(ctx, o, m, grid, tex, buf)
	}
	return warpInline(ctx, o, m, grid, tex, buf)
}

func warpInline(ctx context.Context, o options, m *Mesh, grid Grid, tex, buf *image.RGBA) (*image.RGBA, error) {
	if err := Deform(m, grid); err != nil {
		return nil, err
	}
	if err := rasterize(parallel.Serial{}, o, m, tex, buf); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return AutoCrop(Rotate(buf, o.rotate)), nil
}

func warpOffload(ctx context.Context, o options, m *Mesh, grid Grid, tex, buf *image.RGBA) (*image.RGBA, error) {
	s := o.coord.Open()
	defer s.Close()

	res, err := s.Warp(ctx, offload.WarpRequest{
		Vertices: m.Positions,
		Grid:     grid.kernel(),
		Width:    m.Width,
		Height:   m.Height,
	})
	if err != nil {
		return nil, fmt.Errorf("warp: deform: %w", err)
	}
	m.Positions = res.Vertices

	if err := rasterize(o.coord.Runner(), o, m, tex, buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWorkerFailure, err)
	}

	out, err := s.Postprocess(ctx, offload.PostprocessRequest{
		Pixels: buf.Pix,
		Width:  buf.Rect.Dx(),
		Height: buf.Rect.Dy(),
		Rotate: o.rotate,
	})
	if err != nil {
		return nil, fmt.Errorf("warp: postprocess: %w", err)
	}
	return &image.RGBA{
		Pix:    out.Pixels,
		Stride: out.Width * 4,
		Rect:   image.Rect(0, 0, out.Width, out.Height),
	}, nil
}

func rasterize(r parallel.Runner, o options, m *Mesh, tex, buf *image.RGBA) error {
	chain := imgutil.GenerateMipmaps(tex)
	defer chain.Release()

	proj := mesh.Projection{Width: m.Width, Height: m.Height, ScaleX: o.scaleX, ScaleY: o.scaleY}
	if err := mesh.Rasterize(r, buf, m.Positions, m.UVs, m.Segments, proj, chain); err != nil {
		return fmt.Errorf("warp: rasterize: %w", err)
	}
	return nil
}
