// Package effectpic composites product mockups from layered pictures.
//
// # Overview
//
// A composition is a fixed-size canvas built from components exported from
// a layered design file. Each component has a source image and one of
// three layer types:
//   - background: stretched over the canvas, drawn first
//   - custom: a user-supplied image deformed onto a surface (a mug, a
//     shirt, a screen), masked and shaded by the component's own image
//   - foreground: placed over everything else
//
// # Quick Start
//
//	var opts effectpic.Options
//	if err := json.Unmarshal(descriptor, &opts); err != nil {
//	    return err
//	}
//	c, err := effectpic.New(opts, source.NewMux("assets", nil))
//	if err != nil {
//	    return err
//	}
//	if err := c.RenderComponent(ctx, "mug", artwork); err != nil {
//	    return err
//	}
//	if err := c.Combine(ctx); err != nil {
//	    return err
//	}
//	png := c.ResultPNG()
//
// # Deformations
//
// A custom layer bends its input either along a bicubic Bezier patch of 16
// control points (package warp) or through a four-point perspective
// transform (package perspective). Without an explicit deformation the
// input is warped with the evenly spaced grid of its own size, which
// leaves it unchanged.
//
// # Compositing
//
// Buffers hold premultiplied RGBA. Layer shading uses the canvas
// globalCompositeOperation names; multiply is the default.
//
// # Coordinate System
//
// Origin at the top-left of the canvas, x to the right, y down. Rotations
// are in degrees, positive clockwise on screen.
package effectpic

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
