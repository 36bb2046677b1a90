// Package warp deforms an image along a bicubic Bezier patch.
//
// A patch is described by a Grid of 16 control points laid out row by row
// in image coordinates. Warp tessellates the source into a planar mesh,
// moves every vertex onto the patch, rasterizes the textured mesh into a
// scratch buffer twice the source size, optionally rotates the buffer and
// trims its transparent border.
//
// # Quick Start
//
//	out, err := warp.Warp(ctx, img, warp.DefaultGrid(w, h),
//	    warp.WithScale(1.2, 1.2),
//	    warp.WithRotation(15),
//	)
//
// # Offloading
//
// The deformation and the rotate-and-crop post-process can run on a worker
// session of an [offload.Coordinator]:
//
//	coord := offload.NewCoordinator(0)
//	defer coord.Close()
//	out, err := warp.Warp(ctx, img, grid, warp.WithOffload(coord))
//
// Both paths produce the same pixels.
package warp
