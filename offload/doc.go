// Package offload runs the expensive phases of a surface warp on a worker
// goroutine and reports back through tagged messages.
//
// A Coordinator owns a worker pool shared by all sessions. Each warp call
// opens its own Session, performs at most one deform exchange and one
// postprocess exchange, and closes it:
//
//	s := coord.Open()
//	defer s.Close()
//	res, err := s.Warp(ctx, offload.WarpRequest{...})
//
// Buffers carried by a request belong to the worker once the request is
// sent; the caller gets them back, possibly reallocated, in the result.
// A failure inside the worker surfaces as ErrWorkerFailure, ends the session,
// and is never retried.
package offload
