package offload

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/gogpu/effectpic/internal/mesh"
	"github.com/gogpu/effectpic/internal/parallel"
)

var (
	errClosed    = errors.New("session closed")
	errUnordered = errors.New("postprocess before warp")
)

// testHook, when set, runs in the worker before each request is handled.
var testHook func(Kind)

// Session is one worker conversation. It answers at most one warp and one
// postprocess request, each with a single reply.
//
// Thread safety: exchanges on one Session must not overlap.
type Session struct {
	id       string
	requests chan request
	done     chan struct{}
	runner   parallel.Runner
	logger   *slog.Logger

	closeOnce sync.Once
	mu        sync.Mutex
	err       error

	warped bool
}

// Warp sends the deform request and waits for its reply.
// req.Vertices belongs to the worker once Warp is called.
func (s *Session) Warp(ctx context.Context, req WarpRequest) (WarpResult, error) {
	msg, err := s.exchange(ctx, request{kind: KindWarp, warp: &req})
	if err != nil {
		return WarpResult{}, err
	}
	if msg.Kind != KindWarpResult || msg.Warp == nil {
		return WarpResult{}, s.fail(fmt.Errorf("unexpected %v reply to warp", msg.Kind))
	}
	return *msg.Warp, nil
}

// Postprocess sends the rotate-and-crop request and waits for its reply.
// req.Pixels belongs to the worker once Postprocess is called.
func (s *Session) Postprocess(ctx context.Context, req PostprocessRequest) (PostprocessResult, error) {
	msg, err := s.exchange(ctx, request{kind: KindPostprocess, post: &req})
	if err != nil {
		return PostprocessResult{}, err
	}
	if msg.Kind != KindPostprocessResult || msg.Postprocess == nil {
		return PostprocessResult{}, s.fail(fmt.Errorf("unexpected %v reply to postprocess", msg.Kind))
	}
	return *msg.Postprocess, nil
}

// Close terminates the worker. Close is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.logger.Debug("offload: session closed", "session", s.id)
	})
}

func (s *Session) exchange(ctx context.Context, req request) (Message, error) {
	if err := s.failure(); err != nil {
		return Message{}, err
	}
	req.reply = make(chan Message, 1)

	select {
	case s.requests <- req:
	case <-s.done:
		return Message{}, s.fail(errClosed)
	case <-ctx.Done():
		s.Close()
		return Message{}, ctx.Err()
	}

	select {
	case msg := <-req.reply:
		if msg.Kind == KindError {
			return Message{}, s.fail(msg.Err)
		}
		return msg, nil
	case <-s.done:
		return Message{}, s.fail(errClosed)
	case <-ctx.Done():
		s.Close()
		return Message{}, ctx.Err()
	}
}

// fail records the first failure, terminates the session and returns the
// failure wrapped as ErrWorkerFailure.
func (s *Session) fail(cause error) error {
	s.mu.Lock()
	if s.err == nil {
		s.err = fmt.Errorf("offload: session %s: %w: %w", s.id, ErrWorkerFailure, cause)
		s.logger.Warn("offload: worker failed", "session", s.id, "error", cause)
	}
	err := s.err
	s.mu.Unlock()
	s.Close()
	return err
}

func (s *Session) failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) serve() {
	for {
		select {
		case <-s.done:
			return
		case req := <-s.requests:
			msg := s.handle(req)
			req.reply <- msg
			if msg.Kind == KindError {
				return
			}
		}
	}
}

func (s *Session) handle(req request) (msg Message) {
	defer func() {
		if r := recover(); r != nil {
			msg = Message{Kind: KindError, Err: fmt.Errorf("panic in %v: %v", req.kind, r)}
		}
	}()
	if testHook != nil {
		testHook(req.kind)
	}

	var err error
	switch req.kind {
	case KindWarp:
		var res *WarpResult
		if res, err = s.deform(req.warp); err == nil {
			s.warped = true
			return Message{Kind: KindWarpResult, Warp: res}
		}
	case KindPostprocess:
		var res *PostprocessResult
		if res, err = s.postprocess(req.post); err == nil {
			return Message{Kind: KindPostprocessResult, Postprocess: res}
		}
	default:
		err = fmt.Errorf("unknown request kind %v", req.kind)
	}
	return Message{Kind: KindError, Err: err}
}

func (s *Session) deform(req *WarpRequest) (*WarpResult, error) {
	if len(req.Vertices)%3 != 0 {
		return nil, fmt.Errorf("vertex buffer length %d is not a multiple of 3", len(req.Vertices))
	}
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("invalid plane size %vx%v", req.Width, req.Height)
	}
	grid := mesh.Grid(req.Grid)
	if err := mesh.Deform(s.runner, req.Vertices, &grid, req.Width, req.Height); err != nil {
		return nil, err
	}
	return &WarpResult{Vertices: req.Vertices}, nil
}

func (s *Session) postprocess(req *PostprocessRequest) (*PostprocessResult, error) {
	if !s.warped {
		return nil, errUnordered
	}
	if req.Width <= 0 || req.Height <= 0 || len(req.Pixels) != req.Width*req.Height*4 {
		return nil, fmt.Errorf("pixel buffer of %d bytes does not hold %dx%d", len(req.Pixels), req.Width, req.Height)
	}
	buf := &image.RGBA{
		Pix:    req.Pixels,
		Stride: req.Width * 4,
		Rect:   image.Rect(0, 0, req.Width, req.Height),
	}
	out := mesh.AutoCrop(s.runner, mesh.Rotate(buf, req.Rotate))
	return &PostprocessResult{
		Pixels: out.Pix,
		Width:  out.Rect.Dx(),
		Height: out.Rect.Dy(),
	}, nil
}
