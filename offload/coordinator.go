package offload

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/gogpu/effectpic/internal/errkind"
	"github.com/gogpu/effectpic/internal/parallel"
)

// ErrWorkerFailure is returned for any failed exchange with a worker.
var ErrWorkerFailure = errkind.ErrWorkerFailure

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger for session lifecycle and failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// Coordinator hands out worker sessions backed by a shared pool.
//
// Thread safety: Coordinator is safe for concurrent use.
type Coordinator struct {
	pool     *parallel.WorkerPool
	logger   *slog.Logger
	sessions sync.WaitGroup
	closed   atomic.Bool
}

// NewCoordinator creates a coordinator with the given pool size.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewCoordinator(workers int, opts ...Option) *Coordinator {
	c := &Coordinator{
		pool:   parallel.NewWorkerPool(workers),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Runner exposes the pool for data-parallel work done outside a session,
// such as rasterization.
func (c *Coordinator) Runner() parallel.Runner {
	return c.pool
}

// Workers returns the size of the worker pool.
func (c *Coordinator) Workers() int {
	return c.pool.Workers()
}

// Running reports whether the coordinator still accepts sessions.
func (c *Coordinator) Running() bool {
	return !c.closed.Load() && c.pool.IsRunning()
}

// Open starts a session with its own worker goroutine.
// A session opened on a closed coordinator fails every exchange.
func (c *Coordinator) Open() *Session {
	s := &Session{
		id:       uuid.NewString(),
		requests: make(chan request, 1),
		done:     make(chan struct{}),
		runner:   c.pool,
		logger:   c.logger,
	}
	if c.closed.Load() {
		s.fail(errClosed)
		return s
	}
	c.sessions.Add(1)
	go func() {
		defer c.sessions.Done()
		s.serve()
	}()
	c.logger.Debug("offload: session opened", "session", s.id)
	return s
}

// Close waits for sessions still running and stops the pool.
// Sessions must be closed by their callers first.
func (c *Coordinator) Close() {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.sessions.Wait()
	c.pool.Close()
}
