package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"maps"
	"path/filepath"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gogpu/effectpic"
	"github.com/gogpu/effectpic/internal/config"
	"github.com/gogpu/effectpic/offload"
	"github.com/gogpu/effectpic/source"
)

type contextKey string

const requestIDKey contextKey = "requestID"

type renderRequest struct {
	Composition effectpic.Options `json:"composition"`
	Inputs      map[string]string `json:"inputs"`
}

type server struct {
	cfg    *config.Config
	coord  *offload.Coordinator
	loader source.Loader
	logger *slog.Logger
}

func newRouter(cfg *config.Config, coord *offload.Coordinator, logger *slog.Logger) *mux.Router {
	s := &server{
		cfg:    cfg,
		coord:  coord,
		loader: confine(source.NewMux(cfg.AssetRoot, nil), cfg.AllowRemote),
		logger: logger,
	}

	r := mux.NewRouter()
	r.Use(s.recovery)
	r.Use(s.requestLog)

	r.HandleFunc("/health", s.health).Methods("GET")
	r.HandleFunc("/render", s.render).Methods("POST")
	return r
}

// confine admits data: and solid: sources, http(s) sources when remote is
// set, and files that stay inside the asset root. Everything else fails
// with ErrLoadFailure.
func confine(next source.Loader, remote bool) source.Loader {
	return source.LoaderFunc(func(ctx context.Context, src string) (image.Image, error) {
		if err := admit(src, remote); err != nil {
			return nil, fmt.Errorf("source %.64q: %w: %w", src, effectpic.ErrLoadFailure, err)
		}
		return next.Load(ctx, src)
	})
}

func admit(src string, remote bool) error {
	path := src
	if scheme, rest, ok := strings.Cut(src, ":"); ok {
		switch strings.ToLower(scheme) {
		case "data", "solid":
			return nil
		case "http", "https":
			if !remote {
				return errors.New("remote sources disabled")
			}
			return nil
		case "file":
			path = strings.TrimPrefix(rest, "//")
		default:
			return fmt.Errorf("scheme %q not served", scheme)
		}
	}
	if !filepath.IsLocal(filepath.FromSlash(path)) {
		return errors.New("outside asset root")
	}
	return nil
}

func (s *server) render(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.fail(w, r, fmt.Errorf("decode body: %w: %w", effectpic.ErrInvalidArgument, err))
		return
	}

	opts := []effectpic.Option{
		effectpic.WithWarpSegments(s.cfg.WarpSegments),
		effectpic.WithLayerCacheLimit(s.cfg.LayerCache),
		effectpic.WithOffload(s.coord),
		effectpic.WithLogger(s.logger.With("request_id", requestID(ctx))),
	}
	c, err := effectpic.New(req.Composition, s.loader, opts...)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := c.Ready(ctx); err != nil {
		s.fail(w, r, err)
		return
	}

	if len(req.Inputs) > 0 {
		inputs := make([]effectpic.RenderInput, 0, len(req.Inputs))
		for _, name := range slices.Sorted(maps.Keys(req.Inputs)) {
			img, err := s.loader.Load(ctx, req.Inputs[name])
			if err != nil {
				s.fail(w, r, fmt.Errorf("input %s: %w", name, err))
				return
			}
			inputs = append(inputs, effectpic.RenderInput{Name: name, Input: img})
		}
		if err := c.RenderAll(ctx, inputs); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if err := c.Combine(ctx); err != nil {
		s.fail(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "dataurl" {
		writeJSON(w, http.StatusOK, map[string]string{"dataURL": c.ResultDataURL()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if err := c.EncodePNG(w); err != nil {
		s.logger.Warn("write response", "request_id", requestID(ctx), "error", err)
	}
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if !s.coord.Running() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "stopped"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "workers": s.coord.Workers()})
}

func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, effectpic.ErrInvalidArgument), errors.Is(err, effectpic.ErrUnsupportedComponentType):
		status = http.StatusBadRequest
	case errors.Is(err, effectpic.ErrLoadFailure):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	s.logger.Warn("render failed", "request_id", requestID(r.Context()), "status", status, "error", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.logger.Info("request", "request_id", id, "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func (s *server) recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic", "error", rec, "stack", string(debug.Stack()))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
