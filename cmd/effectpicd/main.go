// Command effectpicd serves composition renders over HTTP.
//
// POST /render takes a JSON body
//
//	{"composition": {...descriptor...}, "inputs": {"print": "data:image/png;base64,..."}}
//
// and answers with the PNG, or with {"dataURL": "..."} when the request
// asks for ?format=dataurl. Inputs are rendered in name order.
//
// Sources may be data: or solid: URLs, or paths inside EFFECTPIC_ASSET_ROOT
// (plain or file://). http(s) sources are fetched only when
// EFFECTPIC_ALLOW_REMOTE is true.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/effectpic"
	"github.com/gogpu/effectpic/internal/config"
	"github.com/gogpu/effectpic/offload"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	effectpic.SetLogger(logger)

	coord := offload.NewCoordinator(cfg.Workers, offload.WithLogger(logger))

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(cfg, coord, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	coord.Close()
}
