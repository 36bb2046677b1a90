// Command effectpic renders a composition descriptor to a PNG file.
//
// Usage:
//
//	effectpic -descriptor mug.json -input print=artwork.png -output mug.png
//
// Component sources and inputs are resolved relative to -assets and may also
// be data:, http(s): or solid: sources.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gogpu/effectpic"
	"github.com/gogpu/effectpic/internal/config"
	"github.com/gogpu/effectpic/offload"
	"github.com/gogpu/effectpic/source"
)

// inputFlags collects repeated -input name=src flags.
type inputFlags []string

func (f *inputFlags) String() string { return strings.Join(*f, ",") }

func (f *inputFlags) Set(v string) error {
	if name, src, ok := strings.Cut(v, "="); !ok || name == "" || src == "" {
		return errors.New("want name=src")
	}
	*f = append(*f, v)
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "effectpic:", err)
		os.Exit(2)
	}

	var (
		inputs     inputFlags
		descriptor = flag.String("descriptor", "", "composition descriptor (JSON)")
		output     = flag.String("output", "out.png", "output file")
		assets     = flag.String("assets", cfg.AssetRoot, "directory for relative sources")
		segments   = flag.Int("segments", cfg.WarpSegments, "warp mesh segments per side")
		workers    = flag.Int("workers", cfg.Workers, "offload workers (0: GOMAXPROCS)")
		inline     = flag.Bool("inline", false, "warp on the calling goroutine")
		timeout    = flag.Duration("timeout", 2*time.Minute, "overall deadline")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Var(&inputs, "input", "custom component input as name=src (repeatable)")
	flag.Parse()

	level, _ := cfg.Level()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	effectpic.SetLogger(logger)

	if *descriptor == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	if err := run(ctx, *descriptor, *output, *assets, inputs, *segments, *workers, *inline); err != nil {
		logger.Error("render failed", "error", err)
		os.Exit(1)
	}
	logger.Info("saved", "output", *output, "elapsed", time.Since(start))
}

func run(ctx context.Context, descriptor, output, assets string, inputs inputFlags, segments, workers int, inline bool) error {
	data, err := os.ReadFile(descriptor)
	if err != nil {
		return err
	}
	var opts effectpic.Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return fmt.Errorf("decode %s: %w", descriptor, err)
	}

	loader := source.NewMux(assets, nil)
	copts := []effectpic.Option{effectpic.WithWarpSegments(segments)}
	if !inline {
		coord := offload.NewCoordinator(workers, offload.WithLogger(effectpic.Logger()))
		defer coord.Close()
		copts = append(copts, effectpic.WithOffload(coord))
	}

	c, err := effectpic.New(opts, loader, copts...)
	if err != nil {
		return err
	}
	if err := c.Ready(ctx); err != nil {
		return err
	}

	for _, in := range inputs {
		name, src, _ := strings.Cut(in, "=")
		img, err := loader.Load(ctx, src)
		if err != nil {
			return fmt.Errorf("input %s: %w", name, err)
		}
		if err := c.RenderComponent(ctx, name, img); err != nil {
			return err
		}
	}
	if err := c.Combine(ctx); err != nil {
		return err
	}

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := c.EncodePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
