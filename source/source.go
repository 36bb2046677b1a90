// Package source loads component images from the locations named in layer
// descriptors.
//
// A descriptor's src is resolved by scheme: data URLs, http and https URLs,
// solid colour swatches and plain file paths. Decoders are registered for
// PNG, JPEG, GIF, WebP, BMP and TIFF.
package source

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/gogpu/effectpic/internal/errkind"
)

// ErrLoadFailure wraps every error returned by a Loader.
var ErrLoadFailure = errkind.ErrLoadFailure

// Loader resolves a src string to an image.
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, src string) (image.Image, error)

// Load calls f(ctx, src).
func (f LoaderFunc) Load(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// Mux dispatches on the scheme of src. Sources without a registered scheme
// go to Fallback.
type Mux struct {
	schemes  map[string]Loader
	Fallback Loader
}

// NewMux returns a Mux serving data:, solid:, http: and https: sources and
// reading everything else from files under root.
func NewMux(root string, client HTTPDoer) *Mux {
	m := &Mux{Fallback: FileLoader{Root: root}}
	m.Handle("data", DataURLLoader{})
	m.Handle("solid", SolidLoader{})
	httpLoader := HTTPLoader{Client: client}
	m.Handle("http", httpLoader)
	m.Handle("https", httpLoader)
	return m
}

// Handle registers l for scheme, replacing any previous loader.
func (m *Mux) Handle(scheme string, l Loader) {
	if m.schemes == nil {
		m.schemes = make(map[string]Loader)
	}
	m.schemes[strings.ToLower(scheme)] = l
}

// Load implements Loader.
func (m *Mux) Load(ctx context.Context, src string) (image.Image, error) {
	if scheme, _, ok := strings.Cut(src, ":"); ok {
		if l, found := m.schemes[strings.ToLower(scheme)]; found {
			return l.Load(ctx, src)
		}
	}
	if m.Fallback == nil {
		return nil, fmt.Errorf("source: no loader for %q: %w", truncate(src), ErrLoadFailure)
	}
	return m.Fallback.Load(ctx, src)
}

// truncate shortens src for error messages; data URLs can be megabytes.
func truncate(src string) string {
	const limit = 64
	if len(src) <= limit {
		return src
	}
	return src[:limit] + "..."
}

func loadErr(src string, err error) error {
	return fmt.Errorf("source: load %q: %w: %w", truncate(src), ErrLoadFailure, err)
}
