package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	imgutil "github.com/gogpu/effectpic/internal/image"
)

// FileLoader reads image files. Relative paths are resolved against Root.
type FileLoader struct {
	Root string
}

// Load implements Loader.
func (l FileLoader) Load(ctx context.Context, src string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(src, "file://")
	if !filepath.IsAbs(path) && l.Root != "" {
		path = filepath.Join(l.Root, filepath.FromSlash(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr(src, err)
	}
	defer f.Close()

	img, _, err := imgutil.Decode(f)
	if err != nil {
		return nil, loadErr(src, err)
	}
	return img, nil
}

// HTTPDoer is the part of *http.Client used by HTTPLoader.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// HTTPLoader fetches images with GET requests.
// A nil Client means http.DefaultClient.
type HTTPLoader struct {
	Client HTTPDoer
}

// Load implements Loader.
func (l HTTPLoader) Load(ctx context.Context, src string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, loadErr(src, err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, loadErr(src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, loadErr(src, fmt.Errorf("status %s", resp.Status))
	}
	img, _, err := imgutil.Decode(resp.Body)
	if err != nil {
		return nil, loadErr(src, err)
	}
	return img, nil
}

// DataURLLoader decodes base64 image data URLs such as those produced by
// canvas toDataURL.
type DataURLLoader struct{}

// Load implements Loader.
func (DataURLLoader) Load(_ context.Context, src string) (image.Image, error) {
	_, data, err := imgutil.ParseDataURL(src)
	if err != nil {
		return nil, loadErr(src, err)
	}
	img, _, err := imgutil.DecodeBytes(data)
	if err != nil {
		return nil, loadErr(src, err)
	}
	return img, nil
}

var errSolidSyntax = errors.New("want solid:#rrggbb[aa]@WxH")

// SolidLoader produces uniform images from "solid:#rrggbb[aa]@WxH".
// The colour is straight (not premultiplied) sRGB.
type SolidLoader struct{}

// Load implements Loader.
func (SolidLoader) Load(_ context.Context, src string) (image.Image, error) {
	c, w, h, err := ParseSolid(src)
	if err != nil {
		return nil, loadErr(src, err)
	}
	img, err := imgutil.New(w, h)
	if err != nil {
		return nil, loadErr(src, err)
	}
	imgutil.Fill(img, imgutil.Premultiplied(c))
	return img, nil
}

// ParseSolid parses a solid colour source.
func ParseSolid(src string) (color.NRGBA, int, int, error) {
	rest, ok := strings.CutPrefix(src, "solid:")
	if !ok {
		return color.NRGBA{}, 0, 0, errSolidSyntax
	}
	hex, size, ok := strings.Cut(rest, "@")
	if !ok {
		return color.NRGBA{}, 0, 0, errSolidSyntax
	}

	alpha := uint8(255)
	if len(hex) == 9 {
		a, err := strconv.ParseUint(hex[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, 0, 0, fmt.Errorf("alpha %q: %w", hex[7:], err)
		}
		alpha = uint8(a)
		hex = hex[:7]
	}
	col, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, 0, 0, fmt.Errorf("colour %q: %w", hex, err)
	}

	ws, hs, ok := strings.Cut(size, "x")
	if !ok {
		return color.NRGBA{}, 0, 0, errSolidSyntax
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return color.NRGBA{}, 0, 0, fmt.Errorf("width %q: %w", ws, err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return color.NRGBA{}, 0, 0, fmt.Errorf("height %q: %w", hs, err)
	}

	r, g, b := col.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, w, h, nil
}
