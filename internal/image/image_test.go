package image

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/effectpic/internal/blend"
	"github.com/gogpu/effectpic/internal/errkind"
)

const epsilon = 1e-9

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Fill(img, c)
	return img
}

func pixel(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr bool
	}{
		{"valid", 4, 3, false},
		{"zero width", 0, 3, true},
		{"negative height", 4, -1, true},
		{"too large", MaxDimension + 1, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := New(tt.w, tt.h)
			if tt.wantErr {
				if !errors.Is(err, errkind.ErrResourceUnavailable) {
					t.Fatalf("New(%d, %d) error = %v, want ErrResourceUnavailable", tt.w, tt.h, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if img.Rect.Dx() != tt.w || img.Rect.Dy() != tt.h {
				t.Errorf("size = %v", img.Rect)
			}
		})
	}
}

func TestFromImage(t *testing.T) {
	rgba := solid(2, 2, color.RGBA{1, 2, 3, 4})
	if FromImage(rgba) != rgba {
		t.Error("origin-anchored RGBA should be returned as is")
	}

	nrgba := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	nrgba.SetNRGBA(5, 5, color.NRGBA{255, 0, 0, 128})
	got := FromImage(nrgba)
	if got.Rect != image.Rect(0, 0, 2, 1) {
		t.Fatalf("rect = %v", got.Rect)
	}
	if p := pixel(got, 0, 0); p.A != 128 || p.R != 128 {
		t.Errorf("pixel = %v, want premultiplied red at half alpha", p)
	}

	if !IsEmpty(FromImage(nil)) {
		t.Error("FromImage(nil) should be empty")
	}
}

func TestCloneIndependent(t *testing.T) {
	src := solid(3, 3, color.RGBA{10, 20, 30, 255})
	dup := Clone(src)
	Clear(src)
	if p := pixel(dup, 1, 1); p != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("clone changed with source: %v", p)
	}
}

func TestBilinear(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{0, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{200, 200, 200, 255})

	tests := []struct {
		name  string
		x, y  float64
		wantR float64
	}{
		{"left centre", 0.5, 0.5, 0},
		{"right centre", 1.5, 0.5, 200},
		{"midpoint", 1.0, 0.5, 100},
		{"clamped left", -3, 0.5, 0},
		{"clamped right", 9, 0.5, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bilinear(img, tt.x, tt.y)
			if math.Abs(got.R-tt.wantR) > epsilon {
				t.Errorf("Bilinear(%v, %v).R = %v, want %v", tt.x, tt.y, got.R, tt.wantR)
			}
		})
	}
}

func TestBilinearPremultiplied(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	// Transparent black neighbour must not darken the colour, only the alpha.
	got := Bilinear(img, 1.0, 0.5)
	r, _, _, a := got.Bytes()
	if r != a {
		t.Errorf("premultiplied red blend = r %d, a %d; want r == a", r, a)
	}
}

func TestGenerateMipmaps(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		wantLevels int
	}{
		{"64x64", 64, 64, 7},
		{"128x64", 128, 64, 8},
		{"1x1", 1, 1, 1},
		{"100x50", 100, 50, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := solid(tt.w, tt.h, color.RGBA{40, 80, 120, 200})
			chain := GenerateMipmaps(src)
			defer chain.Release()
			if chain.NumLevels() != tt.wantLevels {
				t.Fatalf("NumLevels = %d, want %d", chain.NumLevels(), tt.wantLevels)
			}
			if chain.Level(0) != src {
				t.Error("level 0 must be the source")
			}
			last := chain.Level(tt.wantLevels - 1)
			if p := pixel(last, 0, 0); p != (color.RGBA{40, 80, 120, 200}) {
				t.Errorf("uniform image averaged to %v", p)
			}
		})
	}
	if GenerateMipmaps(Empty()) != nil {
		t.Error("empty source should yield nil chain")
	}
}

func TestLevelIndex(t *testing.T) {
	chain := GenerateMipmaps(solid(64, 64, color.RGBA{A: 255}))
	defer chain.Release()
	tests := []struct {
		scale float64
		want  int
	}{
		{2, 0},
		{1, 0},
		{0.5, 1},
		{0.3, 1},
		{0.25, 2},
		{1e-9, 6},
		{0, 0},
	}
	for _, tt := range tests {
		if got := chain.LevelIndex(tt.scale); got != tt.want {
			t.Errorf("LevelIndex(%v) = %d, want %d", tt.scale, got, tt.want)
		}
	}
}

func TestPoolReuse(t *testing.T) {
	p := NewPool(1)
	a := p.Get(4, 4)
	Fill(a, color.RGBA{9, 9, 9, 9})
	p.Put(a)
	b := p.Get(4, 4)
	if b != a {
		t.Fatal("expected pooled buffer")
	}
	if pixel(b, 2, 2) != (color.RGBA{}) {
		t.Error("pooled buffer not cleared")
	}
	c := p.Get(4, 4)
	if c == a {
		t.Error("buffer handed out twice")
	}
}

func TestAffine(t *testing.T) {
	tests := []struct {
		name       string
		m          Affine
		inX, inY   float64
		outX, outY float64
	}{
		{"identity", Identity(), 3, 4, 3, 4},
		{"translate", Translate(5, -2), 1, 1, 6, -1},
		{"scale", Scale(2, 3), 1, 1, 2, 3},
		{"rotate quarter turn clockwise on screen", Rotate(math.Pi / 2), 1, 0, 0, 1},
		{"rotate at centre", RotateAt(math.Pi, 5, 5), 0, 0, 10, 10},
		{"rect to", RectTo(10, 10, 2, 3, 20, 5), 10, 10, 22, 8},
		{"then order", Translate(1, 0).Then(Scale(2, 2)), 0, 0, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.m.TransformPoint(tt.inX, tt.inY)
			if math.Abs(x-tt.outX) > epsilon || math.Abs(y-tt.outY) > epsilon {
				t.Errorf("TransformPoint(%v, %v) = (%v, %v), want (%v, %v)", tt.inX, tt.inY, x, y, tt.outX, tt.outY)
			}
			inv, ok := tt.m.Invert()
			if !ok {
				t.Fatal("not invertible")
			}
			bx, by := inv.TransformPoint(x, y)
			if math.Abs(bx-tt.inX) > 1e-6 || math.Abs(by-tt.inY) > 1e-6 {
				t.Errorf("round trip = (%v, %v)", bx, by)
			}
		})
	}

	if _, ok := Scale(0, 1).Invert(); ok {
		t.Error("singular matrix inverted")
	}
	if got := Translate(3, 4).ToAff3(); got[2] != 3 || got[5] != 4 || got[0] != 1 {
		t.Errorf("ToAff3 = %v", got)
	}
}

func TestPatternRepeat(t *testing.T) {
	tile := image.NewRGBA(image.Rect(0, 0, 2, 1))
	tile.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	tile.SetRGBA(1, 0, color.RGBA{0, 0, 255, 255})
	pat := NewPattern(tile)

	for x := 0; x < 6; x++ {
		r, _, b, _ := pat.Sample(float64(x)+0.5, 0.5).Bytes()
		wantRed := x%2 == 0
		if wantRed && (r != 255 || b != 0) || !wantRed && (r != 0 || b != 255) {
			t.Errorf("x=%d: r=%d b=%d", x, r, b)
		}
	}
	if NewPattern(Empty()) != nil {
		t.Error("empty pattern should be nil")
	}
}

func TestPatternWrap(t *testing.T) {
	if got := wrap(-0.5, 2); math.Abs(got-1.5) > epsilon {
		t.Errorf("wrap(-0.5, 2) = %v, want 1.5", got)
	}
}

func TestDrawImageStretch(t *testing.T) {
	src := solid(2, 2, color.RGBA{0, 0, 255, 255})
	dst := image.NewRGBA(image.Rect(0, 0, 8, 6))
	DrawImage(dst, src, DrawParams{Transform: RectTo(2, 2, 0, 0, 8, 6), Opacity: 1, Mode: blend.SourceOver})
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			if p := pixel(dst, x, y); p != (color.RGBA{0, 0, 255, 255}) {
				t.Fatalf("(%d, %d) = %v", x, y, p)
			}
		}
	}
}

func TestDrawImageOpacity(t *testing.T) {
	dst := solid(4, 4, color.RGBA{255, 0, 0, 255})
	src := solid(4, 4, color.RGBA{0, 0, 255, 255})
	DrawImage(dst, src, DrawParams{Transform: Identity(), Opacity: 0.5, Mode: blend.SourceOver})
	p := pixel(dst, 2, 2)
	if p.A != 255 || absDiff(p.R, 127) > 2 || absDiff(p.B, 128) > 2 || p.G != 0 {
		t.Errorf("half blue over red = %v", p)
	}
}

func TestDrawImageOffsetBounded(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 6, 6))
	src := solid(2, 2, color.RGBA{0, 255, 0, 255})
	DrawImage(dst, src, DrawParams{Transform: Translate(3, 3), Opacity: 1, Mode: blend.SourceOver})
	if pixel(dst, 3, 3).G != 255 || pixel(dst, 4, 4).G != 255 {
		t.Error("footprint not drawn")
	}
	if pixel(dst, 2, 2).A != 0 || pixel(dst, 5, 5).A != 0 {
		t.Error("drawn outside footprint")
	}
}

func TestDrawImageDestinationInClearsOutside(t *testing.T) {
	dst := solid(6, 6, color.RGBA{255, 0, 0, 255})
	mask := solid(2, 2, color.RGBA{0, 0, 0, 255})
	DrawImage(dst, mask, DrawParams{Transform: Translate(2, 2), Opacity: 1, Mode: blend.DestinationIn})
	if p := pixel(dst, 2, 2); p != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("inside mask = %v", p)
	}
	if p := pixel(dst, 0, 0); p != (color.RGBA{}) {
		t.Errorf("outside mask = %v, want cleared", p)
	}
}

func TestFillPatternMultiply(t *testing.T) {
	dst := solid(4, 4, color.RGBA{255, 255, 255, 255})
	tile := solid(2, 2, color.RGBA{128, 0, 0, 255})
	FillPattern(dst, NewPattern(tile), blend.Multiply)
	if p := pixel(dst, 3, 3); p != (color.RGBA{128, 0, 0, 255}) {
		t.Errorf("multiply by tile = %v", p)
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	src := solid(3, 2, color.RGBA{0, 128, 0, 255})
	url, err := DataURL(src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("prefix = %q", url[:24])
	}
	mediaType, data, err := ParseDataURL(url)
	if err != nil {
		t.Fatal(err)
	}
	if mediaType != "image/png" {
		t.Errorf("media type = %q", mediaType)
	}
	img, format, err := DecodeBytes(data)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || img.Bounds().Dx() != 3 {
		t.Errorf("decoded %s %v", format, img.Bounds())
	}
}

func TestParseDataURLErrors(t *testing.T) {
	for _, in := range []string{
		"http://x/y.png",
		"data:image/png;base64",
		"data:text/plain;base64,aGk=",
		"data:image/png,raw",
		"data:image/png;base64,!!!",
	} {
		if _, _, err := ParseDataURL(in); !errors.Is(err, ErrMalformedDataURL) {
			t.Errorf("ParseDataURL(%q) error = %v", in, err)
		}
	}
}

func TestDecodeUnsupported(t *testing.T) {
	if _, _, err := Decode(bytes.NewReader([]byte("not an image"))); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v", err)
	}
	if _, _, err := DecodeBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("error = %v", err)
	}
}

func absDiff(a, b byte) byte {
	if a > b {
		return a - b
	}
	return b - a
}
