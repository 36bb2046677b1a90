package warp

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/gogpu/effectpic/offload"
)

func checker(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.RGBA{200, 40, 40, 255}
			if (x/2+y/2)%2 == 0 {
				c = color.RGBA{30, 60, 220, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func near(a, b color.RGBA, tol int) bool {
	d := func(x, y uint8) bool { return math.Abs(float64(x)-float64(y)) <= float64(tol) }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func assertSame(t *testing.T, got, want *image.RGBA, tol int) {
	t.Helper()
	if got.Rect.Size() != want.Rect.Size() {
		t.Fatalf("size = %v, want %v", got.Rect.Size(), want.Rect.Size())
	}
	for y := range want.Rect.Dy() {
		for x := range want.Rect.Dx() {
			g := got.RGBAAt(got.Rect.Min.X+x, got.Rect.Min.Y+y)
			w := want.RGBAAt(x, y)
			if !near(g, w, tol) {
				t.Fatalf("(%d, %d) = %v, want %v", x, y, g, w)
			}
		}
	}
}

func TestBernsteinPartitionOfUnity(t *testing.T) {
	for _, tt := range []float64{0, 0.1, 0.5, 0.77, 1} {
		var sum float64
		for k := range 4 {
			sum += Bernstein(3, k, tt)
		}
		if math.Abs(sum-1) > 1e-12 {
			t.Errorf("sum of B(3,k,%v) = %v, want 1", tt, sum)
		}
	}
	if got := Bernstein(3, 4, 0.5); got != 0 {
		t.Errorf("Bernstein(3, 4, 0.5) = %v, want 0", got)
	}
}

func TestGridEvalCorners(t *testing.T) {
	g := DefaultGrid(90, 60)
	g[0] = Point{5, 7}
	g[15] = Point{100, 70}

	tests := []struct {
		u, v float64
		want Point
	}{
		{0, 0, g[0]},
		{1, 0, g[3]},
		{0, 1, g[12]},
		{1, 1, g[15]},
	}
	for _, tt := range tests {
		got := g.Eval(tt.u, tt.v)
		if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
			t.Errorf("Eval(%v, %v) = %v, want %v", tt.u, tt.v, got, tt.want)
		}
	}
}

func TestNewGrid(t *testing.T) {
	pts := make([]Point, 17)
	for i := range pts {
		pts[i] = Point{float64(i), float64(-i)}
	}
	g, err := NewGrid(pts)
	if err != nil {
		t.Fatal(err)
	}
	if g[15] != (Point{15, -15}) {
		t.Errorf("g[15] = %v", g[15])
	}
	if _, err := NewGrid(pts[:15]); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("15 points: error = %v, want ErrInvalidArgument", err)
	}
}

func TestGridFromPairs(t *testing.T) {
	g := DefaultGrid(30, 30)
	back, err := GridFromPairs(g.Pairs())
	if err != nil {
		t.Fatal(err)
	}
	if back != g {
		t.Errorf("GridFromPairs(Pairs()) = %v, want %v", back, g)
	}

	short := g.Pairs()[:10]
	if _, err := GridFromPairs(short); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("10 pairs: error = %v, want ErrInvalidArgument", err)
	}
	bad := g.Pairs()
	bad[4] = []float64{1}
	if _, err := GridFromPairs(bad); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("1-element pair: error = %v, want ErrInvalidArgument", err)
	}
}

func TestMesh(t *testing.T) {
	m, err := NewMesh(2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if m.Len() != 4 {
		t.Fatalf("Len = %d, want 4", m.Len())
	}
	if v := m.Vertex(0); v != (Vertex{X: -1, Y: 1, U: 0, V: 0}) {
		t.Errorf("Vertex(0) = %+v", v)
	}
	if v := m.Vertex(3); v != (Vertex{X: 1, Y: -1, U: 1, V: 1}) {
		t.Errorf("Vertex(3) = %+v", v)
	}

	if err := Deform(m, DefaultGrid(2, 2)); err != nil {
		t.Fatal(err)
	}
	want := []Vertex{
		{X: 0, Y: 0, U: 0, V: 0},
		{X: 2, Y: 0, U: 1, V: 0},
		{X: 0, Y: 2, U: 0, V: 1},
		{X: 2, Y: 2, U: 1, V: 1},
	}
	for i, w := range want {
		got := m.Vertex(i)
		if math.Abs(got.X-w.X) > 1e-5 || math.Abs(got.Y-w.Y) > 1e-5 || got.U != w.U || got.V != w.V || got.Z != 0 {
			t.Errorf("deformed Vertex(%d) = %+v, want %+v", i, got, w)
		}
	}

	for _, seg := range []int{0, -3} {
		if _, err := NewMesh(2, 2, seg); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("NewMesh segments %d: error = %v, want ErrInvalidArgument", seg, err)
		}
	}
}

func TestWarpIdentity(t *testing.T) {
	src := checker(12, 8)
	out, err := Warp(context.Background(), src, DefaultGrid(12, 8), WithSegments(6))
	if err != nil {
		t.Fatal(err)
	}
	assertSame(t, out, src, 1)
}

func TestWarpDefaultSegments(t *testing.T) {
	src := checker(10, 10)
	out, err := Warp(context.Background(), src, DefaultGrid(10, 10))
	if err != nil {
		t.Fatal(err)
	}
	assertSame(t, out, src, 1)
}

func TestWarpTranslatedGridIsCropped(t *testing.T) {
	src := checker(8, 8)
	g := DefaultGrid(8, 8)
	for i := range g {
		g[i].X += 2
		g[i].Y += 2
	}
	out, err := Warp(context.Background(), src, g, WithSegments(4))
	if err != nil {
		t.Fatal(err)
	}
	assertSame(t, out, src, 1)
}

func TestWarpScale(t *testing.T) {
	src := checker(8, 8)
	out, err := Warp(context.Background(), src, DefaultGrid(8, 8), WithSegments(4), WithScale(2, 2))
	if err != nil {
		t.Fatal(err)
	}
	if got := out.Rect.Size(); got != image.Pt(16, 16) {
		t.Errorf("size at scale 2 = %v, want 16x16", got)
	}
}

func TestWarpRotation(t *testing.T) {
	src := checker(8, 4)
	out, err := Warp(context.Background(), src, DefaultGrid(8, 4), WithSegments(4), WithRotation(90))
	if err != nil {
		t.Fatal(err)
	}
	w, h := out.Rect.Dx(), out.Rect.Dy()
	if w < 4 || w > 6 || h < 7 || h > 8 {
		t.Errorf("rotated size = %dx%d, want about 4x8", w, h)
	}
}

func TestWarpCollapsedGrid(t *testing.T) {
	var g Grid
	for i := range g {
		g[i] = Point{3, 3}
	}
	out, err := Warp(context.Background(), checker(8, 8), g, WithSegments(4))
	if err != nil {
		t.Fatal(err)
	}
	if !out.Rect.Empty() {
		t.Errorf("collapsed patch = %v, want zero-size image", out.Rect)
	}
}

func TestWarpInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  image.Image
		opts []Option
	}{
		{"zero segments", checker(4, 4), []Option{WithSegments(0)}},
		{"negative size", checker(4, 4), []Option{WithSize(-4, 4)}},
		{"empty source", image.NewRGBA(image.Rectangle{}), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Warp(context.Background(), tt.src, DefaultGrid(4, 4), tt.opts...)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestWarpCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Warp(ctx, checker(4, 4), DefaultGrid(4, 4))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestWarpOffloadMatchesInline(t *testing.T) {
	coord := offload.NewCoordinator(3)
	defer coord.Close()

	src := checker(24, 16)
	g := DefaultGrid(24, 16)
	g[5] = Point{6, 2}
	g[10] = Point{19, 13}
	opts := []Option{WithSegments(12), WithScale(1.3, 0.9), WithRotation(17)}

	inline, err := Warp(context.Background(), src, g, opts...)
	if err != nil {
		t.Fatal(err)
	}
	remote, err := Warp(context.Background(), src, g, append(opts, WithOffload(coord))...)
	if err != nil {
		t.Fatal(err)
	}
	assertSame(t, remote, inline, 0)
}

var errBands = errors.New("bands failed")

type failingRunner struct{}

func (failingRunner) Bands(int, int, func(lo, hi int)) error { return errBands }

func TestRasterizeErrorKeepsCause(t *testing.T) {
	m, err := NewMesh(4, 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	buf := image.NewRGBA(image.Rect(0, 0, 8, 8))
	err = rasterize(failingRunner{}, defaultOptions(), m, checker(4, 4), buf)
	if !errors.Is(err, errBands) {
		t.Fatalf("error = %v, want %v", err, errBands)
	}
	if errors.Is(err, ErrWorkerFailure) {
		t.Error("local rasterization error reported as a worker failure")
	}
}

func BenchmarkWarp(b *testing.B) {
	src := checker(256, 256)
	g := DefaultGrid(256, 256)
	g[5] = Point{70, 60}
	ctx := context.Background()

	b.Run("inline", func(b *testing.B) {
		for b.Loop() {
			if _, err := Warp(ctx, src, g); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("offload", func(b *testing.B) {
		coord := offload.NewCoordinator(0)
		defer coord.Close()
		for b.Loop() {
			if _, err := Warp(ctx, src, g, WithOffload(coord)); err != nil {
				b.Fatal(err)
			}
		}
	})
}
