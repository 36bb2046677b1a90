package blend

import (
	"errors"
	"testing"

	"github.com/gogpu/effectpic/internal/errkind"
)

type px struct{ r, g, b, a byte }

func apply(m Mode, s, d px) px {
	r, g, b, a := m.Func()(s.r, s.g, s.b, s.a, d.r, d.g, d.b, d.a)
	return px{r, g, b, a}
}

var (
	red         = px{255, 0, 0, 255}
	blue        = px{0, 0, 255, 255}
	white       = px{255, 255, 255, 255}
	grey        = px{128, 128, 128, 255}
	transparent = px{}
	halfBlue    = px{0, 0, 128, 128}
)

func TestPorterDuff(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		src  px
		dst  px
		want px
	}{
		{"source-over opaque", SourceOver, blue, red, blue},
		{"source-over half", SourceOver, halfBlue, red, px{127, 0, 128, 255}},
		{"source-over transparent src", SourceOver, transparent, red, red},
		{"source-in", SourceIn, blue, px{0, 0, 0, 128}, px{0, 0, 128, 128}},
		{"source-out", SourceOut, blue, red, transparent},
		{"source-atop", SourceAtop, halfBlue, red, px{127, 0, 128, 255}},
		{"destination-over", DestinationOver, blue, red, red},
		{"destination-in opaque", DestinationIn, blue, red, red},
		{"destination-in transparent", DestinationIn, transparent, red, transparent},
		{"destination-in half", DestinationIn, halfBlue, red, px{128, 0, 0, 128}},
		{"destination-out", DestinationOut, blue, red, transparent},
		{"destination-atop", DestinationAtop, halfBlue, red, px{128, 0, 0, 128}},
		{"copy", Copy, halfBlue, red, halfBlue},
		{"xor both opaque", Xor, blue, red, transparent},
		{"lighter", Lighter, blue, red, px{255, 0, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apply(tt.mode, tt.src, tt.dst); got != tt.want {
				t.Errorf("%v(%v, %v) = %v, want %v", tt.mode, tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

func TestSeparable(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		src  px
		dst  px
		want px
	}{
		{"multiply by white", Multiply, white, red, red},
		{"multiply red blue", Multiply, red, blue, px{0, 0, 0, 255}},
		{"multiply grey", Multiply, grey, white, grey},
		{"multiply onto transparent", Multiply, red, transparent, red},
		{"multiply transparent src", Multiply, transparent, blue, blue},
		{"screen black", Screen, px{0, 0, 0, 255}, grey, grey},
		{"screen white", Screen, white, grey, white},
		{"darken", Darken, grey, white, grey},
		{"lighten", Lighten, grey, white, white},
		{"difference same", Difference, white, white, px{0, 0, 0, 255}},
		{"difference red white", Difference, red, white, px{0, 255, 255, 255}},
		{"exclusion white", Exclusion, white, red, px{0, 255, 255, 255}},
		{"overlay white dst", Overlay, grey, white, white},
		{"hard-light white src", HardLight, white, grey, white},
		{"color-dodge black dst", ColorDodge, white, px{0, 0, 0, 255}, px{0, 0, 0, 255}},
		{"color-burn white dst", ColorBurn, px{0, 0, 0, 255}, white, white},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apply(tt.mode, tt.src, tt.dst); got != tt.want {
				t.Errorf("%v(%v, %v) = %v, want %v", tt.mode, tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

// TestHardLightNoOverflow covers channels above the midpoint, where doubling
// a byte would wrap.
func TestHardLightNoOverflow(t *testing.T) {
	for s := 0; s < 256; s++ {
		prev := byte(0)
		for d := 0; d < 256; d++ {
			got := hardLight(byte(s), byte(d))
			if got < prev {
				t.Fatalf("hardLight(%d, %d) = %d decreases from %d", s, d, got, prev)
			}
			prev = got
		}
	}
}

func TestNonSeparable(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		src  px
		dst  px
		want px
	}{
		{"luminosity grey on grey", Luminosity, grey, grey, grey},
		{"color onto transparent", Color, red, transparent, red},
		{"hue transparent src", Hue, transparent, blue, blue},
		{"saturation of grey src", Saturation, grey, grey, grey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := apply(tt.mode, tt.src, tt.dst); got != tt.want {
				t.Errorf("%v(%v, %v) = %v, want %v", tt.mode, tt.src, tt.dst, got, tt.want)
			}
		})
	}
}

// TestPremultipliedInvariant checks that no mode yields a colour channel
// greater than its alpha.
func TestPremultipliedInvariant(t *testing.T) {
	samples := []px{red, blue, white, grey, transparent, halfBlue, {10, 20, 30, 40}, {200, 100, 50, 220}}
	for m := SourceOver; m < modeCount; m++ {
		for _, s := range samples {
			for _, d := range samples {
				got := apply(m, s, d)
				if got.r > got.a || got.g > got.a || got.b > got.a {
					t.Errorf("%v(%v, %v) = %v breaks premultiplication", m, s, d, got)
				}
			}
		}
	}
}

func TestParse(t *testing.T) {
	for m := SourceOver; m < modeCount; m++ {
		t.Run(m.String(), func(t *testing.T) {
			got, err := Parse(m.String())
			if err != nil {
				t.Fatalf("Parse(%q): %v", m.String(), err)
			}
			if got != m {
				t.Errorf("Parse(%q) = %v, want %v", m.String(), got, m)
			}
		})
	}

	if _, err := Parse("plus-darker"); !errors.Is(err, errkind.ErrInvalidArgument) {
		t.Errorf("Parse(unknown) error = %v, want ErrInvalidArgument", err)
	}
}

func TestModeText(t *testing.T) {
	var m Mode
	if err := m.UnmarshalText([]byte("color-dodge")); err != nil {
		t.Fatal(err)
	}
	if m != ColorDodge {
		t.Errorf("UnmarshalText = %v, want color-dodge", m)
	}
	text, err := Multiply.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if string(text) != "multiply" {
		t.Errorf("MarshalText = %q", text)
	}
	if _, err := Mode(200).MarshalText(); err == nil {
		t.Error("MarshalText(invalid) succeeded")
	}
	if got := Mode(200).String(); got != "Mode(200)" {
		t.Errorf("String() = %q", got)
	}
}

func TestUnbounded(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{SourceOver, false},
		{Multiply, false},
		{DestinationIn, true},
		{SourceIn, true},
		{Copy, true},
		{Xor, false},
	}
	for _, tt := range tests {
		if got := tt.mode.Unbounded(); got != tt.want {
			t.Errorf("%v.Unbounded() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func BenchmarkMultiply(b *testing.B) {
	f := Multiply.Func()
	for i := 0; i < b.N; i++ {
		f(200, 100, 50, 220, 30, 60, 90, 255)
	}
}
