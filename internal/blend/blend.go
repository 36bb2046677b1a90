// Package blend implements Porter-Duff compositing operators and W3C blend modes
// on premultiplied 8-bit RGBA, addressed by their canvas composite-operation names.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

import (
	"fmt"

	"github.com/gogpu/effectpic/internal/errkind"
)

// Mode is a composite operation.
type Mode uint8

// Porter-Duff operators.
const (
	SourceOver      Mode = iota // S + D*(1-Sa) [default]
	SourceIn                    // S*Da
	SourceOut                   // S*(1-Da)
	SourceAtop                  // S*Da + D*(1-Sa)
	DestinationOver             // S*(1-Da) + D
	DestinationIn               // D*Sa
	DestinationOut              // D*(1-Sa)
	DestinationAtop             // S*(1-Da) + D*Sa
	Copy                        // S
	Xor                         // S*(1-Da) + D*(1-Sa)
	Lighter                     // S + D, clamped
)

// Separable and non-separable blend modes.
const (
	Multiply Mode = iota + Lighter + 1
	Screen
	Overlay
	Darken
	Lighten
	ColorDodge
	ColorBurn
	HardLight
	SoftLight
	Difference
	Exclusion
	Hue
	Saturation
	Color
	Luminosity

	modeCount
)

var modeNames = [modeCount]string{
	SourceOver:      "source-over",
	SourceIn:        "source-in",
	SourceOut:       "source-out",
	SourceAtop:      "source-atop",
	DestinationOver: "destination-over",
	DestinationIn:   "destination-in",
	DestinationOut:  "destination-out",
	DestinationAtop: "destination-atop",
	Copy:            "copy",
	Xor:             "xor",
	Lighter:         "lighter",
	Multiply:        "multiply",
	Screen:          "screen",
	Overlay:         "overlay",
	Darken:          "darken",
	Lighten:         "lighten",
	ColorDodge:      "color-dodge",
	ColorBurn:       "color-burn",
	HardLight:       "hard-light",
	SoftLight:       "soft-light",
	Difference:      "difference",
	Exclusion:       "exclusion",
	Hue:             "hue",
	Saturation:      "saturation",
	Color:           "color",
	Luminosity:      "luminosity",
}

// String returns the canvas composite-operation name of the mode.
func (m Mode) String() string {
	if m >= modeCount {
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
	return modeNames[m]
}

// Parse returns the mode for a canvas composite-operation name.
func Parse(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return Mode(m), nil
		}
	}
	return SourceOver, fmt.Errorf("blend: unknown composite operation %q: %w", name, errkind.ErrInvalidArgument)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m >= modeCount {
		return nil, fmt.Errorf("blend: invalid mode %d: %w", uint8(m), errkind.ErrInvalidArgument)
	}
	return []byte(modeNames[m]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Unbounded reports whether the operation also affects destination pixels the
// source does not cover. Canvas treats uncovered pixels as transparent source
// for these operators, so destination-in clears everything outside the source.
func (m Mode) Unbounded() bool {
	switch m {
	case SourceIn, SourceOut, DestinationIn, DestinationAtop, Copy:
		return true
	default:
		return false
	}
}

// Func is the signature for blend operations.
// All values are premultiplied alpha, 0-255.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// Func returns the blend function for the mode.
// Unknown modes fall back to source-over.
func (m Mode) Func() Func {
	switch m {
	case SourceOver:
		return blendSourceOver
	case SourceIn:
		return blendSourceIn
	case SourceOut:
		return blendSourceOut
	case SourceAtop:
		return blendSourceAtop
	case DestinationOver:
		return blendDestinationOver
	case DestinationIn:
		return blendDestinationIn
	case DestinationOut:
		return blendDestinationOut
	case DestinationAtop:
		return blendDestinationAtop
	case Copy:
		return blendCopy
	case Xor:
		return blendXor
	case Lighter:
		return blendLighter

	case Multiply:
		return blendMultiply
	case Screen:
		return blendScreen
	case Overlay:
		return blendOverlay
	case Darken:
		return blendDarken
	case Lighten:
		return blendLighten
	case ColorDodge:
		return blendColorDodge
	case ColorBurn:
		return blendColorBurn
	case HardLight:
		return blendHardLight
	case SoftLight:
		return blendSoftLight
	case Difference:
		return blendDifference
	case Exclusion:
		return blendExclusion

	case Hue:
		return blendHue
	case Saturation:
		return blendSaturation
	case Color:
		return blendColor
	case Luminosity:
		return blendLuminosity

	default:
		return blendSourceOver
	}
}
