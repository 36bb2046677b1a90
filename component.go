package effectpic

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/effectpic/internal/blend"
	"github.com/gogpu/effectpic/perspective"
	"github.com/gogpu/effectpic/warp"
)

// Point is a position in canvas pixels, y pointing down.
type Point = warp.Point

// LayerType names the three kinds of component.
type LayerType uint8

const (
	// TypeBackground is stretched over the whole canvas, below everything.
	TypeBackground LayerType = iota

	// TypeCustom hosts a user-supplied image deformed onto a surface and
	// shaded by the component's own image.
	TypeCustom

	// TypeForeground is placed over everything else.
	TypeForeground
)

var layerTypeNames = [...]string{
	TypeBackground: "background",
	TypeCustom:     "custom",
	TypeForeground: "foreground",
}

// String returns the descriptor name of the type.
func (t LayerType) String() string {
	if int(t) < len(layerTypeNames) {
		return layerTypeNames[t]
	}
	return fmt.Sprintf("LayerType(%d)", uint8(t))
}

// ParseLayerType maps a descriptor type name to a LayerType.
func ParseLayerType(name string) (LayerType, error) {
	for t, n := range layerTypeNames {
		if n == name {
			return LayerType(t), nil
		}
	}
	return 0, fmt.Errorf("effectpic: component type %q: %w", name, ErrUnsupportedComponentType)
}

// Component describes one layer of a composition.
type Component struct {
	// Name identifies the component. Names are compared in Unicode NFC.
	Name string

	// Src locates the component image; it is resolved by the composition's
	// source.Loader.
	Src string

	// Index orders components of the same type. Higher indices are drawn
	// first, so lower indices end up on top.
	Index int

	// Layer holds the type-specific parameters: Background, Foreground or
	// Custom.
	Layer Layer
}

// Type returns the type of c's layer.
func (c Component) Type() LayerType {
	if c.Layer == nil {
		return TypeBackground
	}
	return c.Layer.layerType()
}

// Layer is the sealed set of layer parameters.
type Layer interface {
	layerType() LayerType
}

// Background stretches the component image over the canvas.
type Background struct{}

// Foreground draws the component image scaled, offset from the canvas
// centre by Position and rotated about the canvas centre.
type Foreground struct {
	Position Point
	// Opacity, ScaleX and ScaleY treat zero as 1.
	Opacity        float64
	Rotate         float64 // degrees, clockwise
	ScaleX, ScaleY float64
}

// Custom deforms a supplied input image, masks it with the component image
// and shades it by filling the canvas with the component image under
// CompositeOp. Without an input the component image is stretched over the
// canvas like a background.
type Custom struct {
	Position Point
	// Opacity, ScaleX and ScaleY treat zero as 1.
	Opacity        float64
	Rotate         float64 // degrees, clockwise; warp only
	ScaleX, ScaleY float64

	// Deform is nil, WarpDeform or TransformDeform. Nil warps with the
	// evenly spaced grid of the first input.
	Deform Deform

	// CompositeOp is the canvas composite-operation name used for the
	// shading fill. Empty means multiply.
	CompositeOp CompositeOp
}

func (Background) layerType() LayerType { return TypeBackground }
func (Foreground) layerType() LayerType { return TypeForeground }
func (Custom) layerType() LayerType     { return TypeCustom }

// Deform is the sealed set of surface deformations.
type Deform interface {
	deform()
}

// WarpDeform bends the input along a bicubic Bezier patch.
type WarpDeform struct {
	Grid warp.Grid
}

// TransformDeform maps the input quad Src (nil means the input corners)
// onto Dst with a perspective transform. Position is ignored.
type TransformDeform struct {
	Src *perspective.Quad
	Dst perspective.Quad
}

func (WarpDeform) deform()      {}
func (TransformDeform) deform() {}

// CompositeOp is a canvas globalCompositeOperation name, such as
// "multiply", "screen" or "source-over".
type CompositeOp string

// Common composite operations.
const (
	OpSourceOver CompositeOp = "source-over"
	OpMultiply   CompositeOp = "multiply"
	OpScreen     CompositeOp = "screen"
	OpOverlay    CompositeOp = "overlay"
	OpSoftLight  CompositeOp = "soft-light"
	OpHardLight  CompositeOp = "hard-light"
	OpLuminosity CompositeOp = "luminosity"
)

func (op CompositeOp) mode() (blend.Mode, error) {
	if op == "" {
		return blend.Multiply, nil
	}
	return blend.Parse(string(op))
}

// orOne returns v, or 1 when v is zero.
func orOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// componentJSON is the descriptor shape produced by the layer export script.
type componentJSON struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Src       string  `json:"src"`
	Index     int     `json:"index,omitempty"`
	Position  *Point  `json:"position,omitempty"`
	Opacity   float64 `json:"opacity,omitempty"`
	Rotate    float64 `json:"rotate,omitempty"`
	ScaleX    float64 `json:"scaleX,omitempty"`
	ScaleY    float64 `json:"scaleY,omitempty"`
	Transform *struct {
		SrcPoints []float64 `json:"srcPoints"`
		DstPoints []float64 `json:"dstPoints"`
	} `json:"transform,omitempty"`
	Warp    [][]float64 `json:"warp,omitempty"`
	Filters *struct {
		GlobalCompositeOperation CompositeOp `json:"globalCompositeOperation"`
	} `json:"filters,omitempty"`
}

// UnmarshalJSON decodes a component descriptor:
//
//	{"name": "cup", "type": "custom", "src": "cup.png", "index": 1,
//	 "position": {"x": 10, "y": 20}, "opacity": 0.9,
//	 "warp": [[0, 0], [100, 0], ...],
//	 "filters": {"globalCompositeOperation": "multiply"}}
//
// Point arrays are validated here: a warp with fewer than 16 points, a
// transform without exactly 8 values per quad, or both a warp and a
// transform fail with ErrInvalidArgument. An unknown type fails with
// ErrUnsupportedComponentType.
func (c *Component) UnmarshalJSON(data []byte) error {
	var raw componentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	typ, err := ParseLayerType(raw.Type)
	if err != nil {
		return err
	}

	var pos Point
	if raw.Position != nil {
		pos = *raw.Position
	}
	out := Component{Name: raw.Name, Src: raw.Src, Index: raw.Index}
	switch typ {
	case TypeBackground:
		out.Layer = Background{}
	case TypeForeground:
		out.Layer = Foreground{
			Position: pos,
			Opacity:  raw.Opacity,
			Rotate:   raw.Rotate,
			ScaleX:   raw.ScaleX,
			ScaleY:   raw.ScaleY,
		}
	case TypeCustom:
		custom := Custom{
			Position: pos,
			Opacity:  raw.Opacity,
			Rotate:   raw.Rotate,
			ScaleX:   raw.ScaleX,
			ScaleY:   raw.ScaleY,
		}
		if raw.Filters != nil {
			custom.CompositeOp = raw.Filters.GlobalCompositeOperation
		}
		if custom.Deform, err = raw.deform(); err != nil {
			return fmt.Errorf("effectpic: component %q: %w", raw.Name, err)
		}
		out.Layer = custom
	}
	*c = out
	return nil
}

func (raw *componentJSON) deform() (Deform, error) {
	switch {
	case raw.Warp != nil && raw.Transform != nil:
		return nil, fmt.Errorf("both warp and transform given: %w", ErrInvalidArgument)
	case raw.Warp != nil:
		g, err := warp.GridFromPairs(raw.Warp)
		if err != nil {
			return nil, err
		}
		return WarpDeform{Grid: g}, nil
	case raw.Transform != nil:
		dst, err := perspective.NewQuad(raw.Transform.DstPoints)
		if err != nil {
			return nil, err
		}
		d := TransformDeform{Dst: dst}
		if raw.Transform.SrcPoints != nil {
			src, err := perspective.NewQuad(raw.Transform.SrcPoints)
			if err != nil {
				return nil, err
			}
			d.Src = &src
		}
		return d, nil
	}
	return nil, nil
}

// MarshalJSON encodes c in the descriptor shape read by UnmarshalJSON.
func (c Component) MarshalJSON() ([]byte, error) {
	raw := componentJSON{Name: c.Name, Src: c.Src, Index: c.Index, Type: c.Type().String()}
	switch l := c.Layer.(type) {
	case Foreground:
		raw.Position = &l.Position
		raw.Opacity, raw.Rotate, raw.ScaleX, raw.ScaleY = l.Opacity, l.Rotate, l.ScaleX, l.ScaleY
	case Custom:
		raw.Position = &l.Position
		raw.Opacity, raw.Rotate, raw.ScaleX, raw.ScaleY = l.Opacity, l.Rotate, l.ScaleX, l.ScaleY
		if l.CompositeOp != "" {
			raw.Filters = &struct {
				GlobalCompositeOperation CompositeOp `json:"globalCompositeOperation"`
			}{l.CompositeOp}
		}
		switch d := l.Deform.(type) {
		case WarpDeform:
			raw.Warp = d.Grid.Pairs()
		case TransformDeform:
			raw.Transform = &struct {
				SrcPoints []float64 `json:"srcPoints"`
				DstPoints []float64 `json:"dstPoints"`
			}{DstPoints: d.Dst[:]}
			if d.Src != nil {
				raw.Transform.SrcPoints = d.Src[:]
			}
		}
	}
	return json.Marshal(raw)
}
