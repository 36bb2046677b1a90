package effectpic

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/effectpic/perspective"
	"github.com/gogpu/effectpic/warp"
)

const descriptor = `{
  "name": "mug-mockup",
  "width": 800,
  "height": 600,
  "components": [
    {"name": "table", "type": "background", "src": "table.jpg"},
    {"name": "steam", "type": "foreground", "src": "steam.png", "index": 2,
     "position": {"x": 10, "y": -20}, "opacity": 0.8, "rotate": 5, "scaleX": 1.5},
    {"name": "print", "type": "custom", "src": "mug.png",
     "warp": [[0,0],[10,0],[20,0],[30,0],[0,10],[10,10],[20,10],[30,10],
              [0,20],[10,20],[20,20],[30,20],[0,30],[10,30],[20,30],[30,30]],
     "filters": {"globalCompositeOperation": "screen"}},
    {"name": "label", "type": "custom", "src": "label.png",
     "transform": {"srcPoints": null, "dstPoints": [1,2,3,4,5,6,7,8]}}
  ]
}`

func TestDecodeDescriptor(t *testing.T) {
	var opts Options
	if err := json.Unmarshal([]byte(descriptor), &opts); err != nil {
		t.Fatal(err)
	}
	if opts.Name != "mug-mockup" || opts.Width != 800 || opts.Height != 600 || len(opts.Components) != 4 {
		t.Fatalf("decoded %+v", opts)
	}

	if _, ok := opts.Components[0].Layer.(Background); !ok {
		t.Errorf("table layer = %T, want Background", opts.Components[0].Layer)
	}

	fg, ok := opts.Components[1].Layer.(Foreground)
	if !ok {
		t.Fatalf("steam layer = %T, want Foreground", opts.Components[1].Layer)
	}
	want := Foreground{Position: Point{X: 10, Y: -20}, Opacity: 0.8, Rotate: 5, ScaleX: 1.5}
	if fg != want || opts.Components[1].Index != 2 {
		t.Errorf("steam = %+v index %d, want %+v index 2", fg, opts.Components[1].Index, want)
	}

	printLayer, ok := opts.Components[2].Layer.(Custom)
	if !ok {
		t.Fatalf("print layer = %T, want Custom", opts.Components[2].Layer)
	}
	wd, ok := printLayer.Deform.(WarpDeform)
	if !ok {
		t.Fatalf("print deform = %T, want WarpDeform", printLayer.Deform)
	}
	if wd.Grid != warp.DefaultGrid(30, 30) || printLayer.CompositeOp != OpScreen {
		t.Errorf("print = %+v", printLayer)
	}

	label := opts.Components[3].Layer.(Custom)
	td, ok := label.Deform.(TransformDeform)
	if !ok {
		t.Fatalf("label deform = %T, want TransformDeform", label.Deform)
	}
	if td.Src != nil || td.Dst != (perspective.Quad{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("label transform = %+v", td)
	}
}

func TestDecodeComponentErrors(t *testing.T) {
	grid15 := strings.Repeat("[0,0],", 14) + "[0,0]"
	tests := []struct {
		name string
		json string
		want error
	}{
		{"unknown type", `{"name":"a","type":"overlay","src":"a.png"}`, ErrUnsupportedComponentType},
		{"short warp", `{"name":"a","type":"custom","warp":[` + grid15 + `]}`, ErrInvalidArgument},
		{"short transform", `{"name":"a","type":"custom","transform":{"dstPoints":[1,2,3,4,5,6,7]}}`, ErrInvalidArgument},
		{"long source quad", `{"name":"a","type":"custom","transform":{"srcPoints":[1,2,3,4,5,6,7,8,9],"dstPoints":[1,2,3,4,5,6,7,8]}}`, ErrInvalidArgument},
		{"warp and transform", `{"name":"a","type":"custom","warp":[` + grid15 + `,[0,0]],"transform":{"dstPoints":[1,2,3,4,5,6,7,8]}}`, ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Component
			if err := json.Unmarshal([]byte(tt.json), &c); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEncodeDescriptorShape(t *testing.T) {
	src := perspective.Corners(4, 4)
	c := Component{
		Name:  "label",
		Src:   "label.png",
		Index: 1,
		Layer: Custom{
			Position:    Point{X: 3},
			CompositeOp: OpOverlay,
			Deform:      TransformDeform{Src: &src, Dst: perspective.Quad{1, 1, 5, 1, 5, 5, 1, 5}},
		},
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"type":"custom"`, `"position":{"x":3,"y":0}`, `"globalCompositeOperation":"overlay"`, `"srcPoints":[0,0,4,0,4,4,0,4]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("encoded %s, missing %s", data, want)
		}
	}

	var back Component
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back.Type() != TypeCustom || back.Layer.(Custom).Deform.(TransformDeform).Dst[2] != 5 {
		t.Errorf("decoded %+v", back)
	}
}

func TestLayerType(t *testing.T) {
	for _, typ := range []LayerType{TypeBackground, TypeCustom, TypeForeground} {
		got, err := ParseLayerType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseLayerType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if s := LayerType(9).String(); s != "LayerType(9)" {
		t.Errorf("String = %q", s)
	}
}
