package main

import (
	"image"
	"reflect"
	"testing"

	"github.com/peterstace/simplefeatures/geom"
)

func TestCompositeClipsAroundDraw(t *testing.T) {
	s := &fakeSurface{size: image.Pt(100, 100), scale: 1}
	Composite(s, image.NewRGBA(image.Rect(0, 0, 10, 10)), rect(10, 20, 30, 40), OutputPan{}, 1)
	want := []string{"clip 10,20-40,60", "draw", "reset"}
	if !reflect.DeepEqual(s.ops, want) {
		t.Errorf("got ops %v, want %v", s.ops, want)
	}
}

func TestPlacement(t *testing.T) {
	region := rect(0, 0, 100, 100)
	bounds := image.Rect(0, 0, 50, 50)

	for _, tt := range []struct {
		name string
		pan  OutputPan
		zoom float64
		src  geom.XY
		want geom.XY
	}{
		{"centered", OutputPan{}, 1, geom.XY{X: 25, Y: 25}, geom.XY{X: 50, Y: 50}},
		{"fills region", OutputPan{}, 1, geom.XY{X: 0, Y: 0}, geom.XY{X: 0, Y: 0}},
		{"far corner", OutputPan{}, 1, geom.XY{X: 50, Y: 50}, geom.XY{X: 100, Y: 100}},
		{"pan is not zoomed", OutputPan{X: 10, Y: -5}, 2, geom.XY{X: 25, Y: 25}, geom.XY{X: 60, Y: 45}},
		{"zoom about panned origin", OutputPan{X: 10, Y: 0}, 2, geom.XY{X: 0, Y: 0}, geom.XY{X: -40, Y: -50}},
		{"zoom out", OutputPan{}, 0.5, geom.XY{X: 0, Y: 0}, geom.XY{X: 25, Y: 25}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got := apply(placement(bounds, region, tt.pan, tt.zoom), tt.src)
			if !approxEqual(got.X, tt.want.X) || !approxEqual(got.Y, tt.want.Y) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlacementOffsetBounds(t *testing.T) {
	region := rect(0, 0, 100, 100)
	m0 := placement(image.Rect(0, 0, 50, 50), region, OutputPan{X: 3}, 1.5)
	m1 := placement(image.Rect(10, 10, 60, 60), region, OutputPan{X: 3}, 1.5)
	a := apply(m0, geom.XY{X: 7, Y: 9})
	b := apply(m1, geom.XY{X: 17, Y: 19})
	if !approxEqual(a.X, b.X) || !approxEqual(a.Y, b.Y) {
		t.Errorf("offset bounds moved the image: %v vs %v", a, b)
	}
}

func TestPanConversions(t *testing.T) {
	if got := (UIPan{X: 10, Y: -4}).Output(2.5); got != (OutputPan{X: 25, Y: -10}) {
		t.Errorf("UIPan: got %v", got)
	}
	if got := (PercentPan{X: 50, Y: -25}).Output(200, 80); got != (OutputPan{X: 100, Y: -20}) {
		t.Errorf("PercentPan: got %v", got)
	}
}
