package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	minCropScale   = 0.2
	maxCropScale   = 3.0
	minStitchScale = 0.01
	maxStitchScale = 5.0
)

// CropArea is the pan and zoom applied to a nine-grid source. X and Y are in
// preview pixels.
type CropArea struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
}

func (c CropArea) Pan() UIPan {
	return UIPan{X: c.X, Y: c.Y}
}

func (c CropArea) normalized() (CropArea, error) {
	if !finite(c.X, c.Y, c.Scale) {
		return CropArea{}, invalidf("crop area must be finite, got %+v", c)
	}
	c.Scale = clamp(c.Scale, minCropScale, maxCropScale)
	return c, nil
}

// StitchItem is one image in a vertical stitch. X and Y are percentages of
// the item's own cover-fit rendered width and height.
type StitchItem struct {
	ID     string    `json:"id"`
	Source SourceRef `json:"source"`
	Ratio  Ratio     `json:"ratio"`
	Scale  float64   `json:"scale"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
}

func (it StitchItem) Pan() PercentPan {
	return PercentPan{X: it.X, Y: it.Y}
}

// UnmarshalJSON defaults an omitted scale to 1 rather than the minimum, and
// rejects unknown fields.
func (it *StitchItem) UnmarshalJSON(b []byte) error {
	type plain StitchItem
	p := plain{Ratio: RatioOriginal, Scale: 1}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return err
	}
	*it = StitchItem(p)
	return nil
}

// SetRatio changes the slot shape. Pan and zoom only make sense for the ratio
// they were set under, so they are reset.
func (it *StitchItem) SetRatio(r Ratio) {
	it.Ratio = r
	it.Scale = 1
	it.X = 0
	it.Y = 0
}

func (it StitchItem) normalized() (StitchItem, error) {
	if !finite(it.X, it.Y, it.Scale) {
		return StitchItem{}, invalidf("item %q transform must be finite", it.ID)
	}
	r, err := ParseRatio(string(it.Ratio))
	if err != nil {
		return StitchItem{}, err
	}
	it.Ratio = r
	it.Scale = clamp(it.Scale, minStitchScale, maxStitchScale)
	return it, nil
}

type StitchConfig struct {
	OuterPadding    float64 `json:"outerPadding"`
	InnerSpacing    float64 `json:"innerSpacing"`
	BackgroundColor Color   `json:"backgroundColor"`
}

func (c StitchConfig) validate() error {
	if !finite(c.OuterPadding, c.InnerSpacing) || c.OuterPadding < 0 || c.InnerSpacing < 0 {
		return invalidf("padding and spacing must be finite and non-negative")
	}
	return nil
}

// Color is an opaque color carried in JSON as a CSS hex string.
type Color struct {
	color.NRGBA
}

var (
	White = Color{color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}}
	Black = Color{color.NRGBA{A: 0xff}}
)

func ParseColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, invalidf("bad color %q", s)
	}
	r, g, b := c.RGB255()
	return Color{color.NRGBA{R: r, G: g, B: b, A: 0xff}}, nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Color) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
