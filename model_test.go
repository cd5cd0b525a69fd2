package main

import (
	"encoding/json"
	"errors"
	"image/color"
	"math"
	"testing"
)

func TestColorJSON(t *testing.T) {
	var cfg StitchConfig
	if err := json.Unmarshal([]byte(`{"outerPadding":4,"backgroundColor":"#1a2B3c"}`), &cfg); err != nil {
		t.Fatal(err)
	}
	want := color.NRGBA{R: 0x1a, G: 0x2b, B: 0x3c, A: 0xff}
	if cfg.BackgroundColor.NRGBA != want {
		t.Errorf("got %v, want %v", cfg.BackgroundColor.NRGBA, want)
	}
	out, err := json.Marshal(cfg.BackgroundColor)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"#1a2b3c"` {
		t.Errorf("got %s", out)
	}

	if err := json.Unmarshal([]byte(`{"backgroundColor":"teal-ish"}`), &cfg); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestParseShortColor(t *testing.T) {
	c, err := ParseColor("#fff")
	if err != nil {
		t.Fatal(err)
	}
	if c != White {
		t.Errorf("got %v", c)
	}
}

func TestCropAreaNormalized(t *testing.T) {
	for _, tt := range []struct {
		in, want float64
	}{
		{0.01, minCropScale},
		{1.3, 1.3},
		{9, maxCropScale},
	} {
		got, err := CropArea{Scale: tt.in}.normalized()
		if err != nil {
			t.Fatal(err)
		}
		if got.Scale != tt.want {
			t.Errorf("scale %g normalized to %g, want %g", tt.in, got.Scale, tt.want)
		}
	}
	if _, err := (CropArea{Y: math.Inf(1), Scale: 1}).normalized(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestStitchItemNormalized(t *testing.T) {
	got, err := StitchItem{Scale: 0, Ratio: ""}.normalized()
	if err != nil {
		t.Fatal(err)
	}
	if got.Scale != minStitchScale || got.Ratio != RatioOriginal {
		t.Errorf("got %+v", got)
	}
	if _, err := (StitchItem{Scale: 1, Ratio: "5:4"}).normalized(); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestStitchItemJSON(t *testing.T) {
	var it StitchItem
	if err := json.Unmarshal([]byte(`{"source":"blob:x","x":4}`), &it); err != nil {
		t.Fatal(err)
	}
	if it.Scale != 1 || it.Ratio != RatioOriginal || it.X != 4 {
		t.Errorf("defaults not applied: %+v", it)
	}
	if err := json.Unmarshal([]byte(`{"source":"blob:x","scael":2}`), &it); err == nil {
		t.Error("expected unknown item field to be rejected")
	}
}

func TestErrorKind(t *testing.T) {
	for _, tt := range []struct {
		err  error
		want string
	}{
		{invalidf("x"), "input"},
		{&DecodeError{Ref: "blob:x", Err: errBoom}, "decode"},
		{&SurfaceError{1, 1, errBoom}, "surface"},
		{&EncodeError{Err: errBoom}, "encode"},
		{errBoom, "internal"},
	} {
		if got := errorKind(tt.err); got != tt.want {
			t.Errorf("%v: got %q, want %q", tt.err, got, tt.want)
		}
	}
}
