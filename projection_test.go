package main

import (
	"errors"
	"testing"
)

func TestCoverFitCoversBox(t *testing.T) {
	sizes := []float64{1, 3, 17, 100, 1080, 4000}
	for _, imgW := range sizes {
		for _, imgH := range sizes {
			for _, boxW := range sizes {
				for _, boxH := range sizes {
					drawW, drawH := CoverFit(imgW, imgH, boxW, boxH)
					if drawW < boxW-1e-9 || drawH < boxH-1e-9 {
						t.Errorf("CoverFit(%g,%g,%g,%g) = %g,%g under-covers", imgW, imgH, boxW, boxH, drawW, drawH)
					}
					if got, want := drawW/drawH, imgW/imgH; !approxEqual(got/want, 1) {
						t.Errorf("CoverFit(%g,%g,%g,%g) aspect %g, want %g", imgW, imgH, boxW, boxH, got, want)
					}
					// One side always matches the box exactly.
					if drawW != boxW && drawH != boxH {
						t.Errorf("CoverFit(%g,%g,%g,%g) = %g,%g matches neither side", imgW, imgH, boxW, boxH, drawW, drawH)
					}
				}
			}
		}
	}
}

func TestCoverFit(t *testing.T) {
	for _, tt := range []struct {
		name                 string
		imgW, imgH, box      float64
		wantDrawW, wantDrawH float64
	}{
		{"wide into square", 400, 200, 100, 200, 100},
		{"tall into square", 200, 400, 100, 100, 200},
		{"square into square", 300, 300, 100, 100, 100},
	} {
		t.Run(tt.name, func(t *testing.T) {
			w, h := CoverFit(tt.imgW, tt.imgH, tt.box, tt.box)
			if w != tt.wantDrawW || h != tt.wantDrawH {
				t.Errorf("got %gx%g, want %gx%g", w, h, tt.wantDrawW, tt.wantDrawH)
			}
		})
	}
}

func TestContainScale(t *testing.T) {
	for _, tt := range []struct {
		img, slot, want float64
	}{
		{2, 1, 0.5},
		{1, 2, 0.5},
		{16.0 / 9, 9.0 / 16, (9.0 / 16) / (16.0 / 9)},
		{1, 1, 1},
	} {
		got := ContainScale(tt.img, tt.slot)
		if !approxEqual(got, tt.want) {
			t.Errorf("ContainScale(%g, %g) = %g, want %g", tt.img, tt.slot, got, tt.want)
		}
		if got > 1 {
			t.Errorf("ContainScale(%g, %g) = %g exceeds 1", tt.img, tt.slot, got)
		}
	}
}

func TestRatioAspect(t *testing.T) {
	for _, tt := range []struct {
		ratio Ratio
		want  float64
	}{
		{RatioOriginal, 1.5},
		{"", 1.5},
		{RatioSquare, 1},
		{RatioLandscape, 4.0 / 3},
		{RatioPortrait, 3.0 / 4},
		{RatioWide, 16.0 / 9},
		{RatioTall, 9.0 / 16},
	} {
		got, err := tt.ratio.Aspect(1.5)
		if err != nil {
			t.Fatalf("%q: %v", tt.ratio, err)
		}
		if !approxEqual(got, tt.want) {
			t.Errorf("%q: got %g, want %g", tt.ratio, got, tt.want)
		}
	}
}

func TestParseRatio(t *testing.T) {
	if r, err := ParseRatio(""); err != nil || r != RatioOriginal {
		t.Errorf("empty ratio: got %q, %v", r, err)
	}
	if _, err := ParseRatio("2:1"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}
