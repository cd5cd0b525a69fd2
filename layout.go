package main

import (
	"image"
	"math"

	"github.com/peterstace/simplefeatures/geom"
)

const (
	// MaxArea caps the physical pixel count of a stitch.
	MaxArea = 50_000_000

	DefaultStitchWidth = 1080
	MaxStitchWidth     = 8192
	minGridSize        = 1080
)

// NineGridSize is the side of the square nine-grid composite. It never
// drops below the source's smaller dimension, and never below 1080.
func NineGridSize(imgW, imgH int) int {
	return max(minGridSize, min(imgW, imgH))
}

// StitchWidth picks an output width from the native widths of the sources.
func StitchWidth(widths []int) int {
	widest := 0
	for _, w := range widths {
		widest = max(widest, w)
	}
	return min(max(widest, DefaultStitchWidth), MaxStitchWidth)
}

// TotalHeight stacks slots with innerSpacing between them (none after the
// last) and outerPadding above and below.
func TotalHeight(slotHeights []float64, innerSpacing, outerPadding float64) float64 {
	total := 2 * outerPadding
	for i, h := range slotHeights {
		total += h
		if i < len(slotHeights)-1 {
			total += innerSpacing
		}
	}
	return total
}

// SafetyScale is the uniform factor that brings width x height down to at
// most MaxArea pixels. It is 1 when no downscale is needed.
func SafetyScale(width, height float64) float64 {
	area := width * height
	if area <= MaxArea {
		return 1
	}
	return math.Sqrt(MaxArea / area)
}

// StitchLayout is the geometry of a stitch. Slots and TotalHeight are
// logical; Physical is the surface size after the safety downscale.
type StitchLayout struct {
	Width        int
	ContentWidth float64
	Slots        []geom.Envelope
	TotalHeight  float64
	FinalScale   float64
	Physical     image.Point
}

// PlanStitch lays out items top to bottom. aspects[i] is the width/height of
// the image behind items[i].
func PlanStitch(items []StitchItem, aspects []float64, cfg StitchConfig, outputWidth int) (StitchLayout, error) {
	if len(items) == 0 {
		return StitchLayout{}, invalidf("stitch needs at least one item")
	}
	if len(items) != len(aspects) {
		return StitchLayout{}, invalidf("%d items but %d images", len(items), len(aspects))
	}
	if outputWidth <= 0 || outputWidth > MaxStitchWidth {
		return StitchLayout{}, invalidf("output width %d outside (0, %d]", outputWidth, MaxStitchWidth)
	}
	if err := cfg.validate(); err != nil {
		return StitchLayout{}, err
	}

	contentWidth := float64(outputWidth) - 2*cfg.OuterPadding
	if contentWidth <= 0 {
		return StitchLayout{}, invalidf("padding %g leaves no room in width %d", cfg.OuterPadding, outputWidth)
	}

	heights := make([]float64, len(items))
	for i, it := range items {
		slotAspect, err := it.Ratio.Aspect(aspects[i])
		if err != nil {
			return StitchLayout{}, err
		}
		if !(slotAspect > 0) || math.IsInf(slotAspect, 0) {
			return StitchLayout{}, invalidf("item %q has degenerate aspect %g", it.ID, slotAspect)
		}
		heights[i] = contentWidth / slotAspect
	}

	slots := make([]geom.Envelope, len(items))
	y := cfg.OuterPadding
	for i, h := range heights {
		slots[i] = rect(cfg.OuterPadding, y, contentWidth, h)
		y += h + cfg.InnerSpacing
	}

	total := TotalHeight(heights, cfg.InnerSpacing, cfg.OuterPadding)
	scale := SafetyScale(float64(outputWidth), total)
	return StitchLayout{
		Width:        outputWidth,
		ContentWidth: contentWidth,
		Slots:        slots,
		TotalHeight:  total,
		FinalScale:   scale,
		Physical: image.Pt(
			max(1, int(math.Floor(float64(outputWidth)*scale))),
			max(1, int(math.Floor(total*scale))),
		),
	}, nil
}
