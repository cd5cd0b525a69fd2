package main

import (
	"image"

	"github.com/peterstace/simplefeatures/geom"
	"golang.org/x/image/math/f64"
)

// UIPan is a pan offset measured in pixels of the on-screen preview box.
type UIPan struct {
	X, Y float64
}

// Output converts to output pixels, k being output size / preview size.
func (p UIPan) Output(k float64) OutputPan {
	return OutputPan{X: p.X * k, Y: p.Y * k}
}

// PercentPan is a pan offset measured in percent of the image's own
// cover-fit rendered size.
type PercentPan struct {
	X, Y float64
}

func (p PercentPan) Output(drawW, drawH float64) OutputPan {
	return OutputPan{X: p.X / 100 * drawW, Y: p.Y / 100 * drawH}
}

// OutputPan is a pan offset in logical output pixels. It is the only pan
// Composite accepts.
type OutputPan geom.XY

// Composite draws img cover-fitted into region of s. The operations are
// applied in a fixed order: move to the region's center, pan, zoom, then draw
// the image centered on the resulting origin. Pan is therefore not affected
// by zoom. Drawing is clipped to region.
func Composite(s Surface, img image.Image, region geom.Envelope, pan OutputPan, zoom float64) {
	s.ClipRect(region)
	defer s.ResetClip()
	s.DrawImage(img, placement(img.Bounds(), region, pan, zoom))
}

// placement maps source pixel coordinates of an image with bounds b into
// logical output coordinates.
func placement(b image.Rectangle, region geom.Envelope, pan OutputPan, zoom float64) f64.Aff3 {
	imgW, imgH := float64(b.Dx()), float64(b.Dy())
	regW, regH := dims(region)
	drawW, drawH := CoverFit(imgW, imgH, regW, regH)

	fit := f64.Aff3{
		drawW / imgW, 0, -float64(b.Min.X) * drawW / imgW,
		0, drawH / imgH, -float64(b.Min.Y) * drawH / imgH,
	}
	m := mulAff3(translateAff3(geom.XY{X: -drawW / 2, Y: -drawH / 2}), fit)
	m = mulAff3(scaleAff3(zoom), m)
	m = mulAff3(translateAff3(geom.XY(pan)), m)
	return mulAff3(translateAff3(center(region)), m)
}
