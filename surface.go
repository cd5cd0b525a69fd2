package main

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/peterstace/simplefeatures/geom"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// DefaultMaxSurfacePixels is the largest RGBA surface allocated unless
// configured otherwise: a 16384x16384 composite, 1 GiB of pixels. Stitches
// never get near it since they are downscaled to MaxArea, so in practice it
// bounds nine-grids of very large sources.
const DefaultMaxSurfacePixels = 1 << 28

// Surface is the 2D raster capability the pipelines draw with. Rectangles
// and matrices are in logical coordinates; Scale maps logical coordinates to
// physical pixels for every later call.
type Surface interface {
	Size() image.Point
	Scale(s float64)
	FillRect(r geom.Envelope, c color.Color)
	ClipRect(r geom.Envelope)
	ResetClip()
	// DrawImage draws src with m mapping source pixel coordinates into
	// logical coordinates, composited over what is already there.
	DrawImage(src image.Image, m f64.Aff3)
	// Crop copies a physical sub-rectangle into a new surface.
	Crop(r image.Rectangle) (Surface, error)
	Encode(w io.Writer) error
}

type SurfaceFactory func(width, height int) (Surface, error)

// RGBASurfaces returns a factory for in-memory RGBA surfaces of at most
// maxPixels pixels that encode to PNG with the given compression level.
func RGBASurfaces(level png.CompressionLevel, maxPixels int) SurfaceFactory {
	return func(width, height int) (Surface, error) {
		if err := checkSurfaceSize(width, height, maxPixels); err != nil {
			return nil, err
		}
		s, err := NewRGBASurface(width, height, level)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

type RGBASurface struct {
	img         *image.RGBA
	scale       float64
	clip        image.Rectangle
	kernel      xdraw.Interpolator
	compression png.CompressionLevel
}

func NewRGBASurface(width, height int, level png.CompressionLevel) (*RGBASurface, error) {
	if err := checkSurfaceSize(width, height, math.MaxInt/4); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	return &RGBASurface{
		img:         img,
		scale:       1,
		clip:        img.Bounds(),
		kernel:      xdraw.CatmullRom,
		compression: level,
	}, nil
}

func checkSurfaceSize(width, height, maxPixels int) error {
	if width <= 0 || height <= 0 {
		return &SurfaceError{width, height, errors.New("size must be positive")}
	}
	if width > maxPixels/height {
		return &SurfaceError{width, height, fmt.Errorf("more than %d pixels", maxPixels)}
	}
	return nil
}

func (s *RGBASurface) Image() *image.RGBA {
	return s.img
}

func (s *RGBASurface) Size() image.Point {
	return s.img.Bounds().Size()
}

func (s *RGBASurface) Scale(f float64) {
	s.scale *= f
}

func (s *RGBASurface) FillRect(r geom.Envelope, c color.Color) {
	dr := s.physical(r).Intersect(s.clip)
	if dr.Empty() {
		return
	}
	draw.Draw(s.img, dr, image.NewUniform(c), image.Point{}, draw.Over)
}

func (s *RGBASurface) ClipRect(r geom.Envelope) {
	s.clip = s.clip.Intersect(s.physical(r))
}

func (s *RGBASurface) ResetClip() {
	s.clip = s.img.Bounds()
}

func (s *RGBASurface) DrawImage(src image.Image, m f64.Aff3) {
	if s.clip.Empty() {
		return
	}
	dst := s.img.SubImage(s.clip).(*image.RGBA)
	s2d := mulAff3(scaleAff3(s.scale), m)
	s.kernel.Transform(dst, s2d, src, src.Bounds(), xdraw.Over, nil)
}

func (s *RGBASurface) Crop(r image.Rectangle) (Surface, error) {
	r = r.Intersect(s.img.Bounds())
	out, err := NewRGBASurface(r.Dx(), r.Dy(), s.compression)
	if err != nil {
		return nil, err
	}
	draw.Draw(out.img, out.img.Bounds(), s.img, r.Min, draw.Src)
	return out, nil
}

func (s *RGBASurface) Encode(w io.Writer) error {
	enc := png.Encoder{CompressionLevel: s.compression}
	return enc.Encode(w, s.img)
}

func (s *RGBASurface) physical(r geom.Envelope) image.Rectangle {
	lo, hi := extent(r)
	return image.Rect(
		int(math.Round(lo.X*s.scale)),
		int(math.Round(lo.Y*s.scale)),
		int(math.Round(hi.X*s.scale)),
		int(math.Round(hi.Y*s.scale)),
	)
}

func rect(x, y, w, h float64) geom.Envelope {
	return geom.NewEnvelope(geom.XY{X: x, Y: y}, geom.XY{X: x + w, Y: y + h})
}

func extent(r geom.Envelope) (lo, hi geom.XY) {
	lo, hi, _ = r.MinMaxXYs()
	return lo, hi
}

func center(r geom.Envelope) geom.XY {
	lo, hi := extent(r)
	return lo.Add(hi).Scale(0.5)
}

func dims(r geom.Envelope) (w, h float64) {
	lo, hi := extent(r)
	return hi.X - lo.X, hi.Y - lo.Y
}

func scaleAff3(s float64) f64.Aff3 {
	return f64.Aff3{s, 0, 0, 0, s, 0}
}

func translateAff3(d geom.XY) f64.Aff3 {
	return f64.Aff3{1, 0, d.X, 0, 1, d.Y}
}

// mulAff3 returns the transform that applies q and then p.
func mulAff3(p, q f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		p[0]*q[0] + p[1]*q[3],
		p[0]*q[1] + p[1]*q[4],
		p[0]*q[2] + p[1]*q[5] + p[2],
		p[3]*q[0] + p[4]*q[3],
		p[3]*q[1] + p[4]*q[4],
		p[3]*q[2] + p[4]*q[5] + p[5],
	}
}
