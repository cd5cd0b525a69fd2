package main

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/peterstace/simplefeatures/geom"
	"golang.org/x/image/math/f64"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: uint8((x + y) % 256), A: 0xff})
		}
	}
	return img
}

// putImage uploads img into blobs and returns its ref.
func putImage(t *testing.T, blobs *BlobStore, img image.Image) SourceRef {
	t.Helper()
	ref, err := blobs.Put(encodePNG(t, img))
	if err != nil {
		t.Fatal(err)
	}
	return ref
}

func newTestAssembler(factory SurfaceFactory) (*Assembler, *BlobStore) {
	blobs := NewBlobStore(1 << 30)
	return NewAssembler(NewLoader(blobs, nil), factory), blobs
}

// fakeSurface records drawing calls instead of rasterizing.
type fakeSurface struct {
	size   image.Point
	scale  float64
	ops    []string
	draws  []f64.Aff3
	crops  []image.Rectangle
	encode func(io.Writer) error
}

type fakeSurfaces struct {
	created []*fakeSurface
	err     error
	encode  func(io.Writer) error
}

func (f *fakeSurfaces) factory(w, h int) (Surface, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := &fakeSurface{size: image.Pt(w, h), scale: 1, encode: f.encode}
	f.created = append(f.created, s)
	return s, nil
}

func (s *fakeSurface) Size() image.Point { return s.size }

func (s *fakeSurface) Scale(f float64) {
	s.scale *= f
	s.ops = append(s.ops, fmt.Sprintf("scale %.4f", f))
}

func (s *fakeSurface) FillRect(r geom.Envelope, _ color.Color) {
	s.ops = append(s.ops, "fill "+fmtEnv(r))
}

func (s *fakeSurface) ClipRect(r geom.Envelope) {
	s.ops = append(s.ops, "clip "+fmtEnv(r))
}

func (s *fakeSurface) ResetClip() {
	s.ops = append(s.ops, "reset")
}

func (s *fakeSurface) DrawImage(_ image.Image, m f64.Aff3) {
	s.ops = append(s.ops, "draw")
	s.draws = append(s.draws, m)
}

func (s *fakeSurface) Crop(r image.Rectangle) (Surface, error) {
	s.crops = append(s.crops, r)
	return &fakeSurface{size: r.Size(), scale: 1, encode: s.encode}, nil
}

func (s *fakeSurface) Encode(w io.Writer) error {
	if s.encode != nil {
		return s.encode(w)
	}
	_, err := io.WriteString(w, "fake")
	return err
}

func fmtEnv(r geom.Envelope) string {
	lo, hi := extent(r)
	return fmt.Sprintf("%g,%g-%g,%g", lo.X, lo.Y, hi.X, hi.Y)
}

func apply(m f64.Aff3, p geom.XY) geom.XY {
	return geom.XY{X: m[0]*p.X + m[1]*p.Y + m[2], Y: m[3]*p.X + m[4]*p.Y + m[5]}
}

func approxEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

var errBoom = errors.New("boom")

func xyOf(x, y float64) geom.XY {
	return geom.XY{X: x, Y: y}
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%g", f)
}
