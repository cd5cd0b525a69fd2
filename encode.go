package main

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
)

// maxInlinePixels is the largest result DataURL will render. Bigger results
// must be streamed with WriteTo.
const maxInlinePixels = 8_000_000

var errTooLargeForInline = errors.New("result too large to inline, stream it instead")

// EncodedImage is a losslessly encoded PNG.
type EncodedImage struct {
	Width, Height int
	PNG           []byte
}

func (e EncodedImage) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(e.PNG)
}

func encodeToBytes(s Surface) (EncodedImage, error) {
	var buf bytes.Buffer
	if _, err := encodeSurface(s, &buf); err != nil {
		return EncodedImage{}, err
	}
	sz := s.Size()
	return EncodedImage{Width: sz.X, Height: sz.Y, PNG: buf.Bytes()}, nil
}

// encodeSurface streams s to w. Failures, including an encoder that writes
// nothing, are *EncodeError.
func encodeSurface(s Surface, w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	if err := s.Encode(cw); err != nil {
		return cw.n, &EncodeError{Err: err}
	}
	if cw.n == 0 {
		return 0, &EncodeError{Err: errEmptyEncoding}
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// StitchResult is a rendered stitch that has not been encoded yet, so large
// results can be streamed without holding the PNG in memory.
type StitchResult struct {
	Layout  StitchLayout
	surface Surface
}

func (r *StitchResult) Width() int  { return r.surface.Size().X }
func (r *StitchResult) Height() int { return r.surface.Size().Y }

func (r *StitchResult) WriteTo(w io.Writer) (int64, error) {
	return encodeSurface(r.surface, w)
}

// DataURL encodes the result in memory. It refuses results over
// maxInlinePixels.
func (r *StitchResult) DataURL() (string, error) {
	if sz := r.surface.Size(); sz.X*sz.Y > maxInlinePixels {
		return "", &EncodeError{Err: errTooLargeForInline}
	}
	enc, err := encodeToBytes(r.surface)
	if err != nil {
		return "", err
	}
	return enc.DataURL(), nil
}
