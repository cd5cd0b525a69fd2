package main

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is wrapped by every error caused by a malformed request
// parameter (as opposed to an unreadable image or a rendering failure).
var ErrInvalidInput = errors.New("invalid input")

type BadStatusError struct {
	body   []byte
	status int
}

func (b BadStatusError) Error() string {
	prefix := string(b.body[:min(len(b.body), 256)])
	return fmt.Sprintf("unexpected status code %d: %s", b.status, prefix)
}

// DecodeError means a source could not be turned into a raster. It aborts
// the whole export.
type DecodeError struct {
	Ref SourceRef
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Ref.redacted(), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SurfaceError means a drawing surface could not be created.
type SurfaceError struct {
	Width, Height int
	Err           error
}

func (e *SurfaceError) Error() string {
	return fmt.Sprintf("surface %dx%d: %v", e.Width, e.Height, e.Err)
}

func (e *SurfaceError) Unwrap() error { return e.Err }

// EncodeError means the final raster encoding failed or produced no data.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

var errEmptyEncoding = errors.New("encoder produced no data")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// errorKind classifies err for API clients.
func errorKind(err error) string {
	var (
		decodeErr  *DecodeError
		surfaceErr *SurfaceError
		encodeErr  *EncodeError
	)
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "input"
	case errors.As(err, &decodeErr):
		return "decode"
	case errors.As(err, &surfaceErr):
		return "surface"
	case errors.As(err, &encodeErr):
		return "encode"
	default:
		return "internal"
	}
}
