package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

// SourceRef identifies an image: "blob:<uuid>" for an upload, a "data:" URL,
// or an http(s) URL.
type SourceRef string

func blobRef(id uuid.UUID) SourceRef {
	return SourceRef("blob:" + id.String())
}

func (r SourceRef) blobID() (uuid.UUID, bool) {
	s, ok := strings.CutPrefix(string(r), "blob:")
	if !ok {
		return uuid.UUID{}, false
	}
	id, err := uuid.Parse(s)
	return id, err == nil
}

// redacted shortens inline data so it can go in logs and error messages.
func (r SourceRef) redacted() string {
	if strings.HasPrefix(string(r), "data:") && len(r) > 48 {
		return string(r[:48]) + "..."
	}
	return string(r)
}

// Raster is a decoded image with its intrinsic size.
type Raster struct {
	Image  image.Image
	Width  int
	Height int
}

func (r *Raster) Aspect() float64 {
	return float64(r.Width) / float64(r.Height)
}

type Loader struct {
	blobs  *BlobStore
	remote *RemoteFetcher
}

func NewLoader(blobs *BlobStore, remote *RemoteFetcher) *Loader {
	return &Loader{blobs: blobs, remote: remote}
}

// Load resolves and decodes ref. All failures are *DecodeError.
func (l *Loader) Load(ctx context.Context, ref SourceRef) (*Raster, error) {
	raw, err := l.raw(ctx, ref)
	if err != nil {
		return nil, &DecodeError{Ref: ref, Err: err}
	}
	return decodeRaster(ref, raw)
}

// LoadAll loads every ref concurrently. Result i belongs to refs[i]. Either
// all refs load or an error is returned.
func (l *Loader) LoadAll(ctx context.Context, refs []SourceRef) ([]*Raster, error) {
	group, ctx := errgroup.WithContext(ctx)
	rasters := make([]*Raster, len(refs))
	for i, ref := range refs {
		i, ref := i, ref
		group.Go(func() error {
			r, err := l.Load(ctx, ref)
			rasters[i] = r
			return err
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return rasters, nil
}

func (l *Loader) raw(ctx context.Context, ref SourceRef) ([]byte, error) {
	s := string(ref)
	switch {
	case strings.HasPrefix(s, "blob:"):
		id, ok := ref.blobID()
		if !ok {
			return nil, errors.New("malformed blob handle")
		}
		raw, ok := l.blobs.Get(id)
		if !ok {
			return nil, errors.New("no such upload")
		}
		return raw, nil
	case strings.HasPrefix(s, "data:"):
		return parseDataURL(s)
	case strings.HasPrefix(s, "http://"), strings.HasPrefix(s, "https://"):
		if l.remote == nil {
			return nil, errors.New("remote sources are disabled")
		}
		return l.remote.GetRaw(ctx, s)
	default:
		return nil, errors.New("unsupported reference scheme")
	}
}

func decodeRaster(ref SourceRef, raw []byte) (*Raster, error) {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Ref: ref, Err: err}
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, &DecodeError{Ref: ref, Err: fmt.Errorf("empty image %dx%d", b.Dx(), b.Dy())}
	}
	return &Raster{Image: img, Width: b.Dx(), Height: b.Dy()}, nil
}

func parseDataURL(s string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URL")
	}
	if strings.HasSuffix(header, ";base64") {
		return base64.StdEncoding.DecodeString(payload)
	}
	unescaped, err := url.PathUnescape(payload)
	if err != nil {
		return nil, err
	}
	return []byte(unescaped), nil
}

// RemoteFetcher downloads remote images anonymously: requests carry no
// cookies or credentials, so any URL it can read is one a browser could read
// with crossorigin="anonymous".
type RemoteFetcher struct {
	client   *http.Client
	maxBytes int64
	cache    *SingleFlightCache[[]byte]
}

func NewRemoteFetcher(client *http.Client, maxBytes int64, cacheEntries int) *RemoteFetcher {
	return &RemoteFetcher{
		client:   client,
		maxBytes: maxBytes,
		cache:    NewSingleFlightCache[[]byte](cacheEntries),
	}
}

// GetRaw returns the body of rawURL. Concurrent callers share one fetch, so
// it is not cancelled with any one caller's ctx; the client timeout bounds it.
func (f *RemoteFetcher) GetRaw(ctx context.Context, rawURL string) ([]byte, error) {
	return f.cache.Get(rawURL, func() ([]byte, error) {
		return f.fetchRaw(context.WithoutCancel(ctx), rawURL)
	})
}

func (f *RemoteFetcher) fetchRaw(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.User != nil {
		return nil, errors.New("credentials in source URL are not allowed")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, BadStatusError{body, resp.StatusCode}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("source exceeds %d bytes", f.maxBytes)
	}
	return body, nil
}
