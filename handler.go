package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// maxRequestBody leaves room for inline data: sources.
const maxRequestBody = 64 << 20

type Handler struct {
	blobs     *BlobStore
	assembler *Assembler
	sessions  *SingleFlightCache[*snapSession]
	maxUpload int64
	mux       *http.ServeMux
}

func NewHandler(blobs *BlobStore, assembler *Assembler, maxUpload int64, sessions int) *Handler {
	mux := http.NewServeMux()
	h := &Handler{
		blobs:     blobs,
		assembler: assembler,
		sessions:  NewSingleFlightCache[*snapSession](sessions),
		maxUpload: maxUpload,
		mux:       mux,
	}
	h.mux.HandleFunc("POST /uploads", h.upload)
	h.mux.HandleFunc("DELETE /uploads/{id}", h.deleteUpload)
	h.mux.HandleFunc("POST /ninegrid", h.nineGrid)
	h.mux.HandleFunc("POST /stitch", h.stitch)
	h.mux.HandleFunc("POST /stitch/layout", h.stitchLayout)
	h.mux.HandleFunc("POST /snap", h.snap)
	h.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) { io.WriteString(w, "ok") })
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	loggingMiddleware(h.mux).ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writing response: %v", err)
	}
}

// writeError maps the pipeline error taxonomy onto status codes.
func writeError(w http.ResponseWriter, err error) {
	kind := errorKind(err)
	status := http.StatusInternalServerError
	switch kind {
	case "input":
		status = http.StatusBadRequest
	case "decode":
		status = http.StatusUnprocessableEntity
	case "surface":
		status = http.StatusInsufficientStorage
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(struct {
		Kind  string `json:"kind"`
		Error string `json:"error"`
	}{kind, err.Error()})
}

func decodeBody[T any](w http.ResponseWriter, r *http.Request, dst *T) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, invalidf("request body: %v", err))
		return false
	}
	return true
}

type uploadResponse struct {
	Ref    SourceRef `json:"ref"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUpload))
	if err != nil {
		writeError(w, invalidf("upload: %v", err))
		return
	}
	if len(raw) == 0 {
		writeError(w, invalidf("upload is empty"))
		return
	}

	// Decode up front so a bad upload is reported now rather than at export.
	raster, err := decodeRaster("upload", raw)
	if err != nil {
		writeError(w, err)
		return
	}
	ref, err := h.blobs.Put(raw)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInsufficientStorage)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{Ref: ref, Width: raster.Width, Height: raster.Height})
}

func (h *Handler) deleteUpload(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "malformed upload id", http.StatusNotFound)
		return
	}
	if !h.blobs.Delete(id) {
		http.Error(w, "no such upload", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type nineGridRequest struct {
	Source    SourceRef `json:"source"`
	Crop      CropArea  `json:"crop"`
	Container float64   `json:"container"`
}

type nineGridResponse struct {
	Size     int      `json:"size"`
	TileSize int      `json:"tileSize"`
	Tiles    []string `json:"tiles"`
}

func (h *Handler) nineGrid(w http.ResponseWriter, r *http.Request) {
	req := nineGridRequest{Crop: CropArea{Scale: 1}}
	if !decodeBody(w, r, &req) {
		return
	}

	start := time.Now()
	tiles, err := h.assembler.NineGrid(r.Context(), req.Source, req.Crop, req.Container)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := nineGridResponse{Size: tiles.Size, TileSize: tiles.TileSize}
	for _, t := range tiles.Tiles {
		resp.Tiles = append(resp.Tiles, t.DataURL())
	}
	log.Printf("ninegrid %s: 9 tiles of %dpx in %s", req.Source.redacted(), resp.TileSize, time.Since(start))
	writeJSON(w, http.StatusOK, resp)
}

type stitchRequest struct {
	Items  []StitchItem `json:"items"`
	Config StitchConfig `json:"config"`
	Width  int          `json:"width"`
}

func (h *Handler) decodeStitch(w http.ResponseWriter, r *http.Request) (stitchRequest, bool) {
	req := stitchRequest{Config: StitchConfig{BackgroundColor: White}}
	if !decodeBody(w, r, &req) {
		return stitchRequest{}, false
	}
	for i := range req.Items {
		if req.Items[i].ID == "" {
			req.Items[i].ID = fmt.Sprintf("item-%d", i)
		}
	}
	return req, true
}

func (h *Handler) stitch(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeStitch(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.assembler.Stitch(r.Context(), req.Items, req.Config, req.Width)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="stitch.png"`)
	n, err := result.WriteTo(w)
	if err != nil {
		if n == 0 {
			w.Header().Del("Content-Disposition")
			writeError(w, err)
			return
		}
		// Headers are gone; all we can do is log and cut the response short.
		log.Printf("stitch: streaming failed after %d bytes: %v", n, err)
		return
	}
	log.Printf("stitch: %d items -> %dx%d (scale %.4f) in %s",
		len(req.Items), result.Width(), result.Height(), result.Layout.FinalScale, time.Since(start))
}

type slotJSON struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type layoutResponse struct {
	Width          int        `json:"width"`
	ContentWidth   float64    `json:"contentWidth"`
	TotalHeight    float64    `json:"totalHeight"`
	FinalScale     float64    `json:"finalScale"`
	PhysicalWidth  int        `json:"physicalWidth"`
	PhysicalHeight int        `json:"physicalHeight"`
	Slots          []slotJSON `json:"slots"`
}

func (h *Handler) stitchLayout(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeStitch(w, r)
	if !ok {
		return
	}
	layout, err := h.assembler.StitchLayout(r.Context(), req.Items, req.Config, req.Width)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := layoutResponse{
		Width:          layout.Width,
		ContentWidth:   layout.ContentWidth,
		TotalHeight:    layout.TotalHeight,
		FinalScale:     layout.FinalScale,
		PhysicalWidth:  layout.Physical.X,
		PhysicalHeight: layout.Physical.Y,
	}
	for _, s := range layout.Slots {
		lo, _ := extent(s)
		sw, sh := dims(s)
		resp.Slots = append(resp.Slots, slotJSON{X: lo.X, Y: lo.Y, Width: sw, Height: sh})
	}
	writeJSON(w, http.StatusOK, resp)
}

// snapSession is the zoom-assist state of one item being edited.
type snapSession struct {
	assist *SnapAssist
	pulses atomic.Int64
}

func newSnapSession() *snapSession {
	s := &snapSession{}
	s.assist = NewSnapAssist(func() { s.pulses.Add(1) })
	return s
}

type snapRequest struct {
	Session     string  `json:"session"`
	Scale       float64 `json:"scale"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Delta       float64 `json:"delta"`
	ImageAspect float64 `json:"imageAspect"`
	SlotAspect  float64 `json:"slotAspect"`
}

type snapResponse struct {
	Scale  float64    `json:"scale"`
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Target SnapTarget `json:"target"`
	Pulse  bool       `json:"pulse"`
}

func (h *Handler) snap(w http.ResponseWriter, r *http.Request) {
	var req snapRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Session) == "" {
		writeError(w, invalidf("missing session"))
		return
	}
	if !finite(req.Scale, req.Delta, req.X, req.Y) || !(req.ImageAspect > 0) || !(req.SlotAspect > 0) {
		writeError(w, invalidf("scale, delta and aspects must be finite and aspects positive"))
		return
	}

	sess, err := h.sessions.Get(req.Session, func() (*snapSession, error) {
		return newSnapSession(), nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	item := StitchItem{Scale: req.Scale, X: req.X, Y: req.Y}
	before := sess.pulses.Load()
	target := sess.assist.Zoom(&item, req.Delta, req.ImageAspect, req.SlotAspect)
	writeJSON(w, http.StatusOK, snapResponse{
		Scale:  item.Scale,
		X:      item.X,
		Y:      item.Y,
		Target: target,
		Pulse:  sess.pulses.Load() != before,
	})
}
