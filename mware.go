package main

import (
	"bytes"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"
)

// maxLoggedBody bounds how much of a failed response is dumped to the log.
const maxLoggedBody = 512

func loggingMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		irw := &interceptingResponseWriter{inner: w}
		h.ServeHTTP(irw, r)
		if r.Context().Err() != nil {
			return // Request was cancelled by the user.
		}
		if irw.statusCode >= 300 {
			log.Printf("> %d %s %s (%d bytes, %s)\n%s",
				irw.statusCode, r.Method, r.URL.Path, irw.written, time.Since(start), irw.logBody())
		}
	})
}

// interceptingResponseWriter records the status code, the byte count and the
// start of the body. Only a prefix is kept since exports can be very large.
type interceptingResponseWriter struct {
	inner      http.ResponseWriter
	statusCode int
	written    int64
	body       bytes.Buffer
}

// logBody renders the captured prefix. Error responses are JSON and go in as
// text; anything else is dumped.
func (w *interceptingResponseWriter) logBody() string {
	ct := w.inner.Header().Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") || strings.HasPrefix(ct, "text/plain") {
		return strings.TrimRight(w.body.String(), "\n")
	}
	return hex.Dump(w.body.Bytes())
}

func (w *interceptingResponseWriter) Header() http.Header {
	return w.inner.Header()
}

func (w *interceptingResponseWriter) Write(p []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	if room := maxLoggedBody - w.body.Len(); room > 0 {
		w.body.Write(p[:min(len(p), room)])
	}
	n, err := w.inner.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *interceptingResponseWriter) WriteHeader(statusCode int) {
	if w.statusCode == 0 {
		w.statusCode = statusCode
	}
	w.inner.WriteHeader(statusCode)
}
