package main

import (
	"flag"
	"image/png"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; flags and the environment still apply.
	_ = godotenv.Load()

	var (
		listenAddrFlag   = flag.String("listen", envString("PHOTOGRID_LISTEN", ":8080"), "listen address")
		maxUploadFlag    = flag.Int64("max-upload", envInt[int64]("PHOTOGRID_MAX_UPLOAD", 32<<20), "largest accepted upload or remote source, in bytes")
		blobLimitFlag    = flag.Int("blob-limit", envInt("PHOTOGRID_BLOB_LIMIT", 1<<30), "total bytes of uploads held in memory")
		fetchTimeoutFlag = flag.Duration("fetch-timeout", envDuration("PHOTOGRID_FETCH_TIMEOUT", 20*time.Second), "timeout for fetching remote sources")
		cacheEntriesFlag = flag.Int("cache-entries", envInt("PHOTOGRID_CACHE_ENTRIES", 64), "fetched remote sources kept in memory")
		snapSessionsFlag = flag.Int("snap-sessions", envInt("PHOTOGRID_SNAP_SESSIONS", 1024), "snap-assist sessions kept in memory")
		maxPixelsFlag    = flag.Int("max-surface-pixels", envInt("PHOTOGRID_MAX_SURFACE_PIXELS", DefaultMaxSurfacePixels), "largest composite allocated, in pixels")
		remoteFlag       = flag.Bool("remote", envBool("PHOTOGRID_REMOTE", true), "allow http(s) source references")
		compressionFlag  = flag.String("png-compression", envString("PHOTOGRID_PNG_COMPRESSION", "default"), "PNG compression: default, speed, best or none")
	)
	flag.Parse()

	level, ok := compressionLevels[*compressionFlag]
	if !ok {
		log.Fatalf("--png-compression must be one of default, speed, best, none; got %q", *compressionFlag)
	}
	if *maxUploadFlag <= 0 {
		log.Fatal("--max-upload must be positive")
	}
	if *maxPixelsFlag < MaxArea {
		log.Fatalf("--max-surface-pixels must be at least %d", int(MaxArea))
	}

	cfg := config{
		listenAddr:   *listenAddrFlag,
		maxUpload:    *maxUploadFlag,
		blobLimit:    *blobLimitFlag,
		fetchTimeout: *fetchTimeoutFlag,
		cacheEntries: *cacheEntriesFlag,
		snapSessions: *snapSessionsFlag,
		maxPixels:    *maxPixelsFlag,
		remote:       *remoteFlag,
		compression:  level,
	}
	if err := mainE(cfg); err != nil {
		log.Fatalf("an error occurred: %v", err)
	}
}

type config struct {
	listenAddr   string
	maxUpload    int64
	blobLimit    int
	fetchTimeout time.Duration
	cacheEntries int
	snapSessions int
	maxPixels    int
	remote       bool
	compression  png.CompressionLevel
}

var compressionLevels = map[string]png.CompressionLevel{
	"default": png.DefaultCompression,
	"speed":   png.BestSpeed,
	"best":    png.BestCompression,
	"none":    png.NoCompression,
}

func mainE(cfg config) error {
	blobs := NewBlobStore(cfg.blobLimit)
	var remote *RemoteFetcher
	if cfg.remote {
		// No cookie jar: remote fetches stay anonymous.
		client := &http.Client{Timeout: cfg.fetchTimeout}
		remote = NewRemoteFetcher(client, cfg.maxUpload, cfg.cacheEntries)
	}
	loader := NewLoader(blobs, remote)
	assembler := NewAssembler(loader, RGBASurfaces(cfg.compression, cfg.maxPixels))
	handler := NewHandler(blobs, assembler, cfg.maxUpload, cfg.snapSessions)
	log.Printf("listening on %s", cfg.listenAddr)
	return http.ListenAndServe(cfg.listenAddr, handler)
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt[T int | int64](key string, fallback T) T {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("%s: %v", key, err)
	}
	return T(n)
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("%s: %v", key, err)
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("%s: %v", key, err)
	}
	return d
}
