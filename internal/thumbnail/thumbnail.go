package thumbnail

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"thumbnailer/internal/cache"
	"thumbnailer/internal/frame"
	"thumbnailer/internal/logging"
	"thumbnailer/internal/metrics"
	"thumbnailer/internal/render"
	"thumbnailer/internal/workers"
)

var (
	// ErrIncompleteConfig is returned by New when a required configuration
	// field is missing or out of range.
	ErrIncompleteConfig = errors.New("incomplete extractor configuration")

	// ErrCantCreateThumbnail is returned when frame extraction or
	// rendering fails; the wrapped error carries the stage detail.
	ErrCantCreateThumbnail = errors.New("can't create thumbnail")

	// ErrCantSaveThumbnail is returned when the thumbnail was rendered but
	// could not be persisted. The computed bytes are deliberately not
	// delivered: a response either comes from the cache or is in it.
	ErrCantSaveThumbnail = errors.New("can't save thumbnail")

	// ErrClosed is returned for requests dispatched after Close.
	ErrClosed = errors.New("extractor closed")
)

// maxWorkerCount caps the worker pool regardless of available CPUs.
const maxWorkerCount = 8

// FrameSource produces one raw frame near the temporal midpoint of an
// asset. Implemented by frame.Extractor; tests substitute counting fakes.
type FrameSource interface {
	ExtractMidFrame(src string) (*frame.Frame, error)
}

// RenderFunc encodes a frame into a height-bounded JPEG. render.Render is
// the production implementation.
type RenderFunc func(f *frame.Frame, maxHeight, quality int) ([]byte, error)

// Config carries the immutable extractor configuration. The Store is
// shared with the caller, not owned: the extractor provisions and uses it
// but never controls its lifetime.
type Config struct {
	// Quality is the JPEG quality, 1-100. Required.
	Quality int
	// MaxHeight bounds the thumbnail height in pixels. Required.
	MaxHeight int
	// Store is the cache the extractor reads and writes. Required.
	Store *cache.Store
	// Workers overrides the pool size. Zero means size by CPU count.
	Workers int
}

// Result is the single terminal outcome of one request: either the encoded
// thumbnail bytes or an error, never both.
type Result struct {
	Thumbnail []byte
	Err       error
}

// Extractor is the public entry point of the thumbnail pipeline.
type Extractor struct {
	cfg    Config
	frames FrameSource
	render RenderFunc

	sem    chan struct{}
	wg     sync.WaitGroup
	closed atomic.Bool
}

// Option customizes an Extractor; used by tests to inject collaborators.
type Option func(*Extractor)

// WithFrameSource replaces the ffmpeg-backed frame extractor.
func WithFrameSource(fs FrameSource) Option {
	return func(e *Extractor) { e.frames = fs }
}

// WithRenderFunc replaces the default renderer.
func WithRenderFunc(fn RenderFunc) Option {
	return func(e *Extractor) { e.render = fn }
}

// New validates cfg, provisions the cache store and starts the extractor.
// Validation is eager: an Extractor is either fully usable or not
// constructed at all.
func New(cfg Config, opts ...Option) (*Extractor, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: no cache store", ErrIncompleteConfig)
	}
	if cfg.MaxHeight <= 0 {
		return nil, fmt.Errorf("%w: max height not set", ErrIncompleteConfig)
	}
	if cfg.Quality < 1 || cfg.Quality > 100 {
		return nil, fmt.Errorf("%w: quality %d outside 1-100", ErrIncompleteConfig, cfg.Quality)
	}

	if err := cfg.Store.Provision(); err != nil {
		return nil, err
	}

	e := &Extractor{
		cfg:    cfg,
		render: render.Render,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.frames == nil {
		fs, err := frame.NewExtractor()
		if err != nil {
			return nil, err
		}
		e.frames = fs
	}

	n := cfg.Workers
	if n <= 0 {
		// Mixed workload: decode is CPU-heavy, cache I/O is not.
		n = workers.ForMixed(maxWorkerCount)
	}
	e.sem = make(chan struct{}, n)

	logging.Info("thumbnail: extractor ready (maxHeight=%d quality=%d workers=%d cache=%s)",
		cfg.MaxHeight, cfg.Quality, n, cfg.Store.Root())
	return e, nil
}

// GetThumbnail dispatches one request onto the worker pool and returns a
// channel that receives exactly one Result. The call itself never blocks
// beyond spawning the dispatch; the whole pipeline, cache read included,
// runs off the caller's goroutine.
func (e *Extractor) GetThumbnail(src string) <-chan Result {
	out := make(chan Result, 1)

	if e.closed.Load() {
		out <- Result{Err: ErrClosed}
		return out
	}

	metrics.QueueDepth.Inc()
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer metrics.QueueDepth.Dec()

		e.sem <- struct{}{}
		defer func() { <-e.sem }()

		out <- e.process(src)
	}()

	return out
}

// Close stops accepting new requests and waits for in-flight ones.
func (e *Extractor) Close() {
	e.closed.Store(true)
	e.wg.Wait()
}

// process runs the pipeline for one resource. Each step short-circuits;
// no step is retried.
func (e *Extractor) process(src string) Result {
	key, err := cache.DeriveKey(src)
	if err != nil {
		metrics.FailuresTotal.WithLabelValues("key").Inc()
		metrics.RequestsTotal.WithLabelValues("failed").Inc()
		return Result{Err: err}
	}

	// A hit bypasses decoding and rendering entirely.
	if data, ok := e.cfg.Store.Get(key); ok {
		logging.Debug("thumbnail: cache hit for %s", src)
		metrics.RequestsTotal.WithLabelValues("hit").Inc()
		return Result{Thumbnail: data}
	}

	f, err := e.frames.ExtractMidFrame(src)
	if err != nil {
		metrics.FailuresTotal.WithLabelValues("extract").Inc()
		metrics.RequestsTotal.WithLabelValues("failed").Inc()
		return Result{Err: fmt.Errorf("%w: %w", ErrCantCreateThumbnail, err)}
	}

	thumb, err := e.render(f, e.cfg.MaxHeight, e.cfg.Quality)
	if err != nil {
		metrics.FailuresTotal.WithLabelValues("render").Inc()
		metrics.RequestsTotal.WithLabelValues("failed").Inc()
		return Result{Err: fmt.Errorf("%w: %w", ErrCantCreateThumbnail, err)}
	}

	if !e.cfg.Store.Put(key, thumb) {
		metrics.FailuresTotal.WithLabelValues("save").Inc()
		metrics.RequestsTotal.WithLabelValues("failed").Inc()
		return Result{Err: fmt.Errorf("%w: %s", ErrCantSaveThumbnail, src)}
	}

	logging.Debug("thumbnail: generated %s (%d bytes) for %s", key, len(thumb), src)
	metrics.RequestsTotal.WithLabelValues("generated").Inc()
	return Result{Thumbnail: thumb}
}
