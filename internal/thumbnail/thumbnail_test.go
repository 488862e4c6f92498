package thumbnail

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"
	"testing"
	"time"

	"thumbnailer/internal/cache"
	"thumbnailer/internal/frame"

	_ "image/jpeg"
)

// fakeFrames is a counting FrameSource test double.
type fakeFrames struct {
	mu    sync.Mutex
	calls int
	w, h  int
	err   error
	delay time.Duration
}

func (f *fakeFrames) ExtractMidFrame(src string) (*frame.Frame, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &frame.Frame{Image: image.NewRGBA(image.Rect(0, 0, f.w, f.h))}, nil
}

func (f *fakeFrames) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func await(t *testing.T, ch <-chan Result) Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for result")
		return Result{}
	}
}

func newTestExtractor(t *testing.T, frames FrameSource) (*Extractor, *cache.Store) {
	t.Helper()
	store := cache.New(t.TempDir())
	e, err := New(Config{Quality: 90, MaxHeight: 250, Store: store, Workers: 2},
		WithFrameSource(frames))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(e.Close)
	return e, store
}

func TestNewIncompleteConfig(t *testing.T) {
	store := cache.New(t.TempDir())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"No store", Config{Quality: 90, MaxHeight: 250}},
		{"No max height", Config{Quality: 90, Store: store}},
		{"Negative max height", Config{Quality: 90, MaxHeight: -1, Store: store}},
		{"No quality", Config{MaxHeight: 250, Store: store}},
		{"Quality too high", Config{Quality: 101, MaxHeight: 250, Store: store}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.cfg, WithFrameSource(&fakeFrames{w: 16, h: 16}))
			if !errors.Is(err, ErrIncompleteConfig) {
				t.Errorf("New() error = %v, want ErrIncompleteConfig", err)
			}
			if e != nil {
				t.Error("New() returned a usable extractor despite invalid config")
			}
		})
	}
}

func TestNewProvisionFailure(t *testing.T) {
	// Cache root path occupied by a regular file: construction must abort.
	rootFile := t.TempDir() + "/blocked"
	if err := os.WriteFile(rootFile, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := New(Config{Quality: 90, MaxHeight: 250, Store: cache.New(rootFile)},
		WithFrameSource(&fakeFrames{w: 16, h: 16}))
	if !errors.Is(err, cache.ErrNotADirectory) {
		t.Errorf("New() error = %v, want cache.ErrNotADirectory", err)
	}
}

func TestGetThumbnailScalesTo250(t *testing.T) {
	// A 720p-equivalent source at maxHeight 250 must come out 445x250.
	frames := &fakeFrames{w: 1280, h: 720}
	e, store := newTestExtractor(t, frames)

	res := await(t, e.GetThumbnail("https://example.com/720p.mp4"))
	if res.Err != nil {
		t.Fatalf("GetThumbnail error: %v", res.Err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(res.Thumbnail))
	if err != nil {
		t.Fatalf("thumbnail not decodable: %v", err)
	}
	if cfg.Width != 445 || cfg.Height != 250 {
		t.Errorf("thumbnail = %dx%d, want 445x250", cfg.Width, cfg.Height)
	}

	// The artifact must be on disk under the derived key.
	key, _ := cache.DeriveKey("https://example.com/720p.mp4")
	if _, err := os.Stat(store.Path(key)); err != nil {
		t.Errorf("cached artifact missing: %v", err)
	}
}

func TestCacheHitShortcut(t *testing.T) {
	frames := &fakeFrames{w: 1280, h: 720}
	renderCalls := 0

	store := cache.New(t.TempDir())
	e, err := New(Config{Quality: 90, MaxHeight: 250, Store: store, Workers: 1},
		WithFrameSource(frames),
		WithRenderFunc(func(f *frame.Frame, maxHeight, quality int) ([]byte, error) {
			renderCalls++
			return []byte("thumb-bytes"), nil
		}))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	src := "https://example.com/video.mp4"

	first := await(t, e.GetThumbnail(src))
	if first.Err != nil {
		t.Fatalf("first call failed: %v", first.Err)
	}

	second := await(t, e.GetThumbnail(src))
	if second.Err != nil {
		t.Fatalf("second call failed: %v", second.Err)
	}

	// The second call must be served from cache without touching the
	// extractor or the renderer.
	if frames.callCount() != 1 {
		t.Errorf("frame extractor called %d times, want 1", frames.callCount())
	}
	if renderCalls != 1 {
		t.Errorf("renderer called %d times, want 1", renderCalls)
	}
	if !bytes.Equal(first.Thumbnail, second.Thumbnail) {
		t.Error("cached thumbnail differs from generated one")
	}
}

func TestInvalidIdentifier(t *testing.T) {
	e, _ := newTestExtractor(t, &fakeFrames{w: 16, h: 16})

	res := await(t, e.GetThumbnail("   "))
	if !errors.Is(res.Err, cache.ErrInvalidIdentifier) {
		t.Errorf("error = %v, want cache.ErrInvalidIdentifier", res.Err)
	}
}

func TestExtractionFailure(t *testing.T) {
	wrapped := fmt.Errorf("%w: no such asset", frame.ErrResourceNotFound)
	e, _ := newTestExtractor(t, &fakeFrames{err: wrapped})

	res := await(t, e.GetThumbnail("https://example.com/missing.mp4"))
	if !errors.Is(res.Err, ErrCantCreateThumbnail) {
		t.Errorf("error = %v, want ErrCantCreateThumbnail", res.Err)
	}
	if !errors.Is(res.Err, frame.ErrResourceNotFound) {
		t.Errorf("error = %v, should wrap frame.ErrResourceNotFound", res.Err)
	}
	if res.Thumbnail != nil {
		t.Error("failed request delivered thumbnail bytes")
	}
}

func TestSaveFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}

	frames := &fakeFrames{w: 1280, h: 720}
	e, store := newTestExtractor(t, frames)

	// Make the cache root read-only after construction: decode and render
	// succeed, persistence fails.
	if err := os.Chmod(store.Root(), 0555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(store.Root(), 0755) })

	res := await(t, e.GetThumbnail("https://example.com/video.mp4"))
	if !errors.Is(res.Err, ErrCantSaveThumbnail) {
		t.Errorf("error = %v, want ErrCantSaveThumbnail", res.Err)
	}
	if res.Thumbnail != nil {
		t.Error("unpersisted thumbnail was delivered; cache-or-fail demands it is not")
	}
	if frames.callCount() != 1 {
		t.Errorf("frame extractor called %d times, want 1", frames.callCount())
	}
}

func TestExactlyOneDelivery(t *testing.T) {
	e, _ := newTestExtractor(t, &fakeFrames{w: 16, h: 16})

	ch := e.GetThumbnail("https://example.com/video.mp4")
	await(t, ch)

	select {
	case res, ok := <-ch:
		if ok {
			t.Errorf("received a second result: %+v", res)
		}
	case <-time.After(50 * time.Millisecond):
		// nothing else arrives; the channel held exactly one value
	}
}

func TestConcurrentSameResource(t *testing.T) {
	// No dedup by design: both misses may compute, last writer wins, both
	// callers still get a correct thumbnail.
	frames := &fakeFrames{w: 1280, h: 720, delay: 50 * time.Millisecond}
	e, _ := newTestExtractor(t, frames)

	src := "https://example.com/video.mp4"
	a := e.GetThumbnail(src)
	b := e.GetThumbnail(src)

	resA := await(t, a)
	resB := await(t, b)

	if resA.Err != nil || resB.Err != nil {
		t.Fatalf("concurrent calls failed: %v, %v", resA.Err, resB.Err)
	}
	if calls := frames.callCount(); calls < 1 || calls > 2 {
		t.Errorf("frame extractor called %d times, want 1 or 2", calls)
	}
}

func TestGetThumbnailAfterClose(t *testing.T) {
	e, _ := newTestExtractor(t, &fakeFrames{w: 16, h: 16})
	e.Close()

	res := await(t, e.GetThumbnail("https://example.com/video.mp4"))
	if !errors.Is(res.Err, ErrClosed) {
		t.Errorf("error = %v, want ErrClosed", res.Err)
	}
}
