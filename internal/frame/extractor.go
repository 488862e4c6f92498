package frame

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"time"

	"thumbnailer/internal/logging"
	"thumbnailer/internal/metrics"

	_ "image/png"
)

var (
	// ErrResourceNotFound is returned when the asset cannot be opened or
	// probed at all.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrDecodeFailed is returned when the asset opened but no frame could
	// be produced at the requested timestamp.
	ErrDecodeFailed = errors.New("frame decode failed")
)

// A Frame is one raw decoded frame. PNG holds the encoded bytes exactly as
// piped out of ffmpeg so downstream consumers that prefer buffer input
// (the libvips render path) can skip a re-encode.
type Frame struct {
	Image image.Image
	PNG   []byte
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int {
	return f.Image.Bounds().Dx()
}

// Height returns the frame height in pixels.
func (f *Frame) Height() int {
	return f.Image.Bounds().Dy()
}

// Extractor pulls single frames out of video assets via ffmpeg.
type Extractor struct {
	ffmpegPath  string
	ffprobePath string
}

// NewExtractor locates the ffmpeg and ffprobe binaries. It fails when
// either is missing from PATH; there is no pure-Go decode fallback.
func NewExtractor() (*Extractor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found: %w", err)
	}
	logging.Debug("frame: using ffmpeg %s, ffprobe %s", ffmpegPath, ffprobePath)
	return &Extractor{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}, nil
}

// ExtractMidFrame decodes one frame at the temporal midpoint of src. The
// midpoint is floor(duration/2) in the asset's own timescale; the seek is
// accurate, so ffmpeg decodes up to the exact target rather than snapping
// to a nearby keyframe.
func (e *Extractor) ExtractMidFrame(src string) (*Frame, error) {
	start := time.Now()
	defer func() {
		metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	}()

	mid, err := e.probeMidpoint(src)
	if err != nil {
		return nil, err
	}

	logging.Debug("frame: extracting %s at %.3fs", src, mid)

	cmd := exec.Command(e.ffmpegPath,
		"-accurate_seek",
		"-ss", formatSeconds(mid),
		"-i", src,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg: %v, stderr: %s", ErrDecodeFailed, err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w: ffmpeg produced no output for %s", ErrDecodeFailed, src)
	}

	png := stdout.Bytes()
	img, _, err := image.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable ffmpeg output: %v", ErrDecodeFailed, err)
	}

	logging.Debug("frame: extracted %dx%d frame (%d bytes) from %s",
		img.Bounds().Dx(), img.Bounds().Dy(), len(png), src)

	return &Frame{Image: img, PNG: png}, nil
}

// probeMidpoint returns the midpoint timestamp of src in seconds. It
// prefers the video stream's duration_ts/time_base pair, which keeps the
// halving as integer division in the asset's native timescale; containers
// that report no per-stream duration fall back to the format-level float
// duration, halved in whole milliseconds.
func (e *Extractor) probeMidpoint(src string) (float64, error) {
	out, err := e.probe(src,
		"-select_streams", "v:0",
		"-show_entries", "stream=duration_ts,time_base",
	)
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe: %v", ErrResourceNotFound, err)
	}

	if mid, ok := midpointFromStream(out); ok {
		return mid, nil
	}

	out, err = e.probe(src, "-show_entries", "format=duration")
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe: %v", ErrResourceNotFound, err)
	}
	if mid, ok := midpointFromDuration(out); ok {
		return mid, nil
	}

	return 0, fmt.Errorf("%w: no usable duration for %s", ErrDecodeFailed, src)
}

func (e *Extractor) probe(src string, entries ...string) (string, error) {
	args := append([]string{
		"-v", "error",
		"-of", "default=noprint_wrappers=1",
	}, entries...)
	args = append(args, src)

	cmd := exec.Command(e.ffprobePath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%v, stderr: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 6, 64)
}
