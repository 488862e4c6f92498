package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"time"

	"thumbnailer/internal/frame"
	"thumbnailer/internal/logging"
	"thumbnailer/internal/metrics"

	"github.com/disintegration/imaging"
)

var (
	// ErrUnsupportedFrame is returned when the input frame has no usable
	// raster.
	ErrUnsupportedFrame = errors.New("unsupported frame")

	// ErrEncodeFailed is returned when the thumbnail cannot be encoded.
	ErrEncodeFailed = errors.New("thumbnail encode failed")
)

// Render produces the JPEG thumbnail for a frame. Frames with height at
// most maxHeight are encoded as-is; taller frames are resized to height
// maxHeight with the width rounded up to preserve aspect ratio. quality is
// the JPEG quality, 1-100.
func Render(f *frame.Frame, maxHeight, quality int) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.RenderDuration.Observe(time.Since(start).Seconds())
	}()

	if f == nil || f.Image == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrUnsupportedFrame)
	}

	w, h := f.Width(), f.Height()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty raster %dx%d", ErrUnsupportedFrame, w, h)
	}

	img := f.Image
	if h > maxHeight {
		newW := scaledWidth(w, h, maxHeight)

		if IsVipsAvailable() && len(f.PNG) > 0 {
			data, err := renderWithVips(f.PNG, newW, maxHeight, quality)
			if err == nil {
				return data, nil
			}
			logging.Debug("render: vips path failed, falling back to imaging: %v", err)
		}

		img = imaging.Resize(img, newW, maxHeight, imaging.Lanczos)
	}

	return encodeJPEG(img, quality)
}

// scaledWidth computes ceil(maxHeight * w / h), the width that preserves
// aspect ratio at the bounded height. Rounding is always up so a nonzero
// source never collapses to zero width.
func scaledWidth(w, h, maxHeight int) int {
	return (maxHeight*w + h - 1) / h
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}
	return buf.Bytes(), nil
}
