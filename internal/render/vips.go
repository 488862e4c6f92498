package render

import (
	"fmt"
	"sync"

	"thumbnailer/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsAvailable   bool
	vipsMutex       sync.Mutex
)

// InitVips starts libvips. Call once at startup; the renderer works without
// it, vips is only a faster resize/encode path. govips cannot be restarted
// in the same process, so Init/Shutdown is a once-per-process lifecycle.
func InitVips() {
	vipsMutex.Lock()
	defer vipsMutex.Unlock()

	if vipsInitialized {
		return
	}

	// Route vips logs through our logger, suppressing chatter below the
	// configured level.
	var vipsLogLevel vips.LogLevel
	if logging.GetLevel() <= logging.LevelDebug {
		vipsLogLevel = vips.LogLevelInfo
	} else {
		vipsLogLevel = vips.LogLevelWarning
	}
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch level {
		case vips.LogLevelError, vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, vipsLogLevel)

	// Conservative memory settings; thumbnails are small and bursty.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized (version: %s)", vips.Version)
}

// ShutdownVips releases libvips resources.
func ShutdownVips() {
	vipsMutex.Lock()
	defer vipsMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable reports whether the vips render path can be used.
func IsVipsAvailable() bool {
	vipsMutex.Lock()
	defer vipsMutex.Unlock()
	return vipsAvailable
}

// renderWithVips resizes and encodes in one pass inside libvips, straight
// from the frame's PNG bytes. vips shrinks during decode, which is far
// cheaper than decoding the full raster and resizing it in Go.
func renderWithVips(png []byte, width, height, quality int) ([]byte, error) {
	ref, err := vips.NewImageFromBuffer(png)
	if err != nil {
		return nil, fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	if err := ref.Thumbnail(width, height, vips.InterestingNone); err != nil {
		return nil, fmt.Errorf("vips thumbnail: %w", err)
	}

	data, _, err := ref.ExportJpeg(&vips.JpegExportParams{
		Quality:        quality,
		OptimizeCoding: true,
	})
	if err != nil {
		return nil, fmt.Errorf("vips export: %w", err)
	}
	return data, nil
}
