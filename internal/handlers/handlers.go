package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"thumbnailer/internal/cache"
	"thumbnailer/internal/frame"
	"thumbnailer/internal/logging"
	"thumbnailer/internal/thumbnail"
)

// ThumbnailSource is the slice of the extractor the handlers need.
type ThumbnailSource interface {
	GetThumbnail(src string) <-chan thumbnail.Result
}

// Handlers bundles the HTTP endpoint implementations.
type Handlers struct {
	extractor ThumbnailSource
	startTime time.Time
}

// New creates the handler set.
func New(extractor ThumbnailSource) *Handlers {
	return &Handlers{
		extractor: extractor,
		startTime: time.Now(),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// Thumbnail serves GET /thumbnail?src=<url>. The extractor runs the
// pipeline on its worker pool; this handler just waits for the single
// result or for the client to give up.
func (h *Handlers) Thumbnail(w http.ResponseWriter, r *http.Request) {
	src := r.URL.Query().Get("src")
	if src == "" {
		writeError(w, http.StatusBadRequest, "missing src parameter")
		return
	}

	select {
	case res := <-h.extractor.GetThumbnail(src):
		if res.Err != nil {
			h.writeThumbnailError(w, src, res.Err)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write(res.Thumbnail)

	case <-r.Context().Done():
		writeError(w, http.StatusGatewayTimeout, "thumbnail generation timed out")
	}
}

func (h *Handlers) writeThumbnailError(w http.ResponseWriter, src string, err error) {
	logging.Warn("thumbnail request for %s failed: %v", src, err)

	switch {
	case errors.Is(err, cache.ErrInvalidIdentifier):
		writeError(w, http.StatusBadRequest, "invalid resource identifier")
	case errors.Is(err, frame.ErrResourceNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, thumbnail.ErrCantSaveThumbnail):
		writeError(w, http.StatusInternalServerError, "can't save thumbnail")
	default:
		writeError(w, http.StatusInternalServerError, "can't create thumbnail")
	}
}
