package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"thumbnailer/internal/logging"
	"thumbnailer/internal/metrics"
)

// artifactExt is the extension of every cached artifact. Thumbnails are
// always encoded as JPEG, so the extension is fixed.
const artifactExt = ".jpg"

var (
	// ErrDirectoryUnavailable is returned when the cache root cannot be
	// created (permissions, parent is not a directory, ...).
	ErrDirectoryUnavailable = errors.New("cache directory unavailable")

	// ErrNotADirectory is returned when the cache root path exists but is
	// a regular file.
	ErrNotADirectory = errors.New("cache path is not a directory")
)

// Store is a flat-directory blob store for encoded thumbnails. One Store
// owns one root directory for its lifetime. All methods are safe for
// concurrent use: Put relies on atomic rename rather than locking, so
// concurrent writers for the same key simply race and the last one wins.
type Store struct {
	root string
}

// New returns a Store rooted at dir. The directory is not touched until
// Provision is called.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the cache root directory path.
func (s *Store) Root() string {
	return s.root
}

// Provision ensures the cache root exists as a directory. It is idempotent:
// provisioning an already-valid root is a no-op.
func (s *Store) Provision() error {
	if info, err := os.Stat(s.root); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotADirectory, s.root)
		}
		return nil
	}
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	logging.Debug("cache: provisioned root %s", s.root)
	return nil
}

// Path returns the artifact path for a key. The filename is the index;
// nothing else maps keys to files.
func (s *Store) Path(key string) string {
	return filepath.Join(s.root, key+artifactExt)
}

// Get returns the cached artifact for key, or ok=false if it is absent.
// Read errors are deliberately indistinguishable from misses: a corrupt or
// unreadable entry just looks like a miss and the caller recomputes.
func (s *Store) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return data, true
}

// Put stores data under key, replacing any previous artifact. The write is
// atomic: data goes to a temp file in the cache root and is renamed into
// place, so a concurrent Get never sees a torn file. Put reports false on
// any I/O failure rather than returning an error; a failed write simply
// means the result was not persisted.
func (s *Store) Put(key string, data []byte) bool {
	tmp, err := os.CreateTemp(s.root, key+".tmp-*")
	if err != nil {
		logging.Warn("cache: create temp for %s: %v", key, err)
		metrics.CacheWriteFailures.Inc()
		return false
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		logging.Warn("cache: write temp for %s: %v", key, err)
		metrics.CacheWriteFailures.Inc()
		return false
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		logging.Warn("cache: close temp for %s: %v", key, err)
		metrics.CacheWriteFailures.Inc()
		return false
	}

	// CreateTemp uses 0600; cached thumbnails should be world-readable
	// like the rest of the cache.
	if err := os.Chmod(tmpName, 0644); err != nil {
		logging.Debug("cache: chmod temp for %s: %v", key, err)
	}

	if err := os.Rename(tmpName, s.Path(key)); err != nil {
		os.Remove(tmpName)
		logging.Warn("cache: rename temp for %s: %v", key, err)
		metrics.CacheWriteFailures.Inc()
		return false
	}

	logging.Debug("cache: stored %s (%d bytes)", key, len(data))
	return true
}
