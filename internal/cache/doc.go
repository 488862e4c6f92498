// Package cache implements the on-disk thumbnail cache.
//
// Artifacts are stored in a single flat directory, one file per cache key,
// named <key>.jpg. The filename is the entire index: there is no manifest
// and no metadata sidecar. Keys are derived from resource identifiers with
// DeriveKey. Writes go through a temp-file-then-rename sequence so readers
// never observe a partially written artifact.
package cache
