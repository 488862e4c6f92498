// Package thumbnail orchestrates the get-or-create thumbnail pipeline:
// derive the cache key, try the cache, otherwise extract the midpoint
// frame, render the bounded JPEG and write it back.
//
// Every request runs on a bounded pool of background workers; callers get
// a one-shot result channel and never block beyond dispatch. Concurrent
// misses for the same resource are not deduplicated: both compute, both
// write, the last atomic rename wins and both callers receive a correct
// thumbnail.
package thumbnail
