// Package frame extracts a single still frame from a video asset using
// ffmpeg and ffprobe subprocesses.
//
// The extractor probes the asset's first video stream for its duration in
// the stream's own timescale, targets the midpoint by integer division, and
// asks ffmpeg for exactly one accurately-seeked frame piped out as PNG.
// Extraction blocks for the duration of decoding and is only ever called
// from the orchestrator's background workers.
package frame
