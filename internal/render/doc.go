// Package render turns a raw video frame into an encoded JPEG thumbnail.
//
// Frames taller than the height bound are shrunk to exactly
// (ceil(maxHeight*w/h), maxHeight) with Lanczos resampling; frames already
// within the bound are encoded untouched. When libvips is initialized the
// resize and encode run in vips directly from the frame's PNG bytes, with a
// silent fallback to the pure-Go imaging path on any vips failure.
package render
