// Package frames samples a small, deterministic set of labeled stills from a
// captured video for multi-image analysis: start, midpoint, and end of the
// clip, each with a square thumbnail.
package frames
