// Package probe wraps ffprobe for container inspection: duration, native
// dimensions, stream layout, and reported size.
package probe
