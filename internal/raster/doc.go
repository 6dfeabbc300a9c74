// Package raster provides decode, resize, thumbnail, and encode primitives
// over owned RGBA pixel buffers. Callers receive freshly allocated buffers on
// every call; no raster is shared between operations.
package raster
