// Package compress implements the byte-budget still image compressor: an
// iterative quality and dimension search that re-encodes a photograph until
// it fits under a configured byte ceiling, passing malformed or
// already-acceptable input through unchanged.
package compress
