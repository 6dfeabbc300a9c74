// Package videosrc exposes decodable video sources: seekable per-timestamp
// snapshots for sampling and a fixed-rate sequential replay for transcoding.
// Decoding shells out to ffmpeg and reads raw RGBA frames over a pipe.
package videosrc
