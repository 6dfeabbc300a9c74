// Command lithic is the CLI for the lithic media pipeline: byte-budget
// still compression, video transcoding, keyframe sampling, and sketch
// rendering for artifact captures.
package main
