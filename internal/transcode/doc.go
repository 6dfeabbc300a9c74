// Package transcode forces a video under a byte budget by re-encoding it at
// a duration-derived bitrate. The source is replayed frame-by-frame onto an
// intermediate raster and fed to the first encoder configuration that
// initializes from an ordered fallback list; anything unsupported degrades
// to passing the original bytes through.
package transcode
