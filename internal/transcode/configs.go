package transcode

// EncoderConfig describes one container/codec combination the transcoder may
// initialize. Selection walks the configured list in order and uses the
// first configuration whose encoder starts successfully.
type EncoderConfig struct {
	Name       string
	Extension  string
	MediaType  string
	VideoCodec string
	AudioCodec string
	ExtraArgs  []string
}

// DefaultEncoderConfigs returns the ordered fallback list. The list is data,
// not nested conditionals, so the retry policy stays auditable and easy to
// extend.
func DefaultEncoderConfigs() []EncoderConfig {
	return []EncoderConfig{
		{
			Name:       "h264-mp4",
			Extension:  ".mp4",
			MediaType:  "video/mp4",
			VideoCodec: "libx264",
			AudioCodec: "aac",
			ExtraArgs:  []string{"-pix_fmt", "yuv420p", "-movflags", "+faststart"},
		},
		{
			Name:       "vp8-webm",
			Extension:  ".webm",
			MediaType:  "video/webm",
			VideoCodec: "libvpx",
			AudioCodec: "libopus",
			ExtraArgs:  []string{"-pix_fmt", "yuv420p"},
		},
	}
}
