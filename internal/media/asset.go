package media

import (
	"encoding/base64"
	"net/http"
	"path/filepath"
	"strings"
)

// Asset is an immutable encoded media payload with its declared type.
// Re-encoding produces a new Asset; the original is never mutated.
type Asset struct {
	Data      []byte
	MediaType string
}

// NewAsset builds an Asset, sniffing the media type when the declared one is
// empty or generic.
func NewAsset(data []byte, declared, filename string) Asset {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if mediaType == "" || mediaType == "application/octet-stream" {
		mediaType = DetectMediaType(data, filename)
	}
	return Asset{Data: data, MediaType: mediaType}
}

// Size returns the payload length in bytes.
func (a Asset) Size() int64 {
	return int64(len(a.Data))
}

// IsImage reports whether the asset declares a still image type.
func (a Asset) IsImage() bool {
	return strings.HasPrefix(a.MediaType, "image/")
}

// IsVideo reports whether the asset declares a video type.
func (a Asset) IsVideo() bool {
	return strings.HasPrefix(a.MediaType, "video/")
}

// DataURL renders the asset as a base64 data URL for submission to the
// classification client.
func (a Asset) DataURL() string {
	return "data:" + a.MediaType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// DetectMediaType sniffs content bytes, falling back to the file extension
// for container formats http.DetectContentType cannot distinguish.
func DetectMediaType(data []byte, filename string) string {
	if len(data) > 0 {
		sniffed := http.DetectContentType(data)
		if sniffed != "application/octet-stream" {
			return sniffed
		}
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	default:
		return "application/octet-stream"
	}
}
