package frames

import (
	"context"
	"image"
	"log/slog"

	"lithic/internal/config"
	"lithic/internal/logging"
	"lithic/internal/media/videosrc"
	"lithic/internal/raster"
)

// LabeledFrame is one sampled still: an ordering-significant label, the
// captured raster, a square thumbnail, and JPEG encodings of both. Created
// once per sample point and never mutated afterwards.
type LabeledFrame struct {
	Label         string
	Timestamp     float64
	Image         *image.RGBA
	Thumbnail     *image.RGBA
	JPEG          []byte
	ThumbnailJPEG []byte
}

// Options controls sampling.
type Options struct {
	// Labels is the fixed label sequence consumed in order, one per
	// successful sample. Its length caps the number of frames returned.
	Labels []string
	// ThumbnailSize is the square thumbnail edge length in pixels.
	ThumbnailSize int
	// EdgeOffset is the distance in seconds from each end of the clip for
	// the first and last sample points.
	EdgeOffset float64
}

// OptionsFromConfig maps the frames configuration onto Options.
func OptionsFromConfig(cfg config.Frames) Options {
	return Options{
		Labels:        cfg.Labels,
		ThumbnailSize: cfg.ThumbnailSize,
		EdgeOffset:    cfg.EdgeOffsetSeconds,
	}
}

const frameJPEGQuality = 0.85

// SamplePoints returns the candidate timestamps for a clip of the given
// duration: just after the start, the midpoint, and just before the end,
// each clamped into [0, duration].
func SamplePoints(duration, edgeOffset float64) []float64 {
	if edgeOffset <= 0 {
		edgeOffset = 0.1
	}
	points := []float64{edgeOffset, duration / 2, duration - edgeOffset}
	for i, point := range points {
		if point < 0 {
			point = 0
		}
		if duration > 0 && point > duration {
			point = duration
		}
		points[i] = point
	}
	return points
}

// Sample captures up to len(labels) labeled frames from the source at fixed
// normalized timestamps. A failed seek or capture skips that sample point
// rather than aborting the operation, so fewer frames than labels is a
// legitimate result. Frames are returned in timestamp order and repeated
// calls against the same source are idempotent.
func Sample(ctx context.Context, src videosrc.Source, opts Options, logger *slog.Logger) ([]LabeledFrame, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if len(opts.Labels) == 0 {
		return nil, nil
	}
	thumbSize := opts.ThumbnailSize
	if thumbSize <= 0 {
		thumbSize = 300
	}

	points := SamplePoints(src.Duration(), opts.EdgeOffset)
	if len(points) > len(opts.Labels) {
		points = points[:len(opts.Labels)]
	}

	result := make([]LabeledFrame, 0, len(points))
	for _, timestamp := range points {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		frame, err := src.FrameAt(ctx, timestamp)
		if err != nil {
			logger.Warn("frame capture failed, skipping sample point",
				logging.Float64("timestamp", timestamp),
				logging.Error(err))
			continue
		}
		labeled, err := buildFrame(opts.Labels[len(result)], timestamp, frame, thumbSize)
		if err != nil {
			logger.Warn("frame encode failed, skipping sample point",
				logging.Float64("timestamp", timestamp),
				logging.Error(err))
			continue
		}
		result = append(result, labeled)
	}
	return result, nil
}

func buildFrame(label string, timestamp float64, frame *image.RGBA, thumbSize int) (LabeledFrame, error) {
	thumb, err := raster.SquareThumbnail(frame, thumbSize)
	if err != nil {
		return LabeledFrame{}, err
	}
	frameJPEG, err := raster.EncodeJPEG(frame, frameJPEGQuality)
	if err != nil {
		return LabeledFrame{}, err
	}
	thumbJPEG, err := raster.EncodeJPEG(thumb, frameJPEGQuality)
	if err != nil {
		return LabeledFrame{}, err
	}
	return LabeledFrame{
		Label:         label,
		Timestamp:     timestamp,
		Image:         frame,
		Thumbnail:     thumb,
		JPEG:          frameJPEG,
		ThumbnailJPEG: thumbJPEG,
	}, nil
}
