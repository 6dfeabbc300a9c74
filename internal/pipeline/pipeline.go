package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"lithic/internal/compress"
	"lithic/internal/config"
	"lithic/internal/frames"
	"lithic/internal/logging"
	"lithic/internal/media"
	"lithic/internal/media/videosrc"
	"lithic/internal/sketch"
	"lithic/internal/store"
	"lithic/internal/transcode"
)

// openVideo is a package-level variable so tests can substitute a fake
// decode pipeline.
var openVideo = func(ctx context.Context, ffprobeBin, ffmpegBin, path string) (videosrc.Source, error) {
	return videosrc.Open(ctx, ffprobeBin, ffmpegBin, path)
}

// SetOpenVideoForTests swaps the video source opener and returns a restore func.
func SetOpenVideoForTests(fn func(context.Context, string, string, string) (videosrc.Source, error)) func() {
	previous := openVideo
	openVideo = fn
	return func() {
		openVideo = previous
	}
}

// Pipeline binds configuration, logging and the asset-record store around
// the four media processors. The store is optional; a nil store disables
// record keeping.
type Pipeline struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *store.Store
	transcoder *transcode.Transcoder
}

// New constructs a pipeline. logger may be nil, in which case output is
// discarded.
func New(cfg *config.Config, logger *slog.Logger, st *store.Store) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		store:      st,
		transcoder: transcode.New(cfg, logger),
	}
}

// StillResult is a compressed still plus its client-facing data URL.
type StillResult struct {
	compress.Result
	DataURL  string
	RecordID string
}

// CompressStill reads an image file and compresses it under the configured
// still budget.
func (p *Pipeline) CompressStill(ctx context.Context, path string) (StillResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StillResult{}, fmt.Errorf("read still: %w", err)
	}
	return p.CompressStillData(ctx, data, path)
}

// CompressStillData compresses in-memory image data. name is used for media
// type detection and record keeping only.
func (p *Pipeline) CompressStillData(ctx context.Context, data []byte, name string) (StillResult, error) {
	asset := media.NewAsset(data, "", name)
	result := compress.Compress(ctx, asset, compress.BudgetFromConfig(p.cfg.Stills))

	p.logger.Info("still compressed",
		logging.String(logging.FieldOperation, string(store.OperationCompress)),
		logging.String("source", name),
		logging.Int64(logging.FieldInputBytes, asset.Size()),
		logging.Int64(logging.FieldOutputBytes, result.Asset.Size()),
		logging.Bool("passthrough", result.Passthrough),
		logging.Bool("met_budget", result.MetBudget))

	record := &store.Record{
		SourcePath:      name,
		Operation:       store.OperationCompress,
		InputMediaType:  asset.MediaType,
		OutputMediaType: result.Asset.MediaType,
		InputBytes:      asset.Size(),
		OutputBytes:     result.Asset.Size(),
		Passthrough:     result.Passthrough,
	}
	_ = record.SetDetail(map[string]any{
		"quality":       result.Quality,
		"attempts":      result.Attempts,
		"shrink_rounds": result.ShrinkRounds,
		"met_budget":    result.MetBudget,
		"width":         result.Width,
		"height":        result.Height,
	})
	recordID := p.record(ctx, record)

	return StillResult{
		Result:   result,
		DataURL:  result.Asset.DataURL(),
		RecordID: recordID,
	}, nil
}

// VideoResult is a transcoded video plus its client-facing data URL.
type VideoResult struct {
	transcode.Result
	DataURL  string
	RecordID string
}

// TranscodeVideo re-encodes the video at path under the configured budget.
func (p *Pipeline) TranscodeVideo(ctx context.Context, path string) (VideoResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return VideoResult{}, fmt.Errorf("stat video: %w", err)
	}

	result, err := p.transcoder.Transcode(ctx, path, transcode.OptionsFromConfig(p.cfg.Video))
	if err != nil {
		return VideoResult{}, err
	}

	p.logger.Info("video transcoded",
		logging.String(logging.FieldOperation, string(store.OperationTranscode)),
		logging.String("source", path),
		logging.Int64(logging.FieldInputBytes, info.Size()),
		logging.Int64(logging.FieldOutputBytes, result.Asset.Size()),
		logging.Bool("passthrough", result.Passthrough))

	record := &store.Record{
		SourcePath:      path,
		Operation:       store.OperationTranscode,
		InputMediaType:  media.DetectMediaType(nil, path),
		OutputMediaType: result.Asset.MediaType,
		InputBytes:      info.Size(),
		OutputBytes:     result.Asset.Size(),
		Passthrough:     result.Passthrough,
	}
	_ = record.SetDetail(map[string]any{
		"config":      result.Config,
		"bitrate_bps": result.BitrateBps,
		"width":       result.Width,
		"height":      result.Height,
		"frames":      result.Frames,
	})
	recordID := p.record(ctx, record)

	return VideoResult{
		Result:   result,
		DataURL:  result.Asset.DataURL(),
		RecordID: recordID,
	}, nil
}

// FrameOutput is one sampled keyframe with client-facing data URLs.
type FrameOutput struct {
	Label            string
	Timestamp        float64
	Width            int
	Height           int
	DataURL          string
	ThumbnailDataURL string
}

// FramesResult is the set of sampled keyframes for one video.
type FramesResult struct {
	Duration float64
	Frames   []FrameOutput
	RecordID string
}

// SampleFrames extracts the labeled keyframes from the video at path.
func (p *Pipeline) SampleFrames(ctx context.Context, path string) (FramesResult, error) {
	src, err := openVideo(ctx, p.cfg.FFprobeBinary(), p.cfg.FFmpegBinary(), path)
	if err != nil {
		return FramesResult{}, fmt.Errorf("open video: %w", err)
	}

	sampled, err := frames.Sample(ctx, src, frames.OptionsFromConfig(p.cfg.Frames), p.logger)
	if err != nil {
		return FramesResult{}, err
	}

	result := FramesResult{Duration: src.Duration()}
	var outputBytes int64
	for _, frame := range sampled {
		bounds := frame.Image.Bounds()
		outputBytes += int64(len(frame.JPEG) + len(frame.ThumbnailJPEG))
		result.Frames = append(result.Frames, FrameOutput{
			Label:            frame.Label,
			Timestamp:        frame.Timestamp,
			Width:            bounds.Dx(),
			Height:           bounds.Dy(),
			DataURL:          media.Asset{Data: frame.JPEG, MediaType: "image/jpeg"}.DataURL(),
			ThumbnailDataURL: media.Asset{Data: frame.ThumbnailJPEG, MediaType: "image/jpeg"}.DataURL(),
		})
	}

	p.logger.Info("frames sampled",
		logging.String(logging.FieldOperation, string(store.OperationFrames)),
		logging.String("source", path),
		logging.Int("frames", len(result.Frames)),
		logging.Float64("duration_seconds", result.Duration))

	record := &store.Record{
		SourcePath:      path,
		Operation:       store.OperationFrames,
		InputMediaType:  media.DetectMediaType(nil, path),
		OutputMediaType: "image/jpeg",
		OutputBytes:     outputBytes,
	}
	labels := make([]string, 0, len(sampled))
	timestamps := make([]float64, 0, len(sampled))
	for _, frame := range sampled {
		labels = append(labels, frame.Label)
		timestamps = append(timestamps, frame.Timestamp)
	}
	_ = record.SetDetail(map[string]any{
		"labels":           labels,
		"timestamps":       timestamps,
		"duration_seconds": result.Duration,
	})
	result.RecordID = p.record(ctx, record)

	return result, nil
}

// SketchResult is a rendered sketch plus its client-facing data URL.
type SketchResult struct {
	Asset    media.Asset
	DataURL  string
	RecordID string
}

// RenderSketch converts the image at path into the pencil-sketch treatment.
// Undecodable input surfaces sketch.ErrNoRenderSurface.
func (p *Pipeline) RenderSketch(ctx context.Context, path string) (SketchResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SketchResult{}, fmt.Errorf("read sketch source: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return SketchResult{}, err
	}

	rendered, err := sketch.RenderBytes(data, sketch.OptionsFromConfig(p.cfg.Sketch))
	if err != nil {
		return SketchResult{}, err
	}

	asset := media.Asset{Data: rendered, MediaType: "image/png"}
	p.logger.Info("sketch rendered",
		logging.String(logging.FieldOperation, string(store.OperationSketch)),
		logging.String("source", path),
		logging.Int64(logging.FieldInputBytes, int64(len(data))),
		logging.Int64(logging.FieldOutputBytes, asset.Size()))

	record := &store.Record{
		SourcePath:      path,
		Operation:       store.OperationSketch,
		InputMediaType:  media.DetectMediaType(data, path),
		OutputMediaType: asset.MediaType,
		InputBytes:      int64(len(data)),
		OutputBytes:     asset.Size(),
	}
	recordID := p.record(ctx, record)

	return SketchResult{
		Asset:    asset,
		DataURL:  asset.DataURL(),
		RecordID: recordID,
	}, nil
}

// record persists the row when a store is attached. Recording failures are
// logged and absorbed; they never fail the media operation itself.
func (p *Pipeline) record(ctx context.Context, record *store.Record) string {
	if p.store == nil {
		return ""
	}
	if err := p.store.RecordOperation(ctx, record); err != nil {
		p.logger.Warn("failed to record operation", logging.Error(err))
		return ""
	}
	return record.ID
}
