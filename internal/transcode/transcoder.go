package transcode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"lithic/internal/config"
	"lithic/internal/logging"
	"lithic/internal/media"
	"lithic/internal/media/videosrc"
)

// Options describes the byte budget and output clamps for one transcode.
type Options struct {
	// BudgetBytes is the ceiling under which the source passes through
	// untouched.
	BudgetBytes int64
	// TargetBytes is the encode target, kept with margin below BudgetBytes.
	TargetBytes  int64
	AudioKbps    int
	FloorKbps    int
	MaxWidth     int
	FrameRate    int
	AudioEnabled bool
	Configs      []EncoderConfig
}

// OptionsFromConfig maps the video configuration onto Options.
func OptionsFromConfig(cfg config.Video) Options {
	return Options{
		BudgetBytes:  cfg.BudgetBytes,
		TargetBytes:  cfg.TargetBytes,
		AudioKbps:    cfg.AudioKbps,
		FloorKbps:    cfg.FloorKbps,
		MaxWidth:     cfg.MaxWidth,
		FrameRate:    cfg.FrameRate,
		AudioEnabled: cfg.AudioEnabled,
	}
}

// Result reports the outcome of a transcode. Passthrough results carry the
// original bytes and are successful completions, not failures.
type Result struct {
	Asset       media.Asset
	Passthrough bool
	Config      string
	BitrateBps  int64
	Width       int
	Height      int
	Frames      int
}

// replaySource is the subset of videosrc.FFmpeg the transcoder drives.
type replaySource interface {
	Duration() float64
	Size() (int, int)
	HasAudio() bool
	Replay(ctx context.Context, fps, width, height int, fn func(frame *image.RGBA, elapsed float64) error) error
}

// openSource is a package-level variable so tests can substitute a fake
// decode pipeline.
var openSource = func(ctx context.Context, ffprobeBin, ffmpegBin, path string) (replaySource, error) {
	return videosrc.Open(ctx, ffprobeBin, ffmpegBin, path)
}

// SetOpenSourceForTests overrides the source opener during tests.
func SetOpenSourceForTests(fn func(context.Context, string, string, string) (replaySource, error)) func() {
	previous := openSource
	openSource = fn
	return func() {
		openSource = previous
	}
}

// Transcoder re-encodes videos under a byte budget by replaying the source
// frame-by-frame into an ffmpeg encoder at a computed bitrate.
type Transcoder struct {
	ffmpegBin  string
	ffprobeBin string
	scratchDir string
	logger     *slog.Logger
	newEncoder func(params encoderParams) FrameEncoder
}

// New constructs a Transcoder using the configured binaries and scratch
// directory.
func New(cfg *config.Config, logger *slog.Logger) *Transcoder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transcoder{
		ffmpegBin:  cfg.FFmpegBinary(),
		ffprobeBin: cfg.FFprobeBinary(),
		scratchDir: cfg.Paths.ScratchDir,
		logger:     logging.NewComponentLogger(logger, "transcode"),
		newEncoder: newFFmpegEncoder,
	}
}

// ComputeBitrate derives the target video bitrate in bits per second. The
// audio reservation is subtracted from the byte target before dividing by
// duration, tying per-second quality inversely to clip length, and the
// result never drops below the floor.
func ComputeBitrate(targetBytes int64, durationSeconds float64, audioKbps, floorKbps int) int64 {
	floor := int64(floorKbps) * 1000
	if durationSeconds <= 0 {
		return floor
	}
	targetBits := targetBytes * 8
	videoBits := float64(targetBits) - durationSeconds*float64(audioKbps)*1000
	bitrate := int64(videoBits / durationSeconds)
	if bitrate < floor {
		return floor
	}
	return bitrate
}

// ClampSize bounds the output width to maxWidth preserving aspect ratio and
// rounds both dimensions down to even values for codec compatibility.
func ClampSize(width, height, maxWidth int) (int, int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if maxWidth > 0 && width > maxWidth {
		scale := float64(maxWidth) / float64(width)
		height = int(math.Round(float64(height) * scale))
		width = maxWidth
	}
	width -= width % 2
	height -= height % 2
	if width < 2 {
		width = 2
	}
	if height < 2 {
		height = 2
	}
	return width, height
}

// Transcode re-encodes the video file at path under the configured budget.
// Sources already under budget, sources that cannot be probed, and encoder
// initialization failures all pass the original bytes through; the only
// errors returned are I/O failures reading the source itself.
func (t *Transcoder) Transcode(ctx context.Context, path string, opts Options) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("transcode stat: %w", err)
	}

	if info.Size() <= opts.BudgetBytes {
		return t.passthrough(path)
	}

	src, err := openSource(ctx, t.ffprobeBin, t.ffmpegBin, path)
	if err != nil {
		t.logger.Warn("probe failed, passing video through", logging.Error(err))
		return t.passthrough(path)
	}

	duration := src.Duration()
	if duration <= 0 {
		t.logger.Warn("unknown duration, passing video through")
		return t.passthrough(path)
	}

	nativeW, nativeH := src.Size()
	width, height := ClampSize(nativeW, nativeH, opts.MaxWidth)
	if width == 0 || height == 0 {
		return t.passthrough(path)
	}

	bitrate := ComputeBitrate(opts.TargetBytes, duration, opts.AudioKbps, opts.FloorKbps)
	fps := opts.FrameRate
	if fps <= 0 {
		fps = 30
	}

	configs := opts.Configs
	if len(configs) == 0 {
		configs = DefaultEncoderConfigs()
	}

	encoder, chosen, err := t.selectEncoder(ctx, configs, path, src.HasAudio() && opts.AudioEnabled, opts.AudioKbps, width, height, fps, bitrate)
	if err != nil {
		t.logger.Warn("no encoder configuration initialized, passing video through", logging.Error(err))
		return t.passthrough(path)
	}

	t.logger.Info("transcoding video",
		logging.String("config", chosen.Name),
		logging.Int64("bitrate_bps", bitrate),
		logging.Int("width", width),
		logging.Int("height", height),
		logging.Float64("duration_seconds", duration))

	// The encoder sees one intermediate raster owned by this invocation;
	// each decoded frame is drawn into it before being fed onward.
	intermediate := image.NewRGBA(image.Rect(0, 0, width, height))
	sampler := logging.NewProgressSampler(10)
	frameCount := 0

	replayErr := src.Replay(ctx, fps, width, height, func(frame *image.RGBA, elapsed float64) error {
		draw.Draw(intermediate, intermediate.Bounds(), frame, frame.Bounds().Min, draw.Src)
		if err := encoder.EncodeFrame(intermediate); err != nil {
			return err
		}
		frameCount++
		percent := elapsed / duration * 100
		if sampler.ShouldLog(percent) {
			t.logger.Debug("transcode progress", logging.Float64("percent", percent))
		}
		return nil
	})
	if replayErr != nil {
		t.logger.Warn("frame replay failed, passing video through", logging.Error(replayErr))
		_, _ = encoder.End()
		return t.passthrough(path)
	}

	data, err := encoder.End()
	if err != nil || len(data) == 0 {
		t.logger.Warn("encoder produced no output, passing video through", logging.Error(err))
		return t.passthrough(path)
	}

	return Result{
		Asset:      media.Asset{Data: data, MediaType: mediaTypeForExtension(chosen)},
		Config:     chosen.Name,
		BitrateBps: bitrate,
		Width:      width,
		Height:     height,
		Frames:     frameCount,
	}, nil
}

// selectEncoder walks the ordered configuration list and returns the first
// encoder that initializes.
func (t *Transcoder) selectEncoder(ctx context.Context, configs []EncoderConfig, sourcePath string, withAudio bool, audioKbps, width, height, fps int, bitrate int64) (FrameEncoder, EncoderConfig, error) {
	var lastErr error
	for _, cfg := range configs {
		encoder := t.newEncoder(encoderParams{
			config:     cfg,
			binary:     t.ffmpegBin,
			scratchDir: t.scratchDir,
			sourcePath: sourcePath,
			withAudio:  withAudio,
			audioKbps:  audioKbps,
		})
		if err := encoder.Begin(ctx, width, height, fps, bitrate); err != nil {
			t.logger.Debug("encoder configuration rejected",
				logging.String("config", cfg.Name),
				logging.Error(err))
			lastErr = err
			continue
		}
		return encoder, cfg, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no encoder configurations provided")
	}
	return nil, EncoderConfig{}, fmt.Errorf("%w: %w", ErrEncodeUnavailable, lastErr)
}

// TranscodeBytes spools in-memory video data to the scratch directory and
// runs the file-based transcode against it.
func (t *Transcoder) TranscodeBytes(ctx context.Context, data []byte, mediaType string, opts Options) (Result, error) {
	dir := t.scratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("transcode scratch dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("source-%d%s", time.Now().UnixNano(), extensionForMediaType(mediaType)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Result{}, fmt.Errorf("transcode spool source: %w", err)
	}
	defer os.Remove(path)

	return t.Transcode(ctx, path, opts)
}

func extensionForMediaType(mediaType string) string {
	switch mediaType {
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	case "video/x-matroska":
		return ".mkv"
	default:
		return ".bin"
	}
}

func (t *Transcoder) passthrough(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("transcode read source: %w", err)
	}
	return Result{
		Asset:       media.NewAsset(data, "", path),
		Passthrough: true,
	}, nil
}
