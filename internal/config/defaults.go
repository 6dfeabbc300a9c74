package config

const (
	defaultScratchDir = "~/.local/share/lithic/scratch"
	defaultStoreDir   = "~/.local/share/lithic/store"
	defaultLogDir     = "~/.local/share/lithic/logs"

	defaultStillBudgetBytes    = 1_500_000
	defaultStillMaxDimension   = 1500
	defaultStillQualityStart   = 0.9
	defaultStillQualityFloor   = 0.5
	defaultStillQualityStep    = 0.1
	defaultStillQualityRestart = 0.8
	defaultStillMinDimension   = 1000
	defaultStillShrinkFactor   = 0.8

	defaultVideoBudgetBytes = 4_500_000
	defaultVideoTargetBytes = 4_000_000
	defaultVideoAudioKbps   = 64
	defaultVideoFloorKbps   = 200
	defaultVideoMaxWidth    = 1280
	defaultVideoFrameRate   = 30

	defaultSketchMaxDimension = 800

	defaultThumbnailSize     = 300
	defaultEdgeOffsetSeconds = 0.1

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

func defaultFrameLabels() []string {
	return []string{"overview", "detail", "closing"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			StoreDir:   defaultStoreDir,
			LogDir:     defaultLogDir,
		},
		Stills: Stills{
			BudgetBytes:    defaultStillBudgetBytes,
			MaxDimension:   defaultStillMaxDimension,
			QualityStart:   defaultStillQualityStart,
			QualityFloor:   defaultStillQualityFloor,
			QualityStep:    defaultStillQualityStep,
			QualityRestart: defaultStillQualityRestart,
			MinDimension:   defaultStillMinDimension,
			ShrinkFactor:   defaultStillShrinkFactor,
		},
		Video: Video{
			BudgetBytes:  defaultVideoBudgetBytes,
			TargetBytes:  defaultVideoTargetBytes,
			AudioKbps:    defaultVideoAudioKbps,
			FloorKbps:    defaultVideoFloorKbps,
			MaxWidth:     defaultVideoMaxWidth,
			FrameRate:    defaultVideoFrameRate,
			AudioEnabled: true,
		},
		Sketch: Sketch{
			MaxDimension: defaultSketchMaxDimension,
		},
		Frames: Frames{
			Labels:            defaultFrameLabels(),
			ThumbnailSize:     defaultThumbnailSize,
			EdgeOffsetSeconds: defaultEdgeOffsetSeconds,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
