package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStills()
	c.normalizeVideo()
	c.normalizeSketch()
	c.normalizeFrames()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StoreDir) == "" {
		c.Paths.StoreDir = defaultStoreDir
	}
	if c.Paths.StoreDir, err = expandPath(c.Paths.StoreDir); err != nil {
		return fmt.Errorf("paths.store_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStills() {
	if c.Stills.BudgetBytes <= 0 {
		c.Stills.BudgetBytes = defaultStillBudgetBytes
	}
	if c.Stills.MaxDimension < 0 {
		c.Stills.MaxDimension = 0
	}
	if c.Stills.QualityStart <= 0 {
		c.Stills.QualityStart = defaultStillQualityStart
	}
	if c.Stills.QualityFloor <= 0 {
		c.Stills.QualityFloor = defaultStillQualityFloor
	}
	if c.Stills.QualityStep <= 0 {
		c.Stills.QualityStep = defaultStillQualityStep
	}
	if c.Stills.QualityRestart <= 0 {
		c.Stills.QualityRestart = defaultStillQualityRestart
	}
	if c.Stills.MinDimension <= 0 {
		c.Stills.MinDimension = defaultStillMinDimension
	}
	if c.Stills.ShrinkFactor <= 0 {
		c.Stills.ShrinkFactor = defaultStillShrinkFactor
	}
}

func (c *Config) normalizeVideo() {
	if c.Video.BudgetBytes <= 0 {
		c.Video.BudgetBytes = defaultVideoBudgetBytes
	}
	if c.Video.TargetBytes <= 0 {
		c.Video.TargetBytes = defaultVideoTargetBytes
	}
	if c.Video.AudioKbps <= 0 {
		c.Video.AudioKbps = defaultVideoAudioKbps
	}
	if c.Video.FloorKbps <= 0 {
		c.Video.FloorKbps = defaultVideoFloorKbps
	}
	if c.Video.MaxWidth <= 0 {
		c.Video.MaxWidth = defaultVideoMaxWidth
	}
	if c.Video.FrameRate <= 0 {
		c.Video.FrameRate = defaultVideoFrameRate
	}
}

func (c *Config) normalizeSketch() {
	if c.Sketch.MaxDimension <= 0 {
		c.Sketch.MaxDimension = defaultSketchMaxDimension
	}
}

func (c *Config) normalizeFrames() {
	labels := make([]string, 0, len(c.Frames.Labels))
	for _, label := range c.Frames.Labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		labels = append(labels, trimmed)
	}
	if len(labels) == 0 {
		labels = defaultFrameLabels()
	}
	c.Frames.Labels = labels
	if c.Frames.ThumbnailSize <= 0 {
		c.Frames.ThumbnailSize = defaultThumbnailSize
	}
	if c.Frames.EdgeOffsetSeconds <= 0 {
		c.Frames.EdgeOffsetSeconds = defaultEdgeOffsetSeconds
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
