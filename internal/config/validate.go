package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStills(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateSketch(); err != nil {
		return err
	}
	if err := c.validateFrames(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStills() error {
	if c.Stills.QualityFloor >= c.Stills.QualityStart {
		return errors.New("stills.quality_floor must be below stills.quality_start")
	}
	if c.Stills.QualityStep >= c.Stills.QualityStart {
		return errors.New("stills.quality_step must be below stills.quality_start")
	}
	if c.Stills.QualityRestart > c.Stills.QualityStart {
		return errors.New("stills.quality_restart must not exceed stills.quality_start")
	}
	if c.Stills.QualityRestart <= c.Stills.QualityFloor {
		return errors.New("stills.quality_restart must be above stills.quality_floor")
	}
	if c.Stills.ShrinkFactor >= 1 {
		return errors.New("stills.shrink_factor must be below 1")
	}
	if c.Stills.MaxDimension != 0 && c.Stills.MaxDimension < c.Stills.MinDimension {
		return fmt.Errorf("stills.max_dimension %d is below stills.min_dimension %d", c.Stills.MaxDimension, c.Stills.MinDimension)
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.TargetBytes > c.Video.BudgetBytes {
		return fmt.Errorf("video.target_bytes %d exceeds video.budget_bytes %d", c.Video.TargetBytes, c.Video.BudgetBytes)
	}
	if c.Video.FrameRate > 120 {
		return fmt.Errorf("video.frame_rate %d is unreasonably high", c.Video.FrameRate)
	}
	return nil
}

func (c *Config) validateSketch() error {
	if c.Sketch.MaxDimension < 16 {
		return fmt.Errorf("sketch.max_dimension %d is too small to render", c.Sketch.MaxDimension)
	}
	return nil
}

func (c *Config) validateFrames() error {
	if len(c.Frames.Labels) != 3 {
		return fmt.Errorf("frames.labels must name exactly 3 labels, got %d", len(c.Frames.Labels))
	}
	if c.Frames.ThumbnailSize < 200 || c.Frames.ThumbnailSize > 400 {
		return fmt.Errorf("frames.thumbnail_size %d must be between 200 and 400", c.Frames.ThumbnailSize)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
