package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ScratchDir string `toml:"scratch_dir"`
	StoreDir   string `toml:"store_dir"`
	LogDir     string `toml:"log_dir"`
}

// Stills contains the byte-budget settings for still image compression.
type Stills struct {
	BudgetBytes    int64   `toml:"budget_bytes"`
	MaxDimension   int     `toml:"max_dimension"`
	QualityStart   float64 `toml:"quality_start"`
	QualityFloor   float64 `toml:"quality_floor"`
	QualityStep    float64 `toml:"quality_step"`
	QualityRestart float64 `toml:"quality_restart"`
	MinDimension   int     `toml:"min_dimension"`
	ShrinkFactor   float64 `toml:"shrink_factor"`
}

// Video contains the byte-budget settings for video transcoding.
type Video struct {
	BudgetBytes  int64 `toml:"budget_bytes"`
	TargetBytes  int64 `toml:"target_bytes"`
	AudioKbps    int   `toml:"audio_kbps"`
	FloorKbps    int   `toml:"floor_kbps"`
	MaxWidth     int   `toml:"max_width"`
	FrameRate    int   `toml:"frame_rate"`
	AudioEnabled bool  `toml:"audio_enabled"`
}

// Sketch contains the illustration renderer settings.
type Sketch struct {
	MaxDimension int `toml:"max_dimension"`
}

// Frames contains the keyframe sampler settings.
type Frames struct {
	Labels            []string `toml:"labels"`
	ThumbnailSize     int      `toml:"thumbnail_size"`
	EdgeOffsetSeconds float64  `toml:"edge_offset_seconds"`
}

// Tools contains the external media binaries the pipeline shells out to.
type Tools struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Lithic.
//
// Configuration sections by subsystem:
//   - Paths: scratch, store, and log directories
//   - Stills: still image byte budget and quality/dimension search knobs
//   - Video: video byte budget, bitrate inputs, and output clamps
//   - Sketch: illustration renderer limits
//   - Frames: keyframe sampling labels and thumbnail size
//   - Tools: external ffmpeg/ffprobe binaries
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Stills  Stills  `toml:"stills"`
	Video   Video   `toml:"video"`
	Sketch  Sketch  `toml:"sketch"`
	Frames  Frames  `toml:"frames"`
	Tools   Tools   `toml:"tools"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/lithic/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("lithic.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the pipeline writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ScratchDir, c.Paths.StoreDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for decoding and encoding.
func (c *Config) FFmpegBinary() string {
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		return defaultFFmpegBinary
	}
	return c.Tools.FFmpeg
}

// FFprobeBinary returns the ffprobe executable used for media inspection.
func (c *Config) FFprobeBinary() string {
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		return defaultFFprobeBinary
	}
	return c.Tools.FFprobe
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
