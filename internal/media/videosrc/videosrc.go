package videosrc

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"lithic/internal/media/probe"
)

// Source is a decodable video: it reports duration and native size and can
// yield an owned raster snapshot at an arbitrary timestamp.
type Source interface {
	Duration() float64
	Size() (width, height int)
	FrameAt(ctx context.Context, seconds float64) (*image.RGBA, error)
}

// ErrNoVideoStream indicates the container holds no decodable video.
var ErrNoVideoStream = errors.New("videosrc: no video stream")

// FFmpeg decodes frames from a file-backed video through the ffmpeg binary.
type FFmpeg struct {
	ffmpegBin string
	path      string
	duration  float64
	width     int
	height    int
	hasAudio  bool
}

// Open probes the container and returns a seekable source for it.
func Open(ctx context.Context, ffprobeBin, ffmpegBin, path string) (*FFmpeg, error) {
	result, err := probe.Inspect(ctx, ffprobeBin, path)
	if err != nil {
		return nil, err
	}
	width, height := result.VideoSize()
	if width <= 0 || height <= 0 {
		return nil, ErrNoVideoStream
	}
	ffmpegBin = strings.TrimSpace(ffmpegBin)
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &FFmpeg{
		ffmpegBin: ffmpegBin,
		path:      path,
		duration:  result.DurationSeconds(),
		width:     width,
		height:    height,
		hasAudio:  result.HasAudio(),
	}, nil
}

// Duration returns the container duration in seconds.
func (s *FFmpeg) Duration() float64 { return s.duration }

// Size returns the native width and height.
func (s *FFmpeg) Size() (int, int) { return s.width, s.height }

// HasAudio reports whether the source carries an audio track.
func (s *FFmpeg) HasAudio() bool { return s.hasAudio }

// Path returns the backing file path.
func (s *FFmpeg) Path() string { return s.path }

// FrameAt seeks to the given timestamp and captures one RGBA snapshot at
// native resolution. The timestamp is clamped into [0, duration].
func (s *FFmpeg) FrameAt(ctx context.Context, seconds float64) (*image.RGBA, error) {
	if seconds < 0 {
		seconds = 0
	}
	if s.duration > 0 && seconds > s.duration {
		seconds = s.duration
	}

	cmd := exec.CommandContext(ctx, s.ffmpegBin,
		"-v", "error",
		"-ss", formatSeconds(seconds),
		"-i", s.path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("videosrc frame at %.3fs: %w", seconds, err)
	}

	frameSize := s.width * s.height * 4
	if len(output) < frameSize {
		return nil, fmt.Errorf("videosrc frame at %.3fs: short frame, got %d of %d bytes", seconds, len(output), frameSize)
	}
	return &image.RGBA{
		Pix:    output[:frameSize],
		Stride: s.width * 4,
		Rect:   image.Rect(0, 0, s.width, s.height),
	}, nil
}

// Replay decodes the source from time zero on a fixed frame-rate grid,
// scaled to the given output size, and hands each frame to fn together with
// the elapsed source time. Frames arrive strictly in order, one at a time;
// fn returning an error stops the replay.
func (s *FFmpeg) Replay(ctx context.Context, fps, width, height int, fn func(frame *image.RGBA, elapsed float64) error) error {
	if fps <= 0 || width <= 0 || height <= 0 {
		return fmt.Errorf("videosrc replay: invalid grid %dfps %dx%d", fps, width, height)
	}

	cmd := exec.CommandContext(ctx, s.ffmpegBin,
		"-v", "error",
		"-i", s.path,
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-r", strconv.Itoa(fps),
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("videosrc replay: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("videosrc replay: %w", err)
	}

	frameSize := width * height * 4
	stride := width * 4
	rect := image.Rect(0, 0, width, height)
	index := 0
	var fnErr error
	for {
		if err := ctx.Err(); err != nil {
			fnErr = err
			break
		}
		pix := make([]uint8, frameSize)
		if _, err := io.ReadFull(stdout, pix); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			fnErr = fmt.Errorf("videosrc replay frame %d: %w", index, err)
			break
		}
		frame := &image.RGBA{Pix: pix, Stride: stride, Rect: rect}
		if err := fn(frame, float64(index)/float64(fps)); err != nil {
			fnErr = err
			break
		}
		index++
	}

	if fnErr != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return fnErr
	}
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("videosrc replay: %w", err)
	}
	return nil
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
