package transcode

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrEncodeUnavailable indicates no encoder configuration could be
// initialized. The transcoder absorbs it by passing the original bytes
// through.
var ErrEncodeUnavailable = errors.New("transcode: encoder unavailable")

// FrameEncoder consumes raw RGBA frames one at a time and assembles an
// encoded container when finished.
type FrameEncoder interface {
	Begin(ctx context.Context, width, height, fps int, bitrateBps int64) error
	EncodeFrame(frame *image.RGBA) error
	End() ([]byte, error)
}

// encoderParams carries the per-invocation inputs an encoder needs beyond
// the frame stream.
type encoderParams struct {
	config     EncoderConfig
	binary     string
	scratchDir string
	sourcePath string
	withAudio  bool
	audioKbps  int
}

// ffmpegEncoder feeds raw frames into an ffmpeg process over stdin and
// collects the muxed container from a scratch file.
type ffmpegEncoder struct {
	params  encoderParams
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	outPath string
	frameSz int
}

func newFFmpegEncoder(params encoderParams) FrameEncoder {
	return &ffmpegEncoder{params: params}
}

func (e *ffmpegEncoder) Begin(ctx context.Context, width, height, fps int, bitrateBps int64) error {
	if width <= 0 || height <= 0 || fps <= 0 {
		return fmt.Errorf("%w: invalid geometry %dx%d@%d", ErrEncodeUnavailable, width, height, fps)
	}
	if _, err := exec.LookPath(e.params.binary); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeUnavailable, err)
	}

	e.outPath = filepath.Join(e.params.scratchDir, fmt.Sprintf("transcode-%d%s", time.Now().UnixNano(), e.params.config.Extension))
	args := encodeArgs(e.params, width, height, fps, bitrateBps, e.outPath)

	cmd := exec.CommandContext(ctx, e.params.binary, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeUnavailable, err)
	}

	e.cmd = cmd
	e.stdin = stdin
	e.frameSz = width * height * 4
	return nil
}

func (e *ffmpegEncoder) EncodeFrame(frame *image.RGBA) error {
	if e.cmd == nil {
		return errors.New("transcode: encoder not started")
	}
	if len(frame.Pix) < e.frameSz {
		return fmt.Errorf("transcode: frame has %d bytes, want %d", len(frame.Pix), e.frameSz)
	}
	if _, err := e.stdin.Write(frame.Pix[:e.frameSz]); err != nil {
		return fmt.Errorf("transcode: write frame: %w", err)
	}
	return nil
}

func (e *ffmpegEncoder) End() ([]byte, error) {
	if e.cmd == nil {
		return nil, errors.New("transcode: encoder not started")
	}
	defer os.Remove(e.outPath)

	if err := e.stdin.Close(); err != nil {
		_ = e.cmd.Process.Kill()
		_ = e.cmd.Wait()
		return nil, fmt.Errorf("transcode: close encoder input: %w", err)
	}
	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("transcode: encoder exited: %w", err)
	}

	data, err := os.ReadFile(e.outPath)
	if err != nil {
		return nil, fmt.Errorf("transcode: read encoder output: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("transcode: encoder produced no output")
	}
	return data, nil
}

// encodeArgs builds the ffmpeg invocation: raw RGBA frames on stdin, an
// optional audio track mapped from the source container, and the configured
// codec pair at the computed bitrate.
func encodeArgs(params encoderParams, width, height, fps int, bitrateBps int64, outPath string) []string {
	args := []string{
		"-v", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.Itoa(fps),
		"-i", "pipe:0",
	}
	if params.withAudio {
		args = append(args, "-i", params.sourcePath)
	}
	args = append(args, "-map", "0:v")
	if params.withAudio {
		// The trailing ? keeps a source without usable audio non-fatal.
		args = append(args,
			"-map", "1:a?",
			"-c:a", params.config.AudioCodec,
			"-b:a", fmt.Sprintf("%dk", params.audioKbps),
			"-shortest",
		)
	}
	args = append(args,
		"-c:v", params.config.VideoCodec,
		"-b:v", strconv.FormatInt(bitrateBps, 10),
	)
	args = append(args, params.config.ExtraArgs...)
	args = append(args, outPath)
	return args
}

// mediaTypeForExtension resolves the output media type from the chosen
// configuration, defaulting to mp4.
func mediaTypeForExtension(config EncoderConfig) string {
	if strings.TrimSpace(config.MediaType) != "" {
		return config.MediaType
	}
	return "video/mp4"
}
