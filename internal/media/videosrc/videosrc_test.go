package videosrc

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
)

func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

const probeStub = `#!/bin/sh
cat <<'EOF'
{"streams":[{"index":0,"codec_type":"video","width":4,"height":2},{"index":1,"codec_type":"audio","channels":1}],"format":{"duration":"1.0"}}
EOF
`

func TestOpenReadsMetadata(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeStub(t, dir, "ffprobe", probeStub)

	src, err := Open(context.Background(), ffprobe, "ffmpeg", "clip.mp4")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if src.Duration() != 1.0 {
		t.Fatalf("unexpected duration %v", src.Duration())
	}
	width, height := src.Size()
	if width != 4 || height != 2 {
		t.Fatalf("unexpected size %dx%d", width, height)
	}
	if !src.HasAudio() {
		t.Fatal("expected audio")
	}
}

func TestOpenRejectsAudioOnly(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeStub(t, dir, "ffprobe", `#!/bin/sh
echo '{"streams":[{"index":0,"codec_type":"audio"}],"format":{"duration":"1.0"}}'
`)
	if _, err := Open(context.Background(), ffprobe, "ffmpeg", "audio.m4a"); err != ErrNoVideoStream {
		t.Fatalf("expected ErrNoVideoStream, got %v", err)
	}
}

func TestFrameAtReadsOneFrame(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeStub(t, dir, "ffprobe", probeStub)
	// 4x2 RGBA frame = 32 bytes.
	ffmpeg := writeStub(t, dir, "ffmpeg", `#!/bin/sh
head -c 32 /dev/zero
`)

	src, err := Open(context.Background(), ffprobe, ffmpeg, "clip.mp4")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	frame, err := src.FrameAt(context.Background(), 0.5)
	if err != nil {
		t.Fatalf("frame at: %v", err)
	}
	if frame.Rect.Dx() != 4 || frame.Rect.Dy() != 2 {
		t.Fatalf("unexpected frame bounds %v", frame.Rect)
	}
}

func TestFrameAtRejectsShortOutput(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeStub(t, dir, "ffprobe", probeStub)
	ffmpeg := writeStub(t, dir, "ffmpeg", `#!/bin/sh
head -c 10 /dev/zero
`)

	src, err := Open(context.Background(), ffprobe, ffmpeg, "clip.mp4")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := src.FrameAt(context.Background(), 0); err == nil {
		t.Fatal("expected short frame error")
	}
}

func TestReplayDeliversFramesInOrder(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeStub(t, dir, "ffprobe", probeStub)
	// Three 2x2 RGBA frames = 48 bytes.
	ffmpeg := writeStub(t, dir, "ffmpeg", `#!/bin/sh
head -c 48 /dev/zero
`)

	src, err := Open(context.Background(), ffprobe, ffmpeg, "clip.mp4")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	var elapsed []float64
	err = src.Replay(context.Background(), 30, 2, 2, func(frame *image.RGBA, t float64) error {
		if frame.Rect.Dx() != 2 || frame.Rect.Dy() != 2 {
			return errors.New("bad frame bounds")
		}
		elapsed = append(elapsed, t)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(elapsed) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(elapsed))
	}
	want := []float64{0, 1.0 / 30, 2.0 / 30}
	for i, ts := range want {
		if elapsed[i] != ts {
			t.Fatalf("frame %d elapsed %v, want %v", i, elapsed[i], ts)
		}
	}
}

func TestReplayStopsOnCallbackError(t *testing.T) {
	dir := t.TempDir()
	ffprobe := writeStub(t, dir, "ffprobe", probeStub)
	ffmpeg := writeStub(t, dir, "ffmpeg", `#!/bin/sh
head -c 48 /dev/zero
`)

	src, err := Open(context.Background(), ffprobe, ffmpeg, "clip.mp4")
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	wantErr := errors.New("stop")
	calls := 0
	err = src.Replay(context.Background(), 30, 2, 2, func(*image.RGBA, float64) error {
		calls++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected replay to stop after first frame, got %d calls", calls)
	}
}
