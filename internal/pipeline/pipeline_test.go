package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lithic/internal/media/videosrc"
	"lithic/internal/pipeline"
	"lithic/internal/sketch"
	"lithic/internal/store"
	"lithic/internal/testsupport"
)

func writePNG(t *testing.T, path string, width, height int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(7))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return buf.Bytes()
}

func TestCompressStillRecordsOperation(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStillBudget(2_000))
	st := testsupport.MustOpenStore(t, cfg)
	p := pipeline.New(cfg, nil, st)

	path := filepath.Join(t.TempDir(), "flake.png")
	writePNG(t, path, 256, 256)

	ctx := context.Background()
	result, err := p.CompressStill(ctx, path)
	if err != nil {
		t.Fatalf("CompressStill: %v", err)
	}
	if result.Passthrough {
		t.Fatal("expected an encode for noisy image over budget")
	}
	if !strings.HasPrefix(result.DataURL, "data:image/jpeg;base64,") {
		t.Fatalf("unexpected data URL prefix: %.40s", result.DataURL)
	}
	if result.RecordID == "" {
		t.Fatal("expected a store record")
	}

	record, err := st.GetByID(ctx, result.RecordID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if record == nil || record.Operation != store.OperationCompress {
		t.Fatalf("unexpected record: %#v", record)
	}
	if record.SourcePath != path {
		t.Fatalf("record source %q, want %q", record.SourcePath, path)
	}
	var detail struct {
		Quality  float64 `json:"quality"`
		Attempts int     `json:"attempts"`
	}
	if err := record.Detail(&detail); err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if detail.Attempts == 0 {
		t.Fatal("expected attempt count in record detail")
	}
}

func TestCompressStillWithoutStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := pipeline.New(cfg, nil, nil)

	path := filepath.Join(t.TempDir(), "tiny.png")
	data := writePNG(t, path, 8, 8)

	result, err := p.CompressStill(context.Background(), path)
	if err != nil {
		t.Fatalf("CompressStill: %v", err)
	}
	if !result.Passthrough {
		t.Fatal("expected passthrough for a tiny image")
	}
	if !bytes.Equal(result.Asset.Data, data) {
		t.Fatal("expected original bytes back")
	}
	if result.RecordID != "" {
		t.Fatalf("expected no record without a store, got %q", result.RecordID)
	}
}

func TestTranscodeVideoPassthroughRecords(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	p := pipeline.New(cfg, nil, st)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, path, 2_000)

	ctx := context.Background()
	result, err := p.TranscodeVideo(ctx, path)
	if err != nil {
		t.Fatalf("TranscodeVideo: %v", err)
	}
	if !result.Passthrough {
		t.Fatal("expected passthrough for under-budget clip")
	}
	if result.RecordID == "" {
		t.Fatal("expected a store record")
	}

	record, err := st.GetByID(ctx, result.RecordID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if record == nil || record.Operation != store.OperationTranscode {
		t.Fatalf("unexpected record: %#v", record)
	}
	if !record.Passthrough {
		t.Fatal("expected passthrough flag on record")
	}
	if record.InputBytes != 2_000 {
		t.Fatalf("record input bytes %d, want 2000", record.InputBytes)
	}
}

type fakeSource struct {
	duration float64
	width    int
	height   int
}

func (s *fakeSource) Duration() float64 { return s.duration }
func (s *fakeSource) Size() (int, int)  { return s.width, s.height }

func (s *fakeSource) FrameAt(_ context.Context, seconds float64) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	shade := uint8(seconds * 50)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = shade
		img.Pix[i+3] = 255
	}
	return img, nil
}

func TestSampleFramesProducesLabeledOutputs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	p := pipeline.New(cfg, nil, st)

	restore := pipeline.SetOpenVideoForTests(func(context.Context, string, string, string) (videosrc.Source, error) {
		return &fakeSource{duration: 2.0, width: 640, height: 480}, nil
	})
	defer restore()

	path := filepath.Join(t.TempDir(), "clip.mp4")
	testsupport.WriteFile(t, path, 100)

	ctx := context.Background()
	result, err := p.SampleFrames(ctx, path)
	if err != nil {
		t.Fatalf("SampleFrames: %v", err)
	}
	if len(result.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(result.Frames))
	}
	wantLabels := []string{"overview", "detail", "closing"}
	for i, frame := range result.Frames {
		if frame.Label != wantLabels[i] {
			t.Fatalf("frame %d label %q, want %q", i, frame.Label, wantLabels[i])
		}
		if !strings.HasPrefix(frame.DataURL, "data:image/jpeg;base64,") {
			t.Fatalf("frame %d data URL missing prefix", i)
		}
		if !strings.HasPrefix(frame.ThumbnailDataURL, "data:image/jpeg;base64,") {
			t.Fatalf("frame %d thumbnail URL missing prefix", i)
		}
		if frame.Width != 640 || frame.Height != 480 {
			t.Fatalf("frame %d size %dx%d, want 640x480", i, frame.Width, frame.Height)
		}
	}
	if result.Duration != 2.0 {
		t.Fatalf("duration %v, want 2.0", result.Duration)
	}

	record, err := st.GetByID(ctx, result.RecordID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if record == nil || record.Operation != store.OperationFrames {
		t.Fatalf("unexpected record: %#v", record)
	}
}

func TestSampleFramesOpenFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := pipeline.New(cfg, nil, nil)

	restore := pipeline.SetOpenVideoForTests(func(context.Context, string, string, string) (videosrc.Source, error) {
		return nil, errors.New("no video stream")
	})
	defer restore()

	if _, err := p.SampleFrames(context.Background(), "missing.mp4"); err == nil {
		t.Fatal("expected error when the source cannot be opened")
	}
}

func TestRenderSketchProducesPNGDataURL(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	p := pipeline.New(cfg, nil, st)

	path := filepath.Join(t.TempDir(), "artifact.png")
	writePNG(t, path, 64, 64)

	ctx := context.Background()
	result, err := p.RenderSketch(ctx, path)
	if err != nil {
		t.Fatalf("RenderSketch: %v", err)
	}
	if !strings.HasPrefix(result.DataURL, "data:image/png;base64,") {
		t.Fatalf("unexpected data URL prefix: %.40s", result.DataURL)
	}

	record, err := st.GetByID(ctx, result.RecordID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if record == nil || record.Operation != store.OperationSketch {
		t.Fatalf("unexpected record: %#v", record)
	}
}

func TestRenderSketchUndecodableIsHardError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	p := pipeline.New(cfg, nil, nil)

	path := filepath.Join(t.TempDir(), "garbage.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	_, err := p.RenderSketch(context.Background(), path)
	if !errors.Is(err, sketch.ErrNoRenderSurface) {
		t.Fatalf("expected ErrNoRenderSurface, got %v", err)
	}
}
