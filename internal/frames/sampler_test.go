package frames

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
)

type fakeSource struct {
	duration float64
	width    int
	height   int
	failAt   func(seconds float64) bool
	requests []float64
}

func (s *fakeSource) Duration() float64 { return s.duration }

func (s *fakeSource) Size() (int, int) { return s.width, s.height }

func (s *fakeSource) FrameAt(_ context.Context, seconds float64) (*image.RGBA, error) {
	s.requests = append(s.requests, seconds)
	if s.failAt != nil && s.failAt(seconds) {
		return nil, errors.New("seek failed")
	}
	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(255 * seconds / s.duration), A: 255})
		}
	}
	return img, nil
}

func testOptions() Options {
	return Options{
		Labels:        []string{"overview", "detail", "closing"},
		ThumbnailSize: 200,
		EdgeOffset:    0.1,
	}
}

func TestSamplePoints(t *testing.T) {
	points := SamplePoints(2.0, 0.1)
	want := []float64{0.1, 1.0, 1.9}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i := range want {
		if points[i] != want[i] {
			t.Fatalf("point %d = %v, want %v", i, points[i], want[i])
		}
	}
}

func TestSamplePointsClampShortClip(t *testing.T) {
	for _, point := range SamplePoints(0.05, 0.1) {
		if point < 0 || point > 0.05 {
			t.Fatalf("point %v outside [0, duration]", point)
		}
	}
}

func TestSampleReturnsThreeLabeledFrames(t *testing.T) {
	src := &fakeSource{duration: 2.0, width: 320, height: 240}
	result, err := Sample(context.Background(), src, testOptions(), nil)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(result))
	}
	wantLabels := []string{"overview", "detail", "closing"}
	wantTimestamps := []float64{0.1, 1.0, 1.9}
	for i, frame := range result {
		if frame.Label != wantLabels[i] {
			t.Fatalf("frame %d label %q, want %q", i, frame.Label, wantLabels[i])
		}
		if frame.Timestamp != wantTimestamps[i] {
			t.Fatalf("frame %d timestamp %v, want %v", i, frame.Timestamp, wantTimestamps[i])
		}
		if frame.Thumbnail.Bounds().Dx() != 200 || frame.Thumbnail.Bounds().Dy() != 200 {
			t.Fatalf("frame %d thumbnail bounds %v", i, frame.Thumbnail.Bounds())
		}
		if len(frame.JPEG) == 0 || len(frame.ThumbnailJPEG) == 0 {
			t.Fatalf("frame %d missing encoded bytes", i)
		}
	}
}

func TestSampleSkipsFailedPoints(t *testing.T) {
	src := &fakeSource{
		duration: 2.0,
		width:    64,
		height:   64,
		failAt:   func(seconds float64) bool { return seconds == 1.0 },
	}
	result, err := Sample(context.Background(), src, testOptions(), nil)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 frames after one failure, got %d", len(result))
	}
	// Labels are consumed in sequence by successful samples.
	if result[0].Label != "overview" || result[1].Label != "detail" {
		t.Fatalf("unexpected labels %q, %q", result[0].Label, result[1].Label)
	}
	if result[0].Timestamp != 0.1 || result[1].Timestamp != 1.9 {
		t.Fatalf("unexpected timestamps %v, %v", result[0].Timestamp, result[1].Timestamp)
	}
}

func TestSampleIsIdempotent(t *testing.T) {
	src := &fakeSource{duration: 4.0, width: 32, height: 32}
	first, err := Sample(context.Background(), src, testOptions(), nil)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	second, err := Sample(context.Background(), src, testOptions(), nil)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected identical frame counts, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Timestamp != second[i].Timestamp || first[i].Label != second[i].Label {
			t.Fatalf("frame %d differs between runs", i)
		}
	}
}

func TestSampleDegenerateOnePixelSource(t *testing.T) {
	src := &fakeSource{duration: 1.0, width: 1, height: 1}
	result, err := Sample(context.Background(), src, testOptions(), nil)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if len(result) == 0 {
		t.Fatal("expected at least one frame from a 1x1 source")
	}
	if result[0].Thumbnail.Bounds().Dx() != 200 {
		t.Fatalf("expected upscaled thumbnail, got %v", result[0].Thumbnail.Bounds())
	}
}

func TestSampleNoLabelsNoWork(t *testing.T) {
	src := &fakeSource{duration: 2.0, width: 16, height: 16}
	result, err := Sample(context.Background(), src, Options{}, nil)
	if err != nil {
		t.Fatalf("sample: %v", err)
	}
	if result != nil {
		t.Fatalf("expected no frames, got %d", len(result))
	}
	if len(src.requests) != 0 {
		t.Fatalf("expected no capture calls, got %d", len(src.requests))
	}
}
