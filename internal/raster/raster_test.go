package raster

import (
	"image"
	"image/color"
	"testing"
)

func solid(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDecodeRoundTrip(t *testing.T) {
	src := solid(8, 6, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	data, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("encode png: %v", err)
	}
	img, format, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if format != "png" {
		t.Fatalf("expected png format, got %q", format)
	}
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 6 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := Decode([]byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestToRGBAOwnsBuffer(t *testing.T) {
	src := solid(4, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	dst := ToRGBA(src)
	dst.SetRGBA(0, 0, color.RGBA{A: 255})
	if got := src.RGBAAt(0, 0); got.R != 10 {
		t.Fatalf("mutating the copy changed the source: %v", got)
	}
}

func TestFitWithinPreservesAspect(t *testing.T) {
	src := solid(2000, 1000, color.RGBA{R: 1, A: 255})
	out, err := FitWithin(src, 800)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if out.Bounds().Dx() != 800 || out.Bounds().Dy() != 400 {
		t.Fatalf("unexpected size %v", out.Bounds())
	}
}

func TestFitWithinPassesSmallImages(t *testing.T) {
	src := solid(100, 50, color.RGBA{G: 1, A: 255})
	out, err := FitWithin(src, 800)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 50 {
		t.Fatalf("small image should keep its size, got %v", out.Bounds())
	}
}

func TestEncodeJPEGQualityOrdering(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 256, 256))
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			src.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	high, err := EncodeJPEG(src, 0.9)
	if err != nil {
		t.Fatalf("encode high: %v", err)
	}
	low, err := EncodeJPEG(src, 0.5)
	if err != nil {
		t.Fatalf("encode low: %v", err)
	}
	if len(low) >= len(high) {
		t.Fatalf("expected lower quality to be smaller: low=%d high=%d", len(low), len(high))
	}
}

func TestSquareThumbnailShape(t *testing.T) {
	src := solid(640, 480, color.RGBA{B: 90, A: 255})
	thumb, err := SquareThumbnail(src, 300)
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	if thumb.Bounds().Dx() != 300 || thumb.Bounds().Dy() != 300 {
		t.Fatalf("expected 300x300, got %v", thumb.Bounds())
	}
}

func TestSquareThumbnailDegenerateInput(t *testing.T) {
	src := solid(1, 1, color.RGBA{R: 255, A: 255})
	thumb, err := SquareThumbnail(src, 200)
	if err != nil {
		t.Fatalf("thumbnail: %v", err)
	}
	if thumb.Bounds().Dx() != 200 || thumb.Bounds().Dy() != 200 {
		t.Fatalf("expected upscaled square, got %v", thumb.Bounds())
	}
}
