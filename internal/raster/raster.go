package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrEmpty indicates a raster with no pixels.
var ErrEmpty = errors.New("raster: empty image")

// Decode parses encoded image bytes into a decoded image and its format name.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("raster decode: %w", err)
	}
	return img, format, nil
}

// ToRGBA copies img into a freshly allocated RGBA buffer. Every pipeline
// operation owns its raster exclusively, so the copy is unconditional even
// when img is already *image.RGBA.
func ToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// Scale resamples img into an owned RGBA buffer of the given size.
func Scale(img image.Image, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster scale: invalid target %dx%d", width, height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst, nil
}

// FitWithin scales img down so that max(width, height) <= maxDim, preserving
// aspect ratio. Images already inside the bound are copied unchanged.
func FitWithin(img image.Image, maxDim int) (*image.RGBA, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, ErrEmpty
	}
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return ToRGBA(img), nil
	}
	scale := float64(maxDim) / float64(max(width, height))
	newW := max(1, int(math.Round(float64(width)*scale)))
	newH := max(1, int(math.Round(float64(height)*scale)))
	return Scale(img, newW, newH)
}

// EncodeJPEG encodes img as JPEG. Quality is expressed on the pipeline's
// 0..1 scale and mapped onto the encoder's 1..100 range.
func EncodeJPEG(img image.Image, quality float64) ([]byte, error) {
	q := int(math.Round(quality * 100))
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, fmt.Errorf("raster encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("raster encode png: %w", err)
	}
	return buf.Bytes(), nil
}
