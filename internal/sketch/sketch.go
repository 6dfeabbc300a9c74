package sketch

import (
	"errors"
	"fmt"
	"image"
	"math"

	"lithic/internal/config"
	"lithic/internal/raster"
)

// ErrNoRenderSurface indicates the renderer could not obtain a drawable
// raster for the input. Unlike every other failure in the pipeline this is a
// hard error: a silently degraded illustration would be indistinguishable
// from a correct one.
var ErrNoRenderSurface = errors.New("sketch: no render surface")

// Options controls the illustration render.
type Options struct {
	// MaxDimension bounds max(width, height) of the working raster.
	MaxDimension int
}

// OptionsFromConfig maps the sketch configuration onto Options.
func OptionsFromConfig(cfg config.Sketch) Options {
	return Options{MaxDimension: cfg.MaxDimension}
}

const defaultMaxDimension = 800

// Luminance weights and composite constants. The renderer is a pure function
// of these and the input pixels; identical input yields byte-identical
// output.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114

	parchmentScale  = 0.15
	edgeGain        = 2.0
	strongEdgeLevel = 30.0
	strongEdgeScale = 1.5
	toneCurveGamma  = 1.3
	toneCurveMid    = 128.0
	warmTintRed     = 5.0
	warmTintGreen   = 2.0
)

// Render synthesizes a monochrome archaeological illustration from one
// photograph: grayscale conversion, Sobel gradient magnitude, a parchment
// composite, and a contrast tone curve with a warm tint.
func Render(img image.Image, opts Options) (*image.RGBA, error) {
	if img == nil {
		return nil, ErrNoRenderSurface
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrNoRenderSurface
	}

	maxDim := opts.MaxDimension
	if maxDim <= 0 {
		maxDim = defaultMaxDimension
	}
	src, err := raster.FitWithin(img, maxDim)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoRenderSurface, err)
	}

	width := src.Bounds().Dx()
	height := src.Bounds().Dy()

	gray := grayscale(src, width, height)
	magnitude := sobelMagnitude(gray, width, height)

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			base := 255 - parchmentScale*gray[idx]
			edge := math.Min(255, magnitude[idx]*edgeGain)
			value := base - edge
			if edge > strongEdgeLevel {
				value = math.Min(value, 255-edge*strongEdgeScale)
			}
			value = clamp(value, 0, 255)
			value = toneCurve(value)

			offset := out.PixOffset(x, y)
			out.Pix[offset+0] = quantize(math.Min(255, value+warmTintRed))
			out.Pix[offset+1] = quantize(math.Min(255, value+warmTintGreen))
			out.Pix[offset+2] = quantize(value)
			out.Pix[offset+3] = 255
		}
	}
	return out, nil
}

// RenderBytes decodes a stored photograph, renders the illustration, and
// returns it PNG-encoded. Undecodable input is a hard error.
func RenderBytes(data []byte, opts Options) ([]byte, error) {
	img, _, err := raster.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoRenderSurface, err)
	}
	rendered, err := Render(img, opts)
	if err != nil {
		return nil, err
	}
	return raster.EncodePNG(rendered)
}

// grayscale converts the raster to perceptual luminance values.
func grayscale(src *image.RGBA, width, height int) []float64 {
	gray := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			offset := src.PixOffset(x, y)
			r := float64(src.Pix[offset+0])
			g := float64(src.Pix[offset+1])
			b := float64(src.Pix[offset+2])
			gray[y*width+x] = lumaR*r + lumaG*g + lumaB*b
		}
	}
	return gray
}

// sobelMagnitude computes the gradient magnitude at each interior pixel using
// the standard 3x3 kernels. Border pixels stay at zero.
func sobelMagnitude(gray []float64, width, height int) []float64 {
	magnitude := make([]float64, width*height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			tl := gray[(y-1)*width+x-1]
			tc := gray[(y-1)*width+x]
			tr := gray[(y-1)*width+x+1]
			ml := gray[y*width+x-1]
			mr := gray[y*width+x+1]
			bl := gray[(y+1)*width+x-1]
			bc := gray[(y+1)*width+x]
			br := gray[(y+1)*width+x+1]

			gx := -tl + tr - 2*ml + 2*mr - bl + br
			gy := -tl - 2*tc - tr + bl + 2*bc + br
			magnitude[y*width+x] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return magnitude
}

// toneCurve boosts contrast with an exponent of 1.3 mirrored around the
// midpoint.
func toneCurve(value float64) float64 {
	if value < toneCurveMid {
		return math.Pow(value/toneCurveMid, toneCurveGamma) * toneCurveMid
	}
	return 255 - math.Pow((255-value)/toneCurveMid, toneCurveGamma)*toneCurveMid
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func quantize(v float64) uint8 {
	return uint8(clamp(math.Round(v), 0, 255))
}
