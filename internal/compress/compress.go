package compress

import (
	"context"
	"image"
	"math"

	"lithic/internal/config"
	"lithic/internal/media"
	"lithic/internal/raster"
)

// Budget describes the byte ceiling and the quality/dimension search knobs
// used to force a still image under it.
type Budget struct {
	TargetBytes    int64
	QualityStart   float64
	QualityFloor   float64
	QualityStep    float64
	QualityRestart float64
	MinDimension   int
	ShrinkFactor   float64
	// MaxDimension pre-clamps oversized inputs before the search starts.
	// Zero disables the clamp.
	MaxDimension int
}

// BudgetFromConfig maps the stills configuration onto a Budget.
func BudgetFromConfig(cfg config.Stills) Budget {
	return Budget{
		TargetBytes:    cfg.BudgetBytes,
		QualityStart:   cfg.QualityStart,
		QualityFloor:   cfg.QualityFloor,
		QualityStep:    cfg.QualityStep,
		QualityRestart: cfg.QualityRestart,
		MinDimension:   cfg.MinDimension,
		ShrinkFactor:   cfg.ShrinkFactor,
		MaxDimension:   cfg.MaxDimension,
	}
}

// Result reports the outcome of a compression attempt. A result over budget
// is a normal outcome, not an error.
type Result struct {
	Asset        media.Asset
	Passthrough  bool
	MetBudget    bool
	Quality      float64
	Attempts     int
	ShrinkRounds int
	Width        int
	Height       int
}

const qualityEpsilon = 1e-9

// Compress forces the asset under the budget via iterative quality and
// dimension reduction. Malformed input is never an error: the original asset
// is passed through unchanged. Quality decreases monotonically between
// dimension rounds; each dimension shrink resets quality to the restart
// value.
func Compress(ctx context.Context, asset media.Asset, budget Budget) Result {
	if !asset.IsImage() || asset.Size() <= budget.TargetBytes {
		return Result{
			Asset:       asset,
			Passthrough: true,
			MetBudget:   asset.Size() <= budget.TargetBytes,
		}
	}

	decoded, _, err := raster.Decode(asset.Data)
	if err != nil {
		return Result{Asset: asset, Passthrough: true}
	}

	source, err := raster.FitWithin(decoded, budget.MaxDimension)
	if err != nil {
		return Result{Asset: asset, Passthrough: true}
	}

	width := source.Bounds().Dx()
	height := source.Bounds().Dy()
	quality := budget.QualityStart

	result := Result{Quality: quality, Width: width, Height: height}
	var current image.Image = source
	var encoded []byte

	for {
		if ctx.Err() != nil {
			break
		}

		encoded, err = raster.EncodeJPEG(current, quality)
		if err != nil {
			return Result{Asset: asset, Passthrough: true}
		}
		result.Attempts++
		result.Quality = quality
		result.Width = current.Bounds().Dx()
		result.Height = current.Bounds().Dy()

		if int64(len(encoded)) <= budget.TargetBytes {
			result.MetBudget = true
			break
		}

		if quality > budget.QualityFloor+qualityEpsilon {
			quality -= budget.QualityStep
			continue
		}

		if width > budget.MinDimension || height > budget.MinDimension {
			width = max(1, int(math.Round(float64(width)*budget.ShrinkFactor)))
			height = max(1, int(math.Round(float64(height)*budget.ShrinkFactor)))
			shrunk, err := raster.Scale(source, width, height)
			if err != nil {
				break
			}
			current = shrunk
			quality = budget.QualityRestart
			result.ShrinkRounds++
			continue
		}

		// Quality and dimension floors both exhausted; keep the best effort.
		break
	}

	if len(encoded) == 0 {
		return Result{Asset: asset, Passthrough: true}
	}
	result.Asset = media.Asset{Data: encoded, MediaType: "image/jpeg"}
	return result
}
