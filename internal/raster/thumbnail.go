package raster

import (
	"image"

	"github.com/disintegration/imaging"
)

// SquareThumbnail derives a center-cropped square thumbnail of the given edge
// length. Inputs smaller than the target are scaled up so the result is
// always size x size.
func SquareThumbnail(img image.Image, size int) (*image.RGBA, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ErrEmpty
	}
	if size <= 0 {
		size = 1
	}
	filled := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
	return ToRGBA(filled), nil
}
