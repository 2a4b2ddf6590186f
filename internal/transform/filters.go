package transform

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

func applyFilter(img *image.NRGBA, f Filter) *image.NRGBA {
	switch f {
	case Grayscale:
		return imaging.Grayscale(img)
	case Sepia:
		return imaging.AdjustFunc(img, sepia)
	case Invert:
		return imaging.Invert(img)
	case Blur:
		return imaging.Blur(img, blurSigma)
	case Sharpen:
		return imaging.Sharpen(img, sharpenSigma)
	}
	return img
}

// sepia is the usual Microsoft tone matrix; alpha is kept.
func sepia(c color.NRGBA) color.NRGBA {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	return color.NRGBA{
		R: clamp8(0.393*r + 0.769*g + 0.189*b),
		G: clamp8(0.349*r + 0.686*g + 0.168*b),
		B: clamp8(0.272*r + 0.534*g + 0.131*b),
		A: c.A,
	}
}

func clamp8(v float64) uint8 {
	switch {
	case v >= 255:
		return 255
	case v <= 0:
		return 0
	}
	return uint8(v)
}
