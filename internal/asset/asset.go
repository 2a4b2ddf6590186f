// Package asset holds the canonical decoded image every decoder produces
// and every encoder consumes.
package asset

import (
	"image"
	"image/color"

	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/disintegration/imaging"
)

// ColorModel tags the colour model of the source image before normalisation.
type ColorModel int

const (
	ModelUnknown ColorModel = iota
	ModelGray
	ModelGrayAlpha
	ModelRGB
	ModelRGBA
	ModelYCbCr
	ModelCMYK
	ModelPaletted
)

var modelNames = [...]string{"unknown", "gray", "gray_alpha", "rgb", "rgba", "ycbcr", "cmyk", "paletted"}

func (m ColorModel) String() string {
	if m < 0 || int(m) >= len(modelNames) {
		return "unknown"
	}
	return modelNames[m]
}

// Asset is an 8-bit, non-premultiplied RGBA image with origin (0,0) and
// stride 4*width. It belongs to exactly one job.
type Asset struct {
	Pix      *image.NRGBA
	Model    ColorModel
	Source   format.Format
	BitDepth int // per-channel depth of the source before normalisation
}

// New normalises img into the canonical layout.
func New(img image.Image, src format.Format) *Asset {
	model, depth := classify(img)
	return &Asset{
		Pix:      canonical(img),
		Model:    model,
		Source:   src,
		BitDepth: depth,
	}
}

// canonical returns img as a tightly packed NRGBA at the origin, copying
// only when the layout differs.
func canonical(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		b := n.Bounds()
		if b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
			return n
		}
	}
	// imaging.Clone converts every image type (16-bit included) to 8-bit NRGBA.
	return imaging.Clone(img)
}

// Derive wraps a transformed buffer, keeping the source tags.
func (a *Asset) Derive(pix *image.NRGBA) *Asset {
	return &Asset{Pix: canonical(pix), Model: a.Model, Source: a.Source, BitDepth: a.BitDepth}
}

// Width of the image in pixels; 0 for a released asset.
func (a *Asset) Width() int {
	if a == nil || a.Pix == nil {
		return 0
	}
	return a.Pix.Rect.Dx()
}

// Height of the image in pixels; 0 for a released asset.
func (a *Asset) Height() int {
	if a == nil || a.Pix == nil {
		return 0
	}
	return a.Pix.Rect.Dy()
}

// PixelBytes is the size of the pixel buffer.
func (a *Asset) PixelBytes() int64 {
	return PixelBytes(a.Width(), a.Height())
}

// PixelBytes is the canonical buffer size for a w×h image.
func PixelBytes(w, h int) int64 {
	if w <= 0 || h <= 0 {
		return 0
	}
	return int64(w) * int64(h) * 4
}

// HasAlpha reports whether any pixel is not fully opaque.
func (a *Asset) HasAlpha() bool {
	if a == nil || a.Pix == nil {
		return false
	}
	pix := a.Pix.Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xff {
			return true
		}
	}
	return false
}

// Release drops the pixel buffer so it can be collected.
func (a *Asset) Release() {
	if a != nil {
		a.Pix = nil
	}
}

func classify(img image.Image) (ColorModel, int) {
	switch img.(type) {
	case *image.Gray:
		return ModelGray, 8
	case *image.Gray16:
		return ModelGray, 16
	case *image.NRGBA, *image.RGBA:
		return ModelRGBA, 8
	case *image.NRGBA64, *image.RGBA64:
		return ModelRGBA, 16
	case *image.YCbCr:
		return ModelYCbCr, 8
	case *image.NYCbCrA:
		return ModelYCbCr, 8
	case *image.CMYK:
		return ModelCMYK, 8
	case *image.Paletted:
		return ModelPaletted, 8
	}
	switch img.ColorModel() {
	case color.GrayModel:
		return ModelGray, 8
	case color.Gray16Model:
		return ModelGray, 16
	case color.RGBA64Model, color.NRGBA64Model:
		return ModelRGBA, 16
	}
	return ModelUnknown, 8
}
