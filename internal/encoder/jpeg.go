package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
)

// encodeJPEG has no alpha channel to write to, so translucent pixels are
// composited onto white first.
func encodeJPEG(_ *Registry, img *image.NRGBA, quality int, _ bool) ([]byte, error) {
	var src image.Image = img
	if !opaque(img) {
		src = flatten(img)
	}

	var buf bytes.Buffer
	buf.Grow(len(img.Pix) / 8)

	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: JPEGQuality(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func opaque(img *image.NRGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0xff {
			return false
		}
	}
	return true
}

func flatten(img *image.NRGBA) *image.RGBA {
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Over)
	return dst
}
