package encoder

import (
	"bytes"
	"image"
	"image/png"
)

// encodePNG is lossless regardless of the flag; quality picks the effort tier.
func encodePNG(_ *Registry, img *image.NRGBA, quality int, _ bool) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(img.Pix) / 4)

	enc := &png.Encoder{CompressionLevel: PNGLevel(quality)}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pngIntermediate is the lossless hand-off format for the external tools.
func pngIntermediate(img *image.NRGBA) ([]byte, error) {
	var buf bytes.Buffer
	enc := &png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
