// Package decoder turns detected image bytes into the canonical asset.
//
// Each codec family has one entry in a fixed table: a cheap header probe
// used for memory accounting and a full decode. Anything that goes wrong
// after the magic bytes matched is reported as corrupt.
package decoder

import (
	"bytes"
	"image"
	"image/png"
	"io"

	"github.com/AnyUserName/imgpress/internal/asset"
	"github.com/AnyUserName/imgpress/internal/extcodec"
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/imgerr"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Options configures the external tools the decoder may need.
type Options struct {
	// AvifdecPath overrides the PATH lookup for avifdec.
	AvifdecPath string
}

// Decoder dispatches per format. Safe for concurrent use.
type Decoder struct {
	avifdec *extcodec.Tool
}

// New returns a decoder. External tools are located on first use.
func New(opts Options) *Decoder {
	return &Decoder{avifdec: extcodec.NewTool("avifdec", opts.AvifdecPath)}
}

type probeFunc func(d *Decoder, data []byte) (image.Point, error)
type decodeFunc func(d *Decoder, data []byte) (image.Image, error)

type entry struct {
	probe  probeFunc
	decode decodeFunc
}

var table = [format.Count]entry{
	format.PNG:  {probe: probeStd(png.DecodeConfig), decode: decodePNG},
	format.JPEG: {probe: probeJPEG, decode: decodeJPEG},
	format.WebP: {probe: probeWebP, decode: decodeWebP},
	format.AVIF: {probe: probeAVIF, decode: decodeAVIF},
	format.BMP:  {probe: probeStd(bmp.DecodeConfig), decode: decodeBMP},
	format.TIFF: {probe: probeStd(tiff.DecodeConfig), decode: decodeTIFF},
}

func lookup(f format.Format) (entry, error) {
	if f <= format.Unknown || f >= format.Count || table[f].decode == nil {
		return entry{}, imgerr.New(imgerr.KindUnsupportedFormat, "decode", "no decoder for %s", f)
	}
	return table[f], nil
}

// Probe returns the pixel dimensions declared in the header.
func (d *Decoder) Probe(f format.Format, data []byte) (image.Point, error) {
	e, err := lookup(f)
	if err != nil {
		return image.Point{}, err
	}
	pt, err := e.probe(d, data)
	if err != nil {
		return image.Point{}, imgerr.Wrap(imgerr.KindCorrupt, "probe "+f.String(), err)
	}
	if pt.X <= 0 || pt.Y <= 0 {
		return image.Point{}, imgerr.New(imgerr.KindCorrupt, "probe "+f.String(),
			"invalid dimensions %dx%d", pt.X, pt.Y)
	}
	return pt, nil
}

// Decode fully decodes data and normalises it to 8-bit NRGBA.
func (d *Decoder) Decode(f format.Format, data []byte) (*asset.Asset, error) {
	e, err := lookup(f)
	if err != nil {
		return nil, err
	}
	img, err := e.decode(d, data)
	if err != nil {
		return nil, imgerr.Wrap(imgerr.KindCorrupt, "decode "+f.String(), err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, imgerr.New(imgerr.KindCorrupt, "decode "+f.String(),
			"invalid dimensions %dx%d", b.Dx(), b.Dy())
	}
	return asset.New(img, f), nil
}

// DecodeAny detects the format and decodes.
func (d *Decoder) DecodeAny(data []byte) (*asset.Asset, error) {
	f, err := format.Detect(data)
	if err != nil {
		return nil, err
	}
	return d.Decode(f, data)
}

// AVIFAvailable reports whether avifdec is installed.
func (d *Decoder) AVIFAvailable() bool {
	return d.avifdec.Available()
}

func probeStd(fn func(r io.Reader) (image.Config, error)) probeFunc {
	return func(_ *Decoder, data []byte) (image.Point, error) {
		cfg, err := fn(bytes.NewReader(data))
		if err != nil {
			return image.Point{}, err
		}
		return image.Pt(cfg.Width, cfg.Height), nil
	}
}

func decodePNG(_ *Decoder, data []byte) (image.Image, error) {
	return png.Decode(bytes.NewReader(data))
}

func decodeBMP(_ *Decoder, data []byte) (image.Image, error) {
	return bmp.Decode(bytes.NewReader(data))
}

func decodeTIFF(_ *Decoder, data []byte) (image.Image, error) {
	return tiff.Decode(bytes.NewReader(data))
}
