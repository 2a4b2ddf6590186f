// Package encoder turns the canonical asset back into compressed bytes.
//
// PNG and JPEG use the standard library. WebP and AVIF shell out to cwebp
// and avifenc, which keeps the build free of CGO.
package encoder

import (
	"image"

	"github.com/AnyUserName/imgpress/internal/asset"
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/imgerr"
)

// encodeFunc encodes one image. quality is already range-checked by the
// caller; each family maps it to its native parameter.
type encodeFunc func(r *Registry, img *image.NRGBA, quality int, lossless bool) ([]byte, error)

// table is indexed by target format. Input-only formats have no entry.
var table = [format.Count]encodeFunc{
	format.PNG:  encodePNG,
	format.JPEG: encodeJPEG,
	format.WebP: encodeWebP,
	format.AVIF: encodeAVIF,
}

// Encode compresses a into f. quality is the 0-100 caller scale.
func (r *Registry) Encode(a *asset.Asset, f format.Format, quality int, lossless bool) ([]byte, error) {
	op := "encode " + f.String()
	if a == nil || a.Width() == 0 || a.Height() == 0 {
		return nil, imgerr.New(imgerr.KindInvalidInput, op, "image has zero dimensions %dx%d", a.Width(), a.Height())
	}
	if f <= format.Unknown || f >= format.Count || table[f] == nil {
		return nil, imgerr.New(imgerr.KindUnsupportedMode, op, "%s cannot be used as an output format", f)
	}
	if err := r.check(f, lossless); err != nil {
		return nil, err
	}

	data, err := table[f](r, a.Pix, clampQuality(quality), lossless)
	if err != nil {
		// A codec that runs and fails is rejecting this particular image.
		return nil, imgerr.Wrap(imgerr.KindInvalidInput, op, err)
	}
	return data, nil
}

// check rejects combinations the installed codecs cannot produce.
func (r *Registry) check(f format.Format, lossless bool) error {
	op := "encode " + f.String()
	if lossless && !f.SupportsLossless() {
		return imgerr.New(imgerr.KindUnsupportedMode, op, "%s has no lossless mode", f)
	}
	caps := r.Capabilities()
	switch f {
	case format.WebP:
		if !caps.WebP {
			return imgerr.New(imgerr.KindUnsupportedMode, op, "cwebp not found in PATH; install with: apt install webp")
		}
	case format.AVIF:
		if !caps.AVIF {
			return imgerr.New(imgerr.KindUnsupportedMode, op, "avifenc not found in PATH; install with: apt install libavif-bin")
		}
		if lossless && !caps.AVIFLossless {
			return imgerr.New(imgerr.KindUnsupportedMode, op, "this avifenc build has no --lossless mode")
		}
	}
	return nil
}

func clampQuality(q int) int {
	switch {
	case q < 0:
		return 0
	case q > 100:
		return 100
	}
	return q
}
