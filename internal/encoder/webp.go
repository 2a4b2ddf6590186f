package encoder

import (
	"fmt"
	"image"
	"strconv"
)

// encodeWebP runs cwebp on a PNG intermediate.
// Install: brew install webp / apt install webp
func encodeWebP(r *Registry, img *image.NRGBA, quality int, lossless bool) ([]byte, error) {
	src, err := pngIntermediate(img)
	if err != nil {
		return nil, fmt.Errorf("encode temp png: %w", err)
	}

	var mode []string
	if lossless {
		// -exact keeps RGB under fully transparent pixels so the round trip
		// is bit-identical. Quality is ignored.
		mode = []string{"-lossless", "-exact"}
	} else {
		mode = []string{"-q", strconv.Itoa(WebPQuality(quality))}
	}

	return r.cwebp.Convert(src, "png", "webp", func(srcPath, dstPath string) []string {
		args := append(mode,
			"-m", "4", // compression method (0=fast, 6=best)
			"-quiet",
			srcPath,
			"-o", dstPath,
		)
		return args
	})
}

// encodeAVIF runs avifenc on a PNG intermediate.
// Install: brew install libavif / apt install libavif-bin
func encodeAVIF(r *Registry, img *image.NRGBA, quality int, lossless bool) ([]byte, error) {
	src, err := pngIntermediate(img)
	if err != nil {
		return nil, fmt.Errorf("encode temp png: %w", err)
	}

	var mode []string
	if lossless {
		mode = []string{"--lossless"}
	} else {
		q := strconv.Itoa(AVIFQuantizer(quality))
		mode = []string{"--min", q, "--max", q}
	}

	return r.avifenc.Convert(src, "png", "avif", func(srcPath, dstPath string) []string {
		args := append(mode,
			"--speed", "6", // 0=slowest, 10=fastest
			"--depth", "8",
			"-j", "1",
			srcPath,
			dstPath,
		)
		return args
	})
}
