package encoder

import "image/png"

// JPEGQuality maps the caller scale to image/jpeg's 1-100 quality.
func JPEGQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}

// PNGLevel buckets quality into three effort tiers. PNG is always
// lossless, so quality only trades encode time for size.
func PNGLevel(q int) png.CompressionLevel {
	switch {
	case q <= 33:
		return png.BestSpeed
	case q <= 66:
		return png.DefaultCompression
	}
	return png.BestCompression
}

// WebPQuality is passed straight to cwebp -q.
func WebPQuality(q int) int {
	return clampQuality(q)
}

// AVIFQuantizer maps quality to avifenc's 0 (best) .. 63 (worst) scale.
func AVIFQuantizer(q int) int {
	return 63 - clampQuality(q)*63/100
}
