//go:build ignore

// gen_fixtures creates small test images for the E2E smoke test, one per
// decodable format plus a corrupt file that must fail without aborting the
// batch.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(filepath.Join(dir, "cards"), 0o755); err != nil {
		panic(err)
	}

	// Banner (JPEG, 400x225)
	write(filepath.Join(dir, "banner.jpg"), func(w io.Writer) error {
		return jpeg.Encode(w, gradient(400, 225), &jpeg.Options{Quality: 85})
	})

	// Cards (PNG, 200x150 each)
	for i := 1; i <= 3; i++ {
		img := solidWithBorder(200, 150, uint8(i*60))
		write(filepath.Join(dir, "cards", fmt.Sprintf("card-%d.png", i)), func(w io.Writer) error {
			return png.Encode(w, img)
		})
	}

	// Small alpha image
	write(filepath.Join(dir, "logo.png"), func(w io.Writer) error {
		return png.Encode(w, alphaGradient(100, 100))
	})

	// Input-only formats
	write(filepath.Join(dir, "scan.bmp"), func(w io.Writer) error {
		return bmp.Encode(w, gradient(120, 80))
	})
	write(filepath.Join(dir, "photo.tiff"), func(w io.Writer) error {
		return tiff.Encode(w, gradient(90, 160), &tiff.Options{Compression: tiff.Deflate})
	})

	// PNG signature followed by garbage.
	write(filepath.Join(dir, "broken.png"), func(w io.Writer) error {
		_, err := w.Write([]byte("\x89PNG\r\n\x1a\nthis is not an image"))
		return err
	})

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 8 fixtures in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func solidWithBorder(w, h int, base uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	edge := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	fill := color.NRGBA{R: base, G: base + 40, B: base + 80, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < 4 || x >= w-4 || y < 4 || y >= h-4 {
				img.SetNRGBA(x, y, edge)
			} else {
				img.SetNRGBA(x, y, fill)
			}
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: 220, G: 60, B: 30,
				A: uint8(x * 255 / w),
			})
		}
	}
	return img
}

func write(path string, encode func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := encode(f); err != nil {
		panic(err)
	}
}
