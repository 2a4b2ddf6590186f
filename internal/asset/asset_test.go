package asset

import (
	"image"
	"image/color"
	"testing"

	"github.com/AnyUserName/imgpress/internal/format"
)

func TestNewNormalisesLayout(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 14, 23))
	for y := 20; y < 23; y++ {
		for x := 10; x < 14; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	a := New(src, format.PNG)
	if a.Width() != 4 || a.Height() != 3 {
		t.Fatalf("dims: got %dx%d", a.Width(), a.Height())
	}
	if a.Pix.Rect.Min != (image.Point{}) {
		t.Errorf("origin: got %v", a.Pix.Rect.Min)
	}
	if a.Pix.Stride != 16 {
		t.Errorf("stride: got %d, want 16", a.Pix.Stride)
	}
	if a.Model != ModelRGBA || a.BitDepth != 8 {
		t.Errorf("model: got %s/%d", a.Model, a.BitDepth)
	}
	if got := a.Pix.NRGBAAt(0, 0); got != (color.NRGBA{200, 100, 50, 255}) {
		t.Errorf("pixel: got %v", got)
	}
}

func TestNewDownsamples16Bit(t *testing.T) {
	src := image.NewNRGBA64(image.Rect(0, 0, 2, 2))
	src.SetNRGBA64(0, 0, color.NRGBA64{R: 0xffff, G: 0x8000, B: 0, A: 0xffff})

	a := New(src, format.PNG)
	if a.BitDepth != 16 {
		t.Errorf("bit depth: got %d", a.BitDepth)
	}
	if got := a.Pix.NRGBAAt(0, 0); got.R != 0xff || got.G != 0x80 || got.A != 0xff {
		t.Errorf("pixel: got %v", got)
	}
}

func TestNewKeepsPackedNRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	a := New(src, format.WebP)
	if a.Pix != src {
		t.Error("packed NRGBA should not be copied")
	}
}

func TestHasAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	a := New(img, format.PNG)
	if a.HasAlpha() {
		t.Error("opaque image reported alpha")
	}
	img.Pix[7] = 0x80
	if !a.HasAlpha() {
		t.Error("translucent pixel not detected")
	}
}

func TestClassifyGray(t *testing.T) {
	a := New(image.NewGray(image.Rect(0, 0, 2, 2)), format.JPEG)
	if a.Model != ModelGray {
		t.Errorf("model: got %s", a.Model)
	}
	a = New(image.NewYCbCr(image.Rect(0, 0, 8, 8), image.YCbCrSubsampleRatio420), format.JPEG)
	if a.Model != ModelYCbCr {
		t.Errorf("model: got %s", a.Model)
	}
}

func TestRelease(t *testing.T) {
	a := New(image.NewNRGBA(image.Rect(0, 0, 5, 5)), format.PNG)
	if a.PixelBytes() != 100 {
		t.Errorf("pixel bytes: got %d", a.PixelBytes())
	}
	a.Release()
	if a.Pix != nil || a.Width() != 0 || a.PixelBytes() != 0 {
		t.Error("release did not drop the buffer")
	}
}
