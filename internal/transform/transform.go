// Package transform applies the optional pixel operations shared by the
// compress and edit tools.
//
// Operations always run in the same order: crop, resize, rotate, flip,
// brightness/contrast, then named filters. A zero Options is a no-op.
package transform

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/AnyUserName/imgpress/internal/asset"
	"github.com/AnyUserName/imgpress/internal/imgerr"
	"github.com/disintegration/imaging"
)

// Filter names a fixed pixel filter.
type Filter string

const (
	Grayscale Filter = "grayscale"
	Sepia     Filter = "sepia"
	Invert    Filter = "invert"
	Blur      Filter = "blur"
	Sharpen   Filter = "sharpen"
)

// Fixed kernel sizes; callers toggle filters but do not tune them.
const (
	blurSigma    = 3.0
	sharpenSigma = 1.0
)

// Filters lists every known filter.
func Filters() []Filter {
	return []Filter{Grayscale, Sepia, Invert, Blur, Sharpen}
}

// ParseFilter resolves a filter name case-insensitively.
func ParseFilter(s string) (Filter, bool) {
	f := Filter(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Filters() {
		if f == known {
			return f, true
		}
	}
	return f, false
}

// Crop selects a rectangle in source pixel coordinates.
type Crop struct {
	X, Y, Width, Height int
}

func (c Crop) rect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// Options toggles each transform independently.
type Options struct {
	Crop *Crop `yaml:"crop,omitempty" json:"crop,omitempty"`

	// Width and Height resize to an explicit size. When one is 0 the
	// other axis follows the aspect ratio.
	Width  int `yaml:"width,omitempty" json:"width,omitempty"`
	Height int `yaml:"height,omitempty" json:"height,omitempty"`
	// MaxDimension caps the longest side after resizing. Never upscales.
	MaxDimension int `yaml:"max_dimension,omitempty" json:"max_dimension,omitempty"`

	// Rotate is clockwise degrees. Multiples of 90 are exact; other
	// angles pad to the bounding box with transparent pixels.
	Rotate float64 `yaml:"rotate,omitempty" json:"rotate,omitempty"`

	FlipH bool `yaml:"flip_h,omitempty" json:"flip_h,omitempty"`
	FlipV bool `yaml:"flip_v,omitempty" json:"flip_v,omitempty"`

	// Brightness and Contrast are percentages in [-100, 100].
	Brightness float64 `yaml:"brightness,omitempty" json:"brightness,omitempty"`
	Contrast   float64 `yaml:"contrast,omitempty" json:"contrast,omitempty"`

	Filters []Filter `yaml:"filters,omitempty" json:"filters,omitempty"`
}

// IsZero reports whether o changes nothing.
func (o Options) IsZero() bool {
	return o.Crop == nil && o.Width == 0 && o.Height == 0 && o.MaxDimension == 0 &&
		o.Rotate == 0 && !o.FlipH && !o.FlipV && o.Brightness == 0 && o.Contrast == 0 &&
		len(o.Filters) == 0
}

// Clone deep-copies the slice and pointer fields.
func (o Options) Clone() Options {
	c := o
	if o.Crop != nil {
		crop := *o.Crop
		c.Crop = &crop
	}
	if o.Filters != nil {
		c.Filters = append([]Filter(nil), o.Filters...)
	}
	return c
}

// Validate checks everything that does not depend on the image itself.
func (o Options) Validate() error {
	if o.Width < 0 || o.Height < 0 {
		return invalid("resize", "negative size %dx%d", o.Width, o.Height)
	}
	if o.MaxDimension < 0 {
		return invalid("resize", "negative max dimension %d", o.MaxDimension)
	}
	if math.IsNaN(o.Rotate) || math.IsInf(o.Rotate, 0) {
		return invalid("rotate", "angle %v is not finite", o.Rotate)
	}
	if o.Brightness < -100 || o.Brightness > 100 {
		return invalid("brightness", "%v outside [-100, 100]", o.Brightness)
	}
	if o.Contrast < -100 || o.Contrast > 100 {
		return invalid("contrast", "%v outside [-100, 100]", o.Contrast)
	}
	for _, f := range o.Filters {
		if _, ok := ParseFilter(string(f)); !ok {
			return invalid("filter", "unknown filter %q", f)
		}
	}
	if o.Crop != nil && (o.Crop.Width <= 0 || o.Crop.Height <= 0) {
		return invalid("crop", "empty crop %dx%d", o.Crop.Width, o.Crop.Height)
	}
	return nil
}

func invalid(op, format string, args ...any) error {
	return imgerr.New(imgerr.KindInvalidParameters, "transform "+op, format, args...)
}

// Apply runs every enabled transform on a and returns a new asset. a is
// never modified; when nothing is enabled a itself is returned.
func Apply(a *asset.Asset, o Options) (*asset.Asset, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if a == nil || a.Pix == nil {
		return nil, invalid("input", "no pixel data")
	}
	if o.IsZero() {
		return a, nil
	}

	img := a.Pix

	if o.Crop != nil {
		r := o.Crop.rect()
		if !r.In(img.Bounds()) {
			return nil, invalid("crop", "rect %v outside image bounds %v", r, img.Bounds())
		}
		img = imaging.Crop(img, r)
	}

	img = resize(img, o)

	var err error
	if img, err = rotate(img, o.Rotate); err != nil {
		return nil, err
	}

	if o.FlipH {
		img = imaging.FlipH(img)
	}
	if o.FlipV {
		img = imaging.FlipV(img)
	}

	if o.Brightness != 0 {
		img = imaging.AdjustBrightness(img, o.Brightness)
	}
	if o.Contrast != 0 {
		img = imaging.AdjustContrast(img, o.Contrast)
	}

	for _, name := range o.Filters {
		f, _ := ParseFilter(string(name))
		img = applyFilter(img, f)
	}

	return a.Derive(img), nil
}

// resize handles the explicit size first and then the max-dimension cap.
// Resampling is bilinear.
func resize(img *image.NRGBA, o Options) *image.NRGBA {
	if o.Width > 0 || o.Height > 0 {
		b := img.Bounds()
		if o.Width != b.Dx() || o.Height != b.Dy() {
			img = imaging.Resize(img, o.Width, o.Height, imaging.Linear)
		}
	}
	if o.MaxDimension > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > o.MaxDimension || h > o.MaxDimension {
			if w >= h {
				img = imaging.Resize(img, o.MaxDimension, 0, imaging.Linear)
			} else {
				img = imaging.Resize(img, 0, o.MaxDimension, imaging.Linear)
			}
		}
	}
	return img
}

func rotate(img *image.NRGBA, deg float64) (*image.NRGBA, error) {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	switch deg {
	case 0:
		return img, nil
	case 90:
		return imaging.Rotate270(img), nil // imaging rotates counter-clockwise
	case 180:
		return imaging.Rotate180(img), nil
	case 270:
		return imaging.Rotate90(img), nil
	}
	out := imaging.Rotate(img, -deg, color.NRGBA{})
	if out.Bounds().Empty() {
		return nil, invalid("rotate", "rotation by %v produced an empty image", deg)
	}
	return out, nil
}
