// Package format classifies raw image bytes into codec families.
package format

import (
	"fmt"
	"strings"

	"github.com/AnyUserName/imgpress/internal/imgerr"
)

// Format is a codec family. PNG, JPEG, WebP and AVIF can be encoded;
// BMP and TIFF are accepted as input only.
type Format int

const (
	Unknown Format = iota
	PNG
	JPEG
	WebP
	AVIF
	BMP
	TIFF

	// Count sizes the per-format dispatch tables.
	Count
)

var names = [Count]string{
	Unknown: "unknown",
	PNG:     "png",
	JPEG:    "jpeg",
	WebP:    "webp",
	AVIF:    "avif",
	BMP:     "bmp",
	TIFF:    "tiff",
}

var extensions = [Count]string{
	PNG:  "png",
	JPEG: "jpg",
	WebP: "webp",
	AVIF: "avif",
	BMP:  "bmp",
	TIFF: "tiff",
}

func (f Format) String() string {
	if f < 0 || f >= Count {
		return fmt.Sprintf("format(%d)", int(f))
	}
	return names[f]
}

// Extension returns the file extension without dot.
func (f Format) Extension() string {
	if f < 0 || f >= Count {
		return ""
	}
	return extensions[f]
}

// Encodable reports whether f is a valid compression target.
func (f Format) Encodable() bool {
	switch f {
	case PNG, JPEG, WebP, AVIF:
		return true
	}
	return false
}

// SupportsLossless reports whether a lossless request makes sense for f.
// AVIF additionally depends on the installed encoder build.
func (f Format) SupportsLossless() bool {
	return f == PNG || f == WebP || f == AVIF
}

// Targets lists the encodable formats in display order.
func Targets() []Format {
	return []Format{AVIF, WebP, JPEG, PNG}
}

// Parse resolves a user-supplied target name.
func Parse(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "webp":
		return WebP, nil
	case "avif":
		return AVIF, nil
	}
	return Unknown, imgerr.New(imgerr.KindUnsupportedFormat, "parse format",
		"unknown target format %q (want png, jpeg, webp or avif)", name)
}

// MarshalText encodes the format by name so reports stay readable.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText accepts every name String produces.
func (f *Format) UnmarshalText(b []byte) error {
	s := strings.ToLower(string(b))
	for i, n := range names {
		if n == s {
			*f = Format(i)
			return nil
		}
	}
	if s == "jpg" {
		*f = JPEG
		return nil
	}
	return fmt.Errorf("unknown format %q", s)
}
