package engine

import (
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/imgerr"
	"github.com/AnyUserName/imgpress/internal/transform"
)

// Settings apply to every job of a batch. They are copied at submission
// and read-only afterwards.
type Settings struct {
	Format  format.Format `yaml:"format" json:"format"`
	Quality int           `yaml:"quality" json:"quality"`
	// MaxDimension caps the longest side; 0 keeps the size.
	MaxDimension int  `yaml:"max_dimension,omitempty" json:"max_dimension,omitempty"`
	Lossless     bool `yaml:"lossless,omitempty" json:"lossless,omitempty"`

	Transform transform.Options `yaml:"transform,omitempty" json:"transform,omitempty"`
}

// Validate rejects settings no job could satisfy.
func (s Settings) Validate() error {
	if !s.Format.Encodable() {
		return imgerr.New(imgerr.KindInvalidParameters, "settings", "%s is not an output format", s.Format)
	}
	if s.Quality < 0 || s.Quality > 100 {
		return imgerr.New(imgerr.KindInvalidParameters, "settings", "quality %d outside [0, 100]", s.Quality)
	}
	if s.MaxDimension < 0 {
		return imgerr.New(imgerr.KindInvalidParameters, "settings", "negative max dimension %d", s.MaxDimension)
	}
	if s.Lossless && !s.Format.SupportsLossless() {
		return imgerr.New(imgerr.KindInvalidParameters, "settings", "%s has no lossless mode", s.Format)
	}
	return s.Transform.Validate()
}

// Clone deep-copies s.
func (s Settings) Clone() Settings {
	c := s
	c.Transform = s.Transform.Clone()
	return c
}

// transformOptions folds MaxDimension into the transform, keeping the
// smaller cap when both are set.
func (s Settings) transformOptions() transform.Options {
	o := s.Transform.Clone()
	if s.MaxDimension > 0 && (o.MaxDimension == 0 || s.MaxDimension < o.MaxDimension) {
		o.MaxDimension = s.MaxDimension
	}
	return o
}
