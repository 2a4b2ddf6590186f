// Package profile holds the named compression presets.
package profile

import (
	"sort"

	"github.com/AnyUserName/imgpress/internal/engine"
	"github.com/AnyUserName/imgpress/internal/format"
)

// Profile is a named set of compression settings.
type Profile struct {
	Name         string
	Description  string
	Format       format.Format
	Quality      int // 0-100, meaning depends on the format
	MaxDimension int // 0 keeps the source size
	Lossless     bool
}

// DefaultName is used when no preset is given or the name is unknown.
const DefaultName = "balanced"

// Built-in profiles.
var profiles = map[string]Profile{
	"web": {
		Name:         "web",
		Description:  "WebP q75, longest side capped at 1920",
		Format:       format.WebP,
		Quality:      75,
		MaxDimension: 1920,
	},
	"balanced": {
		Name:        "balanced",
		Description: "JPEG q82 at source size",
		Format:      format.JPEG,
		Quality:     82,
	},
	"archive": {
		Name:        "archive",
		Description: "PNG at maximum effort, lossless",
		Format:      format.PNG,
		Quality:     100,
		Lossless:    true,
	},
	"thumbnail": {
		Name:         "thumbnail",
		Description:  "WebP q60, longest side capped at 320",
		Format:       format.WebP,
		Quality:      60,
		MaxDimension: 320,
	},
	"avif": {
		Name:        "avif",
		Description: "AVIF q60 at source size",
		Format:      format.AVIF,
		Quality:     60,
	},
}

// Get returns a profile by name. Falls back to balanced if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[DefaultName]
	if name != "" {
		p.Name = name // preserve requested name
	}
	return p
}

// Lookup reports whether name is a built-in profile.
func Lookup(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// Names lists the built-in profiles alphabetically.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Settings converts the profile into engine settings.
func (p Profile) Settings() engine.Settings {
	return engine.Settings{
		Format:       p.Format,
		Quality:      p.Quality,
		MaxDimension: p.MaxDimension,
		Lossless:     p.Lossless,
	}
}
