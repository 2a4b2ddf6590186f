package profile

import (
	"testing"

	"github.com/AnyUserName/imgpress/internal/format"
)

func TestGetKnown(t *testing.T) {
	p := Get("web")
	if p.Format != format.WebP || p.Quality != 75 || p.MaxDimension != 1920 {
		t.Errorf("web: %+v", p)
	}
}

func TestGetUnknownFallsBack(t *testing.T) {
	p := Get("does-not-exist")
	if p.Name != "does-not-exist" {
		t.Errorf("name: got %q", p.Name)
	}
	if p.Format != format.JPEG || p.Quality != 82 {
		t.Errorf("fallback: %+v", p)
	}
	if _, ok := Lookup("does-not-exist"); ok {
		t.Error("lookup should report unknown")
	}
	if Get("").Name != DefaultName {
		t.Error("empty name should resolve to the default")
	}
}

func TestEveryProfileIsValid(t *testing.T) {
	for _, name := range Names() {
		if err := Get(name).Settings().Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if len(Names()) != 5 || Names()[0] != "archive" {
		t.Errorf("names: %v", Names())
	}
}
