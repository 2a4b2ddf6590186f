package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/imgpress/internal/format"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.Settings.Format != format.JPEG || c.Settings.Quality != 82 || c.OutputDir != "dist" {
		t.Errorf("default: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Error(err)
	}
}

func TestLoadAndApply(t *testing.T) {
	path := writeFile(t, t.TempDir(), "imgpress.yaml", `
preset: web
output:
  quality: 0
  dir: out
  hash_names: true
processing:
  workers: 3
  memory_mb: 256
  ordered: true
tools:
  cwebp: /opt/bin/cwebp
`)
	fc, used, err := FindAndLoad(path)
	if err != nil {
		t.Fatal(err)
	}
	if used != path {
		t.Errorf("path: got %s", used)
	}

	c := Default()
	if err := fc.ApplyTo(&c); err != nil {
		t.Fatal(err)
	}
	if c.Preset != "web" || c.Settings.Format != format.WebP || c.Settings.MaxDimension != 1920 {
		t.Errorf("preset not applied: %+v", c.Settings)
	}
	if c.Settings.Quality != 0 {
		t.Errorf("explicit quality 0 should override the preset, got %d", c.Settings.Quality)
	}
	if c.OutputDir != "out" || !c.HashNames || c.Workers != 3 || !c.Ordered {
		t.Errorf("config: %+v", c)
	}
	if c.MemoryBudget() != 256<<20 {
		t.Errorf("budget: got %d", c.MemoryBudget())
	}
	if c.CwebpPath != "/opt/bin/cwebp" {
		t.Errorf("cwebp: got %q", c.CwebpPath)
	}
}

func TestBadFormatInFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "output:\n  format: gif\n")
	fc, _, err := FindAndLoad(path)
	if err != nil {
		t.Fatal(err)
	}
	c := Default()
	if err := fc.ApplyTo(&c); err == nil {
		t.Error("expected error for gif output format")
	}
}

func TestExplicitMissing(t *testing.T) {
	if _, _, err := FindAndLoad(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadFileMissingIsNil(t *testing.T) {
	fc, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	if fc != nil || err != nil {
		t.Errorf("got %v, %v", fc, err)
	}
}

func TestInvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "c.yaml", "output: [unclosed\n")
	if _, err := LoadFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyPresetKeepsTransform(t *testing.T) {
	c := Default()
	c.Settings.Transform.Rotate = 90
	if err := c.ApplyPreset("thumbnail"); err != nil {
		t.Fatal(err)
	}
	if c.Settings.Transform.Rotate != 90 || c.Settings.MaxDimension != 320 {
		t.Errorf("settings: %+v", c.Settings)
	}
}

func TestApplyPresetRejectsUnknown(t *testing.T) {
	c := Default()
	c.Settings.Format = format.PNG
	if err := c.ApplyPreset("webb"); err == nil {
		t.Fatal("expected error for unknown preset")
	}
	if c.Settings.Format != format.PNG || c.Preset != "balanced" {
		t.Errorf("failed preset changed settings: %+v", c)
	}

	dir := t.TempDir()
	path := writeFile(t, dir, "imgpress.yaml", "preset: webb\n")
	fc, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	c = Default()
	if err := fc.ApplyTo(&c); err == nil {
		t.Error("unknown preset in the config file should fail")
	}
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Workers = -1
	if c.Validate() == nil {
		t.Error("negative workers should fail")
	}
	c = Default()
	c.Settings.Quality = 300
	if c.Validate() == nil {
		t.Error("quality 300 should fail")
	}
}
