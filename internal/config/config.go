// Package config loads imgpress settings from defaults and an optional
// YAML file. Command-line flags are applied on top by the cmd package.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/imgpress/internal/engine"
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/profile"
	"gopkg.in/yaml.v3"
)

// Config is the resolved configuration of one command run.
type Config struct {
	Preset   string
	Settings engine.Settings

	OutputDir string
	HashNames bool

	Workers       int
	MemoryMB      int
	Ordered       bool
	NoRegressSize bool

	CwebpPath   string
	AvifencPath string
	AvifdecPath string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Preset:    profile.DefaultName,
		Settings:  profile.Get(profile.DefaultName).Settings(),
		OutputDir: "dist",
	}
}

// MemoryBudget is MemoryMB in bytes.
func (c Config) MemoryBudget() int64 {
	return int64(c.MemoryMB) << 20
}

// FileConfig mirrors the YAML file. Every field is optional.
type FileConfig struct {
	Preset     string            `yaml:"preset,omitempty"`
	Output     *OutputConfig     `yaml:"output,omitempty"`
	Processing *ProcessingConfig `yaml:"processing,omitempty"`
	Tools      *ToolsConfig      `yaml:"tools,omitempty"`
}

type OutputConfig struct {
	Format       string `yaml:"format,omitempty"`
	Quality      *int   `yaml:"quality,omitempty"`
	MaxDimension *int   `yaml:"max_dimension,omitempty"`
	Lossless     *bool  `yaml:"lossless,omitempty"`
	Dir          string `yaml:"dir,omitempty"`
	HashNames    *bool  `yaml:"hash_names,omitempty"`
}

type ProcessingConfig struct {
	Workers       int   `yaml:"workers,omitempty"`
	MemoryMB      int   `yaml:"memory_mb,omitempty"`
	Ordered       *bool `yaml:"ordered,omitempty"`
	NoRegressSize *bool `yaml:"no_regress_size,omitempty"`
}

// ToolsConfig overrides the PATH lookup of the external codecs.
type ToolsConfig struct {
	Cwebp   string `yaml:"cwebp,omitempty"`
	Avifenc string `yaml:"avifenc,omitempty"`
	Avifdec string `yaml:"avifdec,omitempty"`
}

// DefaultPaths returns the config file locations, searched in order.
func DefaultPaths() []string {
	paths := []string{"imgpress.yaml", "imgpress.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "imgpress", "config.yaml"),
			filepath.Join(home, ".config", "imgpress", "config.yml"),
		)
	}
	return paths
}

// LoadFile parses one config file. It returns nil, nil if the file does
// not exist.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// FindAndLoad loads the explicit path if given (it must exist), otherwise
// the first file found in DefaultPaths. It returns the path used, or ""
// when no file was found.
func FindAndLoad(explicit string) (*FileConfig, string, error) {
	if explicit != "" {
		fc, err := LoadFile(explicit)
		if err != nil {
			return nil, "", err
		}
		if fc == nil {
			return nil, "", fmt.Errorf("config file not found: %s", explicit)
		}
		return fc, explicit, nil
	}
	for _, p := range DefaultPaths() {
		fc, err := LoadFile(p)
		if err != nil {
			return nil, "", err
		}
		if fc != nil {
			return fc, p, nil
		}
	}
	return nil, "", nil
}

// ApplyTo layers the file over c. A preset in the file replaces the
// compression settings first; explicit output fields then override it.
func (fc *FileConfig) ApplyTo(c *Config) error {
	if fc == nil {
		return nil
	}
	if fc.Preset != "" {
		if err := c.ApplyPreset(fc.Preset); err != nil {
			return fmt.Errorf("config preset: %w", err)
		}
	}
	if o := fc.Output; o != nil {
		if o.Format != "" {
			f, err := format.Parse(o.Format)
			if err != nil {
				return fmt.Errorf("config output.format: %w", err)
			}
			c.Settings.Format = f
		}
		if o.Quality != nil {
			c.Settings.Quality = *o.Quality
		}
		if o.MaxDimension != nil {
			c.Settings.MaxDimension = *o.MaxDimension
		}
		if o.Lossless != nil {
			c.Settings.Lossless = *o.Lossless
		}
		if o.Dir != "" {
			c.OutputDir = o.Dir
		}
		if o.HashNames != nil {
			c.HashNames = *o.HashNames
		}
	}
	if p := fc.Processing; p != nil {
		if p.Workers != 0 {
			c.Workers = p.Workers
		}
		if p.MemoryMB != 0 {
			c.MemoryMB = p.MemoryMB
		}
		if p.Ordered != nil {
			c.Ordered = *p.Ordered
		}
		if p.NoRegressSize != nil {
			c.NoRegressSize = *p.NoRegressSize
		}
	}
	if t := fc.Tools; t != nil {
		if t.Cwebp != "" {
			c.CwebpPath = t.Cwebp
		}
		if t.Avifenc != "" {
			c.AvifencPath = t.Avifenc
		}
		if t.Avifdec != "" {
			c.AvifdecPath = t.Avifdec
		}
	}
	return nil
}

// ApplyPreset replaces the compression settings with a named profile,
// keeping any transform already configured. Unknown names are rejected so
// a typo never silently changes the output format.
func (c *Config) ApplyPreset(name string) error {
	p, ok := profile.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown preset %q (want one of %s)", name, strings.Join(profile.Names(), ", "))
	}
	t := c.Settings.Transform
	c.Settings = p.Settings()
	c.Settings.Transform = t
	c.Preset = p.Name
	return nil
}

// Validate checks the parts of c not covered by engine.Settings.
func (c Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.MemoryMB < 0 {
		return fmt.Errorf("memory_mb must be >= 0, got %d", c.MemoryMB)
	}
	return c.Settings.Validate()
}
