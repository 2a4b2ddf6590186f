// Package scanner expands command-line path arguments into image files.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Source represents a discovered image file.
type Source struct {
	// AbsPath is the path to the file on disk.
	AbsPath string
	// RelPath is the path relative to the argument it was found under,
	// using forward slashes. For a file argument it is the base name.
	RelPath string
	// Key is RelPath without its extension.
	Key string
	// Size is the file size in bytes.
	Size int64
}

// imageExtensions lists recognized image file extensions. Directory walks
// only pick these up; files named explicitly are always taken and left to
// content detection.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".avif": true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// IsImageExt reports whether the extension of name is a recognized image type.
func IsImageExt(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// Scan expands every path: files are taken as they are, directories are
// walked recursively, skipping hidden ones. A file reachable through two
// arguments is listed once.
func Scan(paths []string) ([]Source, error) {
	var sources []Source
	seen := make(map[string]bool)

	add := func(s Source) {
		abs, err := filepath.Abs(s.AbsPath)
		if err != nil {
			abs = s.AbsPath
		}
		if seen[abs] {
			return
		}
		seen[abs] = true
		sources = append(sources, s)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		if !info.IsDir() {
			add(newSource(p, filepath.Base(p), info.Size()))
			continue
		}
		found, err := scanDir(p)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		for _, s := range found {
			add(s)
		}
	}
	return Distinct(sources), nil
}

// Distinct makes RelPath and Key unique across sources, keeping the first
// occurrence of each as it is. A later RelPath clash (same base name given
// twice, or the same tree layout under two directories) falls back to the
// path as given. A later Key clash (photo.png next to photo.tif) keeps the
// extension, so photo.tif gets the key "photo.tif". Remaining clashes get a
// ~N suffix.
func Distinct(sources []Source) []Source {
	out := make([]Source, len(sources))
	rels := make(map[string]bool, len(sources))
	keys := make(map[string]bool, len(sources))
	for i, s := range sources {
		if rels[s.RelPath] {
			s.RelPath = uniqueRel(givenRel(s.AbsPath), rels)
			s.Key = strings.TrimSuffix(s.RelPath, filepath.Ext(s.RelPath))
		}
		rels[s.RelPath] = true
		if keys[s.Key] {
			s.Key = unique(s.RelPath, keys)
		}
		keys[s.Key] = true
		out[i] = s
	}
	return out
}

// givenRel turns a path as given on the command line into a relative,
// forward-slash path that cannot climb out of an output directory.
func givenRel(path string) string {
	clean := filepath.Clean(path)
	clean = strings.TrimPrefix(clean, filepath.VolumeName(clean))
	var parts []string
	for _, seg := range strings.Split(filepath.ToSlash(clean), "/") {
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		parts = append(parts, seg)
	}
	return strings.Join(parts, "/")
}

// uniqueRel is unique with the suffix placed before the extension.
func uniqueRel(rel string, taken map[string]bool) string {
	if !taken[rel] {
		return rel
	}
	ext := filepath.Ext(rel)
	stem := strings.TrimSuffix(rel, ext)
	for n := 2; ; n++ {
		if c := fmt.Sprintf("%s~%d%s", stem, n, ext); !taken[c] {
			return c
		}
	}
}

func unique(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	for n := 2; ; n++ {
		if c := fmt.Sprintf("%s~%d", name, n); !taken[c] {
			return c
		}
	}
}

func scanDir(inputDir string) ([]Source, error) {
	var sources []Source

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			// Skip hidden directories.
			if path != inputDir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsImageExt(path) {
			return nil
		}

		relPath, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		sources = append(sources, newSource(path, relPath, info.Size()))
		return nil
	})

	return sources, err
}

// Under builds the Source for a file found below root, the way a directory
// walk of root would have.
func Under(root, path string, size int64) (Source, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return Source{}, err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Source{}, fmt.Errorf("%s is not under %s", path, root)
	}
	return newSource(path, rel, size), nil
}

func newSource(path, rel string, size int64) Source {
	rel = filepath.ToSlash(rel)
	return Source{
		AbsPath: path,
		RelPath: rel,
		Key:     strings.TrimSuffix(rel, filepath.Ext(rel)),
		Size:    size,
	}
}
