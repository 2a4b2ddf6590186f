package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.png"), 3)
	touch(t, filepath.Join(dir, "sub", "b.JPG"), 5)
	touch(t, filepath.Join(dir, "notes.txt"), 1)
	touch(t, filepath.Join(dir, ".cache", "c.png"), 1)

	got, err := Scan([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sources: %+v", len(got), got)
	}
	byKey := map[string]Source{}
	for _, s := range got {
		byKey[s.Key] = s
	}
	b, ok := byKey["sub/b"]
	if !ok {
		t.Fatalf("sub/b missing: %+v", got)
	}
	if b.RelPath != "sub/b.JPG" || b.Size != 5 {
		t.Errorf("sub/b: %+v", b)
	}
	if _, ok := byKey["a"]; !ok {
		t.Error("a missing")
	}
}

func TestScanExplicitFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.data")
	touch(t, path, 7)

	got, err := Scan([]string{path, path})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d sources, want 1", len(got))
	}
	if got[0].RelPath != "photo.data" || got[0].Key != "photo" || got[0].Size != 7 {
		t.Errorf("source: %+v", got[0])
	}
}

func TestScanMissing(t *testing.T) {
	if _, err := Scan([]string{filepath.Join(t.TempDir(), "nope")}); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestIsImageExt(t *testing.T) {
	for name, want := range map[string]bool{"x.PNG": true, "x.avif": true, "x.tif": true, "x.gif": false, "x": false} {
		if got := IsImageExt(name); got != want {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
}

func TestUnder(t *testing.T) {
	root := filepath.Join("data", "in")
	s, err := Under(root, filepath.Join(root, "a", "b.webp"), 7)
	if err != nil {
		t.Fatal(err)
	}
	if s.RelPath != "a/b.webp" || s.Key != "a/b" || s.Size != 7 {
		t.Errorf("got %+v", s)
	}
	if _, err := Under(root, filepath.Join("data", "other.png"), 1); err == nil {
		t.Error("expected error for a path outside root")
	}
}

func TestScanSameBaseName(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a", "x.png")
	b := filepath.Join(dir, "b", "x.png")
	touch(t, a, 1)
	touch(t, b, 1)

	got, err := Scan([]string{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sources, want 2", len(got))
	}
	if got[0].RelPath != "x.png" || got[0].Key != "x" {
		t.Errorf("first: %+v", got[0])
	}
	if got[1].RelPath == got[0].RelPath || got[1].Key == got[0].Key {
		t.Errorf("second not distinct: %+v", got[1])
	}
	if !strings.HasSuffix(got[1].RelPath, "b/x.png") || strings.Contains(got[1].RelPath, "..") {
		t.Errorf("second rel path: %q", got[1].RelPath)
	}
}

func TestDistinct(t *testing.T) {
	in := []Source{
		{AbsPath: "/in/photo.png", RelPath: "photo.png", Key: "photo"},
		{AbsPath: "/in/photo.tif", RelPath: "photo.tif", Key: "photo"},
		{AbsPath: "/one/x.png", RelPath: "x.png", Key: "x"},
		{AbsPath: "../two/x.png", RelPath: "x.png", Key: "x"},
		{AbsPath: "two/x.png", RelPath: "x.png", Key: "x"},
	}
	got := Distinct(in)
	want := []struct{ rel, key string }{
		{"photo.png", "photo"},
		{"photo.tif", "photo.tif"},
		{"x.png", "x"},
		{"two/x.png", "two/x"},
		{"two/x~2.png", "two/x~2"},
	}
	for i, w := range want {
		if got[i].RelPath != w.rel || got[i].Key != w.key {
			t.Errorf("%d: got %q/%q, want %q/%q", i, got[i].RelPath, got[i].Key, w.rel, w.key)
		}
	}
	if in[1].Key != "photo" {
		t.Error("input slice modified")
	}
}
