package cmd

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AnyUserName/imgpress/internal/config"
	"github.com/AnyUserName/imgpress/internal/decoder"
	"github.com/AnyUserName/imgpress/internal/engine"
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/report"
	"github.com/AnyUserName/imgpress/internal/scanner"
	"github.com/AnyUserName/imgpress/internal/transform"
)

func TestParseCrop(t *testing.T) {
	tests := []struct {
		in      string
		want    transform.Crop
		wantErr bool
	}{
		{"100x50+10+20", transform.Crop{Width: 100, Height: 50, X: 10, Y: 20}, false},
		{"100X50", transform.Crop{Width: 100, Height: 50}, false},
		{"100x50+10", transform.Crop{}, true},
		{"abc", transform.Crop{}, true},
		{"10xq", transform.Crop{}, true},
	}
	for _, tt := range tests {
		got, err := parseCrop(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseCrop(%q): err %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseCrop(%q): got %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	res := engine.Result{Format: format.WebP, Hash: "0123456789abcdef"}
	if got := outputName("sub/a", res, true); got != "sub/a.01234567.webp" {
		t.Errorf("hashed: got %q", got)
	}
	if got := outputName("sub/a", res, false); got != "sub/a.webp" {
		t.Errorf("plain: got %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d): got %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := truncKey("abcdefghij", 6); got != "...hij" {
		t.Errorf("truncKey: got %q", got)
	}
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 90, A: 255})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestBatchWritesValidReport(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), 20, 10)
	writePNG(t, filepath.Join(in, "sub", "b.png"), 8, 8)
	if err := os.WriteFile(filepath.Join(in, "broken.png"), []byte("\x89PNG\r\n\x1a\njunk"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Settings.Format = format.PNG
	cfg.HashNames = true

	rep, err := runBatch(cfg, []string{in}, true)
	if err != nil {
		t.Fatal(err)
	}
	if s := rep.Stats; s.Total != 3 || s.Succeeded != 2 || s.Failed != 1 {
		t.Fatalf("stats: got %+v", s)
	}
	if err := batchError(rep); err != nil {
		t.Errorf("partial failure should not fail the command: %v", err)
	}

	path, err := reportPath(cfg.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	loaded, err := report.ReadJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if errs := validateReport(loaded, cfg.OutputDir); len(errs) != 0 {
		t.Fatalf("fresh report invalid: %v", errs)
	}

	var tampered bool
	for _, f := range loaded.Files {
		if f.Output != nil {
			full := filepath.Join(cfg.OutputDir, filepath.FromSlash(f.Output.Path))
			if err := os.WriteFile(full, []byte("not the same bytes"), 0o644); err != nil {
				t.Fatal(err)
			}
			tampered = true
			break
		}
	}
	if !tampered {
		t.Fatal("no output to tamper with")
	}
	if errs := validateReport(loaded, cfg.OutputDir); len(errs) == 0 {
		t.Error("tampered output passed validation")
	}
}

func TestBatchErrorAllFailed(t *testing.T) {
	rep := &report.Report{Files: []report.File{
		{Error: &report.FileError{Kind: "invalid_input"}},
	}}
	rep.ComputeStats()
	if batchError(rep) == nil {
		t.Error("expected an error when every file failed")
	}
}

func batchOutputs(t *testing.T, rep *report.Report, outDir string) map[string]string {
	t.Helper()
	outs := map[string]string{}
	for _, f := range rep.Files {
		if f.Output == nil {
			t.Fatalf("%s: no output (error %+v, skipped %q)", f.Source, f.Error, f.Skipped)
		}
		if prev, ok := outs[f.Output.Path]; ok {
			t.Fatalf("%s and %s both wrote %s", prev, f.Source, f.Output.Path)
		}
		outs[f.Output.Path] = f.Source
		if _, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(f.Output.Path))); err != nil {
			t.Errorf("%s: %v", f.Output.Path, err)
		}
	}
	if errs := validateReport(rep, outDir); len(errs) != 0 {
		t.Errorf("report invalid: %v", errs)
	}
	return outs
}

func TestBatchSameStemKeepsExtension(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "photo.png"), 12, 12)
	// PNG bytes under a .tif name; detection goes by content.
	writePNG(t, filepath.Join(in, "photo.tif"), 16, 8)

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Settings.Format = format.JPEG

	rep, err := runBatch(cfg, []string{in}, true)
	if err != nil {
		t.Fatal(err)
	}
	if rep.Stats.Succeeded != 2 {
		t.Fatalf("stats: got %+v", rep.Stats)
	}
	outs := batchOutputs(t, rep, cfg.OutputDir)
	if _, ok := outs["photo.jpg"]; !ok {
		t.Errorf("photo.jpg missing: %v", outs)
	}
	if _, ok := outs["photo.tif.jpg"]; !ok {
		t.Errorf("photo.tif.jpg missing: %v", outs)
	}
}

func TestBatchExplicitFilesSameName(t *testing.T) {
	in := t.TempDir()
	a := filepath.Join(in, "a", "x.png")
	b := filepath.Join(in, "b", "x.png")
	writePNG(t, a, 10, 10)
	writePNG(t, b, 6, 4)

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Settings.Format = format.PNG

	rep, err := runBatch(cfg, []string{a, b}, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Files) != 2 || rep.Files[0].Source == rep.Files[1].Source {
		t.Fatalf("sources not distinct: %+v", rep.Files)
	}
	outs := batchOutputs(t, rep, cfg.OutputDir)
	if len(outs) != 2 {
		t.Errorf("got %d outputs, want 2", len(outs))
	}
	if f := rep.Files[1]; f.Width != 6 || f.Height != 4 {
		t.Errorf("second file dims: %dx%d", f.Width, f.Height)
	}
}

func TestWriteOutputRefusesClaimedPath(t *testing.T) {
	out := t.TempDir()
	res := engine.Result{Format: format.PNG, Data: []byte("first")}
	claimed := map[string]string{}
	cfg := config.Default()

	if w := writeOutput(out, scanner.Source{RelPath: "x.png", Key: "x"}, res, cfg, claimed); w.err != nil {
		t.Fatal(w.err)
	}
	res.Data = []byte("second")
	if w := writeOutput(out, scanner.Source{RelPath: "x.tif", Key: "x"}, res, cfg, claimed); w.err == nil {
		t.Error("second write to x.png succeeded")
	}
	data, err := os.ReadFile(filepath.Join(out, "x.png"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("output overwritten: %q", data)
	}
}

func TestDescribeDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	writePNG(t, path, 5, 3)
	prev := infoDecode
	infoDecode = true
	defer func() { infoDecode = prev }()

	line, err := describe(decoder.New(decoder.Options{}), scanner.Source{AbsPath: path})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(line, "png") || !strings.Contains(line, "8-bit") {
		t.Errorf("got %q", line)
	}
}
