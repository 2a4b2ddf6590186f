package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AnyUserName/imgpress/internal/engine"
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/imgerr"
	"github.com/AnyUserName/imgpress/internal/transform"
)

func sampleEngineReport() *engine.Report {
	return &engine.Report{
		BatchID: "batch-1",
		Results: []engine.Result{
			{
				Index: 0, ID: "a.png", Format: format.WebP, SourceFormat: format.PNG,
				OriginalSize: 1000, CompressedSize: 250, Width: 64, Height: 32,
				Hash: "0123456789abcdef", Elapsed: 12 * time.Millisecond,
			},
			{
				Index: 1, ID: "b.jpg", SourceFormat: format.JPEG, OriginalSize: 500,
				Err: imgerr.New(imgerr.KindCorrupt, "decode jpeg", "segment overruns buffer"),
			},
			{
				Index: 2, ID: "c.png",
				Err: imgerr.New(imgerr.KindCancelled, "", "batch cancelled"),
			},
		},
	}
}

func TestFromEngine(t *testing.T) {
	s := engine.Settings{
		Format: format.WebP, Quality: 75,
		Transform: transform.Options{Rotate: 90, Filters: []transform.Filter{transform.Sepia}},
	}
	r := FromEngine(sampleEngineReport(), s)

	if r.BatchID != "batch-1" || r.Version != SupportedVersion {
		t.Errorf("header: %+v", r)
	}
	if r.Settings.Format != "webp" || r.Settings.Quality != 75 {
		t.Errorf("settings: %+v", r.Settings)
	}
	if len(r.Settings.Transforms) != 2 || r.Settings.Transforms[0] != "rotate 90" || r.Settings.Transforms[1] != "sepia" {
		t.Errorf("transforms: %v", r.Settings.Transforms)
	}

	ok := r.Files[0]
	if ok.Output == nil || ok.Output.Format != "webp" || ok.Output.Size != 250 || ok.Output.Hash != "0123456789abcdef" {
		t.Fatalf("output: %+v", ok.Output)
	}
	if ok.Output.SavedPercent != 75 {
		t.Errorf("saved: got %v, want 75", ok.Output.SavedPercent)
	}
	if ok.ElapsedMS != 12 {
		t.Errorf("elapsed: got %d", ok.ElapsedMS)
	}

	bad := r.Files[1]
	if bad.Error == nil || bad.Error.Kind != "corrupt" || bad.Output != nil {
		t.Errorf("error: %+v", bad)
	}
	if bad.SourceFormat != "jpeg" {
		t.Errorf("source format: got %q", bad.SourceFormat)
	}
	if r.Files[2].SourceFormat != "" {
		t.Errorf("undetected source format should be empty, got %q", r.Files[2].SourceFormat)
	}

	want := Stats{TotalInputBytes: 1500, TotalOutputBytes: 250, Total: 3, Succeeded: 1, Failed: 2, Cancelled: 1}
	if r.Stats != want {
		t.Errorf("stats: got %+v, want %+v", r.Stats, want)
	}
}

func TestReportRoundtrip(t *testing.T) {
	r := FromEngine(sampleEngineReport(), engine.Settings{Format: format.WebP, Quality: 75})
	r.BuildInfo = &BuildInfo{Workers: 4, MemoryMB: 512}
	r.Files[0].Output.Path = "a.webp"

	path := filepath.Join(t.TempDir(), FileName)
	if err := WriteJSON(r, path); err != nil {
		t.Fatalf("write: %v", err)
	}
	r2, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if r2.BuildInfo == nil || r2.BuildInfo.Workers != 4 || r2.BuildInfo.MemoryMB != 512 {
		t.Errorf("build_info: %+v", r2.BuildInfo)
	}
	if len(r2.Files) != 3 || r2.Files[0].Output.Path != "a.webp" {
		t.Errorf("files: %+v", r2.Files)
	}
	if r2.Stats != r.Stats {
		t.Errorf("stats: got %+v, want %+v", r2.Stats, r.Stats)
	}
}

func TestSkippedCountsAsSuccess(t *testing.T) {
	r := New("b")
	r.Files = []File{
		{Source: "x", OriginalSize: 10, Skipped: "output not smaller than input"},
		{Source: "y", OriginalSize: 10, Output: &Output{Size: 4}},
	}
	r.ComputeStats()
	if r.Stats.Succeeded != 2 || r.Stats.SkippedRegress != 1 || r.Stats.TotalOutputBytes != 4 {
		t.Errorf("stats: %+v", r.Stats)
	}
}

func TestReadJSONRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.json")
	if err := os.WriteFile(path, []byte(`{"version": 9, "files": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadJSON(path); err == nil {
		t.Error("expected version error")
	}
}

func TestReportIgnoresUnknownFields(t *testing.T) {
	raw := `{
		"version": 1,
		"batch_id": "x",
		"future_field": "should be ignored",
		"build_info": { "workers": 8, "new_flag": true },
		"files": [],
		"stats": { "total": 0, "new_stat": 42 }
	}`
	var r Report
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		t.Fatalf("unmarshal with unknown fields: %v", err)
	}
	if r.BuildInfo == nil || r.BuildInfo.Workers != 8 {
		t.Error("build_info not parsed correctly")
	}
}
