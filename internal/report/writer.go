package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/AnyUserName/imgpress/internal/engine"
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/imgerr"
)

// FileName is the report written into the output directory.
const FileName = "imgpress.report.json"

// New creates an empty report with defaults.
func New(batchID string) *Report {
	return &Report{
		Version:     SupportedVersion,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		BatchID:     batchID,
		BasePath:    "./",
	}
}

// FromEngine converts an engine report. Output paths are left empty for
// the caller to fill in once the files are written.
func FromEngine(r *engine.Report, s engine.Settings) *Report {
	rep := New(r.BatchID)
	rep.Settings = Settings{
		Format:       s.Format.String(),
		Quality:      s.Quality,
		MaxDimension: s.MaxDimension,
		Lossless:     s.Lossless,
		Transforms:   describeTransforms(s),
	}
	rep.Files = make([]File, len(r.Results))
	for i, res := range r.Results {
		f := File{
			Index:        res.Index,
			Source:       res.ID,
			OriginalSize: res.OriginalSize,
			Width:        res.Width,
			Height:       res.Height,
			ElapsedMS:    res.Elapsed.Milliseconds(),
		}
		if res.SourceFormat != format.Unknown {
			f.SourceFormat = res.SourceFormat.String()
		}
		if res.OK() {
			f.Output = &Output{
				Format:       res.Format.String(),
				Size:         res.CompressedSize,
				Hash:         res.Hash,
				SavedPercent: res.SavedPercent(),
			}
		} else {
			f.Error = &FileError{Kind: res.Err.Kind.String(), Message: res.Err.Message()}
		}
		rep.Files[i] = f
	}
	rep.ComputeStats()
	return rep
}

func describeTransforms(s engine.Settings) []string {
	t := s.Transform
	var out []string
	if t.Crop != nil {
		out = append(out, fmt.Sprintf("crop %dx%d+%d+%d", t.Crop.Width, t.Crop.Height, t.Crop.X, t.Crop.Y))
	}
	if t.Width > 0 || t.Height > 0 {
		out = append(out, fmt.Sprintf("resize %dx%d", t.Width, t.Height))
	}
	if t.MaxDimension > 0 {
		out = append(out, fmt.Sprintf("max %d", t.MaxDimension))
	}
	if t.Rotate != 0 {
		out = append(out, fmt.Sprintf("rotate %g", t.Rotate))
	}
	if t.FlipH {
		out = append(out, "flip-h")
	}
	if t.FlipV {
		out = append(out, "flip-v")
	}
	if t.Brightness != 0 {
		out = append(out, fmt.Sprintf("brightness %g", t.Brightness))
	}
	if t.Contrast != 0 {
		out = append(out, fmt.Sprintf("contrast %g", t.Contrast))
	}
	for _, f := range t.Filters {
		out = append(out, string(f))
	}
	return out
}

// ComputeStats recalculates aggregate statistics from files.
func (r *Report) ComputeStats() {
	var s Stats
	s.Total = len(r.Files)
	for _, f := range r.Files {
		s.TotalInputBytes += f.OriginalSize
		switch {
		case f.Error != nil:
			s.Failed++
			if f.Error.Kind == imgerr.KindCancelled.String() {
				s.Cancelled++
			}
		case f.Skipped != "":
			s.Succeeded++
			s.SkippedRegress++
		default:
			s.Succeeded++
			if f.Output != nil {
				s.TotalOutputBytes += f.Output.Size
			}
		}
	}
	r.Stats = s
}

// WriteJSON serializes the report with stable ordering.
func WriteJSON(r *Report, path string) error {
	r.ComputeStats()

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// ReadJSON loads a report and checks its version.
func ReadJSON(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	if r.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported report version %d (want %d)", r.Version, SupportedVersion)
	}
	return &r, nil
}
