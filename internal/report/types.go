package report

// Report is the JSON artefact the compress and edit commands write next
// to their outputs. stats and validate read it back.
type Report struct {
	Version     int        `json:"version"`
	GeneratedAt string     `json:"generated_at"`
	BatchID     string     `json:"batch_id"`
	Preset      string     `json:"preset,omitempty"`
	BasePath    string     `json:"base_path"`
	Settings    Settings   `json:"settings"`
	BuildInfo   *BuildInfo `json:"build_info,omitempty"`
	Files       []File     `json:"files"`
	Stats       Stats      `json:"stats"`
}

// Settings echoes the compression settings of the batch.
type Settings struct {
	Format       string   `json:"format"`
	Quality      int      `json:"quality"`
	MaxDimension int      `json:"max_dimension,omitempty"`
	Lossless     bool     `json:"lossless,omitempty"`
	Transforms   []string `json:"transforms,omitempty"` // human-readable, e.g. "rotate 90"
}

// BuildInfo captures run parameters for diagnostics.
type BuildInfo struct {
	Workers  int  `json:"workers"`
	MemoryMB int  `json:"memory_mb,omitempty"`
	Ordered  bool `json:"ordered,omitempty"`
}

// File is one input and what became of it. Exactly one of Output, Error
// and Skipped is set.
type File struct {
	Index        int    `json:"index"`
	Source       string `json:"source"`
	SourceFormat string `json:"source_format,omitempty"`
	OriginalSize int64  `json:"original_size"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	ElapsedMS    int64  `json:"elapsed_ms"`

	Output  *Output    `json:"output,omitempty"`
	Error   *FileError `json:"error,omitempty"`
	Skipped string     `json:"skipped,omitempty"` // reason the output was not written
}

// Output describes the written file.
type Output struct {
	Format       string  `json:"format"`
	Size         int64   `json:"size"`  // bytes on disk
	Hash         string  `json:"hash"`  // first 16 hex chars of xxhash64
	Path         string  `json:"path"`  // relative to base_path
	SavedPercent float64 `json:"saved_percent"`
}

// FileError is a typed job failure.
type FileError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Stats aggregates the batch.
type Stats struct {
	TotalInputBytes  int64 `json:"total_input_bytes"`
	TotalOutputBytes int64 `json:"total_output_bytes"`
	Total            int   `json:"total"`
	Succeeded        int   `json:"succeeded"`
	Failed           int   `json:"failed"`
	Cancelled        int   `json:"cancelled,omitempty"`
	SkippedRegress   int   `json:"skipped_regress,omitempty"` // outputs not smaller than the input
}

// SupportedVersion is the current schema version.
const SupportedVersion = 1
