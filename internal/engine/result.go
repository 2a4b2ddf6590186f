package engine

import (
	"time"

	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/imgerr"
)

// Result is the immutable outcome of one job. Err is nil on success.
type Result struct {
	Index int    `json:"index"`
	ID    string `json:"id"`

	Data           []byte        `json:"-"`
	Format         format.Format `json:"format"`
	SourceFormat   format.Format `json:"source_format"`
	OriginalSize   int64         `json:"original_size"`
	CompressedSize int64         `json:"compressed_size"`
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	// Hash is the 16-char xxHash64 of Data.
	Hash    string        `json:"hash,omitempty"`
	Elapsed time.Duration `json:"elapsed"`

	Err *imgerr.Error `json:"-"`
}

// OK reports whether the job succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Cancelled reports whether the job was cancelled before it produced output.
func (r Result) Cancelled() bool {
	return r.Err != nil && r.Err.Kind == imgerr.KindCancelled
}

// SavedPercent is how much smaller the output is than the input, in
// percent. Negative when the output grew.
func (r Result) SavedPercent() float64 {
	if !r.OK() || r.OriginalSize <= 0 {
		return 0
	}
	return (1 - float64(r.CompressedSize)/float64(r.OriginalSize)) * 100
}

// Report enumerates every submitted job exactly once, in submission order.
type Report struct {
	BatchID string   `json:"batch_id"`
	Results []Result `json:"results"`

	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	// Cancelled is the subset of Failed that never ran to completion.
	Cancelled int `json:"cancelled"`

	InputBytes  int64         `json:"input_bytes"`
	OutputBytes int64         `json:"output_bytes"`
	Elapsed     time.Duration `json:"elapsed"`
}

func newReport(batchID string, results []Result, elapsed time.Duration) *Report {
	rep := &Report{BatchID: batchID, Results: results, Total: len(results), Elapsed: elapsed}
	for _, res := range results {
		rep.InputBytes += res.OriginalSize
		if res.OK() {
			rep.Succeeded++
			rep.OutputBytes += res.CompressedSize
			continue
		}
		rep.Failed++
		if res.Cancelled() {
			rep.Cancelled++
		}
	}
	return rep
}
