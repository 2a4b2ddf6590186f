package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/hasher"
	"github.com/AnyUserName/imgpress/internal/report"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <out_dir_or_report>",
	Short: "Validate a report and check the written files against it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	path, err := reportPath(args[0])
	if err != nil {
		return err
	}
	r, err := report.ReadJSON(path)
	if err != nil {
		return err
	}

	errors := validateReport(r, filepath.Dir(path))
	if len(errors) == 0 {
		fmt.Println("  ✓ Report is valid")
		fmt.Printf("  ✓ %d files, %d outputs, all present and matching\n", r.Stats.Total, countOutputs(r))
		return nil
	}

	fmt.Printf("  ✗ Report has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}

func countOutputs(r *report.Report) int {
	n := 0
	for _, f := range r.Files {
		if f.Output != nil {
			n++
		}
	}
	return n
}

func validateReport(r *report.Report, baseDir string) []string {
	var errs []string

	seenIndex := map[int]bool{}
	seenPaths := map[string]bool{}
	for i, f := range r.Files {
		if seenIndex[f.Index] {
			errs = append(errs, fmt.Sprintf("file[%d] %q: duplicate index %d", i, f.Source, f.Index))
		}
		seenIndex[f.Index] = true

		set := 0
		for _, ok := range []bool{f.Output != nil, f.Error != nil, f.Skipped != ""} {
			if ok {
				set++
			}
		}
		if set != 1 {
			errs = append(errs, fmt.Sprintf("file[%d] %q: want exactly one of output, error, skipped", i, f.Source))
			continue
		}
		if f.Output == nil {
			continue
		}

		v := f.Output
		if _, err := format.Parse(v.Format); err != nil {
			errs = append(errs, fmt.Sprintf("file[%d] %q: bad output format %q", i, f.Source, v.Format))
		}
		if f.Width <= 0 || f.Height <= 0 {
			errs = append(errs, fmt.Sprintf("file[%d] %q: invalid dimensions %dx%d", i, f.Source, f.Width, f.Height))
		}
		if v.Path == "" {
			errs = append(errs, fmt.Sprintf("file[%d] %q: missing path", i, f.Source))
			continue
		}
		if seenPaths[v.Path] {
			errs = append(errs, fmt.Sprintf("file[%d] %q: duplicate path %q", i, f.Source, v.Path))
		}
		seenPaths[v.Path] = true

		fullPath := filepath.Join(baseDir, filepath.FromSlash(v.Path))
		size, hash, detected, err := inspectOutput(fullPath, len(v.Hash))
		if err != nil {
			errs = append(errs, fmt.Sprintf("file[%d] %q: output not readable: %s: %v", i, f.Source, v.Path, err))
			continue
		}
		if size != v.Size {
			errs = append(errs, fmt.Sprintf("file[%d] %q: size mismatch: report=%d, disk=%d",
				i, f.Source, v.Size, size))
		}
		if v.Hash == "" || hash != v.Hash {
			errs = append(errs, fmt.Sprintf("file[%d] %q: hash mismatch: report=%s, disk=%s", i, f.Source, v.Hash, hash))
		}
		if detected.String() != v.Format {
			errs = append(errs, fmt.Sprintf("file[%d] %q: content is not %s", i, f.Source, v.Format))
		}
	}

	// Verify stats consistency.
	want := *r
	want.ComputeStats()
	if want.Stats != r.Stats {
		errs = append(errs, fmt.Sprintf("stats mismatch: report=%+v, recomputed=%+v", r.Stats, want.Stats))
	}
	return errs
}

// inspectOutput streams one written file: its size, its xxhash and the
// format sniffed from its first bytes.
func inspectOutput(path string, hexLen int) (int64, string, format.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", format.Unknown, err
	}
	defer f.Close()

	prefix := make([]byte, format.PrefixLen)
	n, err := io.ReadFull(f, prefix)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, "", format.Unknown, err
	}
	detected, _ := format.Detect(prefix[:n])

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, "", format.Unknown, err
	}
	cr := &countingReader{r: f}
	hash, err := hasher.ContentHashReader(cr, hexLen)
	if err != nil {
		return 0, "", format.Unknown, err
	}
	return cr.n, hash, detected, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
