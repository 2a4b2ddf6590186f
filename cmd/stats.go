package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/imgpress/internal/report"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_report>",
	Short: "Display statistics for a compressed output directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

// reportPath accepts an output directory or the report file itself.
func reportPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, report.FileName)
	}
	return path, nil
}

func runStats(_ *cobra.Command, args []string) error {
	path, err := reportPath(args[0])
	if err != nil {
		return err
	}
	r, err := report.ReadJSON(path)
	if err != nil {
		return err
	}
	printStats(r)
	return nil
}

func printStats(r *report.Report) {
	fmt.Println()
	fmt.Printf("  Report version:   %d\n", r.Version)
	fmt.Printf("  Generated:        %s\n", r.GeneratedAt)
	fmt.Printf("  Batch:            %s\n", r.BatchID)
	if r.Preset != "" {
		fmt.Printf("  Preset:           %s\n", r.Preset)
	}
	fmt.Printf("  Settings:         %s q%d", r.Settings.Format, r.Settings.Quality)
	if r.Settings.MaxDimension > 0 {
		fmt.Printf(" max %dpx", r.Settings.MaxDimension)
	}
	if r.Settings.Lossless {
		fmt.Print(" lossless")
	}
	fmt.Println()
	if r.BuildInfo != nil {
		fmt.Printf("  Workers:          %d\n", r.BuildInfo.Workers)
		if r.BuildInfo.MemoryMB > 0 {
			fmt.Printf("  Memory budget:    %d MB\n", r.BuildInfo.MemoryMB)
		}
	}
	fmt.Println()

	s := r.Stats
	fmt.Printf("  Total files:      %d\n", s.Total)
	fmt.Printf("  Succeeded:        %d\n", s.Succeeded)
	fmt.Printf("  Failed:           %d\n", s.Failed)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalInputBytes > 0 {
		ratio := float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
		fmt.Printf("  Compression:      %.1f%% of original\n", ratio)
	}
	fmt.Println()

	// Per-source-format breakdown.
	type agg struct {
		count   int
		in, out int64
	}
	bySource := map[string]agg{}
	for _, f := range r.Files {
		if f.Output == nil {
			continue
		}
		a := bySource[f.SourceFormat]
		a.count++
		a.in += f.OriginalSize
		a.out += f.Output.Size
		bySource[f.SourceFormat] = a
	}
	var keys []string
	for k := range bySource {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		fmt.Println("  Source breakdown:")
		for _, k := range keys {
			a := bySource[k]
			fmt.Printf("    %-6s  %4d files  %9s → %9s\n", k, a.count, formatBytes(a.in), formatBytes(a.out))
		}
		fmt.Println()
	}

	// Failures by kind.
	kinds := map[string]int{}
	for _, f := range r.Files {
		if f.Error != nil {
			kinds[f.Error.Kind]++
		}
	}
	if len(kinds) > 0 {
		var names []string
		for k := range kinds {
			names = append(names, k)
		}
		sort.Strings(names)
		fmt.Println("  Failures by kind:")
		for _, k := range names {
			fmt.Printf("    %-20s %4d\n", k, kinds[k])
		}
		fmt.Println()
	}

	// Warnings.
	var warnings []string
	for _, f := range r.Files {
		if f.Output != nil && f.Output.Size >= f.OriginalSize {
			warnings = append(warnings, fmt.Sprintf("%q grew from %s to %s",
				f.Source, formatBytes(f.OriginalSize), formatBytes(f.Output.Size)))
		}
	}
	if len(warnings) > 0 {
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
		fmt.Println()
	}
}
