package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/AnyUserName/imgpress/internal/imgerr"
	"github.com/AnyUserName/imgpress/internal/report"
	"github.com/spf13/cobra"
)

var compressFlags batchFlags

var compressCmd = &cobra.Command{
	Use:   "compress <paths...>",
	Short: "Compress or transcode images",
	Long: `Compresses every image found under the given files and directories
(png, jpg, jpeg, webp, avif, bmp, tiff) into one output format.

The input format is detected from the file contents, not the extension.
Outputs keep their relative paths under --out; --hash-names switches to
content-addressed names <key>.<hash>.<ext>. A JSON report is written next
to the outputs. Ctrl-C cancels the remaining files.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompress,
}

func init() {
	compressFlags.register(compressCmd)
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	start := time.Now()
	cfg, err := compressFlags.resolve(cmd)
	if err != nil {
		return err
	}
	rep, err := runBatch(cfg, args, compressFlags.noProgress)
	if err != nil {
		return err
	}
	printBatchReport(rep, time.Since(start))
	return batchError(rep)
}

// batchError fails the command only when nothing succeeded.
func batchError(rep *report.Report) error {
	if rep.Stats.Total > 0 && rep.Stats.Succeeded == 0 {
		return fmt.Errorf("all %d images failed to process", rep.Stats.Total)
	}
	return nil
}

func printBatchReport(rep *report.Report, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║             imgpress batch complete              ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	s := rep.Stats
	ratio := float64(0)
	if s.TotalInputBytes > 0 {
		ratio = float64(s.TotalOutputBytes) / float64(s.TotalInputBytes) * 100
	}

	fmt.Printf("  Files:       %d (%d ok, %d failed)\n", s.Total, s.Succeeded, s.Failed)
	if s.Cancelled > 0 {
		fmt.Printf("  Cancelled:   %d\n", s.Cancelled)
	}
	fmt.Printf("  Format:      %s q%d\n", rep.Settings.Format, rep.Settings.Quality)
	fmt.Printf("  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	fmt.Printf("  Ratio:       %.1f%% of original\n", ratio)
	if s.SkippedRegress > 0 {
		fmt.Printf("  Skipped:     %d outputs (not smaller than original)\n", s.SkippedRegress)
	}
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if rep.BuildInfo != nil {
		fmt.Printf("  Workers:     %d\n", rep.BuildInfo.Workers)
	}
	fmt.Println()

	// Top 10 heaviest inputs.
	var items []report.File
	for _, f := range rep.Files {
		if f.Output != nil {
			items = append(items, f)
		}
	}
	if len(items) > 0 {
		sort.Slice(items, func(i, j int) bool {
			return items[i].OriginalSize > items[j].OriginalSize
		})
		n := min(len(items), 10)
		fmt.Printf("  Top %d heaviest (original → compressed):\n", n)
		for _, it := range items[:n] {
			fmt.Printf("    %-40s %8s → %8s  (%+.0f%%)\n",
				truncKey(it.Source, 40),
				formatBytes(it.OriginalSize),
				formatBytes(it.Output.Size),
				-it.Output.SavedPercent,
			)
		}
		fmt.Println()
	}

	var failed []report.File
	for _, f := range rep.Files {
		if f.Error != nil && f.Error.Kind != imgerr.KindCancelled.String() {
			failed = append(failed, f)
		}
	}
	if len(failed) > 0 {
		fmt.Printf("  Errors (%d):\n", len(failed))
		for _, f := range failed {
			fmt.Printf("    ✗ %-40s %s: %s\n", truncKey(f.Source, 40), f.Error.Kind, f.Error.Message)
		}
		fmt.Println()
	}

	fmt.Printf("  Report:      %s\n", report.FileName)
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
