package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AnyUserName/imgpress/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchFlags    batchFlags
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Compress images as they appear under a directory",
	Long: `Watches a directory recursively and compresses every image that is
created or rewritten once it has been quiet for --debounce. Each settled
group of files runs as one batch; the report under --out describes the
most recent batch. The output directory is never watched.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a file is compressed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := watchFlags.resolve(cmd)
	if err != nil {
		return err
	}
	info, err := os.Stat(args[0])
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", args[0])
	}

	w, err := watcher.New(watcher.Options{
		Root:     args[0],
		Ignore:   cfg.OutputDir,
		Debounce: watchDebounce,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	groups, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "watching %s, writing to %s (Ctrl-C to stop)\n", args[0], cfg.OutputDir)

	for group := range groups {
		rep, err := runSources(cfg, group, true)
		if err != nil {
			logger.Error().Err(err).Int("files", len(group)).Msg("batch failed")
			continue
		}
		s := rep.Stats
		fmt.Printf("  %s  %d ok, %d failed  %s → %s\n",
			time.Now().Format(time.TimeOnly), s.Succeeded, s.Failed,
			formatBytes(s.TotalInputBytes), formatBytes(s.TotalOutputBytes))
		for _, f := range rep.Files {
			if f.Error != nil {
				fmt.Printf("    ✗ %s: %s\n", f.Source, f.Error.Message)
			}
		}
	}
	return nil
}
