package cmd

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/AnyUserName/imgpress/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	verbose    bool
	logJSON    bool
	configPath string

	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "imgpress",
	Short: "Batch image compression and editing",
	Long: `imgpress — compresses and transcodes batches of PNG, JPEG, WebP and AVIF
images (BMP and TIFF are accepted as input) with a bounded worker pool
and a memory budget.

WebP and AVIF use the cwebp, avifenc and avifdec tools when installed.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger = newLogger(verbose, logJSON)
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "imgpress: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log JSON lines to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./imgpress.yaml)")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"imgpress %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// newLogger builds the stderr logger. Warnings and above are always shown;
// --verbose adds the per-job debug lines.
func newLogger(verbose, jsonOut bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	l := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if !jsonOut {
		l = l.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	}
	return l
}

// loadConfig resolves defaults and the config file.
func loadConfig() (config.Config, error) {
	cfg := config.Default()
	fc, path, err := config.FindAndLoad(configPath)
	if err != nil {
		return cfg, err
	}
	if path != "" {
		logger.Debug().Str("path", path).Msg("config loaded")
	}
	if err := fc.ApplyTo(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
