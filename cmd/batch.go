package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/AnyUserName/imgpress/internal/config"
	"github.com/AnyUserName/imgpress/internal/decoder"
	"github.com/AnyUserName/imgpress/internal/encoder"
	"github.com/AnyUserName/imgpress/internal/engine"
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/imgerr"
	"github.com/AnyUserName/imgpress/internal/report"
	"github.com/AnyUserName/imgpress/internal/scanner"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// batchFlags are shared by compress and edit.
type batchFlags struct {
	outDir     string
	preset     string
	format     string
	quality    int
	maxDim     int
	lossless   bool
	workers    int
	memoryMB   int
	ordered    bool
	hashNames  bool
	noRegress  bool
	noProgress bool
}

func (f *batchFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.outDir, "out", "o", "dist", "output directory")
	fl.StringVarP(&f.preset, "preset", "p", "", "compression preset (see `imgpress formats`)")
	fl.StringVarP(&f.format, "format", "f", "", "output format: png, jpeg, webp, avif")
	fl.IntVarP(&f.quality, "quality", "q", 0, "quality 0-100")
	fl.IntVar(&f.maxDim, "max-dimension", 0, "cap the longest side (0 = keep)")
	fl.BoolVar(&f.lossless, "lossless", false, "lossless encode (png, webp, avif)")
	fl.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	fl.IntVar(&f.memoryMB, "memory-mb", 0, "decoded pixel memory budget in MB (0 = unlimited)")
	fl.BoolVar(&f.ordered, "ordered", false, "process results in input order")
	fl.BoolVar(&f.hashNames, "hash-names", false, "content-addressed names: <key>.<hash>.<ext>")
	fl.BoolVar(&f.noRegress, "no-regress-size", false, "skip outputs not smaller than the input")
	fl.BoolVar(&f.noProgress, "no-progress", false, "disable the progress bar")
}

// resolve layers defaults < config file < preset < explicit flags.
func (f *batchFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, err
	}
	fl := cmd.Flags()
	if f.preset != "" {
		if err := cfg.ApplyPreset(f.preset); err != nil {
			return cfg, fmt.Errorf("--preset: %w", err)
		}
	}
	if fl.Changed("format") {
		ff, err := format.Parse(f.format)
		if err != nil {
			return cfg, err
		}
		cfg.Settings.Format = ff
	}
	if fl.Changed("quality") {
		cfg.Settings.Quality = f.quality
	}
	if fl.Changed("max-dimension") {
		cfg.Settings.MaxDimension = f.maxDim
	}
	if fl.Changed("lossless") {
		cfg.Settings.Lossless = f.lossless
	}
	if fl.Changed("out") || cfg.OutputDir == "" {
		cfg.OutputDir = f.outDir
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("memory-mb") {
		cfg.MemoryMB = f.memoryMB
	}
	if fl.Changed("ordered") {
		cfg.Ordered = f.ordered
	}
	if fl.Changed("hash-names") {
		cfg.HashNames = f.hashNames
	}
	if fl.Changed("no-regress-size") {
		cfg.NoRegressSize = f.noRegress
	}
	return cfg, cfg.Validate()
}

// runBatch scans paths, runs one engine batch and writes every output plus
// the JSON report under cfg.OutputDir.
func runBatch(cfg config.Config, paths []string, noProgress bool) (*report.Report, error) {
	sources, err := scanner.Scan(paths)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no images found in %v", paths)
	}
	return runSources(cfg, sources, noProgress)
}

func runSources(cfg config.Config, sources []scanner.Source, noProgress bool) (*report.Report, error) {
	start := time.Now()
	sources = scanner.Distinct(sources)

	absOutput, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output path: %w", err)
	}
	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	enc := encoder.New(encoder.Options{CwebpPath: cfg.CwebpPath, AvifencPath: cfg.AvifencPath})
	eng := engine.New(engine.Config{
		Workers:      cfg.Workers,
		MemoryBudget: cfg.MemoryBudget(),
		Ordered:      cfg.Ordered,
		Logger:       logger,
		Decoder:      decoder.New(decoder.Options{AvifdecPath: cfg.AvifdecPath}),
		Encoder:      enc,
	})
	logger.Debug().Str("output", absOutput).Int("files", len(sources)).Msg(enc.String())

	inputs := make([]engine.Input, len(sources))
	for i, s := range sources {
		in := engine.FromFile(s.AbsPath)
		in.ID = s.RelPath
		inputs[i] = in
	}

	batch, err := eng.Submit(inputs, cfg.Settings)
	if err != nil {
		return nil, err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		select {
		case <-ctx.Done():
			logger.Warn().Msg("interrupted, cancelling batch")
			batch.Cancel()
		case <-batch.Done():
		}
	}()

	bar := newBar(len(sources), noProgress)
	written := make(map[int]writeOutcome, len(sources))
	claimed := make(map[string]string, len(sources))
	for res := range batch.Results() {
		if res.OK() {
			written[res.Index] = writeOutput(absOutput, sources[res.Index], res, cfg, claimed)
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	engRep, err := batch.Wait(context.Background())
	if err != nil {
		return nil, err
	}

	rep := report.FromEngine(engRep, cfg.Settings)
	rep.Preset = cfg.Preset
	rep.BuildInfo = &report.BuildInfo{Workers: eng.Workers(), MemoryMB: cfg.MemoryMB, Ordered: cfg.Ordered}
	for i := range rep.Files {
		w, ok := written[i]
		if !ok {
			continue
		}
		switch {
		case w.err != nil:
			rep.Files[i].Output = nil
			rep.Files[i].Error = &report.FileError{Kind: imgerr.KindIO.String(), Message: w.err.Error()}
		case w.skipped != "":
			rep.Files[i].Output = nil
			rep.Files[i].Skipped = w.skipped
		default:
			rep.Files[i].Output.Path = w.path
		}
	}
	rep.ComputeStats()

	reportPath := filepath.Join(absOutput, report.FileName)
	if err := report.WriteJSON(rep, reportPath); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	logger.Info().Str("report", reportPath).Dur("elapsed", time.Since(start)).Msg("batch written")
	return rep, nil
}

type writeOutcome struct {
	path    string
	skipped string
	err     error
}

// writeOutput stores one result under outDir, mirroring the source's
// relative directory. claimed maps each output path already written in this
// batch to the source that wrote it; a second claim fails instead of
// overwriting.
func writeOutput(outDir string, src scanner.Source, res engine.Result, cfg config.Config, claimed map[string]string) writeOutcome {
	if cfg.NoRegressSize && res.CompressedSize >= res.OriginalSize {
		logger.Debug().Str("id", res.ID).Msg("output not smaller than input, skipped")
		return writeOutcome{skipped: "output not smaller than input"}
	}
	rel := outputName(src.Key, res, cfg.HashNames)
	if owner, ok := claimed[rel]; ok {
		return writeOutcome{err: fmt.Errorf("output %s already written for %s", rel, owner)}
	}
	claimed[rel] = src.RelPath
	full := filepath.Join(outDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return writeOutcome{err: fmt.Errorf("create dir: %w", err)}
	}
	if err := os.WriteFile(full, res.Data, 0o644); err != nil {
		return writeOutcome{err: fmt.Errorf("write %s: %w", rel, err)}
	}
	return writeOutcome{path: rel}
}

// outputName is <key>.<ext>, or <key>.<hash8>.<ext> with content-addressed
// names. Keys always use forward slashes.
func outputName(key string, res engine.Result, hashNames bool) string {
	ext := res.Format.Extension()
	if hashNames && len(res.Hash) >= 8 {
		return path.Clean(fmt.Sprintf("%s.%s.%s", key, res.Hash[:8], ext))
	}
	return path.Clean(key + "." + ext)
}

func newBar(total int, disabled bool) *progressbar.ProgressBar {
	if disabled {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("img"),
		progressbar.OptionShowIts(),
		progressbar.OptionSetDescription("compressing"),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
}
