// Package engine runs compression batches: it fans jobs out over a bounded
// worker pool, enforces the decode memory budget, handles cancellation and
// streams per-job results back to the caller.
//
// The engine never writes files. Callers get bytes back and decide where
// they go.
package engine

import (
	"context"
	"image"
	"runtime"
	"time"

	"github.com/AnyUserName/imgpress/internal/asset"
	"github.com/AnyUserName/imgpress/internal/decoder"
	"github.com/AnyUserName/imgpress/internal/encoder"
	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Decoder is the decode stage. *decoder.Decoder implements it.
type Decoder interface {
	Probe(f format.Format, data []byte) (image.Point, error)
	Decode(f format.Format, data []byte) (*asset.Asset, error)
}

// Encoder is the encode stage. *encoder.Registry implements it.
type Encoder interface {
	Encode(a *asset.Asset, f format.Format, quality int, lossless bool) ([]byte, error)
}

// Config holds the engine parameters shared by every batch.
type Config struct {
	// Workers bounds concurrent jobs per batch; 0 means one per CPU.
	Workers int
	// MemoryBudget bounds the pixel memory of decoded assets per batch,
	// in bytes; 0 is unlimited.
	MemoryBudget int64
	// Ordered delivers Results in submission order instead of completion order.
	Ordered bool

	Logger  zerolog.Logger
	Decoder Decoder
	Encoder Encoder
}

// Engine submits batches. It holds no per-batch state.
type Engine struct {
	cfg Config
}

// New creates an engine, filling in defaults.
func New(cfg Config) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Decoder == nil {
		cfg.Decoder = decoder.New(decoder.Options{})
	}
	if cfg.Encoder == nil {
		cfg.Encoder = encoder.New(encoder.Options{})
	}
	return &Engine{cfg: cfg}
}

// Workers returns the effective worker limit.
func (e *Engine) Workers() int { return e.cfg.Workers }

// Submit validates s and starts one job per input. The returned batch is
// already running. Only invalid settings fail the whole submission; every
// other problem is reported on that job's Result.
func (e *Engine) Submit(inputs []Input, s Settings) (*Batch, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s = s.Clone()

	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.NewString()
	b := &Batch{
		ID:       id,
		settings: s,
		topts:    s.transformOptions(),
		ctx:      ctx,
		cancel:   cancel,
		budget:   newBudget(e.cfg.MemoryBudget),
		dec:      e.cfg.Decoder,
		enc:      e.cfg.Encoder,
		log:      e.cfg.Logger.With().Str("batch", id).Logger(),
		start:    time.Now(),
		done:     make(chan struct{}),
		jobs:     make([]*job, len(inputs)),
	}
	b.agg = newAggregator(len(inputs), e.cfg.Ordered)

	b.queue = make(chan *job, len(inputs))
	for i, in := range inputs {
		j := &job{index: i, input: in}
		b.jobs[i] = j
		b.queue <- j
	}
	close(b.queue)

	workers := min(e.cfg.Workers, len(inputs))
	b.log.Info().
		Int("jobs", len(inputs)).
		Int("workers", workers).
		Str("format", s.Format.String()).
		Int("quality", s.Quality).
		Msg("batch started")

	for range workers {
		go b.worker()
	}
	go b.collect()
	return b, nil
}
