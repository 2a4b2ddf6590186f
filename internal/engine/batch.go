package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AnyUserName/imgpress/internal/imgerr"
	"github.com/AnyUserName/imgpress/internal/transform"
	"github.com/rs/zerolog"
)

// Progress is a point-in-time snapshot of a batch.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	InFlight  int `json:"in_flight"`
}

// Batch is the handle of one submitted batch.
type Batch struct {
	ID string

	settings Settings
	topts    transform.Options
	jobs     []*job
	queue    chan *job

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	budget *budget
	dec    Decoder
	enc    Encoder
	log    zerolog.Logger

	agg       *aggregator
	completed atomic.Int64
	inFlight  atomic.Int64

	start  time.Time
	done   chan struct{}
	report *Report
}

// Settings returns the settings the batch runs with.
func (b *Batch) Settings() Settings { return b.settings.Clone() }

// Progress never blocks.
func (b *Batch) Progress() Progress {
	return Progress{
		Completed: int(b.completed.Load()),
		Total:     len(b.jobs),
		InFlight:  int(b.inFlight.Load()),
	}
}

// State returns the current state of job i.
func (b *Batch) State(i int) State {
	if i < 0 || i >= len(b.jobs) {
		return DoneErr
	}
	return b.jobs[i].load()
}

// Results streams every result exactly once and is closed after the last.
// The channel is buffered for the whole batch, so a caller that only uses
// Wait never blocks the workers.
func (b *Batch) Results() <-chan Result { return b.agg.out }

// Done is closed once every job is terminal and the report is ready.
func (b *Batch) Done() <-chan struct{} { return b.done }

// Wait blocks until the report is ready or ctx is done. Giving up on ctx
// does not cancel the batch.
func (b *Batch) Wait(ctx context.Context) (*Report, error) {
	select {
	case <-b.done:
		return b.report, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel requests cancellation. Queued jobs end immediately as cancelled;
// decoding and transforming jobs stop at their next transition; an
// encoding job finishes and keeps its real result. Safe to call repeatedly.
func (b *Batch) Cancel() {
	b.once.Do(func() {
		b.log.Info().Msg("batch cancel requested")
	})
	b.cancel()
	for _, j := range b.jobs {
		if j.load() == Queued {
			b.finish(j, Queued, Result{Err: cancelled()})
		}
	}
}

func cancelled() *imgerr.Error {
	return imgerr.New(imgerr.KindCancelled, "", "batch cancelled")
}

// finish moves j from `from` to its terminal state and hands the result to
// the aggregator. It reports false when j had already left `from`, in
// which case res is dropped.
func (b *Batch) finish(j *job, from State, res Result) bool {
	to := DoneOK
	if res.Err != nil {
		to = DoneErr
	}
	if !j.advance(from, to) {
		return false
	}
	if from.processing() {
		b.inFlight.Add(-1)
	}
	res.Index = j.index
	res.ID = j.input.ID
	b.completed.Add(1)

	if res.Err != nil {
		ev := b.log.Warn()
		if res.Cancelled() {
			ev = b.log.Debug()
		}
		ev.Int("job", j.index).
			Str("id", j.input.ID).
			Str("kind", res.Err.Kind.String()).
			Str("state", from.String()).
			Msg(res.Err.Message())
	} else {
		b.log.Debug().
			Int("job", j.index).
			Str("id", j.input.ID).
			Int64("original", res.OriginalSize).
			Int64("compressed", res.CompressedSize).
			Dur("elapsed", res.Elapsed).
			Msg("done")
	}

	b.agg.in <- res
	return true
}

// collect waits for the aggregator and publishes the report.
func (b *Batch) collect() {
	results := b.agg.run()
	b.report = newReport(b.ID, results, time.Since(b.start))
	b.cancel() // release the context; every job is terminal

	b.log.Info().
		Int("succeeded", b.report.Succeeded).
		Int("failed", b.report.Failed).
		Int("cancelled", b.report.Cancelled).
		Dur("elapsed", b.report.Elapsed).
		Msg("batch finished")
	close(b.done)
}
