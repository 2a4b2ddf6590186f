package engine

import (
	"fmt"
	"time"

	"github.com/AnyUserName/imgpress/internal/format"
	"github.com/AnyUserName/imgpress/internal/hasher"
	"github.com/AnyUserName/imgpress/internal/imgerr"
	"github.com/AnyUserName/imgpress/internal/transform"
)

// hashLen is the hex length of Result.Hash.
const hashLen = 16

func (b *Batch) worker() {
	for j := range b.queue {
		b.process(j)
	}
}

// process runs one job through its pipeline. Cancellation is checked only
// between stages; a codec call that has started always runs to the end.
func (b *Batch) process(j *job) {
	if j.load() != Queued {
		return // swept by Cancel
	}
	if b.ctx.Err() != nil {
		b.finish(j, Queued, Result{Err: cancelled()})
		return
	}

	start := time.Now()
	var res Result
	fail := func(from State, kind imgerr.Kind, op string, err error) {
		res.Err = imgerr.Wrap(kind, op, err)
		res.Elapsed = time.Since(start)
		b.finish(j, from, res)
	}
	// reject fails a job before its pixels are decoded. It still passes
	// through Decoding so every failure leaves a processing state.
	reject := func(kind imgerr.Kind, op string, err error) {
		if !j.advance(Queued, Decoding) {
			return
		}
		b.inFlight.Add(1)
		fail(Decoding, kind, op, err)
	}

	if j.input.Load == nil {
		reject(imgerr.KindIO, "load", fmt.Errorf("input %q has no byte source", j.input.ID))
		return
	}
	data, err := j.input.Load()
	if err != nil {
		reject(imgerr.KindIO, "load", err)
		return
	}
	res.OriginalSize = int64(len(data))

	src, err := format.Detect(data)
	if err != nil {
		reject(imgerr.KindUnsupportedFormat, "detect", err)
		return
	}
	res.SourceFormat = src

	dims, err := b.dec.Probe(src, data)
	if err != nil {
		reject(imgerr.KindCorrupt, "probe "+src.String(), err)
		return
	}

	// Waiting for memory keeps the job Queued, so Cancel can still sweep it.
	release, err := b.budget.Acquire(b.ctx, decodeCost(dims.X, dims.Y))
	if err != nil {
		b.finish(j, Queued, Result{Err: cancelled()})
		return
	}
	defer release()
	if b.ctx.Err() != nil {
		b.finish(j, Queued, Result{Err: cancelled()})
		return
	}
	if !j.advance(Queued, Decoding) {
		return
	}
	b.inFlight.Add(1)

	a, err := b.dec.Decode(src, data)
	if err != nil {
		fail(Decoding, imgerr.KindCorrupt, "decode "+src.String(), err)
		return
	}
	if b.ctx.Err() != nil {
		a.Release()
		fail(Decoding, imgerr.KindCancelled, "", cancelled())
		return
	}

	j.advance(Decoding, Transforming)
	out, err := transform.Apply(a, b.topts)
	if out != a {
		a.Release()
	}
	if err != nil {
		fail(Transforming, imgerr.KindInvalidParameters, "transform", err)
		return
	}
	if b.ctx.Err() != nil {
		out.Release()
		fail(Transforming, imgerr.KindCancelled, "", cancelled())
		return
	}

	j.advance(Transforming, Encoding)
	s := b.settings
	encoded, err := b.enc.Encode(out, s.Format, s.Quality, s.Lossless)
	res.Width, res.Height = out.Width(), out.Height()
	out.Release()
	if err != nil {
		fail(Encoding, imgerr.KindInvalidInput, "encode "+s.Format.String(), err)
		return
	}

	res.Data = encoded
	res.Format = s.Format
	res.CompressedSize = int64(len(encoded))
	res.Hash = hasher.ContentHash(encoded, hashLen)
	res.Elapsed = time.Since(start)
	b.finish(j, Encoding, res)
}
