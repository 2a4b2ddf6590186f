package engine

import (
	"context"

	"github.com/AnyUserName/imgpress/internal/asset"
	"golang.org/x/sync/semaphore"
)

// budget bounds the pixel memory of concurrently decoded assets.
// A nil budget is unlimited.
type budget struct {
	limit int64
	sem   *semaphore.Weighted
}

func newBudget(limit int64) *budget {
	if limit <= 0 {
		return nil
	}
	return &budget{limit: limit, sem: semaphore.NewWeighted(limit)}
}

// decodeCost estimates the peak memory of one job: the decoded buffer plus
// one transformed copy.
func decodeCost(w, h int) int64 {
	return 2 * asset.PixelBytes(w, h)
}

// Acquire blocks until n bytes are free or ctx is done. A request larger
// than the whole budget is clamped to the budget, so that job runs alone
// instead of never running. The returned release func is idempotent.
func (b *budget) Acquire(ctx context.Context, n int64) (release func(), err error) {
	if b == nil || n <= 0 {
		return func() {}, nil
	}
	if n > b.limit {
		n = b.limit
	}
	if err := b.sem.Acquire(ctx, n); err != nil {
		return nil, err
	}
	released := false
	return func() {
		if !released {
			released = true
			b.sem.Release(n)
		}
	}, nil
}
