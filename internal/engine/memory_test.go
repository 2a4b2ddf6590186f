package engine

import (
	"context"
	"testing"
	"time"
)

func TestBudgetUnlimited(t *testing.T) {
	b := newBudget(0)
	release, err := b.Acquire(context.Background(), 1<<40)
	if err != nil {
		t.Fatal(err)
	}
	release()
}

func TestBudgetClampsAndBlocks(t *testing.T) {
	b := newBudget(1000)
	release, err := b.Acquire(context.Background(), 5000)
	if err != nil {
		t.Fatalf("oversized request should be clamped: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := b.Acquire(ctx, 1); err == nil {
		t.Fatal("budget is full; acquire should wait until ctx expires")
	}

	release()
	release() // idempotent
	r2, err := b.Acquire(context.Background(), 1000)
	if err != nil {
		t.Fatalf("after release: %v", err)
	}
	r2()
}

func TestDecodeCost(t *testing.T) {
	if got := decodeCost(10, 20); got != 1600 {
		t.Errorf("got %d, want 1600", got)
	}
	if got := decodeCost(0, 20); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestAggregatorReorders(t *testing.T) {
	a := newAggregator(4, true)
	for _, i := range []int{2, 0, 3, 1} {
		a.in <- Result{Index: i}
	}
	results := a.run()
	next := 0
	for r := range a.out {
		if r.Index != next {
			t.Fatalf("got %d, want %d", r.Index, next)
		}
		next++
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("results[%d] has index %d", i, r.Index)
		}
	}
}

func TestStateString(t *testing.T) {
	if Encoding.String() != "encoding" || DoneErr.String() != "done_err" || State(42).String() != "invalid" {
		t.Error("state names")
	}
	if !DoneOK.Terminal() || Encoding.Terminal() {
		t.Error("terminal")
	}
}
