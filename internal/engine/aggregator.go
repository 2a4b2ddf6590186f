package engine

// aggregator receives results in completion order and forwards them,
// optionally reordered by submission index.
type aggregator struct {
	total   int
	ordered bool
	in      chan Result
	out     chan Result
}

func newAggregator(total int, ordered bool) *aggregator {
	return &aggregator{
		total:   total,
		ordered: ordered,
		// Every job sends exactly once, so neither side can block.
		in:  make(chan Result, total),
		out: make(chan Result, total),
	}
}

// run returns the results indexed by submission order once all arrived.
func (a *aggregator) run() []Result {
	results := make([]Result, a.total)
	pending := make(map[int]Result)
	next := 0

	for n := 0; n < a.total; n++ {
		r := <-a.in
		results[r.Index] = r
		if !a.ordered {
			a.out <- r
			continue
		}
		pending[r.Index] = r
		for {
			p, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			a.out <- p
			next++
		}
	}
	close(a.out)
	return results
}
