// Package concurrency provides a small fixed-size worker pool for
// partitioning per-neuron work (distance computation, neuron updates)
// across goroutines.
//
// It generalizes qubicDB-qubicdb/pkg/concurrency's WorkerPool -- there a
// long-lived pool of per-index goroutines fed by a context and shut down
// via cancel -- into the one-shot fan-out/fan-in shape this domain needs:
// a fixed worker count consuming a range of integer indices and blocking
// until every index is done, with no persistent goroutines between calls.
package concurrency

import (
	"runtime"
	"sync"
)

// Pool runs ParallelFor calls across a fixed number of worker goroutines.
type Pool struct {
	workers int
}

// New returns a Pool with the given worker count. A count <= 0 uses
// runtime.NumCPU(), matching the CLI's --num-threads=-1 default.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers reports the configured worker count.
func (p *Pool) Workers() int { return p.workers }

// ParallelFor calls fn(i) once for every i in [0, n), distributing indices
// across the pool's workers, and blocks until every call has returned.
// fn must be safe to call concurrently with disjoint i; it is the caller's
// responsibility that each i writes to a disjoint slice element (true for
// the neuron-indexed distance and update loops this pool backs).
func (p *Pool) ParallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := p.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(start int) {
			defer wg.Done()
			end := start + chunk
			if end > n {
				end = n
			}
			for i := start; i < end; i++ {
				fn(i)
			}
		}(w * chunk)
	}
	wg.Wait()
}
