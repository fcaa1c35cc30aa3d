// Package parallel provides small fan-out helpers for CPU-bound estimator work.
package parallel

import (
	"runtime"
	"sync"
)

// ForEach runs fn(i) for every i in [0, items) across at most workers
// goroutines. A workers value <= 0 selects one worker per CPU core. Indices
// are handed out in blocks so each call site still observes deterministic
// per-index results.
func ForEach(items, workers int, fn func(i int)) {
	if items <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items
	}

	// Block size per worker, rounded up so every index is covered.
	block := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * block
		hi := lo + block
		if hi > items {
			hi = items
		}
		if lo >= hi {
			break
		}

		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}
	wg.Wait()
}

// ForEachWithThreshold falls back to a plain sequential loop when items is at
// or below threshold, where goroutine startup would cost more than it saves.
func ForEachWithThreshold(items, threshold, workers int, fn func(i int)) {
	if items <= threshold {
		for i := 0; i < items; i++ {
			fn(i)
		}
		return
	}
	ForEach(items, workers, fn)
}
