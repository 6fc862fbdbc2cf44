// Package jobs runs data-parallel batches over index ranges.
//
// A phase is scheduled with Run and completes before Run returns; the
// return is the join point after which results may be read.
package jobs

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Batch sizes used by the pipeline phases.
const (
	CullBatch     = 32
	MeshBatch     = 128
	ColliderBatch = 64
	SmoothBatch   = 8
)

// Workers caps the number of concurrently running batches. Zero means
// GOMAXPROCS.
var Workers = 0

// Run calls fn(start, end) for consecutive [start, end) chunks of [0, n),
// each at most batch items long, across a bounded worker pool, and waits for
// all of them. fn must only write state owned by its own range.
func Run(n, batch int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if batch <= 0 {
		batch = 1
	}

	limit := Workers
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	// Single batch: no point paying for a goroutine.
	if n <= batch || limit == 1 {
		for start := 0; start < n; start += batch {
			fn(start, min(start+batch, n))
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for start := 0; start < n; start += batch {
		start := start
		end := min(start+batch, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}

// For is Run with a per-item callback.
func For(n, batch int, fn func(i int)) {
	Run(n, batch, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}
