package copier

import (
	"runtime"
	"sync"
)

// effectiveParallelism resolves the configured parallelism level: zero or
// negative selects the number of logical CPUs, and the level is never
// larger than the number of units.
func effectiveParallelism(limit, n int) int {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if n > 0 && limit > n {
		limit = n
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// runBounded starts fn(0) … fn(n-1) in index order with at most limit units
// concurrently in flight, and returns once every unit has completed. When
// the in-flight count reaches the limit, the next unit waits for a slot.
// Units may complete in any order; a unit's failure must be recorded by fn
// itself and never affects the other units.
func runBounded(n, limit int, fn func(i int)) {
	if n == 0 {
		return
	}
	limit = effectiveParallelism(limit, n)

	semaphore := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		semaphore <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-semaphore }()
			fn(i)
		}(i)
	}
	wg.Wait()
}
