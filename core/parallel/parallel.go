package parallel

import (
	"runtime"
	"sync"
)

// Workers resolves an sklearn-style n_jobs value to a worker count:
// values <= 0 mean "all CPU cores".
func Workers(nJobs int) int {
	if nJobs <= 0 {
		return runtime.NumCPU()
	}
	return nJobs
}

// ParallelizeN divides items into contiguous ranges, one per worker, and
// calls fn for each range (start, end) in parallel.
func ParallelizeN(items, numWorkers int, fn func(start, end int)) {
	if items == 0 {
		return
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > items {
		numWorkers = items // No need for more workers than items
	}
	if numWorkers == 1 {
		fn(0, items)
		return
	}

	// Calculate the number of items each worker handles (ceiling division)
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold
// If below threshold, normal sequential processing is performed
func ParallelizeWithThreshold(items, threshold, numWorkers int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	ParallelizeN(items, numWorkers, fn)
}
