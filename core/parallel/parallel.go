// Package parallel splits row ranges across CPU cores.
package parallel

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultThreshold is the row count below which callers should stay sequential.
const DefaultThreshold = 1000

// chunks divides [0, items) into at most one contiguous range per CPU core.
func chunks(items int) [][2]int {
	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	out := make([][2]int, 0, numWorkers)
	for start := 0; start < items; start += chunkSize {
		end := start + chunkSize
		if end > items {
			end = items
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// Parallelize runs fn(start, end) concurrently over contiguous ranges
// covering [0, items). fn must only write to rows inside its range.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	var wg sync.WaitGroup
	for _, c := range chunks(items) {
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(c[0], c[1])
	}
	wg.Wait()
}

// ParallelizeWithThreshold is Parallelize for items > threshold and a single
// sequential fn(0, items) call otherwise.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ForEachChunk is ParallelizeWithThreshold for fallible work. It waits for
// every range and returns the first error.
func ForEachChunk(items int, threshold int, fn func(start, end int) error) error {
	if items <= 0 {
		return nil
	}
	if items <= threshold {
		return fn(0, items)
	}

	var g errgroup.Group
	for _, c := range chunks(items) {
		s, e := c[0], c[1]
		g.Go(func() error {
			return fn(s, e)
		})
	}
	return g.Wait()
}
