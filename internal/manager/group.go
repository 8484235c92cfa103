package manager

import (
	"context"
	"sync"
)

// buildResult is the outcome of one catalog-construction task.
type buildResult[T any] struct {
	value T
	err   error
}

// runBounded executes one task per name on at most `workers` goroutines and
// collects a name→(result|error) map. A failing task never cancels its
// siblings; the caller decides what to do with individual failures.
func runBounded[T any](ctx context.Context, workers int, names []string, fn func(ctx context.Context, name string) (T, error)) map[string]buildResult[T] {
	if workers <= 0 {
		workers = 1
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]buildResult[T], len(names))
		sem     = make(chan struct{}, workers)
	)

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			value, err := fn(ctx, name)

			mu.Lock()
			results[name] = buildResult[T]{value: value, err: err}
			mu.Unlock()
		}(name)
	}

	wg.Wait()
	return results
}
