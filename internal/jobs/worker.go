// Package jobs runs background maintenance work for the service.
package jobs

import (
	"context"
	"log"
	"time"
)

// Reindexer re-runs the full catalog build and indexing pass.
type Reindexer interface {
	Reindex(ctx context.Context) error
}

// Worker periodically triggers a full re-index. Every pass re-embeds and
// re-stores the whole corpus; there is no change detection, so the
// interval should be generous.
type Worker struct {
	reindexer Reindexer
	interval  time.Duration
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewWorker creates a reindex worker.
func NewWorker(reindexer Reindexer, interval time.Duration) *Worker {
	return &Worker{
		reindexer: reindexer,
		interval:  interval,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start begins the polling loop and blocks until stopped.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneChan)

	log.Printf("reindex worker started with interval: %v", w.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("reindex worker stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("reindex worker stopped: stop signal received")
			return
		case <-ticker.C:
			start := time.Now()
			if err := w.reindexer.Reindex(ctx); err != nil {
				log.Printf("periodic reindex failed: %v", err)
				continue
			}
			log.Printf("periodic reindex completed in %v", time.Since(start))
		}
	}
}

// Stop gracefully stops the worker.
func (w *Worker) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("reindex worker shutdown complete")
}
