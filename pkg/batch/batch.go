// Package batch runs a function over many independent items with a
// bounded number of workers. Items never depend on each other: one
// failing or panicking item is logged and counted, and the rest of the
// batch keeps going.
package batch

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Func processes a single item.
type Func func(ctx context.Context, item string) error

// Result summarizes one batch run.
type Result struct {
	Total    int
	Failed   int
	Duration time.Duration
}

// Run maps fn over items using at most workers goroutines. Every run
// is tagged with a short ID so interleaved worker logs stay
// correlatable. Run returns once all started items finish; a canceled
// context stops new items from being picked up but does not interrupt
// items already running fn.
func Run(ctx context.Context, items []string, workers int, logger *log.Logger, fn Func) Result {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.With("run", uuid.NewString()[:8])
	logger.Info("starting batch", "items", len(items), "workers", workers)
	start := time.Now()

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, item := range items {
		if gctx.Err() != nil {
			break
		}
		item := item
		g.Go(func() error {
			if err := runItem(gctx, item, fn); err != nil {
				failed.Add(1)
				logger.Error("item failed", "item", item, "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	result := Result{
		Total:    len(items),
		Failed:   int(failed.Load()),
		Duration: time.Since(start),
	}
	logger.Info("batch finished",
		"ok", result.Total-result.Failed,
		"failed", result.Failed,
		"duration", result.Duration)
	return result
}

// runItem converts a panic inside fn into an error so one bad item
// cannot take down the whole pool.
func runItem(ctx context.Context, item string, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx, item)
}
