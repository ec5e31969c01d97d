package search

import (
	"context"
	"sync/atomic"

	"github.com/fwojciec/serp"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of sessions a Batch runs at once when
// Concurrency is not set.
const DefaultConcurrency = 4

// Batch runs many search sessions concurrently.
type Batch struct {
	Searcher    serp.Searcher
	Concurrency int
}

// BatchResult is the outcome of one request in a batch. Err is set only
// when the searcher refused the request.
type BatchResult struct {
	Request serp.SearchRequest
	Report  *serp.SessionReport
	Err     error
}

// ProgressEvent reports progress during a batch.
type ProgressEvent struct {
	Completed int
	Total     int
	Request   serp.SearchRequest
	Report    *serp.SessionReport
	Err       error
}

// ProgressFunc is a callback for reporting batch progress. It may be
// called from multiple goroutines.
type ProgressFunc func(event ProgressEvent)

// Run executes reqs and returns their results in request order.
// Requests not started before ctx is canceled are reported with ctx.Err().
func (b *Batch) Run(ctx context.Context, reqs []serp.SearchRequest, progress ProgressFunc) []BatchResult {
	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]BatchResult, len(reqs))
	var completed atomic.Int64

	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, req := range reqs {
		g.Go(func() error {
			res := BatchResult{Request: req}
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else {
				res.Report, res.Err = b.Searcher.Search(ctx, req)
			}
			results[i] = res

			if progress != nil {
				progress(ProgressEvent{
					Completed: int(completed.Add(1)),
					Total:     len(reqs),
					Request:   req,
					Report:    res.Report,
					Err:       res.Err,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
