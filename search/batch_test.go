package search_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/serp"
	"github.com/fwojciec/serp/mock"
	"github.com/fwojciec/serp/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_Run(t *testing.T) {
	t.Parallel()

	t.Run("returns results in request order", func(t *testing.T) {
		t.Parallel()

		b := &search.Batch{
			Searcher: &mock.Searcher{
				SearchFn: func(_ context.Context, req serp.SearchRequest) (*serp.SessionReport, error) {
					// Finish later requests first.
					if req.Query == "first" {
						time.Sleep(20 * time.Millisecond)
					}
					return &serp.SessionReport{Engine: req.Engine, Query: req.Query}, nil
				},
			},
			Concurrency: 3,
		}
		reqs := []serp.SearchRequest{
			{Engine: serp.EngineGoogle, Query: "first"},
			{Engine: serp.EngineBing, Query: "second"},
			{Engine: serp.EngineMojeek, Query: "third"},
		}

		results := b.Run(context.Background(), reqs, nil)

		require.Len(t, results, 3)
		for i, res := range results {
			require.NoError(t, res.Err)
			assert.Equal(t, reqs[i], res.Request)
			assert.Equal(t, reqs[i].Query, res.Report.Query)
		}
	})

	t.Run("limits concurrency", func(t *testing.T) {
		t.Parallel()

		var running, peak atomic.Int64
		b := &search.Batch{
			Searcher: &mock.Searcher{
				SearchFn: func(_ context.Context, req serp.SearchRequest) (*serp.SessionReport, error) {
					n := running.Add(1)
					for {
						p := peak.Load()
						if n <= p || peak.CompareAndSwap(p, n) {
							break
						}
					}
					time.Sleep(5 * time.Millisecond)
					running.Add(-1)
					return &serp.SessionReport{Query: req.Query}, nil
				},
			},
			Concurrency: 2,
		}
		reqs := make([]serp.SearchRequest, 10)
		for i := range reqs {
			reqs[i] = serp.SearchRequest{Engine: serp.EngineGoogle, Query: "q"}
		}

		results := b.Run(context.Background(), reqs, nil)

		assert.Len(t, results, 10)
		assert.LessOrEqual(t, peak.Load(), int64(2))
	})

	t.Run("keeps per request errors", func(t *testing.T) {
		t.Parallel()

		b := &search.Batch{
			Searcher: &mock.Searcher{
				SearchFn: func(_ context.Context, req serp.SearchRequest) (*serp.SessionReport, error) {
					if req.Engine == "altavista" {
						return nil, serp.Errorf(serp.EUNKNOWNENGINE, "unknown engine %q", req.Engine)
					}
					return &serp.SessionReport{Engine: req.Engine}, nil
				},
			},
		}

		results := b.Run(context.Background(), []serp.SearchRequest{
			{Engine: "altavista", Query: "q"},
			{Engine: serp.EngineGoogle, Query: "q"},
		}, nil)

		require.Len(t, results, 2)
		assert.Equal(t, serp.EUNKNOWNENGINE, serp.ErrorCode(results[0].Err))
		assert.Nil(t, results[0].Report)
		require.NoError(t, results[1].Err)
		assert.Equal(t, serp.EngineGoogle, results[1].Report.Engine)
	})

	t.Run("reports progress for every request", func(t *testing.T) {
		t.Parallel()

		b := &search.Batch{
			Searcher: &mock.Searcher{
				SearchFn: func(_ context.Context, req serp.SearchRequest) (*serp.SessionReport, error) {
					return &serp.SessionReport{Query: req.Query}, nil
				},
			},
			Concurrency: 2,
		}

		var mu sync.Mutex
		var completed []int
		b.Run(context.Background(), []serp.SearchRequest{
			{Engine: serp.EngineGoogle, Query: "a"},
			{Engine: serp.EngineGoogle, Query: "b"},
			{Engine: serp.EngineGoogle, Query: "c"},
		}, func(e search.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			assert.Equal(t, 3, e.Total)
			completed = append(completed, e.Completed)
		})

		assert.ElementsMatch(t, []int{1, 2, 3}, completed)
	})

	t.Run("canceled context skips remaining requests", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		b := &search.Batch{Searcher: &mock.Searcher{}} // nil SearchFn panics if called

		results := b.Run(ctx, []serp.SearchRequest{{Engine: serp.EngineGoogle, Query: "q"}}, nil)

		require.Len(t, results, 1)
		assert.ErrorIs(t, results[0].Err, context.Canceled)
	})
}
