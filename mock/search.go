package mock

import (
	"context"

	"github.com/fwojciec/serp"
)

var (
	_ serp.Searcher  = (*Searcher)(nil)
	_ serp.Navigator = (*Navigator)(nil)
)

// Searcher is a mock implementation of serp.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, req serp.SearchRequest) (*serp.SessionReport, error)
}

func (s *Searcher) Search(ctx context.Context, req serp.SearchRequest) (*serp.SessionReport, error) {
	return s.SearchFn(ctx, req)
}

// Navigator is a mock implementation of serp.Navigator.
type Navigator struct {
	AdvanceFn func(ctx context.Context, r serp.Renderer, rule serp.PaginationRule) (string, bool, error)
}

func (n *Navigator) Advance(ctx context.Context, r serp.Renderer, rule serp.PaginationRule) (string, bool, error) {
	return n.AdvanceFn(ctx, r, rule)
}

