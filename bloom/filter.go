// Package bloom provides search request deduplication using Bloom filters.
package bloom

import (
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/serp"
)

// Filter wraps a Bloom filter keyed by engine and normalized query.
// Filter is not safe for concurrent use.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected requests
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// Key returns the deduplication key of a request: the engine and the query
// lowercased with whitespace collapsed.
func Key(req serp.SearchRequest) string {
	return string(req.Engine) + "\x00" + strings.Join(strings.Fields(strings.ToLower(req.Query)), " ")
}

// Add adds a request to the filter.
func (f *Filter) Add(req serp.SearchRequest) {
	f.f.AddString(Key(req))
}

// Test returns true if the request might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(req serp.SearchRequest) bool {
	return f.f.TestString(Key(req))
}

// TestAndAdd reports whether the request might already be in the filter
// and adds it.
func (f *Filter) TestAndAdd(req serp.SearchRequest) bool {
	return f.f.TestAndAddString(Key(req))
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

// Dedupe returns reqs without the requests the filter has already seen,
// keeping first occurrences in order, and the number dropped. Every kept
// request is added to the filter.
func (f *Filter) Dedupe(reqs []serp.SearchRequest) ([]serp.SearchRequest, int) {
	out := make([]serp.SearchRequest, 0, len(reqs))
	for _, req := range reqs {
		if f.TestAndAdd(req) {
			continue
		}
		out = append(out, req)
	}
	return out, len(reqs) - len(out)
}
