package pagedsearch

import "context"

// Searcher runs a query against a backend and wraps the backend response.
type Searcher interface {
	// Search executes query with the given options and returns one page.
	Search(ctx context.Context, query string, opts ...SearchOption) (*Results, error)
}

// SearcherFunc adapts a function to the Searcher interface, in the manner
// of http.HandlerFunc.
type SearcherFunc func(context.Context, string, ...SearchOption) (*Results, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string, opts ...SearchOption) (*Results, error) {
	return f(ctx, query, opts...)
}
