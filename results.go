package pagedsearch

import (
	"cmp"
	"iter"
	"slices"
)

// Result represents a single raw search hit.
type Result struct {
	// ID is the unique identifier of the result.
	ID string `json:"id"`

	// Score represents the relevance score of this result.
	Score float64 `json:"score"`

	// Fields contains the document fields as key-value pairs.
	Fields map[string]interface{} `json:"fields"`
}

// Facets maps a facet field to the number of matches per field value.
type Facets map[string]map[string]int64

// FacetCount is one value of a facet field and how many matches carry it.
type FacetCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// Values returns the counts of field ordered by count, highest first.
// Ties are ordered by value.
func (f Facets) Values(field string) []FacetCount {
	counts, ok := f[field]
	if !ok {
		return nil
	}

	values := make([]FacetCount, 0, len(counts))
	for v, c := range counts {
		values = append(values, FacetCount{Value: v, Count: c})
	}
	slices.SortFunc(values, func(a, b FacetCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return values
}

// Response is the raw payload a backend hands over to be wrapped.
// Every field is optional: a nil slice, map or pointer means the backend
// did not report that value.
type Response[D any] struct {
	// Docs are the documents of the current page, in backend order.
	Docs []D

	// Total is the number of matches across all pages.
	Total *int64

	// Facets is the facet breakdown, when facets were requested.
	Facets Facets

	// MaxScore is the highest relevance score among Docs.
	MaxScore *float64

	// QueryTime is the elapsed search time. The unit is chosen by the
	// producer; the backends in this module report milliseconds.
	QueryTime *int64

	// Start is the zero-based offset of the first document in Docs.
	Start *int

	// Rows is the requested page size.
	Rows *int

	// Query is the original query string for reference.
	Query string
}

// ResultSet is a read-only view over one search response. It exposes the
// response fields, derives pagination from Start, Rows and Total, and
// behaves as a sequence of its documents.
//
// A ResultSet is never modified after New, so it is safe for concurrent
// readers.
type ResultSet[D any] struct {
	resp Response[D]
}

// Results is the result set every Searcher returns.
type Results = ResultSet[Result]

// New wraps resp. The documents slice is kept by reference.
func New[D any](resp Response[D]) *ResultSet[D] {
	return &ResultSet[D]{resp: resp}
}

// Results returns the documents of the page. ok is false when the
// response carried no document list.
func (rs *ResultSet[D]) Results() ([]D, bool) {
	return rs.resp.Docs, rs.resp.Docs != nil
}

// Total returns the number of matches across all pages.
func (rs *ResultSet[D]) Total() (int64, bool) {
	return deref(rs.resp.Total)
}

// Facets returns the facet breakdown as supplied by the backend.
func (rs *ResultSet[D]) Facets() (Facets, bool) {
	return rs.resp.Facets, rs.resp.Facets != nil
}

// MaxScore returns the highest relevance score of the page.
func (rs *ResultSet[D]) MaxScore() (float64, bool) {
	return deref(rs.resp.MaxScore)
}

// QueryTime returns the elapsed search time.
func (rs *ResultSet[D]) QueryTime() (int64, bool) {
	return deref(rs.resp.QueryTime)
}

// Offset returns the offset of the first document of the page.
func (rs *ResultSet[D]) Offset() (int, bool) {
	return deref(rs.resp.Start)
}

// PerPage returns the requested page size.
func (rs *ResultSet[D]) PerPage() (int, bool) {
	return deref(rs.resp.Rows)
}

// Query returns the query string that produced the response.
func (rs *ResultSet[D]) Query() string {
	return rs.resp.Query
}

// Len returns the number of documents in the page.
func (rs *ResultSet[D]) Len() int {
	return len(rs.resp.Docs)
}

// IsEmpty reports whether the page holds no documents.
func (rs *ResultSet[D]) IsEmpty() bool {
	return len(rs.resp.Docs) == 0
}

// At returns the i-th document of the page. Like slice indexing, it
// panics when i is out of range.
func (rs *ResultSet[D]) At(i int) D {
	return rs.resp.Docs[i]
}

// All iterates over the documents with their position in the page.
func (rs *ResultSet[D]) All() iter.Seq2[int, D] {
	return slices.All(rs.resp.Docs)
}

// Values iterates over the documents.
func (rs *ResultSet[D]) Values() iter.Seq[D] {
	return slices.Values(rs.resp.Docs)
}

func deref[T any](p *T) (T, bool) {
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}
