package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/pagedsearch"
	"github.com/letmevibethatforyou/pagedsearch/inmemory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCarsHandler(t *testing.T) *Handler {
	t.Helper()
	searcher := inmemory.New()
	cars := []string{
		`{"make": "Honda", "model": "Civic", "color": "red"}`,
		`{"make": "Honda", "model": "Accord", "color": "blue"}`,
		`{"make": "Honda", "model": "Fit", "color": "red"}`,
		`{"make": "Audi", "model": "A4", "color": "red"}`,
		`{"make": "Honda", "model": "Jazz", "color": "green"}`,
	}
	for i, car := range cars {
		require.NoError(t, searcher.AddJSON(string(rune('a'+i)), []byte(car)))
	}
	return NewHandler(searcher)
}

func TestHandleQuery(t *testing.T) {
	h := newCarsHandler(t)

	var event QueryEvent
	require.NoError(t, json.Unmarshal([]byte(`{
		"query": "honda",
		"limit": 2,
		"page": 2,
		"facets": ["color"]
	}`), &event))

	page, err := h.HandleQuery(context.Background(), event)
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(4), *page.Total)
	assert.Equal(t, 2, page.Offset)
	assert.Equal(t, 2, page.PerPage)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Nil(t, page.NextPage)
	require.NotNil(t, page.PreviousPage)
	assert.Equal(t, 1, *page.PreviousPage)
	assert.Equal(t, map[string]int64{"red": 2, "blue": 1, "green": 1}, page.Facets["color"])
}

func TestHandleQueryDefaults(t *testing.T) {
	h := newCarsHandler(t)

	page, err := h.HandleQuery(context.Background(), QueryEvent{Filters: map[string]string{"color": "red"}})
	require.NoError(t, err)

	assert.Len(t, page.Items, 3)
	assert.Equal(t, pagedsearch.DefaultLimit, page.PerPage)
	assert.Equal(t, 1, page.TotalPages)
	assert.Nil(t, page.NextPage)
	assert.Nil(t, page.PreviousPage)
}

func TestHandleQueryInvalidEvent(t *testing.T) {
	h := newCarsHandler(t)

	for _, event := range []QueryEvent{
		{Limit: -1},
		{Offset: -5},
		{Page: -2},
		{Filters: map[string]string{"": "x"}},
	} {
		_, err := h.HandleQuery(context.Background(), event)
		assert.True(t, errors.Is(err, pagedsearch.ErrInvalidOption), "event %+v: got %v", event, err)
	}
}

func TestHandleQuerySearchError(t *testing.T) {
	h := NewHandler(pagedsearch.SearcherFunc(func(ctx context.Context, query string, opts ...pagedsearch.SearchOption) (*pagedsearch.Results, error) {
		return nil, pagedsearch.ErrBackendUnavailable
	}))

	_, err := h.HandleQuery(context.Background(), QueryEvent{Query: "civic"})
	assert.True(t, errors.Is(err, pagedsearch.ErrBackendUnavailable))
}

func TestHandleQueryUnpagedResponse(t *testing.T) {
	h := NewHandler(pagedsearch.SearcherFunc(func(ctx context.Context, query string, opts ...pagedsearch.SearchOption) (*pagedsearch.Results, error) {
		return pagedsearch.New(pagedsearch.Response[pagedsearch.Result]{Query: query}), nil
	}))

	_, err := h.HandleQuery(context.Background(), QueryEvent{Query: "civic"})
	assert.True(t, errors.Is(err, pagedsearch.ErrInvalidPageSize), "got %v", err)
}
