package pagedsearch

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paged(docs []string, total int64, start, rows int) *ResultSet[string] {
	return New(Response[string]{
		Docs:  docs,
		Total: &total,
		Start: &start,
		Rows:  &rows,
	})
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name     string
		rs       *ResultSet[string]
		current  int
		pages    int
		next     *int
		previous *int
	}{
		{
			name:    "single page",
			rs:      paged([]string{"A", "B"}, 2, 0, 10),
			current: 1,
			pages:   1,
		},
		{
			name:    "no matches still has one page",
			rs:      paged([]string{}, 0, 0, 10),
			current: 1,
			pages:   1,
		},
		{
			name:     "middle page",
			rs:       paged(nil, 25, 10, 10),
			current:  2,
			pages:    3,
			next:     ptr(3),
			previous: ptr(1),
		},
		{
			name:     "last page",
			rs:       paged(nil, 25, 20, 10),
			current:  3,
			pages:    3,
			previous: ptr(2),
		},
		{
			name:    "first of many",
			rs:      paged(nil, 100, 0, 25),
			current: 1,
			pages:   4,
			next:    ptr(2),
		},
		{
			name:     "unaligned offset",
			rs:       paged(nil, 30, 15, 10),
			current:  2,
			pages:    3,
			next:     ptr(3),
			previous: ptr(1),
		},
		{
			name:    "exact multiple",
			rs:      paged(nil, 20, 0, 10),
			current: 1,
			pages:   2,
			next:    ptr(2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, err := tt.rs.CurrentPage()
			require.NoError(t, err)
			assert.Equal(t, tt.current, current)

			pages, err := tt.rs.TotalPages()
			require.NoError(t, err)
			assert.Equal(t, tt.pages, pages)

			next, err := tt.rs.NextPage()
			require.NoError(t, err)
			assert.Equal(t, tt.next, next)

			prev, err := tt.rs.PreviousPage()
			require.NoError(t, err)
			assert.Equal(t, tt.previous, prev)
		})
	}
}

func TestPaginationProperties(t *testing.T) {
	for _, rows := range []int{1, 3, 10, 25} {
		for _, total := range []int64{0, 1, 9, 10, 11, 99, 250} {
			for start := 0; start <= int(total); start += rows {
				rs := paged(nil, total, start, rows)

				current, err := rs.CurrentPage()
				require.NoError(t, err)
				assert.Equal(t, start/rows+1, current)

				pages, err := rs.TotalPages()
				require.NoError(t, err)
				assert.GreaterOrEqual(t, pages, 1)

				next, err := rs.NextPage()
				require.NoError(t, err)
				if current == pages {
					assert.Nil(t, next)
				} else {
					require.NotNil(t, next)
					assert.Equal(t, current+1, *next)
				}

				prev, err := rs.PreviousPage()
				require.NoError(t, err)
				if current == 1 {
					assert.Nil(t, prev)
				} else {
					require.NotNil(t, prev)
					assert.Equal(t, current-1, *prev)
				}
			}
		}
	}
}

func TestPaginationInvalidPageSize(t *testing.T) {
	for name, rs := range map[string]*ResultSet[string]{
		"missing rows":  New(Response[string]{Total: ptr(int64(5)), Start: ptr(0)}),
		"zero rows":     paged(nil, 5, 0, 0),
		"negative rows": paged(nil, 5, 0, -10),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := rs.CurrentPage()
			assert.True(t, errors.Is(err, ErrInvalidPageSize), "got %v", err)

			_, err = rs.TotalPages()
			assert.True(t, errors.Is(err, ErrInvalidPageSize), "got %v", err)

			_, err = rs.NextPage()
			assert.True(t, errors.Is(err, ErrInvalidPageSize), "got %v", err)

			_, err = rs.PreviousPage()
			assert.True(t, errors.Is(err, ErrInvalidPageSize), "got %v", err)

			_, err = rs.Page()
			assert.True(t, errors.Is(err, ErrInvalidPageSize), "got %v", err)
		})
	}
}

func TestPaginationMissingOffsetCountsAsZero(t *testing.T) {
	rs := New(Response[string]{Total: ptr(int64(25)), Rows: ptr(10)})

	current, err := rs.CurrentPage()
	require.NoError(t, err)
	assert.Equal(t, 1, current)
}

func TestPaginationNegativeOffset(t *testing.T) {
	rs := paged(nil, 25, -1, 10)

	_, err := rs.CurrentPage()
	assert.True(t, errors.Is(err, ErrInvalidOffset), "got %v", err)
}

func TestPaginationMissingTotal(t *testing.T) {
	rs := New(Response[string]{Start: ptr(10), Rows: ptr(10)})

	current, err := rs.CurrentPage()
	require.NoError(t, err)
	assert.Equal(t, 2, current)

	prev, err := rs.PreviousPage()
	require.NoError(t, err)
	assert.Equal(t, ptr(1), prev)

	_, err = rs.TotalPages()
	assert.True(t, errors.Is(err, ErrMissingTotal), "got %v", err)

	_, err = rs.NextPage()
	assert.True(t, errors.Is(err, ErrMissingTotal), "got %v", err)
}

func TestNextOffset(t *testing.T) {
	next, err := paged(nil, 25, 10, 10).NextOffset()
	require.NoError(t, err)
	assert.Equal(t, ptr(20), next)

	next, err = paged(nil, 25, 15, 10).NextOffset()
	require.NoError(t, err)
	assert.Equal(t, ptr(20), next)

	next, err = paged(nil, 25, 20, 10).NextOffset()
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestPage(t *testing.T) {
	rs := New(Response[string]{
		Docs:      []string{"k", "l"},
		Total:     ptr(int64(25)),
		Facets:    Facets{"color": {"red": 2}},
		MaxScore:  ptr(0.5),
		QueryTime: ptr(int64(3)),
		Start:     ptr(10),
		Rows:      ptr(10),
		Query:     "cars",
	})

	page, err := rs.Page()
	require.NoError(t, err)

	assert.Equal(t, Page[string]{
		Items:        []string{"k", "l"},
		Total:        ptr(int64(25)),
		Facets:       Facets{"color": {"red": 2}},
		MaxScore:     ptr(0.5),
		QueryTime:    ptr(int64(3)),
		Query:        "cars",
		Offset:       10,
		PerPage:      10,
		CurrentPage:  2,
		TotalPages:   3,
		NextPage:     ptr(3),
		PreviousPage: ptr(1),
		NextOffset:   ptr(20),
	}, page)
}

func TestPageWithoutDocs(t *testing.T) {
	page, err := paged(nil, 0, 0, 10).Page()
	require.NoError(t, err)

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)
	assert.Nil(t, page.NextPage)
	assert.Nil(t, page.PreviousPage)
}

func TestPaginationLargeValues(t *testing.T) {
	t.Run("total at int64 limit", func(t *testing.T) {
		rs := paged(nil, math.MaxInt64, 0, 10)

		pages, err := rs.TotalPages()
		require.NoError(t, err)
		assert.Equal(t, 922337203685477581, pages)

		next, err := rs.NextPage()
		require.NoError(t, err)
		assert.Equal(t, ptr(2), next)

		offset, err := rs.NextOffset()
		require.NoError(t, err)
		assert.Equal(t, ptr(10), offset)
	})

	t.Run("last addressable page", func(t *testing.T) {
		rs := paged(nil, math.MaxInt64, math.MaxInt-1, 1)

		current, err := rs.CurrentPage()
		require.NoError(t, err)
		assert.Equal(t, math.MaxInt, current)

		next, err := rs.NextPage()
		require.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("offset without a page number", func(t *testing.T) {
		_, err := paged(nil, 10, math.MaxInt, 1).CurrentPage()
		assert.True(t, errors.Is(err, ErrInvalidOffset), "got %v", err)
	})

	t.Run("next offset beyond int", func(t *testing.T) {
		rs := paged(nil, 25, math.MaxInt-5, 10)

		next, err := rs.NextPage()
		require.NoError(t, err)
		require.NotNil(t, next)

		offset, err := rs.NextOffset()
		require.NoError(t, err)
		assert.Nil(t, offset)
	})
}

func TestNextPagePastLastPage(t *testing.T) {
	rs := paged(nil, 25, 40, 10)

	current, err := rs.CurrentPage()
	require.NoError(t, err)
	assert.Equal(t, 5, current)

	next, err := rs.NextPage()
	require.NoError(t, err)
	assert.Equal(t, ptr(6), next)

	offset, err := rs.NextOffset()
	require.NoError(t, err)
	assert.Equal(t, ptr(50), offset)
}
