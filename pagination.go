package pagedsearch

import (
	"math"

	"github.com/cockroachdb/errors"
)

// pageSize returns the page size, failing when it is missing or not positive.
func (rs *ResultSet[D]) pageSize() (int, error) {
	rows, ok := rs.PerPage()
	if !ok {
		return 0, errors.Wrap(ErrInvalidPageSize, "rows not set")
	}
	if rows <= 0 {
		return 0, errors.Wrapf(ErrInvalidPageSize, "rows=%d", rows)
	}
	return rows, nil
}

// CurrentPage returns the 1-based number of the page holding Offset.
// A missing offset counts as 0.
func (rs *ResultSet[D]) CurrentPage() (int, error) {
	rows, err := rs.pageSize()
	if err != nil {
		return 0, err
	}

	start, _ := rs.Offset()
	if start < 0 {
		return 0, errors.Wrapf(ErrInvalidOffset, "start=%d", start)
	}
	if start/rows == math.MaxInt {
		return 0, errors.Wrapf(ErrInvalidOffset, "start=%d has no page number", start)
	}
	return start/rows + 1, nil
}

// TotalPages returns the number of pages needed for Total matches.
// There is always at least one page, even without matches.
func (rs *ResultSet[D]) TotalPages() (int, error) {
	rows, err := rs.pageSize()
	if err != nil {
		return 0, err
	}

	total, ok := rs.Total()
	if !ok {
		return 0, ErrMissingTotal
	}

	pages := total / int64(rows)
	if total%int64(rows) != 0 {
		pages++
	}
	if pages <= 0 {
		return 1, nil
	}
	return int(pages), nil
}

// NextPage returns the number of the page after the current one, or nil
// when the current page is the last. An offset past the last page still
// yields current+1.
func (rs *ResultSet[D]) NextPage() (*int, error) {
	current, err := rs.CurrentPage()
	if err != nil {
		return nil, err
	}
	pages, err := rs.TotalPages()
	if err != nil {
		return nil, err
	}

	if current == pages || current == math.MaxInt {
		return nil, nil
	}
	next := current + 1
	return &next, nil
}

// PreviousPage returns the number of the page before the current one, or
// nil on the first page.
func (rs *ResultSet[D]) PreviousPage() (*int, error) {
	current, err := rs.CurrentPage()
	if err != nil {
		return nil, err
	}

	if current == 1 {
		return nil, nil
	}
	prev := current - 1
	return &prev, nil
}

// NextOffset returns the offset to request for the next page, or nil when
// there is none or it does not fit in an int.
func (rs *ResultSet[D]) NextOffset() (*int, error) {
	next, err := rs.NextPage()
	if err != nil || next == nil {
		return nil, err
	}

	rows, _ := rs.PerPage()
	if *next-1 > math.MaxInt/rows {
		return nil, nil
	}
	offset := (*next - 1) * rows
	return &offset, nil
}
