package pagedsearch

// Page is a serializable snapshot of a ResultSet, with every derived
// pagination value resolved.
type Page[D any] struct {
	Items        []D      `json:"items"`
	Total        *int64   `json:"total,omitempty"`
	Facets       Facets   `json:"facets,omitempty"`
	MaxScore     *float64 `json:"max_score,omitempty"`
	QueryTime    *int64   `json:"query_time_ms,omitempty"`
	Query        string   `json:"query"`
	Offset       int      `json:"offset"`
	PerPage      int      `json:"per_page"`
	CurrentPage  int      `json:"current_page"`
	TotalPages   int      `json:"total_pages"`
	NextPage     *int     `json:"next_page,omitempty"`
	PreviousPage *int     `json:"previous_page,omitempty"`
	NextOffset   *int     `json:"next_offset,omitempty"`
}

// Page resolves rs into a Page. It fails when the pagination values
// cannot be derived.
func (rs *ResultSet[D]) Page() (Page[D], error) {
	current, err := rs.CurrentPage()
	if err != nil {
		return Page[D]{}, err
	}
	pages, err := rs.TotalPages()
	if err != nil {
		return Page[D]{}, err
	}
	next, err := rs.NextPage()
	if err != nil {
		return Page[D]{}, err
	}
	prev, err := rs.PreviousPage()
	if err != nil {
		return Page[D]{}, err
	}
	nextOffset, err := rs.NextOffset()
	if err != nil {
		return Page[D]{}, err
	}

	items := rs.resp.Docs
	if items == nil {
		items = make([]D, 0)
	}
	offset, _ := rs.Offset()
	perPage, _ := rs.PerPage()

	return Page[D]{
		Items:        items,
		Total:        rs.resp.Total,
		Facets:       rs.resp.Facets,
		MaxScore:     rs.resp.MaxScore,
		QueryTime:    rs.resp.QueryTime,
		Query:        rs.resp.Query,
		Offset:       offset,
		PerPage:      perPage,
		CurrentPage:  current,
		TotalPages:   pages,
		NextPage:     next,
		PreviousPage: prev,
		NextOffset:   nextOffset,
	}, nil
}
