package pagedsearch

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// Map converts every document of rs with fn and returns a result set that
// keeps all of rs's metadata. It stops at the first conversion error.
func Map[D, T any](rs *ResultSet[D], fn func(D) (T, error)) (*ResultSet[T], error) {
	var docs []T
	if rs.resp.Docs != nil {
		docs = make([]T, 0, len(rs.resp.Docs))
		for i, d := range rs.resp.Docs {
			v, err := fn(d)
			if err != nil {
				return nil, errors.Wrapf(err, "mapping document %d", i)
			}
			docs = append(docs, v)
		}
	}

	return New(Response[T]{
		Docs:      docs,
		Total:     rs.resp.Total,
		Facets:    rs.resp.Facets,
		MaxScore:  rs.resp.MaxScore,
		QueryTime: rs.resp.QueryTime,
		Start:     rs.resp.Start,
		Rows:      rs.resp.Rows,
		Query:     rs.resp.Query,
	}), nil
}

// Decode turns raw hits into records of type T by decoding each hit's
// fields as JSON.
func Decode[T any](rs *Results) (*ResultSet[T], error) {
	return Map(rs, func(r Result) (T, error) {
		var v T
		data, err := json.Marshal(r.Fields)
		if err != nil {
			return v, errors.Wrapf(err, "encoding fields of %q", r.ID)
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return v, errors.Wrapf(err, "decoding %q", r.ID)
		}
		return v, nil
	})
}
