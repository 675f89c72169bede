package pagedsearch

import (
	"math"

	"github.com/cockroachdb/errors"
)

// DefaultLimit is the page size used when no limit is given.
const DefaultLimit = 10

// SearchOption represents a search configuration option.
type SearchOption interface {
	Apply(*SearchConfig)
}

// SearchConfig holds all search configuration parameters.
type SearchConfig struct {
	// Limit is the page size.
	Limit int

	// Offset is the number of matches to skip.
	Offset int

	// Sort specifies sorting configuration.
	Sort []SortField

	// Filters contains filter expressions to apply.
	Filters []Expression

	// Facets lists the fields to compute facet counts for.
	Facets []string

	// page is the 1-based page requested with WithPage, 0 when unused.
	page int
}

// SortField represents a field to sort by.
type SortField struct {
	Field string
	Desc  bool
}

// NewSearchConfig applies opts over the defaults and validates the result.
func NewSearchConfig(opts ...SearchOption) (*SearchConfig, error) {
	cfg := &SearchConfig{}
	for _, opt := range opts {
		opt.Apply(cfg)
	}

	if cfg.Limit < 0 {
		return nil, errors.Wrapf(ErrInvalidOption, "limit=%d", cfg.Limit)
	}
	if cfg.Limit == 0 {
		cfg.Limit = DefaultLimit
	}

	if cfg.page < 0 {
		return nil, errors.Wrapf(ErrInvalidOption, "page=%d", cfg.page)
	}
	if cfg.page > 0 {
		if cfg.page-1 > math.MaxInt/cfg.Limit {
			return nil, errors.Wrapf(ErrInvalidOption, "page=%d exceeds the addressable offset for limit=%d", cfg.page, cfg.Limit)
		}
		cfg.Offset = (cfg.page - 1) * cfg.Limit
	}

	if cfg.Offset < 0 {
		return nil, errors.Wrapf(ErrInvalidOption, "offset=%d", cfg.Offset)
	}
	return cfg, nil
}

// optionFunc is a function that implements SearchOption.
type optionFunc func(*SearchConfig)

// Apply implements the SearchOption interface for optionFunc.
func (f optionFunc) Apply(cfg *SearchConfig) {
	f(cfg)
}

// WithLimit sets the maximum number of results to return.
func WithLimit(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Limit = n
	})
}

// WithOffset sets the number of results to skip for pagination.
func WithOffset(n int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Offset = n
	})
}

// WithPage requests the 1-based page of perPage results. It takes
// precedence over WithOffset.
func WithPage(page, perPage int) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		if page < 1 {
			cfg.page = -1
			return
		}
		cfg.page = page
		cfg.Limit = perPage
	})
}

// WithSort adds a sort field to the search.
func WithSort(field string, desc bool) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Sort = append(cfg.Sort, SortField{Field: field, Desc: desc})
	})
}

// WithFacets asks the backend for value counts of fields.
func WithFacets(fields ...string) SearchOption {
	return optionFunc(func(cfg *SearchConfig) {
		cfg.Facets = append(cfg.Facets, fields...)
	})
}
