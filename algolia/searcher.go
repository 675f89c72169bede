package algolia

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/pagedsearch"
)

// Searcher implements pagedsearch.Searcher over one Algolia index.
type Searcher struct {
	client    *Client
	indexName string
}

// NewSearcher creates a new Algolia searcher for the specified index.
func NewSearcher(client *Client, indexName string) *Searcher {
	return &Searcher{
		client:    client,
		indexName: indexName,
	}
}

// Search implements pagedsearch.Searcher. Algolia pages by page number,
// so the offset is rounded down to a multiple of the limit and the
// returned result set reports the offset actually served.
func (s *Searcher) Search(ctx context.Context, query string, opts ...pagedsearch.SearchOption) (*pagedsearch.Results, error) {
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, pagedsearch.ErrCanceled
	}

	// Empty queries are allowed: Algolia returns every record.
	cfg, err := pagedsearch.NewSearchConfig(opts...)
	if err != nil {
		return nil, err
	}

	res, err := s.client.query(ctx, s.indexName, query, buildSearchParams(cfg))
	if err != nil {
		var ce errClient
		if errors.As(err, &ce) {
			return nil, errors.WithSecondaryError(
				pagedsearch.ErrBackendUnavailable,
				errors.Wrapf(err, "failed to get Algolia client"),
			)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pagedsearch.ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			return nil, pagedsearch.ErrCanceled
		}
		return nil, errors.WithSecondaryError(
			pagedsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "Algolia search failed"),
		)
	}

	return pagedsearch.New(toResponse(res, cfg, query, time.Since(startTime))), nil
}

// toResponse converts an Algolia answer into the response wrapped by the
// result set.
func toResponse(res search.QueryRes, cfg *pagedsearch.SearchConfig, query string, took time.Duration) pagedsearch.Response[pagedsearch.Result] {
	total := int64(res.NbHits)
	start := (cfg.Offset / cfg.Limit) * cfg.Limit
	rows := cfg.Limit
	queryTime := took.Milliseconds()

	docs := make([]pagedsearch.Result, 0, len(res.Hits))
	var maxScore *float64
	for i, hit := range res.Hits {
		objectID, _ := hit["objectID"].(string)

		// Algolia does not expose relevance scores; rank order stands in.
		score := calculateScore(len(res.Hits), i)
		if maxScore == nil || score > *maxScore {
			maxScore = &score
		}

		docs = append(docs, pagedsearch.Result{
			ID:     objectID,
			Score:  score,
			Fields: hit,
		})
	}

	var facets pagedsearch.Facets
	if len(cfg.Facets) > 0 {
		facets = make(pagedsearch.Facets, len(cfg.Facets))
		for _, field := range cfg.Facets {
			counts := make(map[string]int64, len(res.Facets[field]))
			for value, n := range res.Facets[field] {
				counts[value] = int64(n)
			}
			facets[field] = counts
		}
	}

	return pagedsearch.Response[pagedsearch.Result]{
		Docs:      docs,
		Total:     &total,
		Facets:    facets,
		MaxScore:  maxScore,
		QueryTime: &queryTime,
		Start:     &start,
		Rows:      &rows,
		Query:     query,
	}
}

// buildSearchParams converts a search configuration to Algolia search parameters.
func buildSearchParams(cfg *pagedsearch.SearchConfig) []interface{} {
	params := []interface{}{opt.HitsPerPage(cfg.Limit)}
	if cfg.Offset > 0 {
		params = append(params, opt.Page(cfg.Offset/cfg.Limit))
	}

	if len(cfg.Filters) > 0 {
		filters := make([]string, 0, len(cfg.Filters))
		for _, expr := range cfg.Filters {
			if f := convertExpressionToFilter(expr); f != "" {
				filters = append(filters, f)
			}
		}
		if len(filters) > 0 {
			params = append(params, opt.Filters(strings.Join(filters, " AND ")))
		}
	}

	if len(cfg.Facets) > 0 {
		params = append(params, opt.Facets(cfg.Facets...))
	}

	// Custom sorting needs replica indices with their own ranking, so
	// cfg.Sort is not forwarded.
	return params
}

// calculateScore scores a hit by its rank: the first of n hits scores 1.
func calculateScore(totalResults, position int) float64 {
	if totalResults == 0 {
		return 1.0
	}
	return float64(totalResults-position) / float64(totalResults)
}

// convertExpressionToFilter renders expr in Algolia filter syntax. It
// returns "" for expressions Algolia cannot express.
func convertExpressionToFilter(expr pagedsearch.Expression) string {
	switch e := expr.(type) {
	case pagedsearch.AndExpr:
		return joinFilters(e.Exprs, " AND ")
	case pagedsearch.OrExpr:
		return joinFilters(e.Exprs, " OR ")
	case pagedsearch.NotExpr:
		inner := convertExpressionToFilter(e.Inner)
		if inner == "" {
			return ""
		}
		return "NOT (" + inner + ")"
	case pagedsearch.CompareExpr:
		return convertCompare(e)
	case pagedsearch.RangeExpr:
		var parts []string
		if e.Min != nil {
			parts = append(parts, fmt.Sprintf("%s >= %s", escapeField(e.Field), escapeNumericValue(e.Min)))
		}
		if e.Max != nil {
			parts = append(parts, fmt.Sprintf("%s <= %s", escapeField(e.Field), escapeNumericValue(e.Max)))
		}
		return strings.Join(parts, " AND ")
	default:
		return ""
	}
}

func joinFilters(exprs []pagedsearch.Expression, sep string) string {
	filters := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if f := convertExpressionToFilter(e); f != "" {
			filters = append(filters, "("+f+")")
		}
	}
	return strings.Join(filters, sep)
}

var numericOps = map[pagedsearch.Operator]string{
	pagedsearch.OpGt:  ">",
	pagedsearch.OpGte: ">=",
	pagedsearch.OpLt:  "<",
	pagedsearch.OpLte: "<=",
}

func convertCompare(e pagedsearch.CompareExpr) string {
	field := escapeField(e.Field)
	switch e.Op {
	case pagedsearch.OpEq:
		return fmt.Sprintf("%s:%s", field, escapeValue(e.Value))
	case pagedsearch.OpNe:
		return fmt.Sprintf("NOT %s:%s", field, escapeValue(e.Value))
	case pagedsearch.OpExists:
		return fmt.Sprintf("%s:*", field)
	}
	if op, ok := numericOps[e.Op]; ok {
		return fmt.Sprintf("%s %s %s", field, op, escapeNumericValue(e.Value))
	}
	return ""
}

// escapeField quotes field names containing filter syntax characters.
func escapeField(field string) string {
	if strings.ContainsAny(field, " :-()") {
		return fmt.Sprintf(`"%s"`, field)
	}
	return field
}

// escapeValue quotes a facet value.
func escapeValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	case bool:
		return `"` + strconv.FormatBool(v) + `"`
	default:
		return fmt.Sprintf(`"%v"`, v)
	}
}

// escapeNumericValue renders a numeric comparison operand, falling back
// to a quoted value for non-numbers.
func escapeNumericValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "0"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprintf("%v", v)
	}

	str := fmt.Sprintf("%v", value)
	if _, err := strconv.ParseFloat(str, 64); err == nil {
		return str
	}
	return escapeValue(value)
}
