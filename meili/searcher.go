// Package meili serves pagedsearch queries from a Meilisearch index.
package meili

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/pagedsearch"
	"github.com/meilisearch/meilisearch-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// rankingScoreField is the hit field Meilisearch fills when asked to show
// ranking scores.
const rankingScoreField = "_rankingScore"

// Index is the part of meilisearch.IndexManager the searcher needs.
type Index interface {
	SearchWithContext(ctx context.Context, query string, request *meilisearch.SearchRequest) (*meilisearch.SearchResponse, error)
}

// Searcher implements pagedsearch.Searcher over one Meilisearch index.
type Searcher struct {
	index      Index
	primaryKey string
	tracer     trace.Tracer
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithPrimaryKey sets the document field used as result ID. Defaults to "id".
func WithPrimaryKey(field string) Option {
	return func(s *Searcher) {
		s.primaryKey = field
	}
}

// New connects to the Meilisearch server at host and searches indexName.
func New(host, apiKey, indexName string, opts ...Option) *Searcher {
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
	return NewSearcher(client.Index(indexName), opts...)
}

// NewSearcher searches through an existing index handle.
func NewSearcher(index Index, opts ...Option) *Searcher {
	s := &Searcher{
		index:      index,
		primaryKey: "id",
		tracer:     otel.Tracer("pagedsearch-meili"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search implements pagedsearch.Searcher.
func (s *Searcher) Search(ctx context.Context, query string, opts ...pagedsearch.SearchOption) (*pagedsearch.Results, error) {
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, pagedsearch.ErrCanceled
	}

	cfg, err := pagedsearch.NewSearchConfig(opts...)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "meili.search",
		trace.WithAttributes(
			attribute.String("meili.query", query),
			attribute.Int("meili.offset", cfg.Offset),
			attribute.Int("meili.limit", cfg.Limit),
		),
	)
	defer span.End()

	resp, err := s.index.SearchWithContext(ctx, query, buildRequest(query, cfg))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, pagedsearch.ErrTimeout
		}
		if errors.Is(err, context.Canceled) {
			return nil, pagedsearch.ErrCanceled
		}
		return nil, errors.WithSecondaryError(
			pagedsearch.ErrBackendUnavailable,
			errors.Wrapf(err, "Meilisearch search failed"),
		)
	}

	out, err := s.toResponse(resp, cfg, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decoding response failed")
		return nil, err
	}
	if out.QueryTime == nil {
		took := time.Since(startTime).Milliseconds()
		out.QueryTime = &took
	}

	span.SetAttributes(attribute.Int("meili.hits", len(out.Docs)))
	span.SetStatus(codes.Ok, "search succeeded")
	return pagedsearch.New(out), nil
}

func buildRequest(query string, cfg *pagedsearch.SearchConfig) *meilisearch.SearchRequest {
	req := &meilisearch.SearchRequest{
		Query:            query,
		Offset:           int64(cfg.Offset),
		Limit:            int64(cfg.Limit),
		ShowRankingScore: true,
	}

	if len(cfg.Filters) > 0 {
		filters := make([]string, 0, len(cfg.Filters))
		for _, expr := range cfg.Filters {
			if f := convertExpressionToFilter(expr); f != "" {
				filters = append(filters, f)
			}
		}
		if len(filters) > 0 {
			req.Filter = strings.Join(filters, " AND ")
		}
	}

	for _, sf := range cfg.Sort {
		if sf.Field == "_score" {
			continue
		}
		dir := "asc"
		if sf.Desc {
			dir = "desc"
		}
		req.Sort = append(req.Sort, sf.Field+":"+dir)
	}

	if len(cfg.Facets) > 0 {
		req.Facets = cfg.Facets
	}
	return req
}

// toResponse converts a Meilisearch answer into the response wrapped by
// the result set. Hits and the facet distribution are decoded through
// JSON so that any hit representation of the client is accepted.
func (s *Searcher) toResponse(resp *meilisearch.SearchResponse, cfg *pagedsearch.SearchConfig, query string) (pagedsearch.Response[pagedsearch.Result], error) {
	docs := make([]pagedsearch.Result, 0, len(resp.Hits))
	var maxScore *float64
	for i, raw := range resp.Hits {
		fields, err := decodeHit(raw)
		if err != nil {
			return pagedsearch.Response[pagedsearch.Result]{}, errors.Wrapf(err, "decoding hit %d", i)
		}

		score, _ := fields[rankingScoreField].(float64)
		delete(fields, rankingScoreField)
		if maxScore == nil || score > *maxScore {
			maxScore = &score
		}

		docs = append(docs, pagedsearch.Result{
			ID:     idString(fields[s.primaryKey]),
			Score:  score,
			Fields: fields,
		})
	}

	total := resp.EstimatedTotalHits
	if resp.TotalHits > 0 {
		total = resp.TotalHits
	}

	var facets pagedsearch.Facets
	if len(cfg.Facets) > 0 {
		var err error
		facets, err = decodeFacets(resp.FacetDistribution, cfg.Facets)
		if err != nil {
			return pagedsearch.Response[pagedsearch.Result]{}, err
		}
	}

	var queryTime *int64
	if resp.ProcessingTimeMs > 0 {
		took := resp.ProcessingTimeMs
		queryTime = &took
	}

	return pagedsearch.Response[pagedsearch.Result]{
		Docs:      docs,
		Total:     &total,
		Facets:    facets,
		MaxScore:  maxScore,
		QueryTime: queryTime,
		Start:     &cfg.Offset,
		Rows:      &cfg.Limit,
		Query:     query,
	}, nil
}

func decodeHit(raw interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// decodeFacets keeps the requested fields of a facet distribution. A
// requested field the server did not report gets an empty count map.
func decodeFacets(raw interface{}, fields []string) (pagedsearch.Facets, error) {
	var dist map[string]map[string]int64
	if raw != nil {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, errors.Wrap(err, "encoding facet distribution")
		}
		if err := json.Unmarshal(data, &dist); err != nil {
			return nil, errors.Wrap(err, "decoding facet distribution")
		}
	}

	facets := make(pagedsearch.Facets, len(fields))
	for _, field := range fields {
		counts := dist[field]
		if counts == nil {
			counts = map[string]int64{}
		}
		facets[field] = counts
	}
	return facets, nil
}

func idString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", id)
	}
}
