// Package inmemory serves searches from documents held in memory. It is
// used for fixtures and for data loaded from DynamoDB.
package inmemory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/pagedsearch"
)

// Document represents a JSON document held by the searcher.
type Document struct {
	ID     string
	Fields map[string]interface{}
}

// Searcher implements pagedsearch.Searcher over an in-memory document list.
// It is safe for concurrent use.
type Searcher struct {
	mu        sync.RWMutex
	documents []Document
	idIndex   map[string]int // document ID -> position in documents
}

// New creates an empty searcher.
func New() *Searcher {
	return &Searcher{
		documents: make([]Document, 0),
		idIndex:   make(map[string]int),
	}
}

// AddDocument stores doc, replacing any document with the same ID.
func (s *Searcher) AddDocument(doc Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, exists := s.idIndex[doc.ID]; exists {
		s.documents[idx] = doc
		return
	}
	s.idIndex[doc.ID] = len(s.documents)
	s.documents = append(s.documents, doc)
}

// AddJSON parses jsonData as an object and stores it under id.
func (s *Searcher) AddJSON(id string, jsonData []byte) error {
	var fields map[string]interface{}
	if err := json.Unmarshal(jsonData, &fields); err != nil {
		return errors.Wrap(err, "failed to unmarshal JSON")
	}

	s.AddDocument(Document{ID: id, Fields: fields})
	return nil
}

// RemoveDocument deletes the document with id and reports whether it existed.
func (s *Searcher) RemoveDocument(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, exists := s.idIndex[id]
	if !exists {
		return false
	}

	s.documents = append(s.documents[:idx], s.documents[idx+1:]...)
	delete(s.idIndex, id)
	for i := idx; i < len(s.documents); i++ {
		s.idIndex[s.documents[i].ID] = i
	}
	return true
}

// Clear removes all documents.
func (s *Searcher) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = make([]Document, 0)
	s.idIndex = make(map[string]int)
}

// Size returns the number of stored documents.
func (s *Searcher) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

type hit struct {
	doc   Document
	score float64
}

// Search implements pagedsearch.Searcher. Facet counts cover every match,
// not only the returned page.
func (s *Searcher) Search(ctx context.Context, query string, opts ...pagedsearch.SearchOption) (*pagedsearch.Results, error) {
	startTime := time.Now()

	if ctx.Err() != nil {
		return nil, pagedsearch.ErrCanceled
	}

	cfg, err := pagedsearch.NewSearchConfig(opts...)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []hit
	for _, doc := range s.documents {
		if ctx.Err() != nil {
			return nil, pagedsearch.ErrCanceled
		}
		if !matchesAll(doc, cfg.Filters) {
			continue
		}
		if score := scoreDocument(doc, query); score > 0 {
			hits = append(hits, hit{doc: doc, score: score})
		}
	}

	sortHits(hits, cfg.Sort)

	start := min(cfg.Offset, len(hits))
	end := start + min(cfg.Limit, len(hits)-start)

	docs := make([]pagedsearch.Result, 0, end-start)
	var maxScore *float64
	for _, h := range hits[start:end] {
		if maxScore == nil || h.score > *maxScore {
			score := h.score
			maxScore = &score
		}
		docs = append(docs, pagedsearch.Result{
			ID:     h.doc.ID,
			Score:  h.score,
			Fields: h.doc.Fields,
		})
	}

	total := int64(len(hits))
	took := time.Since(startTime).Milliseconds()
	return pagedsearch.New(pagedsearch.Response[pagedsearch.Result]{
		Docs:      docs,
		Total:     &total,
		Facets:    countFacets(hits, cfg.Facets),
		MaxScore:  maxScore,
		QueryTime: &took,
		Start:     &cfg.Offset,
		Rows:      &cfg.Limit,
		Query:     query,
	}), nil
}

// countFacets counts the values of fields over hits. Array values count
// once per element. It returns nil when no facets were requested.
func countFacets(hits []hit, fields []string) pagedsearch.Facets {
	if len(fields) == 0 {
		return nil
	}

	facets := make(pagedsearch.Facets, len(fields))
	for _, field := range fields {
		counts := make(map[string]int64)
		for _, h := range hits {
			switch v := h.doc.Fields[field].(type) {
			case nil:
			case []interface{}:
				for _, item := range v {
					counts[fmt.Sprintf("%v", item)]++
				}
			default:
				counts[fmt.Sprintf("%v", v)]++
			}
		}
		facets[field] = counts
	}
	return facets
}

// scoreDocument gives one point per field containing a query term, boosted
// by half when every term matched. An empty query matches everything with
// score 1.
func scoreDocument(doc Document, query string) float64 {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return 1.0
	}

	score := 0.0
	matchedTerms := 0
	for _, term := range terms {
		matched := false
		for _, value := range doc.Fields {
			if containsTerm(value, term) {
				matched = true
				score += 1.0
			}
		}
		if matched {
			matchedTerms++
		}
	}

	if matchedTerms == 0 {
		return 0
	}
	if matchedTerms == len(terms) {
		score *= 1.5
	}
	return score
}

// containsTerm reports whether value, or any nested value, contains term.
func containsTerm(value interface{}, term string) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(strings.ToLower(v), term)
	case []interface{}:
		for _, item := range v {
			if containsTerm(item, term) {
				return true
			}
		}
		return false
	case map[string]interface{}:
		for _, item := range v {
			if containsTerm(item, term) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(strings.ToLower(fmt.Sprintf("%v", v)), term)
	}
}

// sortHits orders hits by sortFields, or by score descending when none
// are given. The pseudo-field "_score" sorts by relevance.
func sortHits(hits []hit, sortFields []pagedsearch.SortField) {
	if len(sortFields) == 0 {
		sort.SliceStable(hits, func(i, j int) bool {
			return hits[i].score > hits[j].score
		})
		return
	}

	sort.SliceStable(hits, func(i, j int) bool {
		for _, sf := range sortFields {
			var c int
			if sf.Field == "_score" {
				c = compareValues(hits[i].score, hits[j].score)
			} else {
				c = compareValues(hits[i].doc.Fields[sf.Field], hits[j].doc.Fields[sf.Field])
			}
			if c == 0 {
				continue
			}
			if sf.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
