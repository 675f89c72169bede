package meili

import (
	"testing"

	"github.com/letmevibethatforyou/pagedsearch"
	"github.com/stretchr/testify/assert"
)

func TestConvertExpressionToFilter(t *testing.T) {
	tests := []struct {
		name     string
		expr     pagedsearch.Expression
		expected string
	}{
		{"equality", pagedsearch.Eq("status", "active"), `status = "active"`},
		{"equality number", pagedsearch.Eq("year", 2020), "year = 2020"},
		{"equality bool", pagedsearch.Eq("featured", true), "featured = true"},
		{"equality null", pagedsearch.Eq("deleted_at", nil), "deleted_at IS NULL"},
		{"not equal", pagedsearch.Ne("status", "inactive"), `status != "inactive"`},
		{"not equal null", pagedsearch.Ne("deleted_at", nil), "deleted_at IS NOT NULL"},
		{"greater than", pagedsearch.Gt("price", 100), "price > 100"},
		{"greater than or equal", pagedsearch.Gte("price", 49.5), "price >= 49.5"},
		{"less than", pagedsearch.Lt("price", 200), "price < 200"},
		{"less than or equal", pagedsearch.Lte("price", uint(150)), "price <= 150"},
		{"range", pagedsearch.Range("price", 50, 200), "price 50 TO 200"},
		{"range with nil min", pagedsearch.Range("price", nil, 200), "price <= 200"},
		{"range with nil max", pagedsearch.Range("price", 50, nil), "price >= 50"},
		{"open range", pagedsearch.Range("price", nil, nil), ""},
		{"exists", pagedsearch.Exists("description"), "description EXISTS"},
		{"quoted value", pagedsearch.Eq("title", `say "hi"`), `title = "say \"hi\""`},
		{"and", pagedsearch.And(pagedsearch.Eq("status", "active"), pagedsearch.Gt("price", 100)), `(status = "active") AND (price > 100)`},
		{"or", pagedsearch.Or(pagedsearch.Eq("genre", "drama"), pagedsearch.Eq("genre", "comedy")), `(genre = "drama") OR (genre = "comedy")`},
		{"not", pagedsearch.Not(pagedsearch.Exists("recalled")), "NOT (recalled EXISTS)"},
		{"and skips empty", pagedsearch.And(pagedsearch.Range("price", nil, nil), pagedsearch.Eq("a", 1)), "(a = 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, convertExpressionToFilter(tt.expr))
		})
	}
}

func TestBuildRequestJoinsTopLevelFilters(t *testing.T) {
	cfg, err := pagedsearch.NewSearchConfig(
		pagedsearch.Eq("make", "Honda"),
		pagedsearch.Range("year", 2015, 2020),
	)
	assert.NoError(t, err)

	req := buildRequest("civic", cfg)
	assert.Equal(t, `make = "Honda" AND year 2015 TO 2020`, req.Filter)
	assert.Equal(t, "civic", req.Query)
	assert.Nil(t, req.Facets)
}
