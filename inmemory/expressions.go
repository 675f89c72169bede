package inmemory

import (
	"fmt"
	"strings"

	"github.com/letmevibethatforyou/pagedsearch"
)

// matchesAll reports whether doc satisfies every filter.
func matchesAll(doc Document, filters []pagedsearch.Expression) bool {
	for _, f := range filters {
		if !matches(doc, f) {
			return false
		}
	}
	return true
}

// matches evaluates expr against doc. Unknown expression types match.
func matches(doc Document, expr pagedsearch.Expression) bool {
	switch e := expr.(type) {
	case pagedsearch.AndExpr:
		return matchesAll(doc, e.Exprs)
	case pagedsearch.OrExpr:
		for _, inner := range e.Exprs {
			if matches(doc, inner) {
				return true
			}
		}
		return false
	case pagedsearch.NotExpr:
		return !matches(doc, e.Inner)
	case pagedsearch.CompareExpr:
		return matchesCompare(doc, e)
	case pagedsearch.RangeExpr:
		v, ok := doc.Fields[e.Field]
		if !ok {
			return false
		}
		if e.Min != nil && compareValues(v, e.Min) < 0 {
			return false
		}
		return e.Max == nil || compareValues(v, e.Max) <= 0
	default:
		return true
	}
}

func matchesCompare(doc Document, e pagedsearch.CompareExpr) bool {
	v, ok := doc.Fields[e.Field]

	switch e.Op {
	case pagedsearch.OpExists:
		return ok
	case pagedsearch.OpEq:
		if !ok {
			return e.Value == nil
		}
		return equalValues(v, e.Value)
	case pagedsearch.OpNe:
		if !ok {
			return e.Value != nil
		}
		return !equalValues(v, e.Value)
	}

	if !ok {
		return false
	}
	c := compareValues(v, e.Value)
	switch e.Op {
	case pagedsearch.OpGt:
		return c > 0
	case pagedsearch.OpGte:
		return c >= 0
	case pagedsearch.OpLt:
		return c < 0
	case pagedsearch.OpLte:
		return c <= 0
	default:
		return true
	}
}

// equalValues compares numerically when both sides are numbers and by
// string form otherwise.
func equalValues(v1, v2 interface{}) bool {
	if v1 == nil || v2 == nil {
		return v1 == v2
	}
	if f1, ok := toFloat64(v1); ok {
		if f2, ok := toFloat64(v2); ok {
			return f1 == f2
		}
	}
	return fmt.Sprintf("%v", v1) == fmt.Sprintf("%v", v2)
}

// compareValues orders nil first, then numbers numerically, then
// everything else by string form.
func compareValues(v1, v2 interface{}) int {
	switch {
	case v1 == nil && v2 == nil:
		return 0
	case v1 == nil:
		return -1
	case v2 == nil:
		return 1
	}

	if f1, ok := toFloat64(v1); ok {
		if f2, ok := toFloat64(v2); ok {
			switch {
			case f1 < f2:
				return -1
			case f1 > f2:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprintf("%v", v1), fmt.Sprintf("%v", v2))
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
