package meili

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/letmevibethatforyou/pagedsearch"
)

var compareOps = map[pagedsearch.Operator]string{
	pagedsearch.OpEq:  "=",
	pagedsearch.OpNe:  "!=",
	pagedsearch.OpGt:  ">",
	pagedsearch.OpGte: ">=",
	pagedsearch.OpLt:  "<",
	pagedsearch.OpLte: "<=",
}

// convertExpressionToFilter renders expr in Meilisearch filter syntax. It
// returns "" for expressions that constrain nothing.
func convertExpressionToFilter(expr pagedsearch.Expression) string {
	switch e := expr.(type) {
	case pagedsearch.AndExpr:
		return join(e.Exprs, " AND ")
	case pagedsearch.OrExpr:
		return join(e.Exprs, " OR ")
	case pagedsearch.NotExpr:
		inner := convertExpressionToFilter(e.Inner)
		if inner == "" {
			return ""
		}
		return "NOT (" + inner + ")"
	case pagedsearch.CompareExpr:
		if e.Op == pagedsearch.OpExists {
			return e.Field + " EXISTS"
		}
		if e.Value == nil {
			switch e.Op {
			case pagedsearch.OpEq:
				return e.Field + " IS NULL"
			case pagedsearch.OpNe:
				return e.Field + " IS NOT NULL"
			}
		}
		op, ok := compareOps[e.Op]
		if !ok {
			return ""
		}
		return fmt.Sprintf("%s %s %s", e.Field, op, literal(e.Value))
	case pagedsearch.RangeExpr:
		switch {
		case e.Min != nil && e.Max != nil:
			return fmt.Sprintf("%s %s TO %s", e.Field, literal(e.Min), literal(e.Max))
		case e.Min != nil:
			return fmt.Sprintf("%s >= %s", e.Field, literal(e.Min))
		case e.Max != nil:
			return fmt.Sprintf("%s <= %s", e.Field, literal(e.Max))
		}
		return ""
	default:
		return ""
	}
}

func join(exprs []pagedsearch.Expression, sep string) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if f := convertExpressionToFilter(e); f != "" {
			parts = append(parts, "("+f+")")
		}
	}
	return strings.Join(parts, sep)
}

// literal renders numbers bare and everything else as a quoted string.
func literal(v interface{}) string {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", n)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(n)
	case string:
		return `"` + strings.ReplaceAll(n, `"`, `\"`) + `"`
	default:
		return `"` + strings.ReplaceAll(fmt.Sprintf("%v", n), `"`, `\"`) + `"`
	}
}
