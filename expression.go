package pagedsearch

// Expression is a composable filter. Every Expression is also a
// SearchOption that appends itself to SearchConfig.Filters.
type Expression interface {
	SearchOption
	// expr marks filter expressions among options.
	expr()
}

// filter provides the expr marker and the Apply behaviour shared by all
// expressions.
type filter struct{}

func (filter) expr() {}

// AndExpr matches when every inner expression matches.
type AndExpr struct {
	filter
	Exprs []Expression
}

// Apply implements SearchOption.
func (a AndExpr) Apply(cfg *SearchConfig) { cfg.Filters = append(cfg.Filters, a) }

// And combines exprs with AND.
func And(exprs ...Expression) Expression {
	return AndExpr{Exprs: exprs}
}

// OrExpr matches when at least one inner expression matches.
type OrExpr struct {
	filter
	Exprs []Expression
}

// Apply implements SearchOption.
func (o OrExpr) Apply(cfg *SearchConfig) { cfg.Filters = append(cfg.Filters, o) }

// Or combines exprs with OR.
func Or(exprs ...Expression) Expression {
	return OrExpr{Exprs: exprs}
}

// NotExpr negates Inner.
type NotExpr struct {
	filter
	Inner Expression
}

// Apply implements SearchOption.
func (n NotExpr) Apply(cfg *SearchConfig) { cfg.Filters = append(cfg.Filters, n) }

// Not negates expr.
func Not(expr Expression) Expression {
	return NotExpr{Inner: expr}
}

// CompareExpr compares a document field with a value. For OpExists the
// value is ignored.
type CompareExpr struct {
	filter
	Field string
	Op    Operator
	Value interface{}
}

// Apply implements SearchOption.
func (c CompareExpr) Apply(cfg *SearchConfig) { cfg.Filters = append(cfg.Filters, c) }

func compare(field string, op Operator, value interface{}) Expression {
	return CompareExpr{Field: field, Op: op, Value: value}
}

// Eq matches documents whose field equals value.
func Eq(field string, value interface{}) Expression { return compare(field, OpEq, value) }

// Ne matches documents whose field differs from value.
func Ne(field string, value interface{}) Expression { return compare(field, OpNe, value) }

// Gt matches documents whose field is greater than value.
func Gt(field string, value interface{}) Expression { return compare(field, OpGt, value) }

// Gte matches documents whose field is greater than or equal to value.
func Gte(field string, value interface{}) Expression { return compare(field, OpGte, value) }

// Lt matches documents whose field is less than value.
func Lt(field string, value interface{}) Expression { return compare(field, OpLt, value) }

// Lte matches documents whose field is less than or equal to value.
func Lte(field string, value interface{}) Expression { return compare(field, OpLte, value) }

// Exists matches documents that carry field.
func Exists(field string) Expression { return compare(field, OpExists, nil) }

// RangeExpr matches documents whose field lies in [Min, Max]. A nil bound
// is open.
type RangeExpr struct {
	filter
	Field string
	Min   interface{}
	Max   interface{}
}

// Apply implements SearchOption.
func (r RangeExpr) Apply(cfg *SearchConfig) { cfg.Filters = append(cfg.Filters, r) }

// Range matches documents whose field lies between min and max inclusive.
func Range(field string, min, max interface{}) Expression {
	return RangeExpr{Field: field, Min: min, Max: max}
}
