package pagedsearch

import "github.com/cockroachdb/errors"

// Operator represents comparison operators.
type Operator string

const (
	OpEq     Operator = "eq"
	OpNe     Operator = "ne"
	OpGt     Operator = "gt"
	OpGte    Operator = "gte"
	OpLt     Operator = "lt"
	OpLte    Operator = "lte"
	OpExists Operator = "exists"
)

// ErrorCode identifies the kind of a search or pagination failure.
type ErrorCode int

const (
	// ErrCodeEmptyQuery is returned when an empty query is provided.
	ErrCodeEmptyQuery ErrorCode = iota + 1000

	// ErrCodeInvalidOption is returned when an invalid option is provided.
	ErrCodeInvalidOption

	// ErrCodeInvalidExpression is returned when an invalid expression is provided.
	ErrCodeInvalidExpression

	// ErrCodeTimeout is returned when a search operation times out.
	ErrCodeTimeout

	// ErrCodeCanceled is returned when a search operation is canceled.
	ErrCodeCanceled

	// ErrCodeNotImplemented is returned when a feature is not implemented.
	ErrCodeNotImplemented

	// ErrCodeBackendUnavailable is returned when the search backend is unavailable.
	ErrCodeBackendUnavailable

	// ErrCodeInvalidPageSize is returned when paging is derived without a positive page size.
	ErrCodeInvalidPageSize

	// ErrCodeInvalidOffset is returned when paging is derived from a negative offset.
	ErrCodeInvalidOffset

	// ErrCodeMissingTotal is returned when paging needs a total the response did not carry.
	ErrCodeMissingTotal
)

// String implements fmt.Stringer.
func (e ErrorCode) String() string {
	switch e {
	case ErrCodeEmptyQuery:
		return "empty query"
	case ErrCodeInvalidOption:
		return "invalid option"
	case ErrCodeInvalidExpression:
		return "invalid expression"
	case ErrCodeTimeout:
		return "operation timed out"
	case ErrCodeCanceled:
		return "operation canceled"
	case ErrCodeNotImplemented:
		return "not implemented"
	case ErrCodeBackendUnavailable:
		return "backend unavailable"
	case ErrCodeInvalidPageSize:
		return "invalid page size"
	case ErrCodeInvalidOffset:
		return "invalid offset"
	case ErrCodeMissingTotal:
		return "missing total"
	default:
		return "unknown error"
	}
}

// newErrorWithCode creates a new error with a code and message.
func newErrorWithCode(code ErrorCode, msg string) error {
	err := errors.New(msg)
	return errors.WithSecondaryError(err, errors.Newf("code: %d", int(code)))
}

var (
	ErrEmptyQuery         = newErrorWithCode(ErrCodeEmptyQuery, "pagedsearch: empty query")
	ErrInvalidOption      = newErrorWithCode(ErrCodeInvalidOption, "pagedsearch: invalid option")
	ErrInvalidExpression  = newErrorWithCode(ErrCodeInvalidExpression, "pagedsearch: invalid expression")
	ErrTimeout            = newErrorWithCode(ErrCodeTimeout, "pagedsearch: operation timed out")
	ErrCanceled           = newErrorWithCode(ErrCodeCanceled, "pagedsearch: operation canceled")
	ErrNotImplemented     = newErrorWithCode(ErrCodeNotImplemented, "pagedsearch: not implemented")
	ErrBackendUnavailable = newErrorWithCode(ErrCodeBackendUnavailable, "pagedsearch: backend unavailable")
	ErrInvalidPageSize    = newErrorWithCode(ErrCodeInvalidPageSize, "pagedsearch: page size must be positive")
	ErrInvalidOffset      = newErrorWithCode(ErrCodeInvalidOffset, "pagedsearch: offset must not be negative")
	ErrMissingTotal       = newErrorWithCode(ErrCodeMissingTotal, "pagedsearch: response has no total")
)
