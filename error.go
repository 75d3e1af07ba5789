package regression

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchema matches every *SchemaError.
	ErrSchema = &SchemaError{}
	// ErrRankDeficiency matches every *RankDeficiencyError.
	ErrRankDeficiency = &RankDeficiencyError{}
	// ErrSingularMatrix matches every *SingularMatrixError.
	ErrSingularMatrix = &SingularMatrixError{}
	// ErrInsufficientData matches every *InsufficientDataError.
	ErrInsufficientData = &InsufficientDataError{}
	// ErrInvalidArgument signals that any of given arguments to call the function was invalid.
	ErrInvalidArgument = errors.New("invalid argument")
)

// SchemaError reports a response or predictor column that is absent, has the
// wrong kind, or holds a missing or non-finite value.
type SchemaError struct {
	Column string
	Row    int // -1 when the problem is not tied to a single row
	Reason string
}

func (e SchemaError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("schema: column %q, row %d: %s", e.Column, e.Row, e.Reason)
	}
	return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
}

func (e SchemaError) Is(err error) bool {
	_, ok := err.(*SchemaError)
	return ok
}

func newSchemaError(column string, row int, format string, args ...interface{}) *SchemaError {
	return &SchemaError{Column: column, Row: row, Reason: fmt.Sprintf(format, args...)}
}

// RankDeficiencyError reports an encoding that cannot produce linearly
// independent design columns, e.g. a categorical term with one observed level.
type RankDeficiencyError struct {
	Term    string
	Columns []string
	Reason  string
}

func (e RankDeficiencyError) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("rank deficiency: term %q (%s): %s", e.Term, strings.Join(e.Columns, ", "), e.Reason)
	}
	return fmt.Sprintf("rank deficiency: term %q: %s", e.Term, e.Reason)
}

func (e RankDeficiencyError) Is(err error) bool {
	_, ok := err.(*RankDeficiencyError)
	return ok
}

// SingularMatrixError reports a design matrix whose numerical rank, measured
// against the solver tolerance, is below its column count.
type SingularMatrixError struct {
	Rank      int
	Columns   int
	Condition float64 // ratio of the largest to the smallest singular value
	Hint      *ConditionErrorHint
}

func (e SingularMatrixError) Error() string {
	msg := fmt.Sprintf("singular design matrix: rank %d < %d columns (condition number %g)", e.Rank, e.Columns, e.Condition)
	if e.Hint != nil && len(e.Hint.Columns) > 0 {
		msg += "; weakest columns: " + strings.Join(e.Hint.Columns, ", ")
	}
	return msg
}

func (e SingularMatrixError) Is(err error) bool {
	_, ok := err.(*SingularMatrixError)
	return ok
}

// ConditionErrorHint points at the design columns carrying most of the weight
// of the right singular vector of the smallest singular value.
type ConditionErrorHint struct {
	Indexes []int    // design column indexes, heaviest first
	Columns []string // labels of Indexes, when known
}

// InsufficientDataError reports a run with no residual degrees of freedom
// or too few residuals for the diagnostics.
type InsufficientDataError struct {
	Observations int
	Parameters   int
	Reason       string
}

func (e InsufficientDataError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("insufficient data: %d observations: %s", e.Observations, e.Reason)
	}
	return fmt.Sprintf("insufficient data: %d observations for %d parameters", e.Observations, e.Parameters)
}

func (e InsufficientDataError) Is(err error) bool {
	_, ok := err.(*InsufficientDataError)
	return ok
}
