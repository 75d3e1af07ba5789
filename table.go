package regression

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind tells how a table cell was observed.
type ValueKind int

const (
	// Missing is the kind of the zero Value.
	Missing ValueKind = iota
	Numeric
	Categorical
)

func (k ValueKind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Categorical:
		return "categorical"
	default:
		return "missing"
	}
}

// Value is a single cell of an observation table.
type Value struct {
	kind  ValueKind
	num   float64
	level string
}

// Num returns a numeric cell.
func Num(f float64) Value { return Value{kind: Numeric, num: f} }

// Level returns a categorical cell.
func Level(s string) Value { return Value{kind: Categorical, level: s} }

func (v Value) Kind() ValueKind { return v.kind }

// Float returns the numeric content of v; ok is false for categorical and missing cells.
func (v Value) Float() (f float64, ok bool) {
	return v.num, v.kind == Numeric
}

// String returns the level of a categorical cell, or the shortest decimal
// representation of a numeric one. Categorical terms accept numeric codes
// through this representation.
func (v Value) String() string {
	switch v.kind {
	case Numeric:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case Categorical:
		return v.level
	default:
		return ""
	}
}

// Row maps column names to cells.
type Row map[string]Value

// Table is an ordered, read-only sequence of rows sharing one schema.
// Row order is meaningful: the Durbin-Watson statistic is computed over it.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of observations.
func (t Table) Len() int { return len(t.Rows) }

// TermKind tags how a predictor enters the design matrix.
type TermKind int

const (
	NumericTerm TermKind = iota
	CategoricalTerm
)

func (k TermKind) String() string {
	if k == CategoricalTerm {
		return "categorical"
	}
	return "numeric"
}

// Term is one predictor of a model specification.
type Term struct {
	Name string
	Kind TermKind
	// Reference optionally names the categorical level dropped from the
	// design matrix. Empty selects the first level in sorted order.
	Reference string
}

// Spec is a model specification: the response column and its ordered predictors.
type Spec struct {
	Response string
	Terms    []Term
}

// N returns a numeric term.
func N(name string) Term { return Term{Name: name, Kind: NumericTerm} }

// C returns a categorical term using the default reference level.
func C(name string) Term { return Term{Name: name, Kind: CategoricalTerm} }

// NewSpec returns the specification response ~ terms.
func NewSpec(response string, terms ...Term) Spec {
	return Spec{Response: response, Terms: terms}
}

// String renders the specification in formula notation, for display only.
func (s Spec) String() string {
	parts := make([]string, len(s.Terms))
	for i, t := range s.Terms {
		switch {
		case t.Kind == CategoricalTerm && t.Reference != "":
			parts[i] = "C(" + t.Name + ", Treatment(" + strconv.Quote(t.Reference) + "))"
		case t.Kind == CategoricalTerm:
			parts[i] = "C(" + t.Name + ")"
		default:
			parts[i] = t.Name
		}
	}
	if len(parts) == 0 {
		return s.Response + " ~ 1"
	}
	return s.Response + " ~ " + strings.Join(parts, " + ")
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
