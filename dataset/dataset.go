// Package dataset loads the heart-rate survey from delimited text, converts
// its imperial measurements to metric units and hands the result to the
// regression engine as an observation table.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	regression "github.com/anyappinc/heartrate"
	"github.com/anyappinc/heartrate/logger"
	"go.uber.org/zap"
)

// DefaultSeparator is the field separator of the survey export.
const DefaultSeparator = ';'

// ErrMissingColumn signals that a schema column is absent from the header.
var ErrMissingColumn = errors.New("missing column")

// missingTokens are cell contents read as "no observation".
var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"null": {},
}

// ColumnKind is how a column is parsed.
type ColumnKind int

const (
	Numeric ColumnKind = iota
	Categorical
)

func (k ColumnKind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "numeric"
}

// Column is one expected column of the input.
type Column struct {
	Name string
	Kind ColumnKind
}

// Schema lists the columns to read. Input columns not listed are ignored.
type Schema struct {
	Columns   []Column
	Separator rune // zero selects DefaultSeparator
}

// HeartRateSchema returns the columns of the survey used by the analysis.
func HeartRateSchema() Schema {
	return Schema{
		Separator: DefaultSeparator,
		Columns: []Column{
			{Name: "Height", Kind: Numeric},
			{Name: "Weight", Kind: Numeric},
			{Name: "Gender", Kind: Categorical},
			{Name: "Smokes", Kind: Categorical},
			{Name: "Activity", Kind: Categorical},
			{Name: "Ran", Kind: Categorical},
			{Name: "Pulse1", Kind: Numeric},
			{Name: "Pulse2", Kind: Numeric},
		},
	}
}

// MissingValueError reports an empty or NA cell.
type MissingValueError struct {
	Column string
	Line   int
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("line %d: missing value in column %q", e.Line, e.Column)
}

// ParseError reports a numeric cell that does not hold a finite number.
type ParseError struct {
	Column string
	Line   int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: column %q: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Frame is a column-oriented, validated copy of the input.
// Methods never modify a Frame; Derive returns a new one.
type Frame struct {
	names       []string
	kinds       map[string]ColumnKind
	numeric     map[string][]float64
	categorical map[string][]string
	rows        int
}

func newFrame() *Frame {
	return &Frame{
		kinds:       map[string]ColumnKind{},
		numeric:     map[string][]float64{},
		categorical: map[string][]string{},
	}
}

// LoadFile reads the file at path with Load.
func LoadFile(path string, schema Schema) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	frame, err := Load(f, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return frame, nil
}

// Load parses delimited text with a header row. Every schema column must be
// present in the header and every one of its cells must hold a value:
// missing data is rejected, never imputed.
func Load(r io.Reader, schema Schema) (*Frame, error) {
	sep := schema.Separator
	if sep == 0 {
		sep = DefaultSeparator
	}
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input")
		}
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	frame := newFrame()
	positions := make([]int, len(schema.Columns))
	for i, col := range schema.Columns {
		pos, ok := index[col.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col.Name)
		}
		positions[i] = pos
		frame.names = append(frame.names, col.Name)
		frame.kinds[col.Name] = col.Kind
		if col.Kind == Categorical {
			frame.categorical[col.Name] = []string{}
		} else {
			frame.numeric[col.Name] = []float64{}
		}
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		for i, col := range schema.Columns {
			cell := strings.TrimSpace(record[positions[i]])
			if _, missing := missingTokens[strings.ToLower(cell)]; missing {
				return nil, &MissingValueError{Column: col.Name, Line: line}
			}
			if col.Kind == Categorical {
				frame.categorical[col.Name] = append(frame.categorical[col.Name], cell)
				continue
			}
			f, err := parseNumeric(cell, sep)
			if err != nil {
				return nil, &ParseError{Column: col.Name, Line: line, Value: cell, Err: err}
			}
			frame.numeric[col.Name] = append(frame.numeric[col.Name], f)
		}
		frame.rows++
	}

	logger.Debug("loaded dataset", zap.Int("rows", frame.rows), zap.Strings("columns", frame.names))
	return frame, nil
}

// parseNumeric accepts a decimal comma when the separator is not a comma.
func parseNumeric(s string, sep rune) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && sep != ',' && strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		f, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	}
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("non-finite value")
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows }

// Columns returns the column names in schema order, derived columns last.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.names...)
}

// Kind returns the kind of a column.
func (f *Frame) Kind(name string) (ColumnKind, bool) {
	k, ok := f.kinds[name]
	return k, ok
}

// Numeric returns a copy of a numeric column.
func (f *Frame) Numeric(name string) ([]float64, bool) {
	v, ok := f.numeric[name]
	return append([]float64(nil), v...), ok
}

// Categorical returns a copy of a categorical column.
func (f *Frame) Categorical(name string) ([]string, bool) {
	v, ok := f.categorical[name]
	return append([]string(nil), v...), ok
}

// WithNumeric returns a copy of f with an added or replaced numeric column.
func (f *Frame) WithNumeric(name string, values []float64) (*Frame, error) {
	if len(values) != f.rows {
		return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(values), f.rows)
	}
	out := f.clone()
	if _, ok := out.kinds[name]; !ok {
		out.names = append(out.names, name)
	}
	delete(out.categorical, name)
	out.kinds[name] = Numeric
	out.numeric[name] = append([]float64(nil), values...)
	return out, nil
}

func (f *Frame) clone() *Frame {
	out := newFrame()
	out.names = append(out.names, f.names...)
	out.rows = f.rows
	for k, v := range f.kinds {
		out.kinds[k] = v
	}
	// column slices are never written in place, so sharing them is safe
	for k, v := range f.numeric {
		out.numeric[k] = v
	}
	for k, v := range f.categorical {
		out.categorical[k] = v
	}
	return out
}

// Table converts f to an observation table, keeping row order.
func (f *Frame) Table() regression.Table {
	t := regression.Table{Columns: f.Columns(), Rows: make([]regression.Row, f.rows)}
	for i := range t.Rows {
		row := make(regression.Row, len(f.names))
		for _, name := range f.names {
			if f.kinds[name] == Categorical {
				row[name] = regression.Level(f.categorical[name][i])
			} else {
				row[name] = regression.Num(f.numeric[name][i])
			}
		}
		t.Rows[i] = row
	}
	return t
}
