package regression

import (
	"encoding/binary"
	"math"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/mat"
)

// InterceptLabel names the constant column of every design matrix.
const InterceptLabel = "Intercept"

// termEncoding remembers how a term was turned into design columns.
type termEncoding struct {
	term      Term
	reference string   // categorical only
	levels    []string // categorical only, non-reference levels in column order
	offset    int      // first design column of the term
}

func (te termEncoding) width() int {
	if te.term.Kind == CategoricalTerm {
		return len(te.levels)
	}
	return 1
}

// DesignMatrix is the numeric form of a (table, spec) pair.
// It is never modified after Build returns it, and callers must not modify
// X, Y or Columns either. A Model keeps its own copy of the encoding.
type DesignMatrix struct {
	X         *mat.Dense    // n×p, intercept first
	Y         *mat.VecDense // response
	Columns   []string      // labels of the columns of X
	Response  string
	encodings []termEncoding
}

// Dims returns the number of observations and of design columns.
func (dm *DesignMatrix) Dims() (n, p int) {
	return dm.X.Dims()
}

// Levels returns the sorted levels of a categorical term, reference first.
func (dm *DesignMatrix) Levels(term string) []string {
	for _, te := range dm.encodings {
		if te.term.Name == term && te.term.Kind == CategoricalTerm {
			return append([]string{te.reference}, te.levels...)
		}
	}
	return nil
}

// encoding returns a copy of the column labels and term encodings without
// the data, enough to encode new rows.
func (dm *DesignMatrix) encoding() *DesignMatrix {
	out := &DesignMatrix{
		Columns:   append([]string(nil), dm.Columns...),
		Response:  dm.Response,
		encodings: make([]termEncoding, len(dm.encodings)),
	}
	for i, te := range dm.encodings {
		te.levels = append([]string(nil), te.levels...)
		out.encodings[i] = te
	}
	return out
}

// Fingerprint hashes the column labels and matrix contents. Two builds of
// the same table and specification always share a fingerprint.
func (dm *DesignMatrix) Fingerprint() uint64 {
	d := xxhash.New()
	for _, c := range dm.Columns {
		_, _ = d.WriteString(c)
		_, _ = d.Write([]byte{0})
	}
	var buf [8]byte
	n, p := dm.X.Dims()
	for i := 0; i < n; i++ {
		for _, v := range dm.X.RawRowView(i)[:p] {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			_, _ = d.Write(buf[:])
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(dm.Y.AtVec(i)))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// encodeRow fills dst (length p) with the design columns of row.
func (dm *DesignMatrix) encodeRow(row Row, dst []float64) error {
	dst[0] = 1
	for _, te := range dm.encodings {
		v, ok := row[te.term.Name]
		if !ok || v.Kind() == Missing {
			return ErrInvalidArgument
		}
		if te.term.Kind == NumericTerm {
			f, ok := v.Float()
			if !ok || !isFinite(f) {
				return ErrInvalidArgument
			}
			dst[te.offset] = f
			continue
		}
		level := v.String()
		known := level == te.reference
		for j, l := range te.levels {
			if l == level {
				dst[te.offset+j] = 1
				known = true
			} else {
				dst[te.offset+j] = 0
			}
		}
		if !known {
			return ErrInvalidArgument
		}
	}
	return nil
}

// Build validates table against spec and encodes it into a design matrix.
//
// Categorical levels are sorted ascending, numerically when every level
// parses as a number and lexicographically otherwise; the first sorted level
// is the reference unless the term names one. Each other level becomes a
// 0/1 column labelled <term>_<level>.
func Build(table Table, spec Spec) (*DesignMatrix, error) {
	if err := validateSpec(table, spec); err != nil {
		return nil, err
	}

	n := table.Len()
	y := make([]float64, n)
	for i, row := range table.Rows {
		f, err := numericCell(row, spec.Response, i)
		if err != nil {
			return nil, err
		}
		y[i] = f
	}

	columns := []string{InterceptLabel}
	encodings := make([]termEncoding, 0, len(spec.Terms))
	for _, term := range spec.Terms {
		te := termEncoding{term: term, offset: len(columns)}
		switch term.Kind {
		case NumericTerm:
			if err := checkNumericTerm(table, term.Name); err != nil {
				return nil, err
			}
			columns = append(columns, term.Name)
		case CategoricalTerm:
			levels, err := observedLevels(table, term.Name)
			if err != nil {
				return nil, err
			}
			if len(levels) < 2 {
				return nil, &RankDeficiencyError{Term: term.Name, Reason: "only one level observed: " + strconv.Quote(levels[0])}
			}
			te.reference = levels[0]
			if term.Reference != "" {
				te.reference = term.Reference
			}
			found := false
			for _, l := range levels {
				if l == te.reference {
					found = true
					continue
				}
				te.levels = append(te.levels, l)
				columns = append(columns, term.Name+"_"+l)
			}
			if !found {
				return nil, newSchemaError(term.Name, -1, "reference level %q not observed", te.reference)
			}
		default:
			return nil, newSchemaError(term.Name, -1, "unknown term kind %d", term.Kind)
		}
		encodings = append(encodings, te)
	}

	dm := &DesignMatrix{
		X:         mat.NewDense(n, len(columns), nil),
		Y:         mat.NewVecDense(n, y),
		Columns:   columns,
		Response:  spec.Response,
		encodings: encodings,
	}
	for i, row := range table.Rows {
		if err := dm.encodeRow(row, dm.X.RawRowView(i)); err != nil {
			return nil, newSchemaError(spec.Response, i, "cannot encode row: %v", err)
		}
	}

	if err := checkDistinctColumns(dm); err != nil {
		return nil, err
	}
	return dm, nil
}

func validateSpec(table Table, spec Spec) error {
	if spec.Response == "" {
		return newSchemaError("", -1, "no response column")
	}
	if len(spec.Terms) == 0 {
		return newSchemaError(spec.Response, -1, "no predictor terms")
	}
	known := make(map[string]struct{}, len(table.Columns))
	for _, c := range table.Columns {
		known[c] = struct{}{}
	}
	if _, ok := known[spec.Response]; !ok {
		return newSchemaError(spec.Response, -1, "response column not in table")
	}
	seen := make(map[string]struct{}, len(spec.Terms))
	for _, term := range spec.Terms {
		if _, ok := known[term.Name]; !ok {
			return newSchemaError(term.Name, -1, "predictor column not in table")
		}
		if term.Name == spec.Response {
			return newSchemaError(term.Name, -1, "response used as predictor")
		}
		if _, dup := seen[term.Name]; dup {
			return newSchemaError(term.Name, -1, "term listed twice")
		}
		seen[term.Name] = struct{}{}
	}
	if table.Len() == 0 {
		return newSchemaError(spec.Response, -1, "table has no rows")
	}
	return nil
}

func numericCell(row Row, column string, i int) (float64, error) {
	v, ok := row[column]
	if !ok || v.Kind() == Missing {
		return 0, newSchemaError(column, i, "missing value")
	}
	f, ok := v.Float()
	if !ok {
		return 0, newSchemaError(column, i, "%s value %q in numeric column", v.Kind(), v.String())
	}
	if !isFinite(f) {
		return 0, newSchemaError(column, i, "non-finite value %v", f)
	}
	return f, nil
}

// checkNumericTerm validates every cell of a numeric predictor and rejects
// a column that is constant across all rows.
func checkNumericTerm(table Table, column string) error {
	first, constant := 0.0, true
	for i, row := range table.Rows {
		f, err := numericCell(row, column, i)
		if err != nil {
			return err
		}
		if i == 0 {
			first = f
		} else if f != first {
			constant = false
		}
	}
	// single-row tables are left to the degrees of freedom check
	if constant && table.Len() > 1 {
		return &RankDeficiencyError{Term: column, Columns: []string{column, InterceptLabel}, Reason: "constant column duplicates the intercept"}
	}
	return nil
}

func observedLevels(table Table, column string) ([]string, error) {
	set := map[string]struct{}{}
	levels := []string{}
	for i, row := range table.Rows {
		v, ok := row[column]
		if !ok || v.Kind() == Missing {
			return nil, newSchemaError(column, i, "missing value")
		}
		level := v.String()
		if _, seen := set[level]; seen {
			continue
		}
		set[level] = struct{}{}
		levels = append(levels, level)
	}
	SortLevels(levels)
	return levels, nil
}

// SortLevels sorts distinct categorical levels in place: numerically when
// every level parses as a finite number, lexicographically otherwise.
func SortLevels(levels []string) {
	values := make(map[string]float64, len(levels))
	allNumeric := true
	for _, l := range levels {
		f, err := strconv.ParseFloat(l, 64)
		if err != nil || !isFinite(f) {
			allNumeric = false
		}
		values[l] = f
	}
	sort.Slice(levels, func(i, j int) bool {
		if allNumeric && values[levels[i]] != values[levels[j]] {
			return values[levels[i]] < values[levels[j]]
		}
		return levels[i] < levels[j]
	})
}

// checkDistinctColumns rejects design matrices holding two identical columns.
func checkDistinctColumns(dm *DesignMatrix) error {
	n, p := dm.X.Dims()
	for a := 1; a < p; a++ {
		for b := a + 1; b < p; b++ {
			same := true
			for i := 0; i < n && same; i++ {
				same = dm.X.At(i, a) == dm.X.At(i, b)
			}
			if same {
				return &RankDeficiencyError{
					Term:    termOfColumn(dm, b),
					Columns: []string{dm.Columns[a], dm.Columns[b]},
					Reason:  "duplicate design columns",
				}
			}
		}
	}
	return nil
}

func termOfColumn(dm *DesignMatrix, col int) string {
	for _, te := range dm.encodings {
		if col >= te.offset && col < te.offset+te.width() {
			return te.term.Name
		}
	}
	return dm.Columns[col]
}
