package regression

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Solution is the output of the least-squares solver.
type Solution struct {
	Method         Method
	Beta           []float64 // one coefficient per design column
	Fitted         []float64
	Residuals      []float64 // y - Fitted, in row order
	Rank           int
	SingularValues []float64 // singular values of X, descending

	// (XᵀX)⁻¹ taken from the decomposition that produced Beta
	unscaledCov *mat.SymDense
}

// Dims returns the number of observations and of coefficients.
func (s *Solution) Dims() (n, p int) {
	return len(s.Residuals), len(s.Beta)
}

// Condition returns the ratio of the largest to the smallest singular value of X.
func (s *Solution) Condition() float64 {
	if len(s.SingularValues) == 0 {
		return math.NaN()
	}
	return conditionOf(s.SingularValues)
}

// UnscaledCovariance returns a copy of (XᵀX)⁻¹.
func (s *Solution) UnscaledCovariance() *mat.SymDense {
	c := mat.NewSymDense(s.unscaledCov.SymmetricDim(), nil)
	c.CopySym(s.unscaledCov)
	return c
}

func conditionOf(values []float64) float64 {
	smallest := values[len(values)-1]
	if smallest == 0 {
		return math.Inf(1)
	}
	return values[0] / smallest
}

// Solve computes the ordinary least-squares coefficients of y on the columns
// of x. It never inverts XᵀX: the QR method back-substitutes against R and
// the SVD method applies VΣ⁻¹Uᵀ. It fails with *SingularMatrixError when the
// numerical rank of x, counting singular values above tolerance times the
// largest one, is below its column count.
func Solve(x mat.Matrix, y mat.Vector, opts ...Option) (*Solution, error) {
	o := newOptions(opts)
	n, p := x.Dims()
	if y.Len() != n {
		return nil, fmt.Errorf("%w: %d responses for %d design rows", ErrInvalidArgument, y.Len(), n)
	}
	if n == 0 || p == 0 {
		return nil, fmt.Errorf("%w: empty design matrix", ErrInvalidArgument)
	}

	var (
		sol *Solution
		err error
	)
	switch o.method {
	case MethodSVD:
		sol, err = solveSVD(x, y, o.tolerance)
	default:
		sol, err = solveQR(x, y, o.tolerance)
	}
	if err != nil {
		return nil, err
	}

	fitted := mat.NewVecDense(n, nil)
	fitted.MulVec(x, mat.NewVecDense(p, sol.Beta))
	sol.Fitted = fitted.RawVector().Data
	sol.Residuals = make([]float64, n)
	for i := range sol.Residuals {
		sol.Residuals[i] = y.AtVec(i) - sol.Fitted[i]
	}
	return sol, nil
}

// rankOf counts the singular values above tol relative to the largest one.
func rankOf(values []float64, tol float64) int {
	if len(values) == 0 || values[0] == 0 {
		return 0
	}
	var rank int
	for _, v := range values {
		if v > tol*values[0] {
			rank++
		}
	}
	return rank
}

// singularError builds the error for a rank-deficient design. v holds the
// right singular vectors as columns, ordered like values.
func singularError(values []float64, v *mat.Dense, rank, p int) *SingularMatrixError {
	e := &SingularMatrixError{Rank: rank, Columns: p, Condition: math.Inf(1)}
	if len(values) == p {
		e.Condition = conditionOf(values)
	}
	if v == nil {
		return e
	}
	_, c := v.Dims()
	if c < p {
		// fewer singular vectors than columns: the null direction is unknown
		return e
	}
	weights := mat.Col(nil, p-1, v)
	idx := make([]int, 0, p)
	for j, w := range weights {
		if math.Abs(w) > 0.1 {
			idx = append(idx, j)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(weights[idx[a]]) > math.Abs(weights[idx[b]])
	})
	e.Hint = &ConditionErrorHint{Indexes: idx}
	return e
}

func solveQR(x mat.Matrix, y mat.Vector, tol float64) (*Solution, error) {
	n, p := x.Dims()
	if n < p {
		return nil, &SingularMatrixError{Rank: n, Columns: p, Condition: math.Inf(1)}
	}

	qr, qrQ, qrR, qTY := new(mat.QR), new(mat.Dense), new(mat.Dense), new(mat.VecDense)
	qr.Factorize(x)
	qr.QTo(qrQ) // orthogonal Q
	qr.RTo(qrR) // upper trapezoidal R
	qTY.MulVec(qrQ.T(), y)

	// X and its R factor share singular values and right singular vectors.
	r := qrR.Slice(0, p, 0, p)
	var svd mat.SVD
	if ok := svd.Factorize(r, mat.SVDThin); !ok {
		return nil, errors.New("regression: singular value decomposition of R failed")
	}
	values := svd.Values(nil)
	if rank := rankOf(values, tol); rank < p {
		var v mat.Dense
		svd.VTo(&v)
		return nil, singularError(values, &v, rank, p)
	}

	// R is upper triangular, so the coefficients follow by back substitution.
	beta := make([]float64, p)
	for i := p - 1; i >= 0; i-- {
		beta[i] = qTY.AtVec(i)
		for j := i + 1; j < p; j++ {
			beta[i] -= beta[j] * qrR.At(i, j)
		}
		beta[i] /= qrR.At(i, i)
	}

	// (XᵀX)⁻¹ = R⁻¹R⁻ᵀ
	data := make([]float64, p*p)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			data[i*p+j] = qrR.At(i, j)
		}
	}
	rInv := new(mat.TriDense)
	var cond mat.Condition // near-singular R still yields a usable inverse
	if err := rInv.InverseTri(mat.NewTriDense(p, mat.Upper, data)); err != nil && !errors.As(err, &cond) {
		return nil, fmt.Errorf("cannot inverse a matrix(R): %w", err)
	}
	var prod mat.Dense
	prod.Mul(rInv, rInv.T())

	return &Solution{
		Method:         MethodQR,
		Beta:           beta,
		Rank:           p,
		SingularValues: values,
		unscaledCov:    symmetrize(&prod),
	}, nil
}

func solveSVD(x mat.Matrix, y mat.Vector, tol float64) (*Solution, error) {
	_, p := x.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, errors.New("regression: singular value decomposition failed")
	}
	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	if rank := rankOf(values, tol); rank < p || len(values) < p {
		return nil, singularError(values, &v, rank, p)
	}

	// β = VΣ⁻¹Uᵀy
	uty := new(mat.VecDense)
	uty.MulVec(u.T(), y)
	for i := 0; i < p; i++ {
		uty.SetVec(i, uty.AtVec(i)/values[i])
	}
	beta := new(mat.VecDense)
	beta.MulVec(&v, uty)

	// (XᵀX)⁻¹ = VΣ⁻²Vᵀ
	scaled := mat.DenseCopyOf(&v)
	scaled.Apply(func(_, j int, val float64) float64 {
		return val / (values[j] * values[j])
	}, scaled)
	var prod mat.Dense
	prod.Mul(scaled, v.T())

	return &Solution{
		Method:         MethodSVD,
		Beta:           beta.RawVector().Data,
		Rank:           p,
		SingularValues: values,
		unscaledCov:    symmetrize(&prod),
	}, nil
}

// symmetrize averages m with its transpose to remove rounding asymmetry.
func symmetrize(m *mat.Dense) *mat.SymDense {
	r, _ := m.Dims()
	s := mat.NewSymDense(r, nil)
	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			s.SetSym(i, j, (m.At(i, j)+m.At(j, i))/2)
		}
	}
	return s
}
