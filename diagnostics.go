package regression

import (
	"math"

	"github.com/anyappinc/heartrate/logger"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// MinDiagnosticObservations is the fewest residuals Diagnose accepts;
	// below it the moment-based normality tests are meaningless.
	MinDiagnosticObservations = 4
	// MinOmnibusObservations is the fewest residuals for which the omnibus
	// test is computed. Smaller samples report NaN.
	MinOmnibusObservations = 8
)

var chiSquared2 = distuv.ChiSquared{K: 2}

// Diagnostics : residual diagnostics of a fitted model
type Diagnostics struct {
	DurbinWatson    float64
	JarqueBera      float64
	JarqueBeraProb  float64
	Omnibus         float64 // NaN below MinOmnibusObservations
	OmnibusProb     float64
	Skewness        float64
	Kurtosis        float64 // non-excess: 3 for a normal sample
	ConditionNumber float64
}

// Diagnose computes the residual diagnostics of sol. The residuals are taken
// in table row order, which the Durbin-Watson statistic depends on.
// It needs at least MinDiagnosticObservations residuals.
func Diagnose(sol *Solution) (*Diagnostics, error) {
	n, p := sol.Dims()
	if n < MinDiagnosticObservations {
		return nil, &InsufficientDataError{
			Observations: n,
			Parameters:   p,
			Reason:       "residual diagnostics need at least 4 residuals",
		}
	}

	jb, jbProb, skew, kurt := JarqueBera(sol.Residuals)
	omnibus, omnibusProb := Omnibus(sol.Residuals)
	if n < MinOmnibusObservations {
		logger.Warn("Omnibus test skipped", zap.Int("residuals", n), zap.Int("minimum", MinOmnibusObservations))
	}

	return &Diagnostics{
		DurbinWatson:    DurbinWatson(sol.Residuals),
		JarqueBera:      jb,
		JarqueBeraProb:  jbProb,
		Omnibus:         omnibus,
		OmnibusProb:     omnibusProb,
		Skewness:        skew,
		Kurtosis:        kurt,
		ConditionNumber: sol.Condition(),
	}, nil
}

// DurbinWatson returns Σ(e_i - e_{i-1})² / Σe_i² over residuals in the given
// order. It is NaN when every residual is zero.
func DurbinWatson(residuals []float64) float64 {
	var num, den float64
	for i, e := range residuals {
		den += e * e
		if i > 0 {
			d := e - residuals[i-1]
			num += d * d
		}
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// moments returns the population skewness m3/m2^1.5 and kurtosis m4/m2².
func moments(x []float64) (skew, kurt float64) {
	m2 := stat.Moment(2, x, nil)
	m3 := stat.Moment(3, x, nil)
	m4 := stat.Moment(4, x, nil)
	return m3 / math.Pow(m2, 1.5), m4 / (m2 * m2)
}

// JarqueBera returns the Jarque-Bera statistic n/6·(S² + (K-3)²/4) with its
// asymptotic χ²(2) p-value, and the skewness S and kurtosis K it used.
func JarqueBera(residuals []float64) (jb, prob, skew, kurt float64) {
	skew, kurt = moments(residuals)
	n := float64(len(residuals))
	jb = n / 6 * (skew*skew + (kurt-3)*(kurt-3)/4)
	return jb, chiSquared2.Survival(jb), skew, kurt
}

// Omnibus returns the D'Agostino-Pearson K² statistic, the sum of the squared
// z-scores of the skewness and kurtosis tests, with its χ²(2) p-value. Both
// are NaN for fewer than MinOmnibusObservations residuals.
func Omnibus(residuals []float64) (k2, prob float64) {
	if len(residuals) < MinOmnibusObservations {
		return math.NaN(), math.NaN()
	}
	skew, kurt := moments(residuals)
	n := float64(len(residuals))
	zs, zk := skewTest(skew, n), kurtosisTest(kurt, n)
	k2 = zs*zs + zk*zk
	return k2, chiSquared2.Survival(k2)
}

// skewTest is D'Agostino's transformation of the sample skewness to a
// standard normal z-score.
func skewTest(skew, n float64) float64 {
	y := skew * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	return delta * math.Asinh(y/alpha)
}

// kurtosisTest is the Anscombe-Glynn transformation of the sample kurtosis
// to a standard normal z-score.
func kurtosisTest(kurt, n float64) float64 {
	mean := 3 * (n - 1) / (n + 1)
	variance := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (kurt - mean) / math.Sqrt(variance)
	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}

// ConditionNumber returns the ratio of the largest to the smallest singular
// value of x, or +Inf when x is singular.
func ConditionNumber(x mat.Matrix) float64 {
	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDNone); !ok {
		return math.NaN()
	}
	values := svd.Values(nil)
	r, c := x.Dims()
	if r < c {
		return math.Inf(1)
	}
	return conditionOf(values)
}
