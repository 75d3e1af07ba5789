package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Infer derives standard errors, t-statistics, p-values, confidence
// intervals and overall fit statistics from a solution of dm.
//
// It fails with *InsufficientDataError when n <= p. When the response is
// constant, R², adjusted R², R and the F-test are NaN.
func Infer(dm *DesignMatrix, sol *Solution, opts ...Option) (*Model, error) {
	o := newOptions(opts)
	n, p := dm.Dims()
	if sn, sp := sol.Dims(); sn != n || sp != p {
		return nil, fmt.Errorf("%w: solution is %d×%d, design is %d×%d", ErrInvalidArgument, sn, sp, n, p)
	}

	// degrees of freedom
	residualDegreeOfFreedom := n - p
	if residualDegreeOfFreedom <= 0 {
		return nil, &InsufficientDataError{Observations: n, Parameters: p}
	}
	df := float64(residualDegreeOfFreedom)

	y := dm.Y.RawVector().Data
	meanOfResponse, standardDeviationOfResponse := stat.MeanStdDev(y, nil)

	residualSumOfSquares := floats.Dot(sol.Residuals, sol.Residuals)
	var totalSumOfSquares float64
	for _, v := range y {
		totalSumOfSquares += (v - meanOfResponse) * (v - meanOfResponse)
	}
	regressionSumOfSquares := totalSumOfSquares - residualSumOfSquares

	r2, adjustedR2 := math.NaN(), math.NaN()
	if totalSumOfSquares != 0 {
		r2 = 1 - residualSumOfSquares/totalSumOfSquares
		adjustedR2 = 1 - (1-r2)*float64(n-1)/df
	}

	// unbiased estimate of the error variance
	residualsVariance := residualSumOfSquares / df
	standardError := math.Sqrt(residualsVariance)

	regressionDegreeOfFreedom := p - 1
	regressionMeanOfSquares, regressionFstat, regressionProb := math.NaN(), math.NaN(), math.NaN()
	if regressionDegreeOfFreedom > 0 {
		regressionMeanOfSquares = regressionSumOfSquares / float64(regressionDegreeOfFreedom)
		if totalSumOfSquares != 0 {
			regressionFstat = regressionMeanOfSquares / residualsVariance
			regressionProb = distuv.F{
				D1: float64(regressionDegreeOfFreedom),
				D2: df,
			}.Survival(regressionFstat)
		}
	}

	tDistribution := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	tCritical := tDistribution.Quantile(1 - (1-o.confidence)/2)

	cov := sol.unscaledCov
	coeffs := make([]Coefficient, p)
	for j := 0; j < p; j++ {
		se := math.Sqrt(residualsVariance * cov.At(j, j))
		beta := sol.Beta[j]
		tstat := beta / se
		coeffs[j] = Coefficient{
			Index:         j,
			Label:         dm.Columns[j],
			Term:          termOfColumn(dm, j),
			Value:         beta,
			StandardError: se,
			TStat:         tstat,
			Prob:          tDistribution.Survival(math.Abs(tstat)) * 2,
			ConfLow:       beta - tCritical*se,
			ConfHigh:      beta + tCritical*se,
		}
	}
	coeffs[0].Term = InterceptLabel

	explanatoryVars := make([]ExplanatoryVarResult, p-1)
	means, sds := make([]float64, p-1), make([]float64, p-1)
	for j := 1; j < p; j++ {
		col := mat.Col(nil, j, dm.X)
		means[j-1], sds[j-1] = stat.MeanStdDev(col, nil)

		tolerance, err := toleranceOf(dm.X, j, o)
		if err != nil {
			return nil, err
		}

		c := coeffs[j]
		explanatoryVars[j-1] = ExplanatoryVarResult{
			Coefficient:        c,
			StandardizedCoeff:  c.Value * sds[j-1] / standardDeviationOfResponse,
			Correlation:        stat.Correlation(col, y, nil),
			PartialCorrelation: c.TStat / math.Sqrt(c.TStat*c.TStat+df),
			PartCorrelation:    c.TStat * math.Sqrt((1-r2)/df),
			Tolerance:          tolerance,
			VIF:                1 / tolerance,
		}
	}

	logLikelihood := -float64(n) / 2 * (1 + math.Log(2*math.Pi*residualSumOfSquares/float64(n)))

	return &Model{
		observationsAnalysis: ObservationsAnalysis{
			MeanOfResponse:                     meanOfResponse,
			StandardDeviationOfResponse:        standardDeviationOfResponse,
			MeansOfExplanatoryVars:             means,
			StandardDeviationOfExplanatoryVars: sds,
			PredictedVals:                      append([]float64(nil), sol.Fitted...),
			Residuals:                          append([]float64(nil), sol.Residuals...),
		},
		design:            dm.encoding(),
		Method:            sol.Method,
		NumOfObservations: n,
		NumOfParameters:   p,
		DegreesOfFreedom:  residualDegreeOfFreedom,
		ConfidenceLevel:   o.confidence,
		R:                 math.Sqrt(r2),
		R2:                r2,
		AdjustedR2:        adjustedR2,
		StandardError:     standardError,
		LogLikelihood:     logLikelihood,
		AIC:               -2*logLikelihood + 2*float64(p),
		BIC:               -2*logLikelihood + float64(p)*math.Log(float64(n)),
		ANOVA: &ANOVA{
			RegressionSumOfSquares:    regressionSumOfSquares,
			RegressionDegreeOfFreedom: regressionDegreeOfFreedom,
			RegressionMeanOfSquares:   regressionMeanOfSquares,
			RegressionFstat:           regressionFstat,
			RegressionProb:            regressionProb,
			ResidualSumOfSquares:      residualSumOfSquares,
			ResidualDegreeOfFreedom:   residualDegreeOfFreedom,
			ResidualMeanOfSquares:     residualsVariance,
			TotalSumOfSquares:         totalSumOfSquares,
			TotalDegreeOfFreedom:      n - 1,
		},
		ResponseLabel:   dm.Response,
		Intercept:       &coeffs[0],
		ExplanatoryVars: explanatoryVars,
	}, nil
}

// toleranceOf regresses design column j on the remaining columns, intercept
// included, and returns 1 - R² of that auxiliary fit.
func toleranceOf(x *mat.Dense, j int, o options) (float64, error) {
	n, p := x.Dims()
	if p <= 2 {
		return 1, nil
	}
	others := mat.NewDense(n, p-1, nil)
	for i := 0; i < n; i++ {
		row, dst := x.RawRowView(i), others.RawRowView(i)
		copy(dst, row[:j])
		copy(dst[j:], row[j+1:])
	}
	target := mat.NewVecDense(n, mat.Col(nil, j, x))

	aux, err := Solve(others, target, WithMethod(o.method), WithTolerance(o.tolerance))
	if err != nil {
		var se *SingularMatrixError
		if errors.As(err, &se) {
			return 0, nil
		}
		return 0, err
	}
	mean := stat.Mean(target.RawVector().Data, nil)
	var tss float64
	for i := 0; i < n; i++ {
		d := target.AtVec(i) - mean
		tss += d * d
	}
	return floats.Dot(aux.Residuals, aux.Residuals) / tss, nil
}
