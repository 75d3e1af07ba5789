package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gonum.org/v1/gonum/stat/distuv"
)

type InferenceTestSuite struct {
	suite.Suite
	dm    *DesignMatrix
	sol   *Solution
	model *Model
}

func TestInferenceTestSuite(t *testing.T) {
	suite.Run(t, new(InferenceTestSuite))
}

func (suite *InferenceTestSuite) SetupTest() {
	var err error
	suite.dm, err = Build(pulseTable(), pulseSpec())
	suite.Require().NoError(err)
	suite.sol, err = Solve(suite.dm.X, suite.dm.Y)
	suite.Require().NoError(err)
	suite.model, err = Infer(suite.dm, suite.sol)
	suite.Require().NoError(err)
}

func (suite *InferenceTestSuite) TestFitStatistics() {
	const (
		rss = 32.125
		tss = 177.58
	)
	m := suite.model
	t := suite.T()

	assert.Equal(t, 6, m.NumOfObservations)
	assert.Equal(t, 4, m.NumOfParameters)
	assert.Equal(t, 2, m.DegreesOfFreedom)
	assert.Equal(t, "Pulse2", m.ResponseLabel)
	assert.Equal(t, DefaultConfidenceLevel, m.ConfidenceLevel)

	r2 := 1 - rss/tss
	assert.InDelta(t, r2, m.R2, tolerance)
	assert.InDelta(t, math.Sqrt(r2), m.R, tolerance)
	assert.InDelta(t, 1-(1-r2)*5/2, m.AdjustedR2, tolerance)
	assert.InDelta(t, math.Sqrt(rss/2), m.StandardError, tolerance)

	a := m.ANOVA
	assert.InDelta(t, rss, a.ResidualSumOfSquares, tolerance)
	assert.InDelta(t, tss, a.TotalSumOfSquares, tolerance)
	assert.InDelta(t, tss-rss, a.RegressionSumOfSquares, tolerance)
	assert.Equal(t, 3, a.RegressionDegreeOfFreedom)
	assert.Equal(t, 2, a.ResidualDegreeOfFreedom)
	assert.Equal(t, 5, a.TotalDegreeOfFreedom)
	f := ((tss - rss) / 3) / (rss / 2)
	assert.InDelta(t, f, a.RegressionFstat, 1e-8)
	assert.InDelta(t, distuv.F{D1: 3, D2: 2}.Survival(f), a.RegressionProb, 1e-8)

	ll := -3 * (1 + math.Log(2*math.Pi*rss/6))
	assert.InDelta(t, ll, m.LogLikelihood, tolerance)
	assert.InDelta(t, -2*ll+8, m.AIC, tolerance)
	assert.InDelta(t, -2*ll+4*math.Log(6), m.BIC, tolerance)
}

func (suite *InferenceTestSuite) TestCoefficients() {
	t := suite.T()
	coeffs := suite.model.Coefficients()
	require.Len(t, coeffs, 4)

	cov := suite.sol.UnscaledCovariance()
	sigma2 := 32.125 / 2
	tdist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: 2}
	for j, c := range coeffs {
		assert.Equal(t, j, c.Index)
		assert.Equal(t, pulseColumns[j], c.Label)
		assert.InDelta(t, pulseBeta[j], c.Value, tolerance)
		assert.InDelta(t, math.Sqrt(sigma2*cov.At(j, j)), c.StandardError, tolerance)
		assert.InDelta(t, c.Value/c.StandardError, c.TStat, tolerance)
		assert.InDelta(t, 2*tdist.Survival(math.Abs(c.TStat)), c.Prob, tolerance)
		assert.InDelta(t, c.Value, (c.ConfLow+c.ConfHigh)/2, tolerance)
		assert.InDelta(t, tdist.Quantile(0.975)*c.StandardError, c.ConfHigh-c.Value, 1e-8)
	}
	assert.Equal(t, InterceptLabel, coeffs[0].Term)
	assert.Equal(t, "Gender", coeffs[3].Term)

	c, ok := suite.model.Coefficient("Gender_M")
	require.True(t, ok)
	assert.InDelta(t, 2, c.Value, tolerance)
	_, ok = suite.model.Coefficient("Gender_F")
	assert.False(t, ok)
}

func (suite *InferenceTestSuite) TestExplanatoryVars() {
	t := suite.T()
	m := suite.model
	require.Len(t, m.ExplanatoryVars, 3)
	oa := m.GetObservationsAnalysis()
	for i, ev := range m.ExplanatoryVars {
		tt := ev.TStat
		assert.InDelta(t, tt*tt/(tt*tt+2), ev.PartialCorrelation*ev.PartialCorrelation, tolerance)
		assert.InDelta(t, tt*math.Sqrt((1-m.R2)/2), ev.PartCorrelation, tolerance)
		assert.True(t, ev.Tolerance > 0 && ev.Tolerance <= 1, "tolerance %v", ev.Tolerance)
		assert.InDelta(t, 1/ev.Tolerance, ev.VIF, tolerance)
		assert.True(t, ev.Correlation >= -1 && ev.Correlation <= 1)
		assert.InDelta(t, ev.Value*oa.StandardDeviationOfExplanatoryVars[i]/oa.StandardDeviationOfResponse, ev.StandardizedCoeff, tolerance)
	}
	assert.InDelta(t, 0.5, oa.MeansOfExplanatoryVars[2], tolerance)
	assert.InDelta(t, 86.25, oa.MeanOfResponse, tolerance)
}

func (suite *InferenceTestSuite) TestSequencesAreCopies() {
	t := suite.T()
	res := suite.model.Residuals()
	assert.InDeltaSlice(t, pulseResiduals, res, tolerance)
	res[0] = 1000
	assert.InDelta(t, 4, suite.model.Residuals()[0], tolerance)

	fitted := suite.model.Fitted()
	assert.InDelta(t, 86, fitted[0], tolerance)
	fitted[0] = 0
	assert.InDelta(t, 86, suite.model.GetObservationsAnalysis().PredictedVals[0], tolerance)
}

func (suite *InferenceTestSuite) TestPredict() {
	t := suite.T()
	table := pulseTable()
	fitted := suite.model.Fitted()
	for i, row := range table.Rows {
		p, err := suite.model.Predict(row)
		require.NoError(t, err)
		assert.InDelta(t, fitted[i], p, tolerance)
	}

	_, err := suite.model.Predict(Row{"Pulse1": Num(70), "BMI": Num(20), "Gender": Level("X")})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = suite.model.Predict(Row{"Pulse1": Num(70), "Gender": Level("F")})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func (suite *InferenceTestSuite) TestModelOwnsEncoding() {
	t := suite.T()
	row := pulseTable().Rows[0]
	before, err := suite.model.Predict(row)
	require.NoError(t, err)

	suite.dm.Columns[1] = "Changed"
	suite.dm.encodings[2].levels[0] = "Z"
	suite.dm.X.Set(0, 1, 0)

	assert.Equal(t, pulseColumns, suite.model.Columns())
	after, err := suite.model.Predict(row)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func (suite *InferenceTestSuite) TestFormulaString() {
	assert.Equal(suite.T(),
		"Pulse2 = 10.0000 + 0.9000*Pulse1 + 0.5000*BMI + 2.0000*Gender_M",
		suite.model.FormulaString())
}

func TestInferR2AffineInvariance(t *testing.T) {
	base, err := Fit(pulseTable(), pulseSpec())
	require.NoError(t, err)

	for _, tr := range []struct{ a, b float64 }{{3, 7}, {-0.5, 100}, {1e3, -1e4}} {
		table := pulseTable()
		for _, row := range table.Rows {
			f, _ := row["Pulse2"].Float()
			row["Pulse2"] = Num(tr.a*f + tr.b)
		}
		scaled, err := Fit(table, pulseSpec())
		require.NoError(t, err)
		assert.InDelta(t, base.Model.R2, scaled.Model.R2, 1e-9)
		assert.InDelta(t, base.Model.AdjustedR2, scaled.Model.AdjustedR2, 1e-9)
		assert.InDelta(t, base.Model.ANOVA.RegressionFstat, scaled.Model.ANOVA.RegressionFstat, 1e-6)
	}
}

func TestInferConstantResponse(t *testing.T) {
	table := pulseTable()
	for _, row := range table.Rows {
		row["Pulse2"] = Num(80)
	}
	dm, err := Build(table, pulseSpec())
	require.NoError(t, err)
	sol, err := Solve(dm.X, dm.Y)
	require.NoError(t, err)
	m, err := Infer(dm, sol)
	require.NoError(t, err)

	assert.True(t, math.IsNaN(m.R2))
	assert.True(t, math.IsNaN(m.AdjustedR2))
	assert.True(t, math.IsNaN(m.ANOVA.RegressionFstat))
	assert.True(t, math.IsNaN(m.ANOVA.RegressionProb))
	assert.InDelta(t, 80, m.Intercept.Value, 1e-9)
}

func TestInferInsufficientData(t *testing.T) {
	table := pulseTable()
	table.Rows = table.Rows[:4]
	dm, err := Build(table, pulseSpec())
	require.NoError(t, err)
	sol, err := Solve(dm.X, dm.Y)
	require.NoError(t, err)

	_, err = Infer(dm, sol)
	require.ErrorIs(t, err, ErrInsufficientData)
	var ide *InsufficientDataError
	require.ErrorAs(t, err, &ide)
	assert.Equal(t, 4, ide.Observations)
	assert.Equal(t, 4, ide.Parameters)
}

func TestInferConfidenceLevel(t *testing.T) {
	dm, err := Build(pulseTable(), pulseSpec())
	require.NoError(t, err)
	sol, err := Solve(dm.X, dm.Y)
	require.NoError(t, err)

	narrow, err := Infer(dm, sol, WithConfidenceLevel(0.5))
	require.NoError(t, err)
	wide, err := Infer(dm, sol)
	require.NoError(t, err)
	assert.Equal(t, 0.5, narrow.ConfidenceLevel)
	assert.Less(t, narrow.Intercept.ConfHigh-narrow.Intercept.ConfLow, wide.Intercept.ConfHigh-wide.Intercept.ConfLow)
}
