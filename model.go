package regression

import (
	"fmt"
	"strings"
)

// ANOVA : analysis of variance table of the fitted model
type ANOVA struct {
	RegressionSumOfSquares    float64 // explained sum of squares
	RegressionDegreeOfFreedom int     // p - 1
	RegressionMeanOfSquares   float64
	RegressionFstat           float64 // F-statistic against the intercept-only model
	RegressionProb            float64 // Prob (F-statistic)
	ResidualSumOfSquares      float64
	ResidualDegreeOfFreedom   int // n - p
	ResidualMeanOfSquares     float64
	TotalSumOfSquares         float64 // centered
	TotalDegreeOfFreedom      int     // n - 1
}

// Coefficient : estimate and inference of one design column
type Coefficient struct {
	Index         int    // design column
	Label         string // design column label
	Term          string // term the column was derived from; InterceptLabel for the intercept
	Value         float64
	StandardError float64
	TStat         float64
	Prob          float64 // two-sided p-value
	ConfLow       float64 // lower bound of the confidence interval
	ConfHigh      float64 // upper bound of the confidence interval
}

// ExplanatoryVarResult : coefficient of a non-intercept design column with
// its standardized and collinearity statistics
type ExplanatoryVarResult struct {
	Coefficient
	StandardizedCoeff  float64 // β
	Correlation        float64 // zero-order correlation with the response
	PartialCorrelation float64
	PartCorrelation    float64 // semi-partial correlation
	Tolerance          float64 // 1 - R² of the column regressed on the others
	VIF                float64 // variance inflation factor, 1 / Tolerance
}

// ObservationsAnalysis : per-observation results and column moments
type ObservationsAnalysis struct {
	MeanOfResponse                     float64
	StandardDeviationOfResponse        float64
	MeansOfExplanatoryVars             []float64
	StandardDeviationOfExplanatoryVars []float64
	PredictedVals                      []float64
	Residuals                          []float64
}

func (oa ObservationsAnalysis) clone() ObservationsAnalysis {
	oa.MeansOfExplanatoryVars = append([]float64(nil), oa.MeansOfExplanatoryVars...)
	oa.StandardDeviationOfExplanatoryVars = append([]float64(nil), oa.StandardDeviationOfExplanatoryVars...)
	oa.PredictedVals = append([]float64(nil), oa.PredictedVals...)
	oa.Residuals = append([]float64(nil), oa.Residuals...)
	return oa
}

// Model : fitted regression model. The package never modifies a Model after
// returning it; sequences are handed out as copies.
type Model struct {
	observationsAnalysis ObservationsAnalysis
	design               *DesignMatrix // encoding only, no data
	Method               Method
	NumOfObservations    int     // n
	NumOfParameters      int     // p, intercept included
	DegreesOfFreedom     int     // n - p
	ConfidenceLevel      float64 // coverage of ConfLow/ConfHigh
	R                    float64 // multiple correlation coefficient
	R2                   float64 // NaN when the response is constant
	AdjustedR2           float64
	StandardError        float64 // standard error of the regression
	LogLikelihood        float64
	AIC                  float64
	BIC                  float64
	ANOVA                *ANOVA
	ResponseLabel        string
	Intercept            *Coefficient
	ExplanatoryVars      []ExplanatoryVarResult
}

// Coefficients returns the coefficient table in design column order, intercept first.
func (m *Model) Coefficients() []Coefficient {
	coeffs := make([]Coefficient, 0, len(m.ExplanatoryVars)+1)
	coeffs = append(coeffs, *m.Intercept)
	for _, ev := range m.ExplanatoryVars {
		coeffs = append(coeffs, ev.Coefficient)
	}
	return coeffs
}

// Coefficient looks up a coefficient by design column label.
func (m *Model) Coefficient(label string) (Coefficient, bool) {
	for _, c := range m.Coefficients() {
		if c.Label == label {
			return c, true
		}
	}
	return Coefficient{}, false
}

// Residuals returns a copy of the residuals in table row order.
func (m *Model) Residuals() []float64 {
	return append([]float64(nil), m.observationsAnalysis.Residuals...)
}

// Fitted returns a copy of the fitted values in table row order.
func (m *Model) Fitted() []float64 {
	return append([]float64(nil), m.observationsAnalysis.PredictedVals...)
}

// GetObservationsAnalysis : per-observation results of the model
func (m *Model) GetObservationsAnalysis() ObservationsAnalysis {
	return m.observationsAnalysis.clone()
}

// Columns returns the labels of the design columns.
func (m *Model) Columns() []string {
	return append([]string(nil), m.design.Columns...)
}

func formatFloatForFormula(f float64) string {
	if f < 0 {
		return fmt.Sprintf(" - %.4f", -f)
	}
	return fmt.Sprintf(" + %.4f", f)
}

// FormulaString : fitted model equation as text
func (m *Model) FormulaString() string {
	formulaStrs := make([]string, len(m.ExplanatoryVars)*2)
	for i, ev := range m.ExplanatoryVars {
		formulaStrs[i*2] = formatFloatForFormula(ev.Value)
		formulaStrs[i*2+1] = "*" + ev.Label
	}
	return m.ResponseLabel + " = " + fmt.Sprintf("%.4f", m.Intercept.Value) + strings.Join(formulaStrs, "")
}

// Predict calculates the predicted value of a new observation. Categorical
// cells must hold a level seen while fitting.
func (m *Model) Predict(row Row) (float64, error) {
	x := make([]float64, len(m.design.Columns))
	if err := m.design.encodeRow(row, x); err != nil {
		return 0, err
	}
	var p float64
	for _, c := range m.Coefficients() {
		p += x[c.Index] * c.Value
	}
	return p, nil
}
