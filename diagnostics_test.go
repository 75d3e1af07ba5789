package regression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestDurbinWatson(t *testing.T) {
	tests := []struct {
		name      string
		residuals []float64
		want      float64
	}{
		{"alternating", []float64{1, -1, 1, -1}, 3},
		{"constant", []float64{1, 1, 1, 1}, 0},
		{"pulse residuals", pulseResiduals, 32.75 / 32.125},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DurbinWatson(tt.residuals), tolerance)
		})
	}

	long := make([]float64, 200)
	for i := range long {
		long[i] = 1 - 2*float64(i%2)
	}
	assert.InDelta(t, 4, DurbinWatson(long), 0.05)
	assert.True(t, math.IsNaN(DurbinWatson([]float64{0, 0, 0})))
}

func TestJarqueBera(t *testing.T) {
	jb, prob, skew, kurt := JarqueBera([]float64{-2, -1, 0, 1, 2})
	assert.InDelta(t, 0, skew, tolerance)
	assert.InDelta(t, 1.7, kurt, tolerance)
	want := 5.0 / 6 * (1.3 * 1.3 / 4)
	assert.InDelta(t, want, jb, tolerance)
	assert.InDelta(t, math.Exp(-want/2), prob, tolerance)

	// right tail
	_, _, skew, _ = JarqueBera([]float64{0, 0, 0, 0, 0, 0, 0, 10})
	assert.Greater(t, skew, 0.0)
}

func TestOmnibus(t *testing.T) {
	k2, prob := Omnibus([]float64{1, 2, 3, 4, 5, 6, 7})
	assert.True(t, math.IsNaN(k2))
	assert.True(t, math.IsNaN(prob))

	symmetric := []float64{-4, -3, -2, -1, 0, 1, 2, 3, 4}
	k2, prob = Omnibus(symmetric)
	_, kurt := moments(symmetric)
	zk := kurtosisTest(kurt, float64(len(symmetric)))
	assert.InDelta(t, zk*zk, k2, tolerance)
	assert.InDelta(t, math.Exp(-k2/2), prob, tolerance)

	// normaltest reference for a right-skewed sample
	skewed := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 20}
	k2Skewed, probSkewed := Omnibus(skewed)
	assert.InDelta(t, 12.756181876, k2Skewed, 1e-6)
	assert.InDelta(t, 0.0016983621, probSkewed, 1e-8)
	skew, kurt := moments(skewed)
	assert.InDelta(t, 2.647142077, skewTest(skew, 10), 1e-6)
	assert.InDelta(t, 2.397669848, kurtosisTest(kurt, 10), 1e-6)

	heavy := []float64{-30, -1, -0.5, -0.2, 0, 0.2, 0.5, 1, 30, 0.1, -0.1, 0}
	k2Heavy, probHeavy := Omnibus(heavy)
	assert.Greater(t, k2Heavy, k2)
	assert.Less(t, probHeavy, 0.05)
}

func TestSkewTestSign(t *testing.T) {
	assert.InDelta(t, 0, skewTest(0, 20), tolerance)
	assert.Greater(t, skewTest(0.8, 20), 0.0)
	assert.InDelta(t, -skewTest(0.8, 20), skewTest(-0.8, 20), tolerance)
}

func TestConditionNumber(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{1, 0, 0, 2, 0, 0})
	assert.InDelta(t, 2, ConditionNumber(x), tolerance)
	assert.Greater(t, ConditionNumber(mat.NewDense(2, 2, []float64{1, 1, 1, 1})), 1e12)
	assert.True(t, math.IsInf(ConditionNumber(mat.NewDense(1, 2, []float64{1, 2})), 1))
}

func TestDiagnose(t *testing.T) {
	dm, err := Build(pulseTable(), pulseSpec())
	require.NoError(t, err)
	sol, err := Solve(dm.X, dm.Y)
	require.NoError(t, err)

	d, err := Diagnose(sol)
	require.NoError(t, err)
	assert.InDelta(t, 32.75/32.125, d.DurbinWatson, tolerance)
	assert.InDelta(t, ConditionNumber(dm.X), d.ConditionNumber, 1e-6*d.ConditionNumber)
	assert.Greater(t, d.ConditionNumber, float64(ConditionWarningThreshold))
	jb, jbProb, skew, kurt := JarqueBera(pulseResiduals)
	assert.InDelta(t, jb, d.JarqueBera, 1e-8)
	assert.InDelta(t, jbProb, d.JarqueBeraProb, 1e-8)
	assert.InDelta(t, skew, d.Skewness, 1e-8)
	assert.InDelta(t, kurt, d.Kurtosis, 1e-8)
	// six residuals are too few for the omnibus test
	assert.True(t, math.IsNaN(d.Omnibus))
}

func TestDiagnoseTooFewResiduals(t *testing.T) {
	sol := &Solution{Beta: []float64{1}, Residuals: []float64{1, -1, 0}, SingularValues: []float64{1}}
	_, err := Diagnose(sol)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
