package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/anyappinc/heartrate/logger"
	"github.com/anyappinc/heartrate/summary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetLogger(nil)
	os.Exit(m.Run())
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func assertPNG(t *testing.T, path string) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic), "%s is not a PNG", path)
}

var (
	bmi    = []float64{22.1, 24.3, 19.8, 21.5, 23.0, 20.4, 26.7, 18.9, 22.8, 25.1}
	pulse1 = []float64{70, 75, 80, 65, 72, 68, 82, 64, 77, 71}
	gender = []string{"1", "2", "1", "2", "1", "2", "1", "2", "1", "2"}
)

func TestHistogram(t *testing.T) {
	d, err := summary.Histogram(bmi, 5)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bmi.png")
	require.NoError(t, Histogram(path, Labels{Title: "BMI Distribution", X: "BMI"}, d, DefaultSize()))
	assertPNG(t, path)

	assert.Error(t, Histogram(path, Labels{}, &summary.Distribution{}, DefaultSize()))
}

func TestBoxPlot(t *testing.T) {
	boxes, err := summary.BoxPlot(pulse1, gender)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "pulse1_by_gender.png")
	require.NoError(t, BoxPlot(path, Labels{Title: "Pulse1 by Gender", X: "Gender", Y: "Pulse1"}, boxes, Size{}))
	assertPNG(t, path)

	assert.Error(t, BoxPlot(path, Labels{}, nil, DefaultSize()))
}

func TestScatter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pulse1_vs_bmi.png")
	require.NoError(t, Scatter(path, Labels{Title: "Pulse1 vs BMI", X: "BMI", Y: "Pulse1"}, bmi, pulse1, DefaultSize()))
	assertPNG(t, path)

	assert.Error(t, Scatter(path, Labels{}, bmi, pulse1[:3], DefaultSize()))

	svg := filepath.Join(dir, "pulse1_vs_bmi.svg")
	require.NoError(t, Scatter(svg, Labels{}, bmi, pulse1, DefaultSize()))
	b, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")
}

func TestResidualsVsFitted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "residuals.png")
	fitted := []float64{86, 89.5, 93.5, 79, 88.3, 81.2}
	residuals := []float64{4, 1, -0.25, -1, -3.75, 0}
	require.NoError(t, ResidualsVsFitted(path, fitted, residuals, DefaultSize()))
	assertPNG(t, path)

	assert.Error(t, ResidualsVsFitted(path, nil, nil, DefaultSize()))
}
