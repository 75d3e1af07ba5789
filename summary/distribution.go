package summary

import (
	"errors"
	"math"
	"sort"

	mstats "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DensityPoints is the number of grid points the density curve is sampled on.
const DensityPoints = 200

// NormalReferenceBandwidth is the Gaussian kernel bandwidth that is
// optimal for normally distributed data, 1.06·σ·n^(-1/5).
func NormalReferenceBandwidth(stddev float64, n int) float64 {
	return 1.06 * stddev * math.Pow(float64(n), -0.2)
}

// Bin is one histogram bar over [Low, High).
type Bin struct {
	Low     float64
	High    float64
	Count   int
	Density float64 // Count / (n * width)
}

// Distribution is a histogram of a sample together with a kernel density
// estimate sampled over the histogram's range.
type Distribution struct {
	Bins []Bin
	// DensityX and DensityY are empty when the sample cannot support a
	// density estimate (fewer than two distinct values).
	DensityX []float64
	DensityY []float64
}

// Histogram splits values into equal-width bins spanning their range and
// estimates their density with a Gaussian kernel.
func Histogram(values []float64, bins int) (*Distribution, error) {
	if bins < 1 {
		return nil, errors.New("bins must be positive")
	}
	if len(values) == 0 {
		return nil, errors.New("no values")
	}
	xs := append([]float64(nil), values...)
	sort.Float64s(xs)
	lo, hi := xs[0], xs[len(xs)-1]
	if math.IsNaN(lo) || math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil, errors.New("non-finite value")
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// the last bin is closed on the right
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, xs, nil)

	d := &Distribution{Bins: make([]Bin, bins)}
	n := float64(len(xs))
	for i, c := range counts {
		width := dividers[i+1] - dividers[i]
		d.Bins[i] = Bin{Low: dividers[i], High: dividers[i+1], Count: int(c), Density: c / (n * width)}
	}
	d.Bins[bins-1].High = hi

	if xs[0] != xs[len(xs)-1] {
		sample := mstats.Sample{Xs: xs, Sorted: true}
		kde := &mstats.KDE{Sample: sample, Bandwidth: NormalReferenceBandwidth(sample.StdDev(), len(xs))}
		d.DensityX = floats.Span(make([]float64, DensityPoints), lo, hi)
		d.DensityY = make([]float64, DensityPoints)
		for i, x := range d.DensityX {
			d.DensityY[i] = kde.PDF(x)
		}
	}
	return d, nil
}
