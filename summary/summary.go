// Package summary computes the descriptive statistics and chart data of the
// heart-rate survey: a describe table, grouped box-plot statistics and a
// histogram with a kernel density estimate.
package summary

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	regression "github.com/anyappinc/heartrate"
	"github.com/anyappinc/heartrate/dataset"
	"github.com/montanaflynn/stats"
)

// WhiskerFactor scales the interquartile range to the box-plot fences.
const WhiskerFactor = 1.5

// Description holds the describe statistics of one numeric column.
// Quartiles use the nearest-rank convention.
type Description struct {
	Column string
	Count  int
	Mean   float64
	Std    float64 // sample standard deviation
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Describe summarises the named numeric columns of f, or all of its numeric
// columns when none are named.
func Describe(f *dataset.Frame, columns ...string) ([]Description, error) {
	if len(columns) == 0 {
		for _, name := range f.Columns() {
			if k, _ := f.Kind(name); k == dataset.Numeric {
				columns = append(columns, name)
			}
		}
	}

	out := make([]Description, 0, len(columns))
	for _, name := range columns {
		values, ok := f.Numeric(name)
		if !ok {
			return nil, fmt.Errorf("%w: numeric %q", dataset.ErrMissingColumn, name)
		}
		d, err := describe(name, values)
		if err != nil {
			return nil, fmt.Errorf("describe %q: %w", name, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func describe(name string, values []float64) (Description, error) {
	d := Description{Column: name, Count: len(values)}
	var err error
	if d.Mean, err = stats.Mean(values); err != nil {
		return d, err
	}
	if len(values) > 1 {
		if d.Std, err = stats.StandardDeviationSample(values); err != nil {
			return d, err
		}
	} else {
		d.Std = math.NaN()
	}
	if d.Min, err = stats.Min(values); err != nil {
		return d, err
	}
	if d.Max, err = stats.Max(values); err != nil {
		return d, err
	}
	d.Q1, d.Median, d.Q3, err = quartiles(values)
	return d, err
}

func quartiles(values []float64) (q1, median, q3 float64, err error) {
	if q1, err = stats.PercentileNearestRank(values, 25); err != nil {
		return
	}
	if median, err = stats.Median(values); err != nil {
		return
	}
	q3, err = stats.PercentileNearestRank(values, 75)
	return
}

// Fprint writes descriptions as a table with one column per variable.
func Fprint(w io.Writer, ds []Description) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, d := range ds {
		fmt.Fprintf(tw, "%s\t", d.Column)
	}
	fmt.Fprintln(tw)

	rows := []struct {
		label string
		value func(Description) float64
	}{
		{"count", func(d Description) float64 { return float64(d.Count) }},
		{"mean", func(d Description) float64 { return d.Mean }},
		{"std", func(d Description) float64 { return d.Std }},
		{"min", func(d Description) float64 { return d.Min }},
		{"25%", func(d Description) float64 { return d.Q1 }},
		{"50%", func(d Description) float64 { return d.Median }},
		{"75%", func(d Description) float64 { return d.Q3 }},
		{"max", func(d Description) float64 { return d.Max }},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t", r.label)
		for _, d := range ds {
			fmt.Fprintf(tw, "%.6f\t", r.value(d))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// Box holds the box-plot statistics of one group.
type Box struct {
	Level        string
	Values       []float64 // sorted
	Q1           float64
	Median       float64
	Q3           float64
	LowerWhisker float64
	UpperWhisker float64
	Outliers     []float64
}

// BoxPlot groups values by level and computes one Box per level. Levels are
// ordered the way the design matrix orders categorical levels. Whiskers
// reach the most extreme values within WhiskerFactor interquartile ranges of
// the box; anything beyond is an outlier.
func BoxPlot(values []float64, groups []string) ([]Box, error) {
	if len(values) != len(groups) {
		return nil, fmt.Errorf("%d values for %d group labels", len(values), len(groups))
	}
	if len(values) == 0 {
		return nil, errors.New("no values")
	}

	byLevel := map[string][]float64{}
	levels := []string{}
	for i, g := range groups {
		if _, ok := byLevel[g]; !ok {
			levels = append(levels, g)
		}
		byLevel[g] = append(byLevel[g], values[i])
	}
	regression.SortLevels(levels)

	boxes := make([]Box, 0, len(levels))
	for _, level := range levels {
		vs := byLevel[level]
		sort.Float64s(vs)
		b := Box{Level: level, Values: vs}
		var err error
		if b.Q1, b.Median, b.Q3, err = quartiles(vs); err != nil {
			return nil, fmt.Errorf("level %q: %w", level, err)
		}
		iqr := b.Q3 - b.Q1
		lo, hi := b.Q1-WhiskerFactor*iqr, b.Q3+WhiskerFactor*iqr
		b.LowerWhisker, b.UpperWhisker = math.Inf(1), math.Inf(-1)
		for _, v := range vs {
			if v < lo || v > hi {
				b.Outliers = append(b.Outliers, v)
				continue
			}
			b.LowerWhisker = math.Min(b.LowerWhisker, v)
			b.UpperWhisker = math.Max(b.UpperWhisker, v)
		}
		boxes = append(boxes, b)
	}
	return boxes, nil
}
