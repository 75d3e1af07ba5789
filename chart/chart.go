// Package chart renders the exploratory and residual charts of the analysis
// as image files. The output format follows the file extension.
package chart

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/anyappinc/heartrate/logger"
	"github.com/anyappinc/heartrate/summary"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Size is the canvas size of a chart.
type Size struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultSize is 8x5 inches.
func DefaultSize() Size {
	return Size{Width: 8 * vg.Inch, Height: 5 * vg.Inch}
}

// Labels are the title and axis labels of a chart.
type Labels struct {
	Title string
	X     string
	Y     string
}

var (
	barColor  = color.RGBA{R: 76, G: 114, B: 176, A: 255}
	lineColor = color.RGBA{R: 221, G: 132, B: 82, A: 255}
)

func newPlot(l Labels) *plot.Plot {
	p := plot.New()
	p.Title.Text = l.Title
	p.X.Label.Text = l.X
	p.Y.Label.Text = l.Y
	p.Add(plotter.NewGrid())
	return p
}

func save(p *plot.Plot, path string, size Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultSize()
	}
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return fmt.Errorf("save chart %s: %w", path, err)
	}
	logger.Debug("chart written", zap.String("path", path))
	return nil
}

// Histogram draws the density histogram of d with its kernel density curve
// on top.
func Histogram(path string, l Labels, d *summary.Distribution, size Size) error {
	if d == nil || len(d.Bins) == 0 {
		return errors.New("empty distribution")
	}
	h := &plotter.Histogram{
		Bins:      make([]plotter.HistogramBin, len(d.Bins)),
		Width:     d.Bins[0].High - d.Bins[0].Low,
		FillColor: barColor,
		LineStyle: plotter.DefaultLineStyle,
	}
	for i, b := range d.Bins {
		h.Bins[i] = plotter.HistogramBin{Min: b.Low, Max: b.High, Weight: b.Density}
	}

	p := newPlot(l)
	p.Add(h)
	if len(d.DensityX) > 0 {
		xys := make(plotter.XYs, len(d.DensityX))
		for i := range xys {
			xys[i].X, xys[i].Y = d.DensityX[i], d.DensityY[i]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		line.Color = lineColor
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("KDE", line)
		p.Legend.Top = true
	}
	return save(p, path, size)
}

// BoxPlot draws one box per group in the order given.
func BoxPlot(path string, l Labels, boxes []summary.Box, size Size) error {
	if len(boxes) == 0 {
		return errors.New("no groups")
	}
	p := newPlot(l)
	names := make([]string, len(boxes))
	for i, b := range boxes {
		bp, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(b.Values))
		if err != nil {
			return fmt.Errorf("group %q: %w", b.Level, err)
		}
		bp.FillColor = plotutil.Color(i)
		p.Add(bp)
		names[i] = b.Level
	}
	p.NominalX(names...)
	return save(p, path, size)
}

// Scatter draws the points (x[i], y[i]).
func Scatter(path string, l Labels, x, y []float64, size Size) error {
	xys, err := points(x, y)
	if err != nil {
		return err
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = barColor
	s.GlyphStyle.Radius = vg.Points(3)

	p := newPlot(l)
	p.Add(s)
	return save(p, path, size)
}

// ResidualsVsFitted draws the residuals of a fit against its fitted values
// with a reference line at zero.
func ResidualsVsFitted(path string, fitted, residuals []float64, size Size) error {
	xys, err := points(fitted, residuals)
	if err != nil {
		return err
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	s.GlyphStyle.Color = barColor
	s.GlyphStyle.Radius = vg.Points(3)

	zero := plotter.NewFunction(func(float64) float64 { return 0 })
	zero.Color = lineColor
	zero.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}

	p := newPlot(Labels{Title: "Residuals vs Fitted", X: "Fitted values", Y: "Residuals"})
	p.Add(s, zero)
	return save(p, path, size)
}

func points(x, y []float64) (plotter.XYs, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%d x values for %d y values", len(x), len(y))
	}
	if len(x) == 0 {
		return nil, errors.New("no points")
	}
	xys := make(plotter.XYs, len(x))
	for i := range xys {
		xys[i].X, xys[i].Y = x[i], y[i]
	}
	return xys, nil
}
