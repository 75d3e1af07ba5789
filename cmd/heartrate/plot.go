package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/anyappinc/heartrate/chart"
	"github.com/anyappinc/heartrate/dataset"
	"github.com/anyappinc/heartrate/summary"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/vg"
)

// Resting pulse is compared across these groups.
var boxGroups = []string{"Gender", "Smokes", "Activity", "Ran"}

const restingPulse = "Pulse1"

func newPlotCommand(a *app) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render the survey charts and the residual plot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir != "" {
				a.cfg.Output.ChartDir = dir
			}
			paths, err := a.plot(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", "", "chart directory, overrides the configured one")
	return cmd
}

type chartJob struct {
	name   string
	render func(path string) error
}

func (a *app) plot(ctx context.Context) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	frame, err := a.loadFrame()
	if err != nil {
		return nil, err
	}
	jobs, err := a.chartJobs(frame)
	if err != nil {
		return nil, err
	}
	report, err := a.fitFrame(frame)
	if err != nil {
		return nil, err
	}
	size := a.chartSize()
	jobs = append(jobs, chartJob{"residuals_vs_fitted", func(path string) error {
		return chart.ResidualsVsFitted(path, report.Model.Fitted(), report.Model.Residuals(), size)
	}})

	out := a.cfg.Output.ChartDir
	if err := os.MkdirAll(out, 0o755); err != nil {
		return nil, err
	}

	paths := make([]string, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	for i, job := range jobs {
		i, job := i, job
		paths[i] = filepath.Join(out, job.name+".png")
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return job.render(paths[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	a.log.Info("charts written", zap.String("dir", out), zap.Int("count", len(paths)))
	return paths, nil
}

// chartJobs prepares the exploratory charts: the BMI distribution, resting
// pulse by each group and resting pulse against BMI.
func (a *app) chartJobs(frame *dataset.Frame) ([]chartJob, error) {
	size := a.chartSize()
	bmi, ok := frame.Numeric(dataset.BMI)
	if !ok {
		return nil, fmt.Errorf("%w: %q", dataset.ErrMissingColumn, dataset.BMI)
	}
	pulse, ok := frame.Numeric(restingPulse)
	if !ok {
		return nil, fmt.Errorf("%w: %q", dataset.ErrMissingColumn, restingPulse)
	}

	dist, err := summary.Histogram(bmi, a.cfg.Output.Bins)
	if err != nil {
		return nil, err
	}
	jobs := []chartJob{
		{"bmi_distribution", func(path string) error {
			return chart.Histogram(path, chart.Labels{Title: "BMI Distribution", X: "BMI", Y: "Density"}, dist, size)
		}},
		{"pulse1_vs_bmi", func(path string) error {
			return chart.Scatter(path, chart.Labels{Title: "Pulse1 vs BMI", X: "BMI", Y: restingPulse}, bmi, pulse, size)
		}},
	}

	for _, group := range boxGroups {
		levels, ok := frame.Categorical(group)
		if !ok {
			a.log.Warn("skipping box plot, column not loaded", zap.String("column", group))
			continue
		}
		boxes, err := summary.BoxPlot(pulse, levels)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", group, err)
		}
		labels := chart.Labels{Title: restingPulse + " by " + group, X: group, Y: restingPulse}
		jobs = append(jobs, chartJob{strings.ToLower(restingPulse + "_by_" + group), func(path string) error {
			return chart.BoxPlot(path, labels, boxes, size)
		}})
	}
	return jobs, nil
}

func (a *app) chartSize() chart.Size {
	return chart.Size{
		Width:  vg.Length(a.cfg.Output.Width) * vg.Inch,
		Height: vg.Length(a.cfg.Output.Height) * vg.Inch,
	}
}
