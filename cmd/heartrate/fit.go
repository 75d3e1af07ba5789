package main

import (
	"fmt"

	regression "github.com/anyappinc/heartrate"
	"github.com/anyappinc/heartrate/dataset"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newFitCommand(a *app) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit the configured regression model and print its summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if method != "" {
				a.cfg.Solver.Method = method
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}
			report, err := a.fit()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.Model.FormulaString())
			fmt.Fprintln(out)
			return report.Summary(out)
		},
	}
	cmd.Flags().StringVar(&method, "method", "", "solver decomposition, qr or svd")
	return cmd
}

func (a *app) fit() (*regression.Report, error) {
	frame, err := a.loadFrame()
	if err != nil {
		return nil, err
	}
	return a.fitFrame(frame)
}

func (a *app) fitFrame(frame *dataset.Frame) (*regression.Report, error) {
	spec := a.cfg.Spec()
	report, err := regression.NewRegression(a.cfg.Options()...).Run(frame.Table(), spec)
	if err != nil {
		return nil, err
	}
	a.log.Info("fitted model",
		zap.Stringer("spec", spec),
		zap.String("design", fmt.Sprintf("%016x", report.Fingerprint)),
		zap.String("method", a.cfg.Solver.Method))
	return report, nil
}
