package main

import (
	"github.com/anyappinc/heartrate/summary"
	"github.com/spf13/cobra"
)

func newDescribeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [COLUMN]...",
		Short: "Print summary statistics of numeric columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			frame, err := a.loadFrame()
			if err != nil {
				return err
			}
			ds, err := summary.Describe(frame, args...)
			if err != nil {
				return err
			}
			return summary.Fprint(cmd.OutOrStdout(), ds)
		},
	}
}
