// Command heartrate summarises the heart-rate survey and fits the
// post-exercise pulse model.
package main

import (
	"fmt"
	"os"

	"github.com/anyappinc/heartrate/config"
	"github.com/anyappinc/heartrate/dataset"
	"github.com/anyappinc/heartrate/logger"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	configPath string
	dataPath   string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{log: zap.NewNop()}
	cmd := &cobra.Command{
		Use:           "heartrate",
		Short:         "Analyse resting and post-exercise heart rates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "f", "", "YAML configuration file")
	flags.StringVar(&a.dataPath, "data", "", "survey CSV file, overrides the configured path")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output")

	cmd.AddCommand(
		newDescribeCommand(a),
		newFitCommand(a),
		newPlotCommand(a),
	)
	return cmd
}

func (a *app) setup() error {
	var err error
	if a.verbose {
		a.log, err = zap.NewDevelopment()
	} else {
		a.log, err = zap.NewProduction()
	}
	if err != nil {
		return err
	}
	a.log = a.log.With(zap.String("run", uuid.NewString()))
	logger.SetLogger(a.log.Named("regression"))

	if a.configPath == "" {
		a.cfg = config.Default()
	} else if a.cfg, err = config.Load(a.configPath); err != nil {
		return err
	}
	if a.dataPath != "" {
		a.cfg.Dataset.Path = a.dataPath
	}
	a.log.Debug("loaded config", zap.String("file", a.configPath), zap.String("data", a.cfg.Dataset.Path))
	return nil
}

// loadFrame reads the survey and adds the metric and BMI columns.
func (a *app) loadFrame() (*dataset.Frame, error) {
	frame, err := dataset.LoadFile(a.cfg.Dataset.Path, a.cfg.Schema())
	if err != nil {
		return nil, err
	}
	frame, err = frame.Derive(a.cfg.Conversion())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", a.cfg.Dataset.Path, err)
	}
	a.log.Info("loaded survey", zap.Int("rows", frame.Len()))
	return frame, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "heartrate:", err)
		os.Exit(1)
	}
}
