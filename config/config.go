// Package config holds the settings of a heart-rate analysis run.
package config

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	regression "github.com/anyappinc/heartrate"
	"github.com/anyappinc/heartrate/dataset"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Model   ModelConfig   `yaml:"model"`
	Solver  SolverConfig  `yaml:"solver"`
	Output  OutputConfig  `yaml:"output"`
}

type DatasetConfig struct {
	Path        string     `yaml:"path"`
	Separator   string     `yaml:"separator"`
	Numeric     []string   `yaml:"numeric"`
	Categorical []string   `yaml:"categorical"`
	Height      UnitConfig `yaml:"height"`
	Weight      UnitConfig `yaml:"weight"`
}

// UnitConfig names a measurement column and its factor to the metric unit.
type UnitConfig struct {
	Column string  `yaml:"column"`
	Factor float64 `yaml:"factor"`
}

type ModelConfig struct {
	Response string       `yaml:"response"`
	Terms    []TermConfig `yaml:"terms"`
}

type TermConfig struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"` // numeric (default) or categorical
	Reference string `yaml:"reference,omitempty"`
}

type SolverConfig struct {
	Method          string  `yaml:"method"`
	Tolerance       float64 `yaml:"tolerance"`
	ConfidenceLevel float64 `yaml:"confidenceLevel"`
}

type OutputConfig struct {
	ChartDir string  `yaml:"chartDir"`
	Width    float64 `yaml:"width"`  // inches
	Height   float64 `yaml:"height"` // inches
	Bins     int     `yaml:"bins"`
}

// Default returns the analysis of the heart-rate survey:
// Pulse2 ~ Pulse1 + BMI + C(Gender) + C(Smokes) + C(Activity) + C(Ran).
func Default() *Config {
	conv := dataset.DefaultConversion()
	return &Config{
		Dataset: DatasetConfig{
			Path:        "heart_rate_data.csv",
			Separator:   string(dataset.DefaultSeparator),
			Numeric:     []string{"Height", "Weight", "Pulse1", "Pulse2"},
			Categorical: []string{"Gender", "Smokes", "Activity", "Ran"},
			Height:      UnitConfig{Column: conv.HeightColumn, Factor: conv.HeightFactor},
			Weight:      UnitConfig{Column: conv.WeightColumn, Factor: conv.WeightFactor},
		},
		Model: ModelConfig{
			Response: "Pulse2",
			Terms: []TermConfig{
				{Name: "Pulse1", Kind: "numeric"},
				{Name: dataset.BMI, Kind: "numeric"},
				{Name: "Gender", Kind: "categorical"},
				{Name: "Smokes", Kind: "categorical"},
				{Name: "Activity", Kind: "categorical"},
				{Name: "Ran", Kind: "categorical"},
			},
		},
		Solver: SolverConfig{
			Method:          regression.MethodQR.String(),
			Tolerance:       regression.DefaultTolerance,
			ConfidenceLevel: regression.DefaultConfidenceLevel,
		},
		Output: OutputConfig{
			ChartDir: "charts",
			Width:    8,
			Height:   5,
			Bins:     10,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(file, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration describes a runnable analysis.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Dataset.Separator) > 1 {
		return fmt.Errorf("separator %q is not a single character", c.Dataset.Separator)
	}
	if c.Dataset.Height.Factor <= 0 || c.Dataset.Weight.Factor <= 0 {
		return errors.New("unit factors must be positive")
	}
	if c.Model.Response == "" {
		return errors.New("model response is empty")
	}
	if len(c.Model.Terms) == 0 {
		return errors.New("model has no terms")
	}
	for _, t := range c.Model.Terms {
		if _, err := termKind(t); err != nil {
			return err
		}
	}
	if _, err := regression.ParseMethod(c.Solver.Method); err != nil {
		return err
	}
	if c.Solver.Tolerance <= 0 {
		return fmt.Errorf("tolerance %g is not positive", c.Solver.Tolerance)
	}
	if c.Solver.ConfidenceLevel <= 0 || c.Solver.ConfidenceLevel >= 1 {
		return fmt.Errorf("confidence level %g is outside (0, 1)", c.Solver.ConfidenceLevel)
	}
	if c.Output.Bins < 1 {
		return fmt.Errorf("bins %d is not positive", c.Output.Bins)
	}
	return nil
}

func termKind(t TermConfig) (regression.TermKind, error) {
	switch t.Kind {
	case "", "numeric":
		return regression.NumericTerm, nil
	case "categorical":
		return regression.CategoricalTerm, nil
	}
	return 0, fmt.Errorf("term %q: unknown kind %q", t.Name, t.Kind)
}

// Schema returns the columns to load.
func (c *Config) Schema() dataset.Schema {
	s := dataset.Schema{}
	if r, _ := utf8.DecodeRuneInString(c.Dataset.Separator); r != utf8.RuneError {
		s.Separator = r
	}
	for _, name := range c.Dataset.Numeric {
		s.Columns = append(s.Columns, dataset.Column{Name: name, Kind: dataset.Numeric})
	}
	for _, name := range c.Dataset.Categorical {
		s.Columns = append(s.Columns, dataset.Column{Name: name, Kind: dataset.Categorical})
	}
	return s
}

// Conversion returns the metric conversion of height and weight.
func (c *Config) Conversion() dataset.Conversion {
	return dataset.Conversion{
		HeightColumn: c.Dataset.Height.Column,
		WeightColumn: c.Dataset.Weight.Column,
		HeightFactor: c.Dataset.Height.Factor,
		WeightFactor: c.Dataset.Weight.Factor,
	}
}

// Spec returns the model specification. The configuration must be valid.
func (c *Config) Spec() regression.Spec {
	terms := make([]regression.Term, len(c.Model.Terms))
	for i, t := range c.Model.Terms {
		kind, _ := termKind(t)
		terms[i] = regression.Term{Name: t.Name, Kind: kind, Reference: t.Reference}
	}
	return regression.NewSpec(c.Model.Response, terms...)
}

// Options returns the solver options. The configuration must be valid.
func (c *Config) Options() []regression.Option {
	method, _ := regression.ParseMethod(c.Solver.Method)
	return []regression.Option{
		regression.WithMethod(method),
		regression.WithTolerance(c.Solver.Tolerance),
		regression.WithConfidenceLevel(c.Solver.ConfidenceLevel),
	}
}
