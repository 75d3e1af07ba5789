package dataset

import (
	"fmt"
)

// Derived column names.
const (
	HeightMeters    = "Height_m"
	WeightKilograms = "Weight_kg"
	BMI             = "BMI"
)

// Conversion factors of the survey's imperial units.
const (
	MetersPerInch     = 0.0254
	KilogramsPerPound = 0.453592
)

// Conversion describes how metric height, weight and BMI are derived.
type Conversion struct {
	HeightColumn string
	WeightColumn string
	HeightFactor float64 // source height unit to meters
	WeightFactor float64 // source weight unit to kilograms
}

// DefaultConversion converts Height in inches and Weight in pounds.
func DefaultConversion() Conversion {
	return Conversion{
		HeightColumn: "Height",
		WeightColumn: "Weight",
		HeightFactor: MetersPerInch,
		WeightFactor: KilogramsPerPound,
	}
}

// Derive returns a copy of f with Height_m, Weight_kg and BMI = kg / m²
// appended. Heights must be positive.
func (f *Frame) Derive(conv Conversion) (*Frame, error) {
	heights, ok := f.numeric[conv.HeightColumn]
	if !ok {
		return nil, fmt.Errorf("%w: numeric %q", ErrMissingColumn, conv.HeightColumn)
	}
	weights, ok := f.numeric[conv.WeightColumn]
	if !ok {
		return nil, fmt.Errorf("%w: numeric %q", ErrMissingColumn, conv.WeightColumn)
	}

	meters, kilograms, bmi := make([]float64, f.rows), make([]float64, f.rows), make([]float64, f.rows)
	for i := 0; i < f.rows; i++ {
		meters[i] = heights[i] * conv.HeightFactor
		kilograms[i] = weights[i] * conv.WeightFactor
		if meters[i] <= 0 {
			return nil, fmt.Errorf("row %d: non-positive height %v", i, heights[i])
		}
		bmi[i] = kilograms[i] / (meters[i] * meters[i])
	}

	out, err := f.WithNumeric(HeightMeters, meters)
	if err != nil {
		return nil, err
	}
	if out, err = out.WithNumeric(WeightKilograms, kilograms); err != nil {
		return nil, err
	}
	return out.WithNumeric(BMI, bmi)
}
