package regression

import (
	"errors"
	"strconv"

	"github.com/anyappinc/heartrate/logger"
	"go.uber.org/zap"
)

// Regression is the exposed data structure for interacting with the API.
// It only holds options, so one value may serve concurrent runs.
type Regression struct {
	opts []Option
}

// NewRegression initializes the structure and returns it for interacting with regression APIs.
func NewRegression(opts ...Option) *Regression {
	return &Regression{opts: append([]Option(nil), opts...)}
}

// Fit runs a regression of table under spec with the given options.
func Fit(table Table, spec Spec, opts ...Option) (*Report, error) {
	return NewRegression(opts...).Run(table, spec)
}

// Run builds the design matrix of table under spec, solves it and returns the
// fitted model with its residual diagnostics. Every failure is returned
// unchanged; Run never retries or falls back to a reduced model.
func (r *Regression) Run(table Table, spec Spec) (*Report, error) {
	dm, err := Build(table, spec)
	if err != nil {
		return nil, err
	}

	n, p := dm.Dims()
	if n <= p {
		return nil, &InsufficientDataError{Observations: n, Parameters: p}
	}

	sol, err := Solve(dm.X, dm.Y, r.opts...)
	if err != nil {
		var se *SingularMatrixError
		if errors.As(err, &se) && se.Hint != nil {
			for _, idx := range se.Hint.Indexes {
				se.Hint.Columns = append(se.Hint.Columns, dm.Columns[idx])
			}
		}
		logger.Err("cannot solve the design matrix", zap.String("spec", spec.String()), zap.Error(err))
		return nil, err
	}

	model, err := Infer(dm, sol, r.opts...)
	if err != nil {
		return nil, err
	}

	diagnostics, err := Diagnose(sol)
	if err != nil {
		return nil, err
	}

	if diagnostics.ConditionNumber > ConditionWarningThreshold {
		logger.Warn("Large condition number, design columns may be collinear",
			zap.Float64("condition", diagnostics.ConditionNumber))
	}
	fingerprint := dm.Fingerprint()
	logger.Info("Completed: Number of design columns = "+strconv.Itoa(p),
		zap.String("spec", spec.String()),
		zap.Int("observations", n),
		zap.Stringer("method", sol.Method),
		zap.String("design", strconv.FormatUint(fingerprint, 16)))

	return &Report{Model: model, Diagnostics: diagnostics, Fingerprint: fingerprint}, nil
}
