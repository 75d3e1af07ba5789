package regression

import (
	"fmt"
	"strings"
)

// Method selects the decomposition used by the solver.
type Method int

const (
	// MethodQR solves by QR decomposition and back substitution.
	MethodQR Method = iota
	// MethodSVD solves by thin singular value decomposition.
	MethodSVD
)

func (m Method) String() string {
	if m == MethodSVD {
		return "svd"
	}
	return "qr"
}

// ParseMethod returns the Method named s, case-insensitively.
// The empty string selects MethodQR.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "qr":
		return MethodQR, nil
	case "svd":
		return MethodSVD, nil
	}
	return MethodQR, fmt.Errorf("%w: unknown method %q", ErrInvalidArgument, s)
}

const (
	// DefaultTolerance is the relative singular value below which a design
	// column counts as linearly dependent.
	DefaultTolerance = 1e-10
	// DefaultConfidenceLevel is the coverage of the reported coefficient intervals.
	DefaultConfidenceLevel = 0.95
	// ConditionWarningThreshold is the condition number above which a run logs a
	// multicollinearity warning.
	ConditionWarningThreshold = 30
)

type options struct {
	method     Method
	tolerance  float64
	confidence float64
}

func defaultOptions() options {
	return options{
		method:     MethodQR,
		tolerance:  DefaultTolerance,
		confidence: DefaultConfidenceLevel,
	}
}

func newOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a regression run.
type Option func(*options)

// WithMethod selects the solver decomposition.
func WithMethod(m Method) Option {
	return func(o *options) { o.method = m }
}

// WithTolerance sets the rank tolerance relative to the largest singular
// value. Non-positive values keep the default.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		if tol > 0 {
			o.tolerance = tol
		}
	}
}

// WithConfidenceLevel sets the coverage of coefficient confidence intervals.
// Values outside (0, 1) keep the default.
func WithConfidenceLevel(level float64) Option {
	return func(o *options) {
		if level > 0 && level < 1 {
			o.confidence = level
		}
	}
}
