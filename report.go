package regression

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// Report merges the fitted model and its residual diagnostics.
type Report struct {
	Model       *Model
	Diagnostics *Diagnostics
	Fingerprint uint64 // of the design matrix, see DesignMatrix.Fingerprint
}

func formatStat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

// Summary writes a plain-text summary of the report, laid out like the
// familiar OLS regression results table.
func (r *Report) Summary(w io.Writer) error {
	m, d := r.Model, r.Diagnostics
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Dep. Variable:\t%s\tR-squared:\t%s\n", m.ResponseLabel, formatStat(m.R2))
	fmt.Fprintf(tw, "Method:\tLeast Squares (%s)\tAdj. R-squared:\t%s\n", m.Method, formatStat(m.AdjustedR2))
	fmt.Fprintf(tw, "No. Observations:\t%d\tF-statistic:\t%s\n", m.NumOfObservations, formatStat(m.ANOVA.RegressionFstat))
	fmt.Fprintf(tw, "Df Residuals:\t%d\tProb (F-statistic):\t%.3g\n", m.DegreesOfFreedom, m.ANOVA.RegressionProb)
	fmt.Fprintf(tw, "Df Model:\t%d\tLog-Likelihood:\t%s\n", m.ANOVA.RegressionDegreeOfFreedom, formatStat(m.LogLikelihood))
	fmt.Fprintf(tw, "\tAIC:\t%s\n", formatStat(m.AIC))
	fmt.Fprintf(tw, "\tBIC:\t%s\n", formatStat(m.BIC))
	fmt.Fprintln(tw)

	lo, hi := (1-m.ConfidenceLevel)/2, 1-(1-m.ConfidenceLevel)/2
	fmt.Fprintf(tw, "\tcoef\tstd err\tt\tP>|t|\t[%.3f\t%.3f]\n", lo, hi)
	for _, c := range m.Coefficients() {
		fmt.Fprintf(tw, "%s\t%.4f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
			c.Label, c.Value, c.StandardError, c.TStat, c.Prob, c.ConfLow, c.ConfHigh)
	}
	fmt.Fprintln(tw)

	fmt.Fprintf(tw, "Omnibus:\t%s\tDurbin-Watson:\t%s\n", formatStat(d.Omnibus), formatStat(d.DurbinWatson))
	fmt.Fprintf(tw, "Prob(Omnibus):\t%s\tJarque-Bera (JB):\t%s\n", formatStat(d.OmnibusProb), formatStat(d.JarqueBera))
	fmt.Fprintf(tw, "Skew:\t%s\tProb(JB):\t%.3g\n", formatStat(d.Skewness), d.JarqueBeraProb)
	fmt.Fprintf(tw, "Kurtosis:\t%s\tCond. No.:\t%.3g\n", formatStat(d.Kurtosis), d.ConditionNumber)

	if len(m.ExplanatoryVars) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "\tbeta\tcorr\tpartial\tpart\ttolerance\tVIF")
		for _, ev := range m.ExplanatoryVars {
			fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
				ev.Label, ev.StandardizedCoeff, ev.Correlation, ev.PartialCorrelation, ev.PartCorrelation, ev.Tolerance, ev.VIF)
		}
	}
	return tw.Flush()
}
