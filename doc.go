// Package regression fits ordinary least-squares models over observation
// tables mixing numeric and categorical columns.
//
// A run is a fixed pipeline of pure steps:
//
//	Build    (table, spec)  -> design matrix, categorical terms dummy encoded
//	Solve    (X, y)         -> coefficients, fitted values, residuals
//	Infer    (design, sol)  -> standard errors, t/p-values, R², F-test
//	Diagnose (sol)          -> Durbin-Watson, Jarque-Bera, Omnibus, condition number
//
// Regression.Run chains the four and returns a Report. Nothing is cached
// between runs and no result is modified after it is returned, so runs over
// the same table may proceed concurrently.
package regression
