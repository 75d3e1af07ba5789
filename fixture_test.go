package regression

// pulseTable holds six observations whose response is exactly
//
//	Pulse2 = 10 + 0.9·Pulse1 + 0.5·BMI + 2·[Gender == M] + e
//
// with e orthogonal to every design column, so OLS recovers those
// coefficients and residuals exactly.
func pulseTable() Table {
	pulse1 := []float64{70, 75, 80, 65, 72, 68}
	bmi := []float64{22, 24, 19, 21, 23, 20}
	gender := []string{"M", "F", "M", "F", "M", "F"}
	pulse2 := []float64{90, 90.5, 93.25, 78, 84.55, 81.2}

	t := Table{Columns: []string{"Pulse1", "BMI", "Gender", "Pulse2"}}
	for i := range pulse1 {
		t.Rows = append(t.Rows, Row{
			"Pulse1": Num(pulse1[i]),
			"BMI":    Num(bmi[i]),
			"Gender": Level(gender[i]),
			"Pulse2": Num(pulse2[i]),
		})
	}
	return t
}

var (
	pulseBeta      = []float64{10, 0.9, 0.5, 2}
	pulseResiduals = []float64{4, 1, -0.25, -1, -3.75, 0}
	pulseColumns   = []string{"Intercept", "Pulse1", "BMI", "Gender_M"}
)

func pulseSpec() Spec {
	return NewSpec("Pulse2", N("Pulse1"), N("BMI"), C("Gender"))
}

// withColumn returns a copy of t with column name set from values.
func withColumn(t Table, name string, values []Value) Table {
	out := Table{Columns: append(append([]string(nil), t.Columns...), name)}
	for i, row := range t.Rows {
		r := Row{}
		for k, v := range row {
			r[k] = v
		}
		r[name] = values[i]
		out.Rows = append(out.Rows, r)
	}
	return out
}

func sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}
