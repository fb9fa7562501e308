package dsp

// LFilter runs the causal IIR recurrence defined by (b, a) once over x with
// zero initial state and returns a new slice of the same length.
//
// It is a Direct Form II Transposed implementation:
//
//	y[n]   = b[0]*x[n] + d[0]
//	d[i]   = b[i+1]*x[n] - a[i+1]*y[n] + d[i+1]
//
// Coefficients are normalised by a[0]; the shorter of b and a is zero-padded.
func LFilter(b, a, x []float64) []float64 {
	y := make([]float64, len(x))
	if len(x) == 0 || len(b) == 0 || len(a) == 0 || a[0] == 0 {
		return y
	}

	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	bn := make([]float64, n)
	an := make([]float64, n)
	for i, v := range b {
		bn[i] = v / a[0]
	}
	for i, v := range a {
		an[i] = v / a[0]
	}

	if n == 1 {
		for i, v := range x {
			y[i] = bn[0] * v
		}
		return y
	}

	d := make([]float64, n-1)
	for i, v := range x {
		out := bn[0]*v + d[0]
		for j := 0; j < n-2; j++ {
			d[j] = bn[j+1]*v - an[j+1]*out + d[j+1]
		}
		d[n-2] = bn[n-1]*v - an[n-1]*out
		y[i] = out
	}
	return y
}
