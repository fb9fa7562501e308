package dsp

import (
	"errors"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

var errEigenFailed = errors.New("dsp: eigen decomposition did not converge")

// Poles returns the z-plane roots of the denominator, computed as the
// eigenvalues of its companion matrix.
func (c Coefficients) Poles() ([]complex128, error) {
	a := normalized(c.A)
	n := len(a) - 1
	if n <= 0 {
		return nil, nil
	}

	comp := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		comp.Set(0, j, -a[j+1])
	}
	for i := 1; i < n; i++ {
		comp.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(comp, mat.EigenNone); !ok {
		return nil, errEigenFailed
	}
	return eig.Values(nil), nil
}

// Stable reports whether every pole lies strictly inside the unit circle.
func (c Coefficients) Stable() (bool, error) {
	poles, err := c.Poles()
	if err != nil {
		return false, err
	}
	for _, p := range poles {
		if cmplx.Abs(p) >= 1 {
			return false, nil
		}
	}
	return true, nil
}

// normalized returns a copy of a scaled so that a[0] == 1.
func normalized(a []float64) []float64 {
	out := append([]float64(nil), a...)
	if len(out) == 0 || out[0] == 1 || out[0] == 0 {
		return out
	}
	a0 := out[0]
	for i := range out {
		out[i] /= a0
	}
	return out
}
