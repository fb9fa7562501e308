// Package dsp designs and applies the digital Butterworth band filters run
// over the acquired sample history.
//
// Designs follow the analog-prototype route: an order-N Butterworth lowpass
// prototype is transformed to a bandpass or bandstop around pre-warped band
// edges, mapped to the z-plane with the bilinear transform and expanded to
// transfer-function coefficients (b, a).
package dsp

import (
	"fmt"
	"math"
	"math/cmplx"
)

const (
	// DefaultOrder is used when a design is requested with order 0.
	DefaultOrder = 2
	// FilterOrder is the order every Apply* call designs with.
	FilterOrder = 3
)

// designRate is the normalised sample rate the prototype is warped against;
// edges are expressed as fractions of Nyquist, so fs=2 maps Nyquist to 1.
const designRate = 2.0

// Coefficients holds a transfer function in ascending powers of z^-1.
// A[0] is normalised to 1.
type Coefficients struct {
	B []float64 // feedforward (numerator)
	A []float64 // feedback (denominator)
}

// Order returns the polynomial order of the denominator.
func (c Coefficients) Order() int {
	return len(c.A) - 1
}

type band int

const (
	bandpass band = iota
	bandstop
)

func (b band) String() string {
	if b == bandstop {
		return "bandstop"
	}
	return "bandpass"
}

// DesignBandpass returns an order-N Butterworth bandpass passing [low, high] Hz
// at sample rate fs. The resulting transfer function has order 2N.
// An order of 0 selects DefaultOrder.
func DesignBandpass(low, high, fs float64, order int) (Coefficients, error) {
	return design(bandpass, low, high, fs, order)
}

// DesignBandstop returns an order-N Butterworth bandstop rejecting [low, high] Hz
// at sample rate fs. An order of 0 selects DefaultOrder.
func DesignBandstop(low, high, fs float64, order int) (Coefficients, error) {
	return design(bandstop, low, high, fs, order)
}

func validateBand(b band, low, high, fs float64) error {
	fail := func(reason string, err error) error {
		return &ConfigError{Band: b.String(), Low: low, High: high, SampleRate: fs, Reason: reason, Err: err}
	}
	if !(fs > 0) || math.IsInf(fs, 0) {
		return fail("sample rate must be positive", ErrInvalidSampleRate)
	}
	nyq := fs / 2
	switch {
	case !(low > 0):
		return fail("low cutoff must be positive", ErrInvalidCutoff)
	case !(low < high):
		return fail("low cutoff must be below high cutoff", ErrInvalidCutoff)
	case !(high < nyq):
		return fail(fmt.Sprintf("high cutoff must be below Nyquist (%g Hz)", nyq), ErrInvalidCutoff)
	}
	return nil
}

func design(b band, low, high, fs float64, order int) (Coefficients, error) {
	if order == 0 {
		order = DefaultOrder
	}
	if order < 0 {
		return Coefficients{}, fmt.Errorf("%w: %d", ErrInvalidOrder, order)
	}
	if err := validateBand(b, low, high, fs); err != nil {
		return Coefficients{}, err
	}

	nyq := fs / 2
	w1 := prewarp(low / nyq)
	w2 := prewarp(high / nyq)
	bw := w2 - w1
	wo := math.Sqrt(w1 * w2)

	var z, p []complex128
	var k float64
	switch b {
	case bandstop:
		z, p, k = lowpassToBandstop(prototypePoles(order), wo, bw)
	default:
		z, p, k = lowpassToBandpass(prototypePoles(order), wo, bw)
	}
	z, p, k = bilinear(z, p, k, designRate)

	c := Coefficients{B: expand(z), A: expand(p)}
	for i := range c.B {
		c.B[i] *= k
	}

	// A denominator whose roots cannot be located is treated as unstable.
	if stable, err := c.Stable(); err != nil || !stable {
		return Coefficients{}, &ConfigError{
			Band: b.String(), Low: low, High: high, SampleRate: fs,
			Reason: fmt.Sprintf("order %d design is numerically unstable", order),
			Err:    ErrUnstable,
		}
	}
	return c, nil
}

// prewarp maps a Nyquist-normalised edge onto the analog frequency axis.
func prewarp(w float64) float64 {
	return 2 * designRate * math.Tan(math.Pi*w/designRate)
}

// prototypePoles returns the poles of the unit-cutoff analog Butterworth lowpass.
func prototypePoles(order int) []complex128 {
	poles := make([]complex128, 0, order)
	for m := -order + 1; m < order; m += 2 {
		theta := math.Pi * float64(m) / float64(2*order)
		poles = append(poles, -cmplx.Exp(complex(0, theta)))
	}
	return poles
}

// lowpassToBandpass moves the prototype to a band centred at wo with width bw.
// Each prototype pole splits into two; N zeros land at the origin.
func lowpassToBandpass(p []complex128, wo, bw float64) ([]complex128, []complex128, float64) {
	wo2 := complex(wo*wo, 0)
	half := complex(bw/2, 0)

	poles := make([]complex128, 0, 2*len(p))
	for _, x := range p {
		lp := x * half
		r := cmplx.Sqrt(lp*lp - wo2)
		poles = append(poles, lp+r, lp-r)
	}
	zeros := make([]complex128, len(p))
	return zeros, poles, math.Pow(bw, float64(len(p)))
}

// lowpassToBandstop inverts the prototype to a highpass and splits it around wo.
// Zeros sit on the imaginary axis at ±j*wo, N of each.
func lowpassToBandstop(p []complex128, wo, bw float64) ([]complex128, []complex128, float64) {
	wo2 := complex(wo*wo, 0)
	half := complex(bw/2, 0)

	poles := make([]complex128, 0, 2*len(p))
	zeros := make([]complex128, 0, 2*len(p))
	prod := complex(1, 0)
	for _, x := range p {
		hp := half / x
		r := cmplx.Sqrt(hp*hp - wo2)
		poles = append(poles, hp+r, hp-r)
		zeros = append(zeros, complex(0, wo), complex(0, -wo))
		prod *= -x
	}
	return zeros, poles, real(1 / prod)
}

// bilinear maps analog zeros, poles and gain to the z-plane. Zeros at infinity
// become zeros at z = -1.
func bilinear(z, p []complex128, k, fs float64) ([]complex128, []complex128, float64) {
	fs2 := complex(2*fs, 0)

	num := complex(1, 0)
	zd := make([]complex128, 0, len(p))
	for _, x := range z {
		zd = append(zd, (fs2+x)/(fs2-x))
		num *= fs2 - x
	}
	for len(zd) < len(p) {
		zd = append(zd, -1)
	}

	den := complex(1, 0)
	pd := make([]complex128, len(p))
	for i, x := range p {
		pd[i] = (fs2 + x) / (fs2 - x)
		den *= fs2 - x
	}
	return zd, pd, k * real(num/den)
}

// expand multiplies out prod(1 - r*z^-1) and keeps the real part; roots come
// in conjugate pairs so the imaginary residue is rounding noise.
func expand(roots []complex128) []float64 {
	c := make([]complex128, 1, len(roots)+1)
	c[0] = 1
	for _, r := range roots {
		c = append(c, 0)
		for i := len(c) - 1; i > 0; i-- {
			c[i] -= r * c[i-1]
		}
	}
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = real(v)
	}
	return out
}
