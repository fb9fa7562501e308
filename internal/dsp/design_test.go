package dsp

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"myo_monitor/internal/models"
)

// response evaluates |H(e^{jw})| of (b, a) at freq Hz for sample rate fs.
func response(c Coefficients, freq, fs float64) float64 {
	w := 2 * math.Pi * freq / fs
	zinv := cmplx.Exp(complex(0, -w))
	eval := func(p []float64) complex128 {
		var acc complex128
		pow := complex(1, 0)
		for _, v := range p {
			acc += complex(v, 0) * pow
			pow *= zinv
		}
		return acc
	}
	return cmplx.Abs(eval(c.B) / eval(c.A))
}

func requireNear(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Fatalf("%s: got %.12g, want %.12g (tol %g)", name, got, want, tol)
	}
}

func requireSliceNear(t *testing.T, name string, got, want []float64, tol float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: len %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("%s[%d]: got %.12g, want %.12g", name, i, got[i], want[i])
		}
	}
}

func TestDesignBandpass_ReferenceCoefficients(t *testing.T) {
	c, err := DesignBandpass(30, 100, 1000, FilterOrder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Order() != 6 {
		t.Fatalf("order: got %d, want 6", c.Order())
	}
	requireSliceNear(t, "b", c.B, []float64{
		0.0071676674, 0, -0.0215030023, 0, 0.0215030023, 0, -0.0071676674,
	}, 1e-8)
	requireSliceNear(t, "a", c.A, []float64{
		1, -4.8211035764, 9.952396702, -11.2711605635, 7.3917107079, -2.6625955681, 0.411839133,
	}, 1e-7)
}

func TestDesignBandstop_ReferenceCoefficients(t *testing.T) {
	c, err := DesignBandstop(30, 100, 1000, FilterOrder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireSliceNear(t, "b[:4]", c.B[:4], []float64{
		0.641786965, -3.6212286464, 8.7361863065, -11.5124024151,
	}, 1e-7)
	// Bandstop numerators are palindromic.
	for i := range c.B {
		requireNear(t, "symmetry", c.B[i], c.B[len(c.B)-1-i], 1e-9)
	}
	requireSliceNear(t, "a", c.A, []float64{
		1, -4.8211035764, 9.952396702, -11.2711605635, 7.3917107079, -2.6625955681, 0.411839133,
	}, 1e-7)
}

func TestDesignBandpass_DefaultOrder(t *testing.T) {
	c, err := DesignBandpass(30, 100, 1000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	requireSliceNear(t, "b", c.B, []float64{0.0365748358, 0, -0.0731496717, 0, 0.0365748358}, 1e-8)
	if len(c.A) != 5 {
		t.Fatalf("a: len %d, want 5", len(c.A))
	}
}

func TestDesign_FrequencyResponse(t *testing.T) {
	const fs = 1000.0
	halfPower := 1 / math.Sqrt2

	bp, err := DesignBandpass(30, 100, fs, FilterOrder)
	if err != nil {
		t.Fatalf("bandpass: %v", err)
	}
	requireNear(t, "bandpass |H(30)|", response(bp, 30, fs), halfPower, 1e-6)
	requireNear(t, "bandpass |H(100)|", response(bp, 100, fs), halfPower, 1e-6)
	requireNear(t, "bandpass |H(centre)|", response(bp, 55.22424412341013, fs), 1, 1e-6)
	requireNear(t, "bandpass |H(0)|", response(bp, 0, fs), 0, 1e-9)
	requireNear(t, "bandpass |H(nyq)|", response(bp, fs/2, fs), 0, 1e-9)

	bs, err := DesignBandstop(30, 100, fs, FilterOrder)
	if err != nil {
		t.Fatalf("bandstop: %v", err)
	}
	requireNear(t, "bandstop |H(0)|", response(bs, 0, fs), 1, 1e-6)
	requireNear(t, "bandstop |H(nyq)|", response(bs, fs/2, fs), 1, 1e-6)
	requireNear(t, "bandstop |H(centre)|", response(bs, 55.22424412341013, fs), 0, 1e-6)

	notch, err := DesignBandstop(40, 60, fs, FilterOrder)
	if err != nil {
		t.Fatalf("notch: %v", err)
	}
	requireNear(t, "notch |H(40)|", response(notch, 40, fs), halfPower, 1e-6)
	requireNear(t, "notch |H(60)|", response(notch, 60, fs), halfPower, 1e-6)
}

func TestDesign_PolesInsideUnitCircle(t *testing.T) {
	c, err := DesignBandpass(30, 100, 1000, FilterOrder)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	poles, err := c.Poles()
	if err != nil {
		t.Fatalf("poles: %v", err)
	}
	if len(poles) != 6 {
		t.Fatalf("poles: got %d, want 6", len(poles))
	}
	var maxMag float64
	for _, p := range poles {
		maxMag = math.Max(maxMag, cmplx.Abs(p))
	}
	requireNear(t, "max |pole|", maxMag, 0.9456, 1e-3)
}

func TestDesign_InvalidCutoffs(t *testing.T) {
	cases := []struct {
		name      string
		low, high float64
		fs        float64
		want      error
	}{
		{"zero low", 0, 100, 1000, ErrInvalidCutoff},
		{"negative low", -5, 100, 1000, ErrInvalidCutoff},
		{"inverted", 100, 30, 1000, ErrInvalidCutoff},
		{"equal", 50, 50, 1000, ErrInvalidCutoff},
		{"at nyquist", 30, 500, 1000, ErrInvalidCutoff},
		{"above nyquist", 30, 600, 1000, ErrInvalidCutoff},
		{"zero rate", 30, 100, 0, ErrInvalidSampleRate},
		{"nan rate", 30, 100, math.NaN(), ErrInvalidSampleRate},
		{"nan low", math.NaN(), 100, 1000, ErrInvalidCutoff},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DesignBandpass(tc.low, tc.high, tc.fs, FilterOrder)
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if cfgErr.Band != "bandpass" {
				t.Errorf("band: got %q", cfgErr.Band)
			}
		})
	}
}

func TestDesign_NegativeOrder(t *testing.T) {
	if _, err := DesignBandstop(40, 60, 1000, -1); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("got %v, want ErrInvalidOrder", err)
	}
}

func TestValidate_RejectsReversedBand(t *testing.T) {
	err := Validate(models.FilterConfig{Bandstop: true, StopLow: 60, StopHigh: 40, SampleIntervalMs: 1})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Band != "bandstop" {
		t.Fatalf("expected bandstop ConfigError, got %v", err)
	}
	if err := Validate(models.FilterConfig{Bandpass: true, PassLow: 30, PassHigh: 100, SampleIntervalMs: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// Narrow bands far below fs put the order-3 poles on the unit circle in
// float64; the cutoffs are in range but the design is unusable.
func TestValidate_RejectsUnstableDesign(t *testing.T) {
	cases := []struct {
		name string
		cfg  models.FilterConfig
		band string
	}{
		{"bandpass 0.5-1 Hz", models.FilterConfig{Bandpass: true, PassLow: 0.5, PassHigh: 1, SampleIntervalMs: 1}, "bandpass"},
		{"bandpass 0.1-0.2 Hz", models.FilterConfig{Bandpass: true, PassLow: 0.1, PassHigh: 0.2, SampleIntervalMs: 1}, "bandpass"},
		{"bandstop 0.5-1 Hz", models.FilterConfig{Bandstop: true, StopLow: 0.5, StopHigh: 1, SampleIntervalMs: 1}, "bandstop"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.cfg)
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if !errors.Is(err, ErrUnstable) || cfgErr.Band != tc.band {
				t.Fatalf("got %v (band %q), want %s ErrUnstable", err, cfgErr.Band, tc.band)
			}

			_, applyErr := Apply(tc.cfg, make([]float64, 16))
			if !errors.As(applyErr, &cfgErr) || !errors.Is(applyErr, ErrUnstable) {
				t.Fatalf("Apply: got %v, want ConfigError wrapping ErrUnstable", applyErr)
			}
		})
	}
}
