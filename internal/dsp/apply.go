package dsp

import (
	"fmt"

	"myo_monitor/internal/models"
)

// ApplyBandpass designs an order-3 bandpass and filters the whole of data.
// The cost is linear in len(data); nothing is carried between calls.
func ApplyBandpass(data []float64, low, high, fs float64) ([]float64, error) {
	c, err := DesignBandpass(low, high, fs, FilterOrder)
	if err != nil {
		return nil, err
	}
	return LFilter(c.B, c.A, data), nil
}

// ApplyBandstop designs an order-3 bandstop and filters the whole of data.
func ApplyBandstop(data []float64, low, high, fs float64) ([]float64, error) {
	c, err := DesignBandstop(low, high, fs, FilterOrder)
	if err != nil {
		return nil, err
	}
	return LFilter(c.B, c.A, data), nil
}

// Apply runs exactly one branch selected by cfg.Mode() over raw:
//
//	NONE      raw, unchanged
//	BANDPASS  bandpass(raw)
//	BANDSTOP  bandstop(raw)
//	BOTH      bandstop(bandpass(raw))
//
// Cutoffs are checked before each design; a failing band returns a
// *ConfigError and no output.
func Apply(cfg models.FilterConfig, raw []float64) ([]float64, error) {
	if err := validateInterval(cfg); err != nil {
		return nil, err
	}
	fs := cfg.SampleRate()

	switch cfg.Mode() {
	case models.ModeBandpass:
		return ApplyBandpass(raw, cfg.PassLow, cfg.PassHigh, fs)
	case models.ModeBandstop:
		return ApplyBandstop(raw, cfg.StopLow, cfg.StopHigh, fs)
	case models.ModeBoth:
		passed, err := ApplyBandpass(raw, cfg.PassLow, cfg.PassHigh, fs)
		if err != nil {
			return nil, err
		}
		return ApplyBandstop(passed, cfg.StopLow, cfg.StopHigh, fs)
	default:
		return append([]float64(nil), raw...), nil
	}
}

// Validate reports whether Apply would accept cfg. Every enabled filter is
// designed at FilterOrder, so cutoffs that pass the range checks but give an
// unstable design are rejected here too.
func Validate(cfg models.FilterConfig) error {
	if err := validateInterval(cfg); err != nil {
		return err
	}
	fs := cfg.SampleRate()
	if cfg.Bandpass {
		if _, err := DesignBandpass(cfg.PassLow, cfg.PassHigh, fs, FilterOrder); err != nil {
			return err
		}
	}
	if cfg.Bandstop {
		if _, err := DesignBandstop(cfg.StopLow, cfg.StopHigh, fs, FilterOrder); err != nil {
			return err
		}
	}
	return nil
}

func validateInterval(cfg models.FilterConfig) error {
	if !(cfg.SampleIntervalMs > 0) {
		return fmt.Errorf("%w: sample interval %g ms", ErrInvalidSampleRate, cfg.SampleIntervalMs)
	}
	return nil
}

// Float64s converts raw integer readings to the filter input type.
func Float64s(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
