package dsp

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCutoff     = errors.New("dsp: invalid cutoff frequencies")
	ErrInvalidSampleRate = errors.New("dsp: invalid sample rate")
	ErrInvalidOrder      = errors.New("dsp: invalid filter order")
	ErrUnstable          = errors.New("dsp: designed filter is unstable")
)

// ConfigError reports a cutoff pair that cannot be designed at the given
// sample rate. It is returned before any coefficient is computed.
type ConfigError struct {
	Band       string // "bandpass" or "bandstop"
	Low, High  float64
	SampleRate float64
	Reason     string
	Err        error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s %g-%g Hz at fs=%g Hz: %s", e.Band, e.Low, e.High, e.SampleRate, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
