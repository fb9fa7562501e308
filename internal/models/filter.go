package models

// FilterMode selects which filters run over the retained history.
type FilterMode string

const (
	ModeNone     FilterMode = "NONE"
	ModeBandpass FilterMode = "BANDPASS"
	ModeBandstop FilterMode = "BANDSTOP"
	ModeBoth     FilterMode = "BOTH"
)

// FilterConfig is the operator-owned filter configuration. It is re-read on
// every batch, so a change applies to the whole retained history on the next cycle.
type FilterConfig struct {
	Bandpass         bool    `json:"bandpass"`
	Bandstop         bool    `json:"bandstop"`
	PassLow          float64 `json:"pass_low"`           // Hz
	PassHigh         float64 `json:"pass_high"`          // Hz
	StopLow          float64 `json:"stop_low"`           // Hz
	StopHigh         float64 `json:"stop_high"`          // Hz
	SampleIntervalMs float64 `json:"sample_interval_ms"` // ms between samples
}

// Mode derives the filter mode from the two independent toggles.
func (c FilterConfig) Mode() FilterMode {
	switch {
	case c.Bandpass && c.Bandstop:
		return ModeBoth
	case c.Bandpass:
		return ModeBandpass
	case c.Bandstop:
		return ModeBandstop
	default:
		return ModeNone
	}
}

// Step returns the sample interval in seconds.
func (c FilterConfig) Step() float64 {
	return c.SampleIntervalMs / 1000
}

// SampleRate returns the sampling frequency in Hz (1/Step).
func (c FilterConfig) SampleRate() float64 {
	if c.SampleIntervalMs == 0 {
		return 0
	}
	return 1000 / c.SampleIntervalMs
}
