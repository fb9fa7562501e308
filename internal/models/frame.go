package models

import (
	"sort"
	"time"
)

// WindowRange is the visible time page [Start, End] in seconds.
type WindowRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Frame is one published pipeline result: the filtered series over the whole
// retained history plus the page an external renderer should display.
type Frame struct {
	Seq       uint64      `json:"seq"`
	Time      []float64   `json:"time"`
	Values    []float64   `json:"values"`
	Window    WindowRange `json:"window"`
	Mode      FilterMode  `json:"mode"`
	Appended  uint64      `json:"appended"` // samples received since start; the newest sample's position
	Evicted   uint64      `json:"evicted"`  // samples dropped to stay within the data width
	Error     string      `json:"error,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Visible returns a copy of the frame trimmed to the points inside Window.
// Time is non-decreasing, so the visible points form one contiguous run.
func (f Frame) Visible() Frame {
	out := f
	lo := sort.SearchFloat64s(f.Time, f.Window.Start)
	hi := lo
	for hi < len(f.Time) && f.Time[hi] <= f.Window.End {
		hi++
	}
	out.Time = append([]float64(nil), f.Time[lo:hi]...)
	out.Values = append([]float64(nil), f.Values[lo:hi]...)
	return out
}
