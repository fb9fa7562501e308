// Package window pages the visible time range over the sample history.
package window

import (
	"math"

	"myo_monitor/internal/models"
)

// DefaultTimeWidth is the page width in seconds.
const DefaultTimeWidth = 10.0

// Window returns the page [width*k, width*(k+1)] containing latest, where
// k = floor(latest/width). The range jumps a whole page at a time; it does
// not scroll. A non-positive width selects DefaultTimeWidth.
func Window(latest, width float64) models.WindowRange {
	if !(width > 0) {
		width = DefaultTimeWidth
	}
	k := math.Floor(latest / width)
	return models.WindowRange{Start: width * k, End: width * (k + 1)}
}

// Controller remembers the configured page width.
type Controller struct {
	Width float64
}

// NewController returns a Controller for width seconds.
func NewController(width float64) *Controller {
	if !(width > 0) {
		width = DefaultTimeWidth
	}
	return &Controller{Width: width}
}

// Range returns the page for the newest sample time. An empty history
// (ok == false) shows the first page.
func (c *Controller) Range(latest float64, ok bool) models.WindowRange {
	if !ok {
		latest = 0
	}
	return Window(latest, c.Width)
}
