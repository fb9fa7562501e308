package models

import "time"

// Batch is the set of values decoded from a single read of the serial channel.
// Times are assigned downstream by the sample buffer.
type Batch struct {
	Values     []int
	Rejected   []string // tokens that failed to parse
	ReceivedAt time.Time
}

// Empty reports whether the batch carries no usable values.
func (b Batch) Empty() bool {
	return len(b.Values) == 0
}
