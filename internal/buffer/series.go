// Package buffer holds the bounded, time-ordered sample history the
// pipeline refilters on every batch.
package buffer

// DefaultCapacity is the number of samples retained when none is configured.
const DefaultCapacity = 20000

// Series is a pair of parallel time/value slices. It is not safe for
// concurrent use; the pipeline consumer owns it exclusively.
type Series struct {
	capacity int
	times    []float64
	values   []int

	appended uint64
	evicted  uint64
}

// New returns an empty series retaining at most capacity samples.
// A non-positive capacity selects DefaultCapacity.
func New(capacity int) *Series {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Series{
		capacity: capacity,
		times:    make([]float64, 0, capacity),
		values:   make([]int, 0, capacity),
	}
}

// Append adds values in order, each dt seconds after its predecessor, then
// applies the chunk-boundary correction. It returns the index of the first
// appended sample, or -1 when values is empty.
//
// The correction overwrites two values, never times: the first appended
// sample takes its successor's value and the last sample of the series takes
// its predecessor's value. Either step is skipped when the neighbour does
// not exist.
func (s *Series) Append(values []int, dt float64) int {
	if len(values) == 0 {
		return -1
	}

	first := len(s.values)
	prev, _ := s.LatestTime()
	for _, v := range values {
		prev += dt
		s.times = append(s.times, prev)
		s.values = append(s.values, v)
	}
	s.appended += uint64(len(values))

	last := len(s.values) - 1
	if first+1 <= last {
		s.values[first] = s.values[first+1]
	}
	if last >= 1 {
		s.values[last] = s.values[last-1]
	}
	return first
}

// Evict drops the oldest samples beyond capacity and returns how many were removed.
func (s *Series) Evict() int {
	over := len(s.values) - s.capacity
	if over <= 0 {
		return 0
	}
	s.times = append(s.times[:0], s.times[over:]...)
	s.values = append(s.values[:0], s.values[over:]...)
	s.evicted += uint64(over)
	return over
}

// Len returns the number of retained samples.
func (s *Series) Len() int {
	return len(s.values)
}

// Capacity returns the retention limit.
func (s *Series) Capacity() int {
	return s.capacity
}

// LatestTime returns the time of the newest sample; ok is false when empty.
func (s *Series) LatestTime() (t float64, ok bool) {
	if len(s.times) == 0 {
		return 0, false
	}
	return s.times[len(s.times)-1], true
}

// Times returns a copy of the time axis.
func (s *Series) Times() []float64 {
	return append([]float64(nil), s.times...)
}

// Values returns a copy of the raw values.
func (s *Series) Values() []int {
	return append([]int(nil), s.values...)
}

// Counters returns the total number of samples ever appended and evicted.
// appended-evicted equals Len.
func (s *Series) Counters() (appended, evicted uint64) {
	return s.appended, s.evicted
}
