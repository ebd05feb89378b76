package media

import (
	"math"
	"time"
)

// Unbounded is reported as Remaining when the duration is not known
// (live streams, sources still loading).
const Unbounded = time.Duration(math.MaxInt64)

// TimeState is a snapshot of a unit's playback progress.
type TimeState struct {
	Position   time.Duration
	Duration   time.Duration
	Remaining  time.Duration
	Buffered   int
	Percentage float64
}

// NewTimeState derives Remaining and Percentage from position and duration.
// A non-positive duration means unknown.
func NewTimeState(position, duration time.Duration, buffered int) TimeState {
	ts := TimeState{
		Position:  position,
		Duration:  duration,
		Remaining: Unbounded,
		Buffered:  buffered,
	}
	if duration > 0 {
		ts.Remaining = max(duration-position, 0)
		ts.Percentage = min(float64(position)/float64(duration)*100, 100)
	}
	return ts
}

// Known reports whether the duration is known.
func (ts TimeState) Known() bool {
	return ts.Duration > 0
}
