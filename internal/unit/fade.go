package unit

import "math"

// rampEpsilon absorbs float drift from repeated fractional steps.
const rampEpsilon = 1e-9

// Ramp is one fade direction, advanced one step per tick.
type Ramp struct {
	Level  float64
	Target float64
	Step   float64
}

// Advance moves Level one Step toward Target without passing it and
// reports whether Target has been reached. A non-positive Step jumps
// straight to Target.
func (r *Ramp) Advance() bool {
	if r.Step <= 0 {
		r.Level = r.Target
		return true
	}
	switch {
	case r.Level < r.Target:
		r.Level = min(r.Level+r.Step, r.Target)
	case r.Level > r.Target:
		r.Level = max(r.Level-r.Step, r.Target)
	}
	r.Level = clampVolume(r.Level)
	if math.Abs(r.Target-r.Level) < rampEpsilon {
		r.Level = r.Target
	}
	return r.Level == r.Target
}

// Ticks returns how many Advance calls the ramp needs to reach Target.
func (r Ramp) Ticks() int {
	n := 0
	for {
		n++
		if r.Advance() {
			return n
		}
	}
}

// StepSize is the per-tick volume change that completes a fade from volume
// over fadeSeconds, at five ticks per second.
func StepSize(volume, fadeSeconds float64) float64 {
	if fadeSeconds <= 0 {
		return volume
	}
	return volume / fadeSeconds / 5
}

// AdvanceReady reports whether a fade-in at level has progressed far enough
// to commit the song advance: within twelve steps of the target volume.
func AdvanceReady(level, volume, step float64) bool {
	return level >= volume-step*advanceWindowSteps
}

func clampVolume(v float64) float64 {
	return min(max(v, 0), 100)
}
