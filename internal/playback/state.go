package playback

// Phase is the crossfade cycle phase of the engine.
type Phase int

const (
	// PhaseIdle means no successor is being prepared.
	PhaseIdle Phase = iota
	// PhasePrefetching means the successor is being resolved or loaded.
	PhasePrefetching
	// PhaseFading means both units are audible, one fading out and one in.
	PhaseFading
	// PhaseSwapping means the queue has advanced and the roles are about to swap.
	PhaseSwapping
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhasePrefetching:
		return "Prefetching"
	case PhaseFading:
		return "Fading"
	case PhaseSwapping:
		return "Swapping"
	default:
		return "Unknown"
	}
}

// Active reports whether a cycle is in flight.
func (p Phase) Active() bool {
	return p != PhaseIdle
}
