package unit

// State is the observable lifecycle state of a playback unit.
type State int

const (
	StateStopped State = iota
	StateLoading
	StateIdle
	StatePlaying
	StatePaused
	StateBuffering
	StateEnded
	StateError
)

// String returns the state name as reported to consumers.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "STOPPED"
	case StateLoading:
		return "LOADING"
	case StateIdle:
		return "IDLE"
	case StatePlaying:
		return "PLAYING"
	case StatePaused:
		return "PAUSED"
	case StateBuffering:
		return "BUFFERING"
	case StateEnded:
		return "ENDED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
