// internal/player/state.go
package player

// State represents the transport state machine.
//
//	┌──────────┐  load   ┌──────────┐  ok   ┌──────────┐  play  ┌──────────┐
//	│ Stopped  │ ──────▶ │ Loading  │ ────▶ │  Ready   │ ─────▶ │ Playing  │
//	└──────────┘         └──────────┘       └──────────┘        └──────────┘
//	     ▲                    │ fail                               │    ▲
//	     │ stop               ▼                              pause │    │ play
//	     │               ┌──────────┐                              ▼    │
//	     └───────────────│  Failed  │                         ┌──────────┐
//	                     └──────────┘                         │  Paused  │
//	                                                          └──────────┘
//
// Stop returns to Stopped from any state. Ended playback lands in Ended,
// from which Seek and Play restart the source.
type State int

const (
	Stopped State = iota
	Loading
	Ready
	Playing
	Paused
	Ended
	Failed
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Loading:
		return "Loading"
	case Ready:
		return "Ready"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Ended:
		return "Ended"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// HasSource reports whether a decoded source is attached.
func (s State) HasSource() bool {
	return s == Ready || s == Playing || s == Paused || s == Ended
}

// CanPlay returns true if Play would start or resume output.
func (s State) CanPlay() bool {
	return s == Ready || s == Paused || s == Ended
}
