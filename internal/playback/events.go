package playback

import (
	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/unit"
)

// StateChange is emitted when the current unit starts, pauses or stops.
type StateChange struct {
	Current unit.State
}

// TrackChange is emitted when the current song changes.
type TrackChange struct {
	Previous *media.Track
	Current  *media.Track
}

// PositionChange is emitted on public time updates.
type PositionChange struct {
	Unit bus.UnitID
	Time media.TimeState
}

// QueueChange is emitted when the queue or the backlog changes.
type QueueChange struct {
	Backlog bool
	Tracks  []media.Track
}

// ModeChange is emitted when repeat or shuffle changes.
type ModeChange struct {
	Repeat  media.RepeatMode
	Shuffle bool
}

// VolumeChange is emitted when the volume or mute flag changes.
type VolumeChange struct {
	Volume int
	Muted  bool
}

// ErrorEvent is emitted when a transport or source resolution fails.
type ErrorEvent struct {
	Operation string
	TrackID   string
	Err       error
}

// Error operations.
const (
	OpTransport = "transport"
	OpResolve   = "resolve"
)
