package bus

import (
	"github.com/llehouerou/duet/internal/media"
)

// Event is anything published on the bus.
type Event interface {
	Topic() Topic
}

// UnitID identifies one of the two playback units. Zero means the event
// did not originate from a unit.
type UnitID int

// Signal is a payload-free event, optionally tagged with its source unit.
type Signal struct {
	Name Topic
	Unit UnitID
}

func (s Signal) Topic() Topic { return s.Name }

// TimeEvent carries a progress snapshot on time, time-internal or seeked.
type TimeEvent struct {
	Name  Topic
	Unit  UnitID
	State media.TimeState
}

func (e TimeEvent) Topic() Topic { return e.Name }

// ErrorEvent reports a transport failure on a unit.
type ErrorEvent struct {
	Unit UnitID
	Err  error
}

func (ErrorEvent) Topic() Topic { return TopicError }

// DurationEvent reports that a unit learned its source duration.
type DurationEvent struct {
	Unit  UnitID
	State media.TimeState
}

func (DurationEvent) Topic() Topic { return TopicDuration }

// SongEvent reports the new current selection. Track is nil when cleared.
type SongEvent struct {
	Track *media.Track
}

func (SongEvent) Topic() Topic { return TopicSong }

// QueueEvent carries a full snapshot of the upcoming queue.
type QueueEvent struct {
	Tracks []media.Track
}

func (QueueEvent) Topic() Topic { return TopicQueue }

// BacklogEvent carries a full snapshot of the backlog, oldest first.
type BacklogEvent struct {
	Tracks []media.Track
}

func (BacklogEvent) Topic() Topic { return TopicBacklog }

// ShuffleEvent reports the shuffle flag.
type ShuffleEvent struct {
	Enabled bool
}

func (ShuffleEvent) Topic() Topic { return TopicShuffle }

// RepeatEvent reports the repeat mode.
type RepeatEvent struct {
	Mode media.RepeatMode
}

func (RepeatEvent) Topic() Topic { return TopicRepeat }

// VolumeEvent reports the user volume (0-100).
type VolumeEvent struct {
	Volume int
}

func (VolumeEvent) Topic() Topic { return TopicVolume }

// MuteEvent reports the mute flag.
type MuteEvent struct {
	Muted bool
}

func (MuteEvent) Topic() Topic { return TopicMute }

// UnitOf returns the source unit of e, or zero.
func UnitOf(e Event) UnitID {
	switch ev := e.(type) {
	case Signal:
		return ev.Unit
	case TimeEvent:
		return ev.Unit
	case ErrorEvent:
		return ev.Unit
	case DurationEvent:
		return ev.Unit
	default:
		return 0
	}
}

// FromUnit matches events published by unit id.
func FromUnit(id UnitID) func(Event) bool {
	return func(e Event) bool { return UnitOf(e) == id }
}
