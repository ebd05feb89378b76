package playback

import (
	"time"

	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/unit"
)

// Service defines the playback service contract.
type Service interface {
	// Playback control
	Play() error
	Pause() error
	TogglePlayback() error
	Stop() error
	Next() error
	Previous() error
	Seek(position time.Duration) error
	PlayTrack(t media.Track, context []media.Track) error

	// Volume
	SetVolume(volume int) error
	Volume() int
	Mute() error
	Unmute() error
	ToggleMute() error
	Muted() bool

	// Queue manipulation
	SetQueue(tracks []media.Track) error
	AddToQueue(t media.Track) error
	AddToQueueNext(t media.Track) error
	RemoveFromQueue(t media.Track) error
	PushToQueue(tracks ...media.Track) error
	MoveInQueue(from, to int) error
	SetBacklog(tracks []media.Track) error
	AddToBacklog(t media.Track) error
	PushToBacklog(tracks ...media.Track) error
	RemoveFromBacklog(t media.Track) error
	Restore(current *media.Track, queue, backlog []media.Track) error

	// State queries
	State() unit.State
	Phase() Phase
	CurrentSong() *media.Track
	Queue() []media.Track
	Backlog() []media.Track
	TimeState() media.TimeState

	// Mode control
	Repeat() media.RepeatMode
	SetRepeat(mode media.RepeatMode) error
	CycleRepeat() media.RepeatMode
	Shuffle() bool
	SetShuffle(enabled bool) error
	ToggleShuffle() bool
	SetAutoAdvance(enabled bool) error

	// Event subscription
	Subscribe() *Subscription
	Bus() *bus.Bus

	// Lifecycle
	Close() error
}
