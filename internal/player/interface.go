// internal/player/interface.go
package player

import (
	"errors"
	"time"
)

var (
	// ErrNotLoaded is returned by operations that need a loaded source.
	ErrNotLoaded = errors.New("no source loaded")
	// ErrUnsupportedFormat is returned for locators no decoder handles.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrNotSeekable is returned by Seek on streaming sources.
	ErrNotSeekable = errors.New("source is not seekable")
)

// EventKind enumerates the lifecycle notifications of a transport.
type EventKind int

const (
	EventLoadStart EventKind = iota
	EventCanPlay
	EventPlay
	EventPause
	EventEnded
	EventError
	EventWaiting
	EventTimeUpdate
	EventDurationChange
	EventSeeked
)

func (k EventKind) String() string {
	switch k {
	case EventLoadStart:
		return "loadstart"
	case EventCanPlay:
		return "canplay"
	case EventPlay:
		return "play"
	case EventPause:
		return "pause"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	case EventWaiting:
		return "waiting"
	case EventTimeUpdate:
		return "timeupdate"
	case EventDurationChange:
		return "durationchange"
	case EventSeeked:
		return "seeked"
	default:
		return "unknown"
	}
}

// Event is a transport notification. Err is set for EventError.
type Event struct {
	Kind EventKind
	Err  error
}

// Interface is the media transport a playback unit drives. Event handlers
// may be called from any goroutine and must not block.
type Interface interface {
	// Load releases the current source and prepares locator, paused at
	// the start. It may block on I/O.
	Load(locator string) error
	Play() error
	Pause()
	// Stop releases the source. No event is emitted.
	Stop()
	Seek(pos time.Duration) error
	// SetVolume sets the gain, 0.0 to 1.0.
	SetVolume(level float64)
	SetMuted(muted bool)
	State() State
	Position() time.Duration
	// Duration returns a non-positive value when unknown.
	Duration() time.Duration
	Buffered() int
	OnEvent(fn func(Event))
	Close() error
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
