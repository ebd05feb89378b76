package playlist

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
)

// ErrQueueEmpty is returned when an advance needs a queued track.
var ErrQueueEmpty = errors.New("queue is empty")

// ErrNotQueued is returned when a picked track has left the queue.
var ErrNotQueued = errors.New("track not in queue")

// Option configures a Manager.
type Option func(*Manager)

// WithRand sets the random source used for shuffle picks.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithBacklogLimit bounds the backlog. Zero keeps it unbounded.
func WithBacklogLimit(n int) Option {
	return func(m *Manager) { m.backlog = NewBacklog(n) }
}

// Manager owns the upcoming queue, the backlog and the current selection,
// and publishes a full snapshot after every mutation. It is not safe for
// concurrent use; the engine calls it from its scheduler.
type Manager struct {
	bus     *bus.Bus
	rng     *rand.Rand
	queue   *Playlist
	backlog *Backlog
	current *media.Track
	pending string
	shuffle bool
	repeat  media.RepeatMode
}

// NewManager creates an empty manager publishing on b.
func NewManager(b *bus.Bus, opts ...Option) *Manager {
	m := &Manager{
		bus:     b,
		queue:   NewPlaylist(),
		backlog: NewBacklog(0),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return m
}

func (m *Manager) publishQueue() {
	m.bus.Publish(bus.QueueEvent{Tracks: m.queue.Tracks()})
}

func (m *Manager) publishBacklog() {
	m.bus.Publish(bus.BacklogEvent{Tracks: m.backlog.Tracks()})
}

func (m *Manager) publishSong() {
	m.bus.Publish(bus.SongEvent{Track: media.ClonePtr(m.current)})
}

// Queue returns a copy of the upcoming tracks.
func (m *Manager) Queue() []media.Track { return m.queue.Tracks() }

// Backlog returns a copy of the played tracks, oldest first.
func (m *Manager) Backlog() []media.Track { return m.backlog.Tracks() }

// Current returns a copy of the current selection, or nil.
func (m *Manager) Current() *media.Track { return media.ClonePtr(m.current) }

// QueueLen returns the number of upcoming tracks.
func (m *Manager) QueueLen() int { return m.queue.Len() }

// BacklogLen returns the number of played tracks.
func (m *Manager) BacklogLen() int { return m.backlog.Len() }

// Shuffle reports whether shuffle is on.
func (m *Manager) Shuffle() bool { return m.shuffle }

// Repeat returns the repeat mode.
func (m *Manager) Repeat() media.RepeatMode { return m.repeat }

// SetQueue replaces the queue with copies of tracks.
func (m *Manager) SetQueue(tracks []media.Track) {
	m.queue.Set(tracks)
	m.publishQueue()
}

// AddToQueue appends a copy of t.
func (m *Manager) AddToQueue(t media.Track) {
	m.queue.Add(t)
	m.publishQueue()
}

// PushToQueue appends copies of tracks.
func (m *Manager) PushToQueue(tracks ...media.Track) {
	m.queue.Add(tracks...)
	m.publishQueue()
}

// AddToQueueNext puts a copy of t at the head of the queue.
func (m *Manager) AddToQueueNext(t media.Track) {
	m.queue.Insert(0, t)
	m.publishQueue()
}

// RemoveFromQueue removes the first queued track with t's id. A track that
// is not queued leaves the queue untouched.
func (m *Manager) RemoveFromQueue(t media.Track) bool {
	if !m.queue.Remove(m.queue.IndexOf(t.ID)) {
		return false
	}
	m.publishQueue()
	return true
}

// MoveInQueue reorders the queue.
func (m *Manager) MoveInQueue(from, to int) bool {
	if !m.queue.Move(from, to) {
		return false
	}
	m.publishQueue()
	return true
}

// SetBacklog replaces the backlog.
func (m *Manager) SetBacklog(tracks []media.Track) {
	m.backlog.Set(tracks)
	m.publishBacklog()
}

// AddToBacklog appends a copy of t. Nil is ignored.
func (m *Manager) AddToBacklog(t *media.Track) {
	if t == nil {
		return
	}
	m.backlog.Push(*t)
	m.publishBacklog()
}

// PushToBacklog appends copies of tracks.
func (m *Manager) PushToBacklog(tracks ...media.Track) {
	m.backlog.Push(tracks...)
	m.publishBacklog()
}

// RemoveFromBacklog removes the first backlog entry with t's id.
func (m *Manager) RemoveFromBacklog(t media.Track) bool {
	if !m.backlog.Remove(t.ID) {
		return false
	}
	m.publishBacklog()
	return true
}

// SetCurrent sets the current selection and publishes song. Loading the
// track is the caller's business.
func (m *Manager) SetCurrent(t *media.Track) {
	m.current = media.ClonePtr(t)
	m.publishSong()
}

// SetShuffle sets the shuffle flag.
func (m *Manager) SetShuffle(on bool) {
	m.shuffle = on
	m.bus.Publish(bus.ShuffleEvent{Enabled: on})
}

// SetRepeat sets the repeat mode.
func (m *Manager) SetRepeat(mode media.RepeatMode) {
	m.repeat = mode
	m.bus.Publish(bus.RepeatEvent{Mode: mode})
}

// pickIndex chooses the next queue position: the head, or a uniformly
// random position when shuffling.
func (m *Manager) pickIndex() int {
	if m.shuffle && m.queue.Len() > 1 {
		return m.rng.IntN(m.queue.Len())
	}
	return 0
}

// Advance applies the manual next policy and returns the new current
// selection. The current track moves to the backlog; the next one comes
// from the queue, or, when the queue is empty, the backlog is replayed
// from its oldest entry.
func (m *Manager) Advance() *media.Track {
	m.pending = ""
	m.AddToBacklog(m.current)

	if m.queue.Len() > 0 {
		next, _ := m.queue.Take(m.pickIndex())
		m.SetCurrent(&next)
		m.publishQueue()
		return m.Current()
	}

	history := m.backlog.Tracks()
	if len(history) == 0 {
		m.SetCurrent(nil)
		return nil
	}
	m.SetCurrent(&history[0])
	m.SetQueue(history[1:])
	m.SetBacklog(nil)
	return m.Current()
}

// Retreat makes the most recent backlog entry current and puts the old
// current back at the head of the queue. It returns false when the
// backlog is empty.
func (m *Manager) Retreat() (*media.Track, bool) {
	prev, ok := m.backlog.Pop()
	if !ok {
		return nil, false
	}
	m.pending = ""
	if m.current != nil {
		m.AddToQueueNext(*m.current)
	}
	m.SetCurrent(&prev)
	m.publishBacklog()
	return m.Current(), true
}

// Select makes t current unless it already is, superseding the old
// current into the backlog. With a context list containing t, the queue
// becomes the tracks after t followed by the tracks before it. It reports
// whether the current selection changed.
func (m *Manager) Select(t media.Track, context []media.Track) bool {
	changed := m.current == nil || !m.current.Same(t)
	if changed {
		m.pending = ""
		m.AddToBacklog(m.current)
		m.SetCurrent(&t)
	}
	if context != nil {
		list := NewPlaylist(context...)
		if idx := list.IndexOf(t.ID); idx >= 0 {
			tracks := list.Tracks()
			queue := append(tracks[idx+1:], tracks[:idx]...)
			m.SetQueue(queue)
		}
	}
	return changed
}

// RotateBacklog moves the whole backlog into the queue, for repeat-all
// wrap-around.
func (m *Manager) RotateBacklog() {
	if m.backlog.Len() == 0 {
		return
	}
	m.SetQueue(m.backlog.Tracks())
	m.SetBacklog(nil)
}

// PeekNext picks the track the next crossfade will commit to, without
// removing it. The pick follows the shuffle policy and is remembered for
// DropPending.
func (m *Manager) PeekNext() (media.Track, bool) {
	if m.queue.Len() == 0 {
		m.pending = ""
		return media.Track{}, false
	}
	t := m.queue.Track(m.pickIndex())
	m.pending = t.ID
	return *t, true
}

// DropPending removes the track picked by PeekNext from the queue.
func (m *Manager) DropPending() {
	if m.pending == "" {
		return
	}
	m.queue.Remove(m.queue.IndexOf(m.pending))
	m.pending = ""
	m.publishQueue()
}

// CommitAdvance moves current to the backlog and makes t, the track picked
// by PeekNext, current, removing it from the queue. It fails without
// changing anything when t is no longer queued.
func (m *Manager) CommitAdvance(t media.Track) (*media.Track, error) {
	if m.queue.Len() == 0 {
		return nil, ErrQueueEmpty
	}
	idx := m.queue.IndexOf(t.ID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotQueued, t.ID)
	}
	m.pending = ""

	next, _ := m.queue.Take(idx)
	m.AddToBacklog(m.current)
	m.SetCurrent(&next)
	m.publishQueue()
	return m.Current(), nil
}

// Restore loads persisted state and publishes it.
func (m *Manager) Restore(current *media.Track, queue, backlog []media.Track) {
	m.pending = ""
	m.queue.Set(queue)
	m.backlog.Set(backlog)
	m.current = media.ClonePtr(current)
	m.publishBacklog()
	m.publishQueue()
	m.publishSong()
}

// Clear empties the queue and the current selection. The backlog is kept.
func (m *Manager) Clear() {
	m.pending = ""
	m.SetCurrent(nil)
	m.SetQueue(nil)
}
