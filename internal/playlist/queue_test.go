package playlist

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
)

type recorder struct {
	events []bus.Event
}

func newManager(t *testing.T, opts ...Option) (*Manager, *recorder) {
	t.Helper()
	b := bus.New(nil)
	t.Cleanup(func() { _ = b.Close() })
	r := &recorder{}
	b.SubscribeAll(func(e bus.Event) { r.events = append(r.events, e) })
	return NewManager(b, opts...), r
}

func (r *recorder) last(topic bus.Topic) bus.Event {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Topic() == topic {
			return r.events[i]
		}
	}
	return nil
}

func currentID(m *Manager) string {
	if c := m.Current(); c != nil {
		return c.ID
	}
	return ""
}

func TestManager_SetQueueClonesAndPublishes(t *testing.T) {
	m, r := newManager(t)
	in := []media.Track{tr("a"), tr("b")}

	m.SetQueue(in)
	in[0].Artists[0] = "mutated"

	assert.Equal(t, "artist a", m.Queue()[0].Artists[0])
	ev, ok := r.last(bus.TopicQueue).(bus.QueueEvent)
	require.True(t, ok)
	equalIDs(t, ev.Tracks, "a", "b")
}

func TestManager_QueueEditing(t *testing.T) {
	m, r := newManager(t)

	m.AddToQueue(tr("a"))
	m.PushToQueue(tr("b"), tr("c"))
	m.AddToQueueNext(tr("x"))
	equalIDs(t, m.Queue(), "x", "a", "b", "c")

	assert.True(t, m.RemoveFromQueue(tr("b")))
	assert.False(t, m.RemoveFromQueue(tr("missing")))
	equalIDs(t, m.Queue(), "x", "a", "c")

	assert.True(t, m.MoveInQueue(0, 2))
	equalIDs(t, m.Queue(), "a", "c", "x")

	ev := r.last(bus.TopicQueue).(bus.QueueEvent)
	equalIDs(t, ev.Tracks, "a", "c", "x")
}

func TestManager_BacklogEditing(t *testing.T) {
	m, r := newManager(t)

	m.AddToBacklog(nil)
	assert.Nil(t, r.last(bus.TopicBacklog))

	a := tr("a")
	m.AddToBacklog(&a)
	m.PushToBacklog(tr("b"), tr("c"))
	assert.True(t, m.RemoveFromBacklog(tr("b")))
	equalIDs(t, m.Backlog(), "a", "c")

	m.SetBacklog(nil)
	assert.Zero(t, m.BacklogLen())
	ev := r.last(bus.TopicBacklog).(bus.BacklogEvent)
	assert.Empty(t, ev.Tracks)
}

func TestManager_AdvanceThroughQueueThenReplayBacklog(t *testing.T) {
	m, _ := newManager(t)
	m.SetQueue([]media.Track{tr("a"), tr("b"), tr("c")})

	m.Advance()
	assert.Equal(t, "a", currentID(m))
	assert.Empty(t, m.Backlog())

	m.Advance()
	m.Advance()
	assert.Equal(t, "c", currentID(m))
	equalIDs(t, m.Backlog(), "a", "b")
	assert.Empty(t, m.Queue())

	m.Advance()
	assert.Equal(t, "a", currentID(m))
	equalIDs(t, m.Queue(), "b", "c")
	assert.Empty(t, m.Backlog())
}

func TestManager_AdvanceWithNothingClearsCurrent(t *testing.T) {
	m, r := newManager(t)

	assert.Nil(t, m.Advance())
	ev := r.last(bus.TopicSong).(bus.SongEvent)
	assert.Nil(t, ev.Track)
}

func TestManager_AdvanceShuffleIsUniformPick(t *testing.T) {
	m, _ := newManager(t, WithRand(rand.New(rand.NewPCG(1, 2))))
	m.SetShuffle(true)

	seen := map[string]int{}
	for range 600 {
		m.SetQueue([]media.Track{tr("a"), tr("b"), tr("c")})
		m.SetBacklog(nil)
		m.Advance()
		seen[currentID(m)]++
	}

	for _, id := range []string{"a", "b", "c"} {
		assert.Greater(t, seen[id], 120, "track %s picked %d times", id, seen[id])
	}
}

func TestManager_Retreat(t *testing.T) {
	m, _ := newManager(t)
	m.SetQueue([]media.Track{tr("a"), tr("b"), tr("c")})
	m.Advance()
	m.Advance()

	prev, ok := m.Retreat()
	require.True(t, ok)
	assert.Equal(t, "a", prev.ID)
	equalIDs(t, m.Queue(), "b", "c")
	assert.Empty(t, m.Backlog())

	_, ok = m.Retreat()
	assert.False(t, ok)
	assert.Equal(t, "a", currentID(m))
}

func TestManager_SelectWithContext(t *testing.T) {
	m, _ := newManager(t)
	ctx := []media.Track{tr("a"), tr("b"), tr("c"), tr("d")}

	changed := m.Select(tr("c"), ctx)

	assert.True(t, changed)
	assert.Equal(t, "c", currentID(m))
	equalIDs(t, m.Queue(), "d", "a", "b")
	assert.Empty(t, m.Backlog())
}

func TestManager_SelectSupersedesIntoBacklog(t *testing.T) {
	m, _ := newManager(t)
	m.Select(tr("a"), nil)

	assert.False(t, m.Select(tr("a"), nil))
	assert.True(t, m.Select(tr("b"), nil))

	equalIDs(t, m.Backlog(), "a")
}

func TestManager_SelectContextWithoutTrackKeepsQueue(t *testing.T) {
	m, _ := newManager(t)
	m.SetQueue([]media.Track{tr("q")})

	m.Select(tr("z"), []media.Track{tr("a"), tr("b")})

	equalIDs(t, m.Queue(), "q")
}

func TestManager_RotateBacklog(t *testing.T) {
	m, _ := newManager(t)
	m.PushToBacklog(tr("a"), tr("b"))

	m.RotateBacklog()

	equalIDs(t, m.Queue(), "a", "b")
	assert.Empty(t, m.Backlog())
}

func TestManager_PeekThenCommit(t *testing.T) {
	m, r := newManager(t)
	m.SetQueue([]media.Track{tr("a"), tr("b")})
	m.Advance()

	next, ok := m.PeekNext()
	require.True(t, ok)
	assert.Equal(t, "b", next.ID)
	equalIDs(t, m.Queue(), "b")

	cur, err := m.CommitAdvance(next)
	require.NoError(t, err)
	assert.Equal(t, "b", cur.ID)
	equalIDs(t, m.Backlog(), "a")
	assert.Empty(t, m.Queue())
	assert.Equal(t, "b", r.last(bus.TopicSong).(bus.SongEvent).Track.ID)

	_, err = m.CommitAdvance(next)
	assert.True(t, errors.Is(err, ErrQueueEmpty))
}

func TestManager_CommitAdvance_PickLeftQueue(t *testing.T) {
	m, _ := newManager(t)
	m.SetQueue([]media.Track{tr("a"), tr("b")})
	m.Advance()
	next, ok := m.PeekNext()
	require.True(t, ok)

	m.SetQueue([]media.Track{tr("x"), tr("y")})
	_, err := m.CommitAdvance(next)

	require.ErrorIs(t, err, ErrNotQueued)
	assert.Equal(t, "a", m.Current().ID)
	equalIDs(t, m.Queue(), "x", "y")
	assert.Empty(t, m.Backlog())
}

func TestManager_ShufflePeekIsCommitted(t *testing.T) {
	m, _ := newManager(t, WithRand(rand.New(rand.NewPCG(7, 7))))
	m.SetShuffle(true)
	m.SetQueue([]media.Track{tr("a"), tr("b"), tr("c"), tr("d")})

	next, ok := m.PeekNext()
	require.True(t, ok)
	cur, err := m.CommitAdvance(next)
	require.NoError(t, err)

	assert.Equal(t, next.ID, cur.ID)
	assert.Equal(t, -1, NewPlaylist(m.Queue()...).IndexOf(next.ID))
}

func TestManager_DropPending(t *testing.T) {
	m, _ := newManager(t)
	m.SetQueue([]media.Track{tr("a"), tr("b")})

	_, _ = m.PeekNext()
	m.DropPending()
	m.DropPending()

	equalIDs(t, m.Queue(), "b")
}

func TestManager_ModesPublish(t *testing.T) {
	m, r := newManager(t)

	m.SetShuffle(true)
	m.SetRepeat(media.RepeatAll)

	assert.True(t, m.Shuffle())
	assert.Equal(t, media.RepeatAll, m.Repeat())
	assert.Equal(t, bus.ShuffleEvent{Enabled: true}, r.last(bus.TopicShuffle))
	assert.Equal(t, bus.RepeatEvent{Mode: media.RepeatAll}, r.last(bus.TopicRepeat))
}

func TestManager_BacklogLimit(t *testing.T) {
	m, _ := newManager(t, WithBacklogLimit(2))
	m.SetQueue([]media.Track{tr("a"), tr("b"), tr("c"), tr("d")})
	for range 4 {
		m.Advance()
	}
	equalIDs(t, m.Backlog(), "b", "c")
}

func TestManager_RestoreAndClear(t *testing.T) {
	m, r := newManager(t)
	cur := tr("c")

	m.Restore(&cur, []media.Track{tr("q")}, []media.Track{tr("b")})
	assert.Equal(t, "c", currentID(m))
	equalIDs(t, m.Queue(), "q")
	equalIDs(t, m.Backlog(), "b")
	assert.NotNil(t, r.last(bus.TopicSong))

	m.Clear()
	assert.Nil(t, m.Current())
	assert.Empty(t, m.Queue())
	equalIDs(t, m.Backlog(), "b")
}
