package state

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
)

const (
	saveDebounce = 500 * time.Millisecond
	saveTimeout  = 5 * time.Second
)

// Persister follows settings and queue events on a bus and saves them to
// a store, coalescing bursts of changes.
type Persister struct {
	store Interface
	bus   *bus.Bus
	log   logrus.FieldLogger
	ids   []bus.ID

	// saveMu serializes writes to the store.
	saveMu sync.Mutex

	mu            sync.Mutex
	settings      Settings
	session       Session
	dirtySettings bool
	dirtyQueue    bool
	saveTimer     *time.Timer
	closed        bool
}

// NewPersister starts following b. settings and session seed the snapshot
// that events update.
func NewPersister(store Interface, b *bus.Bus, settings Settings, session Session, log logrus.FieldLogger) *Persister {
	p := &Persister{
		store:    store,
		bus:      b,
		log:      log.WithField("component", "persister"),
		settings: settings,
		session:  copySession(session),
	}
	for _, topic := range []bus.Topic{
		bus.TopicVolume, bus.TopicMute, bus.TopicRepeat, bus.TopicShuffle,
		bus.TopicSong, bus.TopicQueue, bus.TopicBacklog,
	} {
		p.ids = append(p.ids, b.Subscribe(topic, p.handle))
	}
	return p
}

func (p *Persister) handle(e bus.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}

	switch ev := e.(type) {
	case bus.VolumeEvent:
		p.settings.Volume = ev.Volume
		p.dirtySettings = true
	case bus.MuteEvent:
		p.settings.Muted = ev.Muted
		p.dirtySettings = true
	case bus.RepeatEvent:
		p.settings.Repeat = ev.Mode
		p.dirtySettings = true
	case bus.ShuffleEvent:
		p.settings.Shuffle = ev.Enabled
		p.dirtySettings = true
	case bus.SongEvent:
		p.session.Current = media.ClonePtr(ev.Track)
		p.dirtyQueue = true
	case bus.QueueEvent:
		p.session.Queue = media.CloneAll(ev.Tracks)
		p.dirtyQueue = true
	case bus.BacklogEvent:
		p.session.Backlog = media.CloneAll(ev.Tracks)
		p.dirtyQueue = true
	default:
		return
	}

	if p.saveTimer != nil {
		p.saveTimer.Stop()
	}
	p.saveTimer = time.AfterFunc(saveDebounce, p.flush)
}

func (p *Persister) flush() {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	settings, session := p.settings, copySession(p.session)
	dirtySettings, dirtyQueue := p.dirtySettings, p.dirtyQueue
	p.dirtySettings, p.dirtyQueue = false, false
	p.saveTimer = nil
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if dirtySettings {
		if err := p.store.SaveSettings(ctx, settings); err != nil {
			p.log.WithError(err).Error("save settings")
		}
	}
	if dirtyQueue {
		if err := p.store.SaveQueue(ctx, session); err != nil {
			p.log.WithError(err).Error("save queue")
		}
	}
}

// Close stops following the bus, waits for a save in progress and writes
// any pending change. The store is not used after Close returns.
func (p *Persister) Close() {
	for _, id := range p.ids {
		p.bus.Unsubscribe(id)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.saveTimer != nil {
		p.saveTimer.Stop()
	}
	p.mu.Unlock()

	p.flush()
}
