// Package notify announces song changes as desktop notifications.
package notify

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
)

// Urgency is a freedesktop notification urgency level.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

const announceTimeout = 5000

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// Announcer shows a notification each time the current song changes.
// Notifications go out from their own goroutine; when songs change faster
// than they are shown, only the latest is announced.
type Announcer struct {
	notifier Notifier
	bus      *bus.Bus
	log      logrus.FieldLogger
	id       bus.ID

	mu     sync.Mutex
	closed bool
	songs  chan media.Track
	done   chan struct{}
}

// NewAnnouncer starts announcing song changes published on b.
func NewAnnouncer(n Notifier, b *bus.Bus, log logrus.FieldLogger) *Announcer {
	a := &Announcer{
		notifier: n,
		bus:      b,
		log:      log.WithField("component", "notify"),
		songs:    make(chan media.Track, 1),
		done:     make(chan struct{}),
	}
	a.id = b.Subscribe(bus.TopicSong, a.handle)
	go a.run()
	return a
}

func (a *Announcer) handle(e bus.Event) {
	ev, ok := e.(bus.SongEvent)
	if !ok || ev.Track == nil {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	// Replace a song that has not been shown yet
	select {
	case <-a.songs:
	default:
	}
	a.songs <- ev.Track.Clone()
}

func (a *Announcer) run() {
	defer close(a.done)
	var last uint32
	for t := range a.songs {
		id, err := a.notifier.Notify(trackNotification(t, last))
		if err != nil {
			a.log.WithError(err).Debug("notify")
			continue
		}
		last = id
	}
}

// Close stops announcing and waits for a pending notification.
func (a *Announcer) Close() {
	a.bus.Unsubscribe(a.id)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	close(a.songs)
	a.mu.Unlock()

	<-a.done
}

func trackNotification(t media.Track, replaces uint32) Notification {
	title := t.Name
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(t.Path), filepath.Ext(t.Path))
	}

	var body []string
	if len(t.Artists) > 0 {
		body = append(body, strings.Join(t.Artists, ", "))
	}
	if t.Album != "" {
		body = append(body, t.Album)
	}

	icon := t.Cover
	if icon == "" && t.Path != "" && !strings.Contains(t.Path, "://") {
		icon = albumArt(t.Path)
	}

	return Notification{
		Title:      title,
		Body:       strings.Join(body, " - "),
		Icon:       icon,
		Timeout:    announceTimeout,
		ReplacesID: replaces,
		Urgency:    UrgencyLow,
	}
}
