// Package bus is the synchronous publish/subscribe channel that connects
// playback units, the queue manager and the crossfade coordinator.
package bus

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by Close on an already closed bus.
var ErrClosed = errors.New("bus closed")

// Handler receives published events.
type Handler func(Event)

// ID identifies a subscription. The zero ID is never issued.
type ID uint64

type subscription struct {
	id      ID
	handler Handler
	match   func(Event) bool
	once    bool
	removed atomic.Bool
}

// Bus delivers events synchronously, in subscription order, to the
// handlers of the event's topic and then to wildcard handlers.
//
// Publish snapshots the handler list: handlers added during delivery do
// not see the event being delivered, handlers removed during delivery do
// not receive it.
type Bus struct {
	log logrus.FieldLogger

	mu     sync.RWMutex
	topics map[Topic][]*subscription
	all    []*subscription
	nextID atomic.Uint64
	closed bool
}

// New creates a bus. log may be nil.
func New(log logrus.FieldLogger) *Bus {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Bus{
		log:    log.WithField("component", "bus"),
		topics: make(map[Topic][]*subscription),
	}
}

// Publish delivers e to its subscribers. A panicking handler is logged and
// does not prevent delivery to the others.
func (b *Bus) Publish(e Event) {
	if e == nil {
		return
	}
	topic := e.Topic()

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	subs := make([]*subscription, 0, len(b.topics[topic])+len(b.all))
	subs = append(subs, b.topics[topic]...)
	subs = append(subs, b.all...)
	b.mu.RUnlock()

	b.log.WithField("topic", topic).Trace("publish")

	for _, s := range subs {
		if s.removed.Load() {
			continue
		}
		if s.match != nil && !s.match(e) {
			continue
		}
		if s.once {
			if !s.removed.CompareAndSwap(false, true) {
				continue
			}
			b.remove(s.id)
		}
		b.call(s, e)
	}
}

func (b *Bus) call(s *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{
				"topic":        e.Topic(),
				"subscription": s.id,
				"panic":        r,
			}).Error("event handler panicked")
		}
	}()
	s.handler(e)
}

// Subscribe registers h for every event on topic.
func (b *Bus) Subscribe(topic Topic, h Handler) ID {
	return b.add(topic, &subscription{handler: h})
}

// Once registers h for the next event on topic only.
func (b *Bus) Once(topic Topic, h Handler) ID {
	return b.add(topic, &subscription{handler: h, once: true})
}

// OnceMatch registers h for the next event on topic for which match
// returns true. Non-matching events leave the subscription in place.
func (b *Bus) OnceMatch(topic Topic, match func(Event) bool, h Handler) ID {
	return b.add(topic, &subscription{handler: h, match: match, once: true})
}

// SubscribeAll registers h for every event regardless of topic.
func (b *Bus) SubscribeAll(h Handler) ID {
	return b.add("", &subscription{handler: h})
}

func (b *Bus) add(topic Topic, s *subscription) ID {
	if s.handler == nil {
		panic("bus: nil handler")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}

	s.id = ID(b.nextID.Add(1))
	if topic == "" {
		b.all = append(b.all, s)
	} else {
		b.topics[topic] = append(b.topics[topic], s)
	}
	return s.id
}

// Unsubscribe removes a subscription. Unknown IDs are ignored.
func (b *Bus) Unsubscribe(id ID) {
	if id == 0 {
		return
	}
	b.remove(id)
}

func (b *Bus) remove(id ID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for topic, subs := range b.topics {
		if i := indexOf(subs, id); i >= 0 {
			subs[i].removed.Store(true)
			b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			if len(b.topics[topic]) == 0 {
				delete(b.topics, topic)
			}
			return
		}
	}
	if i := indexOf(b.all, id); i >= 0 {
		b.all[i].removed.Store(true)
		b.all = append(b.all[:i:i], b.all[i+1:]...)
	}
}

func indexOf(subs []*subscription, id ID) int {
	for i, s := range subs {
		if s.id == id {
			return i
		}
	}
	return -1
}

// HasSubscribers reports whether anything listens to topic, wildcards included.
func (b *Bus) HasSubscribers(topic Topic) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic]) > 0 || len(b.all) > 0
}

// SubscriberCount returns the number of live subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := len(b.all)
	for _, subs := range b.topics {
		n += len(subs)
	}
	return n
}

// Close drops every subscription. Later publishes are ignored.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.closed = true
	for _, subs := range b.topics {
		for _, s := range subs {
			s.removed.Store(true)
		}
	}
	for _, s := range b.all {
		s.removed.Store(true)
	}
	b.topics = make(map[Topic][]*subscription)
	b.all = nil
	return nil
}
