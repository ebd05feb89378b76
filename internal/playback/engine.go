// Package playback coordinates two playback units so that consecutive
// tracks crossfade, and exposes the queue and transport as one service.
package playback

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/player"
	"github.com/llehouerou/duet/internal/playlist"
	"github.com/llehouerou/duet/internal/resolve"
	"github.com/llehouerou/duet/internal/sched"
	"github.com/llehouerou/duet/internal/unit"
)

// ErrClosed is returned by operations on a closed engine.
var ErrClosed = errors.New("playback engine closed")

const (
	// PreviousRestartThreshold is the position past which Previous restarts
	// the current track instead of going back.
	PreviousRestartThreshold = 3 * time.Second
	// RepeatOneReplayDelay separates the rewind from the replay on repeat-one.
	RepeatOneReplayDelay = 150 * time.Millisecond

	defaultResolveTimeout = 10 * time.Second
	defaultVolume         = 100
)

// Options configures an Engine.
type Options struct {
	FadeDuration   time.Duration
	PrefetchLeeway time.Duration
	ResolveTimeout time.Duration
	// Volume is the initial volume, 0-100. Zero selects the default.
	Volume       int
	Muted        bool
	Repeat       media.RepeatMode
	Shuffle      bool
	BacklogLimit int
	// ManualAdvance disables the end-of-track triggers.
	ManualAdvance bool
	Rand          *rand.Rand
	Log           logrus.FieldLogger
}

// Engine owns the two units and the queue. Public methods are safe for
// concurrent use; they run on the engine scheduler.
type Engine struct {
	log      logrus.FieldLogger
	bus      *bus.Bus
	sched    sched.Scheduler
	resolver resolve.Resolver
	queue    *playlist.Manager

	transports [2]player.Interface
	units      [2]*unit.Unit
	current    *unit.Unit
	next       *unit.Unit

	fadeDuration   time.Duration
	resolveTimeout time.Duration
	volume         int
	muted          bool
	autoAdvance    bool

	phase   Phase
	cycle   *cycle
	loadSeq uint64
	skips   int
	song    *media.Track

	subsMu sync.RWMutex
	subs   []*Subscription
	closed atomic.Bool
}

var _ Service = (*Engine)(nil)

// New wires two transports into an engine running on s. Tracks are turned
// into locators by r.
func New(transports [2]player.Interface, r resolve.Resolver, s sched.Scheduler, opts Options) *Engine {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	if opts.FadeDuration <= 0 {
		opts.FadeDuration = unit.DefaultFadeDuration
	}
	if opts.ResolveTimeout <= 0 {
		opts.ResolveTimeout = defaultResolveTimeout
	}
	if opts.Volume <= 0 {
		opts.Volume = defaultVolume
	}

	b := bus.New(log.WithField("component", "bus"))
	qopts := []playlist.Option{playlist.WithBacklogLimit(opts.BacklogLimit)}
	if opts.Rand != nil {
		qopts = append(qopts, playlist.WithRand(opts.Rand))
	}

	e := &Engine{
		log:            log.WithField("component", "engine"),
		bus:            b,
		sched:          s,
		resolver:       r,
		queue:          playlist.NewManager(b, qopts...),
		transports:     transports,
		fadeDuration:   opts.FadeDuration,
		resolveTimeout: opts.ResolveTimeout,
		volume:         min(opts.Volume, 100),
		muted:          opts.Muted,
		autoAdvance:    !opts.ManualAdvance,
	}
	for i, t := range transports {
		e.units[i] = unit.New(bus.UnitID(i+1), t, b, s, unit.Options{
			FadeDuration:   opts.FadeDuration,
			PrefetchLeeway: opts.PrefetchLeeway,
			Volume:         float64(e.volume),
			Log:            log,
		})
		e.units[i].
			SetMuted(opts.Muted).
			SetRepeat(opts.Repeat).
			DisableAutoAdvance(opts.ManualAdvance)
	}
	e.current, e.next = e.units[0], e.units[1]

	e.queue.SetRepeat(opts.Repeat)
	e.queue.SetShuffle(opts.Shuffle)

	b.Subscribe(bus.TopicQueueNext, e.onQueueNext)
	b.Subscribe(bus.TopicEnded, e.onEnded)
	b.Subscribe(bus.TopicError, e.onError)
	b.Subscribe(bus.TopicPlayInternal, e.onPlaying)
	b.SubscribeAll(e.fanOut)

	s.Post(func() { b.Publish(bus.Signal{Name: bus.TopicReady}) })
	return e
}

// Bus returns the engine's event bus. Handlers run on the engine
// scheduler and must not call Engine methods.
func (e *Engine) Bus() *bus.Bus { return e.bus }

// Subscribe returns a channel-based subscription to engine events.
func (e *Engine) Subscribe() *Subscription {
	sub := newSubscription()
	e.subsMu.Lock()
	e.subs = append(e.subs, sub)
	e.subsMu.Unlock()
	return sub
}

// do runs fn on the scheduler and waits for it.
func (e *Engine) do(fn func()) error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.sched.Do(fn)
	return nil
}

func query[T any](e *Engine, fn func() T) T {
	var v T
	if e.closed.Load() {
		return v
	}
	e.sched.Do(func() { v = fn() })
	return v
}

// Close stops both units, closes the transports and ends all subscriptions.
func (e *Engine) Close() error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.sched.Do(func() {
		e.abortCycle()
		for _, u := range e.units {
			u.Stop()
		}
	})
	e.closed.Store(true)

	var errs []error
	for _, t := range e.transports {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	errs = append(errs, e.bus.Close())

	e.subsMu.Lock()
	for _, sub := range e.subs {
		sub.close()
	}
	e.subs = nil
	e.subsMu.Unlock()
	return errors.Join(errs...)
}

// load resolves t and starts it on the current unit. A nil track stops
// the current unit.
func (e *Engine) load(t *media.Track) {
	e.loadSeq++
	seq := e.loadSeq
	if t == nil {
		e.current.Stop()
		return
	}

	track := *t
	target := e.current
	e.sched.Go(func() {
		loc, err := e.resolveTrack(track)
		e.sched.Post(func() {
			if seq != e.loadSeq || target != e.current {
				return
			}
			if err != nil {
				e.resolveFailed(track, err)
				e.skip()
				return
			}
			target.SetSource(loc).SetVolume(float64(e.volume)).Play()
		})
	})
}

// resolveTrack runs off the scheduler.
func (e *Engine) resolveTrack(t media.Track) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), e.resolveTimeout)
	defer cancel()
	loc, err := e.resolver.Resolve(ctx, t)
	if err != nil {
		var rerr *resolve.Error
		if !errors.As(err, &rerr) {
			err = &resolve.Error{TrackID: t.ID, Err: err}
		}
		return "", err
	}
	if loc == "" {
		return "", &resolve.Error{TrackID: t.ID, Err: resolve.ErrNoPath}
	}
	return loc, nil
}

func (e *Engine) resolveFailed(t media.Track, err error) {
	e.log.WithError(err).WithField("track", t.ID).Warn("source resolution failed")
	e.bus.Publish(bus.ErrorEvent{Err: err})
}

// advance applies the next policy and loads the result.
func (e *Engine) advance() {
	e.load(e.queue.Advance())
}

// skip moves past a track that cannot play. Once every known track has
// failed in a row, playback gives up.
func (e *Engine) skip() {
	e.skips++
	budget := e.queue.QueueLen() + e.queue.BacklogLen() + 1
	if e.skips > budget {
		e.log.WithField("skips", e.skips).Error("no playable track, stopping")
		e.skips = 0
		e.loadSeq++
		e.current.Stop()
		e.queue.SetCurrent(nil)
		return
	}
	e.advance()
}

func (e *Engine) setPhase(p Phase) {
	if e.phase == p {
		return
	}
	e.log.WithFields(logrus.Fields{"from": e.phase, "to": p}).Debug("phase")
	e.phase = p
}

func (e *Engine) onPlaying(ev bus.Event) {
	if bus.UnitOf(ev) == e.current.ID() {
		e.skips = 0
	}
}

// onEnded handles a natural end of the current unit's track. An incoming
// track that ends before the swap is committed and made current first.
func (e *Engine) onEnded(ev bus.Event) {
	id := bus.UnitOf(ev)
	if c := e.cycle; c != nil && id == c.to.ID() {
		e.commit(c)
		if !c.committed {
			return
		}
		e.abortCycle()
	}
	if id != e.current.ID() || !e.autoAdvance {
		return
	}

	if e.queue.Repeat() == media.RepeatOne {
		u := e.current
		u.SetCurrentTime(0)
		e.sched.AfterFunc(RepeatOneReplayDelay, func() {
			if u == e.current {
				u.Play()
			}
		})
		return
	}

	if c := e.cycle; c != nil {
		if c.committed {
			return
		}
		// Ended before the fade began.
		e.abortCycle()
	}

	if e.queue.QueueLen() > 0 || (e.queue.Repeat() == media.RepeatAll && e.queue.BacklogLen() > 0) {
		e.advance()
		return
	}
	e.log.Debug("end of queue")
	e.queue.SetCurrent(nil)
}

// onError handles a transport failure on either unit.
func (e *Engine) onError(ev bus.Event) {
	id := bus.UnitOf(ev)
	if id == 0 {
		return
	}
	if c := e.cycle; c != nil && id == c.to.ID() {
		if !c.committed {
			e.log.WithField("track", c.track.ID).Warn("prefetched track failed, dropping it")
			e.queue.DropPending()
			e.abortCycle()
			return
		}
		// Already the current song: finish the swap and move past it.
		e.abortCycle()
		e.skip()
		return
	}
	if id != e.current.ID() {
		return
	}
	e.abortCycle()
	e.skip()
}

// fanOut forwards bus events to channel subscribers.
func (e *Engine) fanOut(ev bus.Event) {
	var deliver func(*Subscription)
	switch ev := ev.(type) {
	case bus.SongEvent:
		tc := TrackChange{Previous: e.song, Current: media.ClonePtr(ev.Track)}
		e.song = media.ClonePtr(ev.Track)
		deliver = func(s *Subscription) { s.sendTrack(tc) }
	case bus.QueueEvent:
		qc := QueueChange{Tracks: ev.Tracks}
		deliver = func(s *Subscription) { s.sendQueue(qc) }
	case bus.BacklogEvent:
		qc := QueueChange{Backlog: true, Tracks: ev.Tracks}
		deliver = func(s *Subscription) { s.sendQueue(qc) }
	case bus.ShuffleEvent, bus.RepeatEvent:
		mc := ModeChange{Repeat: e.queue.Repeat(), Shuffle: e.queue.Shuffle()}
		deliver = func(s *Subscription) { s.sendMode(mc) }
	case bus.VolumeEvent, bus.MuteEvent:
		vc := VolumeChange{Volume: e.volume, Muted: e.muted}
		deliver = func(s *Subscription) { s.sendVolume(vc) }
	case bus.TimeEvent:
		if ev.Name != bus.TopicTime {
			return
		}
		pc := PositionChange{Unit: ev.Unit, Time: ev.State}
		deliver = func(s *Subscription) { s.sendPosition(pc) }
	case bus.ErrorEvent:
		ee := ErrorEvent{Operation: OpTransport, Err: ev.Err}
		var rerr *resolve.Error
		if errors.As(ev.Err, &rerr) {
			ee.Operation = OpResolve
			ee.TrackID = rerr.TrackID
		}
		deliver = func(s *Subscription) { s.sendError(ee) }
	case bus.Signal:
		switch ev.Name {
		case bus.TopicPlay, bus.TopicPause, bus.TopicEnded, bus.TopicStop:
		default:
			return
		}
		if ev.Unit != 0 && ev.Unit != e.current.ID() {
			return
		}
		sc := StateChange{Current: e.current.State()}
		deliver = func(s *Subscription) { s.sendState(sc) }
	default:
		return
	}
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, s := range e.subs {
		deliver(s)
	}
}
