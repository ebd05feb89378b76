// Package unit implements a playback unit: one media transport plus the
// volume, fade and end-of-track signalling the crossfade engine relies on.
package unit

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/player"
	"github.com/llehouerou/duet/internal/sched"
)

const (
	// FadeTick is the interval between fade steps.
	FadeTick = 200 * time.Millisecond
	// SettleDelay separates the end of a fade-out from the setCurrentAudio signal.
	SettleDelay = 500 * time.Millisecond

	// DefaultFadeDuration is the configured crossfade length.
	DefaultFadeDuration = 3 * time.Second
	// DefaultPrefetchLeeway is how long before the end the next track is prepared.
	DefaultPrefetchLeeway = 10 * time.Second

	defaultCrossFadeSteps = 20
	advanceWindowSteps    = 12
	// fadeLeadFactor scales the fade duration into the fade-out trigger window.
	fadeLeadFactor = 4
)

// TransportError is a failed transport operation on a unit.
type TransportError struct {
	Unit bus.UnitID
	Op   string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unit %d: %s: %v", e.Unit, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Options configures a Unit.
type Options struct {
	FadeDuration   time.Duration
	PrefetchLeeway time.Duration
	// Volume is the initial persisted volume, 0-100.
	Volume float64
	Log    logrus.FieldLogger
}

// Unit wraps a transport. Every method must be called from the scheduler
// the unit was created with; transport events are posted onto it.
type Unit struct {
	id        bus.UnitID
	transport player.Interface
	bus       *bus.Bus
	sched     sched.Scheduler
	log       logrus.FieldLogger

	fadeDuration   time.Duration
	prefetchLeeway time.Duration

	state    State
	locator  string
	gen      atomic.Uint64
	wantPlay bool

	volume     float64
	fadeVolume float64
	steps      float64
	fadeIn     Ramp
	fadeOut    Ramp
	fadeTimer  sched.Timer
	settle     sched.Timer

	fading              bool
	hasNextQueued       bool
	repeat              media.RepeatMode
	autoAdvanceDisabled bool
}

// New creates a stopped unit and subscribes to its transport's events.
func New(id bus.UnitID, t player.Interface, b *bus.Bus, s sched.Scheduler, opts Options) *Unit {
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	if opts.FadeDuration <= 0 {
		opts.FadeDuration = DefaultFadeDuration
	}
	if opts.PrefetchLeeway <= 0 {
		opts.PrefetchLeeway = DefaultPrefetchLeeway
	}

	u := &Unit{
		id:             id,
		transport:      t,
		bus:            b,
		sched:          s,
		log:            log.WithField("unit", int(id)),
		fadeDuration:   opts.FadeDuration,
		prefetchLeeway: opts.PrefetchLeeway,
		state:          StateStopped,
		volume:         clampVolume(opts.Volume),
		steps:          defaultCrossFadeSteps,
	}
	u.fadeVolume = u.volume
	t.SetVolume(u.volume / 100)
	t.OnEvent(func(ev player.Event) {
		gen := u.gen.Load()
		s.Post(func() {
			// Events raised before the source was replaced are stale.
			if gen != u.gen.Load() {
				return
			}
			u.handle(ev)
		})
	})
	return u
}

// ID returns the unit identifier carried on its events.
func (u *Unit) ID() bus.UnitID { return u.id }

// State returns the lifecycle state.
func (u *Unit) State() State { return u.state }

// Locator returns the attached source locator, empty when none.
func (u *Unit) Locator() string { return u.locator }

// SetSource replaces the source. The unit's end-of-track signals are
// re-armed. Loading happens off the scheduler thread.
func (u *Unit) SetSource(locator string) *Unit {
	u.cancelFade()
	gen := u.gen.Add(1)
	u.locator = locator
	u.hasNextQueued = false
	u.wantPlay = false
	u.state = StateLoading

	t := u.transport
	u.sched.Go(func() {
		err := t.Load(locator)
		u.sched.Post(func() { u.loaded(gen, err) })
	})
	return u
}

func (u *Unit) loaded(gen uint64, err error) {
	if gen != u.gen.Load() {
		return
	}
	if err != nil {
		u.log.WithError(err).WithField("locator", u.locator).Warn("load failed")
		// The transport reports the failure as an error event.
		u.state = StateError
		u.wantPlay = false
		return
	}
	if u.state == StateLoading {
		u.state = StateIdle
	}
	if u.wantPlay {
		u.wantPlay = false
		u.startTransport()
	}
}

// Play starts output, or defers it until the source has loaded. A unit
// without a source, or whose source failed, stays silent.
func (u *Unit) Play() *Unit {
	if u.locator == "" || u.state == StateError {
		return u
	}
	if u.state == StateLoading {
		u.wantPlay = true
		return u
	}
	u.startTransport()
	return u
}

func (u *Unit) startTransport() {
	if err := u.transport.Play(); err != nil {
		u.fail("play", err)
	}
}

// Pause pauses output.
func (u *Unit) Pause() *Unit {
	u.wantPlay = false
	u.transport.Pause()
	return u
}

// Stop releases the source and cancels pending fades.
func (u *Unit) Stop() *Unit {
	u.cancelFade()
	u.gen.Add(1)
	u.transport.Stop()
	u.locator = ""
	u.wantPlay = false
	u.fading = false
	u.hasNextQueued = false
	u.state = StateStopped
	return u
}

// SetCurrentTime seeks to pos.
func (u *Unit) SetCurrentTime(pos time.Duration) *Unit {
	if err := u.transport.Seek(pos); err != nil {
		u.log.WithError(err).Debug("seek ignored")
	}
	return u
}

// SetVolume sets the persisted volume and applies it.
func (u *Unit) SetVolume(v float64) *Unit {
	u.volume = clampVolume(v)
	return u.FadeVolume(u.volume)
}

// FadeVolume applies a transient level without touching the persisted volume.
func (u *Unit) FadeVolume(v float64) *Unit {
	u.fadeVolume = clampVolume(v)
	u.transport.SetVolume(u.fadeVolume / 100)
	return u
}

// Volume returns the persisted volume.
func (u *Unit) Volume() float64 { return u.volume }

// AudibleVolume returns the level currently applied to the transport.
func (u *Unit) AudibleVolume() float64 { return u.fadeVolume }

// SetMuted mutes or unmutes the transport.
func (u *Unit) SetMuted(muted bool) *Unit {
	u.transport.SetMuted(muted)
	return u
}

// SetRepeat tells the unit whether its track loops, which disables the
// advance triggers.
func (u *Unit) SetRepeat(m media.RepeatMode) *Unit {
	u.repeat = m
	return u
}

// DisableAutoAdvance turns the queueNext and startFadeOut triggers off or on.
func (u *Unit) DisableAutoAdvance(disabled bool) *Unit {
	u.autoAdvanceDisabled = disabled
	return u
}

// SetFading marks the unit as fading, which suppresses its public
// time, play and pause events.
func (u *Unit) SetFading(fading bool) *Unit {
	u.fading = fading
	return u
}

// Fading reports whether the unit is fading.
func (u *Unit) Fading() bool { return u.fading }

// HasNextQueued reports whether queueNext has fired for the current source.
func (u *Unit) HasNextQueued() bool { return u.hasNextQueued }

// Rearm lets queueNext fire again for the current source.
func (u *Unit) Rearm() *Unit {
	u.hasNextQueued = false
	return u
}

// SetCrossFadeSteps sets the per-tick volume change used by both fades.
func (u *Unit) SetCrossFadeSteps(steps float64) *Unit {
	u.steps = steps
	return u
}

// CrossFadeSteps returns the per-tick volume change.
func (u *Unit) CrossFadeSteps() float64 { return u.steps }

// TimeState returns a progress snapshot.
func (u *Unit) TimeState() media.TimeState {
	return media.NewTimeState(u.transport.Position(), u.transport.Duration(), u.transport.Buffered())
}

func (u *Unit) fail(op string, err error) {
	terr := &TransportError{Unit: u.id, Op: op, Err: err}
	u.log.WithError(err).WithField("op", op).Warn("transport error")
	u.state = StateError
	u.bus.Publish(bus.ErrorEvent{Unit: u.id, Err: terr})
}

func (u *Unit) signal(t bus.Topic) {
	u.bus.Publish(bus.Signal{Name: t, Unit: u.id})
}

// handle maps a transport event onto unit state and bus events.
func (u *Unit) handle(ev player.Event) {
	if u.locator == "" {
		return
	}
	switch ev.Kind {
	case player.EventLoadStart:
		u.state = StateLoading
		u.signal(bus.TopicLoadStart)
	case player.EventCanPlay:
		if u.state != StatePlaying {
			u.state = StateIdle
		}
		u.signal(bus.TopicCanPlay)
	case player.EventPlay:
		u.state = StatePlaying
		u.signal(bus.TopicPlayInternal)
		if !u.fading {
			u.signal(bus.TopicPlay)
		}
	case player.EventPause:
		u.state = StatePaused
		u.signal(bus.TopicPauseInternal)
		if !u.fading {
			u.signal(bus.TopicPause)
		}
	case player.EventEnded:
		u.state = StateEnded
		u.signal(bus.TopicEnded)
	case player.EventError:
		u.state = StateError
		u.bus.Publish(bus.ErrorEvent{Unit: u.id, Err: &TransportError{Unit: u.id, Op: "stream", Err: ev.Err}})
	case player.EventWaiting:
		u.state = StateBuffering
		u.signal(bus.TopicWaiting)
	case player.EventDurationChange:
		u.bus.Publish(bus.DurationEvent{Unit: u.id, State: u.TimeState()})
	case player.EventSeeked:
		u.bus.Publish(bus.TimeEvent{Name: bus.TopicSeeked, Unit: u.id, State: u.TimeState()})
	case player.EventTimeUpdate:
		if u.state == StateBuffering {
			u.state = StatePlaying
		}
		u.timeUpdate()
	}
}

// timeUpdate publishes progress and fires the advance triggers.
func (u *Unit) timeUpdate() {
	ts := u.TimeState()
	u.bus.Publish(bus.TimeEvent{Name: bus.TopicTimeInternal, Unit: u.id, State: ts})
	if !u.fading || u.repeat == media.RepeatOne {
		u.bus.Publish(bus.TimeEvent{Name: bus.TopicTime, Unit: u.id, State: ts})
	}

	if !ts.Known() || u.repeat == media.RepeatOne || u.autoAdvanceDisabled {
		return
	}
	if !u.hasNextQueued && ts.Remaining <= u.prefetchLeeway {
		u.hasNextQueued = true
		u.log.WithField("remaining", ts.Remaining).Debug("queue next")
		u.signal(bus.TopicQueueNext)
	}
	if ts.Remaining <= u.fadeDuration*fadeLeadFactor {
		u.signal(bus.TopicStartFadeOut)
	}
}

// FadeIn starts (first) or continues raising the audible level toward the
// persisted volume, one step per FadeTick. Each step within the advance
// window publishes nextSong.
func (u *Unit) FadeIn(first bool) {
	if first {
		u.cancelFade()
		u.FadeVolume(0)
		u.fadeIn = Ramp{Level: 0, Target: u.volume, Step: u.steps}
		if u.state != StatePlaying {
			u.Play()
		}
	}

	u.fadeIn.Target = u.volume
	u.fadeIn.Step = u.steps
	done := u.fadeIn.Advance()
	u.FadeVolume(u.fadeIn.Level)

	if AdvanceReady(u.fadeIn.Level, u.volume, u.steps) {
		u.signal(bus.TopicNextSong)
	}
	if done {
		u.fadeTimer = nil
		u.fading = false
		return
	}
	u.fadeTimer = u.sched.AfterFunc(FadeTick, func() { u.FadeIn(false) })
}

// FadeOut starts (first) or continues lowering the audible level to zero.
// At zero the source is released, endFadeOut is published, and after
// SettleDelay the unit re-arms and publishes setCurrentAudio.
func (u *Unit) FadeOut(first bool) {
	u.fading = true
	if first {
		u.cancelFade()
		u.fadeOut = Ramp{Level: u.volume, Target: 0, Step: u.steps}
	}

	u.fadeOut.Step = u.steps
	done := u.fadeOut.Advance()
	u.FadeVolume(u.fadeOut.Level)

	if !done {
		u.fadeTimer = u.sched.AfterFunc(FadeTick, func() { u.FadeOut(false) })
		return
	}

	u.fadeTimer = nil
	u.gen.Add(1)
	u.transport.Stop()
	u.locator = ""
	u.state = StateStopped
	u.signal(bus.TopicEndFadeOut)

	u.settle = u.sched.AfterFunc(SettleDelay, func() {
		u.settle = nil
		u.hasNextQueued = false
		u.fading = false
		u.signal(bus.TopicSetCurrentAudio)
	})
}

// CancelFade stops pending fade steps and the settle signal, then restores
// the persisted volume.
func (u *Unit) CancelFade() *Unit {
	u.cancelFade()
	u.fading = false
	return u.FadeVolume(u.volume)
}

func (u *Unit) cancelFade() {
	if u.fadeTimer != nil {
		u.fadeTimer.Stop()
		u.fadeTimer = nil
	}
	if u.settle != nil {
		u.settle.Stop()
		u.settle = nil
	}
}
