package unit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/player"
	"github.com/llehouerou/duet/internal/sched"
)

type fixture struct {
	sched  *sched.Manual
	bus    *bus.Bus
	mock   *player.Mock
	unit   *Unit
	events []bus.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sched: sched.NewManual(),
		bus:   bus.New(nil),
		mock:  player.NewMock(),
	}
	t.Cleanup(func() { _ = f.bus.Close() })
	f.bus.SubscribeAll(func(e bus.Event) { f.events = append(f.events, e) })
	f.unit = New(1, f.mock, f.bus, f.sched, Options{Volume: 100})
	return f
}

func (f *fixture) count(topic bus.Topic) int {
	n := 0
	for _, e := range f.events {
		if e.Topic() == topic {
			n++
		}
	}
	return n
}

func (f *fixture) reset() { f.events = nil }

// loadPlaying attaches a source of the given length and starts it.
func (f *fixture) loadPlaying(d time.Duration) {
	f.mock.SetDuration(d)
	f.unit.SetSource("a.mp3").Play()
	f.reset()
}

func TestStepSize(t *testing.T) {
	assert.InDelta(t, 100.0/3/5, StepSize(100, 3), 1e-9)
	assert.InDelta(t, 10.0, StepSize(50, 1), 1e-9)
	assert.Equal(t, 70.0, StepSize(70, 0))
}

func TestAdvanceReady(t *testing.T) {
	step := StepSize(100, 3)
	assert.False(t, AdvanceReady(0, 100, step))
	assert.False(t, AdvanceReady(13, 100, step))
	assert.True(t, AdvanceReady(20, 100, step))
	assert.True(t, AdvanceReady(0, 0, 0))
}

func TestRamp(t *testing.T) {
	tests := []struct {
		name  string
		ramp  Ramp
		ticks int
	}{
		{"fade in default", Ramp{Level: 0, Target: 100, Step: StepSize(100, 3)}, 15},
		{"fade out default", Ramp{Level: 100, Target: 0, Step: StepSize(100, 3)}, 15},
		{"fade in half volume", Ramp{Level: 0, Target: 50, Step: StepSize(50, 2)}, 10},
		{"zero step", Ramp{Level: 40, Target: 0, Step: 0}, 1},
		{"already there", Ramp{Level: 0, Target: 0, Step: 5}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ticks, tt.ramp.Ticks())
		})
	}
}

func TestRamp_NeverLeavesBounds(t *testing.T) {
	r := Ramp{Level: 95, Target: 100, Step: 30}
	assert.True(t, r.Advance())
	assert.Equal(t, 100.0, r.Level)

	r = Ramp{Level: 5, Target: 0, Step: 30}
	assert.True(t, r.Advance())
	assert.Equal(t, 0.0, r.Level)
}

func TestSetSource_LoadsAndPlays(t *testing.T) {
	f := newFixture(t)
	f.mock.SetDuration(time.Minute)

	f.unit.SetSource("a.mp3").Play()

	assert.Equal(t, []string{"a.mp3"}, f.mock.LoadCalls())
	assert.Equal(t, StatePlaying, f.unit.State())
	assert.Equal(t, "a.mp3", f.unit.Locator())
	assert.Equal(t, 1, f.count(bus.TopicPlay))
	assert.Equal(t, 1, f.count(bus.TopicPlayInternal))
	assert.Equal(t, 1, f.count(bus.TopicCanPlay))
	assert.Equal(t, 1, f.count(bus.TopicDuration))
}

// deferredGo holds background work until released.
type deferredGo struct {
	*sched.Manual
	work []func()
}

func (d *deferredGo) Go(fn func()) { d.work = append(d.work, fn) }

func (d *deferredGo) release() {
	for _, fn := range d.work {
		fn()
	}
	d.work = nil
}

func TestPlay_WhileLoadingIsDeferred(t *testing.T) {
	s := &deferredGo{Manual: sched.NewManual()}
	b := bus.New(nil)
	defer b.Close()
	m := player.NewMock()
	u := New(1, m, b, s, Options{Volume: 100})

	u.SetSource("a.mp3").Play()
	assert.Equal(t, StateLoading, u.State())
	assert.Zero(t, m.PlayCalls())

	s.release()
	assert.Equal(t, 1, m.PlayCalls())
	assert.Equal(t, StatePlaying, u.State())
}

func TestSetSource_StaleLoadIgnored(t *testing.T) {
	s := &deferredGo{Manual: sched.NewManual()}
	b := bus.New(nil)
	defer b.Close()
	m := player.NewMock()
	u := New(1, m, b, s, Options{Volume: 100})

	u.SetSource("a.mp3").Play()
	u.SetSource("b.mp3")
	s.release()

	assert.Equal(t, "b.mp3", u.Locator())
	assert.Equal(t, StateIdle, u.State())
	assert.Zero(t, m.PlayCalls())
}

func TestVolume_PersistedVersusFade(t *testing.T) {
	f := newFixture(t)

	f.unit.SetVolume(150)
	assert.Equal(t, 100.0, f.unit.Volume())
	assert.InDelta(t, 1.0, f.mock.Level(), 1e-9)

	f.unit.FadeVolume(30)
	assert.Equal(t, 100.0, f.unit.Volume())
	assert.Equal(t, 30.0, f.unit.AudibleVolume())
	assert.InDelta(t, 0.3, f.mock.Level(), 1e-9)

	f.unit.FadeVolume(-5)
	assert.Zero(t, f.unit.AudibleVolume())

	f.unit.SetVolume(-1)
	assert.Zero(t, f.unit.Volume())
}

func TestSetMuted(t *testing.T) {
	f := newFixture(t)
	f.unit.SetMuted(true)
	assert.True(t, f.mock.Muted())
	f.unit.SetMuted(false)
	assert.False(t, f.mock.Muted())
}

func TestTimeUpdate_QueueNextFiresOncePerSource(t *testing.T) {
	f := newFixture(t)
	f.loadPlaying(60 * time.Second)

	f.mock.SimulateTimeUpdate(40 * time.Second)
	assert.Zero(t, f.count(bus.TopicQueueNext))

	f.mock.SimulateTimeUpdate(50 * time.Second)
	f.mock.SimulateTimeUpdate(51 * time.Second)
	assert.Equal(t, 1, f.count(bus.TopicQueueNext))
	assert.True(t, f.unit.HasNextQueued())

	f.unit.SetSource("b.mp3").Play()
	f.mock.SimulateTimeUpdate(55 * time.Second)
	assert.Equal(t, 2, f.count(bus.TopicQueueNext))
}

func TestTimeUpdate_StartFadeOutEveryTickInWindow(t *testing.T) {
	f := newFixture(t)
	f.loadPlaying(60 * time.Second)

	f.mock.SimulateTimeUpdate(47 * time.Second)
	assert.Zero(t, f.count(bus.TopicStartFadeOut))

	f.mock.SimulateTimeUpdate(48 * time.Second)
	f.mock.SimulateTimeUpdate(49 * time.Second)
	assert.Equal(t, 2, f.count(bus.TopicStartFadeOut))
}

func TestTimeUpdate_Guards(t *testing.T) {
	tests := []struct {
		name  string
		setup func(u *Unit)
	}{
		{"repeat one", func(u *Unit) { u.SetRepeat(media.RepeatOne) }},
		{"auto advance disabled", func(u *Unit) { u.DisableAutoAdvance(true) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.loadPlaying(60 * time.Second)
			tt.setup(f.unit)

			f.mock.SimulateTimeUpdate(59 * time.Second)

			assert.Zero(t, f.count(bus.TopicQueueNext))
			assert.Zero(t, f.count(bus.TopicStartFadeOut))
			assert.False(t, f.unit.HasNextQueued())
		})
	}
}

func TestTimeUpdate_UnknownDurationNeverTriggers(t *testing.T) {
	f := newFixture(t)
	f.loadPlaying(0)

	f.mock.SimulateTimeUpdate(time.Hour)

	assert.Zero(t, f.count(bus.TopicQueueNext))
	assert.Equal(t, 1, f.count(bus.TopicTime))
}

func TestTimeUpdate_TimeSuppressedWhileFading(t *testing.T) {
	f := newFixture(t)
	f.loadPlaying(60 * time.Second)
	f.unit.SetFading(true)

	f.mock.SimulateTimeUpdate(10 * time.Second)
	assert.Zero(t, f.count(bus.TopicTime))
	assert.Equal(t, 1, f.count(bus.TopicTimeInternal))

	f.unit.SetRepeat(media.RepeatOne)
	f.mock.SimulateTimeUpdate(11 * time.Second)
	assert.Equal(t, 1, f.count(bus.TopicTime))
}

func TestFadeOut_ReleasesAndSignals(t *testing.T) {
	f := newFixture(t)
	f.loadPlaying(60 * time.Second)
	f.mock.SimulateTimeUpdate(50 * time.Second)
	require.True(t, f.unit.HasNextQueued())

	f.unit.SetCrossFadeSteps(StepSize(100, 3))
	f.unit.FadeOut(true)
	assert.True(t, f.unit.Fading())
	assert.Less(t, f.unit.AudibleVolume(), 100.0)

	f.sched.Advance(14 * FadeTick)
	assert.Zero(t, f.unit.AudibleVolume())
	assert.Equal(t, 1, f.count(bus.TopicEndFadeOut))
	assert.Equal(t, player.Stopped, f.mock.State())
	assert.Equal(t, StateStopped, f.unit.State())
	assert.Zero(t, f.count(bus.TopicSetCurrentAudio))
	assert.True(t, f.unit.Fading())

	f.sched.Advance(SettleDelay)
	assert.Equal(t, 1, f.count(bus.TopicSetCurrentAudio))
	assert.False(t, f.unit.Fading())
	assert.False(t, f.unit.HasNextQueued())
	assert.Equal(t, 100.0, f.unit.Volume())
	assert.Zero(t, f.count(bus.TopicPause))
}

func TestFadeIn_ReachesVolumeAndSignalsNextSong(t *testing.T) {
	f := newFixture(t)
	f.mock.SetDuration(60 * time.Second)
	f.unit.SetSource("b.mp3").FadeVolume(0)
	f.reset()

	f.unit.SetCrossFadeSteps(StepSize(100, 3))
	f.unit.FadeIn(true)
	assert.Equal(t, StatePlaying, f.unit.State())
	assert.Zero(t, f.count(bus.TopicNextSong))

	f.sched.Advance(2 * FadeTick)
	assert.Equal(t, 1, f.count(bus.TopicNextSong))

	f.sched.Advance(20 * FadeTick)
	assert.Equal(t, 100.0, f.unit.AudibleVolume())
	assert.Equal(t, 13, f.count(bus.TopicNextSong))
	assert.False(t, f.unit.Fading())
	assert.Zero(t, f.sched.Pending())
}

func TestFadeIn_EndedTrackIsNotRestarted(t *testing.T) {
	f := newFixture(t)
	f.mock.SetDuration(2 * time.Second)
	f.unit.SetSource("b.mp3").FadeVolume(0)
	f.unit.SetCrossFadeSteps(StepSize(100, 3))
	f.unit.FadeIn(true)
	require.Equal(t, 1, f.mock.PlayCalls())
	f.reset()

	f.mock.SimulateEnded()
	f.sched.Advance(5 * FadeTick)

	assert.Equal(t, 1, f.mock.PlayCalls())
	assert.Equal(t, StateEnded, f.unit.State())
	assert.Equal(t, 1, f.count(bus.TopicEnded))
}

func TestFadeIn_ZeroVolumeCompletesImmediately(t *testing.T) {
	f := newFixture(t)
	f.mock.SetDuration(60 * time.Second)
	f.unit.SetVolume(0)
	f.unit.SetSource("b.mp3")
	f.reset()

	f.unit.SetCrossFadeSteps(StepSize(0, 3))
	f.unit.FadeIn(true)

	assert.Equal(t, 1, f.count(bus.TopicNextSong))
	assert.Zero(t, f.sched.Pending())
}

func TestCancelFade(t *testing.T) {
	f := newFixture(t)
	f.loadPlaying(60 * time.Second)
	f.unit.SetCrossFadeSteps(StepSize(100, 3))
	f.unit.FadeOut(true)

	f.unit.CancelFade()

	assert.Zero(t, f.sched.Pending())
	assert.False(t, f.unit.Fading())
	assert.Equal(t, 100.0, f.unit.AudibleVolume())
}

func TestTransportError_Published(t *testing.T) {
	f := newFixture(t)
	f.loadPlaying(60 * time.Second)
	cause := errors.New("decode failure")

	f.mock.SimulateError(cause)

	require.Equal(t, 1, f.count(bus.TopicError))
	ev := f.events[len(f.events)-1].(bus.ErrorEvent)
	assert.Equal(t, bus.UnitID(1), ev.Unit)
	var terr *TransportError
	require.ErrorAs(t, ev.Err, &terr)
	assert.ErrorIs(t, ev.Err, cause)
	assert.Equal(t, StateError, f.unit.State())
}

func TestLoadFailure_PublishesError(t *testing.T) {
	f := newFixture(t)
	f.mock.SetLoadError(errors.New("404"))

	f.unit.SetSource("missing.mp3").Play()

	assert.Equal(t, 1, f.count(bus.TopicError))
	assert.Equal(t, StateError, f.unit.State())
	assert.Zero(t, f.mock.PlayCalls())
}

func TestStop_DropsLaterTransportEvents(t *testing.T) {
	f := newFixture(t)
	f.loadPlaying(60 * time.Second)

	f.unit.Stop()
	f.mock.SimulateEnded()

	assert.Zero(t, f.count(bus.TopicEnded))
	assert.Equal(t, StateStopped, f.unit.State())
}

func TestWaitingAndEnded(t *testing.T) {
	f := newFixture(t)
	f.loadPlaying(60 * time.Second)

	f.mock.SimulateWaiting()
	assert.Equal(t, StateBuffering, f.unit.State())
	f.mock.SimulateTimeUpdate(time.Second)
	assert.Equal(t, StatePlaying, f.unit.State())

	f.mock.SimulateEnded()
	assert.Equal(t, StateEnded, f.unit.State())
	assert.Equal(t, 1, f.count(bus.TopicEnded))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "PLAYING", StatePlaying.String())
	assert.Equal(t, "BUFFERING", StateBuffering.String())
	assert.Equal(t, "UNKNOWN", State(42).String())
}
