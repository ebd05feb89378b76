package playback

import (
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/unit"
)

// cycle is one crossfade from the current unit to the next one.
type cycle struct {
	track     media.Track
	from      *unit.Unit
	to        *unit.Unit
	volume    float64
	committed bool
	// requeue records a queueNext raised by the incoming unit before the
	// swap, replayed once it becomes current.
	requeue bool
	subs    []bus.ID
}

func (c *cycle) fields() logrus.Fields {
	return logrus.Fields{"track": c.track.ID, "from": int(c.from.ID()), "to": int(c.to.ID())}
}

// onQueueNext starts a cycle when the current unit nears its end.
func (e *Engine) onQueueNext(ev bus.Event) {
	id := bus.UnitOf(ev)
	if id != e.current.ID() {
		if c := e.cycle; c != nil && id == c.to.ID() {
			c.requeue = true
		}
		return
	}
	if !e.autoAdvance || e.queue.Repeat() == media.RepeatOne || e.cycle != nil {
		return
	}
	if e.queue.Repeat() == media.RepeatAll && e.queue.QueueLen() == 0 {
		e.queue.RotateBacklog()
	}
	track, ok := e.queue.PeekNext()
	if !ok {
		return
	}

	c := &cycle{track: track, from: e.current, to: e.next, volume: float64(e.volume)}
	e.cycle = c
	e.setPhase(PhasePrefetching)
	e.log.WithFields(c.fields()).Debug("prefetching")

	e.sched.Go(func() {
		loc, err := e.resolveTrack(track)
		e.sched.Post(func() { e.prefetched(c, loc, err) })
	})
}

// prefetched attaches the resolved successor to the next unit, silent,
// and arms the fade.
func (e *Engine) prefetched(c *cycle, loc string, err error) {
	if e.cycle != c || e.queue.Repeat() == media.RepeatOne {
		return
	}
	if err != nil {
		e.resolveFailed(c.track, err)
		e.queue.DropPending()
		e.endCycle(c)
		c.from.Rearm()
		return
	}

	c.from.SetFading(true)
	c.to.SetSource(loc).FadeVolume(0)
	c.subs = append(c.subs,
		e.bus.OnceMatch(bus.TopicStartFadeOut, bus.FromUnit(c.from.ID()), func(bus.Event) {
			e.startFade(c)
		}))
}

// startFade runs both fades with the same step size.
func (e *Engine) startFade(c *cycle) {
	if e.cycle != c || e.queue.Repeat() == media.RepeatOne {
		return
	}
	steps := unit.StepSize(c.volume, e.fadeDuration.Seconds())
	e.setPhase(PhaseFading)
	e.log.WithFields(c.fields()).WithField("steps", steps).Debug("crossfading")

	c.subs = append(c.subs,
		e.bus.OnceMatch(bus.TopicNextSong, bus.FromUnit(c.to.ID()), func(bus.Event) {
			e.commit(c)
		}))
	c.from.SetCrossFadeSteps(steps).FadeOut(true)
	c.to.SetCrossFadeSteps(steps).FadeIn(true)
}

// commit advances the queue once the incoming track is audible enough.
func (e *Engine) commit(c *cycle) {
	if e.cycle != c || c.committed || e.queue.Repeat() == media.RepeatOne {
		return
	}
	if _, err := e.queue.CommitAdvance(c.track); err != nil {
		e.log.WithError(err).WithFields(c.fields()).Warn("commit advance")
		e.abortCycle()
		return
	}
	c.committed = true
	e.setPhase(PhaseSwapping)
	c.subs = append(c.subs,
		e.bus.OnceMatch(bus.TopicSetCurrentAudio, bus.FromUnit(c.from.ID()), func(bus.Event) {
			e.swap(c)
		}))
}

// swap exchanges the unit roles after the outgoing unit has settled.
func (e *Engine) swap(c *cycle) {
	if e.cycle != c {
		return
	}
	c.from.SetFading(false)
	e.current, e.next = c.to, c.from
	e.endCycle(c)
	e.log.WithField("current", int(e.current.ID())).Debug("swapped")

	if c.requeue {
		e.onQueueNext(bus.Signal{Name: bus.TopicQueueNext, Unit: e.current.ID()})
	}
}

func (e *Engine) endCycle(c *cycle) {
	for _, id := range c.subs {
		e.bus.Unsubscribe(id)
	}
	c.subs = nil
	if e.cycle == c {
		e.cycle = nil
		e.setPhase(PhaseIdle)
	}
}

// abortCycle cancels the in-flight cycle. Before the commit the current
// unit is restored to full volume and the next unit released; after it
// the swap completes at once.
func (e *Engine) abortCycle() {
	c := e.cycle
	if c == nil {
		return
	}
	e.log.WithFields(c.fields()).WithField("committed", c.committed).Debug("cycle aborted")
	e.endCycle(c)

	if c.committed {
		c.from.Stop()
		c.to.CancelFade()
		e.current, e.next = c.to, c.from
		return
	}
	c.from.CancelFade().Rearm()
	c.to.Stop()
}
