package playback

import (
	"time"

	"github.com/llehouerou/duet/internal/bus"
	"github.com/llehouerou/duet/internal/media"
	"github.com/llehouerou/duet/internal/unit"
)

// Play resumes the current unit, loading the current song first when no
// source is attached (after a restore).
func (e *Engine) Play() error {
	return e.do(func() {
		if e.current.Locator() == "" {
			if t := e.queue.Current(); t != nil {
				e.load(t)
			}
			return
		}
		e.current.Play()
	})
}

// Pause pauses the current unit. A crossfade in progress is cut short.
func (e *Engine) Pause() error {
	return e.do(func() {
		e.abortCycle()
		e.current.Pause()
	})
}

// TogglePlayback pauses when playing and plays otherwise.
func (e *Engine) TogglePlayback() error {
	if e.State() == unit.StatePlaying {
		return e.Pause()
	}
	return e.Play()
}

// Stop silences both units and clears the current song and the queue.
// The backlog is kept.
func (e *Engine) Stop() error {
	return e.do(func() {
		e.abortCycle()
		e.loadSeq++
		e.current.Stop()
		e.next.Stop()
		e.queue.Clear()
		e.bus.Publish(bus.Signal{Name: bus.TopicStop})
	})
}

// Next moves to the next track per the next policy.
func (e *Engine) Next() error {
	return e.do(func() {
		e.abortCycle()
		e.skips = 0
		e.advance()
	})
}

// Previous restarts the current track when it has played past
// PreviousRestartThreshold, and otherwise steps back into the backlog.
// With an empty backlog the current track restarts.
func (e *Engine) Previous() error {
	return e.do(func() {
		e.abortCycle()
		if e.current.TimeState().Position > PreviousRestartThreshold {
			e.current.Rearm().SetCurrentTime(0)
			return
		}
		t, ok := e.queue.Retreat()
		if !ok {
			e.current.Rearm().SetCurrentTime(0)
			return
		}
		e.skips = 0
		e.load(t)
	})
}

// PlayTrack makes t current and plays it. With a context list containing
// t, the queue becomes the rest of that list, wrapped around t.
func (e *Engine) PlayTrack(t media.Track, context []media.Track) error {
	return e.do(func() {
		e.abortCycle()
		e.skips = 0
		e.queue.Select(t, context)
		e.load(e.queue.Current())
	})
}

// Seek moves the current unit to position when it lies within the track.
// A pending crossfade is cancelled.
func (e *Engine) Seek(position time.Duration) error {
	return e.do(func() {
		ts := e.current.TimeState()
		if position < 0 || !ts.Known() || position >= ts.Duration {
			return
		}
		e.abortCycle()
		e.current.Rearm().SetCurrentTime(position)
	})
}

// SetVolume sets the volume of both units, clamped to 0-100.
func (e *Engine) SetVolume(volume int) error {
	volume = min(max(volume, 0), 100)
	return e.do(func() {
		e.volume = volume
		for _, u := range e.units {
			u.SetVolume(float64(volume))
		}
		e.bus.Publish(bus.VolumeEvent{Volume: volume})
	})
}

// Volume returns the volume, 0-100.
func (e *Engine) Volume() int {
	return query(e, func() int { return e.volume })
}

func (e *Engine) setMuted(muted bool) error {
	return e.do(func() {
		e.muted = muted
		for _, u := range e.units {
			u.SetMuted(muted)
		}
		e.bus.Publish(bus.MuteEvent{Muted: muted})
	})
}

// Mute mutes both units.
func (e *Engine) Mute() error { return e.setMuted(true) }

// Unmute unmutes both units.
func (e *Engine) Unmute() error { return e.setMuted(false) }

// ToggleMute flips the mute flag.
func (e *Engine) ToggleMute() error { return e.setMuted(!e.Muted()) }

// Muted reports whether output is muted.
func (e *Engine) Muted() bool {
	return query(e, func() bool { return e.muted })
}

// Repeat returns the repeat mode.
func (e *Engine) Repeat() media.RepeatMode {
	return query(e, e.queue.Repeat)
}

// SetRepeat sets the repeat mode. Switching to RepeatOne cancels an
// in-flight crossfade.
func (e *Engine) SetRepeat(mode media.RepeatMode) error {
	return e.do(func() {
		for _, u := range e.units {
			u.SetRepeat(mode)
		}
		if mode == media.RepeatOne {
			e.abortCycle()
		}
		e.queue.SetRepeat(mode)
	})
}

// CycleRepeat steps to the next repeat mode and returns it.
func (e *Engine) CycleRepeat() media.RepeatMode {
	mode := e.Repeat().Next()
	if err := e.SetRepeat(mode); err != nil {
		return media.RepeatOff
	}
	return mode
}

// Shuffle reports whether shuffle is enabled.
func (e *Engine) Shuffle() bool {
	return query(e, e.queue.Shuffle)
}

// SetShuffle enables or disables shuffle.
func (e *Engine) SetShuffle(enabled bool) error {
	return e.do(func() { e.queue.SetShuffle(enabled) })
}

// ToggleShuffle flips shuffle and returns the new value.
func (e *Engine) ToggleShuffle() bool {
	enabled := !e.Shuffle()
	if err := e.SetShuffle(enabled); err != nil {
		return false
	}
	return enabled
}

// SetAutoAdvance turns the end-of-track triggers on or off. While off,
// tracks play to their end and stop there.
func (e *Engine) SetAutoAdvance(enabled bool) error {
	return e.do(func() {
		e.autoAdvance = enabled
		for _, u := range e.units {
			u.DisableAutoAdvance(!enabled)
		}
		if !enabled {
			e.abortCycle()
		}
	})
}

// SetQueue replaces the queue. A crossfade that has not committed yet is
// cancelled.
func (e *Engine) SetQueue(tracks []media.Track) error {
	return e.do(func() {
		if c := e.cycle; c != nil && !c.committed {
			e.abortCycle()
		}
		e.queue.SetQueue(tracks)
	})
}

// AddToQueue appends t to the queue.
func (e *Engine) AddToQueue(t media.Track) error {
	return e.do(func() { e.queue.AddToQueue(t) })
}

// AddToQueueNext puts t at the head of the queue.
func (e *Engine) AddToQueueNext(t media.Track) error {
	return e.do(func() { e.queue.AddToQueueNext(t) })
}

// RemoveFromQueue removes t from the queue. Removing the track a
// crossfade is preparing cancels the crossfade.
func (e *Engine) RemoveFromQueue(t media.Track) error {
	return e.do(func() {
		if c := e.cycle; c != nil && !c.committed && c.track.Same(t) {
			e.abortCycle()
		}
		e.queue.RemoveFromQueue(t)
	})
}

// PushToQueue appends tracks to the queue.
func (e *Engine) PushToQueue(tracks ...media.Track) error {
	return e.do(func() { e.queue.PushToQueue(tracks...) })
}

// MoveInQueue moves the queue entry at from to index to.
func (e *Engine) MoveInQueue(from, to int) error {
	return e.do(func() {
		if c := e.cycle; c != nil && !c.committed {
			e.abortCycle()
		}
		e.queue.MoveInQueue(from, to)
	})
}

// SetBacklog replaces the backlog.
func (e *Engine) SetBacklog(tracks []media.Track) error {
	return e.do(func() { e.queue.SetBacklog(tracks) })
}

// AddToBacklog appends t to the backlog.
func (e *Engine) AddToBacklog(t media.Track) error {
	return e.do(func() { e.queue.AddToBacklog(&t) })
}

// PushToBacklog appends tracks to the backlog.
func (e *Engine) PushToBacklog(tracks ...media.Track) error {
	return e.do(func() { e.queue.PushToBacklog(tracks...) })
}

// RemoveFromBacklog removes t from the backlog.
func (e *Engine) RemoveFromBacklog(t media.Track) error {
	return e.do(func() { e.queue.RemoveFromBacklog(t) })
}

// Restore loads a saved session without starting playback.
func (e *Engine) Restore(current *media.Track, queue, backlog []media.Track) error {
	return e.do(func() {
		e.abortCycle()
		e.queue.Restore(current, queue, backlog)
	})
}

// State returns the current unit's state.
func (e *Engine) State() unit.State {
	return query(e, func() unit.State { return e.current.State() })
}

// Phase returns the crossfade phase.
func (e *Engine) Phase() Phase {
	return query(e, func() Phase { return e.phase })
}

// CurrentSong returns the current song, or nil.
func (e *Engine) CurrentSong() *media.Track {
	return query(e, e.queue.Current)
}

// Queue returns the queue.
func (e *Engine) Queue() []media.Track {
	return query(e, e.queue.Queue)
}

// Backlog returns the backlog, oldest first.
func (e *Engine) Backlog() []media.Track {
	return query(e, e.queue.Backlog)
}

// TimeState returns the current unit's progress.
func (e *Engine) TimeState() media.TimeState {
	return query(e, func() media.TimeState { return e.current.TimeState() })
}

// CurrentUnit returns the id of the unit holding the current role.
func (e *Engine) CurrentUnit() bus.UnitID {
	return query(e, func() bus.UnitID { return e.current.ID() })
}
