package player

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// Play starts or resumes output.
func (p *Player) Play() error {
	p.mu.Lock()
	switch {
	case p.state == Playing:
		p.mu.Unlock()
		return nil
	case !p.state.HasSource() || p.ctrl == nil:
		p.mu.Unlock()
		return ErrNotLoaded
	}
	ended := p.state == Ended
	src := p.src
	p.mu.Unlock()

	if ended {
		if err := p.Seek(0); err != nil {
			return err
		}
	}

	p.mu.Lock()
	if p.src != src || p.ctrl == nil {
		p.mu.Unlock()
		return ErrNotLoaded
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = Playing
	p.startTickerLocked()
	p.mu.Unlock()

	p.emit(Event{Kind: EventPlay})
	return nil
}

// Pause pauses output. No-op unless playing.
func (p *Player) Pause() {
	p.mu.Lock()
	if p.state != Playing || p.ctrl == nil {
		p.mu.Unlock()
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = Paused
	p.stopTickerLocked()
	p.mu.Unlock()

	p.emit(Event{Kind: EventPause})
}

// Stop detaches and closes the source. The shared speaker keeps running
// for the other unit.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	p.stopTickerLocked()
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Streamer = nil
		speaker.Unlock()
	}
	if p.src != nil {
		p.src.Close()
		p.src = nil
	}
	p.ctrl = nil
	p.volume = nil
	p.state = Stopped
}

// requeueLocked puts a drained source back on the mixer, paused.
func (p *Player) requeueLocked() {
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	gen := p.gen
	speaker.Play(beep.Seq(p.volume, beep.Callback(func() { go p.finished(gen) })))
}

// Position returns the playback position.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return p.src.format.SampleRate.D(p.src.streamer.Position())
}

// Seek jumps to pos, clamped to the source bounds.
func (p *Player) Seek(pos time.Duration) error {
	p.mu.Lock()
	src := p.src
	if src == nil {
		p.mu.Unlock()
		return ErrNotLoaded
	}
	if !src.seekable {
		p.mu.Unlock()
		return ErrNotSeekable
	}

	n := src.format.SampleRate.N(max(pos, 0))
	speaker.Lock()
	if length := src.streamer.Len(); length > 0 {
		n = min(n, length-1)
	}
	err := src.streamer.Seek(n)
	speaker.Unlock()
	if err == nil && p.state == Ended {
		p.state = Paused
		p.requeueLocked()
	}
	p.mu.Unlock()

	if err != nil {
		return err
	}
	p.emit(Event{Kind: EventSeeked})
	return nil
}
