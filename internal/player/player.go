package player

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/sirupsen/logrus"
)

// TimeUpdateInterval is how often a playing transport reports progress.
const TimeUpdateInterval = 250 * time.Millisecond

const speakerSampleRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// initSpeaker opens the shared output once. Both playback units mix into it.
func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerSampleRate, speakerSampleRate.N(time.Second/10))
	})
	return speakerErr
}

// Options configures a Player.
type Options struct {
	// AccessToken is sent with remote requests when set.
	AccessToken string
	Client      *http.Client
	Log         logrus.FieldLogger
}

// Player is a beep-backed transport. Several players share the speaker
// mixer, which is what lets two units overlap during a crossfade.
type Player struct {
	client *http.Client
	token  string
	log    logrus.FieldLogger

	mu       sync.Mutex
	state    State
	src      *source
	ctrl     *beep.Ctrl
	volume   *effects.Volume
	level    float64
	muted    bool
	gen      uint64
	onEvent  func(Event)
	tickStop chan struct{}
	wg       sync.WaitGroup
}

// New creates a stopped player at full volume.
func New(opts Options) *Player {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Player{
		client: client,
		token:  opts.AccessToken,
		log:    log.WithField("component", "player"),
		state:  Stopped,
		level:  1,
	}
}

// OnEvent sets the event handler.
func (p *Player) OnEvent(fn func(Event)) {
	p.mu.Lock()
	p.onEvent = fn
	p.mu.Unlock()
}

func (p *Player) emit(ev Event) {
	p.mu.Lock()
	fn := p.onEvent
	p.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

// Load releases the current source, decodes locator and queues it paused
// on the speaker.
func (p *Player) Load(locator string) error {
	p.Stop()

	p.mu.Lock()
	p.state = Loading
	gen := p.gen
	p.mu.Unlock()
	p.emit(Event{Kind: EventLoadStart})

	src, err := p.open(locator)
	if err == nil {
		err = initSpeaker()
		if err != nil {
			src.Close()
		}
	}
	if err != nil {
		p.mu.Lock()
		if p.gen == gen {
			p.state = Failed
		}
		p.mu.Unlock()
		err = fmt.Errorf("load %s: %w", locator, err)
		p.emit(Event{Kind: EventError, Err: err})
		return err
	}

	var stream beep.Streamer = src.streamer
	if src.format.SampleRate != speakerSampleRate {
		stream = beep.Resample(4, src.format.SampleRate, speakerSampleRate, src.streamer)
	}

	p.mu.Lock()
	if p.gen != gen {
		// Stopped or reloaded while decoding.
		p.mu.Unlock()
		src.Close()
		return nil
	}
	p.src = src
	p.ctrl = &beep.Ctrl{Streamer: stream, Paused: true}
	p.volume = &effects.Volume{Streamer: p.ctrl, Base: 2, Volume: levelToVolume(p.level), Silent: p.muted}
	p.state = Ready
	vol := p.volume
	p.mu.Unlock()

	speaker.Play(beep.Seq(vol, beep.Callback(func() { go p.finished(gen) })))

	p.emit(Event{Kind: EventDurationChange})
	p.emit(Event{Kind: EventCanPlay})
	return nil
}

// finished runs off the speaker goroutine once the sequence drains. The
// speaker lock is held while the callback fires, so it must not take p.mu.
func (p *Player) finished(gen uint64) {
	p.mu.Lock()
	if p.gen != gen || p.state != Playing {
		p.mu.Unlock()
		return
	}
	p.state = Ended
	p.stopTickerLocked()
	p.mu.Unlock()
	p.emit(Event{Kind: EventEnded})
}

// State returns the transport state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Duration returns the source length, or zero when unknown.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil {
		return 0
	}
	return p.src.duration()
}

// Buffered reports the number of buffered ranges: the whole source once
// it is decoded, nothing otherwise.
func (p *Player) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.src == nil {
		return 0
	}
	return 1
}

func (p *Player) startTickerLocked() {
	p.stopTickerLocked()
	stop := make(chan struct{})
	p.tickStop = stop
	gen := p.gen
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(TimeUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := p.streamErr(gen); err != nil {
					p.mu.Lock()
					p.state = Failed
					p.stopTickerLocked()
					p.mu.Unlock()
					p.emit(Event{Kind: EventError, Err: err})
					return
				}
				p.emit(Event{Kind: EventTimeUpdate})
			}
		}
	}()
}

func (p *Player) stopTickerLocked() {
	if p.tickStop != nil {
		close(p.tickStop)
		p.tickStop = nil
	}
}

func (p *Player) streamErr(gen uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen || p.src == nil {
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()
	return p.src.streamer.Err()
}

// Close stops playback and waits for the progress goroutine.
func (p *Player) Close() error {
	p.Stop()
	p.wg.Wait()
	return nil
}
