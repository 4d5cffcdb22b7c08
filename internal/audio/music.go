package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"astrochat/internal/logging"
)

// step is one note of the ambient loop: a lead frequency over a sustained
// bass, held for its own duration.
type step struct {
	lead float64
	bass float64
	dur  time.Duration
}

// ambientLoop is a Cmin7 / Gmin7 / A♭maj7 / E♭maj7 progression, four
// arpeggiated notes per chord.
var ambientLoop = []step{
	{261.63, 130.81, 800 * time.Millisecond},
	{311.13, 130.81, 800 * time.Millisecond},
	{392.00, 130.81, 800 * time.Millisecond},
	{311.13, 130.81, 800 * time.Millisecond},

	{392.00, 196.00, 800 * time.Millisecond},
	{466.16, 196.00, 800 * time.Millisecond},
	{587.33, 196.00, 800 * time.Millisecond},
	{466.16, 196.00, 800 * time.Millisecond},

	{415.30, 207.65, 800 * time.Millisecond},
	{523.25, 207.65, 800 * time.Millisecond},
	{622.25, 207.65, 800 * time.Millisecond},
	{523.25, 207.65, 800 * time.Millisecond},

	{311.13, 155.56, 800 * time.Millisecond},
	{392.00, 155.56, 800 * time.Millisecond},
	{523.25, 155.56, 800 * time.Millisecond},
	{392.00, 155.56, 800 * time.Millisecond},
}

// Listener receives the playing flag after every state change.
type Listener func(playing bool)

// Player loops the ambient sequence in the background. It is a service
// object, not package state: the composition root owns one instance and
// hands it to whatever needs music control. Safe for concurrent use.
type Player struct {
	mu        sync.Mutex
	playing   bool
	idx       int
	listeners map[int]Listener
	nextID    int

	stop chan struct{}
	done chan struct{}

	out    func(beep.Streamer)
	flush  func()
	device func() error
}

// NewPlayer plays through the shared speaker.
func NewPlayer() *Player {
	return &Player{
		listeners: make(map[int]Listener),
		out:       speaker.Play,
		flush:     speaker.Clear,
		device:    ensureSpeaker,
	}
}

// Subscribe registers a listener and returns a token for Unsubscribe. The
// listener is not called with the current state; it only sees changes.
func (p *Player) Subscribe(l Listener) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	return id
}

// Unsubscribe removes a previously registered listener.
func (p *Player) Unsubscribe(id int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.listeners, id)
}

// Play starts the loop from wherever the progression index points. Calling
// it while already playing is a no-op.
func (p *Player) Play() {
	if err := p.device(); err != nil {
		logging.Audio("speaker unavailable: %v", err)
		return
	}

	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = true
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	stop, done := p.stop, p.done
	p.mu.Unlock()

	go p.run(stop, done)
	p.notify(true)
}

// run schedules one step at a time. Each wait uses that step's own
// duration, so a sequence with uneven step lengths stays in time instead
// of drifting off the first step's interval.
func (p *Player) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		p.mu.Lock()
		s := ambientLoop[p.idx]
		p.idx = (p.idx + 1) % len(ambientLoop)
		out := p.out
		p.mu.Unlock()

		voice := beep.Mix(
			envelope(tone(s.lead, triangle), 0.08, s.dur),
			decay(tone(s.bass, sine), 0.12, s.dur),
		)
		out(take(voice, s.dur))
		timer.Reset(s.dur)
	}
}

// Pause stops the loop, silences anything queued, and resets the
// progression to the top so the next Play starts the piece over.
func (p *Player) Pause() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.idx = 0
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	flush := p.flush
	p.mu.Unlock()

	close(stop)
	<-done
	if flush != nil {
		flush()
	}
	p.notify(false)
}

// Toggle plays when paused and pauses when playing.
func (p *Player) Toggle() {
	p.mu.Lock()
	playing := p.playing
	p.mu.Unlock()
	if playing {
		p.Pause()
	} else {
		p.Play()
	}
}

// Playing reports the current state.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Close stops playback and drops all listeners.
func (p *Player) Close() {
	p.Pause()
	p.mu.Lock()
	p.listeners = make(map[int]Listener)
	p.mu.Unlock()
}

func (p *Player) notify(playing bool) {
	p.mu.Lock()
	ls := make([]Listener, 0, len(p.listeners))
	for _, l := range p.listeners {
		ls = append(ls, l)
	}
	p.mu.Unlock()
	for _, l := range ls {
		l(playing)
	}
}
