package audio

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"astrochat/internal/logging"
)

// CuePlayer fires short one-shot interface sounds. It is stateless; every
// cue builds a transient streamer graph that cleans itself up when it
// finishes.
type CuePlayer struct {
	out    func(beep.Streamer)
	device func() error
}

// NewCuePlayer plays through the shared speaker. Tests swap the sink.
func NewCuePlayer() *CuePlayer {
	return &CuePlayer{out: speaker.Play, device: ensureSpeaker}
}

func (p *CuePlayer) play(s beep.Streamer) {
	if err := p.device(); err != nil {
		logging.Audio("speaker unavailable: %v", err)
		return
	}
	p.out(s)
}

// Send is a rising blip: a sine sweeping an octave up from A4 over 100 ms.
func (p *CuePlayer) Send() {
	d := 100 * time.Millisecond
	p.play(take(decay(sweep(440, 880, d), 0.2, d), d))
}

// Clear is a soft whoosh: white noise through a lowpass falling from
// 2 kHz to 100 Hz over 300 ms.
func (p *CuePlayer) Clear() {
	d := 300 * time.Millisecond
	p.play(take(decay(lowpassSweep(noise(), 2000, 100, d), 0.1, d), d))
}

// Select is a two-note chime, C5 over G5, fading over 400 ms.
func (p *CuePlayer) Select() {
	d := 400 * time.Millisecond
	chord := beep.Mix(tone(523.25, triangle), tone(783.99, sine))
	p.play(take(decay(chord, 0.15, d), d))
}
