// Package audio synthesizes the interface cues and the ambient background
// loop. Everything is generated, no samples shipped; the speaker device is
// opened lazily on the first audible call.
package audio

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

const sampleRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// ensureSpeaker opens the output device on first use.
func ensureSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond))
	})
	return speakerErr
}

// sweep is a sine oscillator whose frequency ramps linearly from one value
// to another over its lifetime, then holds.
func sweep(from, to float64, dur time.Duration) beep.Streamer {
	total := sampleRate.N(dur)
	pos := 0
	phase := 0.0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			t := 1.0
			if pos < total {
				t = float64(pos) / float64(total)
			}
			freq := from + (to-from)*t
			phase += freq / float64(sampleRate)
			if phase >= 1 {
				phase -= 1
			}
			v := math.Sin(2 * math.Pi * phase)
			samples[i][0], samples[i][1] = v, v
			pos++
		}
		return len(samples), true
	})
}

// tone is a fixed-frequency oscillator. shape maps a [0,1) phase to a
// sample value.
func tone(freq float64, shape func(float64) float64) beep.Streamer {
	phase := 0.0
	step := freq / float64(sampleRate)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := shape(phase)
			samples[i][0], samples[i][1] = v, v
			phase += step
			if phase >= 1 {
				phase -= 1
			}
		}
		return len(samples), true
	})
}

func sine(phase float64) float64 { return math.Sin(2 * math.Pi * phase) }

func triangle(phase float64) float64 {
	if phase < 0.5 {
		return 4*phase - 1
	}
	return 3 - 4*phase
}

// noise is uniform white noise.
func noise() beep.Streamer {
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := rand.Float64()*2 - 1
			samples[i][0], samples[i][1] = v, v
		}
		return len(samples), true
	})
}

// lowpassSweep runs a one-pole lowpass over wrapped whose cutoff ramps
// linearly between two frequencies over dur.
func lowpassSweep(wrapped beep.Streamer, from, to float64, dur time.Duration) beep.Streamer {
	total := sampleRate.N(dur)
	pos := 0
	var l, r float64
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := wrapped.Stream(samples)
		for i := 0; i < n; i++ {
			t := 1.0
			if pos < total {
				t = float64(pos) / float64(total)
			}
			cutoff := from + (to-from)*t
			alpha := 1 - math.Exp(-2*math.Pi*cutoff/float64(sampleRate))
			l += alpha * (samples[i][0] - l)
			r += alpha * (samples[i][1] - r)
			samples[i][0], samples[i][1] = l, r
			pos++
		}
		return n, ok
	})
}

// decay scales wrapped by a gain that starts at level and falls
// exponentially to near silence over dur.
func decay(wrapped beep.Streamer, level float64, dur time.Duration) beep.Streamer {
	total := sampleRate.N(dur)
	// Per-sample factor reaching -80 dB at the end of the window.
	k := math.Pow(1e-4, 1/float64(total))
	gain := level
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := wrapped.Stream(samples)
		for i := 0; i < n; i++ {
			samples[i][0] *= gain
			samples[i][1] *= gain
			gain *= k
		}
		return n, ok
	})
}

// envelope shapes wrapped with a linear attack to peak over the first
// tenth of dur and a linear release to zero by nine tenths, matching the
// ambient loop's click-free note contour.
func envelope(wrapped beep.Streamer, peak float64, dur time.Duration) beep.Streamer {
	total := sampleRate.N(dur)
	attack := total / 10
	release := total * 9 / 10
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := wrapped.Stream(samples)
		for i := 0; i < n; i++ {
			var g float64
			switch {
			case pos < attack:
				g = peak * float64(pos) / float64(attack)
			case pos < release:
				g = peak * float64(release-pos) / float64(release-attack)
			default:
				g = 0
			}
			samples[i][0] *= g
			samples[i][1] *= g
			pos++
		}
		return n, ok
	})
}

// take truncates a streamer to dur.
func take(s beep.Streamer, dur time.Duration) beep.Streamer {
	return beep.Take(sampleRate.N(dur), s)
}
