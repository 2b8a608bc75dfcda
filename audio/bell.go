// Package audio plays the editor's alert as a short tone through the
// system speaker
package audio

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// Options shape the bell tone
type Options struct {
	Volume     float64 // 0..1
	Frequency  float64 // Hz, below SampleRate/2
	Length     time.Duration
	SampleRate int
}

// fadeLength is the ramp at each end of the tone
const fadeLength = 5 * time.Millisecond

// Bell is safe for concurrent use. Until Init succeeds Ring does nothing.
type Bell struct {
	opts Options
	rate beep.SampleRate

	mu    sync.Mutex
	ready bool
}

func NewBell(opts Options) *Bell {
	return &Bell{opts: opts, rate: beep.SampleRate(opts.SampleRate)}
}

// Init opens the speaker with a 100ms buffer
func (b *Bell) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ready {
		return nil
	}
	if err := speaker.Init(b.rate, b.rate.N(time.Second/10)); err != nil {
		return fmt.Errorf("audio: speaker init: %w", err)
	}
	b.ready = true
	return nil
}

// Ring plays the tone without waiting for it to finish
func (b *Bell) Ring() {
	b.mu.Lock()
	ready := b.ready
	b.mu.Unlock()
	if !ready {
		return
	}

	s, err := b.Tone()
	if err != nil {
		log.Printf("audio: bell: %v", err)
		return
	}
	speaker.Play(s)
}

// Tone builds the bell stream: a sine of the configured length with short
// fades at both ends, scaled to the configured volume
func (b *Bell) Tone() (beep.Streamer, error) {
	sine, err := generators.SineTone(b.rate, b.opts.Frequency)
	if err != nil {
		return nil, fmt.Errorf("audio: tone: %w", err)
	}
	total := b.rate.N(b.opts.Length)
	fade := min(b.rate.N(fadeLength), total/2)
	shaped := &fader{streamer: beep.Take(total, sine), total: total, fade: fade}
	return volume(shaped, b.opts.Volume), nil
}

func (b *Bell) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ready {
		speaker.Close()
		b.ready = false
	}
}

// fader ramps the first and last fade samples linearly
type fader struct {
	streamer beep.Streamer
	pos      int
	total    int
	fade     int
}

func (f *fader) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		g := 1.0
		if f.fade > 0 {
			if f.pos < f.fade {
				g = float64(f.pos) / float64(f.fade)
			} else if rest := f.total - f.pos - 1; rest < f.fade {
				g = float64(max(rest, 0)) / float64(f.fade)
			}
		}
		samples[i][0] *= g
		samples[i][1] *= g
		f.pos++
	}
	return n, ok
}

func (f *fader) Err() error { return f.streamer.Err() }

// volume scales s linearly; zero or less is silent
func volume(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}
