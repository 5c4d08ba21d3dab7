package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/isorpg/fxengine/internal/audio/sfx"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates raw audio waves
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	rng      *rand.Rand
}

// NewOscillator creates a new oscillator for wave generation
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      rand.New(rand.NewSource(int64(freq))),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope creates an attack/release envelope over s.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := total - att - rel
	if sus < 0 {
		sus = 0
	}
	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}
		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = float64(e.totalSamples-e.position) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume wraps s in a volume effect. math.Log2(0) is -Inf, so zero
// volume becomes a silent stream.
func newVolume(s beep.Streamer, vol float64) *effects.Volume {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Well-known game sound effects.
const (
	SfxExplosion  = sfx.Explosion
	SfxHit        = sfx.Hit
	SfxEarthquake = sfx.Earthquake
	SfxThunder    = sfx.Thunder
)

type voiceSpec struct {
	freq     float64
	wave     WaveType
	duration time.Duration
	attack   time.Duration
	release  time.Duration
}

var voices = map[int]voiceSpec{
	SfxExplosion:  {freq: 60, wave: WaveNoise, duration: 700 * time.Millisecond, attack: 5 * time.Millisecond, release: 500 * time.Millisecond},
	SfxHit:        {freq: 180, wave: WaveSquare, duration: 90 * time.Millisecond, attack: 2 * time.Millisecond, release: 60 * time.Millisecond},
	SfxEarthquake: {freq: 35, wave: WaveSaw, duration: 1500 * time.Millisecond, attack: 200 * time.Millisecond, release: 600 * time.Millisecond},
	SfxThunder:    {freq: 45, wave: WaveNoise, duration: 1200 * time.Millisecond, attack: 10 * time.Millisecond, release: 900 * time.Millisecond},
}

// Synth returns a streamer for one play of a sound effect. Unknown ids get
// a short tone whose pitch is derived from the id.
func Synth(id int, rate beep.SampleRate) beep.Streamer {
	v, ok := voices[id]
	if !ok {
		v = voiceSpec{
			freq:     220 + float64(id%24)*40,
			wave:     WaveSine,
			duration: 200 * time.Millisecond,
			attack:   10 * time.Millisecond,
			release:  120 * time.Millisecond,
		}
	}
	osc := NewOscillator(v.freq, v.duration, v.wave, rate)
	return NewEnvelope(osc, v.duration, v.attack, v.release, rate)
}

// looper restarts a freshly synthesized streamer whenever the current one ends.
type looper struct {
	gen func() beep.Streamer
	cur beep.Streamer
}

func newLooper(gen func() beep.Streamer) *looper {
	return &looper{gen: gen, cur: gen()}
}

func (l *looper) Stream(samples [][2]float64) (int, bool) {
	filled := 0
	for filled < len(samples) {
		n, ok := l.cur.Stream(samples[filled:])
		filled += n
		if !ok || n == 0 {
			l.cur = l.gen()
		}
	}
	return filled, true
}

func (l *looper) Err() error { return nil }
