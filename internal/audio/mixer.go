package audio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/isorpg/fxengine/internal/audio/sfx"
	"github.com/isorpg/fxengine/internal/config"
	"github.com/isorpg/fxengine/internal/geom"
	"go.uber.org/zap"
)

// MaxVolume is the loudest per-sound volume effects ask for.
const MaxVolume = sfx.MaxVolume

// hearing is the distance in tiles at which positional sounds fade out.
const hearing = 32

// Channel identifies a playing sound. NoChannel means nothing is playing.
type Channel = sfx.Channel

const NoChannel = sfx.NoChannel

type voice struct {
	ctrl   *beep.Ctrl
	vol    *effects.Volume
	base   float64
	loop   bool
	done   atomic.Bool
	silent bool
}

// finisher flags its voice when the wrapped stream ends.
type finisher struct {
	s beep.Streamer
	v *voice
}

func (f finisher) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.s.Stream(samples)
	if !ok {
		f.v.done.Store(true)
	}
	return n, ok
}

func (f finisher) Err() error { return f.s.Err() }

// Mixer plays synthesized sound effects through beep's speaker. The speaker
// streams on its own goroutine, so the channel table is guarded by mu and
// streamer mutation happens under speaker.Lock.
type Mixer struct {
	mu       sync.Mutex
	rate     beep.SampleRate
	master   float64
	mixer    *beep.Mixer
	channels map[Channel]*voice
	next     Channel
	listener func() geom.Tile
	running  bool
	log      *zap.Logger

	played atomic.Uint64
}

// NewMixer creates a mixer. It stays silent until Start succeeds.
func NewMixer(cfg config.AudioConfig, log *zap.Logger) *Mixer {
	return &Mixer{
		rate:     beep.SampleRate(cfg.SampleRate),
		master:   cfg.MasterVolume,
		mixer:    &beep.Mixer{},
		channels: make(map[Channel]*voice),
		log:      log,
	}
}

// Start opens the audio device. On failure the mixer keeps working in
// silent mode: channels are tracked but nothing is heard.
func (m *Mixer) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}
	if err := speaker.Init(m.rate, m.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(m.mixer)
	m.running = true
	return nil
}

// SetListener sets where positional sounds are heard from.
func (m *Mixer) SetListener(fn func() geom.Tile) {
	m.mu.Lock()
	m.listener = fn
	m.mu.Unlock()
}

func (m *Mixer) attenuation(pos geom.Tile) float64 {
	if m.listener == nil || !pos.Valid() {
		return 1
	}
	ear := m.listener()
	if !ear.Valid() {
		return 1
	}
	d2 := ear.PlanarDistSq(pos)
	if d2 >= hearing*hearing {
		return 0
	}
	return 1 - float64(d2)/float64(hearing*hearing)
}

// Play starts sound effect id at pos (InvalidTile for non-positional) with
// volume 0..MaxVolume. A looping sound plays until Stop.
func (m *Mixer) Play(id int, pos geom.Tile, volume int, loop bool) Channel {
	if id < 0 {
		return NoChannel
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	base := m.master * float64(clampVolume(volume)) / MaxVolume
	ch := m.next
	m.next++
	v := &voice{base: base, loop: loop, silent: !m.running}
	m.channels[ch] = v
	m.played.Add(1)

	if v.silent {
		if !loop {
			v.done.Store(true)
		}
		return ch
	}

	var src beep.Streamer
	if loop {
		src = newLooper(func() beep.Streamer { return Synth(id, m.rate) })
	} else {
		src = Synth(id, m.rate)
	}
	v.vol = newVolume(finisher{s: src, v: v}, base*m.attenuation(pos))
	v.ctrl = &beep.Ctrl{Streamer: v.vol}
	speaker.Lock()
	m.mixer.Add(v.ctrl)
	speaker.Unlock()
	return ch
}

// Update moves a channel's sound source. Returns NoChannel when the sound
// has already finished.
func (m *Mixer) Update(ch Channel, pos geom.Tile) Channel {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.channels[ch]
	if !ok {
		return NoChannel
	}
	if v.done.Load() {
		delete(m.channels, ch)
		return NoChannel
	}
	if v.vol != nil {
		nv := newVolume(nil, v.base*m.attenuation(pos))
		speaker.Lock()
		v.vol.Volume, v.vol.Silent = nv.Volume, nv.Silent
		speaker.Unlock()
	}
	return ch
}

// Stop silences a channel. Unknown channels are ignored.
func (m *Mixer) Stop(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.channels[ch]
	if !ok {
		return
	}
	delete(m.channels, ch)
	if v.ctrl != nil {
		speaker.Lock()
		v.ctrl.Streamer = nil
		speaker.Unlock()
	}
}

// Active returns the number of channels not yet known to be finished.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for ch, v := range m.channels {
		if v.done.Load() {
			delete(m.channels, ch)
			continue
		}
		n++
	}
	return n
}

// Played returns the total number of sounds started.
func (m *Mixer) Played() uint64 { return m.played.Load() }

// Close stops every channel and detaches from the speaker.
func (m *Mixer) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		speaker.Lock()
		m.mixer.Clear()
		speaker.Unlock()
		m.running = false
	}
	m.channels = make(map[Channel]*voice)
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}
