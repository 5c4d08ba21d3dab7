package fx

import (
	"github.com/isorpg/fxengine/internal/audio/sfx"
	"github.com/isorpg/fxengine/internal/geom"
)

// Weather codes reported by Manager.Weather.
const (
	WeatherNone      = -1
	WeatherSnow      = 1
	WeatherStorm     = 2
	WeatherSparkle   = 3
	WeatherFog       = 4
	WeatherClearSky  = 6 // clouds without overcast
	weatherCadence   = 100
	lightningDefault = 100
)

// weather is the timed lifecycle shared by weather effects: a start delay,
// then duration game minutes.
type weather struct {
	base
	code     int
	egg      geom.Tile
	duration int // game minutes
	delay    int // ms before the first event
	stop     Ticks
}

func newWeather(code, duration, delay int, egg geom.Tile) weather {
	return weather{code: code, egg: egg, duration: duration, delay: max(delay, 0)}
}

// begin computes the stop time and schedules the first event for self.
func (w *weather) begin(m *Manager, now Ticks, self Effect) {
	stop := int64(now) + int64(w.delay) + int64(m.minutes(w.duration))
	w.stop = Ticks(max(stop, int64(now)+int64(w.delay)))
	m.queue.Add(now+Ticks(w.delay), self, 0)
}

func (w *weather) Code() int { return w.code }

// Egg returns where the weather was started, or InvalidTile.
func (w *weather) Egg() geom.Tile { return w.egg }

// StopTime returns when the weather ends.
func (w *weather) StopTime() Ticks { return w.stop }

// Delay returns the start delay in ms.
func (w *weather) Delay() int { return w.delay }

func (w *weather) OutOfRange(observer geom.Tile, dist int) bool {
	if !w.egg.Valid() {
		return false
	}
	return w.egg.DistSq(observer) >= dist*dist
}

// ParticleKind describes how one kind of drop animates.
type ParticleKind struct {
	Name      string
	Sprite    int // sprite holding the frames
	First     int // first animation frame
	Last      int // last animation frame
	Delta     int // pixels moved down-right per tick
	Randomize bool
}

var (
	Raindrop    = ParticleKind{Name: "rain", Sprite: 0, First: 3, Last: 7, Delta: 6}
	Snowflake   = ParticleKind{Name: "snow", Sprite: 0, First: 13, Last: 20, Delta: 1}
	SparkleDrop = ParticleKind{Name: "sparkle", Sprite: 0, First: 21, Last: 27, Delta: 0, Randomize: true}
)

// MaxDrops is the particle capacity of a drops effect.
const MaxDrops = 200

type particle struct {
	ax, ay  int // absolute world pixels
	frame   int // -1 before the first move
	forward bool
}

// Drops animates rain, snow or sparkles. Created with zero drops it starts
// gradually, adding particles each tick and thinning them out during the
// last 2.5 seconds.
type Drops struct {
	weather
	kind    ParticleKind
	drops   [MaxDrops]particle
	n       int
	gradual bool
}

// NewDrops creates a drops effect. code is the weather number or -1.
func NewDrops(kind ParticleKind, duration, delay, ndrops, code int, egg geom.Tile) *Drops {
	d := &Drops{
		weather: newWeather(code, duration, delay, egg),
		kind:    kind,
		n:       min(max(ndrops, 0), MaxDrops),
		gradual: ndrops == 0,
	}
	for i := range d.drops {
		d.drops[i] = particle{ax: -1, ay: -1, frame: -1, forward: true}
	}
	return d
}

func NewRain(duration, delay, ndrops int, egg geom.Tile) *Drops {
	return NewDrops(Raindrop, duration, delay, ndrops, WeatherNone, egg)
}

func NewSnow(duration, delay, ndrops int, egg geom.Tile) *Drops {
	return NewDrops(Snowflake, duration, delay, ndrops, WeatherNone, egg)
}

func (d *Drops) Kind() string { return d.kind.Name }

// Count returns the number of active particles.
func (d *Drops) Count() int { return d.n }

func (d *Drops) start(m *Manager, now Ticks) { d.begin(m, now, d) }

func (d *Drops) changeCount(m *Manager, now Ticks) {
	if !d.gradual {
		return
	}
	if int64(now) > int64(d.stop)-2500 && d.n > 0 {
		d.n = max(d.n-m.randn(15), 0)
	} else if now < d.stop {
		if d.n < MaxDrops {
			d.n += m.randn(5)
		}
		d.n = min(d.n, MaxDrops)
	}
}

// visible reports whether the drops show. Only sparkles show indoors.
func (d *Drops) visible(m *Manager) bool {
	return !m.world.Inside() || d.code == WeatherSparkle
}

func (d *Drops) HandleEvent(m *Manager, now Ticks, udata uintptr) {
	d.changeCount(m, now)
	if d.visible(m) {
		w, h := m.win.Size()
		for i := 0; i < d.n; i++ {
			d.move(m, &d.drops[i], w, h)
		}
		m.win.SetPainted()
	}
	if now >= d.stop {
		m.win.SetAllDirty()
		m.RemoveEffect(d)
		return
	}
	m.queue.Add(now+weatherCadence, d, udata)
}

func (d *Drops) scrollPixels(m *Manager) (int, int) {
	s := m.win.Scroll()
	tile := m.win.TileSize()
	return s.X * tile, s.Y * tile
}

func (d *Drops) move(m *Manager, p *particle, w, h int) {
	sx, sy := d.scrollPixels(m)
	x, y := p.ax-sx, p.ay-sy
	onScreen := x >= 0 && y >= 0 && x < w && y < h
	if p.frame >= 0 && onScreen {
		m.win.AddDirty(m.win.ClipToWin(m.win.ShapeRect(d.kind.Sprite, x, y).Enlarge(m.win.TileSize() / 2)))
	}
	d.nextFrame(m, p)
	if !onScreen || (d.kind.Delta == 0 && p.frame == d.kind.Last) {
		r := m.rng.Int()
		p.ax = sx + r%max(w-w/8, 1)
		p.ay = sy + r%max(h-h/4, 1)
	} else {
		p.ax += d.kind.Delta
		p.ay += d.kind.Delta
	}
}

// nextFrame ping-pongs the particle between the first and last frames.
func (d *Drops) nextFrame(m *Manager, p *particle) {
	k := d.kind
	switch {
	case p.frame < 0:
		if k.Randomize {
			dir := m.randn(2)
			if dir == 1 {
				p.forward = !p.forward
			}
			p.frame = k.First + m.randn(k.Last-k.First) + dir
		} else {
			p.frame = k.First
		}
	case p.forward:
		p.frame++
		if p.frame == k.Last {
			p.forward = false
		}
	default:
		p.frame--
		if p.frame == k.First {
			p.forward = true
		}
	}
}

func (d *Drops) Paint(m *Manager) {
	if !d.visible(m) {
		return
	}
	sx, sy := d.scrollPixels(m)
	w, h := m.win.Size()
	tile := m.win.TileSize()
	for i := 0; i < d.n; i++ {
		p := &d.drops[i]
		x, y := p.ax-sx, p.ay-sy
		if x < 0 || y < 0 || x >= w || y >= h {
			continue
		}
		m.win.PaintSprite(d.kind.Sprite, p.frame, x, y)
		m.win.AddDirty(m.win.ClipToWin(m.win.ShapeRect(d.kind.Sprite, x, y).Enlarge(tile / 2)))
	}
	m.win.SetPainted()
}

// Lightning flashes the palette at random intervals. Only one flash shows
// at a time across all lightning effects.
type Lightning struct {
	weather
	fromUsecode bool
	flashing    bool
	flashes     int
}

func NewLightning(duration, delay int, fromUsecode bool) *Lightning {
	return &Lightning{weather: newWeather(WeatherNone, duration, delay, geom.InvalidTile), fromUsecode: fromUsecode}
}

func (l *Lightning) Kind() string { return "lightning" }

// FromUsecode reports whether a script started the lightning.
func (l *Lightning) FromUsecode() bool { return l.fromUsecode }

// Flashes returns how many flashes this effect showed.
func (l *Lightning) Flashes() int { return l.flashes }

func (l *Lightning) start(m *Manager, now Ticks) { l.begin(m, now, l) }

func (l *Lightning) HandleEvent(m *Manager, now Ticks, udata uintptr) {
	r := m.rng.Int()
	delay := lightningDefault
	if l.flashing {
		m.palette.Restore()
		l.flashing = false
		m.flashing = false
		if now >= l.stop {
			m.RemoveEffect(l)
			return
		}
		if r%50 == 0 {
			delay = (1 + r%7) * 40
		} else {
			delay = 4000 + r%3000
		}
	} else if now >= l.stop {
		m.RemoveEffect(l)
		return
	} else if (l.fromUsecode || !m.world.InDungeon()) && !m.flashing {
		m.audio.Play(sfx.Thunder, geom.InvalidTile, sfx.MaxVolume, false)
		m.flashing = true
		l.flashing = true
		l.flashes++
		m.palette.Lightning()
		delay = (1 + r%2) * 25
	}
	m.queue.Add(now+Ticks(delay), l, udata)
}

func (l *Lightning) release(m *Manager) {
	if l.flashing {
		m.palette.Restore()
		l.flashing = false
		m.flashing = false
	}
}
