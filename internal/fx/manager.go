package fx

import (
	"math/rand"
	"slices"

	"github.com/isorpg/fxengine/internal/core/event"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/render"
	"github.com/isorpg/fxengine/internal/tqueue"
	"github.com/isorpg/fxengine/internal/world"
	"go.uber.org/zap"
)

// Deps are the collaborators a Manager drives. Audio, Palette, Usecode and
// Bus may be nil.
type Deps struct {
	World   World
	Window  Window
	Sprites SpriteMetrics
	Shapes  Shapes
	Audio   Audio
	Palette Palette
	Usecode Usecode
	Bus     *event.Bus
	Log     *zap.Logger
}

// Options are the timing constants of the engine.
type Options struct {
	StdDelay       int // ms per animation frame
	TicksPerMinute int // std-delay ticks per game minute
	Seed           int64
}

// Stats counts effect lifecycle events.
type Stats struct {
	Added   map[string]int
	Removed map[string]int
	Fired   uint64
}

// Manager owns every live effect and floating text and the time queue that
// drives them. It is the context handed to effects when they fire. Not safe
// for concurrent use; everything runs on the game loop goroutine.
type Manager struct {
	queue   *tqueue.Queue[*Manager]
	world   World
	win     Window
	sprites SpriteMetrics
	shapes  Shapes
	audio   Audio
	palette Palette
	usecode Usecode
	bus     *event.Bus
	rng     *rand.Rand
	log     *zap.Logger

	stdDelay       int
	ticksPerMinute int
	now            Ticks

	effects []Effect // index 0 is the most recently added
	texts   []*Text

	// flashing is set while any lightning effect shows its flash.
	flashing bool
	// quakeSound is set while a running earthquake has played its sound.
	quakeSound bool
	// cloudRestarts staggers cloud restarts across all cloud effects.
	cloudRestarts int

	stats Stats
}

func NewManager(deps Deps, opts Options) *Manager {
	m := &Manager{
		queue:          tqueue.New[*Manager](),
		world:          deps.World,
		win:            deps.Window,
		sprites:        deps.Sprites,
		shapes:         deps.Shapes,
		audio:          deps.Audio,
		palette:        deps.Palette,
		usecode:        deps.Usecode,
		bus:            deps.Bus,
		log:            deps.Log,
		rng:            rand.New(rand.NewSource(opts.Seed)),
		stdDelay:       opts.StdDelay,
		ticksPerMinute: opts.TicksPerMinute,
		stats:          Stats{Added: map[string]int{}, Removed: map[string]int{}},
	}
	if m.audio == nil {
		m.audio = nopAudio{}
	}
	if m.palette == nil {
		m.palette = nopPalette{}
	}
	if m.usecode == nil {
		m.usecode = nopUsecode{}
	}
	if m.log == nil {
		m.log = zap.NewNop()
	}
	if m.stdDelay <= 0 {
		m.stdDelay = 100
	}
	if m.ticksPerMinute <= 0 {
		m.ticksPerMinute = 25
	}
	return m
}

func (m *Manager) Now() Ticks                     { return m.now }
func (m *Manager) Queue() *tqueue.Queue[*Manager] { return m.queue }
func (m *Manager) StdDelay() int                  { return m.stdDelay }
func (m *Manager) Stats() Stats                   { return m.stats }

// Advance sets the clock and fires every due event.
func (m *Manager) Advance(now Ticks) int {
	m.now = now
	n := m.queue.Advance(m, now)
	m.stats.Fired += uint64(n)
	return n
}

// Pause freezes every effect except floating text.
func (m *Manager) Pause()       { m.queue.Pause(m.now) }
func (m *Manager) Resume()      { m.queue.Resume(m.now) }
func (m *Manager) Paused() bool { return m.queue.Paused() }

// randn returns a value in [0,n), or 0 when n <= 0.
func (m *Manager) randn(n int) int {
	if n <= 0 {
		return 0
	}
	return m.rng.Intn(n)
}

// minutes converts game minutes to milliseconds.
func (m *Manager) minutes(n int) int {
	return n * m.stdDelay * m.ticksPerMinute
}

func emit[T any](m *Manager, ev T) {
	if m.bus != nil {
		event.Emit(m.bus, ev)
	}
}

// AddEffect registers e at the front of the effect list and schedules it.
func (m *Manager) AddEffect(e Effect) {
	if e == nil {
		return
	}
	m.effects = slices.Insert(m.effects, 0, e)
	m.stats.Added[e.Kind()]++
	code := -1
	if w, ok := e.(Weather); ok {
		code = w.Code()
	}
	emit(m, event.EffectAdded{Kind: e.Kind(), Weather: code, At: uint64(m.now)})
	e.start(m, m.now)
}

// RemoveEffect detaches e, cancels its pending events and releases it.
// Returns nil when e is not registered, so repeated calls are harmless.
func (m *Manager) RemoveEffect(e Effect) Effect {
	i := slices.Index(m.effects, e)
	if i < 0 {
		return nil
	}
	m.effects = slices.Delete(m.effects, i, i+1)
	m.drop(e)
	return e
}

func (m *Manager) drop(e Effect) {
	m.queue.Remove(e)
	e.release(m)
	m.stats.Removed[e.Kind()]++
	emit(m, event.EffectRemoved{Kind: e.Kind(), At: uint64(m.now)})
	if _, ok := e.(Weather); ok {
		emit(m, event.WeatherChanged{Code: m.Weather(), At: uint64(m.now)})
	}
}

// removeWhere removes every effect matching pred, keeping list order.
func (m *Manager) removeWhere(pred func(Effect) bool) int {
	var gone []Effect
	kept := m.effects[:0]
	for _, e := range m.effects {
		if pred(e) {
			gone = append(gone, e)
		} else {
			kept = append(kept, e)
		}
	}
	clear(m.effects[len(kept):])
	m.effects = kept
	for _, e := range gone {
		m.drop(e)
	}
	return len(gone)
}

// RemoveAllEffects clears effects and texts.
func (m *Manager) RemoveAllEffects(repaint bool) {
	if len(m.effects) == 0 && len(m.texts) == 0 {
		return
	}
	m.removeWhere(func(Effect) bool { return true })
	for _, t := range m.texts {
		m.queue.Remove(t)
	}
	clear(m.texts)
	m.texts = m.texts[:0]
	if repaint {
		m.win.SetAllDirty()
	}
}

// RemoveWeatherEffects removes weather started by eggs at least dist tiles
// from the main actor, or every weather effect when dist is 0.
func (m *Manager) RemoveWeatherEffects(dist int) int {
	apos := geom.InvalidTile
	if main := m.world.MainActor(); m.world.Alive(main) {
		apos = m.world.Tile(main)
	}
	n := m.removeWhere(func(e Effect) bool {
		w, ok := e.(Weather)
		return ok && (dist == 0 || w.OutOfRange(apos, dist))
	})
	m.win.SetAllDirty()
	return n
}

// RemoveUsecodeLightning removes lightning started from scripts.
func (m *Manager) RemoveUsecodeLightning() int {
	n := m.removeWhere(func(e Effect) bool {
		l, ok := e.(*Lightning)
		return ok && l.fromUsecode
	})
	m.win.SetAllDirty()
	return n
}

// Weather returns the code of the most recently added weather effect with a
// non-negative code, or 0.
func (m *Manager) Weather() int {
	for _, e := range m.effects {
		if w, ok := e.(Weather); ok && w.Code() >= 0 {
			return w.Code()
		}
	}
	return 0
}

// Effects returns a snapshot of the effect list, most recent first.
func (m *Manager) Effects() []Effect { return slices.Clone(m.effects) }

// Texts returns a snapshot of the text list, most recent first.
func (m *Manager) Texts() []*Text { return slices.Clone(m.texts) }

func (m *Manager) Len() int { return len(m.effects) }

// AddText floats msg over anchor. A second text on the same anchor, an
// empty message or a dead anchor is ignored.
func (m *Manager) AddText(msg string, anchor world.ObjectID) *Text {
	if msg == "" || !m.world.Alive(anchor) {
		return nil
	}
	for _, t := range m.texts {
		if t.anchor == anchor {
			return nil
		}
	}
	return m.addText(newText(msg, anchor, geom.InvalidTile))
}

// AddTextAt floats msg at screen pixel x,y.
func (m *Manager) AddTextAt(msg string, x, y int) *Text {
	if msg == "" {
		return nil
	}
	tile := m.win.TileSize()
	scroll := m.win.Scroll()
	at := geom.Tile{X: scroll.X + x/tile, Y: scroll.Y + y/tile}
	return m.addText(newText(msg, 0, at))
}

func (m *Manager) addText(t *Text) *Text {
	m.texts = slices.Insert(m.texts, 0, t)
	t.start(m, m.now)
	return t
}

// CenterText replaces all texts with msg in the middle of the screen.
func (m *Manager) CenterText(msg string) {
	m.RemoveTextEffects()
	w, h := m.win.Size()
	m.AddTextAt(msg, (w-render.TextWidth(render.EncodeGlyphs(msg)))/2, h/2)
}

// RemoveTextEffect removes the text floating over anchor.
func (m *Manager) RemoveTextEffect(anchor world.ObjectID) {
	for _, t := range m.texts {
		if t.anchor == anchor {
			m.RemoveText(t)
			m.win.SetAllDirty()
			return
		}
	}
}

// RemoveText removes one text.
func (m *Manager) RemoveText(t *Text) {
	i := slices.Index(m.texts, t)
	if i < 0 {
		return
	}
	m.texts = slices.Delete(m.texts, i, i+1)
	m.queue.Remove(t)
}

// RemoveTextEffects removes every text.
func (m *Manager) RemoveTextEffects() {
	for _, t := range m.texts {
		m.queue.Remove(t)
	}
	clear(m.texts)
	m.texts = m.texts[:0]
	m.win.SetAllDirty()
}

// Paint draws every effect, most recent first.
func (m *Manager) Paint() {
	for _, e := range m.effects {
		e.Paint(m)
	}
}

// PaintText draws every text.
func (m *Manager) PaintText() {
	for _, t := range m.texts {
		t.Paint(m)
	}
}

// UpdateDirtyText repaints texts whose anchor moved.
func (m *Manager) UpdateDirtyText() {
	for _, t := range m.texts {
		t.UpdateDirty(m)
	}
}

// Earthquake shakes the screen for length steps. Scripts call it.
func (m *Manager) Earthquake(length int) {
	m.AddEffect(NewEarthquake(length))
}

// UsecodeLightning starts script-owned lightning for the given game minutes.
func (m *Manager) UsecodeLightning(minutes int) {
	m.AddEffect(NewLightning(minutes, 0, true))
}
