package fx

import "github.com/isorpg/fxengine/internal/geom"

// cloudSprite holds the cloud frames.
const cloudSprite = 2

// cloud drifts across the screen in world pixels and restarts from an edge
// after max steps.
type cloud struct {
	frame    int
	wx, wy   int
	dx, dy   int
	count    int
	maxCount int
	startAt  Ticks
}

func newCloud(dx, dy, w, h int) *cloud {
	c := &cloud{dx: dx, dy: dy, count: -1}
	adx, ady := geom.Abs(dx), geom.Abs(dy)
	if adx < ady {
		c.maxCount = 2 * h / ady
	} else {
		c.maxCount = 2 * w / max(adx, 1)
	}
	return c
}

// Clouds drifts a few clouds over the screen with a shared wind. Unless the
// code is WeatherClearSky the sky turns overcast while it runs.
type Clouds struct {
	weather
	overcast bool
	clouds   []*cloud
}

func NewClouds(duration, delay int, egg geom.Tile, code int) *Clouds {
	return &Clouds{weather: newWeather(code, duration, delay, egg), overcast: code != WeatherClearSky}
}

func (c *Clouds) Kind() string { return "clouds" }

// Count returns the number of clouds.
func (c *Clouds) Count() int { return len(c.clouds) }

// Wind returns the base drift per tick of each cloud.
func (c *Clouds) Wind() [][2]int {
	out := make([][2]int, len(c.clouds))
	for i, cl := range c.clouds {
		out[i] = [2]int{cl.dx, cl.dy}
	}
	return out
}

func (c *Clouds) start(m *Manager, now Ticks) {
	m.palette.SetOvercast(c.overcast)
	n := 2 + m.randn(5)
	if c.overcast {
		n += m.randn(2)
	}
	dx := m.randn(5) - 2
	dy := m.randn(5) - 2
	if dx == 0 && dy == 0 {
		dx = 1 + m.randn(2)
		dy = 1 - m.randn(3)
	}
	w, h := m.win.Size()
	for i := 0; i < n; i++ {
		cdx, cdy := dx, dy
		if m.randn(2) == 0 {
			cdx += cdx / 2
			cdy += cdy / 2
		}
		c.clouds = append(c.clouds, newCloud(cdx, cdy, w, h))
	}
	c.begin(m, now, c)
}

func (c *Clouds) HandleEvent(m *Manager, now Ticks, udata uintptr) {
	if now >= c.stop {
		m.RemoveEffect(c)
		m.win.SetAllDirty()
		return
	}
	w, h := m.win.Size()
	for _, cl := range c.clouds {
		c.next(m, cl, now, w, h)
	}
	m.queue.Add(now+weatherCadence, c, udata)
}

func (c *Clouds) scroll(m *Manager) (int, int) {
	s := m.win.Scroll()
	tile := m.win.TileSize()
	return s.X * tile, s.Y * tile
}

func (c *Clouds) dirty(m *Manager, cl *cloud) {
	sx, sy := c.scroll(m)
	r := m.win.ShapeRect(cloudSprite, cl.wx-sx, cl.wy-sy).Enlarge(m.win.TileSize() / 2)
	m.win.AddDirty(m.win.ClipToWin(r))
}

func (c *Clouds) next(m *Manager, cl *cloud, now Ticks, w, h int) {
	if now < cl.startAt {
		return
	}
	c.dirty(m, cl)
	if cl.count <= 0 {
		cl.startAt = now + Ticks(2000*m.cloudRestarts+m.randn(500))
		m.cloudRestarts = (m.cloudRestarts + 1) % 4
		cl.count = cl.maxCount
		frames := 1
		if info := m.sprites.Get(cloudSprite); info != nil && info.Frames > 0 {
			frames = info.Frames
		}
		cl.frame = m.randn(frames)
		x, y := c.startPos(m, cl, w, h)
		sx, sy := c.scroll(m)
		cl.wx, cl.wy = x+sx, y+sy
	} else {
		cl.wx += cl.dx
		cl.wy += cl.dy
		cl.count--
	}
	c.dirty(m, cl)
}

// startPos picks a screen position just off the edge the wind blows from.
func (c *Clouds) startPos(m *Manager, cl *cloud, w, h int) (x, y int) {
	var xleft, xright, yabove, ybelow int
	if info := m.sprites.Get(cloudSprite); info != nil {
		xleft, xright, yabove, ybelow = info.XLeft, info.XRight, info.YAbove, info.YBelow
	}
	top := func() int {
		if cl.dy > 0 {
			return -ybelow
		}
		return h + yabove
	}
	if cl.dx == 0 {
		return m.randn(w), top()
	}
	if cl.dy == 0 {
		y = m.randn(h)
		if cl.dx > 0 {
			return -xright, y
		}
		return w + xleft, y
	}
	r := m.randn(w + h)
	if r > h {
		return r - h, top()
	}
	if cl.dx > 0 {
		return -xright, r
	}
	return w + xleft, r
}

func (c *Clouds) Paint(m *Manager) {
	if m.world.Inside() {
		return
	}
	sx, sy := c.scroll(m)
	for _, cl := range c.clouds {
		if cl.count > 0 {
			m.win.PaintSprite(cloudSprite, cl.frame, cl.wx-sx, cl.wy-sy)
		}
	}
}

func (c *Clouds) release(m *Manager) {
	if c.overcast {
		m.palette.SetOvercast(false)
	}
}
