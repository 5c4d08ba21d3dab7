package pathfind

import "github.com/isorpg/fxengine/internal/geom"

// Path is a stepped tile sequence produced by a pathfinder.
type Path interface {
	// NewPath plans a route from src to dst. Returns false when no route exists.
	NewPath(src, dst geom.Tile) bool
	// NextStep pops one step. ok is false once the path is exhausted;
	// done is true on the step that reaches the destination.
	NextStep() (t geom.Tile, done bool, ok bool)
	Src() geom.Tile
	Dest() geom.Tile
	// Remaining returns the number of steps not yet taken.
	Remaining() int
}

// Straight walks a straight line through 3D tile space, ignoring obstacles.
// Every step advances one tile along the dominant axis and the other axes
// proportionally, so a path from A to B has max(|dx|,|dy|,|dz|) steps.
type Straight struct {
	src, dst geom.Tile
	steps    int
	cur      int
}

func NewStraight() *Straight {
	return &Straight{}
}

func (p *Straight) NewPath(src, dst geom.Tile) bool {
	p.src = src
	p.dst = dst
	p.cur = 0
	p.steps = max(geom.Abs(dst.X-src.X), geom.Abs(dst.Y-src.Y), geom.Abs(dst.Z-src.Z))
	return true
}

func (p *Straight) NextStep() (geom.Tile, bool, bool) {
	if p.cur >= p.steps {
		return p.dst, true, false
	}
	p.cur++
	return p.at(p.cur), p.cur == p.steps, true
}

func (p *Straight) at(i int) geom.Tile {
	return geom.Tile{
		X: p.src.X + lerp(p.dst.X-p.src.X, i, p.steps),
		Y: p.src.Y + lerp(p.dst.Y-p.src.Y, i, p.steps),
		Z: p.src.Z + lerp(p.dst.Z-p.src.Z, i, p.steps),
	}
}

// lerp returns round(d*i/n) using integer math, rounding half away from zero.
func lerp(d, i, n int) int {
	if n == 0 {
		return 0
	}
	num := d * i
	if num >= 0 {
		return (2*num + n) / (2 * n)
	}
	return -((-2*num + n) / (2 * n))
}

func (p *Straight) Src() geom.Tile  { return p.src }
func (p *Straight) Dest() geom.Tile { return p.dst }
func (p *Straight) Remaining() int  { return p.steps - p.cur }
