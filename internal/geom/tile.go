package geom

import "math"

// Tile is a position on the 3D world grid. Z is the elevation (lift).
type Tile struct {
	X, Y, Z int
}

// InvalidTile marks "no position" (objects not on the map, weather not started by an egg).
var InvalidTile = Tile{X: -1, Y: -1, Z: -1}

func (t Tile) Valid() bool { return t != InvalidTile }

func (t Tile) Add(o Tile) Tile {
	return Tile{X: t.X + o.X, Y: t.Y + o.Y, Z: t.Z + o.Z}
}

// DistSq returns the squared euclidean distance between two tiles.
func (t Tile) DistSq(o Tile) int {
	dx := t.X - o.X
	dy := t.Y - o.Y
	dz := t.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// Within reports whether o lies strictly closer than n tiles (squared-euclidean compare).
func (t Tile) Within(o Tile, n int) bool {
	return t.DistSq(o) < n*n
}

// Neighbor returns the adjacent tile in the given 8-way heading.
// heading: 0=N, 1=NE, 2=E, 3=SE, 4=S, 5=SW, 6=W, 7=NW
func (t Tile) Neighbor(heading int) Tile {
	h := ((heading % 8) + 8) % 8
	return Tile{X: t.X + headingDX[h], Y: t.Y + headingDY[h], Z: t.Z}
}

var headingDX = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
var headingDY = [8]int{-1, -1, 0, 1, 1, 1, 0, -1}

// Direction8 returns the 8-way heading from t toward o (0=N clockwise).
func (t Tile) Direction8(o Tile) int {
	return Direction16(t.Y-o.Y, o.X-t.X) / 2
}

// Dir16 returns the 16-way compass direction from src to dst, 0=N clockwise.
func Dir16(src, dst Tile) int {
	// Treat as cartesian coords: north is -Y on screen.
	return Direction16(src.Y-dst.Y, dst.X-src.X)
}

// Direction16 converts a cartesian delta (dy up, dx right) into one of 16
// compass sectors starting at North and going clockwise.
func Direction16(dy, dx int) int {
	if dx == 0 && dy == 0 {
		return 0
	}
	angle := math.Atan2(float64(dx), float64(dy)) // clockwise from north
	if angle < 0 {
		angle += 2 * math.Pi
	}
	sector := int(math.Floor(angle/(math.Pi/8) + 0.5))
	return sector % 16
}

// Sign returns -1, 0 or 1.
func Sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Abs returns |v|.
func Abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// PlanarDistSq is DistSq ignoring elevation.
func (t Tile) PlanarDistSq(o Tile) int {
	dx := t.X - o.X
	dy := t.Y - o.Y
	return dx*dx + dy*dy
}
