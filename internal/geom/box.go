package geom

// Box is an axis-aligned tile volume: X,Y,Z is the lowest corner.
type Box struct {
	X, Y, Z int
	W, D, H int
}

// HasPoint reports whether t lies inside the volume.
func (b Box) HasPoint(t Tile) bool {
	return t.X >= b.X && t.X < b.X+b.W &&
		t.Y >= b.Y && t.Y < b.Y+b.D &&
		t.Z >= b.Z && t.Z < b.Z+b.H
}
