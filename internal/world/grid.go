package world

import (
	"sort"

	"github.com/isorpg/fxengine/internal/geom"
)

// Grid is a cell-based spatial index of objects on the map. Radius queries
// visit only the cells overlapping the query square; the caller does the
// fine-grained distance filtering.
// Accessed only from the game loop goroutine, no locks.

const cellSize = 16

type cellKey struct {
	cx int
	cy int
}

func toCellCoord(v int) int {
	if v < 0 {
		return (v - cellSize + 1) / cellSize
	}
	return v / cellSize
}

type Grid struct {
	cells map[cellKey]map[ObjectID]struct{}
}

func NewGrid() *Grid {
	return &Grid{
		cells: make(map[cellKey]map[ObjectID]struct{}),
	}
}

func (g *Grid) key(t geom.Tile) cellKey {
	return cellKey{cx: toCellCoord(t.X), cy: toCellCoord(t.Y)}
}

// Add places an object into the grid.
func (g *Grid) Add(id ObjectID, t geom.Tile) {
	k := g.key(t)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ObjectID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove takes an object out of the grid.
func (g *Grid) Remove(id ObjectID, t geom.Tile) {
	k := g.key(t)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates an object's cell when its position changes.
func (g *Grid) Move(id ObjectID, from, to geom.Tile) {
	if g.key(from) == g.key(to) {
		return
	}
	g.Remove(id, from)
	g.Add(id, to)
}

// Near returns the IDs in every cell touching the square of the given
// radius around t, sorted ascending.
func (g *Grid) Near(t geom.Tile, radius int) []ObjectID {
	x0, x1 := toCellCoord(t.X-radius), toCellCoord(t.X+radius)
	y0, y1 := toCellCoord(t.Y-radius), toCellCoord(t.Y+radius)
	var result []ObjectID
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			for id := range g.cells[cellKey{cx: cx, cy: cy}] {
				result = append(result, id)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}
