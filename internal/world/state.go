package world

import (
	"github.com/isorpg/fxengine/internal/core/ecs"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/geom"
	"go.uber.org/zap"
)

// ObjectID is a generation-checked weak handle to a world object. Effects
// keep ObjectIDs, never pointers; every use goes back through State.
type ObjectID = ecs.EntityID

// Flag is an object flag bit.
type Flag uint8

const (
	FlagTemporary  Flag = 1 << iota // removed when the area is reset
	FlagOkayToTake                  // player may pick it up
)

// Object is the component every world object has.
// Accessed only from the game loop goroutine, no locks needed.
type Object struct {
	Name    string
	Shape   int
	Frame   int
	Tile    geom.Tile // InvalidTile while held in a container
	Owner   ObjectID  // container holding this object
	Quality int
	Flags   Flag
	HP      int // breakable objects only
}

// Actor is the component of objects that fight.
type Actor struct {
	HP        int
	MaxHP     int
	Party     bool
	Dead      bool
	Alignment int
	Dex       int
	Str       int
	Combat    int
	Armor     int
}

// ActorInfo is the read-only view of an actor handed to effects.
type ActorInfo struct {
	Party     bool
	Dead      bool
	Alignment int
}

// Container is the component of objects that hold other objects.
type Container struct {
	Contents []ObjectID
}

// State holds every object in the scene plus the observer's situation.
type State struct {
	ecs        *ecs.World
	objects    *ecs.PtrComponentStore[Object]
	actors     *ecs.PtrComponentStore[Actor]
	containers *ecs.PtrComponentStore[Container]
	grid       *Grid

	shapes *data.ShapeTable
	rules  Rules
	log    *zap.Logger

	mainActor ObjectID
	inside    bool
	dungeon   bool
}

func NewState(shapes *data.ShapeTable, rules Rules, log *zap.Logger) *State {
	s := &State{
		ecs:        ecs.NewWorld(),
		objects:    ecs.NewPtrComponentStore[Object](),
		actors:     ecs.NewPtrComponentStore[Actor](),
		containers: ecs.NewPtrComponentStore[Container](),
		grid:       NewGrid(),
		shapes:     shapes,
		rules:      rules,
		log:        log,
	}
	reg := s.ecs.Registry()
	reg.Register(s.objects)
	reg.Register(s.actors)
	reg.Register(s.containers)
	s.ecs.OnDestroy(s.unlink)
	return s
}

// ECS exposes the underlying entity world (cleanup system).
func (s *State) ECS() *ecs.World { return s.ecs }

// Count returns the number of live objects.
func (s *State) Count() int { return s.objects.Len() }

// unlink detaches an object from the grid and its container before its
// components are dropped. Contents go with their container.
func (s *State) unlink(id ObjectID) {
	o, ok := s.objects.Get(id)
	if !ok {
		return
	}
	if o.Tile.Valid() {
		s.grid.Remove(id, o.Tile)
	}
	s.detach(id, o)
	if c, ok := s.containers.Get(id); ok {
		contents := append([]ObjectID(nil), c.Contents...)
		c.Contents = nil
		for _, child := range contents {
			if co, ok := s.objects.Get(child); ok {
				co.Owner = 0
			}
			s.ecs.DestroyNow(child)
		}
	}
	if id == s.mainActor {
		s.mainActor = 0
	}
}

func (s *State) detach(id ObjectID, o *Object) {
	if o.Owner.IsZero() {
		return
	}
	if c, ok := s.containers.Get(o.Owner); ok {
		for i, child := range c.Contents {
			if child == id {
				c.Contents = append(c.Contents[:i], c.Contents[i+1:]...)
				break
			}
		}
	}
	o.Owner = 0
}

// Create makes a new object that is not yet on the map.
func (s *State) Create(shape, frame int) ObjectID {
	id := s.ecs.CreateEntity()
	o := &Object{Shape: shape, Frame: frame, Tile: geom.InvalidTile}
	if info := s.shapes.Get(shape); info != nil {
		o.Name = info.Name
		o.HP = info.HP
		if info.Container {
			s.containers.Set(id, &Container{})
		}
	}
	s.objects.Set(id, o)
	return id
}

// Get returns the object component of a live object.
func (s *State) Get(id ObjectID) (*Object, bool) {
	if !s.ecs.Alive(id) {
		return nil, false
	}
	return s.objects.Get(id)
}

// MakeActor attaches actor stats to an object.
func (s *State) MakeActor(id ObjectID, a Actor) {
	if !s.ecs.Alive(id) {
		return
	}
	if a.MaxHP == 0 {
		a.MaxHP = a.HP
	}
	s.actors.Set(id, &a)
}

// Actor returns the actor component of a live object.
func (s *State) Actor(id ObjectID) (*Actor, bool) {
	if !s.ecs.Alive(id) {
		return nil, false
	}
	return s.actors.Get(id)
}

// MakeContainer lets an object hold other objects.
func (s *State) MakeContainer(id ObjectID) {
	if s.ecs.Alive(id) && !s.containers.Has(id) {
		s.containers.Set(id, &Container{})
	}
}

// Contents returns a copy of a container's contents.
func (s *State) Contents(id ObjectID) []ObjectID {
	c, ok := s.containers.Get(id)
	if !ok || !s.ecs.Alive(id) {
		return nil
	}
	return append([]ObjectID(nil), c.Contents...)
}

// EachOnMap calls fn for every object placed on the map, in ID order.
func (s *State) EachOnMap(fn func(ObjectID, *Object)) {
	s.objects.Each(func(id ObjectID, o *Object) {
		if o.Tile.Valid() {
			fn(id, o)
		}
	})
}

// EachActor calls fn for every actor, placed or carried, in ID order.
func (s *State) EachActor(fn func(ObjectID, *Object, *Actor)) {
	ecs.Each2(s.objects, s.actors, fn)
}

// Alive reports whether the handle still refers to a live object.
func (s *State) Alive(id ObjectID) bool {
	return s.ecs.Alive(id)
}

// Move places an object on the map, taking it out of any container.
func (s *State) Move(id ObjectID, t geom.Tile) {
	o, ok := s.Get(id)
	if !ok {
		return
	}
	s.detach(id, o)
	if o.Tile.Valid() {
		s.grid.Move(id, o.Tile, t)
	} else {
		s.grid.Add(id, t)
	}
	o.Tile = t
}

// AddToContainer moves obj into container. Returns false when container is
// not a live container.
func (s *State) AddToContainer(container, obj ObjectID) bool {
	c, ok := s.containers.Get(container)
	if !ok || !s.ecs.Alive(container) || container == obj {
		return false
	}
	o, ok := s.Get(obj)
	if !ok {
		return false
	}
	s.detach(obj, o)
	if o.Tile.Valid() {
		s.grid.Remove(obj, o.Tile)
		o.Tile = geom.InvalidTile
	}
	o.Owner = container
	c.Contents = append(c.Contents, obj)
	return true
}

// Remove destroys an object now. Stale handles are ignored.
func (s *State) Remove(id ObjectID) {
	s.ecs.DestroyNow(id)
}

// RemoveLater queues an object for end-of-frame destruction.
func (s *State) RemoveLater(id ObjectID) {
	s.ecs.MarkForDestruction(id)
}

func (s *State) SetFlag(id ObjectID, f Flag) {
	if o, ok := s.Get(id); ok {
		o.Flags |= f
	}
}

func (s *State) HasFlag(id ObjectID, f Flag) bool {
	o, ok := s.Get(id)
	return ok && o.Flags&f != 0
}

func (s *State) SetQuality(id ObjectID, q int) {
	if o, ok := s.Get(id); ok {
		o.Quality = q
	}
}

// Shape returns the shape number of a live object, or -1.
func (s *State) Shape(id ObjectID) int {
	if o, ok := s.Get(id); ok {
		return o.Shape
	}
	return -1
}

// outermost follows container ownership up to the object on the map.
func (s *State) outermost(id ObjectID) (*Object, bool) {
	o, ok := s.Get(id)
	for depth := 0; ok && !o.Owner.IsZero() && depth < 16; depth++ {
		o, ok = s.Get(o.Owner)
	}
	return o, ok
}

// Tile returns the map tile of an object, or of its outermost container.
func (s *State) Tile(id ObjectID) geom.Tile {
	o, ok := s.outermost(id)
	if !ok {
		return geom.InvalidTile
	}
	return o.Tile
}

func (s *State) info(shape int) (xt, yt, h int) {
	if info := s.shapes.Get(shape); info != nil {
		return info.XTiles, info.YTiles, info.Height
	}
	return 1, 1, 1
}

// Height returns the 3D height of an object in lifts.
func (s *State) Height(id ObjectID) int {
	o, ok := s.Get(id)
	if !ok {
		return 0
	}
	_, _, h := s.info(o.Shape)
	return h
}

// CenterTile returns the tile at the middle of an object's volume. An
// object's Tile is its lower-right (south-east) footprint corner.
func (s *State) CenterTile(id ObjectID) geom.Tile {
	o, ok := s.outermost(id)
	if !ok || !o.Tile.Valid() {
		return geom.InvalidTile
	}
	xt, yt, h := s.info(o.Shape)
	return geom.Tile{X: o.Tile.X - xt/2, Y: o.Tile.Y - yt/2, Z: o.Tile.Z + h/2}
}

// Block returns the tile volume an object occupies.
func (s *State) Block(id ObjectID) geom.Box {
	o, ok := s.outermost(id)
	if !ok || !o.Tile.Valid() {
		return geom.Box{}
	}
	return s.blockOf(o)
}

func (s *State) blockOf(o *Object) geom.Box {
	xt, yt, h := s.info(o.Shape)
	return geom.Box{X: o.Tile.X - xt + 1, Y: o.Tile.Y - yt + 1, Z: o.Tile.Z, W: xt, D: yt, H: h}
}

// MissileTile returns where a missile fired toward dir leaves the object:
// the center of its volume pushed to the footprint edge facing dir.
func (s *State) MissileTile(id ObjectID, dir int) geom.Tile {
	c := s.CenterTile(id)
	if !c.Valid() {
		return c
	}
	o, _ := s.outermost(id)
	xt, yt, _ := s.info(o.Shape)
	n := c.Neighbor(dir)
	return geom.Tile{
		X: c.X + (n.X-c.X)*(xt/2),
		Y: c.Y + (n.Y-c.Y)*(yt/2),
		Z: c.Z,
	}
}

// Direction returns the 8-way heading from an object toward t.
func (s *State) Direction(id ObjectID, t geom.Tile) int {
	return s.Tile(id).Direction8(t)
}

// blocks reports whether an object stops missiles and movement.
func (s *State) blocks(id ObjectID, o *Object) bool {
	if a, ok := s.actors.Get(id); ok {
		return !a.Dead
	}
	info := s.shapes.Get(o.Shape)
	return info != nil && info.Solid
}

// maxFootprint bounds how far from t an object's anchor tile can be while
// its volume still covers t.
const maxFootprint = 8

// FindBlocking returns the object whose volume contains t and blocks, or zero.
func (s *State) FindBlocking(t geom.Tile) ObjectID {
	for _, id := range s.grid.Near(t, maxFootprint) {
		o, ok := s.objects.Get(id)
		if !ok || !s.blocks(id, o) {
			continue
		}
		if s.blockOf(o).HasPoint(t) {
			return id
		}
	}
	return 0
}

// IsBlocked reports whether anything blocking occupies t.
func (s *State) IsBlocked(t geom.Tile) bool {
	return !s.FindBlocking(t).IsZero()
}

// Nearby returns map objects whose tile lies within radius of center
// (inclusive, elevation ignored), in ID order.
func (s *State) Nearby(center geom.Tile, radius int) []ObjectID {
	var out []ObjectID
	r2 := radius * radius
	for _, id := range s.grid.Near(center, radius) {
		o, ok := s.objects.Get(id)
		if ok && o.Tile.PlanarDistSq(center) <= r2 {
			out = append(out, id)
		}
	}
	return out
}

// NearbyActors is Nearby restricted to actors.
func (s *State) NearbyActors(center geom.Tile, radius int) []ObjectID {
	var out []ObjectID
	for _, id := range s.Nearby(center, radius) {
		if s.actors.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// ActorInfo returns the party, death and alignment state of an actor.
func (s *State) ActorInfo(id ObjectID) (ActorInfo, bool) {
	a, ok := s.Actor(id)
	if !ok {
		return ActorInfo{}, false
	}
	return ActorInfo{Party: a.Party, Dead: a.Dead, Alignment: a.Alignment}, true
}

// Kill marks an actor dead without removing it.
func (s *State) Kill(id ObjectID) {
	if a, ok := s.Actor(id); ok {
		a.HP = 0
		a.Dead = true
	}
}

// FindSpot returns the nearest unblocked tile within radius of t, scanning
// rings outward, or InvalidTile.
func (s *State) FindSpot(t geom.Tile, radius int) geom.Tile {
	if !s.IsBlocked(t) {
		return t
	}
	for d := 1; d <= radius; d++ {
		for dy := -d; dy <= d; dy++ {
			for dx := -d; dx <= d; dx++ {
				if geom.Abs(dx) != d && geom.Abs(dy) != d {
					continue
				}
				c := geom.Tile{X: t.X + dx, Y: t.Y + dy, Z: t.Z}
				if !s.IsBlocked(c) {
					return c
				}
			}
		}
	}
	return geom.InvalidTile
}

func (s *State) MainActor() ObjectID      { return s.mainActor }
func (s *State) SetMainActor(id ObjectID) { s.mainActor = id }

// Inside reports whether the main actor is under a roof.
func (s *State) Inside() bool      { return s.inside }
func (s *State) SetInside(v bool)  { s.inside = v }
func (s *State) InDungeon() bool   { return s.dungeon }
func (s *State) SetDungeon(v bool) { s.dungeon = v }
