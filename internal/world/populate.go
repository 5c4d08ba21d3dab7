package world

import (
	"fmt"

	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/geom"
)

// TileOf converts a scenario coordinate list into a tile; z defaults to 0.
func TileOf(at []int) geom.Tile {
	t := geom.Tile{}
	if len(at) > 0 {
		t.X = at[0]
	}
	if len(at) > 1 {
		t.Y = at[1]
	}
	if len(at) > 2 {
		t.Z = at[2]
	}
	return t
}

// Populate creates the scenario's objects and returns them by name.
// Containers are created before their contents regardless of file order.
func (s *State) Populate(sc *data.Scenario) (map[string]ObjectID, error) {
	ids := make(map[string]ObjectID, len(sc.Objects))
	for _, spec := range sc.Objects {
		id := s.Create(spec.Shape, spec.Frame)
		if o, ok := s.Get(id); ok {
			o.Name = spec.Name
		}
		if spec.Temporary {
			s.SetFlag(id, FlagTemporary)
		}
		if spec.Actor != nil {
			s.MakeActor(id, Actor{
				HP:        spec.Actor.HP,
				Party:     spec.Actor.Party,
				Alignment: spec.Actor.Align(),
				Dex:       spec.Actor.Dex,
				Str:       spec.Actor.Str,
				Combat:    spec.Actor.Combat,
				Armor:     spec.Actor.Armor,
			})
		}
		if spec.In == "" {
			s.Move(id, TileOf(spec.At))
		}
		ids[spec.Name] = id
	}
	for _, spec := range sc.Objects {
		if spec.In == "" {
			continue
		}
		holder := ids[spec.In]
		s.MakeContainer(holder)
		if !s.AddToContainer(holder, ids[spec.Name]) {
			return nil, fmt.Errorf("put %q in %q", spec.Name, spec.In)
		}
	}
	if sc.MainActor != "" {
		s.SetMainActor(ids[sc.MainActor])
	}
	s.SetInside(sc.Inside)
	s.SetDungeon(sc.Dungeon)
	return ids, nil
}
