package system

import (
	"fmt"
	"time"

	coresys "github.com/isorpg/fxengine/internal/core/system"
	"github.com/isorpg/fxengine/internal/data"
	"github.com/isorpg/fxengine/internal/fx"
	"github.com/isorpg/fxengine/internal/geom"
	"github.com/isorpg/fxengine/internal/world"
	"go.uber.org/zap"
)

// DirectorSystem plays a scenario timeline: every command is turned into an
// effect or a manager call once its start time is reached. It runs in the
// Update phase ahead of the time queue, so an effect started this frame can
// fire this frame.
type DirectorSystem struct {
	fx     *fx.Manager
	world  *world.State
	win    fx.Window
	shapes fx.Shapes
	ids    map[string]world.ObjectID
	cmds   []data.Command
	next   int
	log    *zap.Logger

	elapsed time.Duration
	failed  int
}

func NewDirectorSystem(m *fx.Manager, ws *world.State, win fx.Window, shapes fx.Shapes,
	ids map[string]world.ObjectID, cmds []data.Command, log *zap.Logger) *DirectorSystem {
	return &DirectorSystem{fx: m, world: ws, win: win, shapes: shapes, ids: ids, cmds: cmds, log: log}
}

func (s *DirectorSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *DirectorSystem) Update(dt time.Duration) {
	s.elapsed += dt
	now := int(s.elapsed.Milliseconds())
	for s.next < len(s.cmds) && s.cmds[s.next].At <= now {
		c := s.cmds[s.next]
		s.next++
		if err := s.Execute(c); err != nil {
			s.failed++
			s.log.Warn("scenario command failed", zap.Int("at", c.At), zap.String("effect", c.Effect), zap.Error(err))
			continue
		}
		s.log.Debug("scenario command", zap.Int("at", c.At), zap.String("effect", c.Effect))
	}
}

// Done reports whether every command has been issued.
func (s *DirectorSystem) Done() bool { return s.next >= len(s.cmds) }

// Failed returns the number of commands that could not be carried out.
func (s *DirectorSystem) Failed() int { return s.failed }

func (s *DirectorSystem) obj(name string) world.ObjectID {
	if name == "" {
		return 0
	}
	return s.ids[name]
}

// tile resolves where a command happens: its explicit tile, else the
// object, else the target.
func (s *DirectorSystem) tile(c data.Command) geom.Tile {
	switch {
	case c.Tile != nil:
		return world.TileOf(c.Tile)
	case c.Object != "":
		return s.world.Tile(s.obj(c.Object))
	case c.Target != "":
		return s.world.Tile(s.obj(c.Target))
	}
	return geom.InvalidTile
}

func (s *DirectorSystem) egg(c data.Command) geom.Tile {
	if c.Egg == "" {
		return geom.InvalidTile
	}
	return s.world.Tile(s.obj(c.Egg))
}

// Execute carries out one command immediately.
func (s *DirectorSystem) Execute(c data.Command) error {
	m := s.fx
	switch c.Effect {
	case "sprite":
		sprite := data.IntOr(c.Sprite, 5)
		reps := data.IntOr(c.Reps, -1)
		if c.Object != "" {
			m.AddEffect(fx.NewSpritesOn(sprite, s.obj(c.Object), 0, 0, c.DX, c.DY, 0, reps))
			return nil
		}
		t := s.tile(c)
		if !t.Valid() {
			return fmt.Errorf("sprite needs a tile or an object")
		}
		m.AddEffect(fx.NewSprites(sprite, t, c.DX, c.DY, c.Delay, 0, reps))
	case "explosion":
		t := s.tile(c)
		if !t.Valid() {
			return fmt.Errorf("explosion needs a tile or an object")
		}
		m.AddEffect(fx.NewExplosion(t, s.obj(c.Object), c.Delay,
			data.IntOr(c.Weapon, -1), data.IntOr(c.Ammo, -1), s.obj(c.Attacker)))
	case "projectile":
		spec, err := s.projectile(c)
		if err != nil {
			return err
		}
		m.AddEffect(fx.NewProjectile(spec))
	case "homing":
		t := s.tile(c)
		if c.Attacker != "" && c.Tile == nil {
			t = s.world.Tile(s.obj(c.Attacker))
		}
		if !t.Valid() {
			return fmt.Errorf("homing needs a start tile")
		}
		m.AddEffect(fx.NewHoming(data.IntOr(c.Weapon, -1), s.obj(c.Attacker), s.obj(c.Target), t, s.tile(c)))
	case "text":
		return s.text(c)
	case "rain":
		m.AddEffect(fx.NewRain(c.Duration, c.Delay, c.Drops, s.egg(c)))
	case "snow":
		m.AddEffect(fx.NewSnow(c.Duration, c.Delay, c.Drops, s.egg(c)))
	case "sparkle_drops":
		m.AddEffect(fx.NewDrops(fx.SparkleDrop, c.Duration, c.Delay, c.Drops, fx.WeatherSparkle, s.egg(c)))
	case "lightning":
		m.AddEffect(fx.NewLightning(c.Duration, c.Delay, false))
	case "storm":
		m.AddEffect(fx.NewStorm(c.Duration, c.Delay, s.egg(c)))
	case "snowstorm":
		m.AddEffect(fx.NewSnowstorm(c.Duration, c.Delay, s.egg(c)))
	case "sparkle":
		m.AddEffect(fx.NewSparkleStorm(c.Duration, c.Delay, s.egg(c)))
	case "fog":
		m.AddEffect(fx.NewFog(c.Duration, c.Delay, s.egg(c)))
	case "clouds":
		m.AddEffect(fx.NewClouds(c.Duration, c.Delay, s.egg(c), fx.WeatherNone))
	case "earthquake":
		m.Earthquake(max(c.Length, 1))
	case "fire_field":
		t := s.tile(c)
		if !t.Valid() {
			return fmt.Errorf("fire_field needs a tile")
		}
		m.AddEffect(fx.NewFireField(t, c.Lifespan, c.Endless))
	case "remove_weather":
		n := m.RemoveWeatherEffects(c.Distance)
		s.log.Debug("weather removed", zap.Int("count", n))
	case "remove_all":
		m.RemoveAllEffects(true)
	case "pause":
		m.Pause()
	case "resume":
		m.Resume()
	case "kill":
		id := s.obj(c.Target)
		if id.IsZero() {
			id = s.obj(c.Object)
		}
		if !s.world.Alive(id) {
			return fmt.Errorf("kill: no live target")
		}
		if _, ok := s.world.Actor(id); ok {
			s.world.Kill(id)
		} else {
			s.world.Remove(id)
		}
		s.win.SetAllDirty()
	default:
		return fmt.Errorf("unknown effect %q", c.Effect)
	}
	return nil
}

// projectile builds a missile from a command. It flies from the attacker,
// or from tile, toward the target. Without a target it aims at tile, or at
// its start plus dx,dy.
func (s *DirectorSystem) projectile(c data.Command) (fx.ProjectileSpec, error) {
	weapon := data.IntOr(c.Weapon, -1)
	ammo := data.IntOr(c.Ammo, -1)
	sprite := -1
	if w := s.shapes.Weapon(weapon); w != nil {
		if ammo < 0 && w.Ammo >= 0 {
			ammo = w.Ammo
		}
		sprite = w.Projectile
	}
	spec := fx.ProjectileSpec{
		Attacker:   s.obj(c.Attacker),
		Target:     s.obj(c.Target),
		Weapon:     weapon,
		Projectile: ammo,
		Sprite:     data.IntOr(c.Sprite, sprite),
		AttackPts:  c.AttackPts,
		Speed:      data.IntOr(c.Speed, 0),
	}
	spec.From, spec.To = geom.InvalidTile, geom.InvalidTile
	delta := geom.Tile{X: c.DX, Y: c.DY}
	switch {
	case c.Tile != nil && spec.Attacker.IsZero():
		spec.From = world.TileOf(c.Tile)
		spec.To = spec.From.Add(delta)
	case c.Tile != nil:
		spec.To = world.TileOf(c.Tile)
	case !spec.Attacker.IsZero() && delta != (geom.Tile{}):
		spec.To = s.world.Tile(spec.Attacker).Add(delta)
	}
	if spec.Attacker.IsZero() && !spec.From.Valid() {
		return spec, fmt.Errorf("projectile needs an attacker or a tile")
	}
	if spec.Target.IsZero() && (!spec.To.Valid() || spec.To == spec.From) {
		return spec, fmt.Errorf("projectile has nowhere to go")
	}
	return spec, nil
}

func (s *DirectorSystem) text(c data.Command) error {
	switch {
	case c.Object != "":
		if s.fx.AddText(c.Text, s.obj(c.Object)) == nil {
			return fmt.Errorf("text refused for %q", c.Object)
		}
	case c.Tile != nil:
		x, y := s.win.TileToScreen(world.TileOf(c.Tile))
		tile := s.win.TileSize()
		s.fx.AddTextAt(c.Text, x-tile+1, y-tile+1)
	default:
		s.fx.CenterText(c.Text)
	}
	return nil
}
