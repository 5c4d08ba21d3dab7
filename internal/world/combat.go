package world

import (
	"github.com/isorpg/fxengine/internal/scripting"
	"go.uber.org/zap"
)

// Rules computes combat outcomes. The Lua engine implements it.
type Rules interface {
	CalcMissileHit(ctx scripting.MissileContext) bool
	CalcMissileDamage(ctx scripting.MissileContext) int
	ExplosionDamage(weapon int) int
}

func (s *State) combatant(id ObjectID) scripting.Combatant {
	if a, ok := s.Actor(id); ok {
		return scripting.Combatant{Dex: a.Dex, Str: a.Str, Combat: a.Combat, Armor: a.Armor, HP: a.HP}
	}
	if o, ok := s.Get(id); ok {
		return scripting.Combatant{HP: o.HP}
	}
	return scripting.Combatant{}
}

func (s *State) missileContext(target, attacker ObjectID, weapon, ammo, attval int) scripting.MissileContext {
	ctx := scripting.MissileContext{
		Attacker:  s.combatant(attacker),
		Target:    s.combatant(target),
		AttackPts: attval,
		Weapon:    weapon,
		Ammo:      ammo,
	}
	if w := s.shapes.Weapon(weapon); w != nil {
		ctx.WeaponDmg = w.Damage
	}
	if a := s.shapes.AmmoFor(ammo); a != nil {
		ctx.AmmoDmg = a.Damage
	}
	return ctx
}

// TryToHit rolls a missile attack against target. Objects that are not
// actors cannot dodge.
func (s *State) TryToHit(target, attacker ObjectID, attval int) bool {
	if !s.Alive(target) {
		return false
	}
	a, ok := s.Actor(target)
	if !ok {
		return true
	}
	if a.Dead {
		return false
	}
	return s.rules.CalcMissileHit(s.missileContext(target, attacker, -1, -1, attval))
}

// Attacked applies one attack to target and returns the damage dealt.
// Explosions use the flat blast damage of the weapon; missiles go through
// the damage script. Breakable objects brought to zero are removed at the
// end of the frame.
func (s *State) Attacked(target, attacker ObjectID, weapon, ammo int, explosion bool) int {
	o, ok := s.Get(target)
	if !ok {
		return 0
	}
	var dmg int
	if explosion {
		dmg = s.rules.ExplosionDamage(weapon)
	} else {
		ctx := s.missileContext(target, attacker, weapon, ammo, 0)
		dmg = s.rules.CalcMissileDamage(ctx)
	}
	if a, ok := s.actors.Get(target); ok {
		if a.Dead {
			return 0
		}
		a.HP -= dmg
		if a.HP <= 0 {
			a.HP = 0
			a.Dead = true
			s.log.Debug("actor killed",
				zap.Stringer("target", target), zap.Stringer("attacker", attacker), zap.Int("weapon", weapon))
		}
		return dmg
	}
	if o.HP <= 0 {
		return 0 // indestructible
	}
	o.HP -= dmg
	if o.HP <= 0 {
		s.RemoveLater(target)
	}
	return dmg
}
