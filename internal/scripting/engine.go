package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for combat rules and weapon usecode.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// Host receives calls that usecode scripts make back into the engine.
type Host interface {
	CenterText(msg string)
	Earthquake(length int)
	UsecodeLightning(minutes int)
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
// seed feeds math.randomseed so combat rolls repeat between runs.
func NewEngine(scriptsDir string, seed int64, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := vm.DoString(fmt.Sprintf("math.randomseed(%d)", seed)); err != nil {
		vm.Close()
		return nil, fmt.Errorf("seed lua rng: %w", err)
	}

	// Combat rules are required, usecode is optional.
	combatPath := filepath.Join(scriptsDir, "combat")
	if _, err := os.Stat(combatPath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("combat scripts: %w", err)
	}
	if err := e.loadDir(combatPath); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load combat scripts: %w", err)
	}
	if err := e.loadDir(filepath.Join(scriptsDir, "usecode")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load usecode scripts: %w", err)
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// SetHost exposes the engine callbacks to usecode as Lua globals.
func (e *Engine) SetHost(h Host) {
	e.vm.SetGlobal("center_text", e.vm.NewFunction(func(L *lua.LState) int {
		h.CenterText(L.CheckString(1))
		return 0
	}))
	e.vm.SetGlobal("earthquake", e.vm.NewFunction(func(L *lua.LState) int {
		h.Earthquake(L.OptInt(1, 10))
		return 0
	}))
	e.vm.SetGlobal("lightning", e.vm.NewFunction(func(L *lua.LState) int {
		h.UsecodeLightning(L.OptInt(1, 1))
		return 0
	}))
}

// Combatant is the subset of an object's stats the combat scripts see.
type Combatant struct {
	Dex    int
	Str    int
	Combat int
	Armor  int
	HP     int
}

// MissileContext holds pre-packed data for a missile attack calculation.
type MissileContext struct {
	Attacker  Combatant
	Target    Combatant
	AttackPts int // attack points carried by the projectile
	Weapon    int // weapon shape
	WeaponDmg int
	Ammo      int // ammo shape, -1 when none
	AmmoDmg   int
	Explosion bool
}

func (e *Engine) pack(ctx MissileContext) *lua.LTable {
	t := e.vm.NewTable()
	atk := e.vm.NewTable()
	atk.RawSetString("dex", lua.LNumber(ctx.Attacker.Dex))
	atk.RawSetString("str", lua.LNumber(ctx.Attacker.Str))
	atk.RawSetString("combat", lua.LNumber(ctx.Attacker.Combat))
	t.RawSetString("attacker", atk)

	tgt := e.vm.NewTable()
	tgt.RawSetString("dex", lua.LNumber(ctx.Target.Dex))
	tgt.RawSetString("armor", lua.LNumber(ctx.Target.Armor))
	tgt.RawSetString("combat", lua.LNumber(ctx.Target.Combat))
	tgt.RawSetString("hp", lua.LNumber(ctx.Target.HP))
	t.RawSetString("target", tgt)

	t.RawSetString("attack_pts", lua.LNumber(ctx.AttackPts))
	t.RawSetString("weapon", lua.LNumber(ctx.Weapon))
	t.RawSetString("weapon_dmg", lua.LNumber(ctx.WeaponDmg))
	t.RawSetString("ammo", lua.LNumber(ctx.Ammo))
	t.RawSetString("ammo_dmg", lua.LNumber(ctx.AmmoDmg))
	t.RawSetString("explosion", lua.LBool(ctx.Explosion))
	return t
}

// CalcMissileHit calls the Lua calc_missile_hit function.
// Script failures count as a miss.
func (e *Engine) CalcMissileHit(ctx MissileContext) bool {
	fn := e.vm.GetGlobal("calc_missile_hit")
	if fn == lua.LNil {
		e.log.Error("lua function calc_missile_hit not found")
		return false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, e.pack(ctx)); err != nil {
		e.log.Error("lua calc_missile_hit error", zap.Error(err))
		return false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return lua.LVAsBool(result)
}

// CalcMissileDamage calls the Lua calc_missile_damage function.
// Script failures deal 1 point so a hit never silently heals.
func (e *Engine) CalcMissileDamage(ctx MissileContext) int {
	fn := e.vm.GetGlobal("calc_missile_damage")
	if fn == lua.LNil {
		e.log.Error("lua function calc_missile_damage not found")
		return 1
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, e.pack(ctx)); err != nil {
		e.log.Error("lua calc_missile_damage error", zap.Error(err))
		return 1
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	dmg := int(lua.LVAsNumber(result))
	if dmg < 0 {
		dmg = 0
	}
	return dmg
}

// CallUsecode runs the named usecode function with the event name. Returns
// false when the function is missing or raised an error.
func (e *Engine) CallUsecode(fn string, event string) bool {
	f := e.vm.GetGlobal(fn)
	if f == lua.LNil {
		e.log.Warn("usecode function not found", zap.String("func", fn))
		return false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      f,
		NRet:    0,
		Protect: true,
	}, lua.LString(event)); err != nil {
		e.log.Error("usecode error", zap.String("func", fn), zap.String("event", event), zap.Error(err))
		return false
	}
	return true
}

// --- Lua helpers ---

// callIntFunc calls a Lua function with int args and returns an int result.
func (e *Engine) callIntFunc(name string, args ...int) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return 0
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(result))
}

// ExplosionDamage returns the area damage an exploding weapon deals to each
// object caught in the blast.
func (e *Engine) ExplosionDamage(weapon int) int {
	dmg := e.callIntFunc("explosion_damage", weapon)
	if dmg < 0 {
		dmg = 0
	}
	return dmg
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
