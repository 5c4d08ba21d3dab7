package render

import "github.com/gdamore/tcell/v2"

// Mode is the palette currently in effect.
type Mode int

const (
	ModeNormal Mode = iota
	ModeOvercast
	ModeFog
	ModeLightning
)

func (m Mode) String() string {
	switch m {
	case ModeOvercast:
		return "overcast"
	case ModeFog:
		return "fog"
	case ModeLightning:
		return "lightning"
	}
	return "normal"
}

// Palette tracks the weather-driven palette. Lightning overrides everything
// until Restore recomputes the palette from the overcast and fog state.
type Palette struct {
	lightning bool
	overcast  bool
	fog       bool
	flashes   int
}

func NewPalette() *Palette { return &Palette{} }

// Lightning switches to the white flash palette.
func (p *Palette) Lightning() {
	p.lightning = true
	p.flashes++
}

// Restore drops the flash and returns to the clock palette.
func (p *Palette) Restore() { p.lightning = false }

func (p *Palette) SetOvercast(v bool) { p.overcast = v }
func (p *Palette) SetFog(v bool)      { p.fog = v }

// Flashes returns how many lightning flashes were shown.
func (p *Palette) Flashes() int { return p.flashes }

func (p *Palette) Mode() Mode {
	switch {
	case p.lightning:
		return ModeLightning
	case p.fog:
		return ModeFog
	case p.overcast:
		return ModeOvercast
	}
	return ModeNormal
}

// Tint applies the palette to a cell style.
func (p *Palette) Tint(st tcell.Style) tcell.Style {
	switch p.Mode() {
	case ModeLightning:
		return st.Foreground(tcell.ColorWhite).Bold(true)
	case ModeFog:
		return st.Dim(true)
	case ModeOvercast:
		fg, _, _ := st.Decompose()
		if fg == tcell.ColorDefault {
			return st.Foreground(tcell.ColorGray)
		}
		return st.Dim(true)
	}
	return st
}
