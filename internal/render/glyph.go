package render

import "golang.org/x/text/encoding/charmap"

// The game font is an 8x8 code page 437 bitmap font.
const (
	FontWidth  = 8
	FontHeight = 8
)

// EncodeGlyphs converts a UTF-8 message into font glyph indices. Runes the
// font lacks become '?'.
func EncodeGlyphs(msg string) []byte {
	out := make([]byte, 0, len(msg))
	for _, r := range msg {
		b, ok := charmap.CodePage437.EncodeRune(r)
		if !ok {
			b = '?'
		}
		out = append(out, b)
	}
	return out
}

// GlyphRune returns the rune a terminal shows for a font glyph.
func GlyphRune(g byte) rune {
	return charmap.CodePage437.DecodeByte(g)
}

// TextWidth returns the pixel width of a glyph string.
func TextWidth(glyphs []byte) int { return len(glyphs) * FontWidth }
