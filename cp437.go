package ansitag

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// codePage is the 256-entry CP437 display table. The printable and extended
// ranges come straight from [charmap.CodePage437]; the control range 0x00-0x1F
// and 0x7F are overridden with the glyphs an IBM PC renders for those bytes
// (charmap decodes them as the ASCII control characters, which is correct for
// text but wrong for art).
var codePage = newCodePage()

// controlGlyphs holds the display glyphs for bytes 0x00-0x1F.
var controlGlyphs = [0x20]rune{
	0x0000, // NUL has no glyph
	'☺', '☻', '♥', '♦', '♣', '♠', '•',
	'◘', '○', '◙', '♂', '♀', '♪', '♫',
	'☼', '►', '◄', '↕', '‼', '¶', '§',
	'▬', '↨', '↑', '↓', '→', '←', '∟',
	'↔', '▲', '▼',
}

func newCodePage() [256]rune {
	var table [256]rune
	for i := range table {
		table[i] = charmap.CodePage437.DecodeByte(byte(i))
	}
	copy(table[:], controlGlyphs[:])
	table[0x7F] = '⌂' // house
	return table
}

// decodeByte maps a CP437 byte to its display rune, substituting the Unicode
// replacement character for the one byte without a glyph.
func decodeByte(b byte) rune {
	if r := codePage[b]; r != 0 {
		return r
	}
	return utf8.RuneError
}

// decodeBytes maps a CP437 byte slice to a display string.
func decodeBytes(p []byte) string {
	var b strings.Builder
	b.Grow(len(p))
	for _, c := range p {
		b.WriteRune(decodeByte(c))
	}
	return b.String()
}
