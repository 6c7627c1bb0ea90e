package ansitag

import (
	"fmt"
	"strconv"
	"strings"
)

// colorMode selects which tier of the color model a channel is using.
// Foreground and background are independent, so one side can sit in the CGA
// palette while the other holds a 256-color index or a 24-bit value.
type colorMode uint8

const (
	modeCGA colorMode = iota // 4-bit CGA index 0-15
	mode256                  // xterm 256-color palette index
	modeRGB                  // 24-bit truecolor
)

// channel is one side (foreground or background) of the drawing color.
type channel struct {
	mode    colorMode
	value   uint8 // CGA index or palette index
	r, g, b uint8
}

func cgaColor(n uint8) channel { return channel{mode: modeCGA, value: n} }

const (
	defaultFG = 7 // light gray
	defaultBG = 0 // black

	bright = 0x08 // CGA high-intensity bit

	tag256 = "256"
	tagRGB = "rgb"
)

// ansiToCGA remaps an ANSI base color ordinal to the CGA palette index.
// ANSI counts black, red, green, yellow, blue, magenta, cyan, white; CGA
// swaps the red and blue positions.
var ansiToCGA = [8]uint8{0, 4, 2, 6, 1, 5, 3, 7}

// setBase selects a normal-intensity base color, preserving the intensity
// bit when the channel is already CGA.
func setBase(ch channel, base uint8) channel {
	if ch.mode == modeCGA {
		return cgaColor(ch.value&bright | base)
	}
	return cgaColor(base)
}

func clamp255(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// processSGR applies a semicolon-separated SGR parameter string against a
// working copy of the current colors and commits the result atomically. An
// empty parameter string means reset; unparseable parameters are skipped.
func (c *converter) processSGR(params string) {
	codes := []int{0}
	if params != "" {
		codes = codes[:0]
		for _, s := range strings.Split(params, ";") {
			n, err := strconv.Atoi(s)
			if err != nil {
				continue
			}
			codes = append(codes, n)
		}
	}
	fg, bg := c.fg, c.bg
	for i := 0; i < len(codes); i++ {
		switch p := codes[i]; {
		case p == 0:
			fg, bg = cgaColor(defaultFG), cgaColor(defaultBG)
		case p == 1:
			// bold sets the intensity bit, meaningful only in CGA mode
			if fg.mode == modeCGA {
				fg.value |= bright
			}
		case p == 2 || p == 22:
			if fg.mode == modeCGA {
				fg.value &^= bright
			}
		case p == 5 || p == 6:
			// blink maps to a bright background, the CGA convention
			if bg.mode == modeCGA {
				bg.value |= bright
			}
		case p == 25:
			if bg.mode == modeCGA {
				bg.value &^= bright
			}
		case p == 7:
			fg, bg = bg, fg
		case 30 <= p && p <= 37:
			fg = setBase(fg, ansiToCGA[p-30])
		case p == 39:
			fg = cgaColor(defaultFG)
		case 40 <= p && p <= 47:
			bg = setBase(bg, ansiToCGA[p-40])
		case p == 49:
			bg = cgaColor(defaultBG)
		case 90 <= p && p <= 97:
			fg = cgaColor(ansiToCGA[p-90] | bright)
		case 100 <= p && p <= 107:
			bg = cgaColor(ansiToCGA[p-100] | bright)
		case p == 38 || p == 48:
			ext, ok := c.extended(codes, &i)
			if !ok {
				continue
			}
			if p == 38 {
				fg = ext
			} else {
				bg = ext
			}
		default:
			// unknown codes are ignored, the rest of the sequence still applies
		}
	}
	c.switchColor(bg, fg)
}

// extended consumes the sub-parameters of a 38/48 sequence starting at
// codes[*i]. The index is advanced past whatever was consumed whether or not
// it formed a valid color, so a truncated sub-sequence is dropped without
// derailing the remaining parameters.
func (c *converter) extended(codes []int, i *int) (channel, bool) {
	if *i+1 >= len(codes) {
		return channel{}, false
	}
	const xterm, truecolor = 5, 2
	switch codes[*i+1] {
	case xterm:
		if *i+2 >= len(codes) {
			*i = len(codes)
			return channel{}, false
		}
		n := clamp255(codes[*i+2])
		*i += 2
		c.extTag = tag256
		return channel{mode: mode256, value: n}, true
	case truecolor:
		if *i+4 >= len(codes) {
			*i = len(codes)
			return channel{}, false
		}
		r := clamp255(codes[*i+2])
		g := clamp255(codes[*i+3])
		b := clamp255(codes[*i+4])
		*i += 4
		c.extTag = tagRGB
		return channel{mode: modeRGB, r: r, g: g, b: b}, true
	default:
		// unknown introducer, skip it
		*i++
		return channel{}, false
	}
}

// applySynchronet applies one Synchronet Ctrl-A code byte. All effects are
// bit sets or direct assignments, so repeated codes are idempotent.
func (c *converter) applySynchronet(code byte) {
	c.lineHasEscape = true
	fg, bg := c.fg, c.bg
	switch code {
	case 'k':
		fg = cgaColor(0)
	case 'b':
		fg = cgaColor(1)
	case 'g':
		fg = cgaColor(2)
	case 'c':
		fg = cgaColor(3)
	case 'r':
		fg = cgaColor(4)
	case 'm':
		fg = cgaColor(5)
	case 'y':
		fg = cgaColor(6)
	case 'w':
		fg = cgaColor(7)
	case 'K':
		fg = cgaColor(8)
	case 'B':
		fg = cgaColor(9)
	case 'G':
		fg = cgaColor(10)
	case 'C':
		fg = cgaColor(11)
	case 'R':
		fg = cgaColor(12)
	case 'M':
		fg = cgaColor(13)
	case 'Y':
		fg = cgaColor(14)
	case 'W':
		fg = cgaColor(15)
	case '0', '1', '2', '3', '4', '5', '6', '7':
		bg = cgaColor(code - '0')
	case 'H', 'h':
		if fg.mode == modeCGA {
			fg.value |= bright
		}
	case 'I', 'i':
		if bg.mode == modeCGA {
			bg.value |= bright
		}
	case 'N', 'n':
		fg, bg = cgaColor(defaultFG), cgaColor(defaultBG)
	case '-':
		if fg.mode == modeCGA {
			fg.value &^= bright
		}
	case '_':
		if bg.mode == modeCGA {
			bg.value &^= bright
		}
	default:
		// unknown code, no effect
	}
	c.switchColor(bg, fg)
}

// applyRenegade applies a two-digit Renegade pipe code. The caller guarantees
// the code is at most 23: 0-15 select the foreground directly, 16 and up map
// the raw offset onto the background range.
func (c *converter) applyRenegade(code uint8) {
	c.lineHasEscape = true
	fg, bg := c.fg, c.bg
	if code <= 15 {
		fg = cgaColor(code)
	} else {
		bg = cgaColor(code - 16)
	}
	c.switchColor(bg, fg)
}

func hexNibble(v uint8) byte {
	if v < 10 {
		return '0' + v
	}
	return 'a' + v - 10
}

// attr renders one channel as a tag attribute value. prefix is "fg" or "bg";
// a CGA channel carries a fallback token naming its palette index so the
// renderer can fall back to the CGA palette for that side.
func (ch channel) attr(prefix string) string {
	switch ch.mode {
	case mode256:
		return strconv.Itoa(int(ch.value))
	case modeRGB:
		return fmt.Sprintf("%d,%d,%d", ch.r, ch.g, ch.b)
	default:
		return prefix + "-" + string(hexNibble(ch.value))
	}
}

// openTag writes the opening tag for the current color pair. With both
// channels in CGA mode the compact two-nibble form is used; otherwise the
// tag name follows whichever channel most recently entered an extended mode.
func (c *converter) openTag() {
	if c.fg.mode == modeCGA && c.bg.mode == modeCGA {
		c.tagName = "ans-" + string([]byte{hexNibble(c.bg.value), hexNibble(c.fg.value)})
		c.out.WriteString("<" + c.tagName + ">")
		return
	}
	c.tagName = "ans-" + c.extTag
	fmt.Fprintf(&c.out, "<%s fg=%q bg=%q>", c.tagName, c.fg.attr("fg"), c.bg.attr("bg"))
}

func (c *converter) closeTag() {
	c.out.WriteString("</" + c.tagName + ">")
}

// switchColor commits a new color pair, closing and reopening tags only when
// the combined state actually changed.
func (c *converter) switchColor(bg, fg channel) {
	if bg == c.bg && fg == c.fg {
		return
	}
	c.closeTag()
	c.bg, c.fg = bg, fg
	c.openTag()
}
