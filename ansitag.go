// Package ansitag converts legacy BBS-style text art, either raw Code Page
// 437 bytes or UTF-8 text, into an HTML fragment that reproduces the
// original terminal appearance with a small vocabulary of color-carrying
// tags.
//
// The converter understands ANSI CSI sequences (SGR colors including the
// 256-color and 24-bit extended forms, erase display, cursor forward,
// save/restore position), two BBS color-code dialects (Synchronet Ctrl-A and
// Renegade pipe codes), and a trailing SAUCE/COMNT metadata record, which is
// decoded and appended to the output as plain text.
//
// Output is wrapped in <pre class="ansi">. While both color channels sit in
// the 16-color CGA palette, runs are wrapped in <ans-KF> elements where K and
// F are the background and foreground palette indexes as lowercase hex
// nibbles. Once a channel enters an extended mode the converter switches to
// <ans-256 fg="..." bg="..."> or <ans-rgb fg="..." bg="...">, where a channel
// still in CGA mode carries a "fg-K"/"bg-K" fallback token. The visual
// meaning of these tags is defined by the page that embeds the fragment; the
// converter itself never emits CSS or scripts.
package ansitag

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	ErrReader = errors.New("reader is nil")
	ErrUTF8   = errors.New("input is not valid utf-8")
)

const (
	ctrlA = 0x01 // Synchronet color-code prefix
	sub   = 0x1a // MS-DOS end-of-file marker, bounds SAUCE trailers
	esc   = 0x1b // escape control character

	// wrapColumn is where lines carrying at least one escape or vendor
	// sequence are soft-wrapped. Lines without any sequence never wrap.
	wrapColumn = 80
)

// Options control which input encoding and BBS color-code dialects the
// converter accepts. The zero value is plain CP437 with standard ANSI only;
// the three fields are independent and any combination is valid.
type Options struct {
	// UTF8Input treats the input as UTF-8 text instead of CP437 bytes. Only
	// characters below 0x20 still pass through the code-page table, for
	// their control-character glyphs.
	UTF8Input bool
	// SynchronetCtrlA enables Synchronet Ctrl-A color codes.
	SynchronetCtrlA bool
	// RenegadePipe enables Renegade pipe codes (|00 through |23).
	RenegadePipe bool
}

type parseState uint8

const (
	stateNormal parseState = iota
	stateEscape            // seen ESC
	stateCSI               // accumulating CSI parameters
	stateCtrlA             // waiting for the Synchronet color byte
	statePipe1             // waiting for the first Renegade digit
	statePipe2             // waiting for the second Renegade digit
)

// converter holds everything a single conversion touches. An instance is
// created per call and discarded on return; nothing is shared.
type converter struct {
	opts Options

	fg, bg  channel
	extTag  string // "256" or "rgb", whichever mode was entered last
	tagName string // name of the currently open tag

	out           strings.Builder
	column        int
	lineHasEscape bool
	suppress      bool // save-position collapse active

	state     parseState
	csiParams []byte
	pipeTens  byte // held first digit of a Renegade code
}

func newConverter(opts Options) *converter {
	return &converter{
		opts: opts,
		fg:   cgaColor(defaultFG),
		bg:   cgaColor(defaultBG),
	}
}

// Convert renders CP437 bytes with ANSI escape sequences as an HTML
// fragment. It uses the default options and cannot fail.
func Convert(p []byte) string {
	s, _ := ConvertWithOptions(p, Options{})
	return s
}

// ConvertWithOptions renders the input with the given encoding and dialect
// options. The only possible failure is input that is not valid UTF-8 while
// [Options.UTF8Input] is set.
func ConvertWithOptions(p []byte, opts Options) (string, error) {
	return newConverter(opts).convert(p)
}

// String returns the HTML fragment for the data found in the Reader.
func String(r io.Reader, opts Options) (string, error) {
	if r == nil {
		return "", ErrReader
	}
	p, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("string reader: %w", err)
	}
	return ConvertWithOptions(p, opts)
}

// Bytes returns the HTML fragment for the data found in the Reader.
func Bytes(r io.Reader, opts Options) ([]byte, error) {
	s, err := String(r, opts)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// WriteTo writes to w the HTML fragment for the data found in the Reader.
//
// The return int64 is the number of bytes written.
func WriteTo(r io.Reader, w io.Writer, opts Options) (int64, error) {
	s, err := String(r, opts)
	if err != nil {
		return 0, err
	}
	if w == nil {
		w = io.Discard
	}
	n, err := io.WriteString(w, s)
	if err != nil {
		return int64(n), fmt.Errorf("write to: %w", err)
	}
	return int64(n), nil
}

func (c *converter) convert(input []byte) (string, error) {
	body, rec, tail := splitTrailer(input)
	if c.opts.UTF8Input && (!utf8.Valid(body) || !utf8.Valid(tail)) {
		return "", ErrUTF8
	}
	c.out.Grow(len(input) + len(input)/4)
	c.out.WriteString(`<pre class="ansi">`)
	c.openTag()
	c.feed(body, false)
	c.flushPending()
	if rec != nil {
		c.emitChar('\n')
		for i, line := range rec.Summary() {
			if i > 0 {
				c.emitChar('\n')
			}
			for _, r := range line {
				c.emitChar(r)
			}
		}
		if hasContent(tail) {
			c.emitChar('\n')
			c.feed(tail, true)
			c.flushPending()
		}
	}
	c.closeTag()
	c.out.WriteString("</pre>")
	return c.out.String(), nil
}

// feed runs the state machine over one input segment. When stopAtSub is set
// a SUB byte ends the segment immediately (the tail after a SAUCE record).
func (c *converter) feed(p []byte, stopAtSub bool) {
	if c.opts.UTF8Input {
		for _, r := range string(p) {
			if stopAtSub && r == sub {
				return
			}
			c.step(r)
		}
		return
	}
	for _, b := range p {
		if stopAtSub && b == sub {
			return
		}
		c.step(rune(b))
	}
}

// hasContent reports whether a trailer tail holds anything beyond NUL and
// SUB padding.
func hasContent(p []byte) bool {
	for _, b := range p {
		if b != 0x00 && b != sub {
			return true
		}
	}
	return false
}

// step feeds one input unit, a raw CP437 byte widened to a rune or a decoded
// UTF-8 rune, through the state machine. Fallbacks from the Renegade states
// re-enter the dispatch through the outer loop instead of recursing, so a
// long run of bare pipes cannot grow the stack.
func (c *converter) step(r rune) {
	for {
		switch c.state {
		case stateNormal:
			c.normal(r)
		case stateEscape:
			switch r {
			case '[':
				c.state = stateCSI
				c.csiParams = c.csiParams[:0]
			case '7': // DECSC
				c.suppress = true
				c.lineHasEscape = true
				c.state = stateNormal
			case '8': // DECRC
				c.suppress = false
				c.lineHasEscape = true
				c.state = stateNormal
			default:
				// unsupported escape, drop it
				c.state = stateNormal
			}
		case stateCSI:
			switch {
			case r >= '0' && r <= '9' || r == ';':
				c.csiParams = append(c.csiParams, byte(r))
			case r >= 0x40 && r <= 0x7e:
				params := string(c.csiParams)
				c.state = stateNormal
				c.dispatchCSI(params, byte(r))
			default:
				// invalid byte aborts the sequence without dispatching
				c.state = stateNormal
			}
		case stateCtrlA:
			if r <= 0xff {
				c.applySynchronet(byte(r))
			}
			c.state = stateNormal
		case statePipe1:
			if r >= '0' && r <= '9' {
				c.pipeTens = byte(r - '0')
				c.state = statePipe2
				return
			}
			c.emitChar('|')
			c.state = stateNormal
			if r == '|' {
				// || is an escaped literal pipe
				return
			}
			continue // reprocess the current unit in Normal
		case statePipe2:
			c.state = stateNormal
			if r >= '0' && r <= '9' {
				if code := c.pipeTens*10 + byte(r-'0'); code <= 23 {
					c.applyRenegade(code)
				}
				// codes above 23 are discarded, both digits consumed
				return
			}
			c.emitChar('|')
			c.emitChar(rune('0' + c.pipeTens))
			continue // reprocess the current unit in Normal
		}
		return
	}
}

// normal handles one unit in the Normal state.
func (c *converter) normal(r rune) {
	switch {
	case r == esc:
		c.state = stateEscape
	case c.opts.SynchronetCtrlA && r == ctrlA:
		c.state = stateCtrlA
	case c.opts.RenegadePipe && r == '|':
		c.state = statePipe1
	case r == '\n':
		c.emitChar('\n')
	case r == '\r':
		// carriage returns are suppressed
	case r < 0x20 || (!c.opts.UTF8Input && r >= 0x7f):
		c.emitChar(decodeByte(byte(r)))
	default:
		c.emitChar(r)
	}
}

// dispatchCSI runs one complete CSI sequence. Every dispatched command marks
// the line as carrying an escape, which arms the soft-wrap rule.
func (c *converter) dispatchCSI(params string, cmd byte) {
	c.lineHasEscape = true
	switch cmd {
	case 'm':
		c.processSGR(params)
	case 'J':
		// erase display: a cleared screen becomes three line feeds
		if n, _ := strconv.Atoi(params); n == 2 || n == 3 {
			c.emitChar('\n')
			c.emitChar('\n')
			c.emitChar('\n')
		}
	case 's':
		c.suppress = true
	case 'u':
		c.suppress = false
	case 'C':
		// cursor forward becomes spaces, at least one
		n, err := strconv.Atoi(params)
		if err != nil || n < 1 {
			n = 1
		}
		for range n {
			c.emitChar(' ')
		}
	case 'H', 'f', 'A', 'B', 'D', 'K':
		// accepted, no visual effect in a static conversion
	default:
		// anything else is ignored
	}
}

// emitChar appends one literal character, HTML-escaping the five characters
// that need it. While save-position suppression is active the character is
// discarded outright, bookkeeping included.
func (c *converter) emitChar(r rune) {
	if c.suppress {
		return
	}
	if c.lineHasEscape && c.column >= wrapColumn && r != '\n' {
		c.out.WriteByte('\n')
		c.column = 0
	}
	switch r {
	case '<':
		c.out.WriteString("&lt;")
	case '>':
		c.out.WriteString("&gt;")
	case '&':
		c.out.WriteString("&amp;")
	case '"':
		c.out.WriteString("&#34;")
	case '\'':
		c.out.WriteString("&#39;")
	case '\n':
		c.out.WriteByte('\n')
		c.column = 0
		c.lineHasEscape = false
	case '\r':
		// dropped
	default:
		c.out.WriteRune(r)
		c.column++
	}
}

// flushPending resolves a dangling vendor prefix at the end of a segment:
// the prefix comes out as literal text, an unterminated escape or CSI is
// dropped without emission.
func (c *converter) flushPending() {
	switch c.state {
	case statePipe1:
		c.emitChar('|')
	case statePipe2:
		c.emitChar('|')
		c.emitChar(rune('0' + c.pipeTens))
	case stateCtrlA:
		c.emitChar(decodeByte(ctrlA))
	}
	c.state = stateNormal
	c.csiParams = c.csiParams[:0]
}
