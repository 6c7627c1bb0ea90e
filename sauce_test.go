package ansitag_test

import (
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/bengarrett/ansitag"
	"github.com/nalgeon/be"
)

func ExampleSauceRecord_Summary() {
	rec := ansitag.SauceRecord{
		Title:  "Blocktronics",
		Author: "xero",
		Date:   "20240115",
		Width:  80,
		Height: 25,
	}
	for _, line := range rec.Summary() {
		fmt.Println(line)
	}
	// Output: Title: Blocktronics
	// Author: xero
	// Date: 2024-01-15
	// Size: 80x25
}

// record builds a well-formed 128-byte SAUCE record for test inputs.
func record(title, author, group, date, font string, width, height uint16) []byte {
	rec := make([]byte, 128)
	copy(rec, "SAUCE00")
	copy(rec[7:42], title)
	copy(rec[42:62], author)
	copy(rec[62:82], group)
	copy(rec[82:90], date)
	binary.LittleEndian.PutUint16(rec[96:98], width)
	binary.LittleEndian.PutUint16(rec[98:100], height)
	copy(rec[106:128], font)
	return rec
}

func TestParseSauce(t *testing.T) {
	t.Parallel()
	input := append([]byte("Art\x1a"),
		record("Piece", "xero", "impure", "20240115", "IBM VGA", 80, 25)...)
	rec := ansitag.ParseSauce(input)
	be.True(t, rec != nil)
	be.Equal(t, rec.Title, "Piece")
	be.Equal(t, rec.Author, "xero")
	be.Equal(t, rec.Group, "impure")
	be.Equal(t, rec.Date, "20240115")
	be.Equal(t, rec.Width, uint16(80))
	be.Equal(t, rec.Height, uint16(25))
	be.Equal(t, rec.Font, "IBM VGA")
	be.Equal(t, len(rec.Comments), 0)
}

func TestParseSauceAbsent(t *testing.T) {
	t.Parallel()
	be.True(t, ansitag.ParseSauce([]byte("plain text")) == nil)
	// a marker without the full 128 bytes behind it is not a record
	be.True(t, ansitag.ParseSauce([]byte("SAUCE00 truncated")) == nil)
}

func TestSauceSummaryOrder(t *testing.T) {
	t.Parallel()
	input := append([]byte("Content\x1a"),
		record("Test Title", "", "", "20240115", "", 80, 25)...)
	s := ansitag.Convert(input)
	content := strings.Index(s, "Content")
	title := strings.Index(s, "Title: Test Title")
	date := strings.Index(s, "Date: 2024-01-15")
	size := strings.Index(s, "Size: 80x25")
	be.True(t, content >= 0)
	be.True(t, content < title)
	be.True(t, title < date)
	be.True(t, date < size)
	// the record bytes themselves never leak into the output
	be.True(t, !strings.Contains(s, "SAUCE00"))
}

func TestSauceComments(t *testing.T) {
	t.Parallel()
	line := make([]byte, 64)
	copy(line, "greets to the scene")
	for i := len("greets to the scene"); i < 64; i++ {
		line[i] = ' '
	}
	input := []byte("Art\x1aCOMNT")
	input = append(input, line...)
	input = append(input, record("Piece", "", "", "", "", 0, 0)...)

	rec := ansitag.ParseSauce(input)
	be.True(t, rec != nil)
	be.Equal(t, rec.Comments, []string{"greets to the scene"})

	s := ansitag.Convert(input)
	be.True(t, strings.Contains(s, "Comment: greets to the scene"))
	be.True(t, !strings.Contains(s, "COMNT"))
}

func TestSauceTail(t *testing.T) {
	t.Parallel()
	input := append([]byte("Art\x1a"), record("Piece", "", "", "", "", 0, 0)...)
	input = append(input, []byte("\nafter")...)
	s := ansitag.Convert(input)
	title := strings.Index(s, "Title: Piece")
	after := strings.Index(s, "after")
	be.True(t, title >= 0)
	be.True(t, title < after)
	// NUL and SUB padding alone does not count as a tail
	input = append([]byte("Art\x1a"), record("Piece", "", "", "", "", 0, 0)...)
	input = append(input, 0x00, 0x1a, 0x00)
	s = ansitag.Convert(input)
	be.True(t, strings.HasSuffix(s, "Title: Piece</ans-07></pre>"))
}

func TestSauceSummaryShape(t *testing.T) {
	t.Parallel()
	// empty records produce no lines at all
	empty := ansitag.SauceRecord{}
	be.Equal(t, len(empty.Summary()), 0)
	// a malformed date is passed through untouched
	odd := ansitag.SauceRecord{Date: "sometime"}
	be.Equal(t, odd.Summary(), []string{"Date: sometime"})
	// either dimension alone is enough for a size line
	wide := ansitag.SauceRecord{Width: 132}
	be.Equal(t, wide.Summary(), []string{"Size: 132x0"})
}
