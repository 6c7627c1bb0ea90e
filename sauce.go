package ansitag

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// SauceRecord is the decoded metadata of a SAUCE trailer, the 128-byte
// record many scene artifacts append after a SUB byte, plus any comment
// lines from a preceding COMNT block.
type SauceRecord struct {
	Title    string
	Author   string
	Group    string
	Date     string // as stored, CCYYMMDD when well formed
	Width    uint16
	Height   uint16
	Font     string
	Comments []string
}

const (
	sauceLen    = 128
	commentLine = 64
	// commentWindow bounds the backward search for a COMNT block: at most
	// 256 comment lines plus the five-byte marker can precede the record.
	commentWindow = commentLine*256 + 5
)

var (
	sauceID = []byte("SAUCE00")
	comntID = []byte("COMNT")
)

// ParseSauce decodes the final SAUCE trailer in p, including any preceding
// COMNT block. It returns nil when no record is present.
func ParseSauce(p []byte) *SauceRecord {
	_, rec, _ := splitTrailer(p)
	return rec
}

// splitTrailer scans the raw input for a SAUCE trailer and splits it into
// the displayable body, the decoded record, and the leftover bytes after the
// record. Without a trailer the body is the whole input. The body excludes
// the COMNT block and the SUB byte that conventionally precedes the trailer.
func splitTrailer(p []byte) (body []byte, rec *SauceRecord, tail []byte) {
	idx := bytes.LastIndex(p, sauceID)
	if idx < 0 || len(p)-idx < sauceLen {
		return p, nil, nil
	}
	rec = parseRecord(p[idx : idx+sauceLen])
	bound := idx
	winStart := max(idx-commentWindow, 0)
	if ci := bytes.LastIndex(p[winStart:idx], comntID); ci >= 0 {
		ci += winStart
		rec.Comments = splitComments(p[ci+len(comntID) : idx])
		bound = ci
	}
	if s := bytes.IndexByte(p[:bound], sub); s >= 0 {
		bound = s
	}
	return p[:bound], rec, p[idx+sauceLen:]
}

func parseRecord(rec []byte) *SauceRecord {
	return &SauceRecord{
		Title:  sauceField(rec[7:42]),
		Author: sauceField(rec[42:62]),
		Group:  sauceField(rec[62:82]),
		Date:   sauceField(rec[82:90]),
		Width:  binary.LittleEndian.Uint16(rec[96:98]),
		Height: binary.LittleEndian.Uint16(rec[98:100]),
		Font:   sauceField(rec[106:128]),
	}
}

// sauceField decodes a fixed-width CP437 text field, dropping trailing NUL
// and space padding.
func sauceField(p []byte) string {
	return decodeBytes(bytes.TrimRight(p, "\x00 "))
}

// splitComments cuts a COMNT body into its 64-byte lines. Lines that are all
// padding are dropped.
func splitComments(p []byte) []string {
	var lines []string
	for len(p) > 0 {
		n := min(commentLine, len(p))
		if line := sauceField(p[:n]); line != "" {
			lines = append(lines, line)
		}
		p = p[n:]
	}
	return lines
}

// Summary renders the record as "Key: Value" lines in display order. Empty
// fields are omitted, the size line appears when either dimension is set,
// and the date is reshaped to CCYY-MM-DD when it holds exactly eight
// digits.
func (r *SauceRecord) Summary() []string {
	var lines []string
	add := func(key, value string) {
		if value != "" {
			lines = append(lines, key+": "+value)
		}
	}
	add("Title", r.Title)
	add("Author", r.Author)
	add("Group", r.Group)
	add("Date", formatSauceDate(r.Date))
	if r.Width != 0 || r.Height != 0 {
		lines = append(lines, fmt.Sprintf("Size: %dx%d", r.Width, r.Height))
	}
	add("Font", r.Font)
	for _, comment := range r.Comments {
		add("Comment", comment)
	}
	return lines
}

func formatSauceDate(date string) string {
	if len(date) != 8 {
		return date
	}
	for _, r := range date {
		if r < '0' || r > '9' {
			return date
		}
	}
	return date[:4] + "-" + date[4:6] + "-" + date[6:8]
}
