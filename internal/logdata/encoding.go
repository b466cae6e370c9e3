package logdata

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// ByteWidthClass groups encodings by bytes-per-code-unit. Two encodings in
// the same class compute the same line-offset boundaries for a given byte
// stream; switching the display encoding across classes invalidates the
// index and forces a reload.
type ByteWidthClass int

const (
	// Width1 covers single-byte and UTF-8 encodings.
	Width1 ByteWidthClass = iota
	// Width2 covers UTF-16 variants.
	Width2
	// Width4 covers UTF-32 variants.
	Width4
)

// Encoding names a decoder plus the byte-width class it belongs to and the
// raw byte pattern its line terminator takes on disk.
type Encoding struct {
	Name       string
	Width      ByteWidthClass
	codec      encoding.Encoding // nil means UTF-8 passthrough
	terminator []byte
}

// Predefined encodings. UTF8 has a nil codec because Go strings are already
// UTF-8; decoding is a straight byte-to-string conversion.
var (
	Latin1 = Encoding{
		Name: "ISO-8859-1", Width: Width1,
		codec: charmap.ISO8859_1, terminator: []byte{0x0A},
	}
	UTF8 = Encoding{
		Name: "UTF-8", Width: Width1,
		codec: nil, terminator: []byte{0x0A},
	}
	UTF16LE = Encoding{
		Name: "UTF-16LE", Width: Width2,
		codec:      unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
		terminator: []byte{0x0A, 0x00},
	}
	UTF16BE = Encoding{
		Name: "UTF-16BE", Width: Width2,
		codec:      unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
		terminator: []byte{0x00, 0x0A},
	}
	UTF32LE = Encoding{
		Name: "UTF-32LE", Width: Width4,
		codec:      utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM),
		terminator: []byte{0x0A, 0x00, 0x00, 0x00},
	}
	UTF32BE = Encoding{
		Name: "UTF-32BE", Width: Width4,
		codec:      utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
		terminator: []byte{0x00, 0x00, 0x00, 0x0A},
	}
)

// Decode converts raw bytes to a Go string using this encoding. Decode
// errors fall back to a raw byte-to-string conversion rather than
// propagating, matching the tie-break-to-Latin-1 spirit of the log-data core:
// a decode we cannot trust still has to render something.
func (e Encoding) Decode(b []byte) string {
	if e.codec == nil {
		return string(b)
	}
	out, err := e.codec.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// Terminator returns the raw byte pattern for '\n' in this encoding.
func (e Encoding) Terminator() []byte {
	return e.terminator
}

// CharWidth returns the minimal number of bytes per code unit, used as the
// scanning step when the worker searches for terminators.
func (e Encoding) CharWidth() int {
	switch e.Width {
	case Width2:
		return 2
	case Width4:
		return 4
	default:
		return 1
	}
}

// SameWidthClass reports whether a and b share a byte-width class, i.e.
// whether switching from a to b as the display encoding leaves existing
// line-offset boundaries valid.
func SameWidthClass(a, b Encoding) bool {
	return a.Width == b.Width
}

var (
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// DetectEncoding guesses the encoding of a sample of file bytes, typically
// the first block read during a full index. BOM detection runs longest
// prefix first since the UTF-16LE BOM is itself a prefix of the UTF-32LE
// BOM. When nothing distinguishing is found, valid UTF-8 wins over the
// Latin-1 tie-break.
func DetectEncoding(sample []byte) Encoding {
	switch {
	case bytes.HasPrefix(sample, bomUTF32BE):
		return UTF32BE
	case bytes.HasPrefix(sample, bomUTF32LE):
		return UTF32LE
	case bytes.HasPrefix(sample, bomUTF8):
		return UTF8
	case bytes.HasPrefix(sample, bomUTF16BE):
		return UTF16BE
	case bytes.HasPrefix(sample, bomUTF16LE):
		return UTF16LE
	case utf8.Valid(sample):
		return UTF8
	default:
		return Latin1
	}
}

// ExpandTabs expands tabs in s to the next multiple of tabStop: a tab at
// column c advances to the next multiple of tabStop.
func ExpandTabs(s string, tabStop int) string {
	if tabStop <= 0 {
		tabStop = TabStop
	}
	if !bytes.ContainsRune([]byte(s), '\t') {
		return s
	}
	var b bytes.Buffer
	col := 0
	for _, r := range s {
		if r == '\t' {
			spaces := tabStop - (col % tabStop)
			for i := 0; i < spaces; i++ {
				b.WriteByte(' ')
			}
			col += spaces
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
