package logdata

import "testing"

func TestDetectEncodingBOMs(t *testing.T) {
	cases := []struct {
		name   string
		sample []byte
		want   Encoding
	}{
		{"utf32be bom", []byte{0x00, 0x00, 0xFE, 0xFF, 'h', 'i'}, UTF32BE},
		{"utf32le bom", []byte{0xFF, 0xFE, 0x00, 0x00, 'h', 'i'}, UTF32LE},
		{"utf8 bom", []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, UTF8},
		{"utf16be bom", []byte{0xFE, 0xFF, 'h', 'i'}, UTF16BE},
		{"utf16le bom", []byte{0xFF, 0xFE, 'h', 'i'}, UTF16LE},
		{"plain ascii", []byte("hello world"), UTF8},
		{"invalid utf8 falls back to latin1", []byte{0xFF, 0xFE, 0xFD, 0xFC, 0x80, 0x81}[2:], Latin1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := DetectEncoding(c.sample)
			if got.Name != c.want.Name {
				t.Errorf("DetectEncoding(%v) = %s, want %s", c.sample, got.Name, c.want.Name)
			}
		})
	}
}

func TestDetectEncodingUTF16LEPrefixOfUTF32LE(t *testing.T) {
	// The UTF-16LE BOM is a byte-for-byte prefix of the UTF-32LE BOM; the
	// longer, more specific match must win.
	sample := []byte{0xFF, 0xFE, 0x00, 0x00}
	got := DetectEncoding(sample)
	if got.Name != UTF32LE.Name {
		t.Errorf("DetectEncoding(%v) = %s, want %s", sample, got.Name, UTF32LE.Name)
	}
}

func TestExpandTabsAdvancesToNextStop(t *testing.T) {
	got := ExpandTabs("a\tb", 8)
	want := "a       b" // 'a' at col 0, tab -> col 8, 'b' at col 8
	if got != want {
		t.Errorf("ExpandTabs(%q) = %q, want %q", "a\tb", got, want)
	}
	if len([]rune(got)) != 9 {
		t.Errorf("expanded length = %d, want 9", len([]rune(got)))
	}
}

func TestExpandTabsNoTabsIsNoOp(t *testing.T) {
	if got := ExpandTabs("no tabs here", 8); got != "no tabs here" {
		t.Errorf("ExpandTabs with no tabs changed the string: %q", got)
	}
}

func TestSameWidthClass(t *testing.T) {
	if !SameWidthClass(Latin1, UTF8) {
		t.Error("Latin1 and UTF8 are both single-byte-width")
	}
	if SameWidthClass(Latin1, UTF16LE) {
		t.Error("Latin1 and UTF16LE differ in width class")
	}
}

func TestEncodingDecodeFallsBackOnBadBytes(t *testing.T) {
	// An odd number of bytes cannot form valid UTF-16 code units; Decode
	// must return something rather than propagate a decode error.
	got := UTF16LE.Decode([]byte{0x41, 0x00, 0x42})
	if got == "" {
		t.Error("Decode of malformed UTF-16 should not return empty string")
	}
}
