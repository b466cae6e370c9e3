package logdata

import "testing"

func TestLineScannerEvenlyTerminatedFile(t *testing.T) {
	sc := newLineScanner(UTF8, TabStop, 0)
	ends, _ := sc.Feed([]byte("alpha\nbeta\ngamma\n"))
	if len(ends) != 3 {
		t.Fatalf("Feed produced %d line ends, want 3", len(ends))
	}
	if ends[0] != 6 || ends[1] != 11 || ends[2] != 17 {
		t.Errorf("line ends = %v, want [6 11 17]", ends)
	}
	if end, _ := sc.Finish(); end != nil {
		t.Errorf("Finish() on an exactly-terminated file should return nil, got %v", *end)
	}
}

func TestLineScannerTrailingLineWithoutTerminator(t *testing.T) {
	sc := newLineScanner(UTF8, TabStop, 0)
	ends, _ := sc.Feed([]byte("one\ntwo"))
	if len(ends) != 1 || ends[0] != 4 {
		t.Fatalf("Feed ends = %v, want [4]", ends)
	}
	end, length := sc.Finish()
	if end == nil {
		t.Fatal("Finish() should report the trailing partial line")
	}
	if *end != 7 {
		t.Errorf("trailing line end = %d, want 7", *end)
	}
	if length != 3 {
		t.Errorf("trailing line length = %d, want 3", length)
	}
}

func TestLineScannerEmptyFile(t *testing.T) {
	sc := newLineScanner(UTF8, TabStop, 0)
	if end, _ := sc.Finish(); end != nil {
		t.Errorf("Finish() on an empty file should return nil, got %v", *end)
	}
}

func TestLineScannerTracksMaxLengthWithTabExpansion(t *testing.T) {
	sc := newLineScanner(UTF8, TabStop, 0)
	_, maxLen := sc.Feed([]byte("a\tb\n"))
	if maxLen != 9 {
		t.Errorf("max length = %d, want 9 (tab-expanded)", maxLen)
	}
}

func TestLineScannerAcrossFeedBoundary(t *testing.T) {
	sc := newLineScanner(UTF8, TabStop, 0)
	ends1, _ := sc.Feed([]byte("abc"))
	if len(ends1) != 0 {
		t.Fatalf("partial feed without a terminator should not complete a line, got %v", ends1)
	}
	ends2, _ := sc.Feed([]byte("def\n"))
	if len(ends2) != 1 || ends2[0] != 7 {
		t.Fatalf("Feed across a split line = %v, want [7]", ends2)
	}
}

func TestLineScannerUTF16LEAlignedTerminator(t *testing.T) {
	// "a\n" in UTF-16LE: 0x61 0x00 0x0A 0x00
	sc := newLineScanner(UTF16LE, TabStop, 0)
	ends, _ := sc.Feed([]byte{0x61, 0x00, 0x0A, 0x00})
	if len(ends) != 1 || ends[0] != 4 {
		t.Fatalf("UTF-16LE line ends = %v, want [4]", ends)
	}
}
