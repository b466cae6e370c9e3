package logdata

import "testing"

func TestIndexingDataCommitFull(t *testing.T) {
	d := NewIndexingData()
	ends := []BytePos{6, 11, 17}
	d.CommitFull(ends, 17, 5, UTF8, nil)

	if d.NbLines() != 3 {
		t.Errorf("NbLines() = %d, want 3", d.NbLines())
	}
	if d.Size() != 17 {
		t.Errorf("Size() = %d, want 17", d.Size())
	}
	if d.MaxLength() != 5 {
		t.Errorf("MaxLength() = %d, want 5", d.MaxLength())
	}
	if d.PosForLine(0) != 6 || d.PosForLine(2) != 17 {
		t.Errorf("PosForLine mismatch: line0=%d line2=%d", d.PosForLine(0), d.PosForLine(2))
	}
	if d.PosForLine(5) != 0 {
		t.Errorf("out-of-range PosForLine should return 0, got %d", d.PosForLine(5))
	}
	if d.ActiveIndexEncoding().Name != UTF8.Name {
		t.Errorf("ActiveIndexEncoding() = %s, want %s", d.ActiveIndexEncoding().Name, UTF8.Name)
	}
}

func TestIndexingDataCommitPartialExtendsPrefix(t *testing.T) {
	d := NewIndexingData()
	d.CommitFull([]BytePos{6}, 6, 5, Latin1, nil)

	d.CommitPartial([]BytePos{12}, 12, 5)

	if d.NbLines() != 2 {
		t.Fatalf("NbLines() = %d, want 2", d.NbLines())
	}
	if d.PosForLine(0) != 6 {
		t.Errorf("prefix line_ends must be unchanged after partial commit, got %d", d.PosForLine(0))
	}
	if d.PosForLine(1) != 12 {
		t.Errorf("PosForLine(1) = %d, want 12", d.PosForLine(1))
	}
}

func TestIndexingDataResetClearsState(t *testing.T) {
	d := NewIndexingData()
	d.CommitFull([]BytePos{6, 11}, 11, 5, UTF8, nil)
	d.Reset()

	if d.NbLines() != 0 || d.Size() != 0 || d.MaxLength() != 0 {
		t.Errorf("Reset did not clear state: nb=%d size=%d max=%d", d.NbLines(), d.Size(), d.MaxLength())
	}
}

func TestIndexingDataForcedEncodingWinsOverGuessed(t *testing.T) {
	d := NewIndexingData()
	forced := UTF16LE
	d.CommitFull(nil, 0, 0, Latin1, &forced)

	if d.ActiveIndexEncoding().Name != UTF16LE.Name {
		t.Errorf("ActiveIndexEncoding() = %s, want forced %s", d.ActiveIndexEncoding().Name, UTF16LE.Name)
	}
	if d.GuessedEncoding().Name != Latin1.Name {
		t.Errorf("GuessedEncoding() = %s, want %s", d.GuessedEncoding().Name, Latin1.Name)
	}
}

func TestIndexingDataSnapshotConsistentAcrossLookups(t *testing.T) {
	d := NewIndexingData()
	d.CommitFull([]BytePos{6, 11, 17}, 17, 5, UTF8, nil)

	nb, posForLine := d.Snapshot()
	if nb != 3 {
		t.Fatalf("Snapshot nb_lines = %d, want 3", nb)
	}
	for i, want := range []BytePos{6, 11, 17} {
		if got := posForLine(LineNumber(i)); got != want {
			t.Errorf("posForLine(%d) = %d, want %d", i, got, want)
		}
	}
	if got := posForLine(LineNumber(99)); got != 0 {
		t.Errorf("out-of-range posForLine should return 0, got %d", got)
	}
}
