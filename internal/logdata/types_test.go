package logdata

import "testing"

func TestLineNumberArithmetic(t *testing.T) {
	var n LineNumber = 5
	if got := n.Add(3); got != 8 {
		t.Errorf("Add(3) = %d, want 8", got)
	}
	if got := LineNumber(8).Sub(n); got != 3 {
		t.Errorf("Sub = %d, want 3", got)
	}
	if got := n.Sub(LineNumber(8)); got != 0 {
		t.Errorf("Sub with n < m should clamp to 0, got %d", got)
	}
	if got := n.AsIndex(); got != 5 {
		t.Errorf("AsIndex() = %d, want 5", got)
	}
}

func TestStatusString(t *testing.T) {
	cases := map[Status]string{
		StatusSuccessful:  "Successful",
		StatusInterrupted: "Interrupted",
		StatusNoMemory:    "NoMemory",
		Status(99):        "Unknown",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func TestFileChangeStateString(t *testing.T) {
	cases := map[FileChangeState]string{
		Unchanged:            "Unchanged",
		DataAdded:            "DataAdded",
		Truncated:            "Truncated",
		FileChangeState(99):  "Unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("FileChangeState(%d).String() = %q, want %q", state, got, want)
		}
	}
}
