package logdata

import "testing"

// TestQueueCoalescing asserts the literal property from the scenario table:
// "enqueue PartialIndex three times during a running FullIndex; on
// completion, exactly one further op runs, not three."
func TestQueueCoalescing(t *testing.T) {
	var q opQueue

	if started := q.Enqueue(Operation{Kind: OpFullIndex}); !started {
		t.Fatal("first enqueue on an idle queue must start immediately")
	}
	if !q.Running() {
		t.Fatal("Running() should report true while current_op is set")
	}

	for i := 0; i < 3; i++ {
		if started := q.Enqueue(Operation{Kind: OpPartialIndex}); started {
			t.Fatalf("enqueue #%d while an op is running must not start immediately", i)
		}
	}

	next, ok := q.Finished()
	if !ok {
		t.Fatal("expected exactly one promoted operation after the running one finishes")
	}
	if next.Kind != OpPartialIndex {
		t.Errorf("promoted op kind = %v, want OpPartialIndex", next.Kind)
	}

	if _, ok := q.Finished(); ok {
		t.Fatal("no further pending operations should exist after the single coalesced one")
	}
}

func TestQueueLatestPendingWins(t *testing.T) {
	var q opQueue
	q.Enqueue(Operation{Kind: OpFullIndex})
	q.Enqueue(Operation{Kind: OpPartialIndex, Path: "first"})
	q.Enqueue(Operation{Kind: OpPartialIndex, Path: "second"})

	next, ok := q.Finished()
	if !ok || next.Path != "second" {
		t.Errorf("Finished() = (%+v, %v), want the latest enqueued pending op", next, ok)
	}
}
