package msgbox

import "testing"

func TestDeferredQueueFIFO(t *testing.T) {
	dq := newDeferredQueue()
	c := &Conn{}
	dq.push(pendingEvent{conn: c, event: EventMessage, data: NewData("a")})
	dq.push(pendingEvent{conn: c, event: EventMessage, data: NewData("b")})
	dq.push(pendingEvent{conn: c, event: EventMessage, data: NewData("c")})

	got := dq.drain()
	if len(got) != 3 {
		t.Fatalf("drain returned %d entries, want 3", len(got))
	}
	for i, want := range []string{"a", "b", "c"} {
		if got[i].data.String() != want {
			t.Fatalf("entry %d = %q, want %q", i, got[i].data.String(), want)
		}
	}
	if dq.len() != 0 {
		t.Fatalf("queue not empty after drain")
	}
}

func TestDeferredQueueReentrancyLandsInNewQueue(t *testing.T) {
	// Mirrors the swap-before-drain pattern RunLoop uses: draining the old
	// queue while pushing into a newly swapped-in one must never let the
	// new push appear in the old queue's drained slice.
	oldQ := newDeferredQueue()
	c := &Conn{}
	oldQ.push(pendingEvent{conn: c, event: EventMessage, data: NewData("first")})

	newQ := newDeferredQueue()
	drained := oldQ.drain()
	newQ.push(pendingEvent{conn: c, event: EventMessage, data: NewData("second")})

	if len(drained) != 1 || drained[0].data.String() != "first" {
		t.Fatalf("drained = %+v, want exactly [\"first\"]", drained)
	}
	if newQ.len() != 1 {
		t.Fatalf("newQ.len() = %d, want 1", newQ.len())
	}
}
