package msgbox

import (
	"testing"
)

func TestListenSuccessEmitsListening(t *testing.T) {
	fr := newFakeReactor()
	b := newTestBox(fr)

	var got []Event
	conn := b.Listen("udp://*:9999", "ctx", func(c *Conn, e Event, d Data) {
		got = append(got, e)
	})
	if conn == nil {
		t.Fatalf("Listen returned nil Conn")
	}
	if b.queue.len() != 1 {
		t.Fatalf("queue.len() = %d, want 1 (Listening not yet drained)", b.queue.len())
	}
	if err := b.RunLoop(0); err != nil {
		t.Fatalf("RunLoop: %v", err)
	}
	if len(got) != 1 || got[0] != EventListening {
		t.Fatalf("events = %v, want [EventListening]", got)
	}
	if conn.Context() != "ctx" {
		t.Fatalf("Context() = %v, want %q", conn.Context(), "ctx")
	}
}

func TestListenAddressErrorDiscardsRegistration(t *testing.T) {
	fr := newFakeReactor()
	b := newTestBox(fr)

	var got []Event
	conn := b.Listen("bogus://nope", nil, func(c *Conn, e Event, d Data) {
		got = append(got, e)
	})
	if conn == nil {
		t.Fatalf("Listen returned nil Conn")
	}
	if b.registry.len() != 0 {
		t.Fatalf("registry.len() = %d, want 0 after failed parse", b.registry.len())
	}
	if len(fr.closedFDs) != 1 {
		t.Fatalf("closedFDs = %v, want exactly one close", fr.closedFDs)
	}
	if err := b.RunLoop(0); err != nil {
		t.Fatalf("RunLoop: %v", err)
	}
	if len(got) != 1 || got[0] != EventError {
		t.Fatalf("events = %v, want [EventError]", got)
	}
}

func TestListenRejectsTCP(t *testing.T) {
	fr := newFakeReactor()
	b := newTestBox(fr)

	var got []Event
	b.Listen("tcp://*:9999", nil, func(c *Conn, e Event, d Data) {
		got = append(got, e)
	})
	if b.registry.len() != 0 {
		t.Fatalf("registry.len() = %d, want 0 for rejected tcp address", b.registry.len())
	}
	_ = b.RunLoop(0)
	if len(got) != 1 || got[0] != EventError {
		t.Fatalf("events = %v, want [EventError]", got)
	}
}

func TestConnectFirstSeenEmitsConnectionReady(t *testing.T) {
	fr := newFakeReactor()
	b := newTestBox(fr)

	var got []Event
	conn := b.Connect("udp://127.0.0.1:4040", nil, func(c *Conn, e Event, d Data) {
		got = append(got, e)
	})
	if conn.IsListener() {
		t.Fatalf("Connect produced a listener Conn")
	}
	_ = b.RunLoop(0)
	if len(got) != 1 || got[0] != EventConnectionReady {
		t.Fatalf("events = %v, want [EventConnectionReady]", got)
	}
}

func TestSendOnClosedConnFails(t *testing.T) {
	fr := newFakeReactor()
	b := newTestBox(fr)

	conn := b.Connect("udp://127.0.0.1:4040", nil, func(*Conn, Event, Data) {})
	_ = b.RunLoop(0)

	if err := b.Disconnect(conn); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if !conn.Closed() {
		t.Fatalf("conn.Closed() = false after Disconnect")
	}
	if err := b.Send(conn, NewData("x")); err != ErrConnectionClosed {
		t.Fatalf("Send after Disconnect = %v, want ErrConnectionClosed", err)
	}
}

func TestDisconnectSendsCloseFrameAndClosesFD(t *testing.T) {
	fr := newFakeReactor()
	b := newTestBox(fr)

	conn := b.Connect("udp://127.0.0.1:4040", nil, func(*Conn, Event, Data) {})
	_ = b.RunLoop(0)

	if err := b.Disconnect(conn); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if len(fr.sent) != 1 {
		t.Fatalf("sent = %v, want exactly one close frame", fr.sent)
	}
	if len(fr.closedFDs) == 0 {
		t.Fatalf("Disconnect did not close the underlying fd")
	}
	if b.registry.len() != 0 {
		t.Fatalf("registry.len() = %d, want 0 after Disconnect", b.registry.len())
	}
}

func TestUnlistenRemovesWithoutSending(t *testing.T) {
	fr := newFakeReactor()
	b := newTestBox(fr)

	conn := b.Listen("udp://*:9999", nil, func(*Conn, Event, Data) {})
	_ = b.RunLoop(0)

	b.Unlisten(conn)
	if len(fr.sent) != 0 {
		t.Fatalf("Unlisten sent a frame: %v", fr.sent)
	}
	if !conn.Closed() {
		t.Fatalf("conn.Closed() = false after Unlisten")
	}
	if b.registry.len() != 0 {
		t.Fatalf("registry.len() = %d, want 0 after Unlisten", b.registry.len())
	}
}
