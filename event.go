// File: event.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Event enumeration and the Data owned-buffer ABI.

package msgbox

import "github.com/momentics/msgbox/internal/wire"

// Event identifies which callback-worthy thing happened to a Conn.
type Event int

const (
	// EventListening fires once a listener's socket is bound.
	EventListening Event = iota
	// EventConnectionReady fires the first time a remote endpoint is
	// observed on a Conn.
	EventConnectionReady
	// EventConnectionClosed fires when a close frame is received.
	EventConnectionClosed
	// EventConnectionLost names a Conn lost to a fatal, non-protocol socket
	// error outside of an explicit close frame. No code path in this
	// package emits it: a receive error is delivered as EventError and the
	// Conn stays registered.
	EventConnectionLost
	// EventMessage fires for an inbound one-way frame.
	EventMessage
	// EventRequest fires for an inbound request frame.
	EventRequest
	// EventReply fires for an inbound reply frame.
	EventReply
	// EventError fires for address, OS, or protocol errors attributable to
	// a Conn; Data carries a human-readable message. A failed readiness
	// wait is not delivered as an event; RunLoop returns it instead.
	EventError
)

func (e Event) String() string {
	switch e {
	case EventListening:
		return "listening"
	case EventConnectionReady:
		return "connection_ready"
	case EventConnectionClosed:
		return "connection_closed"
	case EventConnectionLost:
		return "connection_lost"
	case EventMessage:
		return "message"
	case EventRequest:
		return "request"
	case EventReply:
		return "reply"
	case EventError:
		return "error"
	default:
		return "event(?)"
	}
}

// eventForMessageType maps a wire message type to the Event delivered for
// its inbound frame. Heartbeat and Close are handled separately by the
// dispatcher and never reach this mapping.
func eventForMessageType(t wire.MessageType) Event {
	switch t {
	case wire.Request:
		return EventRequest
	case wire.Reply:
		return EventReply
	default:
		return EventMessage
	}
}

// Callback is invoked by RunLoop, in FIFO enqueue order, for every pending
// event queued since the previous tick's drain began (including events
// read during the current tick). Implementations must not retain data
// past the call unless they copy its bytes.
type Callback func(conn *Conn, event Event, data Data)

// Data is the owned-buffer ABI: a payload view whose 8 immediately-preceding
// bytes are reserved for the frame header and remain writable by the send
// path without reallocation.
type Data struct {
	// full is the entire allocation: HeaderSize bytes of header room
	// followed by the visible payload. A nil full is the zero-length,
	// no-allocation sentinel.
	full []byte
}

// NoData is the sentinel Data carrying no allocation and no payload.
var NoData = Data{}

// NewDataSpace allocates room for n payload bytes plus the header prefix,
// returning a Data whose Bytes() view is exactly n bytes long.
func NewDataSpace(n int) Data {
	return Data{full: make([]byte, n+wire.HeaderSize)}
}

// NewData copies s into a freshly allocated Data.
func NewData(s string) Data {
	d := NewDataSpace(len(s))
	copy(d.Bytes(), s)
	return d
}

// dataFromFull wraps an existing header-prefixed allocation (typically a
// receive buffer slice) without copying.
func dataFromFull(full []byte) Data {
	return Data{full: full}
}

// Bytes returns the visible payload, excluding the reserved header prefix.
func (d Data) Bytes() []byte {
	if len(d.full) < wire.HeaderSize {
		return nil
	}
	return d.full[wire.HeaderSize:]
}

// Len is the payload length, excluding the header.
func (d Data) Len() int {
	return len(d.Bytes())
}

// String renders the payload as a string; used for EventError payloads and
// anywhere else a callback wants the bytes as text.
func (d Data) String() string {
	return string(d.Bytes())
}

// headerPrefix returns the 8 bytes immediately before the payload, the
// region the send path writes the frame header into in place.
func (d Data) headerPrefix() []byte {
	if len(d.full) < wire.HeaderSize {
		return nil
	}
	return d.full[:wire.HeaderSize]
}

// DeleteData is a documented no-op: Go's garbage collector reclaims the
// backing array once the last reference (including any queued pendingEvent)
// drops, so callers that want explicit symmetry with NewData can call this
// without it doing anything unsafe.
func DeleteData(Data) {}
