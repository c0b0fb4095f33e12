// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package msgbox is a small event-driven runtime for exchanging typed
// messages over UDP sockets: a framed wire protocol, a cooperative
// single-threaded dispatcher driven by poll(2), and a connection registry
// that tracks each remote peer's first appearance.
//
// A typical program opens one or more Conns with Listen or Connect, then
// calls RunLoop repeatedly; every event a tick observes is delivered to
// the Conn's callback once that tick's reads are done, never from inside
// the read loop itself.
package msgbox
