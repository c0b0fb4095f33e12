// Package msgbox
// Author: momentics <momentics@gmail.com>
//
// Conn is the socket-backed endpoint handle passed to every callback.

package msgbox

import (
	"net"

	"github.com/momentics/msgbox/internal/addr"
)

// Conn is a single socket-backed endpoint: either a listener (bound,
// waiting for peers to appear) or an initiator (connected to one specific
// peer). Its fields are only ever touched from inside a RunLoop tick or
// from the synchronous Listen/Connect/Send/Get/Disconnect/Unlisten calls
// that precede or follow one; msgbox assumes a single-threaded caller.
type Conn struct {
	box *Box

	fd        int
	transport addr.Transport
	listener  bool

	remoteIP   net.IP
	remotePort uint16
	bindAny    bool

	lastReplyID uint16
	closed      bool

	context  any
	callback Callback
}

// Transport reports whether this Conn was opened over UDP or TCP (TCP
// addresses are rejected at open time; this is always UDP today but the
// field exists so a future stream transport has somewhere to live).
func (c *Conn) Transport() addr.Transport { return c.transport }

// IsListener reports whether this Conn was created via Listen (true) or
// Connect (false).
func (c *Conn) IsListener() bool { return c.listener }

// RemoteAddr returns the most recently observed peer address: the address
// Connect dialed, or for a listener, the source of the most recently
// received datagram.
func (c *Conn) RemoteAddr() net.Addr {
	return &net.UDPAddr{IP: c.remoteIP, Port: int(c.remotePort)}
}

// Context returns the opaque value passed to Listen or Connect.
func (c *Conn) Context() any { return c.context }

// SetContext replaces the opaque value returned by Context.
func (c *Conn) SetContext(ctx any) { c.context = ctx }

// Closed reports whether this Conn has been closed: a close frame was
// received or sent (Disconnect), or it was torn down by Unlisten or
// Shutdown. Once true, Send, Get and Disconnect return ErrConnectionClosed.
func (c *Conn) Closed() bool { return c.closed }

func (c *Conn) peerKey() peerKey {
	return peerKeyFor(c.remoteIP, c.remotePort, c.transport)
}
