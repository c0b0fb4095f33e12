// File: internal/reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package reactor wraps the non-blocking socket syscalls and the poll(2)
// readiness wait that back msgbox's dispatcher. The registry's descriptor
// array is an index-aligned parallel array, poll(2)'s own calling
// convention rather than epoll's registration model, so this package wraps
// golang.org/x/sys/unix.Poll directly instead of maintaining a separate
// registration handle per socket.
package reactor

import (
	"net"

	"github.com/momentics/msgbox/internal/addr"
)

// MaxDatagramPayload is the largest payload a single datagram frame may
// carry: the 32768-byte receive buffer minus the 8-byte header.
const MaxDatagramPayload = 32768 - 8

// RecvBufferSize is the size of the scratch buffer the dispatcher reads a
// datagram into.
const RecvBufferSize = 32768

// Descriptor pairs a socket fd with the readiness flags poll(2) should
// report for it. Reactor.Wait fills in Ready after the call.
type Descriptor struct {
	FD    int
	Ready bool
}

// Reactor is the platform-specific transport backend: socket lifecycle,
// non-blocking send/receive, and the readiness wait. Each Box holds its own
// Reactor; it does not hold per-connection state, and each Wait call builds
// the poll(2) array it needs from the descriptors it is given.
type Reactor interface {
	// Socket opens a new non-blocking socket for the given transport.
	Socket(transport addr.Transport) (fd int, err error)

	// Bind binds fd to ip:port (ip may be net.IPv4zero for INADDR_ANY).
	Bind(fd int, ip net.IP, port uint16) error

	// Connect connects fd to ip:port.
	Connect(fd int, ip net.IP, port uint16) error

	// PeekHeader reads up to len(buf) bytes from fd without consuming them
	// (MSG_PEEK), for the header-gate classification step that decides how
	// much of the datagram still needs consuming.
	PeekHeader(fd int, buf []byte) (int, error)

	// RecvFrom reads one full datagram from fd, returning the sender.
	RecvFrom(fd int, buf []byte) (n int, srcIP net.IP, srcPort uint16, err error)

	// SendTo writes buf as a single datagram to ip:port via fd.
	SendTo(fd int, buf []byte, ip net.IP, port uint16) (int, error)

	// Send writes buf to fd's already-connected peer.
	Send(fd int, buf []byte) (int, error)

	// Close releases fd.
	Close(fd int) error

	// Wait blocks up to timeoutMs (see poll(2) semantics for negative/zero
	// values) and marks each ready descriptor's Ready field. It returns the
	// number of ready descriptors. A nil error with n==0 on timeout is not
	// distinguished from "nothing ready"; recoverable conditions (EINTR,
	// EAGAIN) are swallowed and reported as n==0, err==nil, so only a
	// non-recoverable failure reaches the caller as a non-nil error.
	Wait(descs []Descriptor, timeoutMs int) (n int, err error)
}
