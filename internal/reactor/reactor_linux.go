// File: internal/reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux

package reactor

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"

	"github.com/momentics/msgbox/internal/addr"
)

// linuxReactor talks to the kernel directly via golang.org/x/sys/unix,
// using raw non-blocking fds with unix.Socket/unix.Bind/unix.SockaddrInet4
// for setup and a flat poll(2) array, rather than epoll's per-socket
// registration handle, for readiness.
type linuxReactor struct{}

// New returns the Linux poll(2)-backed Reactor.
func New() Reactor { return linuxReactor{} }

func (linuxReactor) Socket(transport addr.Transport) (int, error) {
	typ := unix.SOCK_DGRAM
	if transport == addr.TCP {
		typ = unix.SOCK_STREAM
	}
	fd, err := unix.Socket(unix.AF_INET, typ, 0)
	if err != nil {
		return -1, fmt.Errorf("reactor: socket: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("reactor: setnonblock: %w", err)
	}
	return fd, nil
}

func sockaddrInet4(ip net.IP, port uint16) *unix.SockaddrInet4 {
	sa := &unix.SockaddrInet4{Port: int(port)}
	ip4 := ip.To4()
	if ip4 != nil {
		copy(sa.Addr[:], ip4)
	}
	return sa
}

func (linuxReactor) Bind(fd int, ip net.IP, port uint16) error {
	if err := unix.Bind(fd, sockaddrInet4(ip, port)); err != nil {
		return fmt.Errorf("reactor: bind: %w", err)
	}
	return nil
}

func (linuxReactor) Connect(fd int, ip net.IP, port uint16) error {
	err := unix.Connect(fd, sockaddrInet4(ip, port))
	if err != nil && err != unix.EINPROGRESS {
		return fmt.Errorf("reactor: connect: %w", err)
	}
	return nil
}

func (linuxReactor) PeekHeader(fd int, buf []byte) (int, error) {
	n, _, err := unix.Recvfrom(fd, buf, unix.MSG_PEEK)
	if err != nil {
		return 0, fmt.Errorf("reactor: recv(peek): %w", err)
	}
	return n, nil
}

func (linuxReactor) RecvFrom(fd int, buf []byte) (int, net.IP, uint16, error) {
	n, from, err := unix.Recvfrom(fd, buf, 0)
	if err != nil {
		return 0, nil, 0, fmt.Errorf("reactor: recvfrom: %w", err)
	}
	sa4, ok := from.(*unix.SockaddrInet4)
	if !ok {
		return n, nil, 0, fmt.Errorf("reactor: recvfrom: unexpected sockaddr type %T", from)
	}
	ip := make(net.IP, 4)
	copy(ip, sa4.Addr[:])
	return n, ip, uint16(sa4.Port), nil
}

func (linuxReactor) SendTo(fd int, buf []byte, ip net.IP, port uint16) (int, error) {
	if err := unix.Sendto(fd, buf, 0, sockaddrInet4(ip, port)); err != nil {
		return 0, fmt.Errorf("reactor: sendto: %w", err)
	}
	return len(buf), nil
}

func (linuxReactor) Send(fd int, buf []byte) (int, error) {
	n, err := unix.Write(fd, buf)
	if err != nil {
		return n, fmt.Errorf("reactor: send: %w", err)
	}
	return n, nil
}

func (linuxReactor) Close(fd int) error {
	return unix.Close(fd)
}

func (linuxReactor) Wait(descs []Descriptor, timeoutMs int) (int, error) {
	if len(descs) == 0 {
		if timeoutMs > 0 {
			// poll(2) with an empty set still honors the timeout; mirror
			// that rather than returning immediately, so a caller with no
			// registered sockets yet still rate-limits its loop.
			_, _ = unix.Poll(nil, timeoutMs)
		}
		return 0, nil
	}

	pfds := make([]unix.PollFd, len(descs))
	for i, d := range descs {
		fd := int32(d.FD)
		if fd < 0 {
			fd = -1 // negative fd values are ignored by poll(2)
		}
		pfds[i] = unix.PollFd{Fd: fd, Events: unix.POLLIN}
		descs[i].Ready = false
	}

	n, err := unix.Poll(pfds, timeoutMs)
	if err != nil {
		switch err {
		case unix.EINTR, unix.EAGAIN:
			return 0, nil
		default:
			return 0, fmt.Errorf("reactor: poll: %w", err)
		}
	}
	if n <= 0 {
		return 0, nil
	}

	ready := 0
	for i := range pfds {
		if pfds[i].Revents&unix.POLLIN != 0 {
			descs[i].Ready = true
			ready++
		}
	}
	return ready, nil
}
