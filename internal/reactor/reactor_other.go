//go:build !linux

package reactor

import (
	"errors"
	"net"

	"github.com/momentics/msgbox/internal/addr"
)

// ErrNotSupported is returned by every stubReactor method on platforms
// without a poll(2)-backed implementation.
var ErrNotSupported = errors.New("reactor: this platform is not supported")

type stubReactor struct{}

// New returns a Reactor stub on non-Linux platforms.
func New() Reactor { return stubReactor{} }

func (stubReactor) Socket(addr.Transport) (int, error)                  { return -1, ErrNotSupported }
func (stubReactor) Bind(int, net.IP, uint16) error                      { return ErrNotSupported }
func (stubReactor) Connect(int, net.IP, uint16) error                   { return ErrNotSupported }
func (stubReactor) PeekHeader(int, []byte) (int, error)                 { return 0, ErrNotSupported }
func (stubReactor) RecvFrom(int, []byte) (int, net.IP, uint16, error)   { return 0, nil, 0, ErrNotSupported }
func (stubReactor) SendTo(int, []byte, net.IP, uint16) (int, error)     { return 0, ErrNotSupported }
func (stubReactor) Send(int, []byte) (int, error)                       { return 0, ErrNotSupported }
func (stubReactor) Close(int) error                                     { return ErrNotSupported }
func (stubReactor) Wait(descs []Descriptor, timeoutMs int) (int, error) { return 0, ErrNotSupported }
