package msgbox

import (
	"errors"
	"net"

	"github.com/momentics/msgbox/internal/addr"
	"github.com/momentics/msgbox/internal/reactor"
)

// sentDatagram records one SendTo/Send call observed by fakeReactor.
type sentDatagram struct {
	fd   int
	data []byte
	ip   net.IP
	port uint16
}

// inboundFrame is one datagram queued to be delivered to a given fd the
// next time the dispatcher reads it.
type inboundFrame struct {
	data []byte
	ip   net.IP
	port uint16
}

// fakeReactor is an in-memory stand-in for reactor.Reactor, letting
// dispatcher and Box tests drive RunLoop without real sockets.
type fakeReactor struct {
	nextFD int

	socketErr  error
	bindErr    error
	connectErr error
	sendErr    error
	waitErr    error

	closedFDs []int
	sent      []sentDatagram
	inbox     map[int][]inboundFrame
}

func newFakeReactor() *fakeReactor {
	return &fakeReactor{nextFD: 1, inbox: make(map[int][]inboundFrame)}
}

func (f *fakeReactor) Socket(addr.Transport) (int, error) {
	if f.socketErr != nil {
		return -1, f.socketErr
	}
	fd := f.nextFD
	f.nextFD++
	return fd, nil
}

func (f *fakeReactor) Bind(fd int, ip net.IP, port uint16) error    { return f.bindErr }
func (f *fakeReactor) Connect(fd int, ip net.IP, port uint16) error { return f.connectErr }

func (f *fakeReactor) PeekHeader(fd int, buf []byte) (int, error) {
	q := f.inbox[fd]
	if len(q) == 0 {
		return 0, errors.New("fakeReactor: nothing queued")
	}
	return copy(buf, q[0].data), nil
}

func (f *fakeReactor) RecvFrom(fd int, buf []byte) (int, net.IP, uint16, error) {
	q := f.inbox[fd]
	if len(q) == 0 {
		return 0, nil, 0, errors.New("fakeReactor: nothing queued")
	}
	frame := q[0]
	f.inbox[fd] = q[1:]
	n := copy(buf, frame.data)
	return n, frame.ip, frame.port, nil
}

func (f *fakeReactor) SendTo(fd int, buf []byte, ip net.IP, port uint16) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	cp := append([]byte(nil), buf...)
	f.sent = append(f.sent, sentDatagram{fd: fd, data: cp, ip: ip, port: port})
	return len(buf), nil
}

func (f *fakeReactor) Send(fd int, buf []byte) (int, error) {
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	cp := append([]byte(nil), buf...)
	f.sent = append(f.sent, sentDatagram{fd: fd, data: cp})
	return len(buf), nil
}

func (f *fakeReactor) Close(fd int) error {
	f.closedFDs = append(f.closedFDs, fd)
	return nil
}

func (f *fakeReactor) Wait(descs []reactor.Descriptor, timeoutMs int) (int, error) {
	if f.waitErr != nil {
		return 0, f.waitErr
	}
	n := 0
	for i := range descs {
		ready := len(f.inbox[descs[i].FD]) > 0
		descs[i].Ready = ready
		if ready {
			n++
		}
	}
	return n, nil
}

// queue appends a datagram to be delivered to fd on the next RunLoop tick.
func (f *fakeReactor) queue(fd int, data []byte, srcIP net.IP, srcPort uint16) {
	f.inbox[fd] = append(f.inbox[fd], inboundFrame{data: data, ip: srcIP, port: srcPort})
}

func newTestBox(fr *fakeReactor) *Box {
	b := NewBox()
	b.reactor = fr
	return b
}
