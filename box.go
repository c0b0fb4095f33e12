// File: box.go
// Author: momentics <momentics@gmail.com>
//
// Box: the connection registry, deferred queue, reply-id allocator, and
// reactor bundled into one runtime, plus Listen/Connect/Send/Get/
// Disconnect/Unlisten/Shutdown.

package msgbox

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/momentics/msgbox/internal/addr"
	"github.com/momentics/msgbox/internal/reactor"
	"github.com/momentics/msgbox/internal/wire"
)

// Box is one message-box runtime: a connection registry, a deferred
// callback queue, a reply-id allocator, and the reactor backing all of its
// sockets. Most programs only need the package-level facade, which lazily
// creates one Box; call NewBox directly when more than one independent
// runtime is needed in the same process.
type Box struct {
	reactor  reactor.Reactor
	registry *registry
	queue    *deferredQueue
	replyIDs *wire.ReplyIDAllocator
	logger   *zap.Logger

	recvBufSize int

	pendingRequests map[uint16]any
}

// BoxOption configures a Box at construction time.
type BoxOption func(*Box)

// WithLogger overrides the zap logger a Box uses for dispatcher-level
// failures (readiness wait errors, malformed frames).
func WithLogger(l *zap.Logger) BoxOption {
	return func(b *Box) { b.logger = l }
}

// WithReceiveBufferSize overrides the scratch buffer size used to read one
// datagram. It must be at least wire.HeaderSize; the default is
// reactor.RecvBufferSize.
func WithReceiveBufferSize(n int) BoxOption {
	return func(b *Box) {
		if n >= wire.HeaderSize {
			b.recvBufSize = n
		}
	}
}

// NewBox constructs a Box. A freshly constructed Box has no listeners or
// connections; call Listen/Connect to create them, then RunLoop
// periodically to deliver events.
func NewBox(opts ...BoxOption) *Box {
	b := &Box{
		reactor:         reactor.New(),
		registry:        newRegistry(),
		queue:           newDeferredQueue(),
		replyIDs:        wire.NewReplyIDAllocator(),
		logger:          defaultLogger(),
		recvBufSize:     reactor.RecvBufferSize,
		pendingRequests: make(map[uint16]any),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// enqueue pushes pe onto the current tick's deferred queue.
func (b *Box) enqueue(pe pendingEvent) {
	b.queue.push(pe)
}

func (b *Box) enqueueError(conn *Conn, code ErrorCode, message string) {
	b.enqueue(pendingEvent{conn: conn, event: EventError, data: NewData(message)})
	b.logger.Warn("msgbox error", zap.Stringer("code", code), zap.String("message", message))
}

func (b *Box) enqueueOSError(conn *Conn, op string, err error) {
	b.enqueueError(conn, ErrCodeOS, fmt.Sprintf("%s: %v", op, err))
}

// Listen opens a UDP socket bound to address and registers it as a
// listener. Every result, including failure, is reported asynchronously
// through callback the next time RunLoop drains its queue; Listen itself
// never blocks on or returns an error directly.
func (b *Box) Listen(address string, context any, callback Callback) *Conn {
	return b.open(address, context, callback, true)
}

// Connect opens a UDP socket and dials address as an initiator. As with
// Listen, success and failure are both reported through callback.
func (b *Box) Connect(address string, context any, callback Callback) *Conn {
	return b.open(address, context, callback, false)
}

func (b *Box) open(address string, context any, callback Callback, listener bool) *Conn {
	conn := &Conn{box: b, context: context, callback: callback, listener: listener}

	// The socket is opened as UDP before the address string is even
	// parsed, mirroring setup_sockaddr's unconditional SOCK_DGRAM in the
	// original; this lets address-parse and transport-rejection failures
	// share the same registry unwind path as a bind/connect failure below.
	fd, err := b.reactor.Socket(addr.UDP)
	if err != nil {
		b.enqueueOSError(conn, "socket", err)
		return conn
	}
	conn.fd = fd
	b.registry.add(conn, fd)

	parsed, err := addr.Parse(address)
	if err != nil {
		b.registry.removeLast()
		_ = b.reactor.Close(fd)
		b.enqueueError(conn, ErrCodeAddress, err.Error())
		return conn
	}
	if parsed.Transport == addr.TCP {
		b.registry.removeLast()
		_ = b.reactor.Close(fd)
		b.enqueueError(conn, ErrCodeProtocol, ErrTCPUnsupported.Message)
		return conn
	}

	conn.transport = parsed.Transport
	conn.remoteIP = parsed.IP
	conn.remotePort = parsed.Port
	conn.bindAny = parsed.BindAny

	if listener {
		err = b.reactor.Bind(fd, parsed.IP, parsed.Port)
	} else {
		err = b.reactor.Connect(fd, parsed.IP, parsed.Port)
	}
	if err != nil {
		b.registry.removeLast()
		_ = b.reactor.Close(fd)
		op := "bind"
		if !listener {
			op = "connect"
		}
		b.enqueueOSError(conn, op, err)
		return conn
	}

	if listener {
		b.enqueue(pendingEvent{conn: conn, event: EventListening})
		return conn
	}

	// An initiator already knows its peer; a first-seen connection_ready
	// follows immediately rather than waiting for an inbound datagram.
	if b.registry.observePeer(conn.peerKey()) {
		b.enqueue(pendingEvent{conn: conn, event: EventConnectionReady})
	}
	return conn
}

// Send transmits data as a one-way frame. The header is written into
// data's reserved prefix in place; data must have been obtained from
// NewData, NewDataSpace, or a callback's inbound Data.
func (b *Box) Send(conn *Conn, data Data) error {
	return b.sendFrame(conn, data, wire.OneWay, wire.OneWaySentinel)
}

func (b *Box) sendFrame(conn *Conn, data Data, mt wire.MessageType, replyID uint16) error {
	if conn.closed {
		return ErrConnectionClosed
	}
	if conn.transport == addr.TCP {
		return ErrTCPUnsupported
	}
	header := data.headerPrefix()
	if header == nil {
		return newError(ErrCodeProtocol, "data has no reserved header prefix", nil)
	}
	if err := wire.Encode(header, wire.Header{MessageType: mt, NumPackets: 1, PacketID: 0, ReplyID: replyID}); err != nil {
		return err
	}
	var err error
	if conn.listener {
		_, err = b.reactor.SendTo(conn.fd, data.full, conn.remoteIP, conn.remotePort)
	} else {
		_, err = b.reactor.Send(conn.fd, data.full)
	}
	if err != nil {
		return newError(ErrCodeOS, err.Error(), nil)
	}
	return nil
}

// Get sends data as a request and returns the reply-id a matching inbound
// reply frame will carry in its correlation bits. replyContext, if
// non-nil, is temporarily installed as the replying Conn's Context for the
// single EventReply callback invocation that correlates to this request,
// then restored.
func (b *Box) Get(conn *Conn, data Data, replyContext any) (uint16, error) {
	if conn.closed {
		return 0, ErrConnectionClosed
	}
	id := b.replyIDs.Next()
	if err := b.sendFrame(conn, data, wire.Request, id); err != nil {
		return 0, err
	}
	if replyContext != nil {
		b.pendingRequests[id] = replyContext
	}
	return id, nil
}

// Disconnect sends a close frame on conn, then tears it down locally:
// closes the socket and removes it from the registry immediately, without
// waiting for a peer acknowledgement (see DESIGN.md for why).
func (b *Box) Disconnect(conn *Conn) error {
	if conn.closed {
		return ErrConnectionClosed
	}
	err := b.sendFrame(conn, NewDataSpace(0), wire.Close, wire.OneWaySentinel)
	b.teardownLocal(conn)
	return err
}

// Unlisten tears down a listener Conn without sending any frame. Events
// already queued that reference conn are still delivered intact; this only
// stops future dispatch to it.
func (b *Box) Unlisten(conn *Conn) {
	b.teardownLocal(conn)
}

// teardownLocal closes conn's socket, marks it closed, removes it from the
// registry, and evicts its peer-status entry, outside of the deferred
// owned-resource release path (that path exists only for inbound close
// frames, where release must wait for the queue to drain).
func (b *Box) teardownLocal(conn *Conn) {
	conn.closed = true
	idx := b.indexOf(conn)
	if idx >= 0 {
		b.registry.markRemoved(idx)
		b.registry.sweep(func(fd int) { _ = b.reactor.Close(fd) })
	}
	b.registry.evictPeer(conn.peerKey())
}

func (b *Box) indexOf(conn *Conn) int {
	for i, c := range b.registry.conns {
		if c == conn {
			return i
		}
	}
	return -1
}

// Shutdown closes every Conn currently registered with the Box.
func (b *Box) Shutdown() {
	for _, c := range append([]*Conn(nil), b.registry.conns...) {
		if !c.closed {
			b.teardownLocal(c)
		}
	}
}
