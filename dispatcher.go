// File: dispatcher.go
// Author: momentics <momentics@gmail.com>
//
// The run-loop tick: readiness wait, frame read and classification, and
// the deferred-queue swap and drain.

package msgbox

import (
	"go.uber.org/zap"

	"github.com/momentics/msgbox/internal/wire"
)

// RunLoop runs one dispatcher tick: it sweeps connections torn down by the
// previous tick's callbacks, waits up to timeoutMs milliseconds for socket
// readiness, reads and classifies every ready frame, then swaps in a fresh
// deferred queue and drains the one built during this tick. Callbacks that
// enqueue new events during this drain land in the new queue, delivered
// only on the next RunLoop call, so a callback can never observe its own
// enqueue in the same tick.
//
// A failed readiness wait is logged and does not skip the drain: whatever
// was already queued before the wait (a pending listening event, say) is
// still delivered this tick, matching a poll failure that still runs the
// queued callbacks before reporting the error to the caller.
func (b *Box) RunLoop(timeoutMs int) error {
	b.registry.sweep(func(fd int) { _ = b.reactor.Close(fd) })

	n, waitErr := b.reactor.Wait(b.registry.descs, timeoutMs)
	if waitErr != nil {
		b.logger.Error("dispatcher: readiness wait failed", zap.Error(waitErr))
	} else if n > 0 {
		for i, d := range b.registry.descs {
			if !d.Ready {
				continue
			}
			b.readFromSocket(i, b.registry.conns[i])
		}
	}

	ready := b.queue
	b.queue = newDeferredQueue()
	for _, pe := range ready.drain() {
		if pe.hasReplyContext {
			prev := pe.conn.context
			pe.conn.context = pe.replyContext
			pe.conn.callback(pe.conn, pe.event, pe.data)
			pe.conn.context = prev
		} else {
			pe.conn.callback(pe.conn, pe.event, pe.data)
		}
		b.release(pe.owned)
	}

	if waitErr != nil {
		return newError(ErrCodeDispatcher, waitErr.Error(), nil)
	}
	return nil
}

// release runs after a pendingEvent's callback has returned. A receive
// buffer (ownedBuffer) needs nothing beyond letting the garbage collector
// reclaim it. A torn-down connection (ownedConnTeardown) also needs
// nothing here: readClose already marked the registry entry removed, and
// the next sweep (at the top of the next tick, or earlier if a callback
// tears a Conn down through Disconnect or Unlisten) performs the actual
// syscall close. Doing it here too would close the same fd twice.
func (b *Box) release(o owned) {}

func (b *Box) readFromSocket(idx int, conn *Conn) {
	var peekBuf [wire.HeaderSize]byte
	if _, err := b.reactor.PeekHeader(conn.fd, peekBuf[:]); err != nil {
		b.enqueueOSError(conn, "peek", err)
		return
	}

	h, err := wire.Decode(peekBuf[:])
	if err != nil {
		// An unrecognized message type is a protocol violation, not a
		// transport failure; drop the datagram and move on rather than
		// tearing the connection down.
		var drain [wire.HeaderSize]byte
		_, _, _, _ = b.reactor.RecvFrom(conn.fd, drain[:])
		b.logger.Debug("dropped frame with unknown message type")
		return
	}

	switch h.MessageType {
	case wire.Heartbeat:
		b.readHeartbeat(conn)
	case wire.Close:
		b.readClose(idx, conn)
	default:
		b.readPayload(conn, h)
	}
}

func (b *Box) readHeartbeat(conn *Conn) {
	var buf [wire.HeaderSize]byte
	n, srcIP, srcPort, err := b.reactor.RecvFrom(conn.fd, buf[:])
	if err != nil {
		b.enqueueOSError(conn, "recv", err)
		return
	}
	_ = n
	conn.remoteIP, conn.remotePort = srcIP, srcPort
	if b.registry.observePeer(conn.peerKey()) {
		b.enqueue(pendingEvent{conn: conn, event: EventConnectionReady})
	}
}

func (b *Box) readClose(idx int, conn *Conn) {
	var buf [wire.HeaderSize]byte
	_, _, _, _ = b.reactor.RecvFrom(conn.fd, buf[:])

	conn.closed = true
	b.registry.markRemoved(idx)
	b.registry.evictPeer(conn.peerKey())
	b.enqueue(pendingEvent{
		conn:  conn,
		event: EventConnectionClosed,
		owned: owned{kind: ownedConnTeardown, conn: conn, idx: idx},
	})
}

func (b *Box) readPayload(conn *Conn, h wire.Header) {
	if h.NumPackets != 1 {
		var drain [wire.HeaderSize]byte
		_, _, _, _ = b.reactor.RecvFrom(conn.fd, drain[:])
		b.enqueueError(conn, ErrCodeProtocol, ErrMultiPacket.Message)
		return
	}

	buf := make([]byte, b.recvBufSize)
	n, srcIP, srcPort, err := b.reactor.RecvFrom(conn.fd, buf)
	if err != nil {
		b.enqueueOSError(conn, "recv", err)
		return
	}

	conn.remoteIP, conn.remotePort = srcIP, srcPort
	conn.lastReplyID = h.ReplyID

	if b.registry.observePeer(conn.peerKey()) {
		b.enqueue(pendingEvent{conn: conn, event: EventConnectionReady})
	}

	pe := pendingEvent{
		conn:  conn,
		event: eventForMessageType(h.MessageType),
		data:  dataFromFull(buf[:n]),
		owned: owned{kind: ownedBuffer},
	}

	if h.MessageType == wire.Reply && wire.IsReply(h.ReplyID) {
		corrID := wire.CorrelationID(h.ReplyID)
		if ctx, ok := b.pendingRequests[corrID]; ok {
			delete(b.pendingRequests, corrID)
			pe.replyContext = ctx
			pe.hasReplyContext = true
		}
	}

	b.enqueue(pe)
}
