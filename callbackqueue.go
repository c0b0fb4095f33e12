// File: callbackqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The deferred callback queue: pendingEvent and its owned-resource tag.

package msgbox

import "github.com/eapache/queue"

// ownedKind tags what resource, if any, a pendingEvent is still holding
// onto and must release once its callback has run.
type ownedKind int

const (
	ownedNone ownedKind = iota
	ownedBuffer
	ownedConnTeardown
)

// owned tags the resource a pendingEvent refers to: nothing, a receive
// buffer left to the garbage collector, or a Conn whose registry entry
// readClose already marked removed. Box.release does no work for any kind;
// a marked Conn's fd is closed by the registry's next sweep.
type owned struct {
	kind ownedKind
	conn *Conn
	idx  int
}

// pendingEvent is one entry in the deferred callback queue: a single
// (Conn, Event, Data) triple plus whatever resource release must follow
// its delivery.
type pendingEvent struct {
	conn  *Conn
	event Event
	data  Data
	owned owned

	// replyContext, when hasReplyContext is set, is installed as conn's
	// Context for the duration of this single callback invocation (the
	// dedicated context a matching Get call registered for its reply).
	replyContext    any
	hasReplyContext bool
}

// deferredQueue is the per-tick FIFO of queued callback deliveries, backed
// by eapache/queue's ring buffer rather than a hand-rolled slice-based
// queue.
type deferredQueue struct {
	q *queue.Queue
}

func newDeferredQueue() *deferredQueue {
	return &deferredQueue{q: queue.New()}
}

func (dq *deferredQueue) push(pe pendingEvent) {
	dq.q.Add(pe)
}

func (dq *deferredQueue) len() int {
	return dq.q.Length()
}

// drain removes and returns every queued entry in FIFO order, leaving the
// queue empty. Callers swap in a fresh deferredQueue before calling this on
// the old one, so that callbacks invoked here which enqueue new events land
// in the new queue rather than re-entering this one.
func (dq *deferredQueue) drain() []pendingEvent {
	n := dq.q.Length()
	out := make([]pendingEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, dq.q.Remove().(pendingEvent))
	}
	return out
}
