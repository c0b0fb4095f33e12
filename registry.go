// File: registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The connection registry: index-aligned descriptor/Conn arrays and the
// peer-status map used for first-seen detection.

package msgbox

import (
	"net"
	"time"

	"github.com/momentics/msgbox/internal/addr"
	"github.com/momentics/msgbox/internal/reactor"
)

// processStart anchors nowSeconds' monotonic reading. time.Since uses the
// monotonic component Go attaches to time.Now(), so this stays correct
// across wall-clock adjustments.
var processStart = time.Now()

func nowSeconds() float64 {
	return time.Since(processStart).Seconds()
}

// peerKey identifies a remote endpoint by exact byte representation: a
// plain struct of fixed-size fields gives Go's map deterministic,
// allocation-free hashing without a third-party hash function.
type peerKey struct {
	ip        [4]byte
	port      uint16
	transport addr.Transport
}

func peerKeyFor(ip net.IP, port uint16, transport addr.Transport) peerKey {
	var k peerKey
	if ip4 := ip.To4(); ip4 != nil {
		copy(k.ip[:], ip4)
	}
	k.port = port
	k.transport = transport
	return k
}

// peerStatus is the value half of the first-seen map: the last time a
// datagram arrived from this endpoint.
type peerStatus struct {
	lastSeenAt float64
}

// registry is the connection table: index-aligned descriptor and Conn
// arrays, plus the peer-status map used to detect a remote endpoint's first
// packet. Removal is mark-and-sweep: marked entries are compacted out at
// the top of each tick and whenever Disconnect, Unlisten or Shutdown tear a
// Conn down, never while the dispatcher's read loop walks the arrays, so
// that loop never sees them shift underneath it.
type registry struct {
	descs   []reactor.Descriptor
	conns   []*Conn
	removed []bool

	peers map[peerKey]*peerStatus
}

func newRegistry() *registry {
	return &registry{peers: make(map[peerKey]*peerStatus)}
}

// add appends a new Conn/fd pair and returns its index.
func (r *registry) add(conn *Conn, fd int) int {
	r.descs = append(r.descs, reactor.Descriptor{FD: fd})
	r.conns = append(r.conns, conn)
	r.removed = append(r.removed, false)
	return len(r.conns) - 1
}

// removeLast pops the most recently added entry without marking it; it is
// only safe to call immediately after add, before any other entry is
// added, which is exactly the unwind path Listen/Connect use when socket
// setup fails partway through.
func (r *registry) removeLast() {
	n := len(r.conns)
	if n == 0 {
		return
	}
	r.descs = r.descs[:n-1]
	r.conns = r.conns[:n-1]
	r.removed = r.removed[:n-1]
}

// markRemoved flags index i for removal at the next sweep. The entry
// remains readable (and thus safe for in-flight PendingEvents referencing
// it) until then.
func (r *registry) markRemoved(i int) {
	if i >= 0 && i < len(r.removed) {
		r.removed[i] = true
	}
}

// sweep compacts out every entry marked removed since the last sweep,
// invoking closeFD on each one's descriptor first. Never call this while
// the dispatcher's read loop is iterating the arrays.
func (r *registry) sweep(closeFD func(fd int)) {
	n := len(r.conns)
	kept := 0
	for i := 0; i < n; i++ {
		if r.removed[i] {
			closeFD(r.descs[i].FD)
			continue
		}
		r.descs[kept] = r.descs[i]
		r.conns[kept] = r.conns[i]
		r.removed[kept] = false
		kept++
	}
	r.descs = r.descs[:kept]
	r.conns = r.conns[:kept]
	r.removed = r.removed[:kept]
}

func (r *registry) len() int { return len(r.conns) }

// observePeer records a datagram from key, reporting whether this is the
// first datagram ever seen from that exact {ip, port, transport} triple.
// A first-seen result is what the dispatcher turns into an
// EventConnectionReady.
func (r *registry) observePeer(key peerKey) (firstSeen bool) {
	if st, ok := r.peers[key]; ok {
		st.lastSeenAt = nowSeconds()
		return false
	}
	r.peers[key] = &peerStatus{lastSeenAt: nowSeconds()}
	return true
}

// evictPeer removes key from the peer-status map, called on connection
// teardown so a reused local port does not inherit a stale "already seen"
// verdict for a peer that later reconnects.
func (r *registry) evictPeer(key peerKey) {
	delete(r.peers, key)
}
