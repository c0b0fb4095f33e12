// File: facade.go
// Author: momentics <momentics@gmail.com>
//
// Package-level wrappers around a lazily constructed default Box.

package msgbox

import "sync"

var (
	defaultBoxOnce sync.Once
	defaultBox     *Box
)

// DefaultBox returns the lazily constructed process-wide Box the
// package-level functions operate on. Most programs never need more than
// one Box and can ignore this in favor of Listen/Connect/Send/etc;
// construct a Box directly with NewBox when independent runtimes are
// needed in the same process.
func DefaultBox() *Box {
	defaultBoxOnce.Do(func() {
		defaultBox = NewBox()
	})
	return defaultBox
}

// Listen opens a listener on the default Box. See (*Box).Listen.
func Listen(address string, context any, callback Callback) *Conn {
	return DefaultBox().Listen(address, context, callback)
}

// Connect opens an initiator on the default Box. See (*Box).Connect.
func Connect(address string, context any, callback Callback) *Conn {
	return DefaultBox().Connect(address, context, callback)
}

// Send transmits a one-way frame on the default Box. See (*Box).Send.
func Send(conn *Conn, data Data) error {
	return DefaultBox().Send(conn, data)
}

// Get sends a request on the default Box. See (*Box).Get.
func Get(conn *Conn, data Data, replyContext any) (uint16, error) {
	return DefaultBox().Get(conn, data, replyContext)
}

// Disconnect tears a Conn down on the default Box. See (*Box).Disconnect.
func Disconnect(conn *Conn) error {
	return DefaultBox().Disconnect(conn)
}

// Unlisten tears a listener Conn down on the default Box. See
// (*Box).Unlisten.
func Unlisten(conn *Conn) {
	DefaultBox().Unlisten(conn)
}

// RunLoop runs one dispatcher tick on the default Box. See (*Box).RunLoop.
func RunLoop(timeoutMs int) error {
	return DefaultBox().RunLoop(timeoutMs)
}

// Shutdown tears every Conn on the default Box down.
func Shutdown() {
	DefaultBox().Shutdown()
}
