// Package msgbox
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Structured error type and error codes for the msgbox runtime.

package msgbox

import "fmt"

// ErrorCode classifies an Error by the subsystem that raised it.
type ErrorCode int

const (
	// ErrCodeAddress marks a failure to parse an address string.
	ErrCodeAddress ErrorCode = iota
	// ErrCodeOS marks a failure reported by a socket syscall.
	ErrCodeOS
	// ErrCodeProtocol marks a frame that violated the wire protocol or an
	// operation the protocol layer refuses (tcp, a closed Conn, Data
	// without a header prefix).
	ErrCodeProtocol
	// ErrCodeDispatcher marks a failure inside the run-loop itself
	// (e.g. the readiness wait).
	ErrCodeDispatcher
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeAddress:
		return "address"
	case ErrCodeOS:
		return "os"
	case ErrCodeProtocol:
		return "protocol"
	case ErrCodeDispatcher:
		return "dispatcher"
	default:
		return "unknown"
	}
}

// Error is the structured error type returned by Send, Get, Disconnect and
// RunLoop (OS errors during send, protocol refusals, readiness-wait
// failures). Failures reported through EventError (address parse, socket,
// bind, connect, receive) carry only their message text in Data. Context
// is left nil by every Error this package creates.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

func (e *Error) Error() string {
	return fmt.Sprintf("msgbox: %s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, message string, context map[string]any) *Error {
	return &Error{Code: code, Message: message, Context: context}
}

// ErrConnectionClosed is returned by Send, Get and Disconnect when called
// on a Conn that is already closed (see Conn.Closed).
var ErrConnectionClosed = newError(ErrCodeProtocol, "connection is closed", nil)

// ErrTCPUnsupported's message is delivered as an EventError when Listen or
// Connect is given a tcp:// address, and Send returns it for a TCP Conn;
// stream framing is out of scope (spec Non-goals).
var ErrTCPUnsupported = newError(ErrCodeProtocol, "tcp transport is not supported", nil)

// ErrMultiPacket's message is delivered as an EventError when an inbound
// frame's num_packets field is greater than 1; payload reassembly across
// packets is out of scope.
var ErrMultiPacket = newError(ErrCodeProtocol, "multi-packet frames are not supported", nil)
