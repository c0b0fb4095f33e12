// File: internal/wire/header.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package wire implements the 8-byte framed header codec and the
// reply-id correlation scheme used to multiplex one-way messages,
// requests, replies, heartbeats, and close frames over a single socket.
package wire

import (
	"encoding/binary"
	"fmt"
)

// MessageType identifies the kind of frame a Header describes.
type MessageType uint16

const (
	OneWay    MessageType = 0
	Request   MessageType = 1
	Reply     MessageType = 2
	Heartbeat MessageType = 3
	Close     MessageType = 4
)

// Valid reports whether t is one of the enumerated message types.
func (t MessageType) Valid() bool {
	return t <= Close
}

func (t MessageType) String() string {
	switch t {
	case OneWay:
		return "one_way"
	case Request:
		return "request"
	case Reply:
		return "reply"
	case Heartbeat:
		return "heartbeat"
	case Close:
		return "close"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(t))
	}
}

// HeaderSize is the fixed, wire-level size of a Header in bytes.
const HeaderSize = 8

// Header is the 8-byte frame header, all fields 16-bit big-endian on the wire.
type Header struct {
	MessageType MessageType
	NumPackets  uint16
	PacketID    uint16
	ReplyID     uint16
}

// ErrShortHeader is returned by Decode when buf is smaller than HeaderSize.
var ErrShortHeader = fmt.Errorf("wire: buffer shorter than header size (%d bytes)", HeaderSize)

// ErrUnknownMessageType is the protocol-violation class for a message_type
// value outside the enumeration.
type ErrUnknownMessageType struct {
	Value uint16
}

func (e *ErrUnknownMessageType) Error() string {
	return fmt.Sprintf("wire: unknown message_type %d", e.Value)
}

// Encode writes h into buf[:HeaderSize] in network byte order. buf must be
// at least HeaderSize long; callers typically pass the 8-byte prefix that
// immediately precedes a Data payload's visible bytes.
func Encode(buf []byte, h Header) error {
	if len(buf) < HeaderSize {
		return ErrShortHeader
	}
	binary.BigEndian.PutUint16(buf[0:2], uint16(h.MessageType))
	binary.BigEndian.PutUint16(buf[2:4], h.NumPackets)
	binary.BigEndian.PutUint16(buf[4:6], h.PacketID)
	binary.BigEndian.PutUint16(buf[6:8], h.ReplyID)
	return nil
}

// Decode reads a Header from buf[:HeaderSize]. It returns
// *ErrUnknownMessageType if the message_type field is outside the
// enumeration; callers decide whether that's fatal (debug assertion) or a
// dropped packet (release behavior).
func Decode(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	mt := binary.BigEndian.Uint16(buf[0:2])
	h := Header{
		MessageType: MessageType(mt),
		NumPackets:  binary.BigEndian.Uint16(buf[2:4]),
		PacketID:    binary.BigEndian.Uint16(buf[4:6]),
		ReplyID:     binary.BigEndian.Uint16(buf[6:8]),
	}
	if !h.MessageType.Valid() {
		return h, &ErrUnknownMessageType{Value: mt}
	}
	return h, nil
}
