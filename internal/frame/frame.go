// Package frame implements the binary framing protocol shared by the
// sniffer, hub and viewer: encoding, blocking decode over a
// read-exactly-N transport, and non-blocking decode over an
// internally buffered byte stream.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Message types (spec §4.2).
const (
	TypeClientHello uint8 = 0x01
	TypeServerHello uint8 = 0x02
	TypeTrafficLog  uint8 = 0x03
	TypeForwardLog  uint8 = 0x04
	TypeError       uint8 = 0x05
)

const (
	// Version is the only protocol version this package understands.
	Version uint8 = 0x01

	// Terminator marks the end of every frame.
	Terminator uint8 = 0x0A

	// MaxPayload is the largest payload a single frame may carry.
	// A payload that would exceed this is a protocol error, not a
	// fragmentation trigger — frames are never fragmented (spec §3).
	MaxPayload = 1024

	// headerLen is version(1) + type(1) + length(2).
	headerLen = 4
)

// Frame is a decoded protocol frame: a message type and its raw JSON
// payload.
type Frame struct {
	Type    uint8
	Payload []byte
}

// ErrPayloadTooLarge is returned by Encode when the payload exceeds
// MaxPayload.
var ErrPayloadTooLarge = errors.New("frame: payload exceeds maximum size")

// ErrFraming is returned for any fatal protocol violation: bad
// version, oversized length, or a missing/bad terminator. The caller
// must discard all buffered bytes and close the connection on this
// error (spec §4.2, "Failure semantics").
type ErrFraming struct {
	Reason string
}

func (e *ErrFraming) Error() string { return "frame: " + e.Reason }

// Encode renders (typ, payload) as a complete frame. The whole frame
// is returned as a single slice so that a single Write call makes the
// send atomic from the caller's viewpoint.
func Encode(typ uint8, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}

	buf := make([]byte, headerLen+len(payload)+1)
	buf[0] = Version
	buf[1] = typ
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(payload)))
	copy(buf[4:], payload)
	buf[len(buf)-1] = Terminator
	return buf, nil
}

// Reader reads a stream of whole bytes via a "read exactly N bytes"
// primitive and is used on the hub side, which pulls one frame at a
// time off a blocking socket.
type Reader interface {
	// ReadFull reads exactly len(buf) bytes into buf, looping over
	// short reads, or returns an error (including io.EOF) if the
	// connection closes first.
	ReadFull(buf []byte) error
}

// ReadFrame blocks until a complete frame has been read from r, or
// returns an error. Any framing violation is returned as *ErrFraming;
// any transport error (including a clean close) is returned as-is.
func ReadFrame(r Reader) (Frame, error) {
	header := make([]byte, headerLen)
	if err := r.ReadFull(header); err != nil {
		return Frame{}, err
	}

	if header[0] != Version {
		return Frame{}, &ErrFraming{Reason: fmt.Sprintf("unsupported version %d", header[0])}
	}

	typ := header[1]
	length := binary.BigEndian.Uint16(header[2:4])
	if length > MaxPayload {
		return Frame{}, &ErrFraming{Reason: fmt.Sprintf("payload length %d exceeds maximum", length)}
	}

	body := make([]byte, int(length)+1)
	if err := r.ReadFull(body); err != nil {
		return Frame{}, err
	}

	if body[len(body)-1] != Terminator {
		return Frame{}, &ErrFraming{Reason: "missing or invalid terminator"}
	}

	return Frame{Type: typ, Payload: body[:length]}, nil
}
