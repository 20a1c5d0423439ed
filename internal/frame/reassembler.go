package frame

import "encoding/binary"

// Reassembler accumulates bytes pushed from a non-blocking transport
// (the viewer's event loop) and produces zero or more complete frames
// per push. It never blocks and never discards bytes that belong to
// a still-incomplete frame.
type Reassembler struct {
	buf []byte
}

// NewReassembler returns an empty Reassembler.
func NewReassembler() *Reassembler {
	return &Reassembler{}
}

// Push appends data to the internal buffer and returns every complete
// frame that can now be extracted, in order. A fatal framing error
// discards the entire buffer and is returned alongside whatever
// frames were successfully extracted before the violation.
func (re *Reassembler) Push(data []byte) ([]Frame, error) {
	re.buf = append(re.buf, data...)

	var frames []Frame
	for {
		f, consumed, err := re.tryParseOne()
		if err != nil {
			re.buf = nil
			return frames, err
		}
		if !consumed {
			return frames, nil
		}
		frames = append(frames, f)
	}
}

// tryParseOne attempts to parse a single frame from the front of the
// buffer. consumed is false when more bytes are needed; it never
// removes bytes from the buffer unless a whole frame is available.
func (re *Reassembler) tryParseOne() (f Frame, consumed bool, err error) {
	if len(re.buf) < headerLen {
		return Frame{}, false, nil
	}

	version := re.buf[0]
	if version != Version {
		return Frame{}, false, &ErrFraming{Reason: "unsupported version"}
	}

	typ := re.buf[1]
	length := binary.BigEndian.Uint16(re.buf[2:4])
	if length > MaxPayload {
		return Frame{}, false, &ErrFraming{Reason: "payload length exceeds maximum"}
	}

	total := headerLen + int(length) + 1
	if len(re.buf) < total {
		return Frame{}, false, nil
	}

	if re.buf[total-1] != Terminator {
		return Frame{}, false, &ErrFraming{Reason: "missing or invalid terminator"}
	}

	payload := make([]byte, length)
	copy(payload, re.buf[headerLen:headerLen+int(length)])

	re.buf = re.buf[total:]
	return Frame{Type: typ, Payload: payload}, true, nil
}
