package capture

import "encoding/binary"

// Word is the capture kernel's alignment unit. Records inside a batch
// are padded to this boundary, matching the BPF convention this
// system's capture header layout is modeled on (see internal/tap).
const Word = 4

// HeaderLen is the fixed size of a CaptureHeader once encoded: four
// uint32 fields (seconds, microseconds, captured length, original
// length) plus the self-describing header-length field.
const HeaderLen = 20

// CaptureHeader is the fixed-shape per-packet metadata that precedes
// captured bytes in a batch (see spec §3, "Capture batch").
type CaptureHeader struct {
	Sec     uint32
	USec    uint32
	CapLen  uint32
	OrigLen uint32
	SelfLen uint32 // length of this header, as reported by the tap
}

// PutCaptureHeader encodes hdr into buf[:HeaderLen]. buf must have at
// least HeaderLen bytes. Used by the tap adapter to build batches; the
// wire format is little-endian because it never crosses a process or
// architecture boundary.
func PutCaptureHeader(buf []byte, hdr CaptureHeader) {
	binary.LittleEndian.PutUint32(buf[0:4], hdr.Sec)
	binary.LittleEndian.PutUint32(buf[4:8], hdr.USec)
	binary.LittleEndian.PutUint32(buf[8:12], hdr.CapLen)
	binary.LittleEndian.PutUint32(buf[12:16], hdr.OrigLen)
	binary.LittleEndian.PutUint32(buf[16:20], hdr.SelfLen)
}

// alignUp rounds n up to the next multiple of word.
func alignUp(n, word int) int {
	return (n + word - 1) / word * word
}

// WalkBatch walks a capture batch, decoding each packet in turn and
// handing successful decodes to sink. It never panics and never reads
// outside buf: truncation at the capture-header or packet level stops
// walking the batch but is not reported as an error, since a partial
// batch is not a protocol violation — the tap is free to supply a
// fresh batch on the next read (spec §4.1, "Failure semantics").
func WalkBatch(buf []byte, sink Sink) {
	n := len(buf)
	p := 0

	for p < n {
		if p+HeaderLen > n {
			return // truncated capture header
		}

		selfLen := int(binary.LittleEndian.Uint32(buf[p+16 : p+20]))
		if selfLen < HeaderLen {
			return // header claims to be smaller than its own fields
		}
		if p+selfLen > n {
			return // truncated capture header (options/extension claimed but absent)
		}

		capLen := int(binary.LittleEndian.Uint32(buf[p+8 : p+12]))
		if p+selfLen+capLen > n {
			return // truncated packet
		}

		sec := binary.LittleEndian.Uint32(buf[p : p+4])
		usec := binary.LittleEndian.Uint32(buf[p+4 : p+8])
		ts := formatTimestamp(sec, usec)

		pkt := buf[p+selfLen : p+selfLen+capLen]
		decodeEthernet(pkt, ts, sink)

		p += alignUp(selfLen+capLen, Word)
	}
}
