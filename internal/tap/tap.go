// Package tap is the sniffer's concrete kernel-tap adapter. It wraps
// gopacket/pcap to obtain link-layer bytes and re-shapes each packet
// into the capture-batch format internal/capture expects: a
// fixed-shape capture header, the captured bytes, and padding to the
// next word boundary (spec §3, §6).
//
// internal/capture's own protocol decoding never uses gopacket's
// decode stack — only this package does, and only to reach raw bytes.
package tap

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"netspectra/internal/capture"
)

// Tap is the sniffer's capture-batch source. A real kernel tap or a
// pcap file both satisfy it; NextBatch may yield a batch containing
// one or more captured records.
type Tap interface {
	NextBatch() ([]byte, error)
	Close() error
}

// PcapTap is a Tap backed by libpcap via gopacket/pcap. Each call to
// NextBatch reads exactly one packet from the handle and wraps it as
// a single-record batch; the decoder's batch-walking contract does
// not require batches to contain more than one record.
type PcapTap struct {
	handle *pcap.Handle
}

// OpenLive opens iface for live capture.
func OpenLive(iface string, snaplen int32, promiscuous bool) (*PcapTap, error) {
	handle, err := pcap.OpenLive(iface, snaplen, promiscuous, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("tap: opening %s: %w", iface, err)
	}
	return &PcapTap{handle: handle}, nil
}

// OpenOffline opens a previously captured pcap file, used by tests and
// offline tooling; it is not part of the live sniffer path.
func OpenOffline(path string) (*PcapTap, error) {
	handle, err := pcap.OpenOffline(path)
	if err != nil {
		return nil, fmt.Errorf("tap: opening %s: %w", path, err)
	}
	return &PcapTap{handle: handle}, nil
}

// NextBatch reads one packet and returns it wrapped in a single-record
// capture batch. It returns io.EOF (via the underlying pcap error) at
// end of an offline file.
func (t *PcapTap) NextBatch() ([]byte, error) {
	data, ci, err := t.handle.ReadPacketData()
	if err != nil {
		return nil, err
	}
	return wrapSingle(data, ci), nil
}

// Close releases the pcap handle.
func (t *PcapTap) Close() error {
	t.handle.Close()
	return nil
}

// wrapSingle builds a one-record capture batch around data.
func wrapSingle(data []byte, ci gopacket.CaptureInfo) []byte {
	hdr := capture.CaptureHeader{
		Sec:     uint32(ci.Timestamp.Unix()),
		USec:    uint32(ci.Timestamp.Nanosecond() / 1000),
		CapLen:  uint32(len(data)),
		OrigLen: uint32(ci.Length),
		SelfLen: capture.HeaderLen,
	}

	buf := make([]byte, capture.HeaderLen, capture.HeaderLen+len(data))
	capture.PutCaptureHeader(buf, hdr)
	buf = append(buf, data...)

	if pad := (capture.Word - len(buf)%capture.Word) % capture.Word; pad != 0 {
		buf = append(buf, make([]byte, pad)...)
	}
	return buf
}
