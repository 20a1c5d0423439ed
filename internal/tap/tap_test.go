package tap

import (
	"testing"
	"time"

	"github.com/google/gopacket"

	"netspectra/internal/capture"
)

type recordingSink struct {
	records []capture.Record
}

func (s *recordingSink) Emit(r capture.Record) { s.records = append(s.records, r) }

func TestWrapSingleRoundTripsThroughWalkBatch(t *testing.T) {
	eth := []byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x08, 0x00,
	}
	ip := make([]byte, 20)
	ip[0] = 0x45
	ip[9] = 17 // UDP
	copy(ip[12:16], []byte{192, 168, 1, 1})
	copy(ip[16:20], []byte{192, 168, 1, 2})

	udp := make([]byte, 8)
	udp[0], udp[1] = 0x00, 0x35 // sport 53
	udp[2], udp[3] = 0x1f, 0x90 // dport 8080
	udp[4], udp[5] = 0x00, 0x08 // length 8

	data := append(append(append([]byte{}, eth...), ip...), udp...)

	batch := wrapSingle(data, gopacket.CaptureInfo{
		Timestamp: time.Unix(1700000000, 500000000),
		Length:    len(data),
	})

	if len(batch)%capture.Word != 0 {
		t.Fatalf("expected batch padded to word boundary, got length %d", len(batch))
	}

	sink := &recordingSink{}
	capture.WalkBatch(batch, sink)

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	r := sink.records[0]
	if r.Protocol != "UDP" || r.Src != "192.168.1.1" || r.Dst != "192.168.1.2" {
		t.Fatalf("unexpected record: %+v", r)
	}
}
