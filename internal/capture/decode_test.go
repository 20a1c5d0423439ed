package capture

import (
	"testing"
)

type recordingSink struct {
	records []Record
}

func (s *recordingSink) Emit(r Record) { s.records = append(s.records, r) }

func TestDecodeEthernetARPDropped(t *testing.T) {
	// Ethernet-only ARP frame; decoder must emit nothing (spec §8 scenario 1).
	data := []byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x08, 0x06,
	}
	sink := &recordingSink{}
	decodeEthernet(data, "ts", sink)
	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}
}

func buildIPv4TCP() []byte {
	eth := []byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x08, 0x00,
	}
	ip := make([]byte, 20)
	ip[0] = 0x45 // version 4, IHL 5
	ip[2], ip[3] = 0x00, 0x28
	ip[9] = 6 // TCP
	copy(ip[12:16], []byte{10, 0, 0, 1})
	copy(ip[16:20], []byte{10, 0, 0, 2})

	tcp := make([]byte, 20)
	tcp[0], tcp[1] = 0x00, 0x50     // sport 80
	tcp[2], tcp[3] = 0xb0, 0x0b     // dport 45067

	out := append([]byte{}, eth...)
	out = append(out, ip...)
	out = append(out, tcp...)
	return out
}

func TestDecodeIPv4TCP(t *testing.T) {
	data := buildIPv4TCP()
	sink := &recordingSink{}
	decodeEthernet(data, "2024-01-01 00:00:00.000000", sink)

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	r := sink.records[0]
	if r.Protocol != "TCP" || r.Src != "10.0.0.1" || r.Dst != "10.0.0.2" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.SrcPort == nil || *r.SrcPort != 80 {
		t.Fatalf("expected src_port 80, got %+v", r.SrcPort)
	}
	if r.DstPort == nil || *r.DstPort != 45067 {
		t.Fatalf("expected dst_port 45067, got %+v", r.DstPort)
	}
	if r.Length != 20 {
		t.Fatalf("expected length 20, got %d", r.Length)
	}
}

func TestDecodeICMPEchoRequest(t *testing.T) {
	eth := []byte{
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x08, 0x00,
	}
	ip := make([]byte, 20)
	ip[0] = 0x45
	ip[9] = 1 // ICMP
	copy(ip[12:16], []byte{10, 0, 0, 1})
	copy(ip[16:20], []byte{10, 0, 0, 2})

	icmp := make([]byte, 8)
	icmp[0] = 8 // echo request
	icmp[1] = 0
	icmp[4], icmp[5] = 0x12, 0x34 // id 0x1234
	icmp[6], icmp[7] = 0x00, 0x01 // seq 1

	data := append([]byte{}, eth...)
	data = append(data, ip...)
	data = append(data, icmp...)

	sink := &recordingSink{}
	decodeEthernet(data, "ts", sink)

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	r := sink.records[0]
	if r.ICMPType == nil || *r.ICMPType != 8 {
		t.Fatalf("expected icmp_type 8, got %+v", r.ICMPType)
	}
	if r.ICMPCode == nil || *r.ICMPCode != 0 {
		t.Fatalf("expected icmp_code 0, got %+v", r.ICMPCode)
	}
	if r.ICMPID == nil || *r.ICMPID != 4660 {
		t.Fatalf("expected icmp_id 4660, got %+v", r.ICMPID)
	}
	if r.ICMPSeq == nil || *r.ICMPSeq != 1 {
		t.Fatalf("expected icmp_seq 1, got %+v", r.ICMPSeq)
	}
}

// TestDecodeBoundsSafety is P4: for every input length from 0 to 64
// bytes (filled with a fixed byte pattern), no decoder may panic.
func TestDecodeBoundsSafety(t *testing.T) {
	for n := 0; n <= 64; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i * 37)
		}
		sink := &recordingSink{}
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("decoder panicked on %d-byte input: %v", n, r)
				}
			}()
			decodeEthernet(data, "ts", sink)
			decodeIPv4(data, "ts", sink)
			decodeTCP(data, "ts", "src", "dst", sink)
			decodeUDP(data, "ts", "src", "dst", sink)
			decodeICMP(data, "ts", "src", "dst", sink)
		}()
	}
}

func TestWalkBatchTruncatedHeaderStopsWalk(t *testing.T) {
	buf := make([]byte, 10) // shorter than HeaderLen
	sink := &recordingSink{}
	WalkBatch(buf, sink) // must not panic
	if len(sink.records) != 0 {
		t.Fatalf("expected no records from truncated batch")
	}
}

func TestWalkBatchTwoPackets(t *testing.T) {
	pkt := buildIPv4TCP()
	hdr := CaptureHeader{Sec: 1700000000, USec: 123456, CapLen: uint32(len(pkt)), OrigLen: uint32(len(pkt)), SelfLen: HeaderLen}

	var buf []byte
	for i := 0; i < 2; i++ {
		headerBytes := make([]byte, HeaderLen)
		PutCaptureHeader(headerBytes, hdr)

		record := append(append([]byte{}, headerBytes...), pkt...)
		padded := alignUp(len(record), Word)
		record = append(record, make([]byte, padded-len(record))...)
		buf = append(buf, record...)
	}

	sink := &recordingSink{}
	WalkBatch(buf, sink)
	if len(sink.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sink.records))
	}
}

func TestFormatTimestampPadsMicroseconds(t *testing.T) {
	ts := formatTimestamp(0, 7)
	if ts[len(ts)-7:] != ".000007" {
		t.Fatalf("expected microseconds zero-padded, got %q", ts)
	}
}

func TestICMPTypeNameUnknown(t *testing.T) {
	if ICMPTypeName(200) != "Unknown ICMP" {
		t.Fatalf("expected Unknown ICMP for unmapped type")
	}
}

func TestICMPTypeNameKnown(t *testing.T) {
	if ICMPTypeName(8) != "Echo Request" {
		t.Fatalf("expected Echo Request for type 8")
	}
}
