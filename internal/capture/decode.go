package capture

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"
)

// formatTimestamp renders a (seconds, microseconds) pair as local time
// with microsecond precision: YYYY-MM-DD HH:MM:SS.uuuuuu.
func formatTimestamp(sec, usec uint32) string {
	t := time.Unix(int64(sec), 0).Local()
	return fmt.Sprintf("%s.%06d", t.Format("2006-01-02 15:04:05"), usec)
}

// decodeEthernet requires at least 14 bytes. Only EtherType 0x0800
// (IPv4) proceeds to the IPv4 decoder; every other EtherType,
// including ARP and IPv6, is silently dropped (spec §4.1, a
// deliberate scope choice, not an oversight).
func decodeEthernet(data []byte, ts string, sink Sink) {
	const ethHeaderLen = 14
	if len(data) < ethHeaderLen {
		return
	}

	etherType := binary.BigEndian.Uint16(data[12:14])
	if etherType != 0x0800 {
		return
	}

	decodeIPv4(data[ethHeaderLen:], ts, sink)
}

// decodeIPv4 requires at least 20 bytes. IHL is the low nibble of
// byte 0, in 32-bit words; a value below 5 or an options region that
// doesn't fit the slice is rejected.
func decodeIPv4(data []byte, ts string, sink Sink) {
	const ipMinLen = 20
	if len(data) < ipMinLen {
		return
	}

	ihl := int(data[0] & 0x0f)
	if ihl < 5 {
		return
	}
	ipHdrLen := ihl * 4
	if len(data) < ipHdrLen {
		return
	}

	totalLen := int(binary.BigEndian.Uint16(data[2:4]))
	proto := data[9]
	src := ipv4String(data[12:16])
	dst := ipv4String(data[16:20])

	rest := data[ipHdrLen:]

	switch proto {
	case 1:
		decodeICMP(rest, ts, src, dst, sink)
	case 6:
		decodeTCP(rest, ts, src, dst, sink)
	case 17:
		decodeUDP(rest, ts, src, dst, sink)
	default:
		sink.Emit(Record{
			Timestamp: ts,
			Protocol:  strconv.Itoa(int(proto)),
			Src:       src,
			Dst:       dst,
			Length:    totalLen,
		})
	}
}

func ipv4String(b []byte) string {
	return fmt.Sprintf("%d.%d.%d.%d", b[0], b[1], b[2], b[3])
}

// decodeTCP requires at least 20 bytes of remaining slice. Length is
// every byte of the transport segment (header plus payload).
func decodeTCP(data []byte, ts, src, dst string, sink Sink) {
	const tcpMinLen = 20
	if len(data) < tcpMinLen {
		return
	}

	srcPort := int(binary.BigEndian.Uint16(data[0:2]))
	dstPort := int(binary.BigEndian.Uint16(data[2:4]))

	sink.Emit(Record{
		Timestamp: ts,
		Protocol:  "TCP",
		Src:       src,
		Dst:       dst,
		Length:    len(data),
		SrcPort:   intPtr(srcPort),
		DstPort:   intPtr(dstPort),
	})
}

// decodeUDP requires at least 8 bytes. Length is the value of the UDP
// length field, not the size of the remaining slice.
func decodeUDP(data []byte, ts, src, dst string, sink Sink) {
	const udpMinLen = 8
	if len(data) < udpMinLen {
		return
	}

	srcPort := int(binary.BigEndian.Uint16(data[0:2]))
	dstPort := int(binary.BigEndian.Uint16(data[2:4]))
	udpLen := int(binary.BigEndian.Uint16(data[4:6]))

	sink.Emit(Record{
		Timestamp: ts,
		Protocol:  "UDP",
		Src:       src,
		Dst:       dst,
		Length:    udpLen,
		SrcPort:   intPtr(srcPort),
		DstPort:   intPtr(dstPort),
	})
}

// icmpTypeNames is the closed table of ICMP type names this system
// understands; anything else renders as "Unknown ICMP".
var icmpTypeNames = map[byte]string{
	0:  "Echo Reply",
	3:  "Destination Unreachable",
	4:  "Source Quench",
	5:  "Redirect",
	8:  "Echo Request",
	11: "Time Exceeded",
	12: "Parameter Problem",
	13: "Timestamp Request",
	14: "Timestamp Reply",
}

// decodeICMP requires at least 8 bytes. Only echo request/reply
// (types 8 and 0) carry an id/seq pair.
func decodeICMP(data []byte, ts, src, dst string, sink Sink) {
	const icmpMinLen = 8
	if len(data) < icmpMinLen {
		return
	}

	icmpType := data[0]
	icmpCode := data[1]

	rec := Record{
		Timestamp: ts,
		Protocol:  "ICMP",
		Src:       src,
		Dst:       dst,
		Length:    len(data),
		ICMPType:  intPtr(int(icmpType)),
		ICMPCode:  intPtr(int(icmpCode)),
	}

	if icmpType == 0 || icmpType == 8 {
		id := int(binary.BigEndian.Uint16(data[4:6]))
		seq := int(binary.BigEndian.Uint16(data[6:8]))
		rec.ICMPID = intPtr(id)
		rec.ICMPSeq = intPtr(seq)
	}

	sink.Emit(rec)
}

// ICMPTypeName returns the human name for an ICMP type from the
// closed table in spec §4.1, or "Unknown ICMP" if unmapped.
func ICMPTypeName(t int) string {
	if name, ok := icmpTypeNames[byte(t)]; ok {
		return name
	}
	return "Unknown ICMP"
}
