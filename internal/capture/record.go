// Package capture implements the packet-decode pipeline: it walks a
// batched capture buffer produced by a kernel packet tap, slices
// protocol headers with strict bounds checking, and emits structured
// Records. Every decoder here is a pure function over an immutable
// byte slice; none of them retain the slice past the call.
package capture

// Record is the structured output of the decode pipeline for one
// packet. Only Timestamp, Protocol, Src, Dst and Length are always
// populated; the rest are protocol-specific and nil when not
// applicable.
type Record struct {
	Timestamp string `json:"timestamp"`
	Protocol  string `json:"protocol"`
	Src       string `json:"src"`
	Dst       string `json:"dst"`
	Length    int    `json:"length"`

	SrcPort *int `json:"src_port,omitempty"`
	DstPort *int `json:"dst_port,omitempty"`

	ICMPType *int `json:"icmp_type,omitempty"`
	ICMPCode *int `json:"icmp_code,omitempty"`
	ICMPID   *int `json:"icmp_id,omitempty"`
	ICMPSeq  *int `json:"icmp_seq,omitempty"`
}

func intPtr(v int) *int { return &v }

// Sink accepts one decoded Record at a time. A sniffer that is
// connected upstream wraps Emit to hand the record to the frame
// encoder; a standalone sniffer wraps it to print to stdout.
type Sink interface {
	Emit(Record)
}

// SinkFunc adapts a plain function to the Sink interface, the same
// way http.HandlerFunc adapts a function to http.Handler.
type SinkFunc func(Record)

// Emit calls f(r).
func (f SinkFunc) Emit(r Record) { f(r) }
