// Command sniffer reads raw frames from a capture tap, decodes them,
// and either prints records to stdout or ships them to an
// aggregation hub.
//
// Usage: sniffer <interface> [server_ip server_port]
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"netspectra/internal/capture"
	"netspectra/internal/config"
	"netspectra/internal/frame"
	"netspectra/internal/tap"
)

func main() {
	args := os.Args[1:]
	if len(args) != 1 && len(args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <interface> [server_ip server_port]\n", os.Args[0])
		os.Exit(1)
	}

	cfg := config.DefaultSnifferConfig()
	cfg.Interface = args[0]

	var upstream *snifferUplink
	if len(args) == 3 {
		port, err := strconv.Atoi(args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid server_port %q: %v\n", args[2], err)
			os.Exit(1)
		}
		cfg.HubHost = args[1]
		cfg.HubPort = port

		hostname, _ := os.Hostname()
		cfg.Hostname = hostname

		upstream, err = dialHub(cfg)
		if err != nil {
			log.Printf("sniffer: failed to connect to hub: %v", err)
			os.Exit(1)
		}
		defer upstream.Close()
	}

	t, err := tap.OpenLive(cfg.Interface, cfg.Snaplen, cfg.Promiscuous)
	if err != nil {
		log.Printf("sniffer: failed to open interface %s: %v", cfg.Interface, err)
		os.Exit(1)
	}
	defer t.Close()

	var sink capture.Sink
	if upstream != nil {
		sink = capture.SinkFunc(upstream.Emit)
	} else {
		sink = capture.SinkFunc(printRecord)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			batch, err := t.NextBatch()
			if err != nil {
				log.Printf("sniffer: capture ended: %v", err)
				return
			}
			capture.WalkBatch(batch, sink)
		}
	}()

	select {
	case <-sigCh:
		log.Println("sniffer: shutdown signal received")
	case <-done:
	}
}

func printRecord(r capture.Record) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	fmt.Println(string(data))
}

// snifferUplink ships decoded records to a hub as TRAFFIC_LOG frames.
type snifferUplink struct {
	conn net.Conn
}

type connReader struct{ conn net.Conn }

func (c connReader) ReadFull(buf []byte) error {
	_, err := io.ReadFull(c.conn, buf)
	return err
}

func dialHub(cfg config.SnifferConfig) (*snifferUplink, error) {
	addr := fmt.Sprintf("%s:%d", cfg.HubHost, cfg.HubPort)
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dialing hub %s: %w", addr, err)
	}

	payload, err := json.Marshal(frame.ClientHelloPayload{Hostname: cfg.Hostname, Interface: cfg.Interface})
	if err != nil {
		conn.Close()
		return nil, err
	}
	encoded, err := frame.Encode(frame.TypeClientHello, payload)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Write(encoded); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sending CLIENT_HELLO: %w", err)
	}

	f, err := frame.ReadFrame(connReader{conn})
	if err != nil || f.Type != frame.TypeServerHello {
		conn.Close()
		return nil, fmt.Errorf("reading SERVER_HELLO: %w", err)
	}

	return &snifferUplink{conn: conn}, nil
}

// Emit encodes r and sends it as a TRAFFIC_LOG frame. Send failures
// are logged and otherwise ignored — the capture loop must keep
// running even if the hub connection has gone away (spec §7, send
// failures to a sniffer's own uplink are the sniffer's problem, not
// the decoder's).
func (u *snifferUplink) Emit(r capture.Record) {
	payload, err := json.Marshal(r)
	if err != nil {
		return
	}
	encoded, err := frame.Encode(frame.TypeTrafficLog, payload)
	if err != nil {
		log.Printf("sniffer: record too large to send: %v", err)
		return
	}
	if _, err := u.conn.Write(encoded); err != nil {
		log.Printf("sniffer: failed to send record: %v", err)
	}
}

func (u *snifferUplink) Close() error {
	return u.conn.Close()
}
