// Package viewerclient is the non-UI half of the viewer role: it
// dials the hub, performs the CLIENT_HELLO handshake, and exposes a
// channel of decoded FORWARD_LOG events, in arrival order, each tagged
// with its originating SSID.
// spec.md places the operator UI shell out of scope; this package is
// the event stream that shell would consume (spec §1, §6).
package viewerclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net"

	"netspectra/internal/capture"
	"netspectra/internal/frame"
)

// Event is one decoded FORWARD_LOG: a traffic record and the SSID of
// the sniffer that produced it.
type Event struct {
	SSID uint32
	Log  capture.Record
}

// Client is a connected viewer session.
type Client struct {
	conn net.Conn
	SSID uint32
}

type connReader struct{ conn net.Conn }

func (c connReader) ReadFull(buf []byte) error {
	_, err := io.ReadFull(c.conn, buf)
	return err
}

// Dial connects to the hub at addr, sends CLIENT_HELLO as a viewer,
// and waits for SERVER_HELLO.
func Dial(addr, hostname string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("viewerclient: dial %s: %w", addr, err)
	}

	payload, err := json.Marshal(frame.ClientHelloPayload{Hostname: hostname, Type: "gui"})
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
		return nil, fmt.Errorf("viewerclient: sending CLIENT_HELLO: %w", err)
	}

	f, err := frame.ReadFrame(connReader{conn})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("viewerclient: reading SERVER_HELLO: %w", err)
	}
	if f.Type != frame.TypeServerHello {
		conn.Close()
		return nil, fmt.Errorf("viewerclient: expected SERVER_HELLO, got type %d", f.Type)
	}

	var sh frame.ServerHelloPayload
	if err := json.Unmarshal(f.Payload, &sh); err != nil {
		conn.Close()
		return nil, fmt.Errorf("viewerclient: decoding SERVER_HELLO: %w", err)
	}

	return &Client{conn: conn, SSID: sh.SSID}, nil
}

// Events starts a background read loop and returns a channel of
// decoded FORWARD_LOG events and a channel that receives the single
// terminal error (close or framing violation) when the loop ends.
// Events is closed when the loop ends.
func (c *Client) Events() (<-chan Event, <-chan error) {
	events := make(chan Event)
	errs := make(chan error, 1)

	go func() {
		defer close(events)
		cr := connReader{c.conn}
		for {
			f, err := frame.ReadFrame(cr)
			if err != nil {
				errs <- err
				return
			}
			if f.Type != frame.TypeForwardLog {
				continue
			}

			var fw frame.ForwardLogPayload
			if err := json.Unmarshal(f.Payload, &fw); err != nil {
				continue
			}
			var rec capture.Record
			if err := json.Unmarshal(fw.Log, &rec); err != nil {
				continue
			}
			events <- Event{SSID: fw.SSID, Log: rec}
		}
	}()

	return events, errs
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
