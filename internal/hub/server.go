// Package hub implements the aggregation hub (C3): it accepts
// connections from sniffers and viewers, assigns each a session id,
// and fans each sniffer's traffic records out to every attached
// viewer.
package hub

import (
	"io"
	"log"
	"net"

	"netspectra/internal/frame"
)

// Server listens on one TCP port and dispatches one worker goroutine
// per accepted connection (spec §5, "one worker per connection,
// parallel").
type Server struct {
	Registry *Registry

	listener net.Listener
}

// NewServer returns a Server with an empty registry.
func NewServer() *Server {
	return &Server{Registry: NewRegistry()}
}

// ListenAndServe binds addr and accepts connections until the
// listener is closed or Accept returns a fatal error.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	log.Printf("hub: listening on %s", addr)
	return s.Serve(ln)
}

// Serve accepts connections on an already-bound listener until it
// closes or Accept returns a fatal error. Exposed separately from
// ListenAndServe so callers (and tests) that need the bound address
// can Listen themselves first.
func (s *Server) Serve(ln net.Listener) error {
	s.listener = ln
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Addr returns the listener's bound address, or nil until
// ListenAndServe or Serve has been called.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// connReader adapts a net.Conn to frame.Reader by looping over short
// reads via io.ReadFull (spec §4.2, "read exactly N bytes").
type connReader struct{ conn net.Conn }

func (c connReader) ReadFull(buf []byte) error {
	_, err := io.ReadFull(c.conn, buf)
	return err
}

// handleConn performs the strict CLIENT_HELLO handshake and then
// dispatches to the role-specific loop (spec §4.3).
func (s *Server) handleConn(conn net.Conn) {
	peer := conn.RemoteAddr().String()
	cr := connReader{conn: conn}

	f, err := frame.ReadFrame(cr)
	if err != nil || f.Type != frame.TypeClientHello {
		conn.Close()
		return
	}

	hello, err := frame.DecodeClientHello(f.Payload)
	if err != nil {
		conn.Close()
		return
	}

	role := hello.Role()
	sess := NewSession(conn, peer, role)

	err = s.Registry.RegisterAndHello(sess, func(ssid uint32) error {
		payload, encErr := frame.EncodeServerHello(frame.ServerHelloPayload{
			SSID:       ssid,
			IP:         hostOf(peer),
			Registered: true,
		})
		if encErr != nil {
			return encErr
		}
		return sess.WriteFrame(frame.TypeServerHello, payload)
	})
	if err != nil {
		log.Printf("hub: SERVER_HELLO failed for %s: %v", peer, err)
		conn.Close()
		return
	}

	ssid := sess.SSID
	log.Printf("hub: registered ssid=%d role=%s peer=%s", ssid, role, peer)

	defer func() {
		s.Registry.Remove(ssid)
		conn.Close()
		log.Printf("hub: session ssid=%d closed", ssid)
	}()

	switch role {
	case frame.RoleSniffer:
		s.snifferLoop(cr, sess)
	case frame.RoleViewer:
		viewerLoop(conn)
	}
}

// snifferLoop repeatedly reads frames from a sniffer connection and
// fans out every TRAFFIC_LOG to registered viewers. It returns on
// connection close or fatal framing error, leaving viewers untouched
// (spec §4.3, "Sniffer loop").
func (s *Server) snifferLoop(cr connReader, sess *Session) {
	for {
		f, err := frame.ReadFrame(cr)
		if err != nil {
			return
		}
		if f.Type != frame.TypeTrafficLog {
			continue
		}
		s.fanOut(sess.SSID, f.Payload)
	}
}

// fanOut delivers one sniffer record to every viewer registered at
// the moment the snapshot was taken. The snapshot is taken under the
// registry lock and released before writing (spec §5, "higher
// throughput" option): a slow viewer stalls only its own write, never
// the sniffer, and a send failure marks only that viewer for removal
// (spec invariant P8, "isolation").
func (s *Server) fanOut(ssid uint32, log_ []byte) {
	payload, err := frame.EncodeForwardLog(ssid, log_)
	if err != nil {
		return
	}

	for _, v := range s.Registry.ViewerSnapshot() {
		if err := v.WriteFrame(frame.TypeForwardLog, payload); err != nil {
			s.Registry.Remove(v.SSID)
			v.Close()
		}
	}
}

// viewerLoop blocks on the connection until it observes closure or an
// error. A viewer never sends anything after CLIENT_HELLO; this loop
// exists purely as a liveness sentinel — all outbound traffic to
// viewers comes from sniffer workers via fanOut (spec §9, "Viewer
// idle loop").
func viewerLoop(conn net.Conn) {
	buf := make([]byte, 1)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

// hostOf strips the port from a "host:port" peer address; used as the
// "ip" field of SERVER_HELLO.
func hostOf(peer string) string {
	host, _, err := net.SplitHostPort(peer)
	if err != nil {
		return peer
	}
	return host
}
