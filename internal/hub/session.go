package hub

import (
	"net"
	"sync"

	"netspectra/internal/frame"
)

// Session is a hub-local record for one accepted connection: its
// transport handle, assigned SSID, peer address, and role. Writes to
// the underlying connection are serialized through writeMu so that a
// fan-out worker and the owning worker never interleave bytes on the
// wire (spec §5, "Shared resources").
type Session struct {
	SSID uint32
	Peer string
	Role frame.Role

	conn    net.Conn
	writeMu sync.Mutex
}

// NewSession wraps conn for a not-yet-registered client; SSID is
// filled in by Registry.RegisterAndHello.
func NewSession(conn net.Conn, peer string, role frame.Role) *Session {
	return &Session{Peer: peer, Role: role, conn: conn}
}

// WriteFrame encodes and sends one frame over this session's
// connection, serialized against any concurrent fan-out write.
func (s *Session) WriteFrame(typ uint8, payload []byte) error {
	buf, err := frame.Encode(typ, payload)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err = s.conn.Write(buf)
	return err
}

// Close closes the underlying connection. Safe to call more than
// once; subsequent calls return a harmless "already closed" error
// which callers ignore.
func (s *Session) Close() error {
	return s.conn.Close()
}
