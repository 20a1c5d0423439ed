package hub

import (
	"sort"
	"sync"

	"netspectra/internal/frame"
)

// Registry is the hub's in-memory index of live sessions, protected
// by a single mutex. Invariants it maintains (spec §3 "Registry"):
//
//   - R1: every live connection has exactly one Session entry.
//   - R2: SSID is unique and strictly increasing, even across
//     registrations that are later rolled back by RegisterAndHello.
//   - R3: ViewerSnapshot sees a consistent snapshot of connection
//     handles taken under the lock — a viewer added after a
//     broadcast's snapshot was taken does not receive it, and a viewer
//     removed after the snapshot may still be written to, with any
//     write error treated as "this viewer is gone".
type Registry struct {
	mu       sync.Mutex
	sessions map[uint32]*Session
	nextSSID uint32
}

// NewRegistry returns an empty registry with SSID allocation starting
// at 1 (0 is reserved for "unassigned").
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[uint32]*Session),
		nextSSID: 1,
	}
}

// RegisterAndHello allocates the next SSID, makes sess visible to
// fan-out, and calls send(ssid) — all under the registry lock. This
// guarantees the ordering spec §5 requires: SERVER_HELLO precedes
// every forwarded record a viewer could receive, because the session
// is not visible to a concurrent ViewerSnapshot until send has
// already been attempted. If send fails, the session is rolled back
// but the SSID is never returned to the pool (spec §4.3).
func (r *Registry) RegisterAndHello(sess *Session, send func(ssid uint32) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ssid := r.nextSSID
	r.nextSSID++
	sess.SSID = ssid
	r.sessions[ssid] = sess

	if err := send(ssid); err != nil {
		delete(r.sessions, ssid)
		return err
	}
	return nil
}

// Remove deletes ssid's session entry, if present. Removing an
// already-absent SSID is a no-op (idempotent teardown).
func (r *Registry) Remove(ssid uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, ssid)
}

// ViewerSnapshot returns the connection handles of every
// currently-registered viewer. The caller releases the registry lock
// before writing to these handles; a handle may have been closed and
// removed by the time the write is attempted, and the caller must
// treat any write error as "this viewer is gone" (spec §5).
func (r *Registry) ViewerSnapshot() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.Role == frame.RoleViewer {
			out = append(out, s)
		}
	}
	return out
}

// SessionInfo is the admin-API-facing view of one session.
type SessionInfo struct {
	SSID uint32     `json:"ssid"`
	Role frame.Role `json:"role"`
	Peer string     `json:"peer"`
}

// Snapshot returns the current sessions for operator introspection
// (internal/adminapi), ordered by SSID.
func (r *Registry) Snapshot() []SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, SessionInfo{SSID: s.SSID, Role: s.Role, Peer: s.Peer})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SSID < out[j].SSID })
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
