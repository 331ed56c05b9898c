package app

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/core"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/domain"
)

type sessionEntry struct {
	Identity  domain.Identity
	RoomID    domain.RoomID // empty until joined
	CreatedAt time.Time
}

func (e *sessionEntry) state() core.SessionState {
	if e.RoomID != "" {
		return core.SessionInRoom
	}
	return core.SessionConnected
}

// Registry is the authoritative identity<->session<->room binding.
// Retired sessions are removed from the table entirely, which is what makes
// every later operation on them a cheap no-op.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[core.SessionID]*sessionEntry)}
}

// Admit registers a new session for an already-verified identity. An
// identity may hold any number of concurrent sessions (multi-device), each
// with its own id.
func (r *Registry) Admit(identity domain.Identity) core.SessionID {
	sid := core.SessionID(uuid.NewString())
	r.mu.Lock()
	r.sessions[sid] = &sessionEntry{Identity: identity, CreatedAt: time.Now()}
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("identity", string(identity)).Msg("admitted session")
	return sid
}

// IdentityOf resolves the authenticated identity behind a session.
func (r *Registry) IdentityOf(sid core.SessionID) (domain.Identity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return "", core.ErrUnknownSession
	}
	return e.Identity, nil
}

// CurrentRoom returns the room a session is bound to, if any.
func (r *Registry) CurrentRoom(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.RoomID == "" {
		return "", false
	}
	return e.RoomID, true
}

// State reports the session's lifecycle state. Unknown sessions are retired.
func (r *Registry) State(sid core.SessionID) core.SessionState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return core.SessionRetired
	}
	return e.state()
}

// BindRoom records the room a session has joined. Rebinding the same room
// is a no-op; switching rooms is the router's job (leave old, then bind),
// so by the time this runs the old binding is already cleared.
func (r *Registry) BindRoom(sid core.SessionID, room domain.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return core.ErrUnknownSession
	}
	if e.RoomID == room {
		return nil
	}
	e.RoomID = room
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("bound room")
	return nil
}

// ClearRoom atomically takes the session's room binding, returning the
// identity and the room it was bound to. The second of two racing teardown
// paths gets ok=false and stops, which is how leave and disconnect stay
// idempotent against each other.
func (r *Registry) ClearRoom(sid core.SessionID) (domain.Identity, domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.RoomID == "" {
		return "", "", false
	}
	room := e.RoomID
	e.RoomID = ""
	return e.Identity, room, true
}

// Retire removes the session and returns its last known identity and room
// for the caller to clean up. Retiring an unknown or already-retired
// session returns ok=false rather than failing, because disconnect
// notifications race with explicit leaves.
func (r *Registry) Retire(sid core.SessionID) (domain.Identity, domain.RoomID, bool) {
	r.mu.Lock()
	e, ok := r.sessions[sid]
	if !ok {
		r.mu.Unlock()
		return "", "", false
	}
	delete(r.sessions, sid)
	r.mu.Unlock()
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("identity", string(e.Identity)).Msg("retired session")
	return e.Identity, e.RoomID, true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
