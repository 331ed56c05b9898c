package app

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/core"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/domain"
)

// Router coordinates room membership, presence broadcasts and message
// delivery resolution. It owns the routing decision only: once recipients
// are resolved the encoded frame is handed to the bus and never waited on.
type Router struct {
	registry *Registry
	rooms    *RoomTable
	bus      core.MessageBus
}

func NewRouter(registry *Registry, rooms *RoomTable, bus core.MessageBus) *Router {
	return &Router{registry: registry, rooms: rooms, bus: bus}
}

// Join adds the session's identity to a room and returns the roster that
// existed before the add. Prior members get a JOIN event the first time an
// identity enters the room (additional devices are silent); the joiner alone
// gets the pre-join roster as a USER_LIST. A session already in another
// room is taken through the full leave path first, so the single-room
// invariant holds and the old room sees its LEAVE.
func (r *Router) Join(sid core.SessionID, roomID domain.RoomID) ([]domain.Identity, error) {
	identity, err := r.registry.IdentityOf(sid)
	if err != nil {
		return nil, err
	}

	if current, ok := r.registry.CurrentRoom(sid); ok {
		if current == roomID {
			// Rejoining the current room is a no-op; just resend the roster.
			snapshot := r.currentRosterExcluding(roomID, identity)
			r.sendRoster(sid, roomID, snapshot)
			return snapshot, nil
		}
		r.Leave(sid)
	}

	if err := r.registry.BindRoom(sid, roomID); err != nil {
		return nil, err
	}
	snapshot, identityJoined := r.rooms.SnapshotAndAdd(roomID, identity, sid)
	if _, err := r.registry.IdentityOf(sid); err != nil {
		// Session retired while we were adding; undo so the room cannot
		// keep a member whose disconnect cleanup already ran.
		r.finishRemoval(sid, identity, roomID)
		return nil, core.ErrUnknownSession
	}

	log.Info().Str("module", "app.router").Str("sid", string(sid)).Str("identity", string(identity)).Str("room", string(roomID)).Msg("joined room")

	r.sendRoster(sid, roomID, snapshot)

	// Announce only the identity's first session in the room; a second
	// device adds no new identity, and LEAVE is gated the same way on the
	// last one out, so every JOIN is paired with exactly one LEAVE.
	if identityJoined && len(snapshot) > 0 {
		event := domain.NewJoinEvent(identity, roomID)
		if frame, err := encode(event); err == nil {
			r.dispatch(roomID, identity, frame)
		}
	}
	return snapshot, nil
}

// Forward relays a negotiation message to its recipient(s) in the sender's
// current room. The sender field is always overwritten with the session's
// authenticated identity; whatever the client claimed is discarded. An
// absent recipient is a normal race and drops silently. Returns the
// identities the routing decision selected.
func (r *Router) Forward(sid core.SessionID, msg domain.SignalingMessage) ([]domain.Identity, error) {
	identity, err := r.registry.IdentityOf(sid)
	if err != nil {
		return nil, err
	}
	roomID, ok := r.registry.CurrentRoom(sid)
	if !ok {
		return nil, fmt.Errorf("%w: session not in a room", core.ErrUnknownSession)
	}

	// Trust boundary: sender and room come from the session, never the payload.
	msg.Sender = identity
	msg.RoomID = roomID

	members, ok := r.rooms.Membership(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: session not in a room", core.ErrUnknownSession)
	}
	recipients := computeRecipients(members, identity, msg.Recipient)
	if len(recipients) == 0 {
		if !msg.RoomWide() {
			log.Debug().Err(core.ErrRecipientAbsent).Str("module", "app.router").Str("sender", string(identity)).Str("recipient", string(msg.Recipient)).Str("room", string(roomID)).Msg("dropping forward")
		}
		return nil, nil
	}

	frame, err := encode(msg)
	if err != nil {
		return nil, err
	}
	delivered := make([]domain.Identity, 0, len(recipients))
	var sids []core.SessionID
	for rid, ss := range recipients {
		delivered = append(delivered, rid)
		sids = append(sids, ss...)
	}
	if msg.RoomWide() {
		r.bus.Publish(roomID, sids, frame)
	} else {
		for _, target := range sids {
			if err := r.bus.Send(target, frame); err != nil {
				log.Warn().Err(err).Str("module", "app.router").Str("sid", string(target)).Msg("direct send dropped")
			}
		}
	}
	return delivered, nil
}

// Leave removes the session's identity from its current room, broadcasts
// the LEAVE to whoever remains, and clears the binding. A session with no
// current room is a no-op.
func (r *Router) Leave(sid core.SessionID) {
	identity, roomID, ok := r.registry.ClearRoom(sid)
	if !ok {
		return
	}
	r.finishRemoval(sid, identity, roomID)
}

// HandleDisconnect is the transport layer's close notification: leave plus
// retire. Safe to call concurrently with, or instead of, an explicit
// Leave; whichever runs second finds nothing left to remove.
func (r *Router) HandleDisconnect(sid core.SessionID) {
	identity, roomID, ok := r.registry.Retire(sid)
	if !ok {
		return
	}
	if roomID == "" {
		return
	}
	r.finishRemoval(sid, identity, roomID)
}

// RoomList exposes the live rooms for the HTTP surface.
func (r *Router) RoomList() []RoomInfo {
	return r.rooms.List()
}

func (r *Router) finishRemoval(sid core.SessionID, identity domain.Identity, roomID domain.RoomID) {
	identityLeft, deleted := r.rooms.Remove(roomID, identity, sid)
	if !identityLeft {
		return
	}
	log.Info().Str("module", "app.router").Str("sid", string(sid)).Str("identity", string(identity)).Str("room", string(roomID)).Msg("left room")
	if deleted {
		return
	}
	event := domain.NewLeaveEvent(identity, roomID)
	if frame, err := encode(event); err == nil {
		r.dispatch(roomID, identity, frame)
	}
}

func (r *Router) sendRoster(sid core.SessionID, roomID domain.RoomID, members []domain.Identity) {
	roster, err := domain.NewUserListEvent(roomID, members)
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Msg("building roster")
		return
	}
	frame, err := encode(roster)
	if err != nil {
		return
	}
	if err := r.bus.Send(sid, frame); err != nil {
		log.Warn().Err(err).Str("module", "app.router").Str("sid", string(sid)).Msg("roster send dropped")
	}
}

// dispatch publishes a presence frame room-wide, excluding the sender.
func (r *Router) dispatch(roomID domain.RoomID, sender domain.Identity, frame core.Frame) {
	members, ok := r.rooms.Membership(roomID)
	if !ok {
		return
	}
	recipients := computeRecipients(members, sender, "")
	var sids []core.SessionID
	for _, ss := range recipients {
		sids = append(sids, ss...)
	}
	if len(sids) == 0 {
		return
	}
	r.bus.Publish(roomID, sids, frame)
}

// computeRecipients is the pure routing decision: given a room's
// membership, the authenticated sender and the requested recipient (empty
// for room-wide), it selects who gets the message. The sender is never
// among them.
func computeRecipients(members map[domain.Identity][]core.SessionID, sender, recipient domain.Identity) map[domain.Identity][]core.SessionID {
	out := make(map[domain.Identity][]core.SessionID)
	if recipient != "" {
		if recipient == sender {
			return out
		}
		if sids, ok := members[recipient]; ok {
			out[recipient] = sids
		}
		return out
	}
	for identity, sids := range members {
		if identity == sender {
			continue
		}
		out[identity] = sids
	}
	return out
}

func (r *Router) currentRosterExcluding(roomID domain.RoomID, identity domain.Identity) []domain.Identity {
	members, ok := r.rooms.Membership(roomID)
	if !ok {
		return []domain.Identity{}
	}
	snapshot := make([]domain.Identity, 0, len(members))
	for id := range members {
		if id == identity {
			continue
		}
		snapshot = append(snapshot, id)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i] < snapshot[j] })
	return snapshot
}

func encode(msg domain.SignalingMessage) (core.Frame, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Msg("encode signaling message")
		return nil, err
	}
	return core.Frame(b), nil
}
