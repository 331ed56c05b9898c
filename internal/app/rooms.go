package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/core"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/domain"
)

// room holds one room's membership: identity -> the set of that identity's
// sessions currently in the room (multi-device). gone is set, under mu,
// once the room has been emptied and unlinked from the table; a joiner that
// raced the delete sees it and retries against a fresh room.
type room struct {
	mu      sync.Mutex
	members map[domain.Identity]map[core.SessionID]struct{}
	gone    bool
}

func newRoom() *room {
	return &room{members: make(map[domain.Identity]map[core.SessionID]struct{})}
}

// sorted roster, excluding one identity. Callers hold r.mu.
func (r *room) rosterExcluding(skip domain.Identity) []domain.Identity {
	out := make([]domain.Identity, 0, len(r.members))
	for id := range r.members {
		if id == skip {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RoomInfo is a read-only view for APIs.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
}

// RoomTable owns every room. Rooms are created lazily on first join and
// deleted eagerly when the last member leaves: a room is listed here iff
// its member set is non-empty, so no empty room is ever observable.
//
// Locking: the table mutex guards only the map, each room guards its own
// member set, and no path ever holds two room mutexes at once. Deleting an
// emptied room takes the table mutex while holding that room's mutex; the
// join path never does the reverse, so the order cannot deadlock.
type RoomTable struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]*room
}

func NewRoomTable() *RoomTable {
	return &RoomTable{rooms: make(map[domain.RoomID]*room)}
}

func (t *RoomTable) getOrCreate(id domain.RoomID) *room {
	t.mu.Lock()
	defer t.mu.Unlock()
	rm, ok := t.rooms[id]
	if !ok {
		rm = newRoom()
		t.rooms[id] = rm
	}
	return rm
}

// SnapshotAndAdd inserts a joiner and returns the roster that existed just
// before, in one critical section per room: no concurrent join can be
// missing from, or duplicated in, another joiner's snapshot. The snapshot
// never contains the joiner's own identity. identityJoined reports whether
// this was the identity's first session in the room (the moment a JOIN
// event is due), mirroring Remove's identityLeft.
func (t *RoomTable) SnapshotAndAdd(id domain.RoomID, identity domain.Identity, sid core.SessionID) (snapshot []domain.Identity, identityJoined bool) {
	for {
		rm := t.getOrCreate(id)
		rm.mu.Lock()
		if rm.gone {
			rm.mu.Unlock()
			continue
		}
		snapshot = rm.rosterExcluding(identity)
		sids, ok := rm.members[identity]
		if !ok {
			sids = make(map[core.SessionID]struct{})
			rm.members[identity] = sids
			identityJoined = true
		}
		sids[sid] = struct{}{}
		rm.mu.Unlock()
		return snapshot, identityJoined
	}
}

// Remove drops one session from a room. identityLeft reports whether that
// was the identity's last session there (the moment a LEAVE event is due);
// deleted reports whether the room emptied and was removed from the table.
func (t *RoomTable) Remove(id domain.RoomID, identity domain.Identity, sid core.SessionID) (identityLeft, deleted bool) {
	t.mu.Lock()
	rm, ok := t.rooms[id]
	t.mu.Unlock()
	if !ok {
		return false, false
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	sids, ok := rm.members[identity]
	if !ok {
		return false, false
	}
	if _, ok := sids[sid]; !ok {
		return false, false
	}
	delete(sids, sid)
	if len(sids) > 0 {
		return false, false
	}
	delete(rm.members, identity)
	identityLeft = true
	if len(rm.members) == 0 {
		t.mu.Lock()
		if t.rooms[id] == rm {
			delete(t.rooms, id)
		}
		t.mu.Unlock()
		rm.gone = true
		deleted = true
		log.Info().Str("module", "app.rooms").Str("room", string(id)).Msg("room emptied and removed")
	}
	return identityLeft, deleted
}

// Membership returns the room's members with their sessions, or ok=false
// if the room does not exist.
func (t *RoomTable) Membership(id domain.RoomID) (map[domain.Identity][]core.SessionID, bool) {
	t.mu.Lock()
	rm, ok := t.rooms[id]
	t.mu.Unlock()
	if !ok {
		return nil, false
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	if rm.gone {
		return nil, false
	}
	out := make(map[domain.Identity][]core.SessionID, len(rm.members))
	for identity, sids := range rm.members {
		list := make([]core.SessionID, 0, len(sids))
		for sid := range sids {
			list = append(list, sid)
		}
		out[identity] = list
	}
	return out, true
}

// Has reports whether a room currently exists (i.e. has members).
func (t *RoomTable) Has(id domain.RoomID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.rooms[id]
	return ok
}

// List snapshots every live room for the HTTP surface.
func (t *RoomTable) List() []RoomInfo {
	t.mu.Lock()
	rooms := make(map[domain.RoomID]*room, len(t.rooms))
	for id, rm := range t.rooms {
		rooms[id] = rm
	}
	t.mu.Unlock()

	out := make([]RoomInfo, 0, len(rooms))
	for id, rm := range rooms {
		rm.mu.Lock()
		n := len(rm.members)
		rm.mu.Unlock()
		if n == 0 {
			continue
		}
		out = append(out, RoomInfo{ID: id, MemberCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
