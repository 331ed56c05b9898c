package core

type SessionID string

// SessionState tracks one channel session through its lifecycle:
// CONNECTED (no room) -> IN_ROOM -> CONNECTED (room cleared) -> RETIRED.
// RETIRED is terminal; operations on a retired session are no-ops so that
// duplicate disconnect signals stay harmless.
type SessionState int

const (
	SessionConnected SessionState = iota
	SessionInRoom
	SessionRetired
)

func (s SessionState) String() string {
	switch s {
	case SessionConnected:
		return "connected"
	case SessionInRoom:
		return "in_room"
	case SessionRetired:
		return "retired"
	default:
		return "unknown"
	}
}
