package core

import "github.com/NguyenLeDaiPhi/LapTrinhMang/internal/domain"

// MessageBus is the delivery side of the coordinator. Routing resolves
// recipients first, then hands the already-addressed frames here; the bus
// owns delivery, the router only owns the routing decision.
// Implementations must not block past enqueueing.
type MessageBus interface {
	// Send delivers a frame to a single session. A missing or slow
	// session is the bus's problem to report, never to block on.
	Send(sid SessionID, f Frame) error
	// Publish fans a frame out to the given sessions of a room.
	Publish(room domain.RoomID, sids []SessionID, f Frame)
}
