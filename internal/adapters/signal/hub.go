package signal

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/core"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/domain"
)

// Hub is the live connection table and the router's core.MessageBus.
// Delivery here means enqueueing onto a session's send channel; a full
// queue drops the frame for that session and is logged, never waited on.
type Hub struct {
	mu    sync.RWMutex
	conns map[core.SessionID]*wsConn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[core.SessionID]*wsConn)}
}

func (h *Hub) Register(sid core.SessionID, c *wsConn) {
	h.mu.Lock()
	h.conns[sid] = c
	h.mu.Unlock()
}

func (h *Hub) Unregister(sid core.SessionID) {
	h.mu.Lock()
	delete(h.conns, sid)
	h.mu.Unlock()
}

func (h *Hub) Send(sid core.SessionID, f core.Frame) error {
	h.mu.RLock()
	c, ok := h.conns[sid]
	h.mu.RUnlock()
	if !ok {
		return core.ErrUnknownSession
	}
	return c.TrySend(f)
}

func (h *Hub) Publish(room domain.RoomID, sids []core.SessionID, f core.Frame) {
	sent := 0
	for _, sid := range sids {
		if err := h.Send(sid, f); err != nil {
			log.Warn().Err(err).Str("module", "signal.hub").Str("room", string(room)).Str("sid", string(sid)).Msg("publish dropped frame")
			continue
		}
		sent++
	}
	log.Debug().Str("module", "signal.hub").Str("room", string(room)).Int("sent_to", sent).Int("dropped", len(sids)-sent).Msg("publish result")
}

// CloseAll tears down every live connection, for shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	conns := make([]*wsConn, 0, len(h.conns))
	for sid, c := range h.conns {
		conns = append(conns, c)
		delete(h.conns, sid)
	}
	h.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}
