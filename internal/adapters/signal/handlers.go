package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/core"
	"github.com/NguyenLeDaiPhi/LapTrinhMang/internal/domain"
)

func (ctl *Controller) handleJoin(sid core.SessionID, c *wsConn, data []byte) {
	type joinPayload struct {
		Op     string `json:"op"`
		RoomID string `json:"roomId"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	roomID, err := domain.NewRoomID(p.RoomID)
	if err != nil {
		ctl.sendError(c, "bad_room_id")
		return
	}

	identity, err := ctl.Registry.IdentityOf(sid)
	if err != nil {
		return
	}
	if !ctl.Limiter.Allow(identity) {
		log.Warn().Str("module", "signal").Str("identity", string(identity)).Msg("join rate limited")
		ctl.sendError(c, "rate_limited")
		return
	}

	if _, err := ctl.Router.Join(sid, roomID); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("join failed")
		return
	}
}

func (ctl *Controller) handleForward(sid core.SessionID, c *wsConn, data []byte) {
	type forwardPayload struct {
		Op      string                  `json:"op"`
		Message domain.SignalingMessage `json:"message"`
	}
	var p forwardPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad forward payload")
		ctl.sendError(c, "bad_payload")
		return
	}
	msg := p.Message
	if err := msg.Validate(); err != nil {
		ctl.sendError(c, "bad_signal_type")
		return
	}

	if _, err := ctl.Router.Forward(sid, msg); err != nil {
		// Unknown sessions and missing rooms are benign races with a
		// concurrent disconnect; nothing to tell the sender.
		if !errors.Is(err, core.ErrUnknownSession) {
			log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("forward failed")
		}
	}
}

func (ctl *Controller) handleLeave(sid core.SessionID, c *wsConn) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Router.Leave(sid)
	ctl.sendJSON(c, map[string]any{"type": "left"})
}
