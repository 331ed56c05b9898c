package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// SignalType tags a SignalingMessage. Negotiation payloads (OFFER, ANSWER,
// ICE_CANDIDATE, KEY_EXCHANGE, CALL_*) are relayed opaque; JOIN, LEAVE and
// USER_LIST are presence events emitted by the server itself.
type SignalType string

const (
	SignalJoin         SignalType = "JOIN"
	SignalLeave        SignalType = "LEAVE"
	SignalOffer        SignalType = "OFFER"
	SignalAnswer       SignalType = "ANSWER"
	SignalICECandidate SignalType = "ICE_CANDIDATE"
	SignalUserList     SignalType = "USER_LIST"
	SignalKeyExchange  SignalType = "KEY_EXCHANGE"
	SignalCallRequest  SignalType = "CALL_REQUEST"
	SignalCallAccepted SignalType = "CALL_ACCEPTED"
	SignalCallRejected SignalType = "CALL_REJECTED"
	SignalCallEnded    SignalType = "CALL_ENDED"
)

var ErrUnknownSignalType = errors.New("unknown signal type")

var signalTypes = map[SignalType]struct{}{
	SignalJoin:         {},
	SignalLeave:        {},
	SignalOffer:        {},
	SignalAnswer:       {},
	SignalICECandidate: {},
	SignalUserList:     {},
	SignalKeyExchange:  {},
	SignalCallRequest:  {},
	SignalCallAccepted: {},
	SignalCallRejected: {},
	SignalCallEnded:    {},
}

func (t SignalType) Valid() bool {
	_, ok := signalTypes[t]
	return ok
}

// SenderServer marks presence events originated by the coordinator itself.
const SenderServer = "server"

// SignalingMessage is the transport-agnostic envelope carried end-to-end.
// Payload is never interpreted here: it may be SDP text, an ICE candidate
// or key material. Sender is always overwritten by the coordinator with the
// authenticated identity of the originating session; an empty Recipient
// means room-wide.
type SignalingMessage struct {
	Sender        Identity        `json:"sender"`
	Recipient     Identity        `json:"recipient,omitempty"`
	Type          SignalType      `json:"type"`
	RoomID        RoomID          `json:"roomId,omitempty"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	UseEncryption *bool           `json:"useEncryption,omitempty"`
}

func (m *SignalingMessage) Validate() error {
	if !m.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSignalType, m.Type)
	}
	return nil
}

// RoomWide reports whether the message targets every member of its room.
func (m *SignalingMessage) RoomWide() bool {
	return m.Recipient == ""
}

// NewJoinEvent announces a freshly joined identity to the rest of the room.
func NewJoinEvent(joiner Identity, room RoomID) SignalingMessage {
	return SignalingMessage{Sender: joiner, Type: SignalJoin, RoomID: room}
}

// NewLeaveEvent announces that an identity left the room.
func NewLeaveEvent(leaver Identity, room RoomID) SignalingMessage {
	return SignalingMessage{Sender: leaver, Type: SignalLeave, RoomID: room}
}

// NewUserListEvent carries the roster that existed before the recipient
// joined. The payload is a JSON array of identities.
func NewUserListEvent(room RoomID, members []Identity) (SignalingMessage, error) {
	if members == nil {
		members = []Identity{}
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return SignalingMessage{}, fmt.Errorf("marshal roster: %w", err)
	}
	return SignalingMessage{
		Sender:  SenderServer,
		Type:    SignalUserList,
		RoomID:  room,
		Payload: raw,
	}, nil
}
