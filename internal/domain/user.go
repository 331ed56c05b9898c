// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
)

const (
	MaxIdentityLen = 36
	MaxRoomIDLen   = 36
)

var (
	ErrIdentityTooLong = errors.New("identity too long")
	ErrIdentityEmpty   = errors.New("identity empty")
	ErrRoomIDTooLong   = errors.New("room id too long")
	ErrRoomIDEmpty     = errors.New("room id empty")
)

// Identity is an externally verified principal string. The coordinator
// never creates or destroys identities, it only observes them.
type Identity string

// RoomID names a group of identities currently negotiating with each other.
type RoomID string

// NewIdentity avoids raw casts in adapters and keeps validation obvious.
func NewIdentity(raw string) (Identity, error) {
	if len(raw) == 0 {
		return "", ErrIdentityEmpty
	}
	if len(raw) > MaxIdentityLen {
		return "", ErrIdentityTooLong
	}
	return Identity(raw), nil
}

func NewRoomID(raw string) (RoomID, error) {
	if len(raw) == 0 {
		return "", ErrRoomIDEmpty
	}
	if len(raw) > MaxRoomIDLen {
		return "", ErrRoomIDTooLong
	}
	return RoomID(raw), nil
}
