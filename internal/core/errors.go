package core

import "errors"

var (
	// ErrUnknownSession marks an operation referencing a session absent
	// from the registry. Callers treat it as a benign race with a
	// concurrent disconnect, not a failure.
	ErrUnknownSession = errors.New("unknown session")

	// ErrRecipientAbsent marks a forward whose target is not present in
	// the room. The message is dropped and logged, never surfaced to the
	// sender: the recipient may simply have disconnected mid-negotiation.
	ErrRecipientAbsent = errors.New("recipient absent")

	// ErrBackpressure is returned by a SignalConnection whose send queue
	// is full.
	ErrBackpressure = errors.New("backpressure")

	// ErrConnClosed is returned by a SignalConnection that was already
	// closed.
	ErrConnClosed = errors.New("connection closed")
)
