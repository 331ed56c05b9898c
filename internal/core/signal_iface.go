package core

// Frame is an encoded signaling message ready for the wire.
type Frame []byte

// SignalConnection abstracts a single client's messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
