// Package pairing implements the ADB wireless-pairing connection.
//
// A pairing connection runs over any reliable duplex byte stream (normally a
// TLS-wrapped TCP connection to the device's pairing port) and performs two
// phases: the password-authenticated key exchange, then a mutual exchange of
// encrypted peer-info blobs identifying each side to the other.
//
// The package provides:
//   - Packet header encoding/decoding for the pairing wire format
//   - PeerInfo encoding/decoding
//   - Connection, which drives one complete pairing over a net.Conn
//   - An in-memory connection pair (Pipe) for tests and examples
package pairing

// PacketType identifies the payload carried by a pairing packet.
type PacketType uint8

const (
	// PacketSpake2Msg carries the key-exchange message, in the clear.
	PacketSpake2Msg PacketType = 0

	// PacketPeerInfo carries a peer-info blob encrypted by the session
	// cipher.
	PacketPeerInfo PacketType = 1
)

// String returns a human-readable name for the packet type.
func (t PacketType) String() string {
	switch t {
	case PacketSpake2Msg:
		return "Spake2Msg"
	case PacketPeerInfo:
		return "PeerInfo"
	default:
		return "Unknown"
	}
}

// IsValid returns true if the packet type is a defined value.
func (t PacketType) IsValid() bool {
	return t <= PacketPeerInfo
}

// State represents the pairing connection state machine.
type State int

const (
	// StateExchangingMsgs means the key-exchange messages are in flight.
	StateExchangingMsgs State = iota

	// StateExchangingPeerInfo means the cipher is established and the
	// encrypted peer-info blobs are in flight.
	StateExchangingPeerInfo

	// StateReady means pairing completed and the peer's info was
	// authenticated.
	StateReady

	// StateFailed means pairing aborted; the connection cannot be reused.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateExchangingMsgs:
		return "ExchangingMsgs"
	case StateExchangingPeerInfo:
		return "ExchangingPeerInfo"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}
