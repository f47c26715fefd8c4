package pairing

import "errors"

// Pairing connection errors.
var (
	// Header codec errors
	ErrHeaderTooShort       = errors.New("pairing: data too short for packet header")
	ErrInvalidVersion       = errors.New("pairing: unsupported protocol version")
	ErrInvalidPacketType    = errors.New("pairing: invalid packet type")
	ErrInvalidPayloadLength = errors.New("pairing: payload length out of range")

	// PeerInfo codec errors
	ErrPeerInfoTooShort    = errors.New("pairing: data too short for peer info")
	ErrPeerInfoTooLarge    = errors.New("pairing: peer info data exceeds maximum size")
	ErrInvalidPeerInfoType = errors.New("pairing: invalid peer info type")

	// Connection errors
	ErrUnexpectedPacket = errors.New("pairing: unexpected packet type for current state")
	ErrAlreadyPaired    = errors.New("pairing: connection already used for a pairing attempt")
	ErrConnectionClosed = errors.New("pairing: connection closed")
)
