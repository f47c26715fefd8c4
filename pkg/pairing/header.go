package pairing

import (
	"encoding/binary"
)

// Wire format constants.
const (
	// ProtocolVersion is the only supported pairing protocol version.
	ProtocolVersion uint8 = 1

	// HeaderSize is the encoded packet header size in bytes.
	// Version (1) + Type (1) + Payload length (4) = 6
	HeaderSize = 6

	// MaxPayloadSize is the maximum packet payload size in bytes.
	MaxPayloadSize = 16384
)

// PacketHeader represents the pairing packet header. The payload length is
// big-endian on the wire; a payload is always present, so a length of zero
// is invalid.
type PacketHeader struct {
	// Version is the protocol version (currently always ProtocolVersion).
	Version uint8

	// Type identifies the payload that follows the header.
	Type PacketType

	// PayloadLen is the length of the payload that follows, in bytes.
	PayloadLen uint32
}

// Encode serializes the packet header to bytes.
func (h *PacketHeader) Encode() []byte {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf
}

// EncodeTo serializes the packet header into the provided buffer.
// The buffer must be at least HeaderSize bytes long.
// Returns the number of bytes written.
func (h *PacketHeader) EncodeTo(buf []byte) int {
	buf[0] = h.Version
	buf[1] = uint8(h.Type)
	binary.BigEndian.PutUint32(buf[2:], h.PayloadLen)
	return HeaderSize
}

// Decode deserializes a packet header from bytes and validates it.
// Returns the number of bytes consumed from data.
func (h *PacketHeader) Decode(data []byte) (int, error) {
	if len(data) < HeaderSize {
		return 0, ErrHeaderTooShort
	}

	h.Version = data[0]
	if h.Version != ProtocolVersion {
		return 0, ErrInvalidVersion
	}

	h.Type = PacketType(data[1])
	if !h.Type.IsValid() {
		return 0, ErrInvalidPacketType
	}

	h.PayloadLen = binary.BigEndian.Uint32(data[2:])
	if h.PayloadLen == 0 || h.PayloadLen > MaxPayloadSize {
		return 0, ErrInvalidPayloadLength
	}

	return HeaderSize, nil
}
