// Nonce construction for the pairing cipher.

package crypto

import (
	"encoding/binary"
)

// Sequence nonce constants.
const (
	// SequenceNonceSize is the AES-GCM nonce length in bytes.
	SequenceNonceSize = 12

	// SequenceSize is the portion of the nonce occupied by the sequence
	// counter, in bytes.
	SequenceSize = 8
)

// BuildSequenceNonce constructs a 12-byte AES-GCM nonce from a message
// sequence counter.
//
// Format: Sequence (8 bytes LE) || Zero (4 bytes)
//
// The sender and receiver each hold an independent counter per direction and
// advance it by one per successful operation, so the nonce is unique for the
// lifetime of a key as long as the counter is never reset or rewound.
func BuildSequenceNonce(sequence uint64) []byte {
	nonce := make([]byte, SequenceNonceSize)

	// Bytes 0-7: sequence counter (little-endian)
	binary.LittleEndian.PutUint64(nonce[0:SequenceSize], sequence)

	// Bytes 8-11 remain zero

	return nonce
}
