package auth

import (
	"math"
	"sync"

	"github.com/backkem/adbpair/pkg/crypto"
)

// Session key derivation constants.
const (
	// SessionKeySize is the AES-128 session key length in bytes.
	SessionKeySize = 16

	// sessionKeyInfo is the HKDF info string for session key derivation.
	// The trailing NUL is part of the derivation input: adbd derives from
	// the C string constant including its terminator, 33 bytes in total.
	sessionKeyInfo = "adb pairing_auth aes-128-gcm key\x00"
)

// Cipher is an established pairing session: AES-128-GCM keyed from the
// agreed key material, with an independent sequence counter per direction.
//
// Every successful Encrypt and Decrypt advances its counter by one, and the
// counter feeds the nonce, so both peers must encrypt and decrypt in
// lockstep. Counters never advance on failure. Cipher is safe for
// concurrent use.
type Cipher struct {
	aead *crypto.AESGCM

	encSeq uint64
	decSeq uint64

	mu sync.Mutex
}

// NewCipher derives the session key from the agreed key material and
// returns a cipher with both sequence counters at zero.
//
// Two ciphers created from the same key material produce and accept
// identical message streams.
func NewCipher(keyMaterial []byte) (*Cipher, error) {
	if len(keyMaterial) == 0 {
		return nil, ErrKeyMaterialEmpty
	}

	key, err := crypto.HKDFSHA256(keyMaterial, nil, []byte(sessionKeyInfo), SessionKeySize)
	if err != nil {
		return nil, ErrKeyDerivation
	}
	aead, err := crypto.NewAESGCM(key)
	if err != nil {
		return nil, ErrKeyDerivation
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under the next send-sequence nonce and returns
// the ciphertext with the 16-byte authentication tag appended.
//
// The send counter advances only on success. At the counter maximum the
// cipher refuses to encrypt rather than reuse a nonce.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.encSeq == math.MaxUint64 {
		return nil, ErrSequenceExhausted
	}

	nonce := crypto.BuildSequenceNonce(c.encSeq)
	ciphertext, err := c.aead.Seal(nonce, plaintext, nil)
	if err != nil {
		return nil, ErrEncryptionFailed
	}

	c.encSeq++
	return ciphertext, nil
}

// Decrypt opens ciphertext under the next receive-sequence nonce.
//
// Every failure mode reports ErrDecryptionFailed; callers learn nothing
// about whether the key, the payload, or the position in the stream was
// wrong. The receive counter is unchanged on failure, so the message at the
// current position can still be decrypted afterward.
func (c *Cipher) Decrypt(ciphertext []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.decSeq == math.MaxUint64 {
		return nil, ErrSequenceExhausted
	}

	nonce := crypto.BuildSequenceNonce(c.decSeq)
	plaintext, err := c.aead.Open(nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	c.decSeq++
	return plaintext, nil
}
