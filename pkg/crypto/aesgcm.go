// AES-GCM implementation for the pairing protocol.
// The pairing cipher uses AES-128-GCM as defined in NIST 800-38D with:
//   - Key length: 128 bits (16 bytes)
//   - Tag length: 128 bits (16 bytes)
//   - Nonce length: 12 bytes

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
)

// AES-GCM parameters.
const (
	// AESGCMKeySize is the AES-128 key size in bytes.
	AESGCMKeySize = 16

	// AESGCMTagSize is the authentication tag size in bytes.
	AESGCMTagSize = 16

	// AESGCMNonceSize is the nonce size in bytes.
	AESGCMNonceSize = 12
)

// Errors
var (
	ErrAESGCMInvalidKeySize     = errors.New("aesgcm: invalid key size, must be 16 bytes")
	ErrAESGCMInvalidNonceSize   = errors.New("aesgcm: invalid nonce size, must be 12 bytes")
	ErrAESGCMCiphertextTooShort = errors.New("aesgcm: ciphertext too short")
	ErrAESGCMAuthFailed         = errors.New("aesgcm: message authentication failed")
)

// AESGCM represents an AES-128-GCM cipher instance.
type AESGCM struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-128-GCM cipher.
// The key must be exactly 16 bytes (128 bits).
func NewAESGCM(key []byte) (*AESGCM, error) {
	if len(key) != AESGCMKeySize {
		return nil, ErrAESGCMInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &AESGCM{aead: aead}, nil
}

// NonceSize returns the required nonce size for this cipher.
func (c *AESGCM) NonceSize() int {
	return AESGCMNonceSize
}

// TagSize returns the authentication tag size for this cipher.
func (c *AESGCM) TagSize() int {
	return AESGCMTagSize
}

// Seal encrypts and authenticates plaintext with associated data.
//
// Parameters:
//   - nonce: 12-byte nonce (must be unique for each encryption with the same key)
//   - plaintext: data to encrypt
//   - aad: additional authenticated data (not encrypted, but authenticated)
//
// Returns ciphertext || tag (plaintext length + 16 bytes for tag).
func (c *AESGCM) Seal(nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != AESGCMNonceSize {
		return nil, ErrAESGCMInvalidNonceSize
	}

	return c.aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open decrypts and verifies ciphertext with associated data.
//
// Parameters:
//   - nonce: the 12-byte nonce used during encryption
//   - ciphertext: ciphertext || tag as produced by Seal
//   - aad: additional authenticated data supplied during encryption
//
// Returns the recovered plaintext, or ErrAESGCMAuthFailed if the tag does
// not verify. Verification failure reveals nothing about the cause (wrong
// key, corrupted data, or wrong nonce all fail identically).
func (c *AESGCM) Open(nonce, ciphertext, aad []byte) ([]byte, error) {
	if len(nonce) != AESGCMNonceSize {
		return nil, ErrAESGCMInvalidNonceSize
	}

	if len(ciphertext) < AESGCMTagSize {
		return nil, ErrAESGCMCiphertextTooShort
	}

	plaintext, err := c.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrAESGCMAuthFailed
	}

	return plaintext, nil
}

// AESGCM128Encrypt is a convenience function for one-shot encryption.
func AESGCM128Encrypt(key, nonce, plaintext, aad []byte) ([]byte, error) {
	gcm, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, plaintext, aad)
}

// AESGCM128Decrypt is a convenience function for one-shot decryption.
func AESGCM128Decrypt(key, nonce, ciphertext, aad []byte) ([]byte, error) {
	gcm, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nonce, ciphertext, aad)
}
