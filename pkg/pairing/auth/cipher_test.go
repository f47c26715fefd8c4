package auth

import (
	"bytes"
	"math"
	"testing"
)

func newTestCipher(t *testing.T, material []byte) *Cipher {
	t.Helper()
	c, err := NewCipher(material)
	if err != nil {
		t.Fatalf("NewCipher failed: %v", err)
	}
	return c
}

func TestNewCipherEmptyMaterial(t *testing.T) {
	if _, err := NewCipher(nil); err != ErrKeyMaterialEmpty {
		t.Errorf("NewCipher(nil): got error %v, want ErrKeyMaterialEmpty", err)
	}
	if _, err := NewCipher([]byte{}); err != ErrKeyMaterialEmpty {
		t.Errorf("NewCipher(empty): got error %v, want ErrKeyMaterialEmpty", err)
	}
}

func TestCipherRoundTrip(t *testing.T) {
	material := []byte("test material")
	alice := newTestCipher(t, material)
	bob := newTestCipher(t, material)

	msg := []byte("alice and bob, sitting in a binary tree")

	encrypted, err := alice.Encrypt(msg)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	decrypted, err := bob.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, msg) {
		t.Errorf("payload mismatch\ngot:  %x\nwant: %x", decrypted, msg)
	}

	// And the reply direction.
	encrypted, err = bob.Encrypt(msg)
	if err != nil {
		t.Fatalf("reply Encrypt failed: %v", err)
	}
	decrypted, err = alice.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("reply Decrypt failed: %v", err)
	}
	if !bytes.Equal(decrypted, msg) {
		t.Errorf("reply payload mismatch\ngot:  %x\nwant: %x", decrypted, msg)
	}
}

func TestCipherEmptyPlaintext(t *testing.T) {
	material := []byte("test material")
	alice := newTestCipher(t, material)
	bob := newTestCipher(t, material)

	encrypted, err := alice.Encrypt(nil)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	// Nothing but the authentication tag.
	if len(encrypted) != alice.aead.TagSize() {
		t.Errorf("ciphertext length = %d, want %d", len(encrypted), alice.aead.TagSize())
	}

	decrypted, err := bob.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if len(decrypted) != 0 {
		t.Errorf("decrypted length = %d, want 0", len(decrypted))
	}
}

func TestCipherDeterministicStreams(t *testing.T) {
	material := []byte{0x81, 0x01, 0xea, 0x52, 0x33}
	payload := []byte("same position, same bytes")

	c1 := newTestCipher(t, material)
	c2 := newTestCipher(t, material)

	// Same key material and same counter position produce the same
	// ciphertext.
	first1, err := c1.Encrypt(payload)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	first2, err := c2.Encrypt(payload)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if !bytes.Equal(first1, first2) {
		t.Errorf("ciphertexts at position 0 differ\nfirst:  %x\nsecond: %x", first1, first2)
	}

	// A later position produces a different ciphertext for the same
	// plaintext.
	second1, err := c1.Encrypt(payload)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Equal(first1, second1) {
		t.Error("ciphertexts at positions 0 and 1 are identical")
	}
}

func TestCipherDistinctMaterials(t *testing.T) {
	c1 := newTestCipher(t, []byte("material a"))
	c2 := newTestCipher(t, []byte("material b"))

	encrypted, err := c1.Encrypt([]byte("payload"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if _, err := c2.Decrypt(encrypted); err != ErrDecryptionFailed {
		t.Errorf("Decrypt under different material: got error %v, want ErrDecryptionFailed", err)
	}
}

func TestCipherTamperedCiphertext(t *testing.T) {
	material := []byte{0x4f, 0x5a, 0x01, 0x46}
	payload := []byte{0x2a, 0x2b, 0x2c, 0xff, 0x45, 0x12, 0x33, 0x45, 0x12, 0xea, 0xf2, 0xdb}

	sender := newTestCipher(t, material)
	receiver := newTestCipher(t, material)

	encrypted, err := sender.Encrypt(payload)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	extended := append(append([]byte{}, encrypted...), 0xaa)
	if _, err := receiver.Decrypt(extended); err != ErrDecryptionFailed {
		t.Errorf("Decrypt of extended ciphertext: got error %v, want ErrDecryptionFailed", err)
	}

	truncated := encrypted[:len(encrypted)-1]
	if _, err := receiver.Decrypt(truncated); err != ErrDecryptionFailed {
		t.Errorf("Decrypt of truncated ciphertext: got error %v, want ErrDecryptionFailed", err)
	}

	flipped := append([]byte{}, encrypted...)
	flipped[len(flipped)/2] ^= 0x01
	if _, err := receiver.Decrypt(flipped); err != ErrDecryptionFailed {
		t.Errorf("Decrypt of flipped ciphertext: got error %v, want ErrDecryptionFailed", err)
	}

	// The failures left the receive counter alone: the untampered
	// ciphertext still decrypts at its original position.
	decrypted, err := receiver.Decrypt(encrypted)
	if err != nil {
		t.Fatalf("Decrypt after tamper attempts failed: %v", err)
	}
	if !bytes.Equal(decrypted, payload) {
		t.Errorf("payload mismatch\ngot:  %x\nwant: %x", decrypted, payload)
	}
}

func TestCipherLockstepOrder(t *testing.T) {
	material := []byte("test material")
	sender := newTestCipher(t, material)
	receiver := newTestCipher(t, material)

	first, err := sender.Encrypt([]byte("first"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	second, err := sender.Encrypt([]byte("second"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Out of order: the second message cannot decrypt at position 0.
	if _, err := receiver.Decrypt(second); err != ErrDecryptionFailed {
		t.Errorf("out-of-order Decrypt: got error %v, want ErrDecryptionFailed", err)
	}

	// In order both decrypt, including the one that failed above.
	if got, err := receiver.Decrypt(first); err != nil || !bytes.Equal(got, []byte("first")) {
		t.Errorf("Decrypt of first message: got %q, %v", got, err)
	}
	if got, err := receiver.Decrypt(second); err != nil || !bytes.Equal(got, []byte("second")) {
		t.Errorf("Decrypt of second message: got %q, %v", got, err)
	}

	// A replay of an already-consumed position fails.
	if _, err := receiver.Decrypt(first); err != ErrDecryptionFailed {
		t.Errorf("replayed Decrypt: got error %v, want ErrDecryptionFailed", err)
	}
}

func TestCipherSequenceExhausted(t *testing.T) {
	material := []byte("test material")

	sender := newTestCipher(t, material)
	sender.encSeq = math.MaxUint64
	if _, err := sender.Encrypt([]byte("payload")); err != ErrSequenceExhausted {
		t.Errorf("Encrypt at counter maximum: got error %v, want ErrSequenceExhausted", err)
	}
	if sender.encSeq != math.MaxUint64 {
		t.Errorf("send counter changed on failure: %d", sender.encSeq)
	}

	receiver := newTestCipher(t, material)
	receiver.decSeq = math.MaxUint64
	if _, err := receiver.Decrypt([]byte("whatever")); err != ErrSequenceExhausted {
		t.Errorf("Decrypt at counter maximum: got error %v, want ErrSequenceExhausted", err)
	}
	if receiver.decSeq != math.MaxUint64 {
		t.Errorf("receive counter changed on failure: %d", receiver.decSeq)
	}
}

func BenchmarkCipherEncrypt(b *testing.B) {
	c, err := NewCipher([]byte("benchmark material"))
	if err != nil {
		b.Fatalf("NewCipher failed: %v", err)
	}
	payload := bytes.Repeat([]byte{0x42}, 1024)
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Encrypt(payload); err != nil {
			b.Fatal(err)
		}
	}
}
