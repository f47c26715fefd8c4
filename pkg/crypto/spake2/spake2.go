// Package spake2 implements the SPAKE2 Password-Authenticated Key Exchange
// protocol over the edwards25519 curve.
//
// SPAKE2 is a balanced PAKE: both parties know the same password and use it
// to blind their Diffie-Hellman shares, so that only a peer who knows the
// password can unblind them and reach the same key. The construction here
// matches the widely deployed python-spake2 / spake2 (Rust) implementations:
// the blinding elements M and N are derived from short seeds, outbound
// messages carry a leading side byte, and the key material is the SHA-256
// hash of a fixed-width protocol transcript.
//
// Protocol flow:
//
//	Side A (initiator)                 Side B (responder)
//	------------------                 ------------------
//	NewA(pw, idA, idB)                 NewB(pw, idA, idB)
//	msgA = Msg()       ----msgA--->
//	                   <---msgB----    msgB = Msg()
//	keyA = Finish(msgB)                keyB = Finish(msgA)
//
// keyA equals keyB exactly when both sides used the same password. A
// mismatch is not detectable during the exchange: Finish succeeds on both
// sides and yields unrelated key material, and the mismatch surfaces only
// when the keys are first used. This is the defining property of a PAKE:
// an active attacker who guesses wrong learns nothing from the exchange
// messages alone.
package spake2

import (
	"crypto/rand"
	"errors"
	"io"
	"math/big"

	"filippo.io/edwards25519"

	"github.com/backkem/adbpair/pkg/crypto"
)

// Protocol constants.
const (
	// ElementSize is the size of a compressed edwards25519 point (32 bytes).
	ElementSize = 32

	// MsgSize is the size of an exchange message: one side byte followed
	// by a compressed group element.
	MsgSize = 1 + ElementSize

	// KeySize is the size of the key material produced by Finish (32 bytes).
	KeySize = 32
)

// Side identifies a protocol participant. The two sides of an exchange must
// be distinct; the side byte leads every outbound message so that a
// reflected message is rejected.
type Side byte

const (
	// SideA is the initiating side, blinded with element M.
	SideA Side = 'A'
	// SideB is the responding side, blinded with element N.
	SideB Side = 'B'
)

// Errors
var (
	ErrWrongSize       = errors.New("spake2: inbound message must be 33 bytes")
	ErrWrongSide       = errors.New("spake2: inbound message side byte mismatch")
	ErrCorruptElement  = errors.New("spake2: inbound message is not a valid group element")
	ErrAlreadyFinished = errors.New("spake2: exchange already finished")
)

// fieldPrime is the edwards25519 base field prime, 2^255 - 19.
var fieldPrime = mustBigInt("57896044618658097711785492504343953926634992332820282019728792003956564819949")

// M and N are the blinding elements for sides A and B: fixed protocol
// constants whose discrete logarithms nobody knows. They are derived from
// one-letter seeds exactly the way python-spake2 generates its arbitrary
// elements, so the values match deployed SPAKE2 peers.
var (
	elementM = arbitraryElement([]byte("M"))
	elementN = arbitraryElement([]byte("N"))
)

// SPAKE2 holds one side of an exchange. Instances are created by NewA or
// NewB, produce their outbound message immediately, and are consumed by
// Finish.
type SPAKE2 struct {
	side     Side
	pwScalar *edwards25519.Scalar
	xyScalar *edwards25519.Scalar

	// Transcript inputs, hashed up front so the raw password is not
	// retained past construction.
	pwHash  [crypto.SHA256LenBytes]byte
	idAHash [crypto.SHA256LenBytes]byte
	idBHash [crypto.SHA256LenBytes]byte

	myElement []byte // compressed point, without the side byte
	msg       []byte // side byte || myElement

	finished bool
}

// NewA creates the A side of an exchange.
//
// Parameters:
//   - password: the shared password; the same bytes both sides agreed on
//   - idA: identity of the A side (may be empty)
//   - idB: identity of the B side (may be empty)
//
// Both sides must pass idA and idB in the same order.
func NewA(password, idA, idB []byte) (*SPAKE2, error) {
	return newSPAKE2(SideA, password, idA, idB, rand.Reader)
}

// NewB creates the B side of an exchange. Parameters are as for NewA; in
// particular idA still names the A side.
func NewB(password, idA, idB []byte) (*SPAKE2, error) {
	return newSPAKE2(SideB, password, idA, idB, rand.Reader)
}

func newSPAKE2(side Side, password, idA, idB []byte, rng io.Reader) (*SPAKE2, error) {
	xy, err := randomScalar(rng)
	if err != nil {
		return nil, err
	}

	pw, err := passwordScalar(password)
	if err != nil {
		return nil, err
	}

	// msg element = xy*G + pw*(M or N)
	blinding := elementM
	if side == SideB {
		blinding = elementN
	}
	elem := new(edwards25519.Point).ScalarBaseMult(xy)
	mask := new(edwards25519.Point).ScalarMult(pw, blinding)
	elem.Add(elem, mask)

	encoded := elem.Bytes()
	msg := make([]byte, 0, MsgSize)
	msg = append(msg, byte(side))
	msg = append(msg, encoded...)

	return &SPAKE2{
		side:      side,
		pwScalar:  pw,
		xyScalar:  xy,
		pwHash:    crypto.SHA256(password),
		idAHash:   crypto.SHA256(idA),
		idBHash:   crypto.SHA256(idB),
		myElement: encoded,
		msg:       msg,
	}, nil
}

// Msg returns the outbound exchange message: the side byte followed by this
// side's blinded group element. It is pure and may be read any number of
// times; delivering it to the peer is the caller's job.
func (s *SPAKE2) Msg() []byte {
	return copyBytes(s.msg)
}

// Finish consumes the exchange state and derives the session key material
// from the peer's message. It fails if the message has the wrong size, a
// wrong or reflected side byte, or an encoding that is not a valid group
// element. The state is consumed even on failure; a second call returns
// ErrAlreadyFinished.
//
// A successful Finish does not mean the passwords matched: both sides
// always derive key material, and a mismatch surfaces only when the keys
// are first used.
func (s *SPAKE2) Finish(inbound []byte) ([]byte, error) {
	if s.finished {
		return nil, ErrAlreadyFinished
	}
	s.finished = true
	pw, xy := s.pwScalar, s.xyScalar
	s.pwScalar, s.xyScalar = nil, nil

	if len(inbound) != MsgSize {
		return nil, ErrWrongSize
	}

	expect := SideB
	if s.side == SideB {
		expect = SideA
	}
	if Side(inbound[0]) != expect {
		return nil, ErrWrongSide
	}

	peer, err := new(edwards25519.Point).SetBytes(inbound[1:])
	if err != nil {
		return nil, ErrCorruptElement
	}

	// K = xy*(peer - pw*U) where U is the peer's blinding element: N for
	// side A, M for side B. Honest shares live in the prime-order
	// subgroup, so no extra cofactor clearing is applied.
	unblinding := elementN
	if s.side == SideB {
		unblinding = elementM
	}
	mask := new(edwards25519.Point).ScalarMult(pw, unblinding)
	k := new(edwards25519.Point).Subtract(peer, mask)
	k.ScalarMult(xy, k)

	// Transcript: six fixed-width fields with the A-side element always
	// first. The side bytes are not part of the transcript.
	first, second := s.myElement, inbound[1:]
	if s.side == SideB {
		first, second = inbound[1:], s.myElement
	}

	h := crypto.NewSHA256()
	h.Write(s.pwHash[:])
	h.Write(s.idAHash[:])
	h.Write(s.idBHash[:])
	h.Write(first)
	h.Write(second)
	h.Write(k.Bytes())
	return h.Sum(nil), nil
}

// passwordScalar maps the password to a group scalar: a 48-byte HKDF
// expansion interpreted as a big-endian integer and reduced mod the group
// order. The oversized expansion keeps the reduction bias negligible.
func passwordScalar(password []byte) (*edwards25519.Scalar, error) {
	okm, err := crypto.HKDFSHA256(password, nil, []byte("SPAKE2 pw"), ElementSize+16)
	if err != nil {
		return nil, err
	}

	// SetUniformBytes reduces a little-endian 512-bit value, so reverse
	// the big-endian expansion into the low 48 bytes.
	var wide [64]byte
	for i, b := range okm {
		wide[len(okm)-1-i] = b
	}
	return new(edwards25519.Scalar).SetUniformBytes(wide[:])
}

// randomScalar returns a uniformly random scalar drawn from r.
func randomScalar(r io.Reader) (*edwards25519.Scalar, error) {
	var wide [64]byte
	if _, err := io.ReadFull(r, wide[:]); err != nil {
		return nil, err
	}
	return new(edwards25519.Scalar).SetUniformBytes(wide[:])
}

// arbitraryElement derives a group element with unknown discrete logarithm
// from a short seed: expand the seed with HKDF, interpret it as a field
// element y, and walk y upward until the even-x compressed encoding decodes
// to a curve point whose cofactor-cleared image is not the identity.
func arbitraryElement(seed []byte) *edwards25519.Point {
	okm, err := crypto.HKDFSHA256(seed, nil, []byte("arbitrary-element"), ElementSize+16)
	if err != nil {
		panic(err)
	}

	y := new(big.Int).SetBytes(okm)
	y.Mod(y, fieldPrime)

	one := big.NewInt(1)
	buf := make([]byte, ElementSize)
	identity := edwards25519.NewIdentityPoint()
	for {
		// Compressed encoding: little-endian y with the sign bit clear,
		// selecting the even x candidate.
		y.FillBytes(buf)
		reverse(buf)

		p, err := new(edwards25519.Point).SetBytes(buf)
		if err == nil {
			p.MultByCofactor(p)
			if p.Equal(identity) != 1 {
				return p
			}
		}

		y.Add(y, one)
		y.Mod(y, fieldPrime)
	}
}

func mustBigInt(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("spake2: invalid integer constant")
	}
	return n
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}
