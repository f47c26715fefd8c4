// Package auth implements the ADB wireless-pairing key agreement and the
// authenticated session cipher derived from it.
//
// Pairing runs a password-authenticated key exchange between the client (the
// host initiating pairing) and the server (the device being paired): both
// sides derive the same key material exactly when they were given the same
// pairing code, and an observer of the exchange learns nothing usable about
// the code. The agreed material keys an AES-128-GCM cipher with
// per-direction sequence nonces.
//
// # Protocol Flow
//
// Each side sends a single exchange message and feeds the peer's message
// into InitCipher:
//
//	Client                             Server
//	------                             ------
//	NewClient(password)                NewServer(password)
//	Msg()                 ------>
//	                      <------      Msg()
//	InitCipher(serverMsg)              InitCipher(clientMsg)
//	     |                                  |
//	  *Cipher  <===== Encrypt/Decrypt =====>  *Cipher
//
// A password mismatch does not fail the exchange: both sides reach Ready
// with different keys, and the mismatch surfaces as ErrDecryptionFailed on
// the first Decrypt.
package auth

import (
	"errors"
	"fmt"
	"sync"

	"github.com/backkem/adbpair/pkg/crypto/spake2"
)

// Protocol constants.
const (
	// ClientIdentity is the fixed identity the client binds into the
	// exchange transcript.
	ClientIdentity = "adb pair client"

	// ServerIdentity is the fixed identity the server binds into the
	// exchange transcript.
	ServerIdentity = "adb pair server"

	// MsgSize is the size of the exchange message each side sends.
	MsgSize = spake2.MsgSize

	// KeyMaterialSize is the size of the key material the exchange agrees on.
	KeyMaterialSize = spake2.KeySize
)

// Errors.
var (
	ErrPasswordEmpty      = errors.New("auth: password must not be empty")
	ErrInvalidRole        = errors.New("auth: invalid role")
	ErrKeyExchangeFailed  = errors.New("auth: key exchange failed")
	ErrAlreadyInitialized = errors.New("auth: cipher already initialized")
	ErrKeyMaterialEmpty   = errors.New("auth: key material must not be empty")
	ErrKeyDerivation      = errors.New("auth: session key derivation failed")
	ErrEncryptionFailed   = errors.New("auth: encryption failed")
	ErrDecryptionFailed   = errors.New("auth: decryption failed")
	ErrSequenceExhausted  = errors.New("auth: message sequence exhausted")
)

// Role determines which side of the exchange a context plays and which
// fixed identity it binds.
type Role int

const (
	// RoleClient is the host initiating the pairing attempt.
	RoleClient Role = iota
	// RoleServer is the device accepting the pairing attempt.
	RoleServer
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleClient:
		return "Client"
	case RoleServer:
		return "Server"
	default:
		return "Unknown"
	}
}

// IsValid reports whether the role is one of the defined values.
func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleServer
}

// State represents the pairing context lifecycle.
type State int

const (
	// StateCreated is the initial state: the outbound message is available
	// and the cipher has not been initialized.
	StateCreated State = iota
	// StateReady means InitCipher succeeded and handed out the session cipher.
	StateReady
	// StateFailed means InitCipher consumed the exchange without producing
	// a cipher. The context cannot be reused; pairing must restart.
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Auth holds one side of a single pairing attempt, from construction until
// the exchange is turned into a session cipher.
//
// An Auth is good for exactly one exchange: InitCipher consumes it whether
// or not it succeeds, and a fresh context is needed to retry.
type Auth struct {
	role  Role
	state State
	spake *spake2.SPAKE2

	mu sync.Mutex
}

// New creates a pairing context for the given role.
//
// The password is the pairing code both sides were given out of band; it
// must not be empty. The outbound exchange message is computed here, so a
// returned context always has a valid Msg.
func New(role Role, password []byte) (*Auth, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if len(password) == 0 {
		return nil, ErrPasswordEmpty
	}

	var spake *spake2.SPAKE2
	var err error
	if role == RoleClient {
		spake, err = spake2.NewA(password, []byte(ClientIdentity), []byte(ServerIdentity))
	} else {
		spake, err = spake2.NewB(password, []byte(ClientIdentity), []byte(ServerIdentity))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyExchangeFailed, err)
	}

	return &Auth{
		role:  role,
		state: StateCreated,
		spake: spake,
	}, nil
}

// NewClient creates the client-side (initiating) pairing context.
func NewClient(password []byte) (*Auth, error) {
	return New(RoleClient, password)
}

// NewServer creates the server-side (accepting) pairing context.
func NewServer(password []byte) (*Auth, error) {
	return New(RoleServer, password)
}

// Msg returns the outbound exchange message to send to the peer.
//
// The message is fixed at construction; Msg may be called any number of
// times and returns an independent copy.
func (a *Auth) Msg() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.spake.Msg()
}

// InitCipher completes the exchange with the peer's message and returns the
// session cipher keyed by the agreed material.
//
// The exchange is consumed either way: on failure the context moves to
// StateFailed and a fresh Auth is needed to retry. A second call returns
// ErrAlreadyInitialized.
//
// A password mismatch is not detected here. The exchange completes on both
// sides and the mismatch surfaces as ErrDecryptionFailed on the first
// Decrypt.
func (a *Auth) InitCipher(peerMsg []byte) (*Cipher, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateCreated {
		return nil, ErrAlreadyInitialized
	}

	keyMaterial, err := a.spake.Finish(peerMsg)
	if err != nil {
		a.state = StateFailed
		return nil, fmt.Errorf("%w: %v", ErrKeyExchangeFailed, err)
	}

	cipher, err := NewCipher(keyMaterial)
	if err != nil {
		a.state = StateFailed
		return nil, err
	}

	a.state = StateReady
	return cipher, nil
}

// State returns the context lifecycle state.
func (a *Auth) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Role returns the side this context plays.
func (a *Auth) Role() Role {
	return a.role
}
