package pairing

import (
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/backkem/adbpair/pkg/pairing/auth"
	"github.com/pion/logging"
)

// Config holds configuration for a pairing Connection.
type Config struct {
	// Password is the pairing code both sides were given out of band.
	Password []byte

	// PeerInfo is this side's identity blob, sent to the peer encrypted
	// under the session cipher.
	PeerInfo PeerInfo

	// LoggerFactory for creating loggers.
	LoggerFactory logging.LoggerFactory
}

// Connection drives one pairing attempt over a reliable duplex stream.
//
// The exchange is symmetric: both sides call Pair concurrently and each
// returns the peer's authenticated info. A Connection is good for exactly
// one attempt; create a new one to retry.
type Connection struct {
	conn      net.Conn
	role      auth.Role
	authCtx   *auth.Auth
	localInfo PeerInfo
	log       logging.LeveledLogger

	mu     sync.Mutex
	state  State
	paired bool
	closed bool
}

// NewClientConnection creates the client side of a pairing connection.
func NewClientConnection(conn net.Conn, config Config) (*Connection, error) {
	return newConnection(conn, auth.RoleClient, config)
}

// NewServerConnection creates the server side of a pairing connection.
func NewServerConnection(conn net.Conn, config Config) (*Connection, error) {
	return newConnection(conn, auth.RoleServer, config)
}

func newConnection(conn net.Conn, role auth.Role, config Config) (*Connection, error) {
	if err := config.PeerInfo.Validate(); err != nil {
		return nil, err
	}

	authCtx, err := auth.New(role, config.Password)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		conn:      conn,
		role:      role,
		authCtx:   authCtx,
		localInfo: config.PeerInfo,
		state:     StateExchangingMsgs,
	}
	if config.LoggerFactory != nil {
		c.log = config.LoggerFactory.NewLogger("pairing")
	}

	return c, nil
}

// Pair performs the complete pairing: it exchanges key-exchange messages,
// derives the session cipher, and exchanges encrypted peer-info blobs.
// It returns the peer's authenticated info.
//
// Pair blocks until the peer has completed its half or the connection
// fails, and may be called once.
func (c *Connection) Pair() (*PeerInfo, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnectionClosed
	}
	if c.paired {
		c.mu.Unlock()
		return nil, ErrAlreadyPaired
	}
	c.paired = true
	c.mu.Unlock()

	info, err := c.pair()
	if err != nil {
		c.setState(StateFailed)
		if c.log != nil {
			c.log.Warnf("pairing as %s failed: %v", c.role, err)
		}
		return nil, err
	}

	c.setState(StateReady)
	if c.log != nil {
		c.log.Infof("pairing as %s complete, peer info: %s (%d bytes)", c.role, info.Type, len(info.Data))
	}
	return info, nil
}

func (c *Connection) pair() (*PeerInfo, error) {
	// Phase 1: exchange key-exchange messages in the clear.
	if err := c.writePacket(PacketSpake2Msg, c.authCtx.Msg()); err != nil {
		return nil, err
	}
	peerMsg, err := c.readPacket(PacketSpake2Msg)
	if err != nil {
		return nil, err
	}

	cipher, err := c.authCtx.InitCipher(peerMsg)
	if err != nil {
		return nil, err
	}
	c.setState(StateExchangingPeerInfo)
	if c.log != nil {
		c.log.Debugf("key exchange as %s complete", c.role)
	}

	// Phase 2: exchange peer info under the session cipher.
	sealed, err := cipher.Encrypt(c.localInfo.Encode())
	if err != nil {
		return nil, err
	}
	if err := c.writePacket(PacketPeerInfo, sealed); err != nil {
		return nil, err
	}

	sealedPeer, err := c.readPacket(PacketPeerInfo)
	if err != nil {
		return nil, err
	}
	opened, err := cipher.Decrypt(sealedPeer)
	if err != nil {
		return nil, err
	}

	return DecodePeerInfo(opened)
}

// writePacket frames and sends one packet, header and payload as separate
// writes.
func (c *Connection) writePacket(t PacketType, payload []byte) error {
	if len(payload) == 0 || len(payload) > MaxPayloadSize {
		return ErrInvalidPayloadLength
	}

	header := PacketHeader{
		Version:    ProtocolVersion,
		Type:       t,
		PayloadLen: uint32(len(payload)),
	}
	if _, err := c.conn.Write(header.Encode()); err != nil {
		return fmt.Errorf("pairing: write packet header: %w", err)
	}
	if _, err := c.conn.Write(payload); err != nil {
		return fmt.Errorf("pairing: write packet payload: %w", err)
	}
	return nil
}

// readPacket receives one packet and checks that it carries the expected
// type.
func (c *Connection) readPacket(want PacketType) ([]byte, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(c.conn, buf[:]); err != nil {
		return nil, fmt.Errorf("pairing: read packet header: %w", err)
	}

	var header PacketHeader
	if _, err := header.Decode(buf[:]); err != nil {
		return nil, err
	}
	if header.Type != want {
		return nil, ErrUnexpectedPacket
	}

	payload := make([]byte, header.PayloadLen)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return nil, fmt.Errorf("pairing: read packet payload: %w", err)
	}
	return payload, nil
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// State returns the connection state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Role returns the side this connection plays.
func (c *Connection) Role() auth.Role {
	return c.role
}

// Close closes the underlying connection. A closed connection cannot be
// used to pair.
func (c *Connection) Close() error {
	c.mu.Lock()
	c.closed = true
	if c.state != StateReady {
		c.state = StateFailed
	}
	c.mu.Unlock()

	return c.conn.Close()
}
