package pairing

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pion/transport/v3/test"
)

// PipeAddr implements net.Addr for in-memory pipe endpoints.
type PipeAddr struct {
	ID int // endpoint ID (0 or 1)
}

// Network returns "pipe".
func (a PipeAddr) Network() string { return "pipe" }

// String returns a string representation of the address.
func (a PipeAddr) String() string { return fmt.Sprintf("pipe:%d", a.ID) }

// Pipe provides a connected in-memory duplex connection pair for tests and
// examples. Writes are queued and delivered by a background goroutine, so
// both endpoints can write before either reads, which is the ordering the
// pairing exchange produces when both sides run Pair concurrently.
//
// Each Write is delivered to the peer as a single Read, so readers must
// size their reads to the writes; the pairing framing does.
type Pipe struct {
	bridge *test.Bridge

	stopCh chan struct{}
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPipe creates a connected pipe and starts its delivery goroutine.
func NewPipe() *Pipe {
	p := &Pipe{
		bridge: test.NewBridge(),
		stopCh: make(chan struct{}),
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.stopCh:
				return
			case <-ticker.C:
				p.bridge.Tick()
			}
		}
	}()

	return p
}

// Conn0 returns the connection for endpoint 0.
func (p *Pipe) Conn0() net.Conn {
	return &pipeConn{
		conn:       p.bridge.GetConn0(),
		localAddr:  PipeAddr{ID: 0},
		remoteAddr: PipeAddr{ID: 1},
	}
}

// Conn1 returns the connection for endpoint 1.
func (p *Pipe) Conn1() net.Conn {
	return &pipeConn{
		conn:       p.bridge.GetConn1(),
		localAddr:  PipeAddr{ID: 1},
		remoteAddr: PipeAddr{ID: 0},
	}
}

// Close stops delivery and closes both endpoints.
func (p *Pipe) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()

	var firstErr error
	if err := p.bridge.GetConn0().Close(); err != nil {
		firstErr = err
	}
	if err := p.bridge.GetConn1().Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// pipeConn wraps a bridge endpoint with pipe addresses.
type pipeConn struct {
	conn       net.Conn
	localAddr  net.Addr
	remoteAddr net.Addr
}

func (c *pipeConn) Read(b []byte) (int, error)  { return c.conn.Read(b) }
func (c *pipeConn) Write(b []byte) (int, error) { return c.conn.Write(b) }
func (c *pipeConn) Close() error                { return c.conn.Close() }
func (c *pipeConn) LocalAddr() net.Addr         { return c.localAddr }
func (c *pipeConn) RemoteAddr() net.Addr        { return c.remoteAddr }

func (c *pipeConn) SetDeadline(t time.Time) error      { return c.conn.SetDeadline(t) }
func (c *pipeConn) SetReadDeadline(t time.Time) error  { return c.conn.SetReadDeadline(t) }
func (c *pipeConn) SetWriteDeadline(t time.Time) error { return c.conn.SetWriteDeadline(t) }

// Verify pipeConn implements net.Conn.
var _ net.Conn = (*pipeConn)(nil)
