package transport

import (
	"fmt"
	"net"
	"time"

	"github.com/pion/transport/v3/test"
)

// Pipe is an in-memory datagram link between two PacketConns, backed by
// pion's test.Bridge. Written datagrams stay queued until Process or Drain
// moves them, which keeps delivery under the test's control.
type Pipe struct {
	bridge *test.Bridge
}

// NewPipe creates an empty pipe.
func NewPipe() *Pipe {
	return &Pipe{bridge: test.NewBridge()}
}

// Process hands at most one queued datagram per direction to a reader that
// is already blocked in ReadFrom. It returns the number delivered.
func (p *Pipe) Process() int {
	return p.bridge.Tick()
}

// Drain calls Process until both directions are empty, waiting for readers
// as needed.
func (p *Pipe) Drain(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for p.bridge.Len(0)+p.bridge.Len(1) > 0 {
		if p.bridge.Tick() > 0 {
			continue
		}
		if time.Now().After(deadline) {
			return ErrDrainTimeout
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

// PacketConn0 returns side 0 of the pipe.
func (p *Pipe) PacketConn0() *PipePacketConn {
	return &PipePacketConn{Conn: p.bridge.GetConn0(), local: PipeAddr{ID: 0, Port: DefaultPort}, peer: PipeAddr{ID: 1, Port: DefaultPort}}
}

// PacketConn1 returns side 1 of the pipe.
func (p *Pipe) PacketConn1() *PipePacketConn {
	return &PipePacketConn{Conn: p.bridge.GetConn1(), local: PipeAddr{ID: 1, Port: DefaultPort}, peer: PipeAddr{ID: 0, Port: DefaultPort}}
}

// Close closes both sides. Readers still blocked are released by a final
// Process once the queues are empty.
func (p *Pipe) Close() error {
	// The bridge rejects a second Close on a side; an Endpoint may already
	// have closed it.
	_ = p.bridge.GetConn0().Close()
	_ = p.bridge.GetConn1().Close()
	p.bridge.Tick()
	return nil
}

// PipeAddr is the net.Addr of one side of a Pipe.
type PipeAddr struct {
	ID   int
	Port int
}

func (a PipeAddr) Network() string { return "pipe" }
func (a PipeAddr) String() string  { return fmt.Sprintf("pipe:%d:%d", a.ID, a.Port) }

// PipePacketConn adapts one side of a Pipe to net.PacketConn. Reads always
// report the opposite side as their source; WriteTo ignores its address.
type PipePacketConn struct {
	net.Conn
	local, peer PipeAddr
}

func (c *PipePacketConn) ReadFrom(b []byte) (int, net.Addr, error) {
	n, err := c.Read(b)
	return n, c.peer, err
}

func (c *PipePacketConn) WriteTo(b []byte, _ net.Addr) (int, error) {
	return c.Write(b)
}

func (c *PipePacketConn) LocalAddr() net.Addr { return c.local }

// PeerAddr returns the address of the opposite side.
func (c *PipePacketConn) PeerAddr() net.Addr { return c.peer }

var _ net.PacketConn = (*PipePacketConn)(nil)
