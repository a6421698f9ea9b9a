// Package transport carries AppLink frames over datagram sockets.
//
// An Endpoint owns one net.PacketConn. Its read goroutine decodes every
// datagram as a single protocol frame and hands the resulting message to a
// FrameHandler, one at a time and in arrival order. Datagrams that are not
// valid frames never reach the handler.
package transport

import (
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/backkem/applink/pkg/protocol"
	"github.com/pion/logging"
)

// DefaultPort is the default AppLink port.
const DefaultPort = 12345

// MaxDatagramSize is the largest datagram an Endpoint reads or sends.
const MaxDatagramSize = 65535

// FrameHandler receives each decoded frame on the endpoint's read goroutine.
// The message is owned by the handler.
type FrameHandler func(msg *protocol.ProtocolMessage, peer net.Addr)

// EndpointConfig configures an Endpoint.
type EndpointConfig struct {
	// Conn is the socket to use. If nil, a UDP socket is opened on ListenAddr.
	Conn net.PacketConn

	// ListenAddr is the UDP address to bind when Conn is nil.
	// Empty means an ephemeral port on all interfaces.
	ListenAddr string

	// OnFrame is called for every valid frame. Required.
	OnFrame FrameHandler

	// OnError is called with the decode error when a datagram is not a valid
	// frame. Optional.
	OnError func(peer net.Addr, err error)

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

const (
	endpointIdle int32 = iota
	endpointRunning
	endpointClosed
)

// Endpoint sends and receives AppLink frames on a datagram socket.
type Endpoint struct {
	conn    net.PacketConn
	onFrame FrameHandler
	onError func(peer net.Addr, err error)
	log     logging.LeveledLogger

	state atomic.Int32
	done  chan struct{}
}

// NewEndpoint creates an Endpoint. The read goroutine is not started until
// Start is called, so a send-only endpoint never needs Start.
func NewEndpoint(config EndpointConfig) (*Endpoint, error) {
	if config.OnFrame == nil {
		return nil, ErrNoHandler
	}

	conn := config.Conn
	if conn == nil {
		addr := config.ListenAddr
		if addr == "" {
			addr = fmt.Sprintf(":%d", DefaultPort)
		}
		c, err := net.ListenPacket("udp", addr)
		if err != nil {
			return nil, err
		}
		conn = c
	}

	e := &Endpoint{
		conn:    conn,
		onFrame: config.OnFrame,
		onError: config.OnError,
		done:    make(chan struct{}),
	}
	if config.LoggerFactory != nil {
		e.log = config.LoggerFactory.NewLogger("transport")
	}

	return e, nil
}

// Start launches the read goroutine.
//
// Any read deadline left on the socket is cleared first; the read loop
// blocks until a datagram arrives or Close is called.
func (e *Endpoint) Start() error {
	if !e.state.CompareAndSwap(endpointIdle, endpointRunning) {
		if e.state.Load() == endpointClosed {
			return ErrClosed
		}
		return ErrAlreadyStarted
	}

	if err := e.conn.SetReadDeadline(time.Time{}); err != nil {
		e.state.Store(endpointIdle)
		return fmt.Errorf("transport: clear read deadline: %w", err)
	}

	go e.serve()

	if e.log != nil {
		e.log.Infof("listening on %s", e.conn.LocalAddr())
	}
	return nil
}

// Close stops the read goroutine and closes the socket. It waits for an
// in-flight handler call to return.
func (e *Endpoint) Close() error {
	prev := e.state.Swap(endpointClosed)
	if prev == endpointClosed {
		return ErrClosed
	}

	// Some PacketConns (pion's bridge among them) do not unblock a pending
	// read on Close; an expired deadline does.
	_ = e.conn.SetReadDeadline(time.Now())
	_ = e.conn.Close()

	if prev == endpointRunning {
		<-e.done
	}
	return nil
}

// Send encodes msg as a single frame and writes it to peer.
func (e *Endpoint) Send(msg *protocol.ProtocolMessage, peer net.Addr) error {
	if e.state.Load() == endpointClosed {
		return ErrClosed
	}
	if peer == nil {
		return ErrInvalidAddress
	}

	frame, err := msg.EncodeFrame()
	if err != nil {
		return err
	}
	if len(frame) > MaxDatagramSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(frame))
	}

	if _, err := e.conn.WriteTo(frame, peer); err != nil {
		return err
	}

	if e.log != nil {
		e.log.Tracef("sent %s to %s", msg, peer)
	}
	return nil
}

// LocalAddr returns the socket's local address.
func (e *Endpoint) LocalAddr() net.Addr {
	return e.conn.LocalAddr()
}

func (e *Endpoint) serve() {
	defer close(e.done)

	buf := make([]byte, MaxDatagramSize)
	for {
		n, peer, err := e.conn.ReadFrom(buf)
		if err != nil {
			if e.state.Load() == endpointClosed {
				return
			}

			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				// A deadline was armed on the socket behind our back.
				if err := e.conn.SetReadDeadline(time.Time{}); err != nil {
					e.fail(err)
					return
				}
				// Close may have armed its own deadline before we cleared it.
				if e.state.Load() == endpointClosed {
					return
				}
				continue
			}

			e.fail(err)
			return
		}

		// DecodeFrame copies the payload, so buf can be reused.
		msg, err := protocol.DecodeFrame(buf[:n])
		if err != nil {
			if e.log != nil {
				e.log.Debugf("dropping %d-byte datagram from %s: %v", n, peer, err)
			}
			if e.onError != nil {
				e.onError(peer, err)
			}
			continue
		}

		e.onFrame(msg, peer)
	}
}

func (e *Endpoint) fail(err error) {
	if e.log != nil {
		e.log.Errorf("read loop stopped: %v", err)
	}
}
