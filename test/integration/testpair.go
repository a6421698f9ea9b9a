// Package integration provides end-to-end test infrastructure: a head-unit
// side transport endpoint, router and secure-service dispatcher connected to
// a mobile-side endpoint over an in-memory pipe.
package integration

import (
	"net"
	"testing"
	"time"

	"github.com/backkem/applink/pkg/protocol"
	"github.com/backkem/applink/pkg/router"
	"github.com/backkem/applink/pkg/secureservice"
	"github.com/backkem/applink/pkg/transport"
	"github.com/pion/logging"
)

// DefaultTimeout bounds every wait in the integration tests.
const DefaultTimeout = 2 * time.Second

// Event is one callback invocation observed on the head-unit side.
type Event struct {
	IsError bool
	Data    []byte
	Code    secureservice.SecureError
}

// TestPair wires both ends of a pipe. Every send drains the pipe, so a
// frame has reached the head-unit read loop when Send returns.
type TestPair struct {
	Pipe       *transport.Pipe
	Server     *transport.Endpoint
	Router     *router.Router
	Dispatcher *secureservice.Dispatcher

	// Client is the mobile-side endpoint used to send frames. It is never
	// started.
	Client     *transport.Endpoint
	clientConn *transport.PipePacketConn

	// Events receives dispatcher callbacks in delivery order.
	Events chan Event

	// Errors receives decode failures from the server endpoint and routing
	// failures from the router.
	Errors chan error
}

// NewTestPair creates and starts a TestPair. loggerFactory may be nil.
func NewTestPair(t *testing.T, loggerFactory logging.LoggerFactory) *TestPair {
	t.Helper()

	p := &TestPair{
		Pipe:   transport.NewPipe(),
		Events: make(chan Event, 64),
		Errors: make(chan error, 64),
	}

	p.Dispatcher = secureservice.NewDispatcher(secureservice.DispatcherConfig{
		Callback: secureservice.CallbackFuncs{
			HandshakeData: func(data []byte) {
				p.Events <- Event{Data: data}
			},
			HandshakeError: func(code secureservice.SecureError) {
				p.Events <- Event{IsError: true, Code: code}
			},
		},
		LoggerFactory: loggerFactory,
	})

	p.Router = router.New(router.Config{
		OnError: func(peer net.Addr, err error) {
			p.Errors <- err
		},
		LoggerFactory: loggerFactory,
	})
	p.Router.Register(protocol.ServiceTypeSecure, p.Dispatcher)

	reportError := func(peer net.Addr, err error) {
		p.Errors <- err
	}

	server, err := transport.NewEndpoint(transport.EndpointConfig{
		Conn:          p.Pipe.PacketConn1(),
		OnFrame:       p.Router.HandleFrame,
		OnError:       reportError,
		LoggerFactory: loggerFactory,
	})
	if err != nil {
		t.Fatalf("NewEndpoint: %v", err)
	}
	if err := server.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	p.Server = server

	p.clientConn = p.Pipe.PacketConn0()
	client, err := transport.NewEndpoint(transport.EndpointConfig{
		Conn:    p.clientConn,
		OnFrame: func(*protocol.ProtocolMessage, net.Addr) {},
	})
	if err != nil {
		t.Fatalf("NewEndpoint: %v", err)
	}
	p.Client = client

	return p
}

// Send writes msg as a frame to the head-unit side.
func (p *TestPair) Send(t *testing.T, msg *protocol.ProtocolMessage) {
	t.Helper()

	if err := p.Client.Send(msg, p.clientConn.PeerAddr()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	p.drain(t)
}

// SendRaw writes a datagram to the head-unit side unchanged.
func (p *TestPair) SendRaw(t *testing.T, datagram []byte) {
	t.Helper()

	if _, err := p.clientConn.WriteTo(datagram, p.clientConn.PeerAddr()); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	p.drain(t)
}

func (p *TestPair) drain(t *testing.T) {
	t.Helper()

	if err := p.Pipe.Drain(DefaultTimeout); err != nil {
		t.Fatalf("Drain: %v", err)
	}
}

// NextEvent waits for the next dispatcher callback.
func (p *TestPair) NextEvent(t *testing.T) Event {
	t.Helper()

	select {
	case ev := <-p.Events:
		return ev
	case <-time.After(DefaultTimeout):
		t.Fatal("timed out waiting for dispatcher callback")
		return Event{}
	}
}

// NextError waits for the next routing failure.
func (p *TestPair) NextError(t *testing.T) error {
	t.Helper()

	select {
	case err := <-p.Errors:
		return err
	case <-time.After(DefaultTimeout):
		t.Fatal("timed out waiting for routing error")
		return nil
	}
}

// Close stops both endpoints and the pipe.
func (p *TestPair) Close() {
	p.Server.Close()
	p.Client.Close()
	p.Pipe.Close()
}
