// Package router hands each protocol message received by the transport to
// the handler registered for its service type.
package router

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/backkem/applink/pkg/protocol"
	"github.com/pion/logging"
)

// ErrNoHandler is returned by Route when no handler is registered for a
// message's service type.
var ErrNoHandler = errors.New("router: no handler for service type")

// ServiceHandler processes protocol messages for one service.
// *secureservice.Dispatcher implements it.
type ServiceHandler interface {
	Process(msg *protocol.ProtocolMessage) error
}

// Config configures a Router.
type Config struct {
	// OnError is called when a received message has no handler or its
	// handler failed. Optional.
	OnError func(peer net.Addr, err error)

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Router maps service types to handlers.
type Router struct {
	handlers map[protocol.ServiceType]ServiceHandler
	onError  func(peer net.Addr, err error)
	log      logging.LeveledLogger

	mu sync.RWMutex
}

// New creates a Router with no handlers.
func New(config Config) *Router {
	r := &Router{
		handlers: make(map[protocol.ServiceType]ServiceHandler),
		onError:  config.OnError,
	}

	if config.LoggerFactory != nil {
		r.log = config.LoggerFactory.NewLogger("router")
	}

	return r
}

// Register sets the handler for a service type, replacing any previous one.
// A nil handler removes the registration.
func (r *Router) Register(st protocol.ServiceType, h ServiceHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h == nil {
		delete(r.handlers, st)
		return
	}
	r.handlers[st] = h
}

// Route passes msg to the handler for its service type and returns the
// handler's error unchanged. A missing handler wraps ErrNoHandler.
func (r *Router) Route(msg *protocol.ProtocolMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: nil message", ErrNoHandler)
	}

	r.mu.RLock()
	h := r.handlers[msg.ServiceType]
	r.mu.RUnlock()

	if h == nil {
		return fmt.Errorf("%w: %s", ErrNoHandler, msg.ServiceType)
	}

	return h.Process(msg)
}

// HandleFrame routes msg and reports any failure. It has the shape of a
// transport.FrameHandler.
func (r *Router) HandleFrame(msg *protocol.ProtocolMessage, peer net.Addr) {
	err := r.Route(msg)
	if err == nil {
		return
	}

	if r.log != nil {
		r.log.Warnf("dropping %s from %v: %v", msg, peer, err)
	}
	if r.onError != nil {
		r.onError(peer, err)
	}
}
