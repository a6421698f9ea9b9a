package secureservice

import (
	"reflect"
	"sync"

	"github.com/backkem/applink/pkg/protocol"
	"github.com/pion/logging"
)

// Callback receives the result of processing a secure-service message.
// Exactly one method is called per successful Dispatcher.Process call.
type Callback interface {
	// OnHandshakeData is called with the handshake records of a
	// SendHandshakeData message.
	OnHandshakeData(data []byte)

	// OnHandshakeError is called with the peer-reported code of any
	// other message.
	OnHandshakeError(code SecureError)
}

// CallbackFuncs adapts plain functions to the Callback interface.
// Nil functions are skipped.
type CallbackFuncs struct {
	HandshakeData  func(data []byte)
	HandshakeError func(code SecureError)
}

// OnHandshakeData implements Callback.
func (c CallbackFuncs) OnHandshakeData(data []byte) {
	if c.HandshakeData != nil {
		c.HandshakeData(data)
	}
}

// OnHandshakeError implements Callback.
func (c CallbackFuncs) OnHandshakeError(code SecureError) {
	if c.HandshakeError != nil {
		c.HandshakeError(code)
	}
}

// OutcomeKind tells which branch a message was classified into.
type OutcomeKind int

const (
	OutcomeHandshakeData OutcomeKind = iota
	OutcomeHandshakeError
)

// String returns the outcome kind name.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeHandshakeData:
		return "HandshakeData"
	case OutcomeHandshakeError:
		return "HandshakeError"
	default:
		return "Unknown"
	}
}

// Outcome is the classification of one secure-service message.
// Data is set for OutcomeHandshakeData, Code for OutcomeHandshakeError.
type Outcome struct {
	Kind OutcomeKind
	Data []byte
	Code SecureError
}

// Err returns a *HandshakeRejectedError for the error outcome, nil otherwise.
func (o Outcome) Err() error {
	if o.Kind != OutcomeHandshakeError {
		return nil
	}
	return &HandshakeRejectedError{Code: o.Code}
}

// Classify decodes raw and decides whether it carries handshake data.
// Every function identifier other than FunctionIDSendHandshakeData is
// reported as a handshake error with whatever code the peer supplied.
func Classify(raw []byte) (Outcome, error) {
	p, err := Decode(raw)
	if err != nil {
		return Outcome{}, err
	}

	if p.IsHandshake() {
		return Outcome{Kind: OutcomeHandshakeData, Data: p.Data}, nil
	}
	return Outcome{Kind: OutcomeHandshakeError, Code: p.SecureError}, nil
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// Callback receives dispatch results. It may also be set later with
	// SetCallback, but must be present before the first Process call.
	Callback Callback

	// LoggerFactory is the factory for creating loggers.
	// If nil, logging is disabled.
	LoggerFactory logging.LoggerFactory
}

// Dispatcher routes secure-service protocol messages to a Callback.
//
// It keeps no state between messages other than the registered callback.
// SetCallback and Process may be called from different goroutines; the
// callback itself is invoked outside the lock, on the goroutine calling
// Process, so messages delivered by a single goroutine are reported in order.
type Dispatcher struct {
	callback Callback
	log      logging.LeveledLogger

	mu sync.RWMutex
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(config DispatcherConfig) *Dispatcher {
	d := &Dispatcher{
		callback: registrable(config.Callback),
	}

	if config.LoggerFactory != nil {
		d.log = config.LoggerFactory.NewLogger("secureservice")
	}

	return d
}

// SetCallback replaces the registered callback. The previous callback is
// not notified. A nil callback, including a nil pointer of a concrete
// type, clears the registration.
func (d *Dispatcher) SetCallback(cb Callback) {
	cb = registrable(cb)

	d.mu.Lock()
	d.callback = cb
	d.mu.Unlock()
}

// registrable returns nil for an interface holding a nil pointer, map,
// func, chan or slice, and cb otherwise.
func registrable(cb Callback) Callback {
	if cb == nil {
		return nil
	}
	switch v := reflect.ValueOf(cb); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		if v.IsNil() {
			return nil
		}
	}
	return cb
}

// Process classifies msg and invokes exactly one callback method.
//
// It returns ErrNoCallbackRegistered if no callback is set, and an error
// wrapping ErrMalformedPayload if the payload is shorter than HeaderSize.
// In both cases no callback method is invoked.
func (d *Dispatcher) Process(msg *protocol.ProtocolMessage) error {
	d.mu.RLock()
	cb := d.callback
	d.mu.RUnlock()

	if cb == nil {
		return ErrNoCallbackRegistered
	}

	var raw []byte
	if msg != nil {
		raw = msg.Data
	}

	outcome, err := Classify(raw)
	if err != nil {
		if d.log != nil {
			d.log.Warnf("dropping secure message %s: %v", msg, err)
		}
		return err
	}

	switch outcome.Kind {
	case OutcomeHandshakeData:
		if d.log != nil {
			d.log.Debugf("handshake data from %s: %d bytes", msg, len(outcome.Data))
		}
		cb.OnHandshakeData(outcome.Data)
	default:
		if d.log != nil {
			d.log.Debugf("handshake error from %s: %s", msg, outcome.Code)
		}
		cb.OnHandshakeError(outcome.Code)
	}

	return nil
}
