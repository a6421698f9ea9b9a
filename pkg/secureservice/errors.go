package secureservice

import (
	"errors"
	"fmt"
)

// Errors
var (
	// ErrMalformedPayload is returned when a payload is shorter than HeaderSize.
	ErrMalformedPayload = errors.New("secureservice: malformed payload")

	// ErrNoCallbackRegistered is returned by Process before a callback is set.
	ErrNoCallbackRegistered = errors.New("secureservice: no callback registered")
)

// HandshakeRejectedError describes a decoded message that was not handshake
// data. It is delivered as an Outcome, never returned from Process.
type HandshakeRejectedError struct {
	Code SecureError
}

// Error implements the error interface.
func (e *HandshakeRejectedError) Error() string {
	return fmt.Sprintf("secureservice: handshake rejected by peer: %s", e.Code)
}
