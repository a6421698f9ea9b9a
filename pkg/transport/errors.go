package transport

import "errors"

// Transport errors.
var (
	// ErrClosed is returned when an operation is attempted on a closed endpoint.
	ErrClosed = errors.New("transport: closed")

	// ErrInvalidAddress is returned when a nil peer address is provided.
	ErrInvalidAddress = errors.New("transport: invalid address")

	// ErrNoHandler is returned when no frame handler is configured.
	ErrNoHandler = errors.New("transport: no frame handler configured")

	// ErrAlreadyStarted is returned when Start is called on a running endpoint.
	ErrAlreadyStarted = errors.New("transport: already started")

	// ErrMessageTooLarge is returned when an encoded frame exceeds MaxDatagramSize.
	ErrMessageTooLarge = errors.New("transport: message too large")

	// ErrDrainTimeout is returned when a Pipe still holds queued datagrams
	// after the drain deadline.
	ErrDrainTimeout = errors.New("transport: pipe drain timed out")
)
