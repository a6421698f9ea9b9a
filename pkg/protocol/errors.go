package protocol

import "errors"

// Frame errors.
var (
	ErrFrameTooShort        = errors.New("protocol: frame too short")
	ErrFrameTooLarge        = errors.New("protocol: frame exceeds maximum size")
	ErrInvalidVersion       = errors.New("protocol: unsupported protocol version")
	ErrUnsupportedFrameType = errors.New("protocol: unsupported frame type")
	ErrDataSizeMismatch     = errors.New("protocol: data size does not match frame length")
)

// Frame format constants.
const (
	// HeaderSize is the frame header size for protocol versions 2 and later.
	// Flags (1) + Service Type (1) + Frame Info (1) + Session ID (1) +
	// Data Size (4) + Message ID (4) = 12
	HeaderSize = 12

	// MinVersion and MaxVersion bound the accepted protocol versions.
	// Version 1 used an 8-byte header without a message ID.
	MinVersion uint8 = 2
	MaxVersion uint8 = 5

	// MaxDataSize is the largest single-frame payload accepted.
	MaxDataSize = 1 << 20
)

// First header byte layout.
const (
	flagVersionShift        = 4
	flagEncrypted     uint8 = 0x08
	flagFrameTypeMask uint8 = 0x07
)
