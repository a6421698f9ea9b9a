// Package protocol implements the AppLink protocol message envelope.
//
// A ProtocolMessage is what the transport hands to service handlers: an
// opaque payload tagged with the service it belongs to. This package decodes
// single-frame messages from datagrams; multi-frame reassembly and session
// control are handled elsewhere.
package protocol

import "fmt"

// ServiceType identifies the service a protocol message belongs to.
type ServiceType uint8

const (
	ServiceTypeControl ServiceType = 0x00
	ServiceTypeRPC     ServiceType = 0x07
	ServiceTypeAudio   ServiceType = 0x0A
	ServiceTypeVideo   ServiceType = 0x0B
	ServiceTypeBulk    ServiceType = 0x0F

	// ServiceTypeSecure carries secure-service (handshake) traffic.
	ServiceTypeSecure ServiceType = 0x91
)

// String returns a human-readable name for the service type.
func (s ServiceType) String() string {
	switch s {
	case ServiceTypeControl:
		return "Control"
	case ServiceTypeRPC:
		return "RPC"
	case ServiceTypeAudio:
		return "Audio"
	case ServiceTypeVideo:
		return "Video"
	case ServiceTypeBulk:
		return "Bulk"
	case ServiceTypeSecure:
		return "Secure"
	default:
		return fmt.Sprintf("Unknown(0x%02X)", uint8(s))
	}
}

// FrameType is the low three bits of the first header byte.
type FrameType uint8

const (
	FrameTypeControl     FrameType = 0x00
	FrameTypeSingle      FrameType = 0x01
	FrameTypeFirst       FrameType = 0x02
	FrameTypeConsecutive FrameType = 0x03
)

// String returns a human-readable name for the frame type.
func (f FrameType) String() string {
	switch f {
	case FrameTypeControl:
		return "Control"
	case FrameTypeSingle:
		return "Single"
	case FrameTypeFirst:
		return "First"
	case FrameTypeConsecutive:
		return "Consecutive"
	default:
		return "Unknown"
	}
}
