package secureservice

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// Secure-service header layout. All fields are big-endian.
//
//	0      4      8      12
//	+------+------+------+---------
//	| func | err  | rsvd | data ...
//	+------+------+------+---------
const (
	functionIDSize  = 4
	secureErrorSize = 4
	reservedSize    = 4

	// HeaderSize is the fixed secure-service header length in bytes.
	HeaderSize = functionIDSize + secureErrorSize + reservedSize
)

// SecureServicePayload is the decoded form of a secure-service message.
type SecureServicePayload struct {
	FunctionID  FunctionID
	SecureError SecureError
	Data        []byte
}

// NewHandshakeData creates a payload carrying handshake records.
func NewHandshakeData(data []byte) *SecureServicePayload {
	return &SecureServicePayload{
		FunctionID:  FunctionIDSendHandshakeData,
		SecureError: SecureErrorSuccess,
		Data:        data,
	}
}

// NewInternalError creates a payload reporting an error code to the peer.
func NewInternalError(code SecureError) *SecureServicePayload {
	return &SecureServicePayload{
		FunctionID:  FunctionIDSendInternalError,
		SecureError: code,
	}
}

// Decode parses a secure-service payload from raw message bytes.
// Data holds a copy of everything after the header.
func Decode(raw []byte) (*SecureServicePayload, error) {
	if len(raw) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrMalformedPayload, len(raw), HeaderSize)
	}

	var functionID, secureError uint32
	s := cryptobyte.String(raw)
	if !s.ReadUint32(&functionID) ||
		!s.ReadUint32(&secureError) ||
		!s.Skip(reservedSize) {
		return nil, ErrMalformedPayload
	}

	p := &SecureServicePayload{
		FunctionID:  FunctionID(functionID),
		SecureError: SecureError(secureError),
		Data:        make([]byte, len(s)),
	}
	copy(p.Data, s)

	return p, nil
}

// Encode serializes the payload. The reserved field is written as zero.
func (p *SecureServicePayload) Encode() []byte {
	b := cryptobyte.NewFixedBuilder(make([]byte, 0, HeaderSize+len(p.Data)))
	b.AddUint32(uint32(p.FunctionID))
	b.AddUint32(uint32(p.SecureError))
	b.AddUint32(0)
	b.AddBytes(p.Data)
	return b.BytesOrPanic()
}

// IsHandshake returns true if the payload carries handshake data.
func (p *SecureServicePayload) IsHandshake() bool {
	return p.FunctionID == FunctionIDSendHandshakeData
}

// String returns a human-readable representation.
func (p *SecureServicePayload) String() string {
	if p.IsHandshake() {
		return fmt.Sprintf("SecureServicePayload{Function: %s, Data: %d bytes}", p.FunctionID, len(p.Data))
	}
	return fmt.Sprintf("SecureServicePayload{Function: %s, Error: %s, Data: %d bytes}",
		p.FunctionID, p.SecureError, len(p.Data))
}
