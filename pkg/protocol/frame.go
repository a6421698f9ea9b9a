package protocol

import (
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// DecodeFrame parses a single-frame message from a datagram.
// The returned message's Data is a copy of the frame payload.
func DecodeFrame(frame []byte) (*ProtocolMessage, error) {
	if len(frame) < HeaderSize {
		return nil, ErrFrameTooShort
	}

	var (
		flags, frameInfo uint8
		dataSize         uint32
		m                ProtocolMessage
	)

	s := cryptobyte.String(frame)
	if !s.ReadUint8(&flags) ||
		!s.ReadUint8((*uint8)(&m.ServiceType)) ||
		!s.ReadUint8(&frameInfo) ||
		!s.ReadUint8(&m.SessionID) ||
		!s.ReadUint32(&dataSize) ||
		!s.ReadUint32(&m.MessageID) {
		return nil, ErrFrameTooShort
	}

	m.Version = flags >> flagVersionShift
	if m.Version < MinVersion || m.Version > MaxVersion {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, m.Version)
	}
	m.Encrypted = flags&flagEncrypted != 0

	if ft := FrameType(flags & flagFrameTypeMask); ft != FrameTypeSingle {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFrameType, ft)
	}

	if dataSize > MaxDataSize {
		return nil, fmt.Errorf("%w: header says %d", ErrFrameTooLarge, dataSize)
	}
	if int64(dataSize) != int64(len(s)) {
		return nil, fmt.Errorf("%w: header says %d, got %d", ErrDataSizeMismatch, dataSize, len(s))
	}

	m.Data = make([]byte, len(s))
	copy(m.Data, s)

	return &m, nil
}

// EncodeFrame serializes m as a single frame.
// A zero Version is encoded as MinVersion.
func (m *ProtocolMessage) EncodeFrame() ([]byte, error) {
	if len(m.Data) > MaxDataSize {
		return nil, ErrFrameTooLarge
	}

	version := m.Version
	if version == 0 {
		version = MinVersion
	}
	if version < MinVersion || version > MaxVersion {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, version)
	}

	flags := version<<flagVersionShift | uint8(FrameTypeSingle)
	if m.Encrypted {
		flags |= flagEncrypted
	}

	b := cryptobyte.NewFixedBuilder(make([]byte, 0, HeaderSize+len(m.Data)))
	b.AddUint8(flags)
	b.AddUint8(uint8(m.ServiceType))
	b.AddUint8(0) // frame info is unused for single frames
	b.AddUint8(m.SessionID)
	b.AddUint32(uint32(len(m.Data)))
	b.AddUint32(m.MessageID)
	b.AddBytes(m.Data)
	return b.Bytes()
}
