package protocol

import "fmt"

// ProtocolMessage is a single application-level message received from a peer.
type ProtocolMessage struct {
	Version     uint8
	ServiceType ServiceType
	SessionID   uint8
	MessageID   uint32

	// Encrypted reports that Data was protected by the session's security
	// layer on the wire.
	Encrypted bool

	// Data is the service payload.
	Data []byte
}

// String returns a short description used in log lines.
func (m *ProtocolMessage) String() string {
	if m == nil {
		return "<nil message>"
	}
	return fmt.Sprintf("%s[session=%d id=%d len=%d]", m.ServiceType, m.SessionID, m.MessageID, len(m.Data))
}
