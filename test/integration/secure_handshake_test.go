package integration

import (
	"testing"
	"time"

	"github.com/backkem/applink/pkg/protocol"
	"github.com/backkem/applink/pkg/router"
	"github.com/backkem/applink/pkg/secureservice"
	"github.com/pion/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secureFrame(id uint32, payload *secureservice.SecureServicePayload) *protocol.ProtocolMessage {
	return &protocol.ProtocolMessage{
		Version:     2,
		ServiceType: protocol.ServiceTypeSecure,
		SessionID:   1,
		MessageID:   id,
		Data:        payload.Encode(),
	}
}

func TestSecureHandshakeOverPipe(t *testing.T) {
	pair := NewTestPair(t, logging.NewDefaultLoggerFactory())
	defer pair.Close()

	clientHello := []byte{0x16, 0x03, 0x01, 0x00, 0x05, 0x01, 0x00, 0x00, 0x01, 0x00}
	pair.Send(t, secureFrame(1, secureservice.NewHandshakeData(clientHello)))

	ev := pair.NextEvent(t)
	require.False(t, ev.IsError)
	assert.Equal(t, clientHello, ev.Data)

	pair.Send(t, secureFrame(2, secureservice.NewInternalError(secureservice.SecureErrorHandshakeFailed)))

	ev = pair.NextEvent(t)
	require.True(t, ev.IsError)
	assert.Equal(t, secureservice.SecureErrorHandshakeFailed, ev.Code)
}

func TestSecureHandshakePreservesOrder(t *testing.T) {
	pair := NewTestPair(t, nil)
	defer pair.Close()

	const count = 16
	for i := 0; i < count; i++ {
		var p *secureservice.SecureServicePayload
		if i%2 == 0 {
			p = secureservice.NewHandshakeData([]byte{byte(i)})
		} else {
			p = secureservice.NewInternalError(secureservice.SecureError(i))
		}
		pair.Send(t, secureFrame(uint32(i), p))
	}

	for i := 0; i < count; i++ {
		ev := pair.NextEvent(t)
		if i%2 == 0 {
			require.False(t, ev.IsError, "event %d", i)
			assert.Equal(t, []byte{byte(i)}, ev.Data)
		} else {
			require.True(t, ev.IsError, "event %d", i)
			assert.Equal(t, secureservice.SecureError(i), ev.Code)
		}
	}
}

func TestMalformedSecurePayloadIsReported(t *testing.T) {
	pair := NewTestPair(t, nil)
	defer pair.Close()

	pair.Send(t, &protocol.ProtocolMessage{
		Version:     2,
		ServiceType: protocol.ServiceTypeSecure,
		Data:        []byte{0, 0, 0, 1, 0},
	})

	err := pair.NextError(t)
	assert.ErrorIs(t, err, secureservice.ErrMalformedPayload)

	select {
	case ev := <-pair.Events:
		t.Fatalf("unexpected callback %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNonSecureTrafficIsNotDispatched(t *testing.T) {
	pair := NewTestPair(t, nil)
	defer pair.Close()

	pair.Send(t, &protocol.ProtocolMessage{
		Version:     2,
		ServiceType: protocol.ServiceTypeRPC,
		Data:        []byte(`{"method":"StartScan"}`),
	})
	assert.ErrorIs(t, pair.NextError(t), router.ErrNoHandler)

	pair.SendRaw(t, []byte{0x22, 0x91, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1})
	assert.ErrorIs(t, pair.NextError(t), protocol.ErrUnsupportedFrameType)

	assert.Empty(t, pair.Events)
}
