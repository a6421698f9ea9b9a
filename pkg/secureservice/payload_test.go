package secureservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// header builds a raw secure-service header with the given fields.
func header(functionID FunctionID, code SecureError) []byte {
	return []byte{
		byte(functionID >> 24), byte(functionID >> 16), byte(functionID >> 8), byte(functionID),
		byte(code >> 24), byte(code >> 16), byte(code >> 8), byte(code),
		0x00, 0x00, 0x00, 0x00,
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		raw       []byte
		wantFunc  FunctionID
		wantError SecureError
		wantData  []byte
	}{
		{
			name:     "handshake with data",
			raw:      append(header(FunctionIDSendHandshakeData, 0), 0xDE, 0xAD, 0xBE, 0xEF),
			wantFunc: FunctionIDSendHandshakeData,
			wantData: []byte{0xDE, 0xAD, 0xBE, 0xEF},
		},
		{
			name:      "internal error",
			raw:       header(FunctionIDSendInternalError, SecureErrorHandshakeFailed),
			wantFunc:  FunctionIDSendInternalError,
			wantError: SecureErrorHandshakeFailed,
			wantData:  []byte{},
		},
		{
			name:      "unknown function keeps trailing bytes",
			raw:       append(header(0x99, 7), 0x01, 0x02),
			wantFunc:  0x99,
			wantError: SecureErrorEncryptionFailed,
			wantData:  []byte{0x01, 0x02},
		},
		{
			name:     "reserved bytes are ignored",
			raw:      []byte{0, 0, 0, 1, 0, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF, 0x42},
			wantFunc: FunctionIDSendHandshakeData,
			wantData: []byte{0x42},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Decode(tc.raw)
			require.NoError(t, err)

			assert.Equal(t, tc.wantFunc, p.FunctionID)
			assert.Equal(t, tc.wantError, p.SecureError)
			assert.Equal(t, tc.wantData, p.Data)
			assert.Equal(t, len(tc.raw), HeaderSize+len(p.Data))
		})
	}
}

func TestDecodeDataMatchesTail(t *testing.T) {
	for n := HeaderSize; n < HeaderSize+64; n++ {
		raw := make([]byte, n)
		for i := range raw {
			raw[i] = byte(i * 31)
		}

		p, err := Decode(raw)
		require.NoError(t, err)
		require.Equal(t, raw[HeaderSize:], p.Data, "length %d", n)
	}
}

func TestDecodeCopiesData(t *testing.T) {
	raw := append(header(FunctionIDSendHandshakeData, 0), 0x01, 0x02)

	p, err := Decode(raw)
	require.NoError(t, err)

	raw[HeaderSize] = 0xFF
	assert.Equal(t, []byte{0x01, 0x02}, p.Data)
}

func TestDecodeMalformed(t *testing.T) {
	for n := 0; n < HeaderSize; n++ {
		p, err := Decode(make([]byte, n))
		assert.ErrorIs(t, err, ErrMalformedPayload, "length %d", n)
		assert.Nil(t, p)
	}

	_, err := Decode(nil)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestEncode(t *testing.T) {
	p := NewHandshakeData([]byte{0x16, 0x03, 0x03})
	want := append(header(FunctionIDSendHandshakeData, SecureErrorSuccess), 0x16, 0x03, 0x03)
	assert.Equal(t, want, p.Encode())

	e := NewInternalError(SecureErrorInvalidCert)
	assert.Equal(t, header(FunctionIDSendInternalError, SecureErrorInvalidCert), e.Encode())
}

func TestEncodeDecode(t *testing.T) {
	tests := []*SecureServicePayload{
		NewHandshakeData([]byte{0x16, 0x03, 0x01, 0x02, 0x00}),
		NewInternalError(SecureErrorExpiredCert),
		{FunctionID: 0xABCDEF, SecureError: 0x1234, Data: []byte("opaque")},
	}

	for _, want := range tests {
		t.Run(want.String(), func(t *testing.T) {
			got, err := Decode(want.Encode())
			require.NoError(t, err)
			assert.Equal(t, want.FunctionID, got.FunctionID)
			assert.Equal(t, want.SecureError, got.SecureError)
			assert.Equal(t, len(want.Data), len(got.Data))
			assert.Equal(t, string(want.Data), string(got.Data))
		})
	}
}

func TestIsHandshake(t *testing.T) {
	assert.True(t, NewHandshakeData(nil).IsHandshake())
	assert.False(t, NewInternalError(SecureErrorInternal).IsHandshake())
}
