// Package secureservice implements the AppLink secure-service sub-protocol
// dispatcher.
//
// Secure-service messages ride inside ordinary protocol messages. Their
// payload starts with a fixed 12-byte header carrying a function identifier
// and a peer-reported error code; the bytes after the header are function
// specific. For the handshake-exchange function those bytes are raw TLS/DTLS
// records that the security layer consumes.
//
// This package only classifies and extracts. It performs no cryptography and
// keeps no session state.
package secureservice

import "fmt"

// FunctionID identifies a secure-service operation.
type FunctionID uint32

// Secure-service function identifiers.
const (
	// FunctionIDSendHandshakeData carries handshake records in the payload data.
	FunctionIDSendHandshakeData FunctionID = 0x000001

	// FunctionIDSendInternalError reports a failure through the error field.
	FunctionIDSendInternalError FunctionID = 0x000002
)

// String returns the function name.
func (f FunctionID) String() string {
	switch f {
	case FunctionIDSendHandshakeData:
		return "SendHandshakeData"
	case FunctionIDSendInternalError:
		return "SendInternalError"
	default:
		return fmt.Sprintf("Unknown(0x%06X)", uint32(f))
	}
}

// SecureError is the error code a peer reports in the secure-service header.
type SecureError uint32

// Secure-service error codes.
const (
	SecureErrorSuccess                 SecureError = 0x00
	SecureErrorInvalidQuerySize        SecureError = 0x01
	SecureErrorInvalidQueryID          SecureError = 0x02
	SecureErrorNotSupported            SecureError = 0x03
	SecureErrorServiceAlreadyProtected SecureError = 0x04
	SecureErrorServiceNotProtected     SecureError = 0x05
	SecureErrorDecryptionFailed        SecureError = 0x06
	SecureErrorEncryptionFailed        SecureError = 0x07
	SecureErrorSSLInvalidData          SecureError = 0x08
	SecureErrorHandshakeFailed         SecureError = 0x09
	SecureErrorInvalidCert             SecureError = 0x0A
	SecureErrorExpiredCert             SecureError = 0x0B
	SecureErrorUnknownInternal         SecureError = 0xFE
	SecureErrorInternal                SecureError = 0xFF
)

// String returns the error code name.
func (e SecureError) String() string {
	switch e {
	case SecureErrorSuccess:
		return "SUCCESS"
	case SecureErrorInvalidQuerySize:
		return "INVALID_QUERY_SIZE"
	case SecureErrorInvalidQueryID:
		return "INVALID_QUERY_ID"
	case SecureErrorNotSupported:
		return "NOT_SUPPORTED"
	case SecureErrorServiceAlreadyProtected:
		return "SERVICE_ALREADY_PROTECTED"
	case SecureErrorServiceNotProtected:
		return "SERVICE_NOT_PROTECTED"
	case SecureErrorDecryptionFailed:
		return "DECRYPTION_FAILED"
	case SecureErrorEncryptionFailed:
		return "ENCRYPTION_FAILED"
	case SecureErrorSSLInvalidData:
		return "SSL_INVALID_DATA"
	case SecureErrorHandshakeFailed:
		return "HANDSHAKE_FAILED"
	case SecureErrorInvalidCert:
		return "INVALID_CERT"
	case SecureErrorExpiredCert:
		return "EXPIRED_CERT"
	case SecureErrorUnknownInternal:
		return "UNKNOWN_INTERNAL_ERROR"
	case SecureErrorInternal:
		return "INTERNAL"
	default:
		return fmt.Sprintf("UNKNOWN(0x%02X)", uint32(e))
	}
}
