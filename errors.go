package edgeseal

import (
	"errors"
	"fmt"

	"github.com/edgeseal/transit-go/internal/crypto"
	"github.com/edgeseal/transit-go/internal/session"
)

// Sentinel errors for errors.Is() checks. The crypto and session sentinels
// are aliased here so callers never import internal packages.
var (
	// ErrMissingBaseURL is returned when a client is constructed without a
	// base URL.
	ErrMissingBaseURL = errors.New("base URL is required")

	// ErrInvalidPeerKey is returned when a peer public key is malformed or
	// not on the curve.
	ErrInvalidPeerKey = crypto.ErrInvalidPeerKey

	// ErrWeakIterations is returned when a handshake offers a PBKDF2
	// iteration count below the safety floor.
	ErrWeakIterations = crypto.ErrWeakIterations

	// ErrTampered is returned when an envelope fails its HMAC check.
	ErrTampered = crypto.ErrTampered

	// ErrDecryptionFailed is returned when an envelope fails GCM
	// decryption after its HMAC verified.
	ErrDecryptionFailed = crypto.ErrDecryptionFailed

	// ErrUnknownSession is returned by the server session table when no
	// session exists for an id.
	ErrUnknownSession = session.ErrUnknownSession

	// ErrSessionExpired is returned by the server session table when a
	// session's TTL has elapsed.
	ErrSessionExpired = session.ErrSessionExpired

	// ErrHandshakeFailed is returned when the key exchange round trip
	// could not complete.
	ErrHandshakeFailed = errors.New("handshake failed")

	// ErrSessionRejected is returned when the server answered 401 again
	// after a fresh handshake. The automatic retry is bounded to one.
	ErrSessionRejected = errors.New("session rejected by server")
)

// HandshakeError wraps a failure during the key exchange round trip:
// a network error, a non-200 handshake status, or unusable handshake
// parameters.
type HandshakeError struct {
	URL string
	Err error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("handshake with %s failed: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *HandshakeError) Is(target error) bool {
	return target == ErrHandshakeFailed
}

// APIError represents an error status from the encrypted endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Is implements errors.Is for sentinel error matching.
func (e *APIError) Is(target error) bool {
	return e.StatusCode == 401 && target == ErrSessionRejected
}
