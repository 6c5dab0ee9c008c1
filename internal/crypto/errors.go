package crypto

import "errors"

var (
	// ErrInvalidPeerKey is returned when a peer public key is malformed or
	// not a point on the curve.
	ErrInvalidPeerKey = errors.New("invalid peer public key")

	// ErrEmptySecret is returned when key derivation is given an empty
	// shared secret or salt.
	ErrEmptySecret = errors.New("empty derivation input")

	// ErrWeakIterations is returned when the PBKDF2 iteration count is
	// below the safety floor.
	ErrWeakIterations = errors.New("pbkdf2 iteration count below safety floor")

	// ErrInvalidKeys is returned when session keys have the wrong sizes.
	ErrInvalidKeys = errors.New("invalid session keys")

	// ErrMalformedMessage is returned when a sealed message has
	// wrongly-sized iv, tag, or hmac fields.
	ErrMalformedMessage = errors.New("malformed sealed message")

	// ErrTampered is returned when the HMAC over a sealed message does not
	// verify. The ciphertext is never handed to the cipher in this case.
	ErrTampered = errors.New("message authentication failed")

	// ErrDecryptionFailed is returned when GCM rejects a message whose HMAC
	// verified. This indicates a corrupted envelope or a key mismatch.
	ErrDecryptionFailed = errors.New("decryption failed")
)
