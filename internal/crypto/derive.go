package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

// Keys holds the two independent 32-byte keys of one session.
type Keys struct {
	// AES keys the AES-256-GCM cipher.
	AES []byte
	// MAC keys the HMAC-SHA-256 integrity check.
	MAC []byte
}

// Valid reports whether both keys have their required sizes.
func (k *Keys) Valid() bool {
	return k != nil && len(k.AES) == AESKeySize && len(k.MAC) == MACKeySize
}

// DeriveKeys stretches an ECDH shared secret into session keys with
// PBKDF2-SHA-256. The 64-byte output is split at byte 32: the first half
// keys the cipher, the second half keys the HMAC. The derivation is
// deterministic, so client and server reach identical keys from the same
// (secret, salt, iterations) without any key material crossing the wire.
func DeriveKeys(sharedSecret, salt []byte, iterations int) (*Keys, error) {
	if len(sharedSecret) == 0 || len(salt) == 0 {
		return nil, ErrEmptySecret
	}
	if iterations < MinIterations {
		return nil, ErrWeakIterations
	}

	material := pbkdf2.Key(sharedSecret, salt, iterations, KeyMaterialSize, sha256.New)

	return &Keys{
		AES: material[:AESKeySize],
		MAC: material[AESKeySize:],
	}, nil
}
