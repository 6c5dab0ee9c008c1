package crypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"
	"io"
)

// randReader is the random source used for key and IV generation.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

func randSource() io.Reader {
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}

// KeyPair is an ephemeral P-256 key pair. It lives for exactly one
// handshake: generate, compute the shared secret, discard.
type KeyPair struct {
	privateKey *ecdh.PrivateKey

	// PublicKey is the raw uncompressed P-256 public key (65 bytes),
	// safe to transmit.
	PublicKey []byte
}

// GenerateKeyPair creates a fresh ephemeral P-256 key pair.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := ecdh.P256().GenerateKey(randSource())
	if err != nil {
		return nil, fmt.Errorf("failed to generate P-256 key pair: %w", err)
	}

	return &KeyPair{
		privateKey: priv,
		PublicKey:  priv.PublicKey().Bytes(),
	}, nil
}

// SharedSecret computes the 32-byte ECDH shared secret against a peer's raw
// uncompressed public key. Malformed or off-curve peer points are rejected
// with ErrInvalidPeerKey before any computation.
func (kp *KeyPair) SharedSecret(peerPublicKey []byte) ([]byte, error) {
	if len(peerPublicKey) != PublicKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidPeerKey, len(peerPublicKey), PublicKeySize)
	}

	peer, err := ecdh.P256().NewPublicKey(peerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeerKey, err)
	}

	secret, err := kp.privateKey.ECDH(peer)
	if err != nil {
		return nil, fmt.Errorf("ECDH computation failed: %w", err)
	}

	return secret, nil
}
