package wire

import (
	"encoding/json"

	"github.com/edgeseal/transit-go/internal/crypto"
)

// HandshakeRequest is the client's opening message: its ephemeral public
// key as a raw uncompressed P-256 point.
type HandshakeRequest struct {
	ClientPublicKey []byte `json:"clientPublicKey"`
}

// HandshakeResponse carries everything the client needs to derive the same
// session keys the server just derived. Nothing in it is secret: the salt
// and iteration count are derivation parameters, and the key material
// itself is reconstructed on each side from the ECDH exchange.
type HandshakeResponse struct {
	SessionID       string `json:"sessionId"`
	ServerPublicKey []byte `json:"serverPublicKeyB64"`
	Salt            []byte `json:"pbkdf2Salt"`
	Iterations      int    `json:"pbkdf2Iterations"`
	// ExpiresAt is epoch milliseconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// Envelope is the wire form of one encrypted message.
type Envelope struct {
	IV         []byte `json:"iv"`
	Ciphertext []byte `json:"ciphertext"`
	Tag        []byte `json:"tag"`
	MAC        []byte `json:"hmac"`
}

// FromSealed converts a sealed message to its wire form.
func FromSealed(msg *crypto.SealedMessage) *Envelope {
	return &Envelope{
		IV:         msg.IV,
		Ciphertext: msg.Ciphertext,
		Tag:        msg.Tag,
		MAC:        msg.MAC,
	}
}

// Sealed converts the envelope back to the crypto layer's representation.
func (e *Envelope) Sealed() *crypto.SealedMessage {
	return &crypto.SealedMessage{
		IV:         e.IV,
		Ciphertext: e.Ciphertext,
		Tag:        e.Tag,
		MAC:        e.MAC,
	}
}

// ParseEnvelope decodes body as an envelope. The second return value
// reports whether the body was a well-formed envelope at all, so callers
// can pass through bodies that were never encrypted (for example an error
// emitted before the encryption layer ran).
func ParseEnvelope(body []byte) (*Envelope, bool) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, false
	}
	if len(env.IV) == 0 || len(env.Tag) == 0 || len(env.MAC) == 0 {
		return nil, false
	}
	return &env, true
}
