package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"
)

// SealedMessage is one authenticated ciphertext with its session binding.
// All fields are raw bytes; wire encoding lives in the wire package.
type SealedMessage struct {
	IV         []byte // 12-byte GCM IV, fresh per seal
	Ciphertext []byte
	Tag        []byte // 16-byte GCM tag, carried separately from the ciphertext
	MAC        []byte // 32-byte HMAC over sessionID || iv || ciphertext || tag
}

// wellFormed checks field sizes only, not authenticity.
func (m *SealedMessage) wellFormed() bool {
	return m != nil && len(m.IV) == IVSize && len(m.Tag) == TagSize && len(m.MAC) == MACSize
}

// Seal encrypts plaintext under a session's keys. Every call draws a fresh
// random IV; the GCM output is split into ciphertext and tag, and an
// independent HMAC binds both to the session id.
func Seal(keys *Keys, sessionID string, plaintext []byte) (*SealedMessage, error) {
	if !keys.Valid() {
		return nil, ErrInvalidKeys
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(randSource(), iv); err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}

	aead, err := newGCM(keys.AES)
	if err != nil {
		return nil, err
	}

	sealed := aead.Seal(nil, iv, plaintext, nil)
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	return &SealedMessage{
		IV:         iv,
		Ciphertext: ciphertext,
		Tag:        tag,
		MAC:        computeMAC(keys.MAC, sessionID, iv, ciphertext, tag),
	}, nil
}

// Open verifies and decrypts a sealed message. The HMAC is checked first
// with a constant-time comparison; GCM only ever sees ciphertext whose HMAC
// verified. ErrTampered means the HMAC failed, ErrDecryptionFailed means
// GCM rejected a message that passed the HMAC.
func Open(keys *Keys, sessionID string, msg *SealedMessage) ([]byte, error) {
	if !keys.Valid() {
		return nil, ErrInvalidKeys
	}
	if !msg.wellFormed() {
		return nil, ErrMalformedMessage
	}

	expected := computeMAC(keys.MAC, sessionID, msg.IV, msg.Ciphertext, msg.Tag)
	if !hmac.Equal(expected, msg.MAC) {
		return nil, ErrTampered
	}

	aead, err := newGCM(keys.AES)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(msg.Ciphertext)+TagSize)
	sealed = append(sealed, msg.Ciphertext...)
	sealed = append(sealed, msg.Tag...)

	plaintext, err := aead.Open(nil, msg.IV, sealed, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}

func computeMAC(key []byte, sessionID string, iv, ciphertext, tag []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(sessionID))
	mac.Write(iv)
	mac.Write(ciphertext)
	mac.Write(tag)
	return mac.Sum(nil)
}

// RandomSalt returns a fresh random PBKDF2 salt.
func RandomSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(randSource(), salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
