// Package crypto provides the cryptographic primitives for the edgeseal
// session protocol: ephemeral key agreement, session key derivation, and
// authenticated message sealing.
//
// # Algorithm Suite
//
// The package uses the following cryptographic algorithms:
//
//   - ECDH over NIST P-256: ephemeral key agreement for establishing a
//     per-session shared secret. Public keys travel as raw uncompressed
//     points (65 bytes), the encoding browser WebCrypto produces.
//
//   - PBKDF2-SHA-256 (RFC 8018): stretches the shared secret into 64 bytes
//     of session key material. The iteration count is chosen by the server
//     and transmitted in the handshake so it can be raised without client
//     changes.
//
//   - AES-256-GCM: authenticated encryption of message bodies. The 16-byte
//     GCM tag is carried separately from the ciphertext on the wire.
//
//   - HMAC-SHA-256: a second, independent integrity check over
//     sessionID || iv || ciphertext || tag. It is deliberately redundant
//     with the GCM tag: it guards against GCM verification bugs and binds
//     every message to its session, which blocks cross-session replay.
//
// # Security Model
//
// Each session derives two independent 32-byte keys from one PBKDF2 output:
// bytes [0:32) key the cipher, bytes [32:64) key the HMAC. The keys are
// never derived from each other.
//
// HMAC verification MUST run before GCM decryption, using a constant-time
// comparison. [Open] enforces this ordering: a forged message is rejected
// before the cipher ever sees it, and the two failure modes are reported as
// distinct errors ([ErrTampered] vs [ErrDecryptionFailed]).
//
// IVs MUST be unique per encryption under a given key. [Seal] draws a fresh
// random 12-byte IV for every call; reusing a (key, iv) pair destroys GCM's
// security entirely.
//
// Ephemeral private keys and raw shared secrets are never persisted or
// reused. Discard them as soon as session keys are derived.
package crypto
