package crypto

const (
	// PublicKeySize is the size of a raw uncompressed P-256 public key in bytes.
	PublicKeySize = 65
	// SharedSecretSize is the size of a P-256 ECDH shared secret in bytes.
	SharedSecretSize = 32

	// AESKeySize is the size of an AES-256 key in bytes.
	AESKeySize = 32
	// MACKeySize is the size of an HMAC-SHA-256 key in bytes.
	MACKeySize = 32
	// KeyMaterialSize is the total PBKDF2 output split into the two session keys.
	KeyMaterialSize = AESKeySize + MACKeySize

	// IVSize is the size of an AES-GCM IV in bytes.
	IVSize = 12
	// TagSize is the size of an AES-GCM authentication tag in bytes.
	TagSize = 16
	// MACSize is the size of an HMAC-SHA-256 digest in bytes.
	MACSize = 32

	// SaltSize is the size of the per-session PBKDF2 salt in bytes.
	SaltSize = 16

	// DefaultIterations is the default PBKDF2 iteration count. The server
	// transmits its count in the handshake, so this is a server-side default
	// rather than a protocol constant.
	DefaultIterations = 100_000
	// MinIterations is the lowest iteration count DeriveKeys accepts.
	// Counts below this floor weaken the stretch enough to be a bug.
	MinIterations = 10_000
)

// Ciphersuite is the canonical string representation of the algorithm suite.
var Ciphersuite = "ECDH-P256:PBKDF2-SHA-256:AES-256-GCM:HMAC-SHA-256"
