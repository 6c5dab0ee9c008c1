package edgeseal

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/edgeseal/transit-go/internal/crypto"
	"github.com/edgeseal/transit-go/internal/session"
)

// Environment variable names. Cryptographic cost parameters are deployable
// without code changes.
const (
	EnvSessionTTL       = "EDGESEAL_SESSION_TTL_MS"
	EnvPBKDF2Iterations = "EDGESEAL_PBKDF2_ITERATIONS"
	EnvHandshakePath    = "EDGESEAL_HANDSHAKE_PATH"
)

// Config holds the deployable protocol parameters.
type Config struct {
	// SessionTTL bounds session lifetime. Default 15 minutes.
	SessionTTL time.Duration
	// PBKDF2Iterations is the server-dictated derivation cost.
	// Default 100,000.
	PBKDF2Iterations int
	// HandshakePath is where the handshake endpoint is mounted.
	HandshakePath string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		SessionTTL:       session.DefaultTTL,
		PBKDF2Iterations: crypto.DefaultIterations,
		HandshakePath:    DefaultHandshakePath,
	}
}

// LoadConfig reads configuration from the environment, loading a .env file
// first if one is present. Unset or unparseable variables keep their
// defaults.
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if ms := envInt(EnvSessionTTL); ms > 0 {
		cfg.SessionTTL = time.Duration(ms) * time.Millisecond
	}
	if n := envInt(EnvPBKDF2Iterations); n >= crypto.MinIterations {
		cfg.PBKDF2Iterations = n
	}
	if p := os.Getenv(EnvHandshakePath); p != "" {
		cfg.HandshakePath = p
	}

	return cfg
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
