package edgeseal

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/edgeseal/transit-go/internal/session"
)

const defaultTimeout = 30 * time.Second

// clientConfig holds configuration for the client transport.
type clientConfig struct {
	handshakePath string
	base          http.RoundTripper
	timeout       time.Duration
}

// Option configures the client transport.
type Option func(*clientConfig)

// WithHandshakePath sets the path of the server's handshake endpoint.
// Default: DefaultHandshakePath.
func WithHandshakePath(path string) Option {
	return func(c *clientConfig) {
		c.handshakePath = path
	}
}

// WithTransport sets the underlying round tripper carrying the encrypted
// traffic. Default: http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *clientConfig) {
		c.base = rt
	}
}

// WithTimeout sets the ambient HTTP timeout used by Client. There is no
// handshake-specific timeout; the handshake rides on the same limit.
// Default: 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// serverConfig holds configuration for the server side.
type serverConfig struct {
	store      session.Store
	ttl        time.Duration
	iterations int
	logger     zerolog.Logger
}

// ServerOption configures the server side.
type ServerOption func(*serverConfig)

// WithConfig applies deployable parameters, typically from LoadConfig.
func WithConfig(cfg Config) ServerOption {
	return func(c *serverConfig) {
		if cfg.SessionTTL > 0 {
			c.ttl = cfg.SessionTTL
		}
		if cfg.PBKDF2Iterations > 0 {
			c.iterations = cfg.PBKDF2Iterations
		}
	}
}

// WithSessionTTL sets the session lifetime. Default: 15 minutes.
func WithSessionTTL(ttl time.Duration) ServerOption {
	return func(c *serverConfig) {
		c.ttl = ttl
	}
}

// WithIterations sets the PBKDF2 iteration count the server dictates to
// clients. Default: 100,000.
func WithIterations(n int) ServerOption {
	return func(c *serverConfig) {
		c.iterations = n
	}
}

// WithStore replaces the in-memory session table, for example with a
// distributed implementation.
func WithStore(store session.Store) ServerOption {
	return func(c *serverConfig) {
		c.store = store
	}
}

// WithLogger sets the server logger. Default: no logging.
func WithLogger(logger zerolog.Logger) ServerOption {
	return func(c *serverConfig) {
		c.logger = logger
	}
}
