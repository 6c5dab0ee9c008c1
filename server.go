package edgeseal

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edgeseal/transit-go/internal/crypto"
	"github.com/edgeseal/transit-go/internal/session"
	"github.com/edgeseal/transit-go/internal/wire"
)

// Server is the server side of the protocol: it answers handshakes, keeps
// the session table, and wraps application handlers with transparent
// decryption and encryption.
type Server struct {
	store      session.Store
	iterations int
	log        zerolog.Logger
}

// NewServer creates a server with an in-memory session table unless
// WithStore supplies another.
func NewServer(opts ...ServerOption) *Server {
	cfg := &serverConfig{
		ttl:        session.DefaultTTL,
		iterations: crypto.DefaultIterations,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := cfg.store
	if store == nil {
		store = session.NewMemoryStore(cfg.ttl)
	}

	return &Server{
		store:      store,
		iterations: cfg.iterations,
		log:        cfg.logger,
	}
}

// Store exposes the session table, mainly for tests and operational
// tooling.
func (s *Server) Store() session.Store {
	return s.store
}

// HandshakeHandler answers the client's opening request: generate an
// ephemeral pair, compute the shared secret against the client's public
// key, derive session keys, create the session, and return only the
// non-secret parameters the client needs to derive the same keys itself.
func (s *Server) HandshakeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req wire.HandshakeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.ClientPublicKey) == 0 {
			writeError(w, http.StatusBadRequest, "malformed handshake request")
			return
		}

		kp, err := crypto.GenerateKeyPair()
		if err != nil {
			s.log.Error().Err(err).Msg("handshake: key generation failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		secret, err := kp.SharedSecret(req.ClientPublicKey)
		if err != nil {
			s.log.Warn().Err(err).Msg("handshake: rejected client public key")
			writeError(w, http.StatusBadRequest, "malformed handshake request")
			return
		}

		salt, err := crypto.RandomSalt()
		if err != nil {
			s.log.Error().Err(err).Msg("handshake: salt generation failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		keys, err := crypto.DeriveKeys(secret, salt, s.iterations)
		if err != nil {
			s.log.Error().Err(err).Msg("handshake: key derivation failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		sess, err := s.store.Create(keys)
		if err != nil {
			s.log.Error().Err(err).Msg("handshake: session creation failed")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		s.log.Debug().Str("session_id", sess.ID).Time("expires_at", sess.ExpiresAt).Msg("session established")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(wire.HandshakeResponse{
			SessionID:       sess.ID,
			ServerPublicKey: kp.PublicKey,
			Salt:            salt,
			Iterations:      s.iterations,
			ExpiresAt:       sess.ExpiresAt.UnixMilli(),
		})
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
