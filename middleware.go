package edgeseal

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/edgeseal/transit-go/internal/crypto"
	"github.com/edgeseal/transit-go/internal/wire"
)

// Wrap returns middleware applying the session protocol around next.
// Requests without the X-Encrypted marker pass through untouched, keeping
// trusted server-to-server traffic plaintext. For encrypted requests the
// inner handler receives a synthetic plaintext request and never learns
// encryption happened; its response is sealed back to the caller's session
// with the original status code, and the session's TTL is refreshed.
//
// Failure contract: invalid or expired session means 401 with no
// decryption attempted; a malformed envelope or a tamper/decrypt failure
// means 400 with a generic body. Neither path leaks internal detail.
func (s *Server) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderEncrypted) != encryptedFlag {
			next.ServeHTTP(w, r)
			return
		}

		log := s.log.With().Str("request_id", uuid.NewString()).Str("path", r.URL.Path).Logger()

		sid := r.Header.Get(HeaderSessionID)
		if sid == "" || !s.store.Has(sid) {
			log.Debug().Str("session_id", sid).Msg("encrypted request with invalid session")
			writeError(w, http.StatusUnauthorized, "session invalid or expired")
			return
		}

		sess, err := s.store.Get(sid)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "session invalid or expired")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed request")
			return
		}

		var plain []byte
		if len(body) > 0 {
			env, ok := wire.ParseEnvelope(body)
			if !ok {
				log.Warn().Str("session_id", sid).Msg("encrypted request body is not an envelope")
				writeError(w, http.StatusBadRequest, "malformed request")
				return
			}

			plain, err = crypto.Open(sess.Keys, sid, env.Sealed())
			if err != nil {
				// Tampering happens before any plaintext exists, so there
				// is nothing sensitive to leak; log it as an attack signal.
				log.Warn().Err(err).Str("session_id", sid).Msg("envelope rejected, possible tampering")
				writeError(w, http.StatusBadRequest, "malformed request")
				return
			}
		}

		inner := r.Clone(r.Context())
		inner.Header.Del(HeaderEncrypted)
		inner.Header.Del(HeaderSessionID)
		inner.Body = io.NopCloser(bytes.NewReader(plain))
		inner.ContentLength = int64(len(plain))

		buf := newResponseBuffer()
		next.ServeHTTP(buf, inner)

		sealed, err := crypto.Seal(sess.Keys, sid, buf.body.Bytes())
		if err != nil {
			log.Error().Err(err).Str("session_id", sid).Msg("failed to encrypt response")
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		s.store.Refresh(sid)

		copyHeaders(w.Header(), buf.header)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(HeaderEncrypted, encryptedFlag)
		w.WriteHeader(buf.status)
		json.NewEncoder(w).Encode(wire.FromSealed(sealed))
	})
}

// responseBuffer captures the inner handler's response so it can be sealed
// before anything reaches the wire.
type responseBuffer struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{
		header: make(http.Header),
		status: http.StatusOK,
	}
}

func (b *responseBuffer) Header() http.Header {
	return b.header
}

func (b *responseBuffer) WriteHeader(status int) {
	b.status = status
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func copyHeaders(dst, src http.Header) {
	for k, vv := range src {
		// The plaintext body's framing headers no longer apply to the
		// envelope that actually goes out.
		if k == "Content-Length" || k == "Content-Type" {
			continue
		}
		for _, v := range vv {
			dst.Add(k, v)
		}
	}
}
