package edgeseal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/edgeseal/transit-go/internal/crypto"
	"github.com/edgeseal/transit-go/internal/wire"
)

// Transport is an http.RoundTripper that applies the session protocol
// transparently: it establishes a session on first use, encrypts request
// bodies, decrypts response envelopes, and re-handshakes once when the
// server rejects the session with a 401.
//
// Requests without a body still ride on a session: an envelope sealing an
// empty payload is sent so the server can encrypt the response back to
// this session.
type Transport struct {
	baseURL       string
	handshakePath string
	base          http.RoundTripper
	sessions      *sessionManager
}

// NewTransport creates a Transport negotiating sessions with the server at
// baseURL.
func NewTransport(baseURL string, opts ...Option) (*Transport, error) {
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}

	cfg := &clientConfig{
		handshakePath: DefaultHandshakePath,
		base:          http.DefaultTransport,
		timeout:       defaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	t := &Transport{
		baseURL:       strings.TrimRight(baseURL, "/"),
		handshakePath: cfg.handshakePath,
		base:          cfg.base,
	}
	t.sessions = newSessionManager(t.doHandshake)
	return t, nil
}

// RoundTrip implements http.RoundTripper. The passed request is never
// mutated; an encrypted clone goes on the wire.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	body, err := readRequestBody(req)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}

	for attempt := 0; ; attempt++ {
		sess, err := t.sessions.ensure(req.Context())
		if err != nil {
			return nil, err
		}

		out, err := t.encryptRequest(req, sess, body)
		if err != nil {
			return nil, err
		}

		resp, err := t.base.RoundTrip(out)
		if err != nil {
			return nil, err
		}

		// One bounded retry: the session lapsed server-side, so negotiate
		// a fresh one and resend. A second 401 is returned as-is.
		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			t.sessions.reset()
			continue
		}

		return t.decryptResponse(resp, sess)
	}
}

func (t *Transport) encryptRequest(req *http.Request, sess *clientSession, body []byte) (*http.Request, error) {
	sealed, err := crypto.Seal(sess.keys, sess.id, body)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt request body: %w", err)
	}

	payload, err := json.Marshal(wire.FromSealed(sealed))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(bytes.NewReader(payload))
	out.ContentLength = int64(len(payload))
	out.Header.Set("Content-Type", "application/json")
	out.Header.Set(HeaderEncrypted, encryptedFlag)
	out.Header.Set(HeaderSessionID, sess.id)
	return out, nil
}

// decryptResponse replaces the response body with its decrypted form. A
// body that is not a well-formed envelope passes through unchanged; it was
// produced before the encryption layer ran (a routing error, a proxy
// message) and carries nothing sealed.
func (t *Transport) decryptResponse(resp *http.Response, sess *clientSession) (*http.Response, error) {
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	env, ok := wire.ParseEnvelope(body)
	if !ok {
		resp.Body = io.NopCloser(bytes.NewReader(body))
		return resp, nil
	}

	plain, err := crypto.Open(sess.keys, sess.id, env.Sealed())
	if err != nil {
		// A response we cannot authenticate means the session state is
		// suspect; drop it so the next call negotiates fresh keys.
		t.sessions.reset()
		return nil, fmt.Errorf("failed to decrypt response: %w", err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(plain))
	resp.ContentLength = int64(len(plain))
	resp.Header.Del(HeaderEncrypted)
	return resp, nil
}

// doHandshake performs the client leg of the key exchange: send our
// ephemeral public key, recompute the shared secret from the server's, and
// derive the same session keys the server derived. No key material crosses
// the wire in either direction.
func (t *Transport) doHandshake(ctx context.Context) (*clientSession, error) {
	url := t.baseURL + t.handshakePath

	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, &HandshakeError{URL: url, Err: err}
	}

	payload, err := json.Marshal(wire.HandshakeRequest{ClientPublicKey: kp.PublicKey})
	if err != nil {
		return nil, &HandshakeError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &HandshakeError{URL: url, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, &HandshakeError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &HandshakeError{
			URL: url,
			Err: &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))},
		}
	}

	var params wire.HandshakeResponse
	if err := json.NewDecoder(resp.Body).Decode(&params); err != nil {
		return nil, &HandshakeError{URL: url, Err: fmt.Errorf("failed to decode handshake response: %w", err)}
	}
	if params.SessionID == "" {
		return nil, &HandshakeError{URL: url, Err: fmt.Errorf("handshake response missing session id")}
	}

	secret, err := kp.SharedSecret(params.ServerPublicKey)
	if err != nil {
		return nil, &HandshakeError{URL: url, Err: err}
	}

	keys, err := crypto.DeriveKeys(secret, params.Salt, params.Iterations)
	if err != nil {
		return nil, &HandshakeError{URL: url, Err: err}
	}

	return &clientSession{
		id:        params.SessionID,
		keys:      keys,
		expiresAt: time.UnixMilli(params.ExpiresAt),
	}, nil
}

func readRequestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	return io.ReadAll(req.Body)
}
