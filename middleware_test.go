package edgeseal

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/edgeseal/transit-go/internal/crypto"
	"github.com/edgeseal/transit-go/internal/wire"
)

// sealAs builds the raw wire body for a request sealed under sess.
func sealAs(t *testing.T, sess *clientSession, plaintext []byte) []byte {
	t.Helper()
	sealed, err := crypto.Seal(sess.keys, sess.id, plaintext)
	if err != nil {
		t.Fatal(err)
	}
	payload, err := json.Marshal(wire.FromSealed(sealed))
	if err != nil {
		t.Fatal(err)
	}
	return payload
}

func postEncrypted(t *testing.T, url, sessionID string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEncrypted, encryptedFlag)
	req.Header.Set(HeaderSessionID, sessionID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestWrap_PlaintextPassThrough(t *testing.T) {
	_, ts := newTestServer(t)

	// No X-Encrypted header: the middleware must not touch the exchange.
	resp, err := http.Post(ts.URL+"/echo", "application/json", strings.NewReader(`{"plain":true}`))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"plain":true}` {
		t.Errorf("pass-through body = %q, want %q", body, `{"plain":true}`)
	}
	if resp.Header.Get(HeaderEncrypted) != "" {
		t.Error("pass-through response carries the encrypted marker")
	}
}

func TestWrap_UnknownSession(t *testing.T) {
	srv, ts := newTestServer(t)
	sess := handshakeAgainst(t, ts.URL)

	tests := []struct {
		name      string
		sessionID string
	}{
		{"missing id", ""},
		{"unknown id", "deadbeefdeadbeefdeadbeefdeadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postEncrypted(t, ts.URL+"/echo", tt.sessionID, sealAs(t, sess, []byte(`{}`)))
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", resp.StatusCode)
			}
		})
	}

	// The real session was never consulted or refreshed by those failures.
	if !srv.Store().Has(sess.id) {
		t.Error("valid session disappeared")
	}
}

func TestWrap_ExpiredSession(t *testing.T) {
	_, ts := newTestServer(t, WithSessionTTL(time.Millisecond))
	sess := handshakeAgainst(t, ts.URL)

	time.Sleep(5 * time.Millisecond)

	resp := postEncrypted(t, ts.URL+"/echo", sess.id, sealAs(t, sess, []byte(`{}`)))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestWrap_RejectsTamperedEnvelope(t *testing.T) {
	_, ts := newTestServer(t)
	sess := handshakeAgainst(t, ts.URL)

	sealed, err := crypto.Seal(sess.keys, sess.id, []byte(`{"email":"a@b.com"}`))
	if err != nil {
		t.Fatal(err)
	}
	sealed.Ciphertext[0] ^= 0x01

	payload, err := json.Marshal(wire.FromSealed(sealed))
	if err != nil {
		t.Fatal(err)
	}

	resp := postEncrypted(t, ts.URL+"/echo", sess.id, payload)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}

	// The failure body must stay generic: no crypto detail leaks.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var errResp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("error body is not JSON: %q", body)
	}
	if errResp.Error != "malformed request" {
		t.Errorf("error = %q, want generic %q", errResp.Error, "malformed request")
	}
}

func TestWrap_RejectsNonEnvelopeBody(t *testing.T) {
	_, ts := newTestServer(t)
	sess := handshakeAgainst(t, ts.URL)

	resp := postEncrypted(t, ts.URL+"/echo", sess.id, []byte(`{"email":"a@b.com"}`))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestWrap_RoundTripAndRefresh(t *testing.T) {
	srv, ts := newTestServer(t)
	sess := handshakeAgainst(t, ts.URL)

	before, err := srv.Store().Get(sess.id)
	if err != nil {
		t.Fatal(err)
	}
	beforeExpiry := before.ExpiresAt

	time.Sleep(5 * time.Millisecond)

	resp := postEncrypted(t, ts.URL+"/echo", sess.id, sealAs(t, sess, []byte(`{"email":"a@b.com"}`)))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get(HeaderEncrypted) != encryptedFlag {
		t.Error("encrypted response missing the encrypted marker")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	env, ok := wire.ParseEnvelope(raw)
	if !ok {
		t.Fatalf("response is not an envelope: %q", raw)
	}
	plain, err := crypto.Open(sess.keys, sess.id, env.Sealed())
	if err != nil {
		t.Fatalf("failed to open response envelope: %v", err)
	}
	if string(plain) != `{"email":"a@b.com"}` {
		t.Errorf("echoed body = %q, want %q", plain, `{"email":"a@b.com"}`)
	}

	after, err := srv.Store().Get(sess.id)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ExpiresAt.After(beforeExpiry) {
		t.Error("session expiry not extended after successful round trip")
	}
}

func TestWrap_InnerStatusPreserved(t *testing.T) {
	srv := NewServer(WithIterations(crypto.MinIterations))

	mux := http.NewServeMux()
	mux.Handle(DefaultHandshakePath, srv.HandshakeHandler())
	mux.Handle("/teapot", srv.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte(`{"short":"stout"}`))
	})))

	ts := newHTTPTestServer(t, mux)
	sess := handshakeAgainst(t, ts.URL)

	resp := postEncrypted(t, ts.URL+"/teapot", sess.id, sealAs(t, sess, nil))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTeapot)
	}

	// Even a non-2xx response from the inner handler is sealed when the
	// session was valid.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	env, ok := wire.ParseEnvelope(raw)
	if !ok {
		t.Fatalf("error response is not an envelope: %q", raw)
	}
	plain, err := crypto.Open(sess.keys, sess.id, env.Sealed())
	if err != nil {
		t.Fatal(err)
	}
	if string(plain) != `{"short":"stout"}` {
		t.Errorf("body = %q, want %q", plain, `{"short":"stout"}`)
	}
}

func TestWrap_InnerHandlerSeesPlaintext(t *testing.T) {
	srv := NewServer(WithIterations(crypto.MinIterations))

	var innerBody string
	var innerHadMarker bool
	mux := http.NewServeMux()
	mux.Handle(DefaultHandshakePath, srv.HandshakeHandler())
	mux.Handle("/signup", srv.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		innerBody = string(b)
		innerHadMarker = r.Header.Get(HeaderEncrypted) != "" || r.Header.Get(HeaderSessionID) != ""
		w.Write([]byte(`{"ok":true}`))
	})))

	ts := newHTTPTestServer(t, mux)
	sess := handshakeAgainst(t, ts.URL)

	resp := postEncrypted(t, ts.URL+"/signup", sess.id, sealAs(t, sess, []byte(`{"email":"a@b.com"}`)))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if innerBody != `{"email":"a@b.com"}` {
		t.Errorf("inner handler saw body %q, want plaintext %q", innerBody, `{"email":"a@b.com"}`)
	}
	if innerHadMarker {
		t.Error("inner handler saw protocol headers")
	}
}
