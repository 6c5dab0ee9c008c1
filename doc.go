// Package edgeseal provides session-based end-to-end encryption for HTTP
// traffic between an untrusted client and a trusted edge API, for
// deployments that cannot rely on controlling TLS termination.
//
// A client and server agree on per-session AES and HMAC keys through an
// ECDH handshake; only public keys and non-secret derivation parameters
// ever cross the wire. Request and response bodies then travel as
// self-describing encrypted envelopes, applied transparently on both
// sides: the client half is an http.RoundTripper, the server half is
// ordinary middleware, and the wrapped application handler sees plaintext.
//
// Client usage:
//
//	client, err := edgeseal.New("https://api.example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := client.Post(ctx, "/signup", []byte(`{"email":"a@b.com"}`))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(string(resp.Body))
//
// Server usage:
//
//	srv := edgeseal.NewServer()
//	mux.Handle(edgeseal.DefaultHandshakePath, srv.HandshakeHandler())
//	mux.Handle("/signup", srv.Wrap(signupHandler))
//
// Sessions expire after a TTL and are refreshed on every successful round
// trip. When a session lapses anyway, the client transparently performs a
// new handshake and retries the request exactly once.
package edgeseal
