package edgeseal

// Protocol headers. X-Encrypted marks an encrypted exchange; its absence
// means plaintext pass-through, which keeps trusted server-to-server calls
// working unchanged. The session id travels as a header, never inside a
// body.
const (
	HeaderEncrypted = "X-Encrypted"
	HeaderSessionID = "X-Session-Id"

	encryptedFlag = "1"
)

// DefaultHandshakePath is where the server mounts its handshake handler
// and where the client sends its opening request, unless overridden.
const DefaultHandshakePath = "/handshake"
