// Package wire defines the JSON structures the edgeseal protocol puts on
// the wire: the handshake request/response pair and the encrypted envelope.
// Binary fields are []byte, which encoding/json carries as standard base64,
// matching what browser clients produce with btoa. The session id never
// travels inside a body; it rides in the X-Session-Id header.
package wire
