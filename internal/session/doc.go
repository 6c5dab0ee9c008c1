// Package session holds the server's session table: session id to derived
// keys plus a TTL. Expiry is lazy; entries are swept opportunistically on
// create and evicted on expired lookup, so no background timer is needed at
// this session volume.
package session
