package edgeseal

import (
	"errors"
	"fmt"
	"testing"
)

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    *APIError
		target error
		want   bool
	}{
		{"401 matches session rejected", &APIError{StatusCode: 401}, ErrSessionRejected, true},
		{"400 does not match", &APIError{StatusCode: 400}, ErrSessionRejected, false},
		{"500 does not match", &APIError{StatusCode: 500}, ErrSessionRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.target); got != tt.want {
				t.Errorf("errors.Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *APIError
		want string
	}{
		{"with message", &APIError{StatusCode: 400, Message: "malformed request"}, "API error 400: malformed request"},
		{"without message", &APIError{StatusCode: 502}, "API error 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandshakeError(t *testing.T) {
	inner := errors.New("connection refused")
	err := &HandshakeError{URL: "https://api.example.com/handshake", Err: inner}

	if !errors.Is(err, ErrHandshakeFailed) {
		t.Error("HandshakeError does not match ErrHandshakeFailed")
	}
	if !errors.Is(err, inner) {
		t.Error("HandshakeError does not unwrap to its cause")
	}

	wrapped := fmt.Errorf("request failed: %w", err)
	if !errors.Is(wrapped, ErrHandshakeFailed) {
		t.Error("wrapped HandshakeError lost sentinel matching")
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrMissingBaseURL,
		ErrInvalidPeerKey,
		ErrWeakIterations,
		ErrTampered,
		ErrDecryptionFailed,
		ErrUnknownSession,
		ErrSessionExpired,
		ErrHandshakeFailed,
		ErrSessionRejected,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}
