package edgeseal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client is a JSON-oriented convenience wrapper around Transport for
// callers that do not want to manage their own http.Client.
type Client struct {
	baseURL    string
	transport  *Transport
	httpClient *http.Client
}

// Response is the decrypted result of an encrypted exchange.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// New creates a client for the encrypted API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(cfg)
	}

	transport, err := NewTransport(baseURL, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		transport: transport,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.timeout,
		},
	}, nil
}

// Transport returns the underlying round tripper, for callers that want to
// plug it into their own http.Client.
func (c *Client) Transport() *Transport {
	return c.transport
}

// Do sends one encrypted request and returns the decrypted response.
// Status codes of 400 and above are returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, body []byte) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseErrorResponse(resp.StatusCode, respBody)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// Get sends an encrypted bodiless request.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

// Post sends an encrypted JSON body.
func (c *Client) Post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func parseErrorResponse(statusCode int, body []byte) error {
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Error != "" {
			return &APIError{StatusCode: statusCode, Message: errResp.Error}
		}
		if errResp.Message != "" {
			return &APIError{StatusCode: statusCode, Message: errResp.Message}
		}
	}
	return &APIError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
}
