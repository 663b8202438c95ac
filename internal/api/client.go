// Package api provides the HTTP and WebSocket clients for the Octyne daemon.
//
// Octyne listens on a local Unix-domain socket. Every request in this package,
// REST or WebSocket, is dialled over that socket; the host part of the URLs is
// never resolved.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

const (
	// baseURL is the placeholder host used for requests over the socket.
	baseURL = "http://localhost:42069"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of a failed response is kept for messages.
	maxErrorBody = 200
)

// ErrCorruptResponse is returned when the daemon replies with a body that is
// not the JSON document the endpoint promises.
var ErrCorruptResponse = errors.New("received corrupt response from Octyne")

// Client is the Octyne API client.
type Client struct {
	socketPath string
	httpClient *http.Client
}

// NewClient creates a new API client that dials the given Unix socket.
//
// Parameters:
//   - socketPath: Path to the Octyne control socket
//
// Returns:
//   - *Client: A new client instance
func NewClient(socketPath string) *Client {
	c := &Client{socketPath: socketPath}
	c.httpClient = &http.Client{
		Timeout:   DefaultTimeout,
		Transport: &http.Transport{DialContext: c.dialSocket},
	}
	return c
}

// SocketPath returns the socket this client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// dialSocket ignores the requested address and connects to the Unix socket.
func (c *Client) dialSocket(ctx context.Context, _, _ string) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, &ConnectError{SocketPath: c.socketPath, Err: err}
	}
	return conn, nil
}

// APIError represents an error response from the daemon.
type APIError struct {
	StatusCode int
	Message    string
}

// Error returns a human-readable error message.
//
// Returns:
//   - string: The daemon's message, with fallback to the HTTP status
func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("received status code %d from Octyne", e.StatusCode)
}

// ActionResponse is the body returned by endpoints that perform an action.
type ActionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// doRequest performs an HTTP request against the daemon.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "octynectl")

	log.Debug("Octyne request", "method", method, "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var connErr *ConnectError
		if errors.As(err, &connErr) {
			return nil, connErr
		}
		return nil, fmt.Errorf("failed to read response from Octyne: %w", err)
	}
	return resp, nil
}

// readBody reads the full response body and checks for a daemon error.
//
// The daemon reports failures as {"error": "..."}; a non-empty error field wins
// over the status code, mirroring how Octyne's own web UI reports them.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from Octyne: %w", err)
	}
	body = bytes.TrimSpace(body)

	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "error").String(); msg != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode}
	}
	return body, nil
}

// parseResponse parses the response body into the target struct.
func parseResponse(resp *http.Response, target interface{}) error {
	body, err := readBody(resp)
	if err != nil {
		return err
	}
	return jsonUnmarshal(body, target)
}

// jsonUnmarshal decodes a daemon response, reporting failures as corruption.
func jsonUnmarshal(body []byte, target interface{}) error {
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptResponse, err)
	}
	return nil
}

// doAction performs a request whose response is an ActionResponse.
//
// Parameters:
//   - ctx: Context for cancellation
//   - method: HTTP method
//   - path: Endpoint path including query string
//   - body: Request body, may be nil
//   - failure: Message used when the daemon answers success=false
//
// Returns:
//   - error: Any error that occurred
func (c *Client) doAction(ctx context.Context, method, path string, body io.Reader, failure string) error {
	resp, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	var result ActionResponse
	if err := parseResponse(resp, &result); err != nil {
		return err
	}
	if !result.Success {
		return errors.New(failure)
	}
	return nil
}

// escapePath escapes a single path segment such as an app name.
func escapePath(segment string) string {
	return url.PathEscape(strings.TrimSpace(segment))
}

// truncate shortens s for inclusion in error messages.
func truncate(s string) string {
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
