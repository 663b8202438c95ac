// Package api provides the HTTP and WebSocket clients for the Octyne daemon.
//
// This file contains the console connector, which upgrades a socket
// connection to a WebSocket attached to an app's console.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"
)

const (
	// ConsoleV2Protocol is the subprotocol name for the enveloped console format.
	ConsoleV2Protocol = "console-v2"

	// handshakeTimeout bounds the WebSocket upgrade.
	handshakeTimeout = 30 * time.Second
)

// consoleURL returns the WebSocket URL for an app's console.
func consoleURL(server string) string {
	return fmt.Sprintf("ws://localhost:42069/server/%s/console", escapePath(server))
}

// DialConsole opens a WebSocket to the console of the named app.
//
// When subprotocol is non-empty it is offered in Sec-WebSocket-Protocol. If
// the daemon upgrades without selecting it, the connection is closed again and
// ErrNoSubprotocol is returned so the caller can retry without one.
//
// Parameters:
//   - ctx: Context for cancellation
//   - server: The app name
//   - subprotocol: The subprotocol to request, or "" for none
//
// Returns:
//   - *websocket.Conn: The open connection
//   - error: ConnectError, RemoteRejected, ProtocolError or ErrNoSubprotocol
func (c *Client) DialConsole(ctx context.Context, server, subprotocol string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		NetDialContext:   c.dialSocket,
		HandshakeTimeout: handshakeTimeout,
	}
	if subprotocol != "" {
		dialer.Subprotocols = []string{subprotocol}
	}

	log.Debug("Dialing console", "server", server, "subprotocol", subprotocol, "socket", c.socketPath)
	conn, resp, err := dialer.DialContext(ctx, consoleURL(server), nil)
	if err != nil {
		return nil, classifyDialError(resp, err)
	}

	if subprotocol != "" && conn.Subprotocol() != subprotocol {
		_ = conn.Close()
		return nil, ErrNoSubprotocol
	}
	return conn, nil
}

// classifyDialError maps a failed upgrade to the connector's error taxonomy.
func classifyDialError(resp *http.Response, err error) error {
	var connErr *ConnectError
	if errors.As(err, &connErr) {
		return connErr
	}
	if resp == nil {
		return &ProtocolError{Msg: "failed to connect to WebSocket", Err: err}
	}

	var body []byte
	if resp.Body != nil {
		body, _ = io.ReadAll(resp.Body)
		_ = resp.Body.Close()
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return &RemoteRejected{StatusCode: resp.StatusCode}
	}
	if !gjson.ValidBytes(body) {
		return &ProtocolError{
			Msg: fmt.Sprintf("received corrupt error response from Octyne (status %d): %s", resp.StatusCode, truncate(string(body))),
		}
	}
	return &RemoteRejected{
		StatusCode: resp.StatusCode,
		Message:    gjson.GetBytes(body, "error").String(),
	}
}
