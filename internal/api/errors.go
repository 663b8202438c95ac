package api

import (
	"errors"
	"fmt"
)

// ErrNoSubprotocol is returned by DialConsole when a subprotocol was requested
// and the daemon completed the upgrade without selecting it.
var ErrNoSubprotocol = errors.New("Octyne did not accept the requested subprotocol")

// ConnectError means the control socket could not be reached.
type ConnectError struct {
	SocketPath string
	Err        error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("error connecting to Unix domain socket %s: %v", e.SocketPath, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// RemoteRejected means the daemon answered the WebSocket upgrade with an HTTP
// error. Message holds the daemon's error text when the body carried one.
type RemoteRejected struct {
	StatusCode int
	Message    string
}

func (e *RemoteRejected) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("received status code %d from Octyne", e.StatusCode)
}

// ProtocolError means the upgrade handshake could not be understood.
type ProtocolError struct {
	Msg string
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
