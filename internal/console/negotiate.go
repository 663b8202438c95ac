package console

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/retrixe/octynectl/internal/api"
)

// Conn is the subset of *websocket.Conn a console session uses.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// DialFunc opens a console connection to target, offering subprotocol when it
// is non-empty. It must return api.ErrNoSubprotocol when the daemon upgrades
// without selecting the offered subprotocol.
type DialFunc func(ctx context.Context, target, subprotocol string) (Conn, error)

// ClientDialer adapts an API client to a DialFunc.
func ClientDialer(client *api.Client) DialFunc {
	return func(ctx context.Context, target, subprotocol string) (Conn, error) {
		conn, err := client.DialConsole(ctx, target, subprotocol)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Negotiate connects to target preferring console-v2. Only an
// api.ErrNoSubprotocol failure triggers the single legacy retry; every other
// failure is returned as is.
//
// Parameters:
//   - ctx: Context for cancellation
//   - dial: The connector
//   - target: The app name
//   - logger: Receives debug output; nil uses the default logger
//
// Returns:
//   - Conn: The open connection
//   - Version: The negotiated protocol
//   - error: Any connection error
func Negotiate(ctx context.Context, dial DialFunc, target string, logger *log.Logger) (Conn, Version, error) {
	if target == "" {
		return nil, Legacy, errors.New("app name cannot be empty")
	}
	if logger == nil {
		logger = log.Default()
	}

	conn, err := dial(ctx, target, api.ConsoleV2Protocol)
	if err == nil {
		logger.Debug("Negotiated console protocol", "target", target, "protocol", V2)
		return conn, V2, nil
	}
	if !errors.Is(err, api.ErrNoSubprotocol) {
		return nil, Legacy, err
	}

	logger.Debug("console-v2 not offered, retrying with legacy protocol", "target", target)
	conn, err = dial(ctx, target, "")
	if err != nil {
		return nil, Legacy, err
	}
	return conn, Legacy, nil
}
