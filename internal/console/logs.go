package console

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// FetchLogs attaches to target just long enough to read the console backlog
// the daemon sends on connect, then closes normally.
//
// Parameters:
//   - ctx: Context for cancellation
//   - dial: The connector
//   - target: The app name
//
// Returns:
//   - string: The backlog text
//   - error: Any connection, protocol or remote error
func FetchLogs(ctx context.Context, dial DialFunc, target string) (string, error) {
	conn, version, err := Negotiate(ctx, dial, target, nil)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	// ReadMessage has no context; closing the conn unblocks it.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	text, err := readBacklog(conn, version)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, closeReason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		return "", &WriteError{Err: err}
	}
	return text, nil
}

func readBacklog(conn Conn, version Version) (string, error) {
	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			in := classifyReadError(err)
			switch {
			case in.closed:
				return "", ErrRemoteClosed
			case in.eof:
				return "", ErrNoMessage
			default:
				return "", in.err
			}
		}
		if version == V2 && messageType != websocket.TextMessage {
			continue
		}

		msg, ok, err := Decode(data, version)
		if err != nil {
			return "", err
		}
		if !ok {
			continue
		}
		switch msg.Kind {
		case KindOutput:
			return msg.Text, nil
		case KindError:
			return "", &RemoteError{Message: msg.Text}
		}
	}
}
