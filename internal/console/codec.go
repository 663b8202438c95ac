// Package console attaches to an app's console over the Octyne WebSocket.
//
// A session negotiates the framing protocol, then relays local input lines
// to the daemon and daemon output to the terminal until either side closes.
package console

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Version is the console framing protocol in use for a session.
type Version int

const (
	// Legacy frames are bare text: output in, input out, no envelope.
	Legacy Version = iota

	// V2 frames are JSON envelopes (subprotocol "console-v2").
	V2
)

func (v Version) String() string {
	switch v {
	case Legacy:
		return "legacy"
	case V2:
		return "console-v2"
	default:
		return fmt.Sprintf("Version(%d)", int(v))
	}
}

// Kind identifies a logical console message.
type Kind int

const (
	KindOutput Kind = iota
	KindError
	KindInput
	KindPing
)

func (k Kind) String() string {
	switch k {
	case KindOutput:
		return "output"
	case KindError:
		return "error"
	case KindInput:
		return "input"
	case KindPing:
		return "ping"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Message is a logical console message. Text carries output/input data or the
// error message; ID is only set on pings.
type Message struct {
	Kind Kind
	Text string
	ID   string
}

// envelope is the console-v2 wire format. Field order is the wire order and
// every field is always written.
type envelope struct {
	Type    string `json:"type"`
	Data    string `json:"data"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Encode converts msg to a wire payload. A nil payload with a nil error means
// there is nothing to send (pings under Legacy).
func Encode(msg Message, v Version) ([]byte, error) {
	if v == Legacy {
		switch msg.Kind {
		case KindInput:
			return []byte(msg.Text), nil
		case KindPing:
			return nil, nil
		default:
			return nil, fmt.Errorf("cannot send %s message under the legacy protocol", msg.Kind)
		}
	}

	var env envelope
	switch msg.Kind {
	case KindInput:
		env = envelope{Type: "input", Data: msg.Text}
	case KindPing:
		env = envelope{Type: "ping", ID: msg.ID}
	default:
		return nil, fmt.Errorf("cannot send %s message to Octyne", msg.Kind)
	}
	return json.Marshal(env)
}

// Decode converts a text payload to a message. ok is false when the payload
// is a well-formed envelope of a type this client does not know; such
// messages are dropped rather than treated as errors.
func Decode(payload []byte, v Version) (msg Message, ok bool, err error) {
	if v == Legacy {
		return Message{Kind: KindOutput, Text: string(payload)}, true, nil
	}

	var env *envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Message{}, false, &CorruptMessage{Err: err}
	}
	if env == nil {
		return Message{}, false, &CorruptMessage{Err: errors.New("message is null")}
	}

	switch env.Type {
	case "output":
		return Message{Kind: KindOutput, Text: env.Data}, true, nil
	case "error":
		return Message{Kind: KindError, Text: env.Message}, true, nil
	case "input":
		return Message{Kind: KindInput, Text: env.Data}, true, nil
	case "ping":
		return Message{Kind: KindPing, ID: env.ID}, true, nil
	default:
		return Message{}, false, nil
	}
}
