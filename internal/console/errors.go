package console

import (
	"errors"
	"fmt"
)

var (
	// ErrRemoteClosed is reported when the daemon sends a close frame.
	ErrRemoteClosed = errors.New("received close message from Octyne")

	// ErrUserCancelled is attached to the clean outcome of a local interrupt.
	ErrUserCancelled = errors.New("cancelled")

	// ErrNoMessage is returned by FetchLogs when the stream ends before any output.
	ErrNoMessage = errors.New("received no message from Octyne")
)

// RemoteError is an error message sent by the daemon mid-session.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// CorruptMessage means a console-v2 frame was not a valid envelope.
type CorruptMessage struct {
	Err error
}

func (e *CorruptMessage) Error() string {
	return fmt.Sprintf("received corrupt message from Octyne: %v", e.Err)
}

func (e *CorruptMessage) Unwrap() error {
	return e.Err
}

// ReadError is an I/O failure on the read half of the connection.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read from Octyne: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// WriteError is an I/O failure on the write half of the connection.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write to Octyne: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
