package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// DefaultKeepaliveInterval is how often a console-v2 session pings the daemon.
	DefaultKeepaliveInterval = 5 * time.Second

	// writeWait bounds every frame write, including the close frame.
	writeWait = 10 * time.Second

	closeReason = "Done"

	// maxInputLine bounds a single local command line.
	maxInputLine = 1 << 20
)

// State is the lifecycle state of a session.
type State int32

const (
	StateConnecting State = iota
	StateNegotiating
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateNegotiating:
		return "negotiating"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Screen switches the terminal in and out of full-screen presentation.
type Screen interface {
	Enter() error
	Exit() error
}

// Options configures a console session.
type Options struct {
	// Target is the app whose console is attached.
	Target string

	// Dial opens the connection. Required.
	Dial DialFunc

	// Input supplies local command lines. Nil disables input.
	Input io.Reader

	// Output receives console output; ErrOutput receives the failure message.
	Output    io.Writer
	ErrOutput io.Writer

	// Screen is entered once the session is open. Nil leaves the terminal alone.
	Screen Screen

	// KeepaliveInterval defaults to DefaultKeepaliveInterval.
	KeepaliveInterval time.Duration

	Logger *log.Logger

	// NewPingID defaults to time-ordered UUIDs.
	NewPingID func() string
}

// Outcome is how a session ended. Status is the process exit status and
// Message is what was printed for a failure ("" when Status is 0).
type Outcome struct {
	Status  int
	Message string
	Err     error
}

// Session is a single interactive console attachment. A session is run once.
type Session struct {
	opts   Options
	logger *log.Logger
	state  atomic.Int32

	conn    Conn
	version Version

	outcome  Outcome
	decided  bool
	reported bool
	dropped  bool
	stalled  bool

	screenActive bool
	shutdownDone bool
}

// NewSession creates a session with defaults applied to opts.
func NewSession(opts Options) *Session {
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = io.Discard
	}
	if opts.KeepaliveInterval <= 0 {
		opts.KeepaliveInterval = DefaultKeepaliveInterval
	}
	if opts.NewPingID == nil {
		opts.NewPingID = newPingID
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Session{opts: opts, logger: logger}
}

// State returns the current lifecycle state. Safe for concurrent use.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Version returns the negotiated protocol. Only meaningful once open.
func (s *Session) Version() Version {
	return s.version
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
	s.logger.Debug("Console session state changed", "target", s.opts.Target, "state", st)
}

// Run negotiates, streams until a terminal event, and shuts down.
// Cancelling ctx ends the session cleanly with status 0.
//
// Parameters:
//   - ctx: Cancelled on user interrupt
//
// Returns:
//   - Outcome: The exit status and any printed failure
func (s *Session) Run(ctx context.Context) Outcome {
	if s.opts.Dial == nil {
		s.decide(failure(errors.New("no console dialer configured")))
		s.report()
		s.setState(StateClosed)
		return s.outcome
	}

	s.setState(StateConnecting)
	s.setState(StateNegotiating)
	conn, version, err := Negotiate(ctx, s.opts.Dial, s.opts.Target, s.logger)
	if err != nil {
		if ctx.Err() != nil {
			s.decide(cancelled())
		} else {
			s.decide(failure(err))
		}
		s.report()
		s.setState(StateClosed)
		return s.outcome
	}

	s.conn = conn
	s.version = version
	s.setState(StateOpen)

	defer s.exitScreen()
	s.enterScreen()
	s.loop(ctx)
	s.shutdown()
	return s.outcome
}

// inbound is one notification from the reader goroutine.
type inbound struct {
	msg    Message
	err    error
	closed bool
	eof    bool
}

func (in inbound) terminal() bool {
	return in.err != nil || in.closed || in.eof
}

func (s *Session) loop(ctx context.Context) {
	done := make(chan struct{})
	defer close(done)

	frames := make(chan inbound, 1)
	go s.readLoop(frames, done)
	lines := s.readInput(done)

	var tick <-chan time.Time
	if s.version == V2 {
		ticker := time.NewTicker(s.opts.KeepaliveInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if ctx.Err() != nil {
			s.decide(cancelled())
			return
		}

		select {
		case <-ctx.Done():
			s.decide(cancelled())
			return

		case line, ok := <-lines:
			if !ok {
				s.logger.Debug("Local input closed, continuing to stream output", "target", s.opts.Target)
				lines = nil
				continue
			}
			if line == "" {
				continue
			}
			if err := s.send(ctx, Message{Kind: KindInput, Text: line}); err != nil {
				s.writeFailed(ctx, err)
				return
			}

		case <-tick:
			if err := s.send(ctx, Message{Kind: KindPing, ID: s.opts.NewPingID()}); err != nil {
				s.writeFailed(ctx, err)
				return
			}

		case in := <-frames:
			if s.handle(in) {
				return
			}
		}
	}
}

// handle applies one inbound notification and reports whether the session is over.
func (s *Session) handle(in inbound) bool {
	switch {
	case in.closed:
		s.decide(failure(ErrRemoteClosed))
		return true
	case in.err != nil:
		s.decide(failure(in.err))
		return true
	case in.eof:
		s.logger.Debug("Console stream ended without a close frame", "target", s.opts.Target)
		s.dropped = true
		s.decide(Outcome{})
		return true
	}

	switch in.msg.Kind {
	case KindOutput:
		fmt.Fprintln(s.opts.Output, strings.TrimRight(in.msg.Text, " \t\r\n"))
	case KindError:
		s.decide(failure(&RemoteError{Message: in.msg.Text}))
		return true
	default:
		s.logger.Debug("Discarding console message", "kind", in.msg.Kind)
	}
	return false
}

func (s *Session) writeFailed(ctx context.Context, err error) {
	if ctx.Err() != nil {
		s.decide(cancelled())
		return
	}
	s.decide(failure(&WriteError{Err: err}))
}

// send writes one frame. Cancelling ctx abandons a write that has not
// finished; the frame is then left half sent and the session is marked stalled.
func (s *Session) send(ctx context.Context, msg Message) error {
	payload, err := Encode(msg, s.version)
	if err != nil {
		return err
	}
	if payload == nil {
		return nil
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))

	result := make(chan error, 1)
	go func() { result <- s.conn.WriteMessage(websocket.TextMessage, payload) }()

	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		select {
		case err := <-result:
			return err
		default:
		}
		s.stalled = true
		return ctx.Err()
	}
}

// readLoop forwards frames in receive order until a terminal notification or
// until done is closed.
func (s *Session) readLoop(out chan<- inbound, done <-chan struct{}) {
	for {
		in := s.readFrame()
		select {
		case out <- in:
		case <-done:
			return
		}
		if in.terminal() {
			return
		}
	}
}

func (s *Session) readFrame() inbound {
	for {
		messageType, data, err := s.conn.ReadMessage()
		if err != nil {
			return classifyReadError(err)
		}
		if s.version == V2 && messageType != websocket.TextMessage {
			continue
		}
		msg, ok, err := Decode(data, s.version)
		if err != nil {
			return inbound{err: err}
		}
		if !ok {
			continue
		}
		return inbound{msg: msg}
	}
}

// classifyReadError maps gorilla's read errors. A dropped connection surfaces
// as a 1006 close error, which gorilla synthesizes rather than receives.
func classifyReadError(err error) inbound {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		if closeErr.Code == websocket.CloseAbnormalClosure {
			return inbound{eof: true}
		}
		return inbound{closed: true}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return inbound{eof: true}
	}
	return inbound{err: &ReadError{Err: err}}
}

// readInput scans Input one line at a time. The channel closes on EOF.
func (s *Session) readInput(done <-chan struct{}) <-chan string {
	if s.opts.Input == nil {
		return nil
	}
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.opts.Input)
		scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxInputLine)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSuffix(scanner.Text(), "\r"):
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			s.logger.Warn("Stopped reading local input", "error", err)
		}
	}()
	return lines
}

// shutdown leaves full-screen mode, prints any failure, then closes the
// connection. Close failures only surface when the outcome was clean.
func (s *Session) shutdown() {
	if s.shutdownDone {
		return
	}
	s.shutdownDone = true
	s.setState(StateClosing)

	s.exitScreen()
	s.report()

	if s.stalled {
		s.logger.Debug("Write still in flight, skipping close frame", "target", s.opts.Target)
	}
	if !s.dropped && !s.stalled {
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, closeReason)
		if err := s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
			s.replaceClean(&WriteError{Err: err})
		}
	}
	if err := s.conn.Close(); err != nil && !s.dropped {
		s.replaceClean(fmt.Errorf("failed to close connection: %w", err))
	}
	s.report()

	s.setState(StateClosed)
}

func (s *Session) enterScreen() {
	if s.opts.Screen == nil {
		return
	}
	if err := s.opts.Screen.Enter(); err != nil {
		s.logger.Warn("Failed to enter full-screen mode", "error", err)
		return
	}
	s.screenActive = true
}

func (s *Session) exitScreen() {
	if !s.screenActive {
		return
	}
	s.screenActive = false
	if err := s.opts.Screen.Exit(); err != nil {
		s.logger.Warn("Failed to leave full-screen mode", "error", err)
	}
}

// decide sets the outcome if it has not been decided yet.
func (s *Session) decide(o Outcome) {
	if s.decided {
		return
	}
	s.decided = true
	s.outcome = o
}

func (s *Session) replaceClean(err error) {
	if s.outcome.Status != 0 {
		s.logger.Debug("Ignoring error after failed session", "error", err)
		return
	}
	s.decided = true
	s.outcome = failure(err)
	s.reported = false
}

// report prints a failing outcome once.
func (s *Session) report() {
	if s.reported || s.outcome.Status == 0 {
		return
	}
	s.reported = true
	fmt.Fprintln(s.opts.ErrOutput, s.outcome.Message)
}

func failure(err error) Outcome {
	return Outcome{Status: 1, Message: "Error: " + err.Error(), Err: err}
}

func cancelled() Outcome {
	return Outcome{Err: ErrUserCancelled}
}

func newPingID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return id.String()
}
