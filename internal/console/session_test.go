package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/retrixe/octynectl/internal/api"
)

type frame struct {
	messageType int
	data        []byte
	err         error
}

// fakeConn plays scripted frames. Closing frames simulates the daemon
// dropping the connection without a close frame.
type fakeConn struct {
	frames chan frame

	mu         sync.Mutex
	written    []string
	controls   [][]byte
	writeErr   error
	controlErr error
	closeCalls int

	// stallWrites makes WriteMessage hang until Close, signalling writeStarted.
	stallWrites  bool
	writeStarted chan struct{}

	writes    chan string
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames: make(chan frame, 16),
		writes:       make(chan string, 16),
		writeStarted: make(chan struct{}, 1),
		closed:       make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case f, ok := <-c.frames:
		if !ok {
			return 0, nil, &websocket.CloseError{Code: websocket.CloseAbnormalClosure, Text: "unexpected EOF"}
		}
		return f.messageType, f.data, f.err
	case <-c.closed:
		return 0, nil, errors.New("use of closed network connection")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	if c.stallWrites {
		select {
		case c.writeStarted <- struct{}{}:
		default:
		}
		<-c.closed
		return errors.New("use of closed network connection")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, string(data))
	select {
	case c.writes <- string(data):
	default:
	}
	return nil
}

func (c *fakeConn) WriteControl(messageType int, data []byte, deadline time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.controlErr != nil {
		return c.controlErr
	}
	c.controls = append(c.controls, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(t time.Time) error {
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closeCalls++
	c.mu.Unlock()
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) text(s string) {
	c.frames <- frame{messageType: websocket.TextMessage, data: []byte(s)}
}

func (c *fakeConn) writtenFrames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCalls
}

func (c *fakeConn) controlFrames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.controls...)
}

// dialerFor hands out conn, negotiating V2 or Legacy as requested.
func dialerFor(conn *fakeConn, version Version) DialFunc {
	return func(ctx context.Context, target, subprotocol string) (Conn, error) {
		if version == Legacy && subprotocol != "" {
			return nil, api.ErrNoSubprotocol
		}
		return conn, nil
	}
}

type sessionHarness struct {
	conn    *fakeConn
	session *Session
	out     bytes.Buffer
	errOut  bytes.Buffer
}

func newHarness(version Version, tweak func(*Options)) *sessionHarness {
	h := &sessionHarness{conn: newFakeConn()}
	opts := Options{
		Target:    "minecraft",
		Dial:      dialerFor(h.conn, version),
		Output:    &h.out,
		ErrOutput: &h.errOut,
	}
	if tweak != nil {
		tweak(&opts)
	}
	h.session = NewSession(opts)
	return h
}

// start runs the session in the background.
func (h *sessionHarness) start(ctx context.Context) <-chan Outcome {
	done := make(chan Outcome, 1)
	go func() { done <- h.session.Run(ctx) }()
	return done
}

func waitOutcome(t *testing.T, done <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o := <-done:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("session did not finish")
		return Outcome{}
	}
}

func waitWrite(t *testing.T, c *fakeConn) string {
	t.Helper()
	select {
	case w := <-c.writes:
		return w
	case <-time.After(5 * time.Second):
		t.Fatal("no frame written")
		return ""
	}
}

func assertCloseFrameSent(t *testing.T, c *fakeConn) {
	t.Helper()
	controls := c.controlFrames()
	want := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Done")
	if len(controls) != 1 || !bytes.Equal(controls[0], want) {
		t.Errorf("control frames = %q, want one close frame %q", controls, want)
	}
}

func TestSessionLegacyOutput(t *testing.T) {
	h := newHarness(Legacy, nil)
	h.conn.text("hello")
	close(h.conn.frames)

	o := waitOutcome(t, h.start(context.Background()))

	if o.Status != 0 {
		t.Fatalf("Status = %d (%s), want 0", o.Status, o.Message)
	}
	if h.out.String() != "hello\n" {
		t.Errorf("output = %q, want %q", h.out.String(), "hello\n")
	}
	if h.session.Version() != Legacy {
		t.Errorf("Version() = %s, want legacy", h.session.Version())
	}
	if h.session.State() != StateClosed {
		t.Errorf("State() = %s, want closed", h.session.State())
	}
}

func TestSessionV2OutputTrimsTrailingWhitespace(t *testing.T) {
	h := newHarness(V2, nil)
	h.conn.text(`{"type":"output","data":"hello\n"}`)
	close(h.conn.frames)

	o := waitOutcome(t, h.start(context.Background()))

	if o.Status != 0 {
		t.Fatalf("Status = %d (%s), want 0", o.Status, o.Message)
	}
	if h.out.String() != "hello\n" {
		t.Errorf("output = %q, want %q", h.out.String(), "hello\n")
	}
	if h.errOut.Len() != 0 {
		t.Errorf("error output = %q, want empty", h.errOut.String())
	}
}

func TestSessionRemoteError(t *testing.T) {
	h := newHarness(V2, nil)
	h.conn.text(`{"type":"error","message":"boom"}`)

	o := waitOutcome(t, h.start(context.Background()))

	if o.Status != 1 || o.Message != "Error: boom" {
		t.Fatalf("Outcome = (%d, %q), want (1, \"Error: boom\")", o.Status, o.Message)
	}
	var remote *RemoteError
	if !errors.As(o.Err, &remote) {
		t.Errorf("Err = %T, want *RemoteError", o.Err)
	}
	if h.errOut.String() != "Error: boom\n" {
		t.Errorf("error output = %q", h.errOut.String())
	}
	assertCloseFrameSent(t, h.conn)
}

func TestSessionInput(t *testing.T) {
	h := newHarness(V2, func(o *Options) {
		o.Input = strings.NewReader("\nrun\n")
	})
	done := h.start(context.Background())

	got := waitWrite(t, h.conn)
	close(h.conn.frames)
	o := waitOutcome(t, done)

	want := `{"type":"input","data":"run","message":"","id":""}`
	if got != want {
		t.Errorf("written = %s, want %s", got, want)
	}
	if frames := h.conn.writtenFrames(); len(frames) != 1 {
		t.Errorf("written frames = %q, want only the input line", frames)
	}
	if o.Status != 0 {
		t.Errorf("Status = %d (%s), want 0", o.Status, o.Message)
	}
}

func TestSessionLegacyInputIsRaw(t *testing.T) {
	h := newHarness(Legacy, func(o *Options) {
		o.Input = strings.NewReader("say hi\r\n")
	})
	done := h.start(context.Background())

	got := waitWrite(t, h.conn)
	close(h.conn.frames)
	waitOutcome(t, done)

	if got != "say hi" {
		t.Errorf("written = %q, want %q", got, "say hi")
	}
}

func TestSessionKeepalive(t *testing.T) {
	var n int
	h := newHarness(V2, func(o *Options) {
		o.KeepaliveInterval = 10 * time.Millisecond
		o.NewPingID = func() string {
			n++
			return "id-" + string(rune('0'+n))
		}
	})
	done := h.start(context.Background())

	got := waitWrite(t, h.conn)
	close(h.conn.frames)
	waitOutcome(t, done)

	if got != `{"type":"ping","data":"","message":"","id":"id-1"}` {
		t.Errorf("first keepalive = %s", got)
	}
}

func TestSessionLegacyNeverPings(t *testing.T) {
	h := newHarness(Legacy, func(o *Options) {
		o.KeepaliveInterval = time.Millisecond
	})
	done := h.start(context.Background())

	time.Sleep(50 * time.Millisecond)
	close(h.conn.frames)
	waitOutcome(t, done)

	if frames := h.conn.writtenFrames(); len(frames) != 0 {
		t.Errorf("legacy session wrote %q", frames)
	}
}

func TestSessionDiscardsUnknownAndBinary(t *testing.T) {
	h := newHarness(V2, nil)
	h.conn.text(`{"type":"settings","data":"x"}`)
	h.conn.frames <- frame{messageType: websocket.BinaryMessage, data: []byte("binary")}
	h.conn.text(`{"type":"output","data":"after"}`)
	close(h.conn.frames)

	o := waitOutcome(t, h.start(context.Background()))

	if o.Status != 0 {
		t.Fatalf("Status = %d (%s), want 0", o.Status, o.Message)
	}
	if h.out.String() != "after\n" {
		t.Errorf("output = %q, want %q", h.out.String(), "after\n")
	}
}

func TestSessionFatalInbound(t *testing.T) {
	tests := []struct {
		name  string
		frame frame
		check func(t *testing.T, err error)
	}{
		{
			name:  "close frame",
			frame: frame{err: &websocket.CloseError{Code: websocket.CloseGoingAway}},
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrRemoteClosed) {
					t.Errorf("Err = %v, want ErrRemoteClosed", err)
				}
			},
		},
		{
			name:  "corrupt envelope",
			frame: frame{messageType: websocket.TextMessage, data: []byte("{nope")},
			check: func(t *testing.T, err error) {
				var corrupt *CorruptMessage
				if !errors.As(err, &corrupt) {
					t.Errorf("Err = %T, want *CorruptMessage", err)
				}
			},
		},
		{
			name:  "read failure",
			frame: frame{err: errors.New("connection reset")},
			check: func(t *testing.T, err error) {
				var readErr *ReadError
				if !errors.As(err, &readErr) {
					t.Errorf("Err = %T, want *ReadError", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(V2, nil)
			h.conn.frames <- tt.frame

			o := waitOutcome(t, h.start(context.Background()))

			if o.Status != 1 {
				t.Fatalf("Status = %d, want 1", o.Status)
			}
			if o.Message != "Error: "+o.Err.Error() {
				t.Errorf("Message = %q", o.Message)
			}
			if h.errOut.String() != o.Message+"\n" {
				t.Errorf("error output = %q, want the message once", h.errOut.String())
			}
			tt.check(t, o.Err)
		})
	}
}

func TestSessionWriteFailure(t *testing.T) {
	h := newHarness(V2, func(o *Options) {
		o.Input = strings.NewReader("run\n")
	})
	h.conn.writeErr = errors.New("broken pipe")

	o := waitOutcome(t, h.start(context.Background()))

	var writeErr *WriteError
	if o.Status != 1 || !errors.As(o.Err, &writeErr) {
		t.Fatalf("Outcome = %+v, want WriteError", o)
	}
}

func TestSessionCancellation(t *testing.T) {
	h := newHarness(V2, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := h.start(ctx)

	// The reader is blocked in ReadMessage when the cancel arrives.
	time.Sleep(20 * time.Millisecond)
	cancelledAt := time.Now()
	cancel()
	o := waitOutcome(t, done)

	if elapsed := time.Since(cancelledAt); elapsed > time.Second {
		t.Errorf("Run() returned %v after cancel", elapsed)
	}

	if o.Status != 0 || o.Message != "" {
		t.Fatalf("Outcome = (%d, %q), want clean", o.Status, o.Message)
	}
	if !errors.Is(o.Err, ErrUserCancelled) {
		t.Errorf("Err = %v, want ErrUserCancelled", o.Err)
	}
	if h.errOut.Len() != 0 {
		t.Errorf("error output = %q, want empty", h.errOut.String())
	}
	assertCloseFrameSent(t, h.conn)
}

func TestSessionCancellationDuringStalledWrite(t *testing.T) {
	h := newHarness(V2, func(o *Options) {
		o.Input = strings.NewReader("run\n")
	})
	h.conn.stallWrites = true
	ctx, cancel := context.WithCancel(context.Background())
	done := h.start(ctx)

	select {
	case <-h.conn.writeStarted:
	case <-time.After(5 * time.Second):
		t.Fatal("input line was never written")
	}
	cancelledAt := time.Now()
	cancel()
	o := waitOutcome(t, done)

	if elapsed := time.Since(cancelledAt); elapsed > time.Second {
		t.Errorf("Run() returned %v after cancel, want it not to wait for the write", elapsed)
	}
	if o.Status != 0 || h.errOut.Len() != 0 {
		t.Fatalf("Outcome = (%d, %q), want clean cancel", o.Status, o.Message)
	}
	if !errors.Is(o.Err, ErrUserCancelled) {
		t.Errorf("Err = %v, want ErrUserCancelled", o.Err)
	}
	if len(h.conn.controlFrames()) != 0 {
		t.Error("close frame sent while a data frame was half written")
	}
	if h.conn.closeCount() != 1 {
		t.Errorf("Close() called %d times, want 1", h.conn.closeCount())
	}
}

func TestSessionLongInputLine(t *testing.T) {
	line := strings.Repeat("x", 100*1024)
	h := newHarness(Legacy, func(o *Options) {
		o.Input = strings.NewReader(line + "\n")
	})
	done := h.start(context.Background())

	got := waitWrite(t, h.conn)
	close(h.conn.frames)
	waitOutcome(t, done)

	if got != line {
		t.Errorf("written %d bytes, want %d", len(got), len(line))
	}
}

func TestSessionCancellationMasksWriteFailure(t *testing.T) {
	h := newHarness(V2, func(o *Options) {
		o.Input = strings.NewReader("run\n")
	})
	h.conn.writeErr = errors.New("broken pipe")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := waitOutcome(t, h.start(ctx))

	if o.Status != 0 || h.errOut.Len() != 0 {
		t.Fatalf("Outcome = (%d, %q), want clean cancel", o.Status, o.Message)
	}
}

func TestSessionCloseFailure(t *testing.T) {
	t.Run("replaces clean outcome", func(t *testing.T) {
		h := newHarness(V2, nil)
		h.conn.controlErr = errors.New("write: broken pipe")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		o := waitOutcome(t, h.start(ctx))

		if o.Status != 1 {
			t.Fatalf("Status = %d, want 1", o.Status)
		}
		if h.errOut.String() != o.Message+"\n" {
			t.Errorf("error output = %q", h.errOut.String())
		}
	})

	t.Run("swallowed after failure", func(t *testing.T) {
		h := newHarness(V2, nil)
		h.conn.controlErr = errors.New("write: broken pipe")
		h.conn.text(`{"type":"error","message":"boom"}`)

		o := waitOutcome(t, h.start(context.Background()))

		if o.Message != "Error: boom" {
			t.Fatalf("Message = %q, want the original failure", o.Message)
		}
		if h.errOut.String() != "Error: boom\n" {
			t.Errorf("error output = %q, want one diagnostic", h.errOut.String())
		}
	})
}

func TestSessionShutdownIsIdempotent(t *testing.T) {
	h := newHarness(V2, nil)
	h.conn.text(`{"type":"error","message":"boom"}`)
	o := waitOutcome(t, h.start(context.Background()))

	h.session.shutdown()

	if h.session.outcome != o {
		t.Errorf("outcome changed to %+v", h.session.outcome)
	}
	if h.conn.closeCount() != 1 {
		t.Errorf("Close() called %d times, want 1", h.conn.closeCount())
	}
	if len(h.conn.controlFrames()) != 1 {
		t.Errorf("close frame sent %d times, want 1", len(h.conn.controlFrames()))
	}
}

func TestSessionDroppedStreamSkipsCloseFrame(t *testing.T) {
	h := newHarness(V2, nil)
	close(h.conn.frames)

	o := waitOutcome(t, h.start(context.Background()))

	if o.Status != 0 {
		t.Fatalf("Status = %d (%s), want 0", o.Status, o.Message)
	}
	if len(h.conn.controlFrames()) != 0 {
		t.Error("close frame sent on a dropped connection")
	}
}

func TestSessionNegotiationFailure(t *testing.T) {
	refused := &api.RemoteRejected{StatusCode: 404, Message: "This server does not exist!"}
	var buf bytes.Buffer
	s := NewSession(Options{
		Target:    "ghost",
		ErrOutput: &buf,
		Dial: func(ctx context.Context, target, subprotocol string) (Conn, error) {
			return nil, refused
		},
	})

	o := s.Run(context.Background())

	if o.Status != 1 || !errors.Is(o.Err, refused) {
		t.Fatalf("Outcome = %+v, want rejection", o)
	}
	if buf.String() != "Error: This server does not exist!\n" {
		t.Errorf("error output = %q", buf.String())
	}
	if s.State() != StateClosed {
		t.Errorf("State() = %s, want closed", s.State())
	}
}

type recordingScreen struct {
	events *[]string
	failOn string
}

func (s recordingScreen) Enter() error {
	*s.events = append(*s.events, "enter")
	if s.failOn == "enter" {
		return errors.New("not a terminal")
	}
	return nil
}

func (s recordingScreen) Exit() error {
	*s.events = append(*s.events, "exit")
	return nil
}

type recordingWriter struct {
	events *[]string
}

func (w recordingWriter) Write(p []byte) (int, error) {
	*w.events = append(*w.events, "print:"+strings.TrimSpace(string(p)))
	return len(p), nil
}

func TestSessionScreen(t *testing.T) {
	t.Run("exits before printing the failure", func(t *testing.T) {
		var events []string
		h := newHarness(V2, func(o *Options) {
			o.Screen = recordingScreen{events: &events}
			o.ErrOutput = recordingWriter{events: &events}
		})
		h.conn.text(`{"type":"error","message":"boom"}`)

		waitOutcome(t, h.start(context.Background()))

		want := []string{"enter", "exit", "print:Error: boom"}
		if strings.Join(events, ",") != strings.Join(want, ",") {
			t.Errorf("events = %v, want %v", events, want)
		}
	})

	t.Run("failed enter never exits", func(t *testing.T) {
		var events []string
		h := newHarness(V2, func(o *Options) {
			o.Screen = recordingScreen{events: &events, failOn: "enter"}
		})
		close(h.conn.frames)

		o := waitOutcome(t, h.start(context.Background()))

		if o.Status != 0 {
			t.Errorf("Status = %d, screen errors must not change the outcome", o.Status)
		}
		if strings.Join(events, ",") != "enter" {
			t.Errorf("events = %v, want only enter", events)
		}
	})
}
