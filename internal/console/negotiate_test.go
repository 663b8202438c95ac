package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/retrixe/octynectl/internal/api"
)

// scriptedDialer returns the scripted results in order and records the
// subprotocol offered on each attempt.
type scriptedDialer struct {
	results []error
	offered []string
}

func (d *scriptedDialer) dial(ctx context.Context, target, subprotocol string) (Conn, error) {
	d.offered = append(d.offered, subprotocol)
	err := d.results[len(d.offered)-1]
	if err != nil {
		return nil, err
	}
	return newFakeConn(), nil
}

func TestNegotiate(t *testing.T) {
	refused := &api.RemoteRejected{StatusCode: 404, Message: "This server does not exist!"}

	tests := []struct {
		name        string
		results     []error
		wantOffered []string
		wantVersion Version
		wantErr     error
	}{
		{
			name:        "v2 accepted",
			results:     []error{nil},
			wantOffered: []string{api.ConsoleV2Protocol},
			wantVersion: V2,
		},
		{
			name:        "falls back to legacy",
			results:     []error{api.ErrNoSubprotocol, nil},
			wantOffered: []string{api.ConsoleV2Protocol, ""},
			wantVersion: Legacy,
		},
		{
			name:        "retries at most once",
			results:     []error{api.ErrNoSubprotocol, api.ErrNoSubprotocol},
			wantOffered: []string{api.ConsoleV2Protocol, ""},
			wantErr:     api.ErrNoSubprotocol,
		},
		{
			name:        "other failure is not retried",
			results:     []error{refused},
			wantOffered: []string{api.ConsoleV2Protocol},
			wantErr:     refused,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &scriptedDialer{results: tt.results}
			conn, version, err := Negotiate(context.Background(), d.dial, "minecraft", nil)

			if len(d.offered) != len(tt.wantOffered) {
				t.Fatalf("dial attempts = %v, want %v", d.offered, tt.wantOffered)
			}
			for i := range d.offered {
				if d.offered[i] != tt.wantOffered[i] {
					t.Errorf("attempt %d offered %q, want %q", i, d.offered[i], tt.wantOffered[i])
				}
			}

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Negotiate() error = %v, want %v", err, tt.wantErr)
				}
				if conn != nil {
					t.Error("Negotiate() returned a connection on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Negotiate() error = %v", err)
			}
			if version != tt.wantVersion {
				t.Errorf("Negotiate() version = %s, want %s", version, tt.wantVersion)
			}
		})
	}
}

func TestNegotiateEmptyTarget(t *testing.T) {
	d := &scriptedDialer{}
	if _, _, err := Negotiate(context.Background(), d.dial, "", nil); err == nil {
		t.Fatal("Negotiate() error = nil, want error")
	}
	if len(d.offered) != 0 {
		t.Errorf("dialed %d times for an empty target", len(d.offered))
	}
}

func TestNegotiateLogsToGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	d := &scriptedDialer{results: []error{api.ErrNoSubprotocol, nil}}

	if _, _, err := Negotiate(context.Background(), d.dial, "minecraft", logger); err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if !strings.Contains(buf.String(), "retrying with legacy protocol") {
		t.Errorf("log output = %q, want the legacy fallback", buf.String())
	}
}
