package scpi

import (
	"bytes"
	"io"
	"testing"
	"time"
)

// pipeRW is an in-memory instrument: everything written is recorded, reads
// come from a canned reply buffer.
type pipeRW struct {
	wrote  bytes.Buffer
	reply  *bytes.Reader
	closed bool
}

func newPipeRW(reply string) *pipeRW {
	return &pipeRW{reply: bytes.NewReader([]byte(reply))}
}

func (p *pipeRW) Read(b []byte) (int, error)  { return p.reply.Read(b) }
func (p *pipeRW) Write(b []byte) (int, error) { return p.wrote.Write(b) }
func (p *pipeRW) Close() error                { p.closed = true; return nil }

var _ io.ReadWriteCloser = (*pipeRW)(nil)

func TestCommandAppendsTerminator(t *testing.T) {
	rw := newPipeRW("")
	c := NewConn(rw)

	if err := c.Command("FREQ:CW %.1f", 1.5); err != nil {
		t.Fatalf("Command: %v", err)
	}
	if got := rw.wrote.String(); got != "FREQ:CW 1.5\r" {
		t.Errorf("wrote %q", got)
	}
}

func TestCommandTrimsWhitespace(t *testing.T) {
	rw := newPipeRW("")
	c := NewConn(rw, WithTerminator('\n'))

	if err := c.Command("  *IDN?  "); err != nil {
		t.Fatalf("Command: %v", err)
	}
	if got := rw.wrote.String(); got != "*IDN?\n" {
		t.Errorf("wrote %q", got)
	}
}

func TestCommandWithoutArgsKeepsPercent(t *testing.T) {
	// A bare command containing % must not go through Sprintf.
	rw := newPipeRW("")
	c := NewConn(rw)

	cmd := "DISP:TEXT '100%'"
	if err := c.Command(cmd); err != nil {
		t.Fatalf("Command: %v", err)
	}
	if got := rw.wrote.String(); got != "DISP:TEXT '100%'\r" {
		t.Errorf("wrote %q", got)
	}
}

func TestQueryReadsToTerminator(t *testing.T) {
	rw := newPipeRW("42.5\r-leftover")
	c := NewConn(rw)

	reply, err := c.Query("MEAS?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if reply != "42.5" {
		t.Errorf("reply = %q, want 42.5", reply)
	}
}

func TestQueryStripsResponseHeader(t *testing.T) {
	rw := newPipeRW("OK:123\r")
	c := NewConn(rw, WithResponseHeader(3))

	reply, err := c.Query("POS?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if reply != "123" {
		t.Errorf("reply = %q, want 123", reply)
	}
}

func TestQueryTrimsCRLF(t *testing.T) {
	rw := newPipeRW("  1.0e9\r\n")
	c := NewConn(rw, WithTerminator('\n'))

	reply, err := c.Query("FREQ?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if reply != "1.0e9" {
		t.Errorf("reply = %q, want 1.0e9", reply)
	}
}

func TestWriteDelayPauses(t *testing.T) {
	rw := newPipeRW("")
	c := NewConn(rw, WithWriteDelay(20*time.Millisecond))

	start := time.Now()
	if err := c.Command("GO"); err != nil {
		t.Fatalf("Command: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("write returned after %v, want >= 20ms", elapsed)
	}
}

func TestCloseClosesStream(t *testing.T) {
	rw := newPipeRW("")
	c := NewConn(rw)

	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !rw.closed {
		t.Error("underlying stream not closed")
	}
}
