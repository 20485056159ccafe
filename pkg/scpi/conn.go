// Package scpi implements the line-oriented ASCII command/response transport
// shared by the serial instruments in this repository. A Conn writes commands
// with a configurable terminator (carriage return by default) and reads
// terminated replies, optionally stripping a fixed-length response header.
package scpi

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

// Conn is a command/response connection to one instrument. A Conn is not safe
// for concurrent use; callers serialize access per instrument.
type Conn struct {
	rw         io.ReadWriteCloser
	br         *bufio.Reader
	term       byte
	respHeader int
	writeDelay time.Duration
}

// Option configures a Conn.
type Option func(*Conn)

// WithTerminator sets the command/response terminator byte. Default '\r'.
func WithTerminator(term byte) Option {
	return func(c *Conn) { c.term = term }
}

// WithResponseHeader strips n leading bytes from every reply before parsing.
func WithResponseHeader(n int) Option {
	return func(c *Conn) { c.respHeader = n }
}

// WithWriteDelay pauses after every write. Some controllers (the DS102 stage
// among them) drop commands that arrive back to back.
func WithWriteDelay(d time.Duration) Option {
	return func(c *Conn) { c.writeDelay = d }
}

// NewConn wraps an existing byte stream.
func NewConn(rw io.ReadWriteCloser, opts ...Option) *Conn {
	c := &Conn{
		rw:   rw,
		br:   bufio.NewReader(rw),
		term: '\r',
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open dials a serial port at the given baud rate (8N1) and wraps it in a
// Conn. A failure to open is returned to the caller, which decides whether to
// retry or abort.
func Open(port string, baud int, opts ...Option) (*Conn, error) {
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to open serial port %s", port)
	}
	if err := p.SetReadTimeout(5 * time.Second); err != nil {
		_ = p.Close()
		return nil, pkgerrors.Wrap(err, "failed to set read timeout")
	}

	logrus.WithFields(logrus.Fields{
		"port": port,
		"baud": baud,
	}).Debug("serial port opened")

	return NewConn(p, opts...), nil
}

// Command formats according to a format specifier if provided and sends the
// resulting command. Leading and trailing whitespace is removed before the
// terminator is appended.
func (c *Conn) Command(format string, a ...any) error {
	cmd := format
	if len(a) > 0 {
		cmd = fmt.Sprintf(format, a...)
	}
	cmd = strings.TrimSpace(cmd)

	logrus.WithFields(logrus.Fields{
		"cmd": cmd,
	}).Trace("writing command")

	if _, err := c.rw.Write([]byte(cmd + string(c.term))); err != nil {
		return pkgerrors.Wrapf(err, "failed to write command %q", cmd)
	}
	if c.writeDelay > 0 {
		time.Sleep(c.writeDelay)
	}
	return nil
}

// Query sends the given command and reads one terminated reply. The
// configured response header is stripped and surrounding whitespace trimmed.
func (c *Conn) Query(cmd string) (string, error) {
	if err := c.Command(cmd); err != nil {
		return "", err
	}
	s, err := c.br.ReadString(c.term)
	if err != nil && err != io.EOF {
		return "", pkgerrors.Wrapf(err, "failed to read reply to %q", cmd)
	}
	if len(s) > c.respHeader {
		s = s[c.respHeader:]
	}
	s = strings.Trim(s, "\r\n \t")

	logrus.WithFields(logrus.Fields{
		"cmd":   cmd,
		"reply": s,
	}).Trace("query reply")

	return s, nil
}

// Close closes the underlying stream.
func (c *Conn) Close() error {
	return c.rw.Close()
}
