package proto

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// Framer encodes and decodes discrete protocol messages over one net.Conn.
//
// Framer is NOT goroutine-safe. The caller must ensure that only one
// send/receive pair is active at a time, consistent with the strictly
// synchronous request/reply design of the protocol: one request always
// yields exactly one reply before the next request may be issued.
type Framer struct {
	conn net.Conn

	// receiveTimeout bounds the wait for each receive. The base protocol
	// defines no timeout; a zero value blocks indefinitely.
	receiveTimeout time.Duration
}

// NewFramer creates a Framer over conn. receiveTimeout bounds each receive
// operation; zero disables the deadline.
func NewFramer(conn net.Conn, receiveTimeout time.Duration) *Framer {
	return &Framer{conn: conn, receiveTimeout: receiveTimeout}
}

// SendString encodes s as single-byte Latin-1 text and writes it, appending
// a single 0x00 terminator iff delim is true.
//
// Runes above 0xFF cannot be represented on the wire and fail with
// ErrInvalidArgument before anything is written.
func (f *Framer) SendString(s string, delim bool) error {
	payload, err := encodeLatin1(s, delim)
	if err != nil {
		return err
	}

	if _, err := f.conn.Write(payload); err != nil {
		return fmt.Errorf("write string frame: %w", err)
	}

	return nil
}

// SendInt stringifies v and applies SendString rules.
func (f *Framer) SendInt(v int, delim bool) error {
	return f.SendString(strconv.Itoa(v), delim)
}

// SendBytes writes the raw byte payload unmodified, no terminator.
func (f *Framer) SendBytes(p []byte) error {
	if _, err := f.conn.Write(p); err != nil {
		return fmt.Errorf("write binary frame: %w", err)
	}

	return nil
}

// ReceiveString reads one byte at a time until a 0x00 byte or stream end is
// observed, and returns the accumulated text with the terminator excluded.
//
// Stream end before any terminator is not an error; it ends the string at
// whatever was read. Bytes decode as Latin-1, one byte per rune.
func (f *Framer) ReceiveString() (string, error) {
	if err := f.armDeadline(); err != nil {
		return "", err
	}

	var sb strings.Builder
	buf := make([]byte, 1)

	for {
		n, err := f.conn.Read(buf)
		if n > 0 {
			if buf[0] == 0 {
				return sb.String(), nil
			}
			sb.WriteRune(rune(buf[0]))
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return sb.String(), nil
			}

			return "", fmt.Errorf("read string frame: %w", err)
		}
	}
}

// ReceiveInt reads a STRING frame and parses it as a decimal integer.
//
// An empty reply is "missing": it returns ok=false with a nil error, never
// zero. A non-empty reply that fails the parse is ErrFormat.
func (f *Framer) ReceiveInt() (v int, ok bool, err error) {
	s, err := f.ReceiveString()
	if err != nil {
		return 0, false, err
	}
	if s == "" {
		return 0, false, nil
	}

	v, err = strconv.Atoi(s)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q is not an integer", ErrFormat, s)
	}

	return v, true, nil
}

// ReceiveFloat reads a STRING frame and parses it as a float.
//
// An empty reply is "missing": it returns ok=false with a nil error, never
// zero. A non-empty reply that fails the parse is ErrFormat.
func (f *Framer) ReceiveFloat() (v float64, ok bool, err error) {
	s, err := f.ReceiveString()
	if err != nil {
		return 0, false, err
	}
	if s == "" {
		return 0, false, nil
	}

	v, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q is not a float", ErrFormat, s)
	}

	return v, true, nil
}

// ReceiveBinary reads exactly length raw bytes.
//
// Partial deliveries from the transport are expected and coalesced; the read
// loops until the full block is accumulated. If the stream closes before
// length bytes arrive, it fails with ErrConnClosed. A non-positive length is
// ErrInvalidArgument.
func (f *Framer) ReceiveBinary(length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: binary length must be positive, got %d", ErrInvalidArgument, length)
	}

	if err := f.armDeadline(); err != nil {
		return nil, err
	}

	buf := make([]byte, length)
	if n, err := io.ReadFull(f.conn, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: stream ended after %d of %d bytes", ErrConnClosed, n, length)
		}

		return nil, fmt.Errorf("read binary frame: %w", err)
	}

	return buf, nil
}

// Command performs the atomic request/reply unit of the protocol: a STRING
// send of req followed by a STRING receive.
func (f *Framer) Command(req string) (string, error) {
	if err := f.SendString(req, true); err != nil {
		return "", err
	}

	return f.ReceiveString()
}

// CommandInt sends req and receives an INTEGER reply.
func (f *Framer) CommandInt(req string) (v int, ok bool, err error) {
	if err := f.SendString(req, true); err != nil {
		return 0, false, err
	}

	return f.ReceiveInt()
}

// CommandFloat sends req and receives a FLOAT reply.
func (f *Framer) CommandFloat(req string) (v float64, ok bool, err error) {
	if err := f.SendString(req, true); err != nil {
		return 0, false, err
	}

	return f.ReceiveFloat()
}

// CommandBinary sends req and receives a BINARY reply of exactly length bytes.
func (f *Framer) CommandBinary(req string, length int) ([]byte, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: binary length must be positive, got %d", ErrInvalidArgument, length)
	}

	if err := f.SendString(req, true); err != nil {
		return nil, err
	}

	return f.ReceiveBinary(length)
}

// armDeadline applies the configured receive timeout as a read deadline,
// or clears it when no timeout is configured.
func (f *Framer) armDeadline() error {
	var deadline time.Time
	if f.receiveTimeout > 0 {
		deadline = time.Now().Add(f.receiveTimeout)
	}

	if err := f.conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("set read deadline: %w", err)
	}

	return nil
}

// encodeLatin1 converts s to single-byte text, optionally appending the
// 0x00 terminator. Runes above 0xFF fail with ErrInvalidArgument.
func encodeLatin1(s string, delim bool) ([]byte, error) {
	buf := make([]byte, 0, len(s)+1)
	for _, r := range s {
		if r > 0xFF {
			return nil, fmt.Errorf("%w: rune %q is not representable in Latin-1", ErrInvalidArgument, r)
		}
		buf = append(buf, byte(r))
	}

	if delim {
		buf = append(buf, 0)
	}

	return buf, nil
}
