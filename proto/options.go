package proto

import (
	"fmt"
	"time"

	"github.com/elmitec/go-elmitec/logger"
)

// Option represents a functional option for configuring a session Client.
type Option interface {
	apply(*Client) error
}

type optFunc struct {
	name      string
	applyFunc func(*Client) error
}

func (o *optFunc) apply(c *Client) error { return o.applyFunc(c) }

func newOptFunc(name string, f func(*Client) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

// WithHost sets the remote host for the session.
// An error is returned if the host is empty.
//
// The default host is "localhost".
func WithHost(host string) Option {
	return newOptFunc("WithHost", func(c *Client) error {
		if host == "" {
			return fmt.Errorf("%w: host must not be empty", ErrInvalidArgument)
		}
		c.host = host

		return nil
	})
}

// WithPort sets the remote TCP port for the session.
// An error is returned if the port is outside the range 0..65535.
//
// The default is the application's well-known port (LEEM2000 5566, UView 5570).
func WithPort(port int) Option {
	return newOptFunc("WithPort", func(c *Client) error {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%w: port %d out of range [0, 65535]", ErrInvalidArgument, port)
		}
		c.port = port

		return nil
	})
}

// WithConnectTimeout sets the timeout for establishing the TCP connection.
// A zero value disables the timeout.
//
// The default value is 3 seconds.
func WithConnectTimeout(d time.Duration) Option {
	return newOptFunc("WithConnectTimeout", func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("%w: connect timeout must not be negative", ErrInvalidArgument)
		}
		c.connectTimeout = d

		return nil
	})
}

// WithReceiveTimeout bounds the wait for each receive operation. The base
// protocol defines no timeout; without one an unresponsive peer blocks the
// caller indefinitely. A zero value restores that unbounded behavior.
//
// The default value is 30 seconds.
func WithReceiveTimeout(d time.Duration) Option {
	return newOptFunc("WithReceiveTimeout", func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("%w: receive timeout must not be negative", ErrInvalidArgument)
		}
		c.receiveTimeout = d

		return nil
	})
}

// WithLogger sets the logger for the session.
//
// The default logger is the global logger instance.
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(c *Client) error {
		if l == nil {
			return fmt.Errorf("%w: logger must not be nil", ErrInvalidArgument)
		}
		c.logger = l
		c.log = l

		return nil
	})
}

// WithDialer substitutes the function used to dial the remote application.
// Tests use it to connect sessions over an in-process transport.
func WithDialer(dial DialFunc) Option {
	return newOptFunc("WithDialer", func(c *Client) error {
		if dial == nil {
			return fmt.Errorf("%w: dialer must not be nil", ErrInvalidArgument)
		}
		c.dial = dial

		return nil
	})
}
