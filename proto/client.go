package proto

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elmitec/go-elmitec/logger"
)

// DialFunc dials the remote application. It exists so tests can substitute
// an in-process transport for the TCP dialer.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Client implements the session plumbing shared by the LEEM2000 and UView
// sessions: exclusive ownership of one connection, idempotent
// connect/disconnect, and strictly serialized request/reply traffic.
//
// All methods are safe for concurrent use; the internal mutex serializes
// commands because the protocol has no request identifiers to allow
// interleaving.
type Client struct {
	mu sync.Mutex

	name           string
	host           string
	port           int
	dial           DialFunc
	connectTimeout time.Duration
	receiveTimeout time.Duration
	logger         logger.Logger

	// onConnect runs after a successful dial, outside the command lock.
	// A failure tears the fresh connection down again.
	onConnect func() error

	conn      net.Conn
	framer    *Framer
	connected bool
	log       logger.Logger
}

// NewClient creates the shared session state for the named application with
// its default endpoint, then applies the options.
func NewClient(name, defaultHost string, defaultPort int, opts ...Option) (*Client, error) {
	c := &Client{
		name:           name,
		host:           defaultHost,
		port:           defaultPort,
		dial:           (&net.Dialer{}).DialContext,
		connectTimeout: 3 * time.Second,
		receiveTimeout: 30 * time.Second,
		logger:         logger.GetLogger(),
	}
	c.log = c.logger

	for _, opt := range opts {
		if err := opt.apply(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// RegisterConnectHook registers fn to run after every successful connect.
// The hook runs outside the command lock so it may issue commands; if it
// fails, the connection is closed and Connect returns the hook's error.
//
// The hook must be registered before the first Connect call.
func (c *Client) RegisterConnectHook(fn func() error) {
	c.onConnect = fn
}

// Connect establishes the connection if absent. Calling Connect on an
// already-connected client is a no-op.
func (c *Client) Connect() error {
	_, err := c.connect()
	return err
}

// connect reports whether this call performed the connect, so Acquire can
// record scope-local ownership.
func (c *Client) connect() (bool, error) {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return false, nil
	}

	ctx := context.Background()
	if c.connectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.connectTimeout)
		defer cancel()
	}

	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))
	conn, err := c.dial(ctx, "tcp", addr)
	if err != nil {
		c.mu.Unlock()
		return false, fmt.Errorf("connect %s: %w", addr, err)
	}

	c.conn = conn
	c.framer = NewFramer(conn, c.receiveTimeout)
	c.connected = true
	c.log = c.logger.With("app", c.name, "conn_id", uuid.NewString())
	c.mu.Unlock()

	c.log.Info("connected", "addr", addr)

	if c.onConnect != nil {
		if err := c.onConnect(); err != nil {
			_ = c.Disconnect()
			return false, err
		}
	}

	return true, nil
}

// Disconnect closes the connection. Calling Disconnect on a disconnected
// client is a no-op.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	c.framer = nil
	c.connected = false
	log := c.log
	c.mu.Unlock()

	log.Info("disconnected")

	return err
}

// Connected reports whether the client currently owns an active connection.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connected
}

// Host returns the remote host used for new connections.
func (c *Client) Host() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.host
}

// SetHost sets the remote host, in textual form or as an IP address, used
// for new connections. An empty host is ErrInvalidArgument.
func (c *Client) SetHost(host string) error {
	if host == "" {
		return fmt.Errorf("%w: host must not be empty", ErrInvalidArgument)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.host = host

	return nil
}

// Port returns the remote TCP port used for new connections.
func (c *Client) Port() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.port
}

// SetPort sets the remote TCP port used for new connections. A port outside
// the range 0..65535 is ErrInvalidArgument.
func (c *Client) SetPort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("%w: port %d out of range [0, 65535]", ErrInvalidArgument, port)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.port = port

	return nil
}

// Exec runs fn against the framer while holding the command lock, so that
// compound exchanges (the image header/body/footer sequence) stay atomic
// with respect to other commands. It fails with ErrNotConnected when the
// session is inactive.
func (c *Client) Exec(fn func(f *Framer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}

	return fn(c.framer)
}

// Command issues a single STRING-mode request/reply exchange.
func (c *Client) Command(req string) (string, error) {
	var reply string
	err := c.Exec(func(f *Framer) error {
		c.log.Debug("command", "req", req)

		var err error
		reply, err = f.Command(req)

		return err
	})

	return reply, err
}

// CommandInt issues a single INTEGER-mode request/reply exchange.
// ok is false when the reply was empty ("missing").
func (c *Client) CommandInt(req string) (v int, ok bool, err error) {
	err = c.Exec(func(f *Framer) error {
		c.log.Debug("command", "req", req)

		var err error
		v, ok, err = f.CommandInt(req)

		return err
	})

	return v, ok, err
}

// CommandFloat issues a single FLOAT-mode request/reply exchange.
// ok is false when the reply was empty ("missing").
func (c *Client) CommandFloat(req string) (v float64, ok bool, err error) {
	err = c.Exec(func(f *Framer) error {
		c.log.Debug("command", "req", req)

		var err error
		v, ok, err = f.CommandFloat(req)

		return err
	})

	return v, ok, err
}

// Guard is the scoped-use handle returned by Acquire. It remembers whether
// its Acquire performed the connect, and Release disconnects only in that
// case: a session reused from an already-connected state is left connected.
type Guard struct {
	c     *Client
	owned bool
}

// Acquire auto-connects the client if it is not already connected and
// records whether this call performed the connect.
//
// Acquire composes with manual Connect/Disconnect calls made outside the
// guard: ownership is scope-local, not reference-counted.
func (c *Client) Acquire() (*Guard, error) {
	owned, err := c.connect()
	if err != nil {
		return nil, err
	}

	return &Guard{c: c, owned: owned}, nil
}

// Release disconnects the client iff the guard's Acquire performed the
// connect. Release is idempotent.
func (g *Guard) Release() error {
	if !g.owned {
		return nil
	}
	g.owned = false

	return g.c.Disconnect()
}
