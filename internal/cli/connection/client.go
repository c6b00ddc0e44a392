package connection

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tidwall/resp"
)

// DefaultTimeout bounds dialing and each request when no timeout is given.
const DefaultTimeout = 5 * time.Second

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("connection closed")

// Client is a connection to a respkv server.
type Client struct {
	addr    string
	timeout time.Duration

	mu     sync.Mutex
	conn   net.Conn
	rd     *resp.Reader
	wr     *resp.Writer
	closed bool
}

// Dial connects to addr. A non-positive timeout uses DefaultTimeout.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	d := net.Dialer{Timeout: timeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    nc,
		rd:      resp.NewReader(nc),
		wr:      resp.NewWriter(nc),
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one command and waits for its reply. Error replies from the
// server are returned as values, not as errors; err is only set when the
// connection itself failed, after which the client is unusable.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, errors.New("empty command")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return resp.Value{}, ErrClosed
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resp.Value{}, err
	}
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	rest := make([]any, len(args)-1)
	for i, a := range args[1:] {
		rest[i] = a
	}
	if err := c.wr.WriteMultiBulk(args[0], rest...); err != nil {
		return resp.Value{}, c.fail(ctx, fmt.Errorf("send %s: %w", args[0], err))
	}

	v, _, err := c.rd.ReadValue()
	if err != nil {
		return resp.Value{}, c.fail(ctx, fmt.Errorf("read reply: %w", err))
	}
	return v, nil
}

// fail closes the connection and prefers the context error when the
// request was cancelled.
func (c *Client) fail(ctx context.Context, err error) error {
	c.closed = true
	_ = c.conn.Close()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Close closes the connection. It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
