package redisserver

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/respkv-go/internal/telemetry/logger"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
	"github.com/yndnr/respkv-go/pkg/cmap"
)

const (
	// MaxPendingBytes caps unparsed input buffered for one connection.
	MaxPendingBytes = 8 * 1024 * 1024

	readChunkSize  = 4096
	maxAcceptDelay = time.Second
)

// Config holds the RESP server configuration.
type Config struct {
	// Address is the TCP listen address.
	Address string
	// ReadTimeout bounds the time to receive the rest of a partially
	// received request (default: 30s).
	ReadTimeout time.Duration
	// WriteTimeout is the timeout for writing replies (default: 30s).
	WriteTimeout time.Duration
	// IdleTimeout closes connections with no pending input (default: 5m).
	IdleTimeout time.Duration
	// RateLimit is the maximum number of commands per second per
	// connection. 0 disables rate limiting.
	RateLimit int
	// MaxConnections caps concurrent clients. 0 means unlimited.
	MaxConnections int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:      "127.0.0.1:6379",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  5 * time.Minute,
	}
}

// Server is the RESP protocol server.
type Server struct {
	cfg     *Config
	handler *CommandHandler
	metrics *metric.Registry
	logger  *slog.Logger

	lnMu sync.Mutex
	ln   net.Listener

	conns     *cmap.Map[*Conn]
	rateLimit atomic.Int64
	running   atomic.Bool
	wg        sync.WaitGroup
}

// ConnState is the lifecycle stage of a client connection.
type ConnState int32

const (
	StateReading ConnState = iota
	StateDispatching
	StateWriting
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateDispatching:
		return "dispatching"
	case StateWriting:
		return "writing"
	default:
		return "closed"
	}
}

// Conn represents a single client connection.
type Conn struct {
	id      string
	netConn net.Conn
	buf     []byte
	bw      *bufio.Writer
	limiter atomic.Pointer[rate.Limiter]
	ctx     context.Context
	logger  *slog.Logger

	state  atomic.Int32
	closed atomic.Bool
}

func newConn(nc net.Conn, perSecond int, base *slog.Logger) *Conn {
	id := strings.ToLower(ulid.Make().String())
	ctx := logger.WithLogger(context.Background(), base.With("remote", nc.RemoteAddr().String()))
	ctx = logger.WithConnID(ctx, id)
	c := &Conn{
		id:      id,
		netConn: nc,
		bw:      bufio.NewWriter(nc),
		ctx:     ctx,
		logger:  logger.L(ctx),
	}
	c.setRateLimit(perSecond)
	return c
}

// Context carries the connection logger and ID for the lifetime of c.
func (c *Conn) Context() context.Context { return c.ctx }

// ID returns the connection identifier, a lower-case ULID.
func (c *Conn) ID() string { return c.id }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.netConn.RemoteAddr() }

// State returns the current lifecycle stage.
func (c *Conn) State() ConnState { return ConnState(c.state.Load()) }

func (c *Conn) setState(st ConnState) { c.state.Store(int32(st)) }

// Close closes the connection. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.setState(StateClosed)
	return c.netConn.Close()
}

// setRateLimit installs a fresh limiter so a raised limit takes effect
// with a full bucket.
func (c *Conn) setRateLimit(perSecond int) {
	if perSecond <= 0 {
		c.limiter.Store(rate.NewLimiter(rate.Inf, 0))
		return
	}
	c.limiter.Store(rate.NewLimiter(rate.Limit(perSecond), perSecond))
}

func (c *Conn) allow() bool {
	return c.limiter.Load().Allow()
}

// New creates a RESP server executing commands against store.
func New(cfg *Config, store Store, metrics *metric.Registry, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if metrics == nil {
		metrics = metric.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
		conns:   cmap.New[*Conn](),
	}
	s.rateLimit.Store(int64(cfg.RateLimit))
	s.handler = NewCommandHandler(store, metrics, logger)
	return s
}

// Start binds the listen address and begins accepting connections in the
// background. Cancelling ctx stops accepting; use Shutdown to drain.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Address, err)
	}
	s.lnMu.Lock()
	s.ln = ln
	s.lnMu.Unlock()

	s.running.Store(true)
	s.logger.Info("resp server listening", "address", ln.Addr().String())

	context.AfterFunc(ctx, func() { _ = ln.Close() })

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop(ln)
	}()
	return nil
}

// Addr returns the bound listen address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.lnMu.Lock()
	defer s.lnMu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ActiveConnections returns the number of open client connections.
func (s *Server) ActiveConnections() int {
	return s.conns.Count()
}

// SetRateLimit changes the per-connection command rate for existing and
// future connections.
func (s *Server) SetRateLimit(perSecond int) {
	s.rateLimit.Store(int64(perSecond))
	s.conns.Range(func(_ string, c *Conn) bool {
		c.setRateLimit(perSecond)
		return true
	})
	s.logger.Info("rate limit updated", "per_second", perSecond)
}

// Shutdown stops accepting, lets every connection finish the request it
// is processing, and waits for them to exit. When ctx expires first the
// remaining connections are closed forcibly and ctx.Err() is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.running.Store(false)

	var firstErr error
	s.lnMu.Lock()
	if s.ln != nil {
		if err := s.ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}
	s.lnMu.Unlock()

	// Wake connections blocked in Read.
	now := time.Now()
	s.conns.Range(func(_ string, c *Conn) bool {
		_ = c.netConn.SetReadDeadline(now)
		return true
	})

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		for _, c := range s.conns.Values() {
			_ = c.Close()
		}
		return ctx.Err()
	}
	return firstErr
}

func (s *Server) acceptLoop(ln net.Listener) {
	var delay time.Duration
	for {
		nc, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(delay*2, maxAcceptDelay)
			}
			s.logger.Warn("accept error", "error", err, "retry_in", delay)
			time.Sleep(delay)
			continue
		}
		delay = 0

		if limit := s.cfg.MaxConnections; limit > 0 && s.conns.Count() >= limit {
			s.reject(nc)
			continue
		}

		c := newConn(nc, int(s.rateLimit.Load()), s.logger)
		s.conns.Set(c.id, c)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(c)
		}()
	}
}

func (s *Server) reject(nc net.Conn) {
	s.metrics.ConnectionsRejected.Inc()
	s.logger.Warn("connection rejected", "remote", nc.RemoteAddr().String(), "reason", "max connections")

	_ = nc.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
	_, _ = nc.Write(Encode(ErrorReply("ERR max number of clients reached")))
	_ = nc.Close()
}

func (s *Server) readTimeout() time.Duration {
	if s.cfg.ReadTimeout > 0 {
		return s.cfg.ReadTimeout
	}
	return 30 * time.Second
}

func (s *Server) writeTimeout() time.Duration {
	if s.cfg.WriteTimeout > 0 {
		return s.cfg.WriteTimeout
	}
	return 30 * time.Second
}

func (s *Server) idleTimeout() time.Duration {
	if s.cfg.IdleTimeout > 0 {
		return s.cfg.IdleTimeout
	}
	return 5 * time.Minute
}

func (s *Server) serveConn(c *Conn) {
	s.metrics.ConnectionsAccepted.Inc()
	s.metrics.ConnectionsActive.Inc()
	c.logger.Debug("connection opened")

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("connection panic", "panic", r)
		}
		_ = c.Close()
		s.conns.Delete(c.id)
		s.metrics.ConnectionsActive.Dec()
		c.logger.Debug("connection closed")
	}()

	chunk := make([]byte, readChunkSize)
	var readErr error
	for {
		off := 0
		for off < len(c.buf) {
			v, n, err := Decode(c.buf[off:])
			if errors.Is(err, ErrIncomplete) {
				break
			}
			if err != nil {
				s.protocolError(c, err)
				return
			}
			off += n

			c.setState(StateDispatching)
			reply := s.handler.Handle(c, v)
			c.setState(StateWriting)
			if err := WriteValue(c.bw, reply); err != nil {
				return
			}
		}
		if off > 0 {
			c.buf = append(c.buf[:0], c.buf[off:]...)
		}

		if c.bw.Buffered() > 0 {
			if err := c.netConn.SetWriteDeadline(time.Now().Add(s.writeTimeout())); err != nil {
				return
			}
			if err := c.bw.Flush(); err != nil {
				c.logger.Debug("write failed", "error", err)
				return
			}
		}

		if readErr != nil {
			s.readFailed(c, readErr)
			return
		}
		if len(c.buf) > MaxPendingBytes {
			s.protocolError(c, fmt.Errorf("%w: %d bytes pending", ErrLimitExceeded, len(c.buf)))
			return
		}

		c.setState(StateReading)
		timeout := s.idleTimeout()
		if len(c.buf) > 0 {
			timeout = s.readTimeout()
		}
		if err := c.netConn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return
		}
		// Shutdown may have run between the last check and the deadline above.
		if !s.running.Load() {
			return
		}

		n, err := c.netConn.Read(chunk)
		c.buf = append(c.buf, chunk[:n]...)
		readErr = err
	}
}

func (s *Server) readFailed(c *Conn, err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF):
		if len(c.buf) > 0 {
			s.metrics.ProtocolErrors.Inc()
			c.logger.Warn("connection closed mid-request", "pending_bytes", len(c.buf))
		}
	case errors.As(err, &netErr) && netErr.Timeout():
		switch {
		case !s.running.Load():
		case len(c.buf) > 0:
			s.metrics.ProtocolErrors.Inc()
			c.logger.Warn("request incomplete at read deadline", "pending_bytes", len(c.buf))
		default:
			c.logger.Debug("connection idle timeout")
		}
	default:
		c.logger.Debug("connection read error", "error", err)
	}
}

func (s *Server) protocolError(c *Conn, err error) {
	s.metrics.ProtocolErrors.Inc()

	msg := "ERR protocol error"
	if errors.Is(err, ErrLimitExceeded) {
		msg = "ERR protocol limit exceeded"
		c.logger.Warn("protocol limit exceeded", "error", err)
	} else {
		c.logger.Debug("protocol error", "error", err)
	}

	_ = c.netConn.SetWriteDeadline(time.Now().Add(s.writeTimeout()))
	_ = WriteValue(c.bw, ErrorReply(msg))
	_ = c.bw.Flush()
}
