package cache

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"
)

// ValkeyProvider implements Provider against a Valkey/Redis-compatible
// server, speaking just enough RESP for GET and SET.
type ValkeyProvider struct {
	cfg ValkeyConfig
}

// ValkeyConfig holds connection parameters for the shared report cache.
type ValkeyConfig struct {
	Addr         string
	Username     string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxRetries   int
	TLS          bool
}

// NewValkeyProvider creates a Provider and pings the target so the caller
// fails fast on wrong credentials or connectivity.
func NewValkeyProvider(cfg ValkeyConfig) (*ValkeyProvider, error) {
	if cfg.Addr == "" {
		return nil, errors.New("valkey addr is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 2 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 500 * time.Millisecond
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 500 * time.Millisecond
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}

	provider := &ValkeyProvider{cfg: cfg}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := provider.ping(ctx); err != nil {
		return nil, err
	}
	return provider, nil
}

// Get fetches bytes by key, returning ErrCacheMiss when the key is absent.
func (p *ValkeyProvider) Get(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := p.withConn(ctx, func(conn *respConn) error {
		if err := conn.command("GET", key); err != nil {
			return err
		}
		reply, err := conn.reply()
		if err != nil {
			return err
		}
		if reply.missing {
			return ErrCacheMiss
		}
		payload = reply.data
		return nil
	})
	return payload, err
}

// Set stores bytes with the provided TTL.
func (p *ValkeyProvider) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return p.withConn(ctx, func(conn *respConn) error {
		args := []string{key, string(value)}
		if ttl > 0 {
			args = append(args, "PX", strconv.FormatInt(ttl.Milliseconds(), 10))
		}
		if err := conn.command("SET", args...); err != nil {
			return err
		}
		reply, err := conn.reply()
		if err != nil {
			return err
		}
		if string(reply.data) != "OK" {
			return fmt.Errorf("unexpected SET response: %s", reply.data)
		}
		return nil
	})
}

// Close closes the provider (stateless, nothing held open).
func (p *ValkeyProvider) Close() error { return nil }

func (p *ValkeyProvider) ping(ctx context.Context) error {
	return p.withConn(ctx, func(conn *respConn) error {
		if err := conn.command("PING"); err != nil {
			return err
		}
		reply, err := conn.reply()
		if err != nil {
			return err
		}
		if string(reply.data) != "PONG" {
			return fmt.Errorf("unexpected PING response: %s", reply.data)
		}
		return nil
	})
}

// withConn dials a fresh connection per operation, retrying transient
// network errors with exponential backoff.
func (p *ValkeyProvider) withConn(ctx context.Context, fn func(*respConn) error) error {
	var lastErr error
	for attempt := 0; attempt < p.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		err := p.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable(err) || attempt == p.cfg.MaxRetries-1 {
			return err
		}
		time.Sleep(time.Duration(1<<attempt) * 25 * time.Millisecond)
	}
	return lastErr
}

func (p *ValkeyProvider) runOnce(ctx context.Context, fn func(*respConn) error) error {
	conn, err := p.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.close()

	if err := p.authenticate(conn); err != nil {
		return err
	}
	return fn(conn)
}

func (p *ValkeyProvider) dial(ctx context.Context) (*respConn, error) {
	dialer := net.Dialer{Timeout: p.cfg.DialTimeout}
	var (
		raw net.Conn
		err error
	)
	if p.cfg.TLS {
		host := p.cfg.Addr
		if h, _, splitErr := net.SplitHostPort(p.cfg.Addr); splitErr == nil {
			host = h
		}
		raw, err = tls.DialWithDialer(&dialer, "tcp", p.cfg.Addr,
			&tls.Config{MinVersion: tls.VersionTLS12, ServerName: host})
	} else {
		raw, err = dialer.DialContext(ctx, "tcp", p.cfg.Addr)
	}
	if err != nil {
		return nil, err
	}
	return &respConn{
		conn:         raw,
		reader:       bufio.NewReader(raw),
		writer:       bufio.NewWriter(raw),
		readTimeout:  p.cfg.ReadTimeout,
		writeTimeout: p.cfg.WriteTimeout,
	}, nil
}

func (p *ValkeyProvider) authenticate(conn *respConn) error {
	if p.cfg.Password != "" {
		args := []string{p.cfg.Password}
		if p.cfg.Username != "" {
			args = []string{p.cfg.Username, p.cfg.Password}
		}
		if err := conn.command("AUTH", args...); err != nil {
			return err
		}
		reply, err := conn.reply()
		if err != nil {
			return err
		}
		if !strings.EqualFold(string(reply.data), "OK") {
			return fmt.Errorf("auth failed: %s", reply.data)
		}
	}
	if p.cfg.DB > 0 {
		if err := conn.command("SELECT", strconv.Itoa(p.cfg.DB)); err != nil {
			return err
		}
		reply, err := conn.reply()
		if err != nil {
			return err
		}
		if !strings.EqualFold(string(reply.data), "OK") {
			return fmt.Errorf("select failed: %s", reply.data)
		}
	}
	return nil
}

func retryable(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// respReply carries a decoded simple/bulk string; missing marks the RESP null
// bulk string.
type respReply struct {
	data    []byte
	missing bool
}

// respConn wraps a network connection with minimal RESP encoding.
type respConn struct {
	conn         net.Conn
	reader       *bufio.Reader
	writer       *bufio.Writer
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func (c *respConn) close() {
	_ = c.conn.Close()
}

func (c *respConn) command(name string, args ...string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	fmt.Fprintf(c.writer, "*%d\r\n", len(args)+1)
	for _, part := range append([]string{name}, args...) {
		fmt.Fprintf(c.writer, "$%d\r\n%s\r\n", len(part), part)
	}
	return c.writer.Flush()
}

func (c *respConn) reply() (respReply, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		return respReply{}, err
	}
	prefix, err := c.reader.ReadByte()
	if err != nil {
		return respReply{}, err
	}
	switch prefix {
	case '+', ':':
		line, err := c.line()
		return respReply{data: line}, err
	case '-':
		line, err := c.line()
		if err != nil {
			return respReply{}, err
		}
		return respReply{}, errors.New(string(line))
	case '$':
		line, err := c.line()
		if err != nil {
			return respReply{}, err
		}
		size, err := strconv.Atoi(string(line))
		if err != nil {
			return respReply{}, err
		}
		if size < 0 {
			return respReply{missing: true}, nil
		}
		buf := make([]byte, size+2)
		if _, err := io.ReadFull(c.reader, buf); err != nil {
			return respReply{}, err
		}
		if buf[size] != '\r' || buf[size+1] != '\n' {
			return respReply{}, errors.New("invalid bulk string termination")
		}
		return respReply{data: buf[:size]}, nil
	default:
		return respReply{}, fmt.Errorf("unexpected RESP prefix %q", prefix)
	}
}

func (c *respConn) line() ([]byte, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
