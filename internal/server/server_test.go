package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/lawnchairsociety/gameconsole/internal/config"
	"github.com/lawnchairsociety/gameconsole/internal/console"
)

const testPassword = "Correct-Horse-9"

// dispatchSubmitter runs lines through a real dispatcher, serialized like
// the host loop would.
type dispatchSubmitter struct {
	mu         sync.Mutex
	dispatcher *console.Dispatcher
	sources    []string
}

func newDispatchSubmitter() *dispatchSubmitter {
	reg := console.NewRegistry()
	reg.MustRegister("ping", nil, func(*console.Invocation, console.Args) (string, error) {
		return "pong", nil
	})
	return &dispatchSubmitter{
		dispatcher: console.NewDispatcher(reg, console.NewCoercer(nil), console.NewTokenizer()),
	}
}

func (d *dispatchSubmitter) Submit(ctx context.Context, source, line string) ([]console.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sources = append(d.sources, source)
	return d.dispatcher.Dispatch(source, line), nil
}

func newTestServer(t *testing.T, mutate func(cfg *config.Config)) (*Server, *dispatchSubmitter) {
	t.Helper()

	hash, err := HashPassword(testPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Remote.PasswordHash = hash
	cfg.Console.Prompt = ""
	if mutate != nil {
		mutate(cfg)
	}

	sub := newDispatchSubmitter()
	s, err := New(cfg, sub)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, sub
}

func serveTelnet(t *testing.T, s *Server) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go s.ServeTelnet(l)
	return l.Addr().String()
}

type telnetConn struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
}

func dialTelnet(t *testing.T, addr string) *telnetConn {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.SetDeadline(time.Now().Add(10 * time.Second))
	return &telnetConn{t: t, conn: conn, r: bufio.NewReader(conn)}
}

func (c *telnetConn) send(line string) {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(line + "\r\n")); err != nil {
		c.t.Fatalf("write %q: %v", line, err)
	}
}

// expect reads exactly len(want) bytes.
func (c *telnetConn) expect(want string) {
	c.t.Helper()
	buf := make([]byte, len(want))
	if _, err := io.ReadFull(c.r, buf); err != nil {
		c.t.Fatalf("reading %q: %v", want, err)
	}
	if string(buf) != want {
		c.t.Fatalf("got %q, want %q", buf, want)
	}
}

func (c *telnetConn) line() string {
	c.t.Helper()
	line, err := c.r.ReadString('\n')
	if err != nil {
		c.t.Fatalf("read line: %v", err)
	}
	return strings.TrimRight(line, "\r\n")
}

func (c *telnetConn) login() {
	c.t.Helper()
	c.expect("Password: ")
	c.send(testPassword)
	if got := c.line(); got != banner {
		c.t.Fatalf("banner = %q", got)
	}
}

func (c *telnetConn) expectClosed() {
	c.t.Helper()
	if _, err := c.r.ReadByte(); err == nil {
		c.t.Error("connection should be closed")
	}
}

func TestTelnetSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, sub := newTestServer(t, nil)
	defer s.Shutdown()
	c := dialTelnet(t, serveTelnet(t, s))
	defer c.conn.Close()

	c.login()

	c.send("ping; nope")
	if got := c.line(); got != "pong" {
		t.Errorf("first outcome = %q", got)
	}
	if got := c.line(); !strings.HasPrefix(got, `Error: unknown command "nope"`) {
		t.Errorf("second outcome = %q", got)
	}

	c.send("")
	c.send("QUIT")
	if got := c.line(); got != "Goodbye." {
		t.Errorf("quit reply = %q", got)
	}
	c.expectClosed()

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if len(sub.sources) != 1 || sub.sources[0] != "remote:127.0.0.1" {
		t.Errorf("sources = %v", sub.sources)
	}
}

func TestTelnetPrompt(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := newTestServer(t, func(cfg *config.Config) { cfg.Console.Prompt = "> " })
	defer s.Shutdown()
	c := dialTelnet(t, serveTelnet(t, s))
	defer c.conn.Close()

	c.login()
	c.expect("> ")
	c.send("ping")
	if got := c.line(); got != "pong" {
		t.Errorf("outcome = %q", got)
	}
	c.expect("> ")
}

func TestWrongPasswordLocksOut(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimit.MaxAttempts = 2
		cfg.RateLimit.LockoutSeconds = 60
	})
	defer s.Shutdown()
	addr := serveTelnet(t, s)

	c := dialTelnet(t, addr)
	c.expect("Password: ")
	c.send("guess")
	if got := c.line(); got != "Wrong password." {
		t.Errorf("first failure = %q", got)
	}
	c.expect("Password: ")
	c.send("guess again")
	if got := c.line(); !strings.Contains(got, "locked out for 60 seconds") {
		t.Errorf("second failure = %q", got)
	}
	c.expectClosed()
	c.conn.Close()

	c = dialTelnet(t, addr)
	defer c.conn.Close()
	if got := c.line(); !strings.HasPrefix(got, "Too many failed attempts.") {
		t.Errorf("locked reconnect = %q", got)
	}
	c.expectClosed()
}

func TestTooManyPasswordAttempts(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := newTestServer(t, func(cfg *config.Config) { cfg.RateLimit.MaxAttempts = 10 })
	defer s.Shutdown()
	c := dialTelnet(t, serveTelnet(t, s))
	defer c.conn.Close()

	for i := 0; i < MaxPasswordAttempts; i++ {
		c.expect("Password: ")
		c.send("nope")
		if got := c.line(); got != "Wrong password." {
			t.Fatalf("attempt %d = %q", i+1, got)
		}
	}
	if got := c.line(); got != "Too many attempts. Disconnecting." {
		t.Errorf("final line = %q", got)
	}
	c.expectClosed()
}

func TestConnectionLimit(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := newTestServer(t, func(cfg *config.Config) { cfg.Connections.MaxPerIP = 1 })
	defer s.Shutdown()
	addr := serveTelnet(t, s)

	first := dialTelnet(t, addr)
	defer first.conn.Close()
	first.expect("Password: ")

	second := dialTelnet(t, addr)
	defer second.conn.Close()
	if got := second.line(); got != "Too many connections. Please try again later." {
		t.Errorf("second connection = %q", got)
	}
	second.expectClosed()
}

func TestAntiSpam(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, sub := newTestServer(t, func(cfg *config.Config) {
		cfg.AntiSpam = config.AntiSpamConfig{Enabled: true, MaxCommands: 2, WindowSecs: 60}
	})
	defer s.Shutdown()
	c := dialTelnet(t, serveTelnet(t, s))
	defer c.conn.Close()
	c.login()

	for i := 0; i < 2; i++ {
		c.send("ping")
		if got := c.line(); got != "pong" {
			t.Fatalf("ping %d = %q", i, got)
		}
	}
	c.send("ping")
	if got := c.line(); !strings.HasPrefix(got, "You're sending commands too quickly.") {
		t.Errorf("third ping = %q", got)
	}

	sub.mu.Lock()
	defer sub.mu.Unlock()
	if len(sub.sources) != 2 {
		t.Errorf("submitted %d lines, want 2", len(sub.sources))
	}
}

func TestIdleTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := newTestServer(t, func(cfg *config.Config) { cfg.Remote.IdleTimeout = 100 * time.Millisecond })
	defer s.Shutdown()
	c := dialTelnet(t, serveTelnet(t, s))
	defer c.conn.Close()
	c.login()

	if got := c.line(); got != "Disconnected due to inactivity." {
		t.Errorf("idle reply = %q", got)
	}
	c.expectClosed()
}

func TestShutdownClosesSessions(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := newTestServer(t, nil)
	addr := serveTelnet(t, s)
	c := dialTelnet(t, addr)
	defer c.conn.Close()
	c.login()

	// Wait for the session to register before shutting down.
	deadline := time.Now().Add(5 * time.Second)
	for s.Sessions() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	s.Shutdown()
	s.Shutdown()

	c.expectClosed()
	if s.Sessions() != 0 {
		t.Errorf("Sessions() = %d after Shutdown", s.Sessions())
	}
	if _, err := net.DialTimeout("tcp", addr, time.Second); err == nil {
		t.Error("listener should be closed")
	}
}

func TestNewRejectsBadHash(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Remote.PasswordHash = "not-a-bcrypt-hash"
	if _, err := New(cfg, newDispatchSubmitter()); err == nil {
		t.Error("New should reject an invalid password hash")
	}
}

func TestAuthenticator(t *testing.T) {
	hash, err := HashPassword(testPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	auth, err := NewAuthenticator(hash)
	if err != nil {
		t.Fatal(err)
	}
	if !auth.Verify(testPassword) {
		t.Error("correct password rejected")
	}
	if auth.Verify(strings.ToLower(testPassword)) {
		t.Error("wrong password accepted")
	}
}
