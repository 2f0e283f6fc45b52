// Package server exposes the console to remote administrators over telnet
// and WebSocket. Every accepted line is handed to the host loop; sessions
// never touch game state themselves.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lawnchairsociety/gameconsole/internal/antispam"
	"github.com/lawnchairsociety/gameconsole/internal/config"
	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/logger"
)

// Submitter runs a console line on the host loop.
type Submitter interface {
	Submit(ctx context.Context, source, line string) ([]console.Outcome, error)
}

const banner = "Game console - type 'help' for commands, 'quit' to disconnect."

// Server accepts remote console sessions.
type Server struct {
	remote           config.RemoteConfig
	prompt           string
	antispam         antispam.Config
	submitter        Submitter
	auth             *Authenticator
	connLimiter      *ConnLimiter
	loginRateLimiter *LoginRateLimiter

	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	listeners    []net.Listener
	httpServers  []*http.Server
	clients      map[Client]struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// New creates a remote console server for cfg. It does not listen until
// Start, ServeTelnet or Handler is used.
func New(cfg *config.Config, submitter Submitter) (*Server, error) {
	auth, err := NewAuthenticator(cfg.Remote.PasswordHash)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		remote: cfg.Remote,
		prompt: cfg.Console.Prompt,
		antispam: antispam.ConfigFromYAML(cfg.AntiSpam.Enabled, cfg.AntiSpam.MaxCommands,
			cfg.AntiSpam.WindowSecs, cfg.AntiSpam.RepeatSecs),
		submitter:        submitter,
		auth:             auth,
		connLimiter:      NewConnLimiter(cfg.Connections),
		loginRateLimiter: NewLoginRateLimiter(cfg.RateLimit),
		ctx:              ctx,
		cancel:           cancel,
		clients:          make(map[Client]struct{}),
	}, nil
}

func (s *Server) limits() Limits {
	return Limits{IdleTimeout: s.remote.IdleTimeout, MaxLineLength: int(s.remote.MaxMessageSize)}
}

// Start listens on the configured telnet and WebSocket addresses. An empty
// address disables that transport.
func (s *Server) Start() error {
	if addr := s.remote.TelnetAddr; addr != "" {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to start telnet console: %w", err)
		}
		logger.Info("Remote console listening", "transport", "telnet", "address", l.Addr().String())
		go s.ServeTelnet(l)
	}

	if addr := s.remote.WebSocketAddr; addr != "" {
		l, err := net.Listen("tcp", addr)
		if err != nil {
			s.Shutdown()
			return fmt.Errorf("failed to start websocket console: %w", err)
		}
		logger.Info("Remote console listening", "transport", "websocket", "address", l.Addr().String())
		go s.ServeWebSocket(l)
	}
	return nil
}

// begin registers a goroutine with the server and runs register under the
// same lock. It fails once Shutdown has started, so nothing is added while
// Shutdown waits.
func (s *Server) begin(register func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.wg.Add(1)
	if register != nil {
		register()
	}
	return true
}

// ServeTelnet accepts telnet sessions on l until Shutdown.
func (s *Server) ServeTelnet(l net.Listener) {
	if !s.begin(func() { s.listeners = append(s.listeners, l) }) {
		l.Close()
		return
	}
	defer s.wg.Done()

	for {
		conn, err := l.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			logger.Error("Error accepting connection", "error", err)
			continue
		}
		// Counted by this accept loop, so Add cannot race with Wait.
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// ServeWebSocket serves Handler on l until Shutdown.
func (s *Server) ServeWebSocket(l net.Listener) {
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	if !s.begin(func() { s.httpServers = append(s.httpServers, srv) }) {
		l.Close()
		return
	}
	defer s.wg.Done()

	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("WebSocket console stopped", "error", err)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	ip := extractIP(conn.RemoteAddr().String())
	release, err := s.connLimiter.Acquire(ip)
	if err != nil {
		logger.Warning("Connection rejected - limit exceeded",
			"remote_addr", conn.RemoteAddr().String(),
			"ip", ip,
			"error", err)
		conn.Write([]byte("Too many connections. Please try again later.\r\n"))
		return
	}
	defer release()

	s.handleClient(NewTelnetClient(conn, s.limits()), ip)
}

// Handler returns the HTTP handler serving WebSocket sessions on /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocketUpgrade)
	return mux
}

func (s *Server) handleWebSocketUpgrade(w http.ResponseWriter, r *http.Request) {
	clientIP := realIP(r, s.remote.TrustProxy)

	release, err := s.connLimiter.Acquire(clientIP)
	if err != nil {
		logger.Warning("WebSocket connection rejected - limit exceeded",
			"remote_addr", r.RemoteAddr,
			"client_ip", clientIP,
			"error", err)
		http.Error(w, "Too many connections. Please try again later.", http.StatusTooManyRequests)
		return
	}
	defer release()

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			allowed := s.remote.IsOriginAllowed(origin, r.Host)
			if !allowed {
				logger.Warning("WebSocket connection rejected - origin not allowed",
					"origin", origin,
					"host", r.Host,
					"remote_addr", r.RemoteAddr)
			}
			return allowed
		},
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		return
	}
	defer wsConn.Close()

	s.handleClient(NewWebSocketClient(wsConn, s.limits()), clientIP)
}

// realIP returns the client IP of r. Proxy headers are only honoured when
// trustProxy is set; the first X-Forwarded-For entry is the original client.
func realIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}
	return extractIP(r.RemoteAddr)
}

// handleClient is the session logic shared by telnet and WebSocket.
func (s *Server) handleClient(client Client, ip string) {
	if !s.addClient(client) {
		return
	}
	defer s.removeClient(client)

	logger.Info("Remote console connected", "remote_addr", client.RemoteAddr())
	defer logger.Info("Remote console disconnected", "remote_addr", client.RemoteAddr())

	if err := s.handleAuth(client, ip); err != nil {
		logger.Info("Authentication failed", "remote_addr", client.RemoteAddr(), "error", err)
		return
	}

	client.WriteLine(banner)
	s.session(client, ip)
}

func (s *Server) session(client Client, ip string) {
	source := "remote:" + ip
	tracker := antispam.NewTracker(s.antispam)

	for {
		if s.prompt != "" {
			if err := client.Write([]byte(s.prompt)); err != nil {
				return
			}
		}

		line, err := client.ReadLine()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				client.WriteLine("Disconnected due to inactivity.")
			}
			return
		}

		line = strings.TrimSpace(line)
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit", "logout":
			client.WriteLine("Goodbye.")
			return
		}

		if res := tracker.Check(line); !res.Allowed {
			client.WriteLine(fmt.Sprintf("%s (wait %ds)", res.Reason, res.WaitSeconds()))
			continue
		}

		outcomes, err := s.submitter.Submit(s.ctx, source, line)
		if err != nil {
			client.WriteLine("The console is shutting down.")
			return
		}
		for _, o := range outcomes {
			if text := o.Line(); text != "" {
				if err := client.WriteLine(text); err != nil {
					return
				}
			}
		}
	}
}

func (s *Server) addClient(c Client) bool {
	return s.begin(func() { s.clients[c] = struct{}{} })
}

func (s *Server) removeClient(c Client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	s.wg.Done()
}

// Sessions returns the number of connected remote clients.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Shutdown closes listeners and sessions and waits for their goroutines.
// It is safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		s.cancel()
		listeners := s.listeners
		httpServers := s.httpServers
		clients := make([]Client, 0, len(s.clients))
		for c := range s.clients {
			clients = append(clients, c)
		}
		s.mu.Unlock()

		for _, l := range listeners {
			l.Close()
		}
		for _, srv := range httpServers {
			srv.Close()
		}
		for _, c := range clients {
			c.Close()
		}

		s.wg.Wait()
		s.loginRateLimiter.Stop()
		logger.Info("Remote console stopped")
	})
}
