package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/goleak"

	"github.com/lawnchairsociety/gameconsole/internal/config"
)

func wsURL(server *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + path
}

// TestWebSocketClient_ReadLine_EmptyMessages tests that empty messages are skipped.
func TestWebSocketClient_ReadLine_EmptyMessages(t *testing.T) {
	upgrader := websocket.Upgrader{}
	done := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(""))
		conn.WriteMessage(websocket.TextMessage, []byte("   "))
		conn.WriteMessage(websocket.TextMessage, []byte("\n\n\n"))
		conn.WriteMessage(websocket.TextMessage, []byte("valid message"))
		<-done
	}))
	defer server.Close()
	defer close(done)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, ""), nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	client := NewWebSocketClient(conn, Limits{IdleTimeout: 5 * time.Second})
	line, err := client.ReadLine()
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if line != "valid message" {
		t.Errorf("Expected 'valid message', got '%s'", line)
	}
}

// TestWebSocketClient_ReadLine_MultiLineMessage tests that multi-line messages
// are split and buffered correctly.
func TestWebSocketClient_ReadLine_MultiLineMessage(t *testing.T) {
	upgrader := websocket.Upgrader{}
	done := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte("heal ben\n  \ngive ben torch\r\nplayers"))
		<-done
	}))
	defer server.Close()
	defer close(done)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, ""), nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	client := NewWebSocketClient(conn, Limits{})
	for _, want := range []string{"heal ben", "give ben torch", "players"} {
		line, err := client.ReadLine()
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if line != want {
			t.Errorf("Expected %q, got %q", want, line)
		}
	}
}

func TestWebSocketSession(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := newTestServer(t, nil)
	defer s.Shutdown()
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	read := func() string {
		t.Helper()
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		return string(msg)
	}
	send := func(text string) {
		t.Helper()
		if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if got := read(); got != "Password: " {
		t.Fatalf("prompt = %q", got)
	}
	send(testPassword)
	if got := read(); got != banner {
		t.Fatalf("banner = %q", got)
	}

	send("ping\nping")
	for i := 0; i < 2; i++ {
		if got := read(); got != "pong" {
			t.Errorf("reply %d = %q", i, got)
		}
	}

	send("exit")
	if got := read(); got != "Goodbye." {
		t.Errorf("exit reply = %q", got)
	}
}

func TestWebSocketOriginCheck(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Remote.AllowedOrigins = []string{"https://admin.example.com"}
	})
	defer s.Shutdown()
	server := httptest.NewServer(s.Handler())
	defer server.Close()

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(server, "/ws"), header)
	if err == nil {
		conn.Close()
		t.Fatal("dial with a foreign origin should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("response = %v, want 403", resp)
	}

	header.Set("Origin", "https://admin.example.com")
	conn, _, err = websocket.DefaultDialer.Dial(wsURL(server, "/ws"), header)
	if err != nil {
		t.Fatalf("dial with an allowed origin: %v", err)
	}
	conn.Close()
}
