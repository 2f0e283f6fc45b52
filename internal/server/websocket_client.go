package server

import (
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// WebSocketClient wraps a WebSocket connection for browser-based consoles.
type WebSocketClient struct {
	conn    *websocket.Conn
	limits  Limits
	readBuf []string // lines of a multi-line message not yet returned

	writeMu sync.Mutex
}

// NewWebSocketClient creates a new WebSocketClient from a WebSocket connection.
func NewWebSocketClient(conn *websocket.Conn, limits Limits) *WebSocketClient {
	conn.SetReadLimit(int64(limits.maxLine()))
	return &WebSocketClient{
		conn:   conn,
		limits: limits,
	}
}

// ReadLine reads a line from the WebSocket connection (blocking). A message
// carrying several lines is returned one line per call; blank lines are
// skipped.
func (c *WebSocketClient) ReadLine() (string, error) {
	for len(c.readBuf) == 0 {
		if err := c.conn.SetReadDeadline(c.limits.deadline()); err != nil {
			return "", err
		}
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(string(message), "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				c.readBuf = append(c.readBuf, trimmed)
			}
		}
	}

	line := c.readBuf[0]
	c.readBuf = c.readBuf[1:]
	return line, nil
}

// WriteLine sends message as one text message.
func (c *WebSocketClient) WriteLine(message string) error {
	return c.Write([]byte(strings.TrimRight(message, "\n")))
}

// Write sends data as one text message.
func (c *WebSocketClient) Write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close closes the WebSocket connection.
func (c *WebSocketClient) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the remote address as a string.
func (c *WebSocketClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
