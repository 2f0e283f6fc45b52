// Package testclient drives a remote console session over telnet for
// integration checks.
package testclient

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// Banner is the first line the server sends after a successful login.
const Banner = "Game console - type 'help' for commands"

// TestClient is one telnet connection to a remote console.
type TestClient struct {
	Name     string
	conn     net.Conn
	reader   *bufio.Reader
	writer   *bufio.Writer
	messages []string
	mu       sync.Mutex
	writeMu  sync.Mutex
	closed   chan struct{}
	once     sync.Once
}

// newClientConnection connects without logging in.
func newClientConnection(address string) (*TestClient, error) {
	conn, err := net.DialTimeout("tcp", address, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	client := &TestClient{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
		closed: make(chan struct{}),
	}

	// Start reading messages in background
	go client.readMessages()

	return client, nil
}

// NewTestClient connects and logs in with password. It fails unless the
// banner arrives within two seconds.
func NewTestClient(name, address, password string) (*TestClient, error) {
	client, err := newClientConnection(address)
	if err != nil {
		return nil, err
	}
	client.Name = name

	if err := client.SendCommand(password); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to send password: %w", err)
	}

	if !client.WaitForMessage(Banner, 2*time.Second) {
		messages := client.GetMessages()
		client.Close()
		return nil, fmt.Errorf("login failed, messages: %v", messages)
	}
	client.ClearMessages()
	return client, nil
}

// NewTestClientRaw connects without logging in. Use this for testing the
// login flow itself.
func NewTestClientRaw(address string) (*TestClient, error) {
	client, err := newClientConnection(address)
	if err != nil {
		return nil, err
	}
	client.Name = "RawClient"
	return client, nil
}

// readMessages collects lines until the connection ends. Prompts without a
// line ending are joined to the next line.
func (c *TestClient) readMessages() {
	defer close(c.closed)
	for {
		line, err := c.reader.ReadString('\n')
		if line = strings.TrimRight(line, "\r\n"); line != "" {
			c.mu.Lock()
			c.messages = append(c.messages, line)
			c.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// SendCommand sends one input line.
func (c *TestClient) SendCommand(cmd string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if _, err := c.writer.WriteString(cmd + "\r\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}

// GetMessages returns all messages received so far
func (c *TestClient) GetMessages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]string, len(c.messages))
	copy(result, c.messages)
	return result
}

// GetLastMessages returns the last N messages
func (c *TestClient) GetLastMessages(n int) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	n = min(n, len(c.messages))
	result := make([]string, n)
	copy(result, c.messages[len(c.messages)-n:])
	return result
}

// GetLastMessage returns the most recent message
func (c *TestClient) GetLastMessage() string {
	if messages := c.GetLastMessages(1); len(messages) > 0 {
		return messages[0]
	}
	return ""
}

// ClearMessages clears the message buffer
func (c *TestClient) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// WaitForMessage waits for a message containing the specified text (with timeout)
func (c *TestClient) WaitForMessage(text string, timeout time.Duration) bool {
	_, ok := c.WaitForAnyMessage([]string{text}, timeout)
	return ok
}

// WaitForAnyMessage waits for any of the specified texts (with timeout)
func (c *TestClient) WaitForAnyMessage(texts []string, timeout time.Duration) (string, bool) {
	deadline := time.After(timeout)
	last := false

	for {
		for _, msg := range c.GetMessages() {
			for _, text := range texts {
				if strings.Contains(msg, text) {
					return text, true
				}
			}
		}
		if last {
			return "", false
		}
		select {
		case <-c.closed:
			// Nothing more will arrive; check once more.
			last = true
		case <-deadline:
			last = true
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// HasMessage checks if any message contains the specified text
func (c *TestClient) HasMessage(text string) bool {
	for _, msg := range c.GetMessages() {
		if strings.Contains(msg, text) {
			return true
		}
	}
	return false
}

// WaitForClose reports whether the server closed the connection within timeout.
func (c *TestClient) WaitForClose(timeout time.Duration) bool {
	select {
	case <-c.closed:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Close closes the connection and waits for the reader to stop.
func (c *TestClient) Close() error {
	var err error
	c.once.Do(func() {
		err = c.conn.Close()
		<-c.closed
	})
	return err
}

// PrintMessages prints all messages (for debugging)
func (c *TestClient) PrintMessages() {
	fmt.Printf("\n=== Messages for %s ===\n", c.Name)
	for i, msg := range c.GetMessages() {
		fmt.Printf("[%d] %s\n", i, msg)
	}
	fmt.Println("======================")
}
