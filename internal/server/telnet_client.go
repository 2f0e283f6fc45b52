package server

import (
	"bufio"
	"net"
	"strings"
)

// TelnetClient wraps a raw TCP connection for line-based communication.
type TelnetClient struct {
	conn    net.Conn
	scanner *bufio.Scanner
	writer  *bufio.Writer
	limits  Limits
}

// NewTelnetClient creates a new TelnetClient from a TCP connection.
func NewTelnetClient(conn net.Conn, limits Limits) *TelnetClient {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 256), limits.maxLine())
	return &TelnetClient{
		conn:    conn,
		scanner: scanner,
		writer:  bufio.NewWriter(conn),
		limits:  limits,
	}
}

// ReadLine reads a line from the connection (blocking), without the
// trailing CR/LF. It fails once the idle timeout passes with no input.
func (c *TelnetClient) ReadLine() (string, error) {
	if err := c.conn.SetReadDeadline(c.limits.deadline()); err != nil {
		return "", err
	}
	if c.scanner.Scan() {
		return strings.TrimRight(c.scanner.Text(), "\r"), nil
	}
	if err := c.scanner.Err(); err != nil {
		return "", err
	}
	// Scanner finished without error means EOF/connection closed
	return "", net.ErrClosed
}

// WriteLine writes message with CRLF line endings.
func (c *TelnetClient) WriteLine(message string) error {
	message = strings.ReplaceAll(strings.TrimRight(message, "\n"), "\n", "\r\n")
	if _, err := c.writer.WriteString(message + "\r\n"); err != nil {
		return err
	}
	return c.writer.Flush()
}

// Write writes raw bytes to the client.
func (c *TelnetClient) Write(data []byte) error {
	if _, err := c.writer.Write(data); err != nil {
		return err
	}
	return c.writer.Flush()
}

// Close closes the underlying connection.
func (c *TelnetClient) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the remote address as a string.
func (c *TelnetClient) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
