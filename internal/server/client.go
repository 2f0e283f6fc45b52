package server

import "time"

// Client abstracts the connection layer for both telnet and WebSocket
// sessions so the remote console handles both protocols the same way.
type Client interface {
	// ReadLine blocks until a complete line is received (without newline).
	ReadLine() (string, error)

	// WriteLine sends one line or a block of lines to the client.
	WriteLine(message string) error

	// Write sends raw text, e.g. a prompt, without a line terminator.
	Write(data []byte) error

	Close() error

	// RemoteAddr returns the client's address for logging.
	RemoteAddr() string
}

// Limits bound a single remote session.
type Limits struct {
	// IdleTimeout closes a session with no input for this long. 0 disables it.
	IdleTimeout time.Duration

	// MaxLineLength is the longest accepted input line, in bytes.
	MaxLineLength int
}

// DefaultMaxLineLength applies when Limits.MaxLineLength is not set.
const DefaultMaxLineLength = 4096

func (l Limits) maxLine() int {
	if l.MaxLineLength > 0 {
		return l.MaxLineLength
	}
	return DefaultMaxLineLength
}

func (l Limits) deadline() time.Time {
	if l.IdleTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(l.IdleTimeout)
}
