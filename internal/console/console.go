// Package console implements the in-game command console: tokenizing input,
// resolving typed arguments (including live players) and dispatching to
// registered command handlers.
package console

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/lawnchairsociety/gameconsole/internal/logger"
)

// DefaultScrollback is the number of lines kept while the console is hidden.
const DefaultScrollback = 200

// Output is the display surface the console writes to.
type Output interface {
	WriteLine(line string) error
}

// WriterOutput adapts an io.Writer to Output.
type WriterOutput struct {
	W io.Writer
}

// WriteLine writes line followed by a newline.
func (o WriterOutput) WriteLine(line string) error {
	_, err := fmt.Fprintln(o.W, line)
	return err
}

// Entry is one executed sub-command, handed to a Recorder.
type Entry struct {
	Source  string
	Command string
	Input   string
	Status  Status
	Message string
}

// Recorder receives every executed sub-command, e.g. a history store.
type Recorder interface {
	Record(entry Entry) error
}

// Console is the façade the host talks to: it owns visibility and feeds
// submitted lines through the dispatcher.
type Console struct {
	dispatcher *Dispatcher
	out        Output
	recorder   Recorder
	scrollback int

	mu        sync.Mutex
	visible   bool
	pending   []string
	listeners []func(visible bool)
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithRecorder records every sub-command.
func WithRecorder(r Recorder) ConsoleOption {
	return func(c *Console) { c.recorder = r }
}

// WithScrollback bounds the hidden-output buffer.
func WithScrollback(lines int) ConsoleOption {
	return func(c *Console) {
		if lines > 0 {
			c.scrollback = lines
		}
	}
}

// StartVisible opens the console immediately.
func StartVisible() ConsoleOption {
	return func(c *Console) { c.visible = true }
}

// New returns a hidden console writing to out.
func New(d *Dispatcher, out Output, opts ...ConsoleOption) *Console {
	c := &Console{
		dispatcher: d,
		out:        out,
		scrollback: DefaultScrollback,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatcher returns the underlying dispatcher.
func (c *Console) Dispatcher() *Dispatcher { return c.dispatcher }

// Submit echoes line, dispatches it and prints each outcome.
func (c *Console) Submit(source, line string) []Outcome {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	c.Print("> " + line)
	outcomes := c.dispatcher.Dispatch(source, line)
	for _, o := range outcomes {
		if text := o.Line(); text != "" {
			c.Print(text)
		}
		c.record(source, o)
	}
	return outcomes
}

// Print writes text to the display, one line per newline. While hidden the
// lines are buffered and shown on the next Show.
func (c *Console) Print(text string) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")

	c.mu.Lock()
	if !c.visible {
		c.pending = append(c.pending, lines...)
		if over := len(c.pending) - c.scrollback; over > 0 {
			c.pending = c.pending[over:]
		}
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.write(lines)
}

// Clear drops buffered output.
func (c *Console) Clear() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}

// Visible reports whether the console is shown.
func (c *Console) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Show opens the console and flushes buffered output.
func (c *Console) Show() { c.setVisible(true) }

// Hide closes the console.
func (c *Console) Hide() { c.setVisible(false) }

// Toggle flips visibility and returns the new state.
func (c *Console) Toggle() bool {
	c.mu.Lock()
	next := !c.visible
	c.mu.Unlock()
	c.setVisible(next)
	return next
}

// OnVisibilityChange registers fn to run after every visibility change.
func (c *Console) OnVisibilityChange(fn func(visible bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Console) setVisible(visible bool) {
	c.mu.Lock()
	if c.visible == visible {
		c.mu.Unlock()
		return
	}
	c.visible = visible
	var flush []string
	if visible {
		flush, c.pending = c.pending, nil
	}
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	c.write(flush)
	for _, fn := range listeners {
		fn(visible)
	}
}

func (c *Console) write(lines []string) {
	if c.out == nil {
		return
	}
	for _, line := range lines {
		if err := c.out.WriteLine(line); err != nil {
			logger.Warning("Console output failed", "error", err)
			return
		}
	}
}

func (c *Console) record(source string, o Outcome) {
	logger.Audit("Console command", "source", source, "input", o.Input, "status", o.Status.String())
	if c.recorder == nil {
		return
	}
	entry := Entry{
		Source:  source,
		Command: o.Command,
		Input:   o.Input,
		Status:  o.Status,
		Message: o.Line(),
	}
	if err := c.recorder.Record(entry); err != nil {
		logger.Warning("Failed to record console command", "input", o.Input, "error", err)
	}
}
