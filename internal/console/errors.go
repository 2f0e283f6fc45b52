package console

import (
	"errors"
	"fmt"
	"strings"
)

// Entity lookup failures. Argument errors produced by entity parameters wrap
// one of these so callers can use errors.Is.
var (
	ErrEntityNotFound  = errors.New("no match")
	ErrEntityAmbiguous = errors.New("multiple matches")
)

// Registration errors.
var (
	ErrEmptyName        = errors.New("command name is empty")
	ErrNilHandler       = errors.New("command handler is nil")
	ErrDuplicateCommand = errors.New("command already registered")
	ErrRequiredAfterOpt = errors.New("required parameter follows an optional one")
	ErrInvalidRest      = errors.New("rest parameter must be the last text parameter")
)

// CommandNotFoundError is returned for input naming no registered command.
type CommandNotFoundError struct {
	Name        string
	Suggestions []string
}

func (e *CommandNotFoundError) Error() string {
	msg := fmt.Sprintf("unknown command %q", e.Name)
	if len(e.Suggestions) > 0 {
		msg += ", did you mean " + strings.Join(e.Suggestions, ", ") + "?"
	}
	return msg
}

// ArityError reports a token count outside the command's parameter range.
// Max is -1 when the command accepts any number of trailing tokens.
type ArityError struct {
	Command string
	Min     int
	Max     int
	Got     int
	Usage   string
}

func (e *ArityError) Error() string {
	var want string
	switch {
	case e.Max < 0:
		want = fmt.Sprintf("at least %d", e.Min)
	case e.Min == e.Max:
		want = fmt.Sprintf("%d", e.Min)
	default:
		want = fmt.Sprintf("%d to %d", e.Min, e.Max)
	}
	return fmt.Sprintf("%s: expected %s argument%s, got %d (usage: %s)",
		e.Command, want, plural(e.Max, e.Min), e.Got, e.Usage)
}

// ArgumentError reports the first argument that failed coercion. Index is
// zero-based; the rendered message uses the 1-based position.
type ArgumentError struct {
	Command string
	Index   int
	Param   string
	Token   string
	Reason  string
	Err     error
}

func (e *ArgumentError) Error() string {
	msg := fmt.Sprintf("%s: argument %d (%s): %s", e.Command, e.Index+1, e.Param, e.Reason)
	if e.Err != nil {
		msg += fmt.Sprintf(" for %q", e.Token)
	}
	return msg
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// HandlerError wraps a failure returned (or panicked) by a command handler.
type HandlerError struct {
	Command string
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

func plural(max, min int) string {
	if max == 1 || (max < 0 && min == 1) {
		return ""
	}
	return "s"
}
