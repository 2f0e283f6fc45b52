package console

import (
	"fmt"
	"time"
)

// Args holds the coerced arguments of one invocation, addressable by
// parameter name.
type Args struct {
	params   []Param
	values   []any
	provided []bool
}

func (a Args) index(name string) int {
	for i, p := range a.params {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Len returns the number of parameters.
func (a Args) Len() int { return len(a.values) }

// Value returns the raw coerced value for name, or nil.
func (a Args) Value(name string) any {
	if i := a.index(name); i >= 0 {
		return a.values[i]
	}
	return nil
}

// Provided reports whether the caller supplied a token for name, as opposed
// to the default being applied.
func (a Args) Provided(name string) bool {
	if i := a.index(name); i >= 0 {
		return a.provided[i]
	}
	return false
}

// String returns a text argument.
func (a Args) String(name string) string {
	switch v := a.Value(name).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Int returns a number argument.
func (a Args) Int(name string) int {
	switch v := a.Value(name).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Float returns a decimal argument. Number values widen.
func (a Args) Float(name string) float64 {
	switch v := a.Value(name).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Bool returns a boolean argument.
func (a Args) Bool(name string) bool {
	v, _ := a.Value(name).(bool)
	return v
}

// Duration returns a duration argument.
func (a Args) Duration(name string) time.Duration {
	v, _ := a.Value(name).(time.Duration)
	return v
}

// Entity returns an entity argument, or nil.
func (a Args) Entity(name string) Entity {
	v, _ := a.Value(name).(Entity)
	return v
}

// Invocation carries per-call context into a handler.
type Invocation struct {
	Command *Command
	Source  string
	Tokens  []string

	dispatcher *Dispatcher
}

// Exec runs line as a single nested sub-command. It is never split on the
// chain delimiter again.
func (inv *Invocation) Exec(line string) Outcome {
	return inv.dispatcher.exec(inv.Source, line)
}

// Registry exposes the dispatcher's registry to handlers such as help.
func (inv *Invocation) Registry() *Registry {
	return inv.dispatcher.registry
}
