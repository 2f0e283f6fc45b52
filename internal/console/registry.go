package console

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Param describes one positional command parameter.
type Param struct {
	Name        string
	Kind        Kind
	Optional    bool
	Default     any
	Description string

	// Rest makes the last text parameter absorb every remaining token,
	// joined by single spaces.
	Rest bool
}

// Handler runs a command with its coerced arguments. The returned text, if
// any, is shown on the console.
type Handler func(inv *Invocation, args Args) (string, error)

// Command is a registered command descriptor.
type Command struct {
	Name     string
	Aliases  []string
	Summary  string
	Params   []Param
	Handler  Handler
	Hidden   bool
	required int
	variadic bool
}

// Required returns the number of required parameters.
func (c *Command) Required() int { return c.required }

// MaxArgs returns the largest accepted token count, or -1 if unbounded.
func (c *Command) MaxArgs() int {
	if c.variadic {
		return -1
	}
	return len(c.Params)
}

// Usage renders the command synopsis, e.g. "give <player> <item> [count]".
func (c *Command) Usage() string {
	var b strings.Builder
	b.WriteString(c.Name)
	for _, p := range c.Params {
		name := p.Name
		if p.Rest {
			name += "..."
		}
		if p.Optional {
			fmt.Fprintf(&b, " [%s]", name)
		} else {
			fmt.Fprintf(&b, " <%s>", name)
		}
	}
	return b.String()
}

// Option configures a command at registration.
type Option func(*Command)

// WithSummary sets the one-line help text.
func WithSummary(summary string) Option {
	return func(c *Command) { c.Summary = summary }
}

// WithAliases adds alternative names.
func WithAliases(aliases ...string) Option {
	return func(c *Command) { c.Aliases = append(c.Aliases, aliases...) }
}

// Hidden keeps the command out of listings.
func Hidden() Option {
	return func(c *Command) { c.Hidden = true }
}

// Registry maps normalized command names and aliases to descriptors.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
	aliases  map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// Register adds a command. Names and aliases are matched case-insensitively
// and must be unique across the registry.
func (r *Registry) Register(name string, params []Param, handler Handler, opts ...Option) error {
	cmd := &Command{
		Name:    normalizeCommandName(name),
		Params:  append([]Param(nil), params...),
		Handler: handler,
	}
	for _, opt := range opts {
		opt(cmd)
	}

	if err := validate(cmd); err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	keys := []string{cmd.Name}
	for i, alias := range cmd.Aliases {
		cmd.Aliases[i] = normalizeCommandName(alias)
		keys = append(keys, cmd.Aliases[i])
	}
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key == "" {
			return fmt.Errorf("register %q: %w", name, ErrEmptyName)
		}
		if seen[key] || r.taken(key) {
			return fmt.Errorf("register %q: %s: %w", name, key, ErrDuplicateCommand)
		}
		seen[key] = true
	}

	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd.Name
	}
	return nil
}

// MustRegister is Register for startup code; it panics on error.
func (r *Registry) MustRegister(name string, params []Param, handler Handler, opts ...Option) {
	if err := r.Register(name, params, handler, opts...); err != nil {
		panic(err)
	}
}

// Unregister removes a command and its aliases. It reports whether the
// command existed.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeCommandName(name)
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	cmd, ok := r.commands[key]
	if !ok {
		return false
	}
	for _, alias := range cmd.Aliases {
		delete(r.aliases, alias)
	}
	delete(r.commands, key)
	return true
}

// Lookup finds a command by name or alias, case-insensitively.
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := normalizeCommandName(name)
	if canonical, ok := r.aliases[key]; ok {
		key = canonical
	}
	cmd, ok := r.commands[key]
	return cmd, ok
}

// Commands returns the registered commands sorted by name.
func (r *Registry) Commands(includeHidden bool) []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		if cmd.Hidden && !includeHidden {
			continue
		}
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// Names returns every visible name and alias, sorted.
func (r *Registry) Names() []string {
	var names []string
	for _, cmd := range r.Commands(false) {
		names = append(names, cmd.Name)
		names = append(names, cmd.Aliases...)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) taken(key string) bool {
	if _, ok := r.commands[key]; ok {
		return true
	}
	_, ok := r.aliases[key]
	return ok
}

// validate enforces the descriptor invariants and caches arity bounds.
func validate(cmd *Command) error {
	if cmd.Name == "" {
		return ErrEmptyName
	}
	if cmd.Handler == nil {
		return ErrNilHandler
	}

	seenOptional := false
	for i, p := range cmd.Params {
		if p.Rest && (i != len(cmd.Params)-1 || p.Kind != KindText) {
			return fmt.Errorf("%s: %w", p.Name, ErrInvalidRest)
		}
		if p.Optional {
			seenOptional = true
			continue
		}
		if seenOptional {
			return fmt.Errorf("%s: %w", p.Name, ErrRequiredAfterOpt)
		}
		cmd.required++
	}
	if n := len(cmd.Params); n > 0 && cmd.Params[n-1].Rest {
		cmd.variadic = true
	}
	return nil
}

func normalizeCommandName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
