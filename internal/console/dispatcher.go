package console

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lawnchairsociety/gameconsole/internal/logger"
)

// maxDepth bounds handlers that run other commands through Invocation.Exec.
const maxDepth = 8

var errTooDeep = errors.New("command nesting too deep")

// Dispatcher turns raw lines into handler calls. It is not safe for
// concurrent use; the host runs every dispatch on one goroutine.
type Dispatcher struct {
	registry  *Registry
	coercer   *Coercer
	tokenizer Tokenizer
	depth     int
}

// NewDispatcher wires a dispatcher over registry and coercer.
func NewDispatcher(registry *Registry, coercer *Coercer, tokenizer Tokenizer) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		coercer:   coercer,
		tokenizer: tokenizer,
	}
}

// Registry returns the command registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Tokenizer returns the tokenizer in use.
func (d *Dispatcher) Tokenizer() Tokenizer { return d.tokenizer }

// Dispatch runs every chained sub-command of line in order and returns one
// outcome per sub-command. A failing sub-command does not stop the rest.
func (d *Dispatcher) Dispatch(source, line string) []Outcome {
	if d.depth > 0 {
		return []Outcome{d.exec(source, line)}
	}

	subs := d.tokenizer.SplitChain(line)
	outcomes := make([]Outcome, 0, len(subs))
	for _, sub := range subs {
		outcomes = append(outcomes, d.exec(source, sub))
	}
	return outcomes
}

// Exec runs one sub-command without chain splitting.
func (d *Dispatcher) Exec(source, sub string) Outcome {
	return d.exec(source, sub)
}

func (d *Dispatcher) exec(source, sub string) Outcome {
	tokens := d.tokenizer.Tokenize(sub)
	if len(tokens) == 0 {
		return succeeded("", sub, "")
	}

	name := tokens[0]
	cmd, ok := d.registry.Lookup(name)
	if !ok {
		return failed(CommandNotFound, name, sub, &CommandNotFoundError{
			Name:        name,
			Suggestions: suggest(name, d.registry.Names()),
		})
	}

	argTokens := tokens[1:]
	if len(argTokens) < cmd.Required() || (cmd.MaxArgs() >= 0 && len(argTokens) > cmd.MaxArgs()) {
		return failed(ArityMismatch, cmd.Name, sub, &ArityError{
			Command: cmd.Name,
			Min:     cmd.Required(),
			Max:     cmd.MaxArgs(),
			Got:     len(argTokens),
			Usage:   cmd.Usage(),
		})
	}

	args, argErr := d.bind(cmd, argTokens)
	if argErr != nil {
		return failed(ArgumentFailed, cmd.Name, sub, argErr)
	}

	if d.depth >= maxDepth {
		return failed(HandlerFailed, cmd.Name, sub, &HandlerError{Command: cmd.Name, Err: errTooDeep})
	}

	inv := &Invocation{Command: cmd, Source: source, Tokens: argTokens, dispatcher: d}
	output, err := d.invoke(inv, args)
	if err != nil {
		logger.Debug("Command failed", "command", cmd.Name, "source", source, "error", err)
		return failed(HandlerFailed, cmd.Name, sub, &HandlerError{Command: cmd.Name, Err: err})
	}
	return succeeded(cmd.Name, sub, output)
}

// bind coerces tokens to the command's parameters, stopping at the first
// failure.
func (d *Dispatcher) bind(cmd *Command, tokens []string) (Args, *ArgumentError) {
	args := Args{
		params:   cmd.Params,
		values:   make([]any, len(cmd.Params)),
		provided: make([]bool, len(cmd.Params)),
	}

	for i, p := range cmd.Params {
		if i >= len(tokens) {
			args.values[i] = p.Default
			continue
		}

		token := tokens[i]
		if p.Rest {
			token = strings.Join(tokens[i:], " ")
		}

		res := d.coercer.Coerce(token, p.Kind)
		if res.Failed() {
			return Args{}, &ArgumentError{
				Command: cmd.Name,
				Index:   i,
				Param:   p.Name,
				Token:   token,
				Reason:  res.Reason(),
				Err:     res.Err(),
			}
		}
		args.values[i] = res.Value()
		args.provided[i] = true
	}
	return args, nil
}

// invoke calls the handler, converting panics into errors so one broken
// command cannot take the console down.
func (d *Dispatcher) invoke(inv *Invocation, args Args) (output string, err error) {
	d.depth++
	defer func() {
		d.depth--
		if rec := recover(); rec != nil {
			logger.Error("Command handler panicked", "command", inv.Command.Name, "panic", fmt.Sprint(rec))
			err = fmt.Errorf("internal error: %v", rec)
		}
	}()
	return inv.Command.Handler(inv, args)
}
