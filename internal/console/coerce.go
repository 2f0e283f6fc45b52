package console

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind is the semantic type tag of a command parameter.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDecimal
	KindBoolean
	KindEntity
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindEntity:
		return "player"
	case KindDuration:
		return "duration"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of converting one token: either a value or a
// failure reason, never both.
type Result struct {
	value  any
	reason string
	err    error
	failed bool
}

// Value wraps a successful conversion.
func Value(v any) Result { return Result{value: v} }

// Failure wraps a failed conversion.
func Failure(reason string) Result { return Result{reason: reason, failed: true} }

// FailureErr wraps a failed conversion that carries a matchable error.
func FailureErr(err error) Result { return Result{reason: err.Error(), err: err, failed: true} }

// Failed reports whether the conversion failed.
func (r Result) Failed() bool { return r.failed }

// Value returns the converted value (nil on failure).
func (r Result) Value() any { return r.value }

// Reason returns the human-readable failure reason.
func (r Result) Reason() string { return r.reason }

// Err returns the underlying error of a failure, if one was recorded.
func (r Result) Err() error { return r.err }

// Converter turns a token into a value of one kind.
type Converter func(token string) Result

// Coercer maps kinds to converters. Entity parameters go through the
// resolver; everything else through the converter table.
type Coercer struct {
	converters map[Kind]Converter
	resolver   *Resolver
}

// NewCoercer returns a Coercer with the builtin kinds registered. resolver
// may be nil, in which case entity parameters never match.
func NewCoercer(resolver *Resolver) *Coercer {
	c := &Coercer{
		converters: make(map[Kind]Converter),
		resolver:   resolver,
	}
	c.Register(KindText, coerceText)
	c.Register(KindNumber, coerceNumber)
	c.Register(KindDecimal, coerceDecimal)
	c.Register(KindBoolean, coerceBoolean)
	c.Register(KindDuration, coerceDuration)
	c.Register(KindEntity, c.coerceEntity)
	return c
}

// Register installs or replaces the converter for kind.
func (c *Coercer) Register(kind Kind, fn Converter) {
	c.converters[kind] = fn
}

// Coerce converts token to kind. Unregistered kinds fall back to a best
// effort literal conversion.
func (c *Coercer) Coerce(token string, kind Kind) Result {
	if fn, ok := c.converters[kind]; ok {
		return fn(token)
	}
	return coerceLiteral(token)
}

func coerceText(token string) Result {
	return Value(token)
}

func coerceNumber(token string) Result {
	n, err := strconv.Atoi(token)
	if err != nil {
		return Failure(fmt.Sprintf("%q is not a valid %s", token, KindNumber))
	}
	return Value(n)
}

func coerceDecimal(token string) Result {
	f, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Failure(fmt.Sprintf("%q is not a valid %s", token, KindDecimal))
	}
	return Value(f)
}

// coerceBoolean never fails: "true", "1" and "yes" (any case) are true and
// every other token is false.
func coerceBoolean(token string) Result {
	switch strings.ToLower(token) {
	case "true", "1", "yes":
		return Value(true)
	default:
		return Value(false)
	}
}

func coerceDuration(token string) Result {
	d, err := time.ParseDuration(token)
	if err != nil {
		return Failure(fmt.Sprintf("%q is not a valid %s", token, KindDuration))
	}
	return Value(d)
}

func (c *Coercer) coerceEntity(token string) Result {
	if c.resolver == nil {
		return FailureErr(ErrEntityNotFound)
	}

	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		if res := c.resolver.ResolveByID(id); res.State == Found {
			return Value(res.Entity)
		}
	}

	res := c.resolver.Resolve(token)
	switch res.State {
	case Found:
		return Value(res.Entity)
	case Ambiguous:
		return FailureErr(ErrEntityAmbiguous)
	default:
		return FailureErr(ErrEntityNotFound)
	}
}

// coerceLiteral is the fallback for kinds with no converter: integers, then
// floats, then any JSON literal.
func coerceLiteral(token string) Result {
	if n, err := strconv.Atoi(token); err == nil {
		return Value(n)
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil {
		return Value(f)
	}
	var v any
	if err := json.Unmarshal([]byte(token), &v); err != nil {
		return Failure(err.Error())
	}
	return Value(v)
}
