package console

import (
	"strings"
	"unicode"
)

const (
	// DefaultChainDelimiter separates chained sub-commands on one input line.
	DefaultChainDelimiter = ';'

	// DefaultEscape makes the following delimiter (or quote) literal.
	DefaultEscape = '\\'

	quoteRune = '"'
)

// segment is one piece of a split line. quoted is set when any part of the
// segment came from a quoted run, so that "" survives as an empty argument.
type segment struct {
	text   string
	quoted bool
}

// scanner holds the rules for a single split pass. The same routine serves
// both chain splitting and argument tokenizing.
type scanner struct {
	isDelim func(rune) bool
	escape  rune
	quotes  bool
}

func (s scanner) split(line string) []segment {
	var (
		segments []segment
		current  strings.Builder
		quoted   bool
		inQuotes bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == s.escape && i+1 < len(runes) && s.escapes(runes[i+1]) {
			current.WriteRune(runes[i+1])
			i++
			continue
		}

		if s.quotes && r == quoteRune {
			inQuotes = !inQuotes
			quoted = true
			continue
		}

		if !inQuotes && s.isDelim(r) {
			segments = append(segments, segment{text: current.String(), quoted: quoted})
			current.Reset()
			quoted = false
			continue
		}

		current.WriteRune(r)
	}

	return append(segments, segment{text: current.String(), quoted: quoted})
}

// escapes reports whether the escape character applies to next.
func (s scanner) escapes(next rune) bool {
	if s.isDelim(next) {
		return true
	}
	return s.quotes && (next == quoteRune || next == s.escape)
}

// Split splits line on every delimiter not immediately preceded by escape.
// Escaped delimiters are kept as literal characters with the escape removed.
// Adjacent delimiters produce empty segments; callers filter if needed.
func Split(line string, delimiter, escape rune) []string {
	sc := scanner{
		isDelim: func(r rune) bool { return r == delimiter },
		escape:  escape,
	}
	segments := sc.split(line)
	out := make([]string, len(segments))
	for i, seg := range segments {
		out[i] = seg.text
	}
	return out
}

// Tokenizer turns raw console input into sub-commands and argument tokens.
type Tokenizer struct {
	Delimiter rune
	Escape    rune
}

// NewTokenizer returns a Tokenizer using ';' and '\'.
func NewTokenizer() Tokenizer {
	return Tokenizer{Delimiter: DefaultChainDelimiter, Escape: DefaultEscape}
}

// SplitChain splits a line into chained sub-commands. Quotes are not honored
// at this level. Blank sub-commands are dropped.
func (t Tokenizer) SplitChain(line string) []string {
	var subs []string
	for _, part := range Split(line, t.delimiter(), t.escape()) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		subs = append(subs, part)
	}
	return subs
}

// Tokenize splits a single sub-command into whitespace separated tokens.
// Double-quoted runs form one token including their whitespace.
func (t Tokenizer) Tokenize(sub string) []string {
	sc := scanner{
		isDelim: unicode.IsSpace,
		escape:  t.escape(),
		quotes:  true,
	}

	var tokens []string
	for _, seg := range sc.split(sub) {
		if seg.text == "" && !seg.quoted {
			continue
		}
		tokens = append(tokens, seg.text)
	}
	return tokens
}

func (t Tokenizer) delimiter() rune {
	if t.Delimiter == 0 {
		return DefaultChainDelimiter
	}
	return t.Delimiter
}

func (t Tokenizer) escape() rune {
	if t.Escape == 0 {
		return DefaultEscape
	}
	return t.Escape
}
