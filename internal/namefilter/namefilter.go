// Package namefilter rejects player names that are banned or that the
// console could not target unambiguously.
package namefilter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

var (
	// ErrBanned is returned for names matching a banned name or word.
	ErrBanned = errors.New("name is not allowed")

	// ErrNumeric is returned for names that parse as a player ID.
	ErrNumeric = errors.New("name cannot be a number")
)

// Config holds the name filter configuration
type Config struct {
	Enabled     bool     `yaml:"enabled"`
	BannedWords []string `yaml:"banned_words"`
	BannedNames []string `yaml:"banned_names"`
}

// NameFilter validates names against banned words and names. Matching is
// case-folded and ignores whitespace.
type NameFilter struct {
	enabled     bool
	bannedWords []string // partial match
	bannedNames []string // exact match
}

// New creates a NameFilter from cfg. A nil cfg disables banning but numeric
// names are still rejected.
func New(cfg *Config) *NameFilter {
	nf := &NameFilter{}
	if cfg == nil {
		return nf
	}

	nf.enabled = cfg.Enabled
	for _, word := range cfg.BannedWords {
		if w := fold(word); w != "" {
			nf.bannedWords = append(nf.bannedWords, w)
		}
	}
	for _, name := range cfg.BannedNames {
		if n := fold(name); n != "" {
			nf.bannedNames = append(nf.bannedNames, n)
		}
	}
	return nf
}

// Check returns nil if name may be used.
func (nf *NameFilter) Check(name string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(name), 10, 64); err == nil {
		return fmt.Errorf("%q: %w", name, ErrNumeric)
	}
	if nf == nil || !nf.enabled {
		return nil
	}

	folded := fold(name)
	for _, banned := range nf.bannedNames {
		if folded == banned {
			return fmt.Errorf("%q: %w", name, ErrBanned)
		}
	}
	for _, word := range nf.bannedWords {
		if strings.Contains(folded, word) {
			return fmt.Errorf("%q contains %q: %w", name, word, ErrBanned)
		}
	}
	return nil
}

// IsEnabled returns whether banning is enabled
func (nf *NameFilter) IsEnabled() bool {
	return nf != nil && nf.enabled
}

// fold case-folds s and drops all whitespace so "A d m i n" matches "admin".
func fold(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(s)), "")
}
