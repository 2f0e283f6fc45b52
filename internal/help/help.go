// Package help provides extended help text loaded from YAML, shown by the
// console's help command next to the generated usage line.
package help

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Topic represents a single help topic with aliases and text.
type Topic struct {
	Aliases []string `yaml:"aliases"`
	Text    string   `yaml:"text"`
}

// Data represents the structure of a help YAML file.
type Data struct {
	Topics      map[string]Topic `yaml:"topics"`
	GeneralHelp string           `yaml:"general_help"`
}

// Help provides help text lookup. It is immutable after loading.
type Help struct {
	data        Data
	aliasLookup map[string]string // alias -> topic name
}

// Load reads help data from a YAML file.
func Load(path string) (*Help, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read help file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Help from YAML bytes.
func Parse(raw []byte) (*Help, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse help file: %w", err)
	}

	h := &Help{
		data:        data,
		aliasLookup: make(map[string]string),
	}
	for name, topic := range data.Topics {
		h.aliasLookup[strings.ToLower(name)] = name
		for _, alias := range topic.Aliases {
			h.aliasLookup[strings.ToLower(alias)] = name
		}
	}
	return h, nil
}

// Default returns the help topics compiled into the binary.
func Default() *Help {
	h, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return h
}

// Topic returns help text for a topic name or alias, case-insensitively.
func (h *Help) Topic(topic string) (string, bool) {
	if h == nil {
		return "", false
	}
	name, ok := h.aliasLookup[strings.ToLower(strings.TrimSpace(topic))]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(h.data.Topics[name].Text), true
}

// General returns the text shown above the command list.
func (h *Help) General() string {
	if h == nil {
		return ""
	}
	return strings.TrimSpace(h.data.GeneralHelp)
}

// Topics returns the topic names, sorted.
func (h *Help) Topics() []string {
	if h == nil {
		return nil
	}
	names := make([]string, 0, len(h.data.Topics))
	for name := range h.data.Topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
