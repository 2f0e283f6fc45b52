// Package antispam throttles remote console sessions that submit lines faster
// than an operator could type them.
package antispam

import (
	"strings"
	"sync"
	"time"
)

// Config holds anti-spam configuration.
type Config struct {
	Enabled  bool
	MaxLines int           // lines allowed per Window
	Window   time.Duration // sliding window for MaxLines

	// RepeatCooldown rejects an identical line resubmitted within this
	// period. Zero disables repeat detection.
	RepeatCooldown time.Duration
}

// DefaultConfig returns the limits applied when none are configured.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		MaxLines: 20,
		Window:   10 * time.Second,
	}
}

// ConfigFromYAML builds a Config from the seconds-based values in the YAML
// config, keeping defaults for non-positive values.
func ConfigFromYAML(enabled bool, maxLines, windowSeconds, repeatSeconds int) Config {
	cfg := DefaultConfig()
	cfg.Enabled = enabled
	if maxLines > 0 {
		cfg.MaxLines = maxLines
	}
	if windowSeconds > 0 {
		cfg.Window = time.Duration(windowSeconds) * time.Second
	}
	if repeatSeconds > 0 {
		cfg.RepeatCooldown = time.Duration(repeatSeconds) * time.Second
	}
	return cfg
}

// Tracker tracks the submissions of one remote session.
type Tracker struct {
	mu        sync.Mutex
	config    Config
	lineTimes []time.Time
	lastLines map[string]time.Time
	now       func() time.Time
}

// NewTracker creates a tracker with the given config.
func NewTracker(config Config) *Tracker {
	return &Tracker{
		config:    config,
		lineTimes: make([]time.Time, 0, max(config.MaxLines, 0)),
		lastLines: make(map[string]time.Time),
		now:       time.Now,
	}
}

// CheckResult reports whether a line may be submitted.
type CheckResult struct {
	Allowed bool
	Reason  string
	Wait    time.Duration
}

// WaitSeconds rounds Wait up to whole seconds for display.
func (r CheckResult) WaitSeconds() int {
	if r.Wait <= 0 {
		return 0
	}
	return int((r.Wait + time.Second - 1) / time.Second)
}

// Check records line and reports whether it is allowed. Rejected lines are
// not recorded.
func (t *Tracker) Check(line string) CheckResult {
	if !t.config.Enabled {
		return CheckResult{Allowed: true}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.cleanup(now)

	key := strings.ToLower(strings.TrimSpace(line))
	if t.config.RepeatCooldown > 0 {
		if last, ok := t.lastLines[key]; ok {
			if elapsed := now.Sub(last); elapsed < t.config.RepeatCooldown {
				return CheckResult{
					Reason: "Please don't repeat the same command so quickly.",
					Wait:   t.config.RepeatCooldown - elapsed,
				}
			}
		}
	}

	if t.config.MaxLines > 0 && len(t.lineTimes) >= t.config.MaxLines {
		return CheckResult{
			Reason: "You're sending commands too quickly. Please slow down.",
			Wait:   t.lineTimes[0].Add(t.config.Window).Sub(now),
		}
	}

	t.lineTimes = append(t.lineTimes, now)
	if t.config.RepeatCooldown > 0 {
		t.lastLines[key] = now
	}
	return CheckResult{Allowed: true}
}

func (t *Tracker) cleanup(now time.Time) {
	cutoff := now.Add(-t.config.Window)
	kept := t.lineTimes[:0]
	for _, at := range t.lineTimes {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	t.lineTimes = kept

	repeatCutoff := now.Add(-t.config.RepeatCooldown)
	for line, at := range t.lastLines {
		if !at.After(repeatCutoff) {
			delete(t.lastLines, line)
		}
	}
}

// Reset clears all tracking data.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lineTimes = t.lineTimes[:0]
	t.lastLines = make(map[string]time.Time)
}
