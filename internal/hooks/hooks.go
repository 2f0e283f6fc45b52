// Package hooks exposes the host's behavior extension points as predicate
// registrations. Gameplay overrides register rules here; the console core
// never calls into this package.
package hooks

import (
	"github.com/lawnchairsociety/gameconsole/internal/entity"
)

// Decision is a rule's verdict on one query.
type Decision int

const (
	// Pass leaves the decision to later rules or the host default.
	Pass Decision = iota
	Allow
	Deny
)

// Rule inspects a query and decides or passes.
type Rule[Q any] func(q Q) Decision

// Point is one extension point. Rules run in registration order and the
// first non-Pass decision wins; with none, the host default applies.
type Point[Q any] struct {
	rules    []Rule[Q]
	fallback func(q Q) bool
}

// NewPoint returns a point whose default verdict is fallback.
func NewPoint[Q any](fallback func(q Q) bool) *Point[Q] {
	return &Point[Q]{fallback: fallback}
}

// Register adds a rule.
func (p *Point[Q]) Register(rule Rule[Q]) {
	p.rules = append(p.rules, rule)
}

// Allowed evaluates q.
func (p *Point[Q]) Allowed(q Q) bool {
	for _, rule := range p.rules {
		switch rule(q) {
		case Allow:
			return true
		case Deny:
			return false
		}
	}
	if p.fallback == nil {
		return true
	}
	return p.fallback(q)
}

// Placement asks whether Player may put a block at Pos.
type Placement struct {
	Player *entity.Player
	Pos    entity.BlockPos
}

// StaminaUse asks whether Player must pay Cost stamina. Allowed means the
// action is free.
type StaminaUse struct {
	Player *entity.Player
	Cost   int
}

// Support asks whether a block at Pos would be held up.
type Support struct {
	Pos entity.BlockPos
}

// Cursor asks whether the mouse cursor should be free. ConsoleVisible is
// the console state at the time of the query.
type Cursor struct {
	ConsoleVisible bool
}

// Points is the set of extension points a host exposes.
type Points struct {
	Placement *Point[Placement]
	Stamina   *Point[StaminaUse]
	Support   *Point[Support]
	Cursor    *Point[Cursor]

	cursorListeners []func(free bool)
}

// OnCursorChange registers fn to receive the cursor state whenever it is
// re-evaluated.
func (p *Points) OnCursorChange(fn func(free bool)) {
	p.cursorListeners = append(p.cursorListeners, fn)
}

// RefreshCursor evaluates the cursor point and notifies listeners.
func (p *Points) RefreshCursor(consoleVisible bool) bool {
	free := p.Cursor.Allowed(Cursor{ConsoleVisible: consoleVisible})
	for _, fn := range p.cursorListeners {
		fn(free)
	}
	return free
}
