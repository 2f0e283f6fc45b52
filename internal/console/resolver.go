package console

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/lawnchairsociety/gameconsole/internal/logger"
)

// Entity is a live game object that commands can target by name or ID.
type Entity interface {
	EntityID() int64
	DisplayName() string
}

// EntitySource supplies a fresh snapshot of live entities on every call.
type EntitySource interface {
	Entities() ([]Entity, error)
}

// EntitySourceFunc adapts a function to EntitySource.
type EntitySourceFunc func() ([]Entity, error)

// Entities calls f.
func (f EntitySourceFunc) Entities() ([]Entity, error) { return f() }

// ResolveState enumerates lookup outcomes.
type ResolveState int

const (
	NotFound ResolveState = iota
	Found
	Ambiguous
)

func (s ResolveState) String() string {
	switch s {
	case Found:
		return "found"
	case Ambiguous:
		return "ambiguous"
	default:
		return "not found"
	}
}

// Resolution is the result of an entity lookup. Entity is set only when
// State is Found; Candidates only when State is Ambiguous.
type Resolution struct {
	State      ResolveState
	Entity     Entity
	Candidates []Entity
}

// Resolver looks up live entities by ID or by normalized display name.
type Resolver struct {
	source EntitySource
}

// NewResolver returns a resolver over source.
func NewResolver(source EntitySource) *Resolver {
	return &Resolver{source: source}
}

// Resolve matches name against live entity names. A unique prefix match is
// found; several prefix matches are narrowed by an exact match and are
// ambiguous otherwise.
func (r *Resolver) Resolve(name string) Resolution {
	query := NormalizeName(name)
	if query == "" {
		return Resolution{State: NotFound}
	}

	var candidates []Entity
	for _, e := range r.snapshot() {
		if strings.HasPrefix(NormalizeName(e.DisplayName()), query) {
			candidates = append(candidates, e)
		}
	}

	switch len(candidates) {
	case 0:
		return Resolution{State: NotFound}
	case 1:
		return Resolution{State: Found, Entity: candidates[0]}
	}

	var exact []Entity
	for _, e := range candidates {
		if NormalizeName(e.DisplayName()) == query {
			exact = append(exact, e)
		}
	}
	if len(exact) == 1 {
		return Resolution{State: Found, Entity: exact[0]}
	}
	return Resolution{State: Ambiguous, Candidates: candidates}
}

// ResolveByID finds the entity with exactly this ID.
func (r *Resolver) ResolveByID(id int64) Resolution {
	for _, e := range r.snapshot() {
		if e.EntityID() == id {
			return Resolution{State: Found, Entity: e}
		}
	}
	return Resolution{State: NotFound}
}

// snapshot reads the source, treating any failure as an empty world.
func (r *Resolver) snapshot() (entities []Entity) {
	if r == nil || r.source == nil {
		return nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			logger.Warning("Entity source panicked", "panic", fmt.Sprint(rec))
			entities = nil
		}
	}()

	entities, err := r.source.Entities()
	if err != nil {
		logger.Warning("Entity source unavailable", "error", err)
		return nil
	}
	return entities
}

// NormalizeName case-folds s, trims it and collapses inner whitespace runs
// to a single space.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}
