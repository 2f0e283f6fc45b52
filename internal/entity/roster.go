package entity

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/namefilter"
)

var (
	// ErrNameTaken is returned when a joining player's name is already online.
	ErrNameTaken = errors.New("name already online")

	// ErrInvalidName is returned for blank names.
	ErrInvalidName = errors.New("invalid player name")
)

// Roster is the set of online players. It implements console.EntitySource.
type Roster struct {
	mu      sync.RWMutex
	players []*Player
	nextID  int64
	filter  *namefilter.NameFilter
}

// NewRoster returns an empty roster. IDs start at 1. filter may be nil.
func NewRoster(filter *namefilter.NameFilter) *Roster {
	return &Roster{nextID: 1, filter: filter}
}

// Join adds a player. Names are unique after console name normalization.
func (r *Roster) Join(name string) (*Player, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return nil, ErrInvalidName
	}
	if err := r.filter.Check(name); err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := console.NormalizeName(name)
	for _, p := range r.players {
		if console.NormalizeName(p.Name) == key {
			return nil, fmt.Errorf("join %q: %w", name, ErrNameTaken)
		}
	}

	p := NewPlayer(r.nextID, name)
	r.nextID++
	r.players = append(r.players, p)
	return p, nil
}

// Leave removes the player with id. It reports whether the player was online.
func (r *Roster) Leave(id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.players {
		if p.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the player with id.
func (r *Roster) Get(id int64) (*Player, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Players returns the online players in join order.
func (r *Roster) Players() []*Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Player(nil), r.players...)
}

// Len returns the number of online players.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// Entities returns a snapshot of the online players.
func (r *Roster) Entities() ([]console.Entity, error) {
	players := r.Players()
	entities := make([]console.Entity, len(players))
	for i, p := range players {
		entities[i] = p
	}
	return entities, nil
}
