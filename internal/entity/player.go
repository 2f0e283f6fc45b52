// Package entity holds the live player roster the console targets.
package entity

import (
	"fmt"
	"sort"
	"strings"
)

// Vec3 is a world position.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", v.X, v.Y, v.Z)
}

// ItemStack is a quantity of one item kind.
type ItemStack struct {
	Item  string
	Count int
}

// Player is a connected player. Players are mutated only on the host loop.
type Player struct {
	ID         int64
	Name       string
	Health     int
	MaxHealth  int
	Stamina    int
	MaxStamina int
	Position   Vec3
	GodMode    bool

	inventory map[string]int
}

// NewPlayer creates a player at full health and stamina.
func NewPlayer(id int64, name string) *Player {
	return &Player{
		ID:         id,
		Name:       name,
		Health:     100,
		MaxHealth:  100,
		Stamina:    100,
		MaxStamina: 100,
		inventory:  make(map[string]int),
	}
}

// EntityID implements console.Entity.
func (p *Player) EntityID() int64 { return p.ID }

// DisplayName implements console.Entity.
func (p *Player) DisplayName() string { return p.Name }

// IsAlive reports whether the player has health left.
func (p *Player) IsAlive() bool {
	return p.Health > 0
}

// Heal restores health, capped at MaxHealth. Returns the amount healed.
func (p *Player) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	old := p.Health
	p.Health += amount
	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	return p.Health - old
}

// HealToFull restores the player to full health, returns amount healed
func (p *Player) HealToFull() int {
	return p.Heal(p.MaxHealth - p.Health)
}

// TakeDamage removes health and returns the damage dealt. Players in god
// mode take none.
func (p *Player) TakeDamage(damage int) int {
	if p.GodMode || damage <= 0 {
		return 0
	}
	old := p.Health
	p.Health -= damage
	if p.Health < 0 {
		p.Health = 0
	}
	return old - p.Health
}

// Kill drops health to zero. It reports false for players in god mode.
func (p *Player) Kill() bool {
	if p.GodMode {
		return false
	}
	p.Health = 0
	return true
}

// UseStamina spends cost stamina. It returns false and spends nothing if
// the player does not have enough.
func (p *Player) UseStamina(cost int) bool {
	if cost <= 0 {
		return true
	}
	if p.Stamina < cost {
		return false
	}
	p.Stamina -= cost
	return true
}

// RestoreStamina adds stamina, capped at MaxStamina. Returns the amount restored.
func (p *Player) RestoreStamina(amount int) int {
	if amount <= 0 {
		return 0
	}
	old := p.Stamina
	p.Stamina += amount
	if p.Stamina > p.MaxStamina {
		p.Stamina = p.MaxStamina
	}
	return p.Stamina - old
}

// Regenerate applies one tick of stamina regeneration. Dead players do not
// regenerate.
func (p *Player) Regenerate(staminaPerTick int) {
	if !p.IsAlive() {
		return
	}
	p.RestoreStamina(staminaPerTick)
}

// Teleport moves the player.
func (p *Player) Teleport(to Vec3) {
	p.Position = to
}

// AddItem adds count of item and returns the new total.
func (p *Player) AddItem(item string, count int) int {
	key := strings.ToLower(strings.TrimSpace(item))
	if p.inventory == nil {
		p.inventory = make(map[string]int)
	}
	p.inventory[key] += count
	if p.inventory[key] <= 0 {
		delete(p.inventory, key)
		return 0
	}
	return p.inventory[key]
}

// ItemCount returns how many of item the player carries.
func (p *Player) ItemCount(item string) int {
	return p.inventory[strings.ToLower(strings.TrimSpace(item))]
}

// Inventory returns the carried items sorted by name.
func (p *Player) Inventory() []ItemStack {
	stacks := make([]ItemStack, 0, len(p.inventory))
	for item, count := range p.inventory {
		stacks = append(stacks, ItemStack{Item: item, Count: count})
	}
	sort.Slice(stacks, func(i, j int) bool { return stacks[i].Item < stacks[j].Item })
	return stacks
}

// Status renders a one-line summary for console listings.
func (p *Player) Status() string {
	status := fmt.Sprintf("#%d %s [HP: %d/%d | ST: %d/%d] at %s",
		p.ID, p.Name, p.Health, p.MaxHealth, p.Stamina, p.MaxStamina, p.Position)
	if p.GodMode {
		status += " (god)"
	}
	if !p.IsAlive() {
		status += " (dead)"
	}
	return status
}
