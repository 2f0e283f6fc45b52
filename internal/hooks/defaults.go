package hooks

import (
	"errors"
	"fmt"

	"github.com/lawnchairsociety/gameconsole/internal/entity"
)

const (
	// BuildRange is how far from a player, in blocks on any axis, they may build.
	BuildRange = 8

	// PlaceCost is the stamina spent per placed block.
	PlaceCost = 5
)

var (
	ErrPlacementDenied = errors.New("cannot build there")
	ErrUnsupported     = errors.New("block would not be supported")
	ErrTooTired        = errors.New("not enough stamina")
)

// NewPoints returns the standalone host's extension points with its
// default world rules.
func NewPoints(world *entity.World) *Points {
	return &Points{
		Placement: NewPoint(func(q Placement) bool {
			if !q.Player.IsAlive() {
				return false
			}
			if _, taken := world.At(q.Pos); taken {
				return false
			}
			return withinRange(entity.BlockAt(q.Player.Position), q.Pos, BuildRange)
		}),
		Stamina: NewPoint(func(q StaminaUse) bool {
			return q.Player.UseStamina(q.Cost)
		}),
		Support: NewPoint(func(q Support) bool {
			if q.Pos.Z <= 0 {
				return true
			}
			_, below := world.At(q.Pos.Below())
			return below
		}),
		Cursor: NewPoint(func(q Cursor) bool {
			return q.ConsoleVisible
		}),
	}
}

// PlaceBlock runs a block placement through the placement, support and
// stamina points, in that order, and places the block if all allow it.
func (p *Points) PlaceBlock(world *entity.World, player *entity.Player, pos entity.BlockPos, block string) error {
	if !p.Placement.Allowed(Placement{Player: player, Pos: pos}) {
		return fmt.Errorf("%s at %v: %w", block, pos, ErrPlacementDenied)
	}
	if !p.Support.Allowed(Support{Pos: pos}) {
		return fmt.Errorf("%s at %v: %w", block, pos, ErrUnsupported)
	}
	if !p.Stamina.Allowed(StaminaUse{Player: player, Cost: PlaceCost}) {
		return fmt.Errorf("%s: %w", player.Name, ErrTooTired)
	}
	world.Place(pos, block)
	return nil
}

func withinRange(a, b entity.BlockPos, r int) bool {
	return abs(a.X-b.X) <= r && abs(a.Y-b.Y) <= r && abs(a.Z-b.Z) <= r
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
