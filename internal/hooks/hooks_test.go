package hooks

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lawnchairsociety/gameconsole/internal/config"
	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/entity"
)

func TestPointFirstDecisionWins(t *testing.T) {
	var order []string
	p := NewPoint(func(int) bool { order = append(order, "fallback"); return false })

	p.Register(func(int) Decision { order = append(order, "pass"); return Pass })
	p.Register(func(q int) Decision {
		order = append(order, "even")
		if q%2 == 0 {
			return Allow
		}
		return Pass
	})
	p.Register(func(int) Decision { order = append(order, "deny"); return Deny })

	if !p.Allowed(2) {
		t.Error("Allowed(2) = false")
	}
	if !reflect.DeepEqual(order, []string{"pass", "even"}) {
		t.Errorf("rules ran %v", order)
	}

	order = nil
	if p.Allowed(3) {
		t.Error("Allowed(3) = true")
	}
	if !reflect.DeepEqual(order, []string{"pass", "even", "deny"}) {
		t.Errorf("rules ran %v", order)
	}
}

func TestPointFallback(t *testing.T) {
	if !NewPoint[int](nil).Allowed(1) {
		t.Error("nil fallback should allow")
	}
	if NewPoint(func(int) bool { return false }).Allowed(1) {
		t.Error("fallback ignored")
	}
}

func newBuilder(t *testing.T) (*Points, *entity.World, *entity.Player, *config.Features) {
	t.Helper()
	world := entity.NewWorld()
	points := NewPoints(world)
	features := &config.Features{}
	Install(points, features, nil)
	return points, world, entity.NewPlayer(1, "Ben"), features
}

func TestPlaceBlockDefaults(t *testing.T) {
	points, world, ben, _ := newBuilder(t)

	if err := points.PlaceBlock(world, ben, entity.BlockPos{X: 1}, "stone"); err != nil {
		t.Fatalf("ground placement: %v", err)
	}
	if ben.Stamina != 100-PlaceCost {
		t.Errorf("stamina = %d, want %d", ben.Stamina, 100-PlaceCost)
	}

	tests := []struct {
		name string
		pos  entity.BlockPos
		want error
	}{
		{"occupied", entity.BlockPos{X: 1}, ErrPlacementDenied},
		{"out of range", entity.BlockPos{X: BuildRange + 1}, ErrPlacementDenied},
		{"floating", entity.BlockPos{X: 2, Z: 3}, ErrUnsupported},
	}
	for _, tt := range tests {
		if err := points.PlaceBlock(world, ben, tt.pos, "stone"); !errors.Is(err, tt.want) {
			t.Errorf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}

	if err := points.PlaceBlock(world, ben, entity.BlockPos{X: 1, Z: 1}, "stone"); err != nil {
		t.Errorf("stacked placement: %v", err)
	}

	ben.Stamina = 0
	if err := points.PlaceBlock(world, ben, entity.BlockPos{X: 3}, "stone"); !errors.Is(err, ErrTooTired) {
		t.Errorf("tired: err = %v", err)
	}
	if world.Len() != 2 {
		t.Errorf("world has %d blocks, want 2", world.Len())
	}
}

func TestFeatureOverrides(t *testing.T) {
	points, world, ben, features := newBuilder(t)
	ben.Stamina = 0

	features.BuildAnywhere = true
	features.NoStructuralSupport = true
	features.NoStamina = true

	far := entity.BlockPos{X: 100, Y: 100, Z: 50}
	if err := points.PlaceBlock(world, ben, far, "glass"); err != nil {
		t.Fatalf("override placement: %v", err)
	}
	if ben.Stamina != 0 {
		t.Errorf("stamina spent with no_stamina on: %d", ben.Stamina)
	}

	features.NoStamina = false
	if err := points.PlaceBlock(world, ben, entity.BlockPos{X: 101, Y: 100, Z: 50}, "glass"); !errors.Is(err, ErrTooTired) {
		t.Errorf("flag change not picked up: %v", err)
	}
}

func TestCursorFollowsConsole(t *testing.T) {
	world := entity.NewWorld()
	points := NewPoints(world)
	features := &config.Features{}

	c := console.New(console.NewDispatcher(console.NewRegistry(), console.NewCoercer(nil), console.NewTokenizer()), nil)
	Install(points, features, c)

	var states []bool
	points.OnCursorChange(func(free bool) { states = append(states, free) })

	c.Show()
	c.Hide()
	features.FreeCursor = true
	c.Show()
	c.Hide()

	if !reflect.DeepEqual(states, []bool{true, false, true, true}) {
		t.Errorf("cursor states = %v", states)
	}
}
