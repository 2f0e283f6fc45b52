package command

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/entity"
	"github.com/lawnchairsociety/gameconsole/internal/logger"
)

func registerAdmin(reg *console.Registry, env *Env) error {
	amount := console.Param{Name: "amount", Kind: console.KindNumber, Optional: true, Description: "points to restore, full if omitted"}

	return registerAll(reg, []builtin{
		{
			name:    "heal",
			params:  []console.Param{playerParam, amount},
			handler: env.heal,
			opts:    []console.Option{console.WithSummary("Restore a player's health")},
		},
		{
			name:    "stamina",
			params:  []console.Param{playerParam, amount},
			handler: env.stamina,
			opts:    []console.Option{console.WithSummary("Restore a player's stamina")},
		},
		{
			name: "teleport",
			params: []console.Param{
				playerParam,
				{Name: "x", Kind: console.KindDecimal},
				{Name: "y", Kind: console.KindDecimal},
				{Name: "z", Kind: console.KindDecimal, Optional: true, Description: "height, unchanged if omitted"},
			},
			handler: env.teleport,
			opts:    []console.Option{console.WithSummary("Move a player"), console.WithAliases("tp")},
		},
		{
			name: "give",
			params: []console.Param{
				playerParam,
				{Name: "item", Kind: console.KindText, Description: "item name"},
				{Name: "count", Kind: console.KindNumber, Optional: true, Default: 1, Description: "negative to take away"},
			},
			handler: env.give,
			opts:    []console.Option{console.WithSummary("Give a player items")},
		},
		{
			name:    "kill",
			params:  []console.Param{playerParam},
			handler: env.kill,
			opts:    []console.Option{console.WithSummary("Kill a player")},
		},
		{
			name: "god",
			params: []console.Param{
				playerParam,
				{Name: "enabled", Kind: console.KindBoolean, Optional: true, Description: "toggles if omitted"},
			},
			handler: env.god,
			opts:    []console.Option{console.WithSummary("Make a player invulnerable")},
		},
	})
}

func (env *Env) heal(_ *console.Invocation, args console.Args) (string, error) {
	p, err := targetPlayer(args)
	if err != nil {
		return "", err
	}

	var healed int
	if args.Provided("amount") {
		n := args.Int("amount")
		if n <= 0 {
			return "", fmt.Errorf("amount must be positive, got %d", n)
		}
		healed = p.Heal(n)
	} else {
		healed = p.HealToFull()
	}
	return fmt.Sprintf("Healed %s for %d (%d/%d).", p.Name, healed, p.Health, p.MaxHealth), nil
}

func (env *Env) stamina(_ *console.Invocation, args console.Args) (string, error) {
	p, err := targetPlayer(args)
	if err != nil {
		return "", err
	}

	n := p.MaxStamina - p.Stamina
	if args.Provided("amount") {
		n = args.Int("amount")
		if n <= 0 {
			return "", fmt.Errorf("amount must be positive, got %d", n)
		}
	}
	restored := p.RestoreStamina(n)
	return fmt.Sprintf("Restored %d stamina to %s (%d/%d).", restored, p.Name, p.Stamina, p.MaxStamina), nil
}

func (env *Env) teleport(inv *console.Invocation, args console.Args) (string, error) {
	p, err := targetPlayer(args)
	if err != nil {
		return "", err
	}

	to := entity.Vec3{X: args.Float("x"), Y: args.Float("y"), Z: p.Position.Z}
	if args.Provided("z") {
		to.Z = args.Float("z")
	}
	from := p.Position
	p.Teleport(to)

	logger.Info("Player teleported", "player", p.Name, "from", from.String(), "to", to.String(), "source", inv.Source)
	return fmt.Sprintf("Teleported %s to %s.", p.Name, to), nil
}

func (env *Env) give(_ *console.Invocation, args console.Args) (string, error) {
	p, err := targetPlayer(args)
	if err != nil {
		return "", err
	}

	item := strings.ToLower(strings.TrimSpace(args.String("item")))
	if item == "" {
		return "", fmt.Errorf("item name is empty")
	}
	count := args.Int("count")
	if count == 0 {
		return "", fmt.Errorf("count must not be zero")
	}
	if count < 0 && p.ItemCount(item) < -count {
		return "", fmt.Errorf("%s has only %d %s", p.Name, p.ItemCount(item), item)
	}

	total := p.AddItem(item, count)
	if count < 0 {
		return fmt.Sprintf("Took %d %s from %s (now %d).", -count, item, p.Name, total), nil
	}
	return fmt.Sprintf("Gave %d %s to %s (now %d).", count, item, p.Name, total), nil
}

func (env *Env) kill(inv *console.Invocation, args console.Args) (string, error) {
	p, err := targetPlayer(args)
	if err != nil {
		return "", err
	}
	if !p.IsAlive() {
		return "", fmt.Errorf("%s is already dead", p.Name)
	}
	if !p.Kill() {
		return "", fmt.Errorf("%s is in god mode", p.Name)
	}

	logger.Info("Player killed from console", "player", p.Name, "source", inv.Source)
	return fmt.Sprintf("Killed %s.", p.Name), nil
}

func (env *Env) god(_ *console.Invocation, args console.Args) (string, error) {
	p, err := targetPlayer(args)
	if err != nil {
		return "", err
	}

	enabled := !p.GodMode
	if args.Provided("enabled") {
		enabled = args.Bool("enabled")
	}
	p.GodMode = enabled
	return fmt.Sprintf("God mode %s for %s.", onOff(enabled), p.Name), nil
}
