package command

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/entity"
)

const defaultBlock = "stone"

func registerBuild(reg *console.Registry, env *Env) error {
	return registerAll(reg, []builtin{
		{
			name: "place",
			params: []console.Param{
				playerParam,
				{Name: "x", Kind: console.KindNumber},
				{Name: "y", Kind: console.KindNumber},
				{Name: "z", Kind: console.KindNumber, Optional: true, Description: "defaults to the player's level"},
				{Name: "block", Kind: console.KindText, Optional: true, Default: defaultBlock, Description: "block type"},
			},
			handler: env.place,
			opts:    []console.Option{console.WithSummary("Place a block on behalf of a player")},
		},
	})
}

func (env *Env) place(_ *console.Invocation, args console.Args) (string, error) {
	p, err := targetPlayer(args)
	if err != nil {
		return "", err
	}

	pos := entity.BlockPos{X: args.Int("x"), Y: args.Int("y"), Z: entity.BlockAt(p.Position).Z}
	if args.Provided("z") {
		pos.Z = args.Int("z")
	}
	block := strings.ToLower(args.String("block"))

	if err := env.Hooks.PlaceBlock(env.World, p, pos, block); err != nil {
		return "", err
	}
	return fmt.Sprintf("Placed %s at %s for %s (stamina %d/%d).",
		block, pos, p.Name, p.Stamina, p.MaxStamina), nil
}
