package command

import (
	"fmt"

	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/logger"
)

func registerFeatures(reg *console.Registry, env *Env) error {
	f := env.Features
	return registerAll(reg, []builtin{
		env.featureSwitch("buildanywhere", "Build without placement checks", &f.BuildAnywhere, nil),
		env.featureSwitch("nostamina", "Building costs no stamina", &f.NoStamina, nil),
		env.featureSwitch("nosupport", "Blocks need no support below", &f.NoStructuralSupport, nil),
		env.featureSwitch("freecursor", "Release the cursor while playing", &f.FreeCursor, env.refreshCursor),
	})
}

// featureSwitch builds "<name> [enabled]", which sets or toggles *flag.
// after runs once the flag has changed.
func (env *Env) featureSwitch(name, summary string, flag *bool, after func()) builtin {
	return builtin{
		name: name,
		params: []console.Param{
			{Name: "enabled", Kind: console.KindBoolean, Optional: true, Description: "toggles if omitted"},
		},
		handler: func(inv *console.Invocation, args console.Args) (string, error) {
			next := !*flag
			if args.Provided("enabled") {
				next = args.Bool("enabled")
			}
			changed := next != *flag
			*flag = next
			if changed {
				logger.Info("Feature switched", "feature", name, "enabled", next, "source", inv.Source)
				if after != nil {
					after()
				}
			}
			return fmt.Sprintf("%s: %s", name, onOff(next)), nil
		},
		opts: []console.Option{console.WithSummary(summary)},
	}
}

func (env *Env) refreshCursor() {
	if env.Hooks == nil {
		return
	}
	visible := env.Console != nil && env.Console.Visible()
	env.Hooks.RefreshCursor(visible)
}
