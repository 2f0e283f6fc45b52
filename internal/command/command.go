// Package command registers the builtin console commands of the standalone
// host: player administration, feature switches, building and console
// housekeeping.
package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/lawnchairsociety/gameconsole/internal/config"
	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/database"
	"github.com/lawnchairsociety/gameconsole/internal/entity"
	"github.com/lawnchairsociety/gameconsole/internal/help"
	"github.com/lawnchairsociety/gameconsole/internal/hooks"
)

// HistoryStore is the command history as the builtins see it.
type HistoryStore interface {
	Recent(limit int) ([]database.HistoryEntry, error)
	RecentBySource(source string, limit int) ([]database.HistoryEntry, error)
	Prune(cutoff time.Time) (int64, error)
}

// Env is the game state builtin handlers act on. Handlers read it at call
// time, so Console and History may be set after Register.
type Env struct {
	Roster   *entity.Roster
	World    *entity.World
	Hooks    *hooks.Points
	Features *config.Features
	Help     *help.Help
	History  HistoryStore
	Console  *console.Console
}

var errNotPlayer = errors.New("target is not a player")

// Register adds every builtin command to reg.
func Register(reg *console.Registry, env *Env) error {
	groups := []func(*console.Registry, *Env) error{
		registerInfo,
		registerAdmin,
		registerFeatures,
		registerBuild,
	}
	for _, register := range groups {
		if err := register(reg, env); err != nil {
			return err
		}
	}
	return nil
}

type builtin struct {
	name    string
	params  []console.Param
	handler console.Handler
	opts    []console.Option
}

func registerAll(reg *console.Registry, builtins []builtin) error {
	for _, b := range builtins {
		if err := reg.Register(b.name, b.params, b.handler, b.opts...); err != nil {
			return fmt.Errorf("builtin commands: %w", err)
		}
	}
	return nil
}

// playerParam is the usual first parameter of an admin command.
var playerParam = console.Param{
	Name:        "player",
	Kind:        console.KindEntity,
	Description: "player ID, name or unique name prefix",
}

func targetPlayer(args console.Args) (*entity.Player, error) {
	p, ok := args.Entity("player").(*entity.Player)
	if !ok {
		return nil, errNotPlayer
	}
	return p, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
