package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/database"
)

const (
	defaultHistory = 10
	maxHistory     = 100
)

var errHistoryDisabled = errors.New("command history is disabled")

func registerInfo(reg *console.Registry, env *Env) error {
	return registerAll(reg, []builtin{
		{
			name: "help",
			params: []console.Param{
				{Name: "command", Kind: console.KindText, Optional: true, Description: "command or topic"},
			},
			handler: env.help,
			opts:    []console.Option{console.WithSummary("List commands or describe one"), console.WithAliases("?")},
		},
		{
			name: "echo",
			params: []console.Param{
				{Name: "text", Kind: console.KindText, Rest: true, Description: "text to print"},
			},
			handler: func(_ *console.Invocation, args console.Args) (string, error) {
				return args.String("text"), nil
			},
			opts: []console.Option{console.WithSummary("Print text")},
		},
		{
			name:    "players",
			handler: env.players,
			opts:    []console.Option{console.WithSummary("List online players"), console.WithAliases("who")},
		},
		{
			name: "history",
			params: []console.Param{
				{Name: "count", Kind: console.KindNumber, Optional: true, Default: defaultHistory},
			},
			handler: env.history,
			opts:    []console.Option{console.WithSummary("Show recently executed commands")},
		},
		{
			name: "myhistory",
			params: []console.Param{
				{Name: "count", Kind: console.KindNumber, Optional: true, Default: defaultHistory},
			},
			handler: env.myHistory,
			opts:    []console.Option{console.WithSummary("Show commands you executed")},
		},
		{
			name: "prune",
			params: []console.Param{
				{Name: "age", Kind: console.KindDuration, Description: "drop entries older than this, e.g. 72h"},
			},
			handler: env.prune,
			opts:    []console.Option{console.WithSummary("Delete old command history"), console.Hidden()},
		},
		{
			name:    "clear",
			handler: env.clear,
			opts:    []console.Option{console.WithSummary("Discard buffered console output"), console.WithAliases("cls")},
		},
	})
}

func (env *Env) help(inv *console.Invocation, args console.Args) (string, error) {
	topic := args.String("command")
	if topic == "" {
		return env.commandList(inv.Registry()), nil
	}

	cmd, isCommand := inv.Registry().Lookup(topic)
	extra, isTopic := env.Help.Topic(topic)
	if !isCommand && !isTopic {
		return "", fmt.Errorf("no help for %q, type 'help' for a list of commands", topic)
	}

	var b strings.Builder
	if isCommand {
		fmt.Fprintf(&b, "Usage: %s", cmd.Usage())
		if cmd.Summary != "" {
			fmt.Fprintf(&b, "\n%s", cmd.Summary)
		}
		if len(cmd.Aliases) > 0 {
			fmt.Fprintf(&b, "\nAliases: %s", strings.Join(cmd.Aliases, ", "))
		}
		for _, p := range cmd.Params {
			if p.Description == "" {
				continue
			}
			fmt.Fprintf(&b, "\n  %-8s %s (%s)", p.Name, p.Description, p.Kind)
		}
	}
	if isTopic {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(extra)
	}
	return b.String(), nil
}

func (env *Env) commandList(reg *console.Registry) string {
	var b strings.Builder
	if general := env.Help.General(); general != "" {
		b.WriteString(general)
		b.WriteString("\n\n")
	}
	b.WriteString("Commands:")

	cmds := reg.Commands(false)
	width := 0
	for _, cmd := range cmds {
		width = max(width, len(cmd.Usage()))
	}
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "\n  %-*s  %s", width, cmd.Usage(), cmd.Summary)
	}
	return strings.TrimRight(b.String(), " ")
}

func (env *Env) players(*console.Invocation, console.Args) (string, error) {
	players := env.Roster.Players()
	if len(players) == 0 {
		return "No players online.", nil
	}

	lines := make([]string, 0, len(players)+1)
	for _, p := range players {
		lines = append(lines, "  "+p.Status())
	}
	lines = append(lines, fmt.Sprintf("Total: %d player(s)", len(players)))
	return strings.Join(lines, "\n"), nil
}

func (env *Env) history(_ *console.Invocation, args console.Args) (string, error) {
	return env.showHistory(args, func(n int) ([]database.HistoryEntry, error) {
		return env.History.Recent(n)
	})
}

func (env *Env) myHistory(inv *console.Invocation, args console.Args) (string, error) {
	return env.showHistory(args, func(n int) ([]database.HistoryEntry, error) {
		return env.History.RecentBySource(inv.Source, n)
	})
}

func (env *Env) showHistory(args console.Args, fetch func(int) ([]database.HistoryEntry, error)) (string, error) {
	if env.History == nil {
		return "", errHistoryDisabled
	}
	count := args.Int("count")
	if count <= 0 {
		return "", fmt.Errorf("count must be positive, got %d", count)
	}
	count = min(count, maxHistory)

	entries, err := fetch(count)
	if err != nil {
		return "", fmt.Errorf("read history: %w", err)
	}
	if len(entries) == 0 {
		return "No commands recorded.", nil
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		mark := " "
		if !e.OK() {
			mark = "!"
		}
		lines = append(lines, fmt.Sprintf("%s %s %-12s %s",
			mark, e.CreatedAt.Local().Format(time.TimeOnly), e.Source, e.Input))
	}
	return strings.Join(lines, "\n"), nil
}

func (env *Env) prune(_ *console.Invocation, args console.Args) (string, error) {
	if env.History == nil {
		return "", errHistoryDisabled
	}
	age := args.Duration("age")
	if age <= 0 {
		return "", fmt.Errorf("age must be positive, got %s", age)
	}

	removed, err := env.History.Prune(time.Now().Add(-age))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed %d history entries older than %s.", removed, age), nil
}

func (env *Env) clear(*console.Invocation, console.Args) (string, error) {
	if env.Console != nil {
		env.Console.Clear()
	}
	return "", nil
}
