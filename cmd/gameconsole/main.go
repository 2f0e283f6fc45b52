package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chzyer/readline"

	"github.com/lawnchairsociety/gameconsole/internal/command"
	"github.com/lawnchairsociety/gameconsole/internal/config"
	"github.com/lawnchairsociety/gameconsole/internal/console"
	"github.com/lawnchairsociety/gameconsole/internal/database"
	"github.com/lawnchairsociety/gameconsole/internal/entity"
	"github.com/lawnchairsociety/gameconsole/internal/help"
	"github.com/lawnchairsociety/gameconsole/internal/hooks"
	"github.com/lawnchairsociety/gameconsole/internal/host"
	"github.com/lawnchairsociety/gameconsole/internal/logger"
	"github.com/lawnchairsociety/gameconsole/internal/namefilter"
	"github.com/lawnchairsociety/gameconsole/internal/server"
)

// staminaPerSecond is the stamina every living player regains per second.
const staminaPerSecond = 5

func main() {
	configFile := flag.String("config", "data/gameconsole.yaml", "Path to console config YAML file")
	loggingConfig := flag.String("logging", "data/logging.yaml", "Path to logging config YAML file")
	helpFile := flag.String("help", "", "Path to help YAML file (default: built-in topics)")
	headless := flag.Bool("headless", false, "Serve the remote console only, without a local prompt")
	hashPassword := flag.Bool("hash-password", false, "Read a password from stdin, print its bcrypt hash and exit")
	flag.Parse()

	logConfig, _ := logger.LoadConfig(*loggingConfig)
	if err := logger.Initialize(logConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *hashPassword {
		handleHashPassword(&cfg.Remote.Password)
		return
	}

	logger.Info("Starting game console")

	names := namefilter.New(&cfg.NameFilter)
	logger.Info("Name filter loaded", "enabled", names.IsEnabled())
	roster := entity.NewRoster(names)
	for _, seed := range cfg.Players {
		p, err := roster.Join(seed.Name)
		if err != nil {
			logger.Warning("Skipping configured player", "name", seed.Name, "error", err)
			continue
		}
		if seed.Health > 0 {
			p.Health = min(seed.Health, p.MaxHealth)
		}
		if seed.Stamina > 0 {
			p.Stamina = min(seed.Stamina, p.MaxStamina)
		}
		p.Teleport(entity.Vec3{X: seed.X, Y: seed.Y, Z: seed.Z})
	}
	logger.Info("Players loaded", "count", roster.Len())

	helpTopics := help.Default()
	if *helpFile != "" {
		if helpTopics, err = help.Load(*helpFile); err != nil {
			logger.Warning("Failed to load help file, using built-in topics", "path", *helpFile, "error", err)
			helpTopics = help.Default()
		}
	}

	world := entity.NewWorld()
	points := hooks.NewPoints(world)
	env := &command.Env{
		Roster:   roster,
		World:    world,
		Hooks:    points,
		Features: &cfg.Features,
		Help:     helpTopics,
	}

	registry := console.NewRegistry()
	if err := command.Register(registry, env); err != nil {
		log.Fatalf("Failed to register commands: %v", err)
	}

	delimiter, _ := cfg.Console.DelimiterRune()
	escape, _ := cfg.Console.EscapeRune()
	dispatcher := console.NewDispatcher(
		registry,
		console.NewCoercer(console.NewResolver(roster)),
		console.Tokenizer{Delimiter: delimiter, Escape: escape},
	)

	var rl *readline.Instance
	var out io.Writer = os.Stdout
	if !*headless {
		rl, err = readline.NewEx(&readline.Config{
			Prompt:          cfg.Console.Prompt,
			HistoryFile:     cfg.Console.HistoryFile,
			InterruptPrompt: "^C",
			EOFPrompt:       "quit",
		})
		if err != nil {
			log.Fatalf("Failed to start terminal: %v", err)
		}
		defer rl.Close()
		out = rl.Stdout()
	}

	opts := []console.ConsoleOption{console.WithScrollback(cfg.Console.Scrollback)}
	if cfg.Console.StartVisible || *headless {
		opts = append(opts, console.StartVisible())
	}

	var history *database.Database
	var writer *database.Writer
	if cfg.History.Enabled {
		history, err = database.OpenWithConfig(historyConfig(cfg.History))
		if err != nil {
			logger.Warning("Failed to open command history, history disabled", "driver", cfg.History.Driver, "error", err)
		} else {
			defer history.Close()
			writer = database.NewWriter(history, cfg.History.BufferSize)
			defer writer.Close()
			env.History = writer
			opts = append(opts, console.WithRecorder(writer))
			logger.Info("Command history enabled", "driver", cfg.History.Driver)
		}
	}

	con := console.New(dispatcher, console.WriterOutput{W: out}, opts...)
	env.Console = con
	hooks.Install(points, &cfg.Features, con)

	loop := host.New(con, cfg.Console.TickInterval)
	loop.OnTick(regenerator(roster))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	var srv *server.Server
	if cfg.Remote.Enabled {
		srv, err = server.New(cfg, loop)
		if err != nil {
			log.Fatalf("Failed to create remote console: %v", err)
		}
		logOriginPolicy(cfg.Remote)
		if err := srv.Start(); err != nil {
			log.Fatalf("Remote console error: %v", err)
		}
	}

	if *headless {
		logger.Info("Running headless, press Ctrl+C to shut down")
		<-ctx.Done()
	} else {
		repl(ctx, rl, loop, registry, cfg.Console)
		stop()
	}

	logger.Info("Shutting down")
	if srv != nil {
		srv.Shutdown()
	}
	if err := <-loopDone; err != nil {
		logger.Error("Host loop failed", "error", err)
	}
	logger.Info("Game console stopped")
}

// repl reads local input until EOF, an interrupt or ctx ends.
func repl(ctx context.Context, rl *readline.Instance, loop *host.Loop, registry *console.Registry, cfg config.ConsoleConfig) {
	con := loop.Console()
	setupAutocomplete(rl, registry)

	if toggle := cfg.ToggleRune(); toggle != 0 {
		rl.Config.FuncFilterInputRune = func(r rune) (rune, bool) {
			if r != toggle {
				return r, true
			}
			if err := loop.Post(ctx, func() { con.Toggle() }); err != nil {
				logger.Debug("Toggle dropped", "error", err)
			}
			return r, false
		}
	}

	updatePrompt(rl, cfg.Prompt, con.Visible())
	con.OnVisibilityChange(func(visible bool) {
		updatePrompt(rl, cfg.Prompt, visible)
	})

	go func() {
		<-ctx.Done()
		rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return
			}
			if ctx.Err() == nil {
				logger.Error("Terminal read failed", "error", err)
			}
			return
		}

		if _, err := loop.Submit(ctx, "local", line); err != nil {
			return
		}
	}
}

func updatePrompt(rl *readline.Instance, prompt string, visible bool) {
	if visible {
		rl.SetPrompt(prompt)
	} else {
		rl.SetPrompt("(hidden) " + prompt)
	}
	rl.Refresh()
}

// setupAutocomplete completes command names and aliases. The registry is
// read at completion time so commands registered later still complete.
func setupAutocomplete(rl *readline.Instance, registry *console.Registry) {
	rl.Config.AutoComplete = readline.NewPrefixCompleter(
		readline.PcItemDynamic(func(string) []string {
			return registry.Names()
		}),
	)
}

// regenerator restores stamina to every player once per elapsed second.
func regenerator(roster *entity.Roster) func(time.Duration) {
	var elapsed time.Duration
	return func(dt time.Duration) {
		elapsed += dt
		for elapsed >= time.Second {
			elapsed -= time.Second
			for _, p := range roster.Players() {
				p.Regenerate(staminaPerSecond)
			}
		}
	}
}

func historyConfig(h config.HistoryConfig) database.Config {
	if h.Driver != string(database.DialectPostgres) {
		return database.DefaultConfig(h.SQLitePath)
	}
	pg := database.DefaultPostgresConfig()
	pg.Host = h.Postgres.Host
	pg.Port = h.Postgres.Port
	pg.User = h.Postgres.User
	pg.Password = h.Postgres.Password
	pg.Database = h.Postgres.Database
	pg.SSLMode = h.Postgres.SSLMode
	return database.Config{Driver: h.Driver, Postgres: pg}
}

func logOriginPolicy(remote config.RemoteConfig) {
	switch {
	case len(remote.AllowedOrigins) == 0:
		logger.Info("WebSocket CORS policy", "mode", "same-origin")
	case len(remote.AllowedOrigins) == 1 && remote.AllowedOrigins[0] == "*":
		logger.Warning("WebSocket CORS allows all origins (not recommended for production)")
	default:
		logger.Info("WebSocket CORS policy", "allowed_origins", remote.AllowedOrigins)
	}
}

// handleHashPassword prints the bcrypt hash for remote.password_hash and exits.
func handleHashPassword(policy *config.PasswordConfig) {
	rl, err := readline.New("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Fprintln(os.Stderr, policy.RequirementsText())
	password, err := rl.ReadPassword("Password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if problem := policy.ValidatePassword(string(password)); problem != "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", problem)
		os.Exit(1)
	}

	hash, err := server.HashPassword(string(password), server.HashCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
