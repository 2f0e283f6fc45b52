// Package config loads the console host configuration from YAML with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/gameconsole/internal/namefilter"
)

// Config is the complete host configuration. It is loaded once and then
// passed by pointer to the components that read it.
type Config struct {
	Console     ConsoleConfig     `yaml:"console"`
	Features    Features          `yaml:"features"`
	Remote      RemoteConfig      `yaml:"remote"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	AntiSpam    AntiSpamConfig    `yaml:"antispam"`
	History     HistoryConfig     `yaml:"history"`
	NameFilter  namefilter.Config `yaml:"name_filter"`
	Players     []PlayerSeed      `yaml:"players"`
}

// ConsoleConfig holds input syntax and display settings.
type ConsoleConfig struct {
	// Delimiter separates chained sub-commands. Must be a single character.
	Delimiter string `yaml:"delimiter" env:"CONSOLE_DELIMITER"`

	// Escape makes the next delimiter, quote or whitespace literal.
	Escape string `yaml:"escape" env:"CONSOLE_ESCAPE"`

	Prompt string `yaml:"prompt" env:"CONSOLE_PROMPT"`

	// ToggleKey shows and hides the local console.
	ToggleKey string `yaml:"toggle_key" env:"CONSOLE_TOGGLE_KEY"`

	// Scrollback is the number of lines buffered while hidden.
	Scrollback int `yaml:"scrollback" env:"CONSOLE_SCROLLBACK"`

	StartVisible bool `yaml:"start_visible" env:"CONSOLE_START_VISIBLE"`

	// HistoryFile stores readline input history for the local console.
	HistoryFile string `yaml:"history_file" env:"CONSOLE_HISTORY_FILE"`

	// TickInterval is the host loop tick period.
	TickInterval time.Duration `yaml:"tick_interval" env:"CONSOLE_TICK_INTERVAL"`
}

// Features are the gameplay overrides toggled from the console. They are
// read and written only on the host loop goroutine.
type Features struct {
	BuildAnywhere       bool `yaml:"build_anywhere" env:"CONSOLE_BUILD_ANYWHERE"`
	NoStamina           bool `yaml:"no_stamina" env:"CONSOLE_NO_STAMINA"`
	NoStructuralSupport bool `yaml:"no_structural_support" env:"CONSOLE_NO_STRUCTURAL_SUPPORT"`
	FreeCursor          bool `yaml:"free_cursor" env:"CONSOLE_FREE_CURSOR"`
}

// RemoteConfig holds settings for the remote admin console.
type RemoteConfig struct {
	Enabled       bool   `yaml:"enabled" env:"CONSOLE_REMOTE_ENABLED"`
	TelnetAddr    string `yaml:"telnet_addr" env:"CONSOLE_TELNET_ADDR"`
	WebSocketAddr string `yaml:"websocket_addr" env:"CONSOLE_WEBSOCKET_ADDR"`

	// PasswordHash is a bcrypt hash, see gameconsole -hash-password.
	PasswordHash string `yaml:"password_hash" env:"CONSOLE_PASSWORD_HASH"`

	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins" env:"CONSOLE_ALLOWED_ORIGINS" envSeparator:","`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size" env:"CONSOLE_MAX_MESSAGE_SIZE"`

	// TrustProxy takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that sets them.
	TrustProxy bool `yaml:"trust_proxy" env:"CONSOLE_TRUST_PROXY"`

	// IdleTimeout disconnects remote sessions with no input. 0 disables it.
	IdleTimeout time.Duration `yaml:"idle_timeout" env:"CONSOLE_IDLE_TIMEOUT"`

	Password PasswordConfig `yaml:"password"`
}

// PasswordConfig holds password validation settings for -hash-password.
type PasswordConfig struct {
	MinLength        int  `yaml:"min_length"`
	RequireUppercase bool `yaml:"require_uppercase"`
	RequireLowercase bool `yaml:"require_lowercase"`
	RequireDigit     bool `yaml:"require_digit"`
	RequireSpecial   bool `yaml:"require_special"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip" env:"CONSOLE_MAX_CONN_PER_IP"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total" env:"CONSOLE_MAX_CONN_TOTAL"`
}

// RateLimitConfig holds rate limiting settings for login attempts.
type RateLimitConfig struct {
	MaxAttempts       int `yaml:"max_attempts"`
	LockoutSeconds    int `yaml:"lockout_seconds"`
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// AntiSpamConfig bounds how fast a remote session may submit lines.
type AntiSpamConfig struct {
	Enabled     bool `yaml:"enabled"`
	MaxCommands int  `yaml:"max_commands"`
	WindowSecs  int  `yaml:"window_seconds"`

	// RepeatSecs rejects an identical line resubmitted within this many
	// seconds. Zero disables it.
	RepeatSecs int `yaml:"repeat_seconds"`
}

// HistoryConfig selects the command history store.
type HistoryConfig struct {
	Enabled bool `yaml:"enabled" env:"CONSOLE_HISTORY_ENABLED"`

	// Driver is "sqlite" or "postgres".
	Driver     string `yaml:"driver" env:"CONSOLE_HISTORY_DRIVER"`
	SQLitePath string `yaml:"sqlite_path" env:"CONSOLE_HISTORY_SQLITE_PATH"`

	Postgres PostgresConfig `yaml:"postgres"`

	// BufferSize is the async writer queue length.
	BufferSize int `yaml:"buffer_size"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host" env:"CONSOLE_PG_HOST"`
	Port     int    `yaml:"port" env:"CONSOLE_PG_PORT"`
	User     string `yaml:"user" env:"CONSOLE_PG_USER"`
	Password string `yaml:"password" env:"CONSOLE_PG_PASSWORD"`
	Database string `yaml:"database" env:"CONSOLE_PG_DATABASE"`
	SSLMode  string `yaml:"sslmode" env:"CONSOLE_PG_SSLMODE"`
}

// PlayerSeed describes a player present when the standalone host starts.
type PlayerSeed struct {
	Name    string  `yaml:"name"`
	Health  int     `yaml:"health"`
	Stamina int     `yaml:"stamina"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Z       float64 `yaml:"z"`
}

// DefaultConfig returns a Config with secure defaults. The remote console
// is off until a password hash is configured.
func DefaultConfig() *Config {
	return &Config{
		Console: ConsoleConfig{
			Delimiter:    ";",
			Escape:       `\`,
			Prompt:       "> ",
			ToggleKey:    "`",
			Scrollback:   200,
			HistoryFile:  ".gameconsole_history",
			TickInterval: 100 * time.Millisecond,
		},
		Remote: RemoteConfig{
			TelnetAddr:     "127.0.0.1:4100",
			WebSocketAddr:  "127.0.0.1:4180",
			AllowedOrigins: []string{},
			MaxMessageSize: 4096,
			IdleTimeout:    15 * time.Minute,
			Password: PasswordConfig{
				MinLength:        12,
				RequireUppercase: true,
				RequireLowercase: true,
				RequireDigit:     true,
			},
		},
		Connections: ConnectionsConfig{
			MaxPerIP: 2,
			MaxTotal: 8,
		},
		RateLimit: RateLimitConfig{
			MaxAttempts:       5,
			LockoutSeconds:    30,
			MaxLockoutSeconds: 300,
		},
		AntiSpam: AntiSpamConfig{
			Enabled:     true,
			MaxCommands: 20,
			WindowSecs:  10,
		},
		History: HistoryConfig{
			Enabled:    true,
			Driver:     "sqlite",
			SQLitePath: "data/history.db",
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				SSLMode: "disable",
			},
			BufferSize: 256,
		},
	}
}

// LoadConfig loads configuration from a YAML file and applies CONSOLE_*
// environment overrides. A missing file yields the defaults; a malformed
// file or invalid result is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields tagged with env from CONSOLE_* variables.
// Unset variables leave the loaded value alone.
func (c *Config) applyEnv() error {
	sections := []any{&c.Console, &c.Features, &c.Remote, &c.Connections, &c.History}
	for _, section := range sections {
		if err := env.Parse(section); err != nil {
			return fmt.Errorf("parse env: %w", err)
		}
	}
	return nil
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	if _, err := c.Console.DelimiterRune(); err != nil {
		return err
	}
	if _, err := c.Console.EscapeRune(); err != nil {
		return err
	}
	if c.Console.Delimiter == c.Console.Escape {
		return errors.New("console: delimiter and escape must differ")
	}
	if c.Console.TickInterval <= 0 {
		return errors.New("console: tick_interval must be positive")
	}
	switch c.History.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("history: unknown driver %q", c.History.Driver)
	}
	if c.Remote.Enabled && c.Remote.PasswordHash == "" {
		return errors.New("remote: password_hash is required when the remote console is enabled")
	}
	return nil
}

// DelimiterRune returns the chain delimiter as a rune.
func (c *ConsoleConfig) DelimiterRune() (rune, error) {
	return singleRune("delimiter", c.Delimiter)
}

// EscapeRune returns the escape character as a rune.
func (c *ConsoleConfig) EscapeRune() (rune, error) {
	return singleRune("escape", c.Escape)
}

// ToggleRune returns the toggle key, or 0 when none is configured.
func (c *ConsoleConfig) ToggleRune() rune {
	r, _ := utf8.DecodeRuneInString(c.ToggleKey)
	if r == utf8.RuneError {
		return 0
	}
	return r
}

func singleRune(field, s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("console: %s must be a single character, got %q", field, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if unicode.IsSpace(r) || r == '"' {
		return 0, fmt.Errorf("console: %s cannot be whitespace or a quote", field)
	}
	return r, nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *RemoteConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // non-browser client
	}

	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	return strings.TrimSuffix(originHost, "/") == requestHost
}

// ValidatePassword checks a candidate remote console password. It returns
// a description of the first unmet requirement, or "" if valid.
func (c *PasswordConfig) ValidatePassword(password string) string {
	if n := c.minLength(); len(password) < n {
		return fmt.Sprintf("Password must be at least %d characters.", n)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	switch {
	case c.RequireUppercase && !hasUpper:
		return "Password must contain at least one uppercase letter."
	case c.RequireLowercase && !hasLower:
		return "Password must contain at least one lowercase letter."
	case c.RequireDigit && !hasDigit:
		return "Password must contain at least one digit."
	case c.RequireSpecial && !hasSpecial:
		return "Password must contain at least one special character."
	}
	return ""
}

// RequirementsText returns a human-readable description of password requirements.
func (c *PasswordConfig) RequirementsText() string {
	parts := []string{fmt.Sprintf("min %d chars", c.minLength())}
	if c.RequireUppercase {
		parts = append(parts, "uppercase")
	}
	if c.RequireLowercase {
		parts = append(parts, "lowercase")
	}
	if c.RequireDigit {
		parts = append(parts, "digit")
	}
	if c.RequireSpecial {
		parts = append(parts, "special char")
	}
	return strings.Join(parts, ", ")
}

func (c *PasswordConfig) minLength() int {
	if c.MinLength <= 0 {
		return 8
	}
	return c.MinLength
}
