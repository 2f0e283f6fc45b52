package database

import (
	"strings"
	"testing"
)

func TestNewDialect(t *testing.T) {
	if _, ok := NewDialect(DialectSQLite).(*SQLiteDialect); !ok {
		t.Error("sqlite: wrong dialect")
	}
	if _, ok := NewDialect(DialectPostgres).(*PostgresDialect); !ok {
		t.Error("postgres: wrong dialect")
	}
	// Unknown dialect should default to SQLite
	if _, ok := NewDialect("unknown").(*SQLiteDialect); !ok {
		t.Error("unknown: expected SQLite default")
	}
}

func TestSQLiteDialect(t *testing.T) {
	d := &SQLiteDialect{}

	if got := d.DriverName(); got != "sqlite" {
		t.Errorf("DriverName() = %q, want %q", got, "sqlite")
	}
	for _, pos := range []int{1, 2, 100} {
		if got := d.Placeholder(pos); got != "?" {
			t.Errorf("Placeholder(%d) = %q", pos, got)
		}
	}
	if !d.SupportsLastInsertID() {
		t.Error("SupportsLastInsertID() = false, want true")
	}
	if got := d.ReturningClause("id"); got != "" {
		t.Errorf("ReturningClause() = %q, want empty string", got)
	}
	if stmts := d.InitStatements(); len(stmts) != 2 || stmts[0] != "PRAGMA journal_mode = WAL" {
		t.Errorf("InitStatements() = %v", stmts)
	}
	if !strings.Contains(d.SerialPrimaryKey(), "AUTOINCREMENT") {
		t.Errorf("SerialPrimaryKey() = %q", d.SerialPrimaryKey())
	}
	if got := d.ResetSequence("console_history", "id"); got != "" {
		t.Errorf("ResetSequence() = %q, want empty", got)
	}
}

func TestPostgresDialect(t *testing.T) {
	d := &PostgresDialect{}

	if got := d.DriverName(); got != "postgres" {
		t.Errorf("DriverName() = %q, want %q", got, "postgres")
	}
	tests := []struct {
		position int
		want     string
	}{
		{1, "$1"},
		{2, "$2"},
		{10, "$10"},
	}
	for _, tt := range tests {
		if got := d.Placeholder(tt.position); got != tt.want {
			t.Errorf("Placeholder(%d) = %q, want %q", tt.position, got, tt.want)
		}
	}
	if d.SupportsLastInsertID() {
		t.Error("SupportsLastInsertID() = true, want false")
	}
	if got := d.ReturningClause("id"); got != " RETURNING id" {
		t.Errorf("ReturningClause() = %q", got)
	}
	if len(d.InitStatements()) != 0 {
		t.Errorf("InitStatements() = %v", d.InitStatements())
	}
	if d.SerialPrimaryKey() != "BIGSERIAL PRIMARY KEY" {
		t.Errorf("SerialPrimaryKey() = %q", d.SerialPrimaryKey())
	}
	reset := d.ResetSequence("console_history", "id")
	if !strings.Contains(reset, "pg_get_serial_sequence('console_history', 'id')") ||
		!strings.Contains(reset, "MAX(id) FROM console_history") {
		t.Errorf("ResetSequence() = %q", reset)
	}
}

func TestDialect_InterfaceCompliance(t *testing.T) {
	var _ Dialect = &SQLiteDialect{}
	var _ Dialect = &PostgresDialect{}
}

func TestQueryBuilder_Build(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		input   string
		want    string
	}{
		{"sqlite unchanged", &SQLiteDialect{}, "SELECT * FROM console_history WHERE id = ?", "SELECT * FROM console_history WHERE id = ?"},
		{"postgres single", &PostgresDialect{}, "SELECT * FROM console_history WHERE id = ?", "SELECT * FROM console_history WHERE id = $1"},
		{"postgres multiple", &PostgresDialect{}, "WHERE source = ? AND status = ? LIMIT ?", "WHERE source = $1 AND status = $2 LIMIT $3"},
		{"postgres literal", &PostgresDialect{}, "WHERE input = 'why?' AND id = ?", "WHERE input = 'why?' AND id = $1"},
		{"postgres no placeholders", &PostgresDialect{}, "SELECT COUNT(*) FROM console_history", "SELECT COUNT(*) FROM console_history"},
		{"empty", &PostgresDialect{}, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewQueryBuilder(tt.dialect).Build(tt.input); got != tt.want {
				t.Errorf("Build(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestQueryBuilder_BuildWithReturning(t *testing.T) {
	query := "INSERT INTO console_history (source, input) VALUES (?, ?)"

	if got := NewQueryBuilder(&SQLiteDialect{}).BuildWithReturning(query, "id"); got != query {
		t.Errorf("sqlite = %q", got)
	}

	want := "INSERT INTO console_history (source, input) VALUES ($1, $2) RETURNING id"
	if got := NewQueryBuilder(&PostgresDialect{}).BuildWithReturning(query, "id"); got != want {
		t.Errorf("postgres = %q, want %q", got, want)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := DefaultPostgresConfig()
	cfg.User = "console"
	cfg.Password = "secret"
	cfg.Database = "history"

	want := "host=localhost port=5432 user=console password=secret dbname=history sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if cfg.MaxOpenConns <= 0 || cfg.ConnMaxLifetime <= 0 {
		t.Errorf("pool defaults not set: %+v", cfg)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("data/history.db")
	if cfg.Driver != "sqlite" || cfg.SQLitePath != "data/history.db" {
		t.Errorf("DefaultConfig = %+v", cfg)
	}
}
