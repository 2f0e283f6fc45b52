// migrate-history copies the console command history from SQLite to
// PostgreSQL. Rows keep their ids, so the tool can be re-run safely.
//
// Usage:
//
//	go run ./cmd/migrate-history \
//	    -sqlite data/history.db \
//	    -pg-host localhost \
//	    -pg-port 5432 \
//	    -pg-user gameconsole \
//	    -pg-password gameconsole \
//	    -pg-database gameconsole
package main

import (
	"flag"
	"log"

	"github.com/lawnchairsociety/gameconsole/internal/database"
)

func main() {
	sqlitePath := flag.String("sqlite", "data/history.db", "Path to SQLite history database")
	pgHost := flag.String("pg-host", "localhost", "PostgreSQL host")
	pgPort := flag.Int("pg-port", 5432, "PostgreSQL port")
	pgUser := flag.String("pg-user", "gameconsole", "PostgreSQL user")
	pgPassword := flag.String("pg-password", "", "PostgreSQL password")
	pgDatabase := flag.String("pg-database", "gameconsole", "PostgreSQL database name")
	pgSSLMode := flag.String("pg-sslmode", "disable", "PostgreSQL SSL mode")
	dryRun := flag.Bool("dry-run", false, "Show what would be migrated without making changes")
	flag.Parse()

	log.Println("Console history migration")
	log.Println("=========================")

	log.Printf("Opening SQLite database: %s", *sqlitePath)
	src, err := database.Open(*sqlitePath)
	if err != nil {
		log.Fatalf("Failed to open SQLite database: %v", err)
	}
	defer src.Close()

	pg := database.DefaultPostgresConfig()
	pg.Host = *pgHost
	pg.Port = *pgPort
	pg.User = *pgUser
	pg.Password = *pgPassword
	pg.Database = *pgDatabase
	pg.SSLMode = *pgSSLMode

	log.Printf("Opening PostgreSQL database: %s@%s:%d/%s", *pgUser, *pgHost, *pgPort, *pgDatabase)
	dst, err := database.OpenWithConfig(database.Config{
		Driver:   string(database.DialectPostgres),
		Postgres: pg,
	})
	if err != nil {
		log.Fatalf("Failed to open PostgreSQL database: %v", err)
	}
	defer dst.Close()

	if *dryRun {
		log.Println("DRY RUN MODE - No changes will be made")
	}

	res, err := database.CopyHistory(src, dst, *dryRun)
	if err != nil {
		log.Fatalf("Migration failed after %d rows: %v", res.Read, err)
	}

	log.Println("=========================")
	log.Printf("Migration complete! Read %d, copied %d, already present %d", res.Read, res.Copied, res.Skipped)
	if *dryRun {
		log.Println("(DRY RUN - No actual changes were made)")
	}
}
