package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed sql/postgres/*.sql sql/sqlite/*.sql
var migrationsFS embed.FS

// Dialect holds the per-database pieces of the migration runner.
type Dialect struct {
	name         string
	dir          string
	historyTable string
	placeholder  string
}

var (
	Postgres = Dialect{
		name: "postgres",
		dir:  "sql/postgres",
		historyTable: `
			CREATE TABLE IF NOT EXISTS migrations_history (
				id SERIAL PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				applied_at TIMESTAMPTZ DEFAULT NOW()
			)`,
		placeholder: "$1",
	}
	SQLite = Dialect{
		name: "sqlite",
		dir:  "sql/sqlite",
		historyTable: `
			CREATE TABLE IF NOT EXISTS migrations_history (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
		placeholder: "?",
	}
)

func (d Dialect) String() string { return d.name }

// Apply runs every embedded migration for the dialect that is not yet
// recorded in migrations_history, in filename order.
func Apply(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if _, err := db.ExecContext(ctx, dialect.historyTable); err != nil {
		return fmt.Errorf("creating migrations history table: %w", err)
	}

	names, err := Pending(ctx, db, dialect)
	if err != nil {
		return err
	}

	for _, name := range names {
		content, err := fs.ReadFile(migrationsFS, path.Join(dialect.dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		for stmt := range strings.SplitSeq(string(content), ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute migration %s (%s): %w", name, dialect, err)
			}
		}

		if _, err := db.ExecContext(ctx, "INSERT INTO migrations_history (name) VALUES ("+dialect.placeholder+")", name); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Pending lists the embedded migrations not yet applied. The history table
// must exist.
func Pending(ctx context.Context, db *sql.DB, dialect Dialect) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, dialect.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var pending []string
	for _, name := range names {
		var count int
		err := db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM migrations_history WHERE name = "+dialect.placeholder, name,
		).Scan(&count)
		if err != nil {
			return nil, fmt.Errorf("checking if migration applied: %w", err)
		}
		if count == 0 {
			pending = append(pending, name)
		}
	}

	return pending, nil
}
