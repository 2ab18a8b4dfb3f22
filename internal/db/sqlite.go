package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// ConnectSQLite opens (or creates) the battle results database at path and
// makes sure the schema exists.
func ConnectSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Pragmas are per connection; one writer keeps them in force.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			battles INTEGER NOT NULL,
			max_turns INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS battles (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seed INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			description TEXT,
			winner TEXT,
			turns INTEGER NOT NULL,
			casualties_a INTEGER NOT NULL,
			casualties_b INTEGER NOT NULL,
			survivors_a INTEGER NOT NULL,
			survivors_b INTEGER NOT NULL,
			tide REAL NOT NULL,
			strategy_changes INTEGER NOT NULL,
			final_strategy_a TEXT,
			final_strategy_b TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS battles_run ON battles(run_id)`,
	} {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("create table: %w", err)
		}
	}

	return db, nil
}
