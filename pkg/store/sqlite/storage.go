package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const ScenariosSchema = `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		total_cost TEXT NOT NULL
	);
`

const ScenarioResourcesSchema = `
	CREATE TABLE IF NOT EXISTS scenario_resources (
		scenario_id TEXT NOT NULL REFERENCES scenarios(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		resource_index INTEGER NOT NULL,
		name TEXT NOT NULL,
		resource_type TEXT NOT NULL DEFAULT '',
		monthly_cost TEXT NOT NULL,
		adjustment INTEGER NOT NULL,
		PRIMARY KEY (scenario_id, position)
	);
`

var bootQueries = []string{
	ScenariosSchema,
	ScenarioResourcesSchema,
}

const memoryPath = ":memory:"

type Settings struct {
	DbPath string
}

func NewDB(ctx context.Context, settings Settings) (*sql.DB, error) {
	path := settings.DbPath
	if path == "" {
		return nil, fmt.Errorf("database path is empty")
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// every sqlite connection to :memory: is a separate database
	if path == memoryPath {
		db.SetMaxOpenConns(1)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func Migrate(ctx context.Context, db *sql.DB) error {
	for _, query := range bootQueries {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("run migration: %w", err)
		}
	}
	return nil
}

func dsn(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000"
	if path != memoryPath {
		params += "&_journal_mode=WAL"
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + params
}
