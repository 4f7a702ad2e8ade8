package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// schema is the terminal-local durable store. offline_orders carries an
// autoincrement ordinal so drain order is always insertion order, even
// across process restarts.
const schema = `
CREATE TABLE IF NOT EXISTS offline_orders (
	ordinal      INTEGER PRIMARY KEY AUTOINCREMENT,
	offline_uuid TEXT    NOT NULL UNIQUE,
	payload      TEXT    NOT NULL,
	created_at   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rejected_orders (
	offline_uuid TEXT    NOT NULL UNIQUE,
	payload      TEXT    NOT NULL,
	reason       TEXT    NOT NULL,
	rejected_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS offline_layouts (
	server_id   INTEGER NOT NULL,
	name        TEXT    NOT NULL,
	location_id INTEGER NOT NULL,
	sort_order  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_offline_layouts_server_id
	ON offline_layouts (server_id);

CREATE TABLE IF NOT EXISTS offline_layout_items (
	server_id         INTEGER NOT NULL,
	layout_server_id  INTEGER NOT NULL,
	item_id           INTEGER NOT NULL,
	item_name         TEXT    NOT NULL,
	price             TEXT    NOT NULL,
	layout_indices_id INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_offline_layout_items_server_id
	ON offline_layout_items (server_id);

CREATE INDEX IF NOT EXISTS idx_offline_layout_items_layout_server_id
	ON offline_layout_items (layout_server_id);
`

// Open opens (creating if needed) the embedded database at path and applies
// the schema. The returned handle is safe for concurrent use.
func Open(path string, logger zerolog.Logger) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer; serialize access through a single
	// connection rather than racing into SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA busy_timeout = 5000`,
		`PRAGMA synchronous = FULL`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info().Str("path", path).Msg("embedded database opened")

	return db, nil
}
