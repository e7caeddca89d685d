package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// migrationsSQL creates the word corpus schema. Statements are split on ';'
// so none of them may contain a literal semicolon.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS words (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	word      TEXT    NOT NULL UNIQUE,
	signature TEXT    NOT NULL,
	length    INTEGER NOT NULL,
	frequency REAL    NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_words_signature ON words(signature);
CREATE INDEX IF NOT EXISTS idx_words_length ON words(length);

CREATE TABLE IF NOT EXISTS definitions (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	word_id        INTEGER NOT NULL REFERENCES words(id),
	definition     TEXT    NOT NULL DEFAULT '',
	part_of_speech TEXT    NOT NULL DEFAULT '',
	synonyms       TEXT    NOT NULL DEFAULT '[]',
	in_category    TEXT    NOT NULL DEFAULT '[]',
	type_of        TEXT    NOT NULL DEFAULT '[]',
	has_types      TEXT    NOT NULL DEFAULT '[]',
	has_members    TEXT    NOT NULL DEFAULT '[]',
	derivation     TEXT    NOT NULL DEFAULT '[]',
	examples       TEXT    NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_definitions_word_id ON definitions(word_id);

CREATE TABLE IF NOT EXISTS checkpoints (
	stage      TEXT PRIMARY KEY,
	next_word  TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);
`

// InitDB runs migrations on the given DB connection using the embedded SQL.
func InitDB(db *sql.DB) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Open opens (creating if needed) the SQLite database at path and migrates it.
// Use ":memory:" for a throwaway database.
//
// The pool is pinned to one connection: the corpus has a single writer, and an
// in-memory database only exists on the connection that created it.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database %s: %w", path, err)
	}
	if err := InitDB(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// dsn enables foreign keys and synchronous commits so every insert is on disk
// before the call returns.
func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_fk=1&_sync=FULL&_busy_timeout=5000"
}
