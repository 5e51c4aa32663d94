// Package poststore owns the SQLite posts table. It is the only
// component that talks to the database.
package poststore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/mannaz/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS posts (
	id        INTEGER PRIMARY KEY,
	author    TEXT NOT NULL DEFAULT '',
	date      TEXT NOT NULL DEFAULT '',
	hasimage  BOOLEAN NOT NULL DEFAULT 0,
	hasavatar BOOLEAN NOT NULL DEFAULT 0,
	content   TEXT NOT NULL DEFAULT '',
	visible   BOOLEAN NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_posts_visible_date ON posts(visible, date);
`

// Store defines post persistence operations.
// Consumers should depend on this interface rather than the concrete *DB
// type to facilitate testing with fakes.
type Store interface {
	// CreateInvisible inserts a row with visible = 0 and both media flags
	// cleared, and returns the generated id. The id is needed before any
	// media file path can be computed.
	CreateInvisible(author, date, content string) (int64, error)
	// Finalize sets the media flags and flips visible = 1. It must be
	// called exactly once per successful submission, after all media
	// writes for the id have completed.
	Finalize(id int64, hasImage, hasAvatar bool) error
	// ListVisible returns only visible posts, most recent date first.
	ListVisible() ([]models.Post, error)
	Close() error
}

// DB wraps a sql.DB with posts-table operations.
type DB struct {
	conn *sql.DB
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)

// Open opens (or creates) the SQLite database and applies the schema.
// Table creation is idempotent.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("poststore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("poststore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("poststore: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
