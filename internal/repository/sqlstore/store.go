// Package sqlstore persists users and journal entries in PostgreSQL or SQLite
// through database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// Dialect selects placeholder style and DDL types.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// Store wraps a sql.DB connection.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// New creates a Store. Call Migrate before first use.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Migrate creates tables and indexes if they don't exist.
func (s *Store) Migrate(ctx context.Context) error {
	ts := "TIMESTAMPTZ"
	if s.dialect == SQLite {
		ts = "DATETIME"
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			name VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(36) NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			date ` + ts + ` NOT NULL,
			last_modified ` + ts + ` NOT NULL,
			mood TEXT,
			ai_summary TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_user_date ON journal_entries(user_id, date DESC)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
