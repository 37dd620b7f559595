package database

import (
	"database/sql"
	"log"

	// Import sqlite driver
	_ "modernc.org/sqlite"
)

// ConnectSQLite opens a SQLite database file. Use ":memory:" for an
// in-process database.
func ConnectSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, err
	}

	log.Println("✅ Opened SQLite database")
	return db, nil
}
