// Package store persists board settings in a small sqlite key/value table
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	// Create directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	database := &Database{db: db}

	// Create table if it doesn't exist
	if err := database.createTable(); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return database, nil
}

func (d *Database) createTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT NOT NULL,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (key)
	);
	`
	_, err := d.db.Exec(query)
	return err
}

// GetValue returns the raw value stored under key. ok is false when no row exists.
func (d *Database) GetValue(key string) (value string, ok bool, err error) {
	const query = `SELECT value FROM kv_store WHERE key = ?`

	err = d.db.QueryRow(query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get value %s: %w", key, err)
	}
	return value, true, nil
}

func (d *Database) SetValue(key, value string) error {
	const stmt = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value      = excluded.value,
			updated_at = excluded.updated_at
	`

	if _, err := d.db.Exec(stmt, key, value); err != nil {
		return fmt.Errorf("set value %s: %w", key, err)
	}
	return nil
}

func (d *Database) DeleteValue(key string) error {
	if _, err := d.db.Exec(`DELETE FROM kv_store WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete value %s: %w", key, err)
	}
	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}
