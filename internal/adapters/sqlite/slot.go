package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jinwsy/blood-pressure/internal/domain"
	_ "github.com/mattn/go-sqlite3"
)

// Slot implements domain.Slot with a SQLite key/value table
type Slot struct {
	db *sql.DB
}

// NewSlot creates a SQLite-backed slot
func NewSlot(dbPath string) (*Slot, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Create table if not exists
	schema := `
	CREATE TABLE IF NOT EXISTS kv_slots (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Slot{db: db}, nil
}

// Load retrieves the blob stored under key
func (s *Slot) Load(ctx context.Context, key string) ([]byte, error) {
	query := `SELECT value FROM kv_slots WHERE key = ?`

	var blob []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query slot: %w", err)
	}

	return blob, nil
}

// Save replaces the blob stored under key in a single statement
func (s *Slot) Save(ctx context.Context, key string, blob []byte) error {
	query := `
		INSERT INTO kv_slots (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, key, blob, time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return fmt.Errorf("failed to save slot: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *Slot) Close() error {
	return s.db.Close()
}
