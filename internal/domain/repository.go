package domain

import (
	"context"
)

// StorageKey is the fixed slot key the reading collection lives under.
const StorageKey = "bp_records_v1"

// Slot defines the durable key-value slot the store flushes to
// This is a PORT - adapters (file, SQLite, memory) will implement it
type Slot interface {
	// Load returns the blob saved under key, or ErrSlotEmpty
	Load(ctx context.Context, key string) ([]byte, error)

	// Save replaces the blob under key. Partial writes must not be visible.
	Save(ctx context.Context, key string, blob []byte) error
}
