package store

import (
	"context"
	"time"

	"cardstock/domain/cards"
)

// Metadata is the small-tier payload: the confirmed field selection plus the
// expiry timestamp stamped at save time.
type Metadata struct {
	Fields    cards.FieldSelection `json:"fields"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// BulkTier holds the full serialized dataset under a single stable key.
// Implementations must replace the payload atomically.
type BulkTier interface {
	Put(ctx context.Context, payload []byte) error
	// Get returns the stored payload, or ok=false when nothing is stored.
	Get(ctx context.Context) (payload []byte, ok bool, err error)
	// Delete removes the payload; deleting an absent payload is not an error.
	Delete(ctx context.Context) error
}

// MetaTier holds the Metadata record. It is written only after the bulk tier
// write succeeds, making it the commit marker for a save.
type MetaTier interface {
	Put(ctx context.Context, meta Metadata) error
	// Get returns the stored metadata, or ok=false when nothing is stored.
	Get(ctx context.Context) (meta Metadata, ok bool, err error)
	// Delete removes the metadata; deleting absent metadata is not an error.
	Delete(ctx context.Context) error
}
