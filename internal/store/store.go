// Package store persists the imported dataset and the confirmed field
// selection across sessions. Two tiers back it: a bulk tier for the full
// serialized dataset and a small metadata tier for the field selection plus
// the expiry timestamp. Saves commit bulk first and metadata second; loads
// gate on the expiry policy and treat anything undecodable as "nothing
// stored" after a purge.
package store

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"cardstock/domain/cards"
	"cardstock/internal/errors"
)

// Store is the durable persistence layer for a single local user.
type Store struct {
	bulk BulkTier
	meta MetaTier
	now  func() time.Time
}

// New creates a store over the given tiers.
func New(bulk BulkTier, meta MetaTier) *Store {
	return &Store{
		bulk: bulk,
		meta: meta,
		now:  time.Now,
	}
}

// NewWithClock creates a store with an injected clock for tests.
func NewWithClock(bulk BulkTier, meta MetaTier, now func() time.Time) *Store {
	return &Store{bulk: bulk, meta: meta, now: now}
}

// Save persists the dataset and field selection together and refreshes the
// expiry timestamp to save time + the retention window. The bulk write runs
// first; metadata is written only after it succeeds, so a rejected bulk write
// leaves previously persisted state untouched. Fails with WRITE_REJECTED when
// either tier rejects the write and with NO_FIELDS_CHOSEN for an empty
// selection.
func (s *Store) Save(ctx context.Context, dataset cards.Dataset, fields cards.FieldSelection) error {
	if len(fields) == 0 {
		return errors.NoFieldsChosen("refusing to persist an empty field selection")
	}

	payload, err := json.Marshal(dataset)
	if err != nil {
		return errors.WriteRejected("failed to serialize dataset", err)
	}

	if err := s.bulk.Put(ctx, payload); err != nil {
		log.Printf("[Store.Save] FAILED - Bulk tier rejected write: %v", err)
		return errors.WriteRejected("storage medium rejected the dataset write", err)
	}

	meta := Metadata{
		Fields:    fields,
		ExpiresAt: ExpiryFrom(s.now()),
	}
	if err := s.meta.Put(ctx, meta); err != nil {
		log.Printf("[Store.Save] FAILED - Metadata tier rejected write after bulk commit: %v", err)
		return errors.WriteRejected("storage medium rejected the metadata write", err)
	}

	log.Printf("[Store.Save] Persisted %d rows, %d fields (expires %s)",
		len(dataset.Rows), len(fields), meta.ExpiresAt.Format(time.RFC3339))
	return nil
}

// Load returns the persistence record, or nil when nothing usable is stored.
// Expired state is purged before returning absent. One tier present without
// the other, state that fails to decode, or tiers that disagree (metadata
// naming a field the dataset lacks) are treated as "nothing stored" and
// purged rather than surfaced as an error.
func (s *Store) Load(ctx context.Context) (*cards.PersistenceRecord, error) {
	meta, ok, err := s.meta.Get(ctx)
	if err != nil {
		log.Printf("[Store.Load] Metadata unreadable, purging: %v", err)
		s.purge(ctx)
		return nil, nil
	}
	if !ok {
		// No metadata means no committed save; drop any dangling bulk payload.
		s.purge(ctx)
		return nil, nil
	}

	if IsExpired(meta.ExpiresAt, s.now()) {
		log.Printf("[Store.Load] Persisted state expired at %s, purging", meta.ExpiresAt.Format(time.RFC3339))
		s.purge(ctx)
		return nil, nil
	}

	if len(meta.Fields) == 0 {
		log.Printf("[Store.Load] Metadata carries no fields, purging")
		s.purge(ctx)
		return nil, nil
	}

	payload, ok, err := s.bulk.Get(ctx)
	if err != nil || !ok {
		if err != nil {
			log.Printf("[Store.Load] Bulk tier unreadable, purging: %v", err)
		} else {
			log.Printf("[Store.Load] Metadata present without bulk payload, purging")
		}
		s.purge(ctx)
		return nil, nil
	}

	var dataset cards.Dataset
	if err := json.Unmarshal(payload, &dataset); err != nil {
		log.Printf("[Store.Load] Bulk payload undecodable, purging: %v", err)
		s.purge(ctx)
		return nil, nil
	}

	// The tiers must describe the same save. A field the dataset does not
	// carry means the pair was never committed together (a bulk write that
	// landed without its metadata, or vice versa), so it is not a record.
	for _, field := range meta.Fields {
		if !dataset.HasColumn(field) {
			log.Printf("[Store.Load] Field %q missing from dataset columns, purging mismatched tiers", field)
			s.purge(ctx)
			return nil, nil
		}
	}

	log.Printf("[Store.Load] Restored %d rows, %d fields", len(dataset.Rows), len(meta.Fields))
	return &cards.PersistenceRecord{
		Dataset:   dataset,
		Fields:    meta.Fields,
		ExpiresAt: meta.ExpiresAt,
	}, nil
}

// Clear removes all tiers unconditionally. Clearing an empty store is a no-op.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.bulk.Delete(ctx); err != nil {
		return errors.WriteRejected("failed to clear bulk tier", err)
	}
	if err := s.meta.Delete(ctx); err != nil {
		return errors.WriteRejected("failed to clear metadata tier", err)
	}
	return nil
}

// purge is best-effort cleanup on corrupt or expired state.
func (s *Store) purge(ctx context.Context) {
	if err := s.bulk.Delete(ctx); err != nil {
		log.Printf("[Store] WARNING - Failed to purge bulk tier: %v", err)
	}
	if err := s.meta.Delete(ctx); err != nil {
		log.Printf("[Store] WARNING - Failed to purge metadata tier: %v", err)
	}
}
