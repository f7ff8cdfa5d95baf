package store

import (
	"context"
	"fmt"
	"sync"
)

// MemoryBulkTier is a fully in-memory bulk tier for tests and ephemeral runs.
type MemoryBulkTier struct {
	mu       sync.Mutex
	payload  []byte
	present  bool
	FailPuts bool // when set, Put rejects writes
	FailGets bool // when set, Get reports an unreadable medium
}

// NewMemoryBulkTier creates an empty in-memory bulk tier.
func NewMemoryBulkTier() *MemoryBulkTier {
	return &MemoryBulkTier{}
}

func (t *MemoryBulkTier) Put(ctx context.Context, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailPuts {
		return fmt.Errorf("bulk medium rejected write")
	}
	t.payload = append([]byte(nil), payload...)
	t.present = true
	return nil
}

func (t *MemoryBulkTier) Get(ctx context.Context) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailGets {
		return nil, false, fmt.Errorf("bulk medium unreadable")
	}
	if !t.present {
		return nil, false, nil
	}
	return append([]byte(nil), t.payload...), true, nil
}

func (t *MemoryBulkTier) Delete(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.payload = nil
	t.present = false
	return nil
}

// Present reports whether a payload is stored.
func (t *MemoryBulkTier) Present() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.present
}

// MemoryMetaTier is a fully in-memory metadata tier for tests.
type MemoryMetaTier struct {
	mu       sync.Mutex
	meta     Metadata
	present  bool
	FailPuts bool
	FailGets bool
}

// NewMemoryMetaTier creates an empty in-memory metadata tier.
func NewMemoryMetaTier() *MemoryMetaTier {
	return &MemoryMetaTier{}
}

func (t *MemoryMetaTier) Put(ctx context.Context, meta Metadata) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailPuts {
		return fmt.Errorf("metadata medium rejected write")
	}
	t.meta = meta
	t.present = true
	return nil
}

func (t *MemoryMetaTier) Get(ctx context.Context) (Metadata, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.FailGets {
		return Metadata{}, false, fmt.Errorf("metadata medium unreadable")
	}
	if !t.present {
		return Metadata{}, false, nil
	}
	return t.meta, true, nil
}

func (t *MemoryMetaTier) Delete(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.meta = Metadata{}
	t.present = false
	return nil
}

// Present reports whether metadata is stored.
func (t *MemoryMetaTier) Present() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.present
}
