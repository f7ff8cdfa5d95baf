package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileMetaTier stores the metadata record as a small JSON file. Writes go
// through a temp-file-and-rename so a crash mid-write never leaves a torn
// metadata record behind.
type FileMetaTier struct {
	path string
}

// NewFileMetaTier creates a metadata tier backed by the given file path.
func NewFileMetaTier(path string) *FileMetaTier {
	return &FileMetaTier{path: path}
}

// Put atomically replaces the metadata record.
func (t *FileMetaTier) Put(ctx context.Context, meta Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to serialize metadata: %w", err)
	}
	return atomicWriteFile(t.path, data, 0644)
}

// Get returns the stored metadata, or ok=false when the file is absent.
// An unreadable or undecodable file is reported as an error; callers treat
// that as corrupt state.
func (t *FileMetaTier) Get(ctx context.Context) (Metadata, bool, error) {
	data, err := os.ReadFile(t.path)
	if os.IsNotExist(err) {
		return Metadata{}, false, nil
	}
	if err != nil {
		return Metadata{}, false, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, false, fmt.Errorf("failed to decode metadata file: %w", err)
	}
	return meta, true, nil
}

// Delete removes the metadata file; a missing file is a no-op.
func (t *FileMetaTier) Delete(ctx context.Context) error {
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata file: %w", err)
	}
	return nil
}

// atomicWriteFile writes data to a temporary file, syncs it, then renames it
// over the target path so the file is either fully written or not written at
// all.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}
