package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Archive keeps a copy of every uploaded source file under the data
// directory, so the raw spreadsheet outlives the session that imported it.
type Archive struct {
	basePath string
}

// NewArchive creates an archive rooted at basePath.
func NewArchive(basePath string) *Archive {
	return &Archive{basePath: basePath}
}

// Store saves a copy of src under a unique name derived from the original
// filename, a timestamp and a short uuid, and returns the stored path.
func (a *Archive) Store(filename string, src io.Reader) (string, error) {
	if err := os.MkdirAll(a.basePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	// Uploaded filenames are attacker-controlled; only the base name may
	// contribute to the archive path.
	filename = filepath.Base(filename)

	ext := filepath.Ext(filename)
	baseName := filename[:len(filename)-len(ext)]
	timestamp := time.Now().Format("20060102_150405")
	uniqueName := fmt.Sprintf("%s_%s_%s%s", baseName, timestamp, uuid.New().String()[:8], ext)

	filePath := filepath.Join(a.basePath, uniqueName)

	destFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, src); err != nil {
		os.Remove(filePath) // Clean up on failure
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}

	return filePath, nil
}
