// Package storage persists generated sheets together with a metadata record
// of the batch that produced them.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no file is stored under an ID.
var ErrNotFound = errors.New("file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"` // Batch that produced the file
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Location relative to the storage root
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for output storage operations
type Storage interface {
	// Save stores a file under id and returns its metadata. Files of
	// different ids never share a location.
	Save(ctx context.Context, id uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Open retrieves a file by its ID
	Open(ctx context.Context, id uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns all stored files
	List(ctx context.Context) ([]*FileInfo, error)

	// GetInfo returns metadata for a file without opening it
	GetInfo(ctx context.Context, id uuid.UUID) (*FileInfo, error)
}
