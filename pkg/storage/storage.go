package storage

import (
	"io"
)

// FileInfo describes one stored upload.
type FileInfo struct {
	ID       string // unique file identifier
	Name     string // original filename
	Size     int64  // size in bytes
	MimeType string // content type
	Path     string // implementation-specific storage path
}

// Storage holds original uploaded file bytes. Retrieval logic only
// ever reads them back for parsing; implementations exist for the
// local filesystem and MinIO.
type Storage interface {
	// Save stores a file and returns its info.
	Save(reader io.Reader, filename string) (FileInfo, error)

	// Get returns the file content.
	Get(id string) (io.ReadCloser, error)

	// Delete removes the file.
	Delete(id string) error

	// List enumerates stored files.
	List() ([]FileInfo, error)

	// Exists reports whether the file is stored.
	Exists(id string) (bool, error)
}

// Factory builds a storage implementation from its config.
type Factory func(cfg interface{}) (Storage, error)
