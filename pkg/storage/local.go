package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrFileNotFound is returned when no stored file matches an id.
var ErrFileNotFound = fmt.Errorf("file not found")

// LocalStorage keeps uploads on the local filesystem. Every upload
// gets its own id-named directory holding the file under its original
// name, so lookups by id never need an index.
type LocalStorage struct {
	basePath string
}

// LocalConfig holds local storage settings.
type LocalConfig struct {
	Path string // base directory
}

// NewLocalStorage creates a local storage rooted at the configured
// path, creating it if needed.
func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	absPath, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve storage path: %w", err)
	}
	if err := os.MkdirAll(absPath, 0755); err != nil {
		return nil, fmt.Errorf("cannot create storage directory: %w", err)
	}
	return &LocalStorage{basePath: absPath}, nil
}

// Save stores the file under a fresh id.
func (s *LocalStorage) Save(reader io.Reader, filename string) (FileInfo, error) {
	id := uuid.New().String()
	name := filepath.Base(filename)

	dir := filepath.Join(s.basePath, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return FileInfo{}, fmt.Errorf("cannot create upload directory: %w", err)
	}

	target := filepath.Join(dir, name)
	file, err := os.Create(target)
	if err != nil {
		return FileInfo{}, fmt.Errorf("cannot create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		os.RemoveAll(dir)
		return FileInfo{}, fmt.Errorf("cannot write file: %w", err)
	}

	return FileInfo{
		ID:       id,
		Name:     name,
		Size:     size,
		MimeType: getMimeType(name),
		Path:     filepath.Join(id, name),
	}, nil
}

// resolve returns the stored file path for an id.
func (s *LocalStorage) resolve(id string) (string, error) {
	dir := filepath.Join(s.basePath, id)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrFileNotFound
		}
		return "", fmt.Errorf("cannot read upload directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			return filepath.Join(dir, entry.Name()), nil
		}
	}
	return "", ErrFileNotFound
}

// Get opens the file with the given id.
func (s *LocalStorage) Get(id string) (io.ReadCloser, error) {
	path, err := s.resolve(id)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Delete removes the file with the given id.
func (s *LocalStorage) Delete(id string) error {
	if _, err := s.resolve(id); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(s.basePath, id))
}

// List returns every stored file.
func (s *LocalStorage) List() ([]FileInfo, error) {
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, fmt.Errorf("cannot list storage directory: %w", err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id := entry.Name()
		path, err := s.resolve(id)
		if err != nil {
			continue
		}
		stat, err := os.Stat(path)
		if err != nil {
			continue
		}
		name := filepath.Base(path)
		files = append(files, FileInfo{
			ID:       id,
			Name:     name,
			Size:     stat.Size(),
			MimeType: getMimeType(name),
			Path:     filepath.Join(id, name),
		})
	}
	return files, nil
}

// Exists reports whether a file with the given id is stored.
func (s *LocalStorage) Exists(id string) (bool, error) {
	_, err := s.resolve(id)
	if err == ErrFileNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// getMimeType maps a file extension to its content type.
func getMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
