package repository

import "github.com/savitara/dharma-assistant/internal/models"

// DocumentRepository stores document metadata and persisted chunks.
type DocumentRepository interface {
	// Create inserts a document record.
	Create(doc *models.Document) error

	// Update saves a document record.
	Update(doc *models.Document) error

	// GetByID fetches one document.
	GetByID(id string) (*models.Document, error)

	// List returns a user's documents with paging.
	List(userID string, offset, limit int) ([]*models.Document, int64, error)

	// Delete removes a document and its chunks.
	Delete(id string) error

	// UpdateStatus transitions a document's ingestion status.
	UpdateStatus(id string, status models.DocumentStatus, errorMsg string) error

	// SaveChunks bulk-inserts one document's chunks.
	SaveChunks(chunks []*models.DocumentChunk) error

	// GetChunks returns a document's chunks in chunk index order.
	GetChunks(documentID string) ([]*models.DocumentChunk, error)

	// CountChunks counts a document's persisted chunks.
	CountChunks(documentID string) (int, error)

	// DeleteChunks removes a document's chunks.
	DeleteChunks(documentID string) error

	// LoadAllChunks returns every chunk a user owns, grouped by
	// document and ordered by chunk index, for corpus reload.
	LoadAllChunks(userID string) ([]*models.DocumentChunk, error)
}
