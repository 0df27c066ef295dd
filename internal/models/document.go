package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentStatus tracks a document through ingestion.
type DocumentStatus string

const (
	// DocStatusUploaded means the file is stored but not yet chunked.
	DocStatusUploaded DocumentStatus = "uploaded"
	// DocStatusProcessing means chunking is in progress.
	DocStatusProcessing DocumentStatus = "processing"
	// DocStatusCompleted means the document's chunks are retrievable.
	DocStatusCompleted DocumentStatus = "completed"
	// DocStatusFailed means ingestion failed; the document contributes
	// no chunks but does not block other uploads.
	DocStatusFailed DocumentStatus = "failed"
)

// Document stores the metadata of one uploaded file.
type Document struct {
	ID          string         `gorm:"primaryKey"`
	UserID      string         `gorm:"not null;index"`
	FileName    string         `gorm:"not null"`
	FileType    string         `gorm:"not null"`
	FilePath    string         `gorm:"not null"`
	FileSize    int64          `gorm:"not null"`
	Status      DocumentStatus `gorm:"not null;index"`
	UploadedAt  time.Time      `gorm:"not null;index"`
	ProcessedAt *time.Time     `gorm:"index"`
	UpdatedAt   time.Time      `gorm:"not null"`
	Error       string         `gorm:"type:text"`
	ChunkCount  int            `gorm:"not null;default:0"`
	Metadata    datatypes.JSON `gorm:"type:json"`
}

// BeforeCreate sets the timestamps on insert.
func (d *Document) BeforeCreate(tx *gorm.DB) (err error) {
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now()
	}
	d.UpdatedAt = time.Now()
	return nil
}

// BeforeUpdate refreshes the update timestamp.
func (d *Document) BeforeUpdate(tx *gorm.DB) (err error) {
	d.UpdatedAt = time.Now()
	return nil
}

// TableName fixes the table name.
func (Document) TableName() string {
	return "documents"
}

// ChunkMetadata is the metadata carried by every persisted chunk.
type ChunkMetadata struct {
	Filename    string `json:"filename"`
	FileType    string `json:"fileType"`
	TotalChunks int    `json:"totalChunks"`
}

// JSON renders the metadata as a gorm JSON column value.
func (m ChunkMetadata) JSON() datatypes.JSON {
	data, _ := json.Marshal(m)
	return datatypes.JSON(data)
}

// DocumentChunk persists one corpus fragment. Reloading a user's
// chunks ordered by chunk index reproduces each document's original
// fragment order.
type DocumentChunk struct {
	ID         uint           `gorm:"primaryKey;autoIncrement"`
	DocumentID string         `gorm:"not null;index:idx_doc_chunk,unique"`
	UserID     string         `gorm:"not null;index"`
	ChunkIndex int            `gorm:"not null;index:idx_doc_chunk,unique"`
	ChunkText  string         `gorm:"type:text;not null"`
	Metadata   datatypes.JSON `gorm:"type:json"`
	CreatedAt  time.Time      `gorm:"not null"`
	UpdatedAt  time.Time      `gorm:"not null"`
}

// BeforeCreate sets the timestamps on insert.
func (c *DocumentChunk) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// BeforeUpdate refreshes the update timestamp.
func (c *DocumentChunk) BeforeUpdate(tx *gorm.DB) (err error) {
	c.UpdatedAt = time.Now()
	return nil
}

// TableName fixes the table name.
func (DocumentChunk) TableName() string {
	return "document_chunks"
}

// Meta decodes the chunk's metadata column.
func (c *DocumentChunk) Meta() (ChunkMetadata, error) {
	var m ChunkMetadata
	if len(c.Metadata) == 0 {
		return m, nil
	}
	err := json.Unmarshal(c.Metadata, &m)
	return m, err
}
