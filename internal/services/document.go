package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/savitara/dharma-assistant/internal/corpus"
	"github.com/savitara/dharma-assistant/internal/document"
	"github.com/savitara/dharma-assistant/internal/embedding"
	"github.com/savitara/dharma-assistant/internal/models"
	"github.com/savitara/dharma-assistant/internal/repository"
	"github.com/savitara/dharma-assistant/pkg/storage"
	"github.com/sirupsen/logrus"
)

// DocumentService coordinates upload, parsing, splitting and corpus
// registration of source documents.
type DocumentService struct {
	storage  storage.Storage               // uploaded file store
	splitter document.Splitter             // text fragmenter
	embedder embedding.Client              // optional, nil disables embedding
	repo     repository.DocumentRepository // document metadata store
	corpus   *corpus.Corpus                // in-memory retrieval corpus
	timeout  time.Duration                 // per-document processing timeout
	logger   *logrus.Logger
}

// DocumentOption configures the document service.
type DocumentOption func(*DocumentService)

// NewDocumentService creates the document service.
func NewDocumentService(
	store storage.Storage,
	splitter document.Splitter,
	repo repository.DocumentRepository,
	corp *corpus.Corpus,
	opts ...DocumentOption,
) *DocumentService {
	srv := &DocumentService{
		storage:  store,
		splitter: splitter,
		repo:     repo,
		corpus:   corp,
		timeout:  time.Minute * 5,
		logger:   logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// WithEmbedder sets the optional embedding client. Embedding failures
// are logged per fragment and never block ingestion.
func WithEmbedder(embedder embedding.Client) DocumentOption {
	return func(s *DocumentService) {
		s.embedder = embedder
	}
}

// WithProcessTimeout sets the per-document processing timeout.
func WithProcessTimeout(timeout time.Duration) DocumentOption {
	return func(s *DocumentService) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithDocumentLogger sets the logger.
func WithDocumentLogger(logger *logrus.Logger) DocumentOption {
	return func(s *DocumentService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Upload stores a file, records its metadata and processes it into the
// corpus. Processing failure is recorded on the document instead of
// failing the upload, so one bad file never aborts a batch.
func (s *DocumentService) Upload(ctx context.Context, reader io.Reader, filename, userID string) (*models.Document, error) {
	info, err := s.storage.Save(reader, filename)
	if err != nil {
		return nil, fmt.Errorf("failed to store file %s: %w", filename, err)
	}

	doc := &models.Document{
		ID:       info.ID,
		UserID:   userID,
		FileName: info.Name,
		FileType: fileType(info.Name),
		FilePath: info.Path,
		FileSize: info.Size,
		Status:   models.DocStatusUploaded,
	}
	if err := s.repo.Create(doc); err != nil {
		return nil, fmt.Errorf("failed to record document %s: %w", filename, err)
	}

	if err := s.Process(ctx, doc); err != nil {
		s.logger.WithFields(logrus.Fields{
			"document_id": doc.ID,
			"file_name":   doc.FileName,
		}).WithError(err).Error("document processing failed")
	}

	return doc, nil
}

// Process parses, splits and registers one uploaded document. On
// failure the document is marked failed with the error recorded.
func (s *DocumentService) Process(ctx context.Context, doc *models.Document) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.UpdateStatus(doc.ID, models.DocStatusProcessing, ""); err != nil {
		return err
	}
	doc.Status = models.DocStatusProcessing

	err := s.process(ctx, doc)
	if err != nil {
		doc.Status = models.DocStatusFailed
		doc.Error = err.Error()
		if updErr := s.repo.UpdateStatus(doc.ID, models.DocStatusFailed, err.Error()); updErr != nil {
			s.logger.WithError(updErr).Warn("failed to record document failure")
		}
		return err
	}

	now := time.Now()
	doc.Status = models.DocStatusCompleted
	doc.ProcessedAt = &now
	doc.Error = ""
	return s.repo.Update(doc)
}

func (s *DocumentService) process(ctx context.Context, doc *models.Document) error {
	parser, err := document.ParserFactory(doc.FileName)
	if err != nil {
		return err
	}

	reader, err := s.storage.Get(doc.ID)
	if err != nil {
		return fmt.Errorf("failed to read stored file: %w", err)
	}
	defer reader.Close()

	text, err := parser.ParseReader(reader, doc.FileName)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", doc.FileName, err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("document %s contains no text", doc.FileName)
	}

	contents, err := s.splitter.Split(text)
	if err != nil {
		return fmt.Errorf("failed to split %s: %w", doc.FileName, err)
	}
	if len(contents) == 0 {
		return fmt.Errorf("document %s produced no fragments", doc.FileName)
	}

	sourceType := corpus.SourceTypeFor(doc.FileType)
	meta := models.ChunkMetadata{
		Filename:    doc.FileName,
		FileType:    doc.FileType,
		TotalChunks: len(contents),
	}

	fragments := make([]corpus.Fragment, 0, len(contents))
	chunks := make([]*models.DocumentChunk, 0, len(contents))
	for _, content := range contents {
		fragment := corpus.Fragment{
			Text:       content.Text,
			SourceFile: doc.FileName,
			SourceType: sourceType,
			Index:      content.Index,
		}
		if s.embedder != nil {
			vector, embErr := s.embedder.Embed(ctx, content.Text)
			if embErr != nil {
				// Lexical scoring still works without the vector.
				s.logger.WithFields(logrus.Fields{
					"document_id": doc.ID,
					"chunk_index": content.Index,
				}).WithError(embErr).Warn("embedding failed, keeping fragment without vector")
			} else {
				fragment.Embedding = vector
			}
		}
		fragments = append(fragments, fragment)
		chunks = append(chunks, &models.DocumentChunk{
			DocumentID: doc.ID,
			UserID:     doc.UserID,
			ChunkIndex: content.Index,
			ChunkText:  content.Text,
			Metadata:   meta.JSON(),
		})
	}

	// Reprocessing replaces any chunks from an earlier attempt.
	if err := s.repo.DeleteChunks(doc.ID); err != nil {
		return fmt.Errorf("failed to clear previous chunks: %w", err)
	}
	if err := s.repo.SaveChunks(chunks); err != nil {
		return fmt.Errorf("failed to persist chunks: %w", err)
	}

	s.corpus.RemoveFile(doc.FileName)
	s.corpus.AddBatch(fragments)
	doc.ChunkCount = len(fragments)

	s.logger.WithFields(logrus.Fields{
		"document_id": doc.ID,
		"file_name":   doc.FileName,
		"chunks":      len(fragments),
	}).Info("document processed")

	return nil
}

// GetDocument returns one document's metadata.
func (s *DocumentService) GetDocument(id string) (*models.Document, error) {
	return s.repo.GetByID(id)
}

// ListDocuments returns a user's documents with paging.
func (s *DocumentService) ListDocuments(userID string, offset, limit int) ([]*models.Document, int64, error) {
	return s.repo.List(userID, offset, limit)
}

// DeleteDocument removes a document from storage, the database and the
// corpus.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(id); err != nil {
		// The database record is authoritative, keep going.
		s.logger.WithField("document_id", id).WithError(err).Warn("failed to delete stored file")
	}

	s.corpus.RemoveFile(doc.FileName)
	return s.repo.Delete(id)
}

// ReloadCorpus rebuilds the in-memory corpus from the persisted chunks
// of one user, preserving each document's original fragment order.
func (s *DocumentService) ReloadCorpus(ctx context.Context, userID string) (int, error) {
	chunks, err := s.repo.LoadAllChunks(userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load persisted chunks: %w", err)
	}

	fragments := make([]corpus.Fragment, 0, len(chunks))
	for _, chunk := range chunks {
		meta, metaErr := chunk.Meta()
		if metaErr != nil {
			s.logger.WithFields(logrus.Fields{
				"document_id": chunk.DocumentID,
				"chunk_index": chunk.ChunkIndex,
			}).WithError(metaErr).Warn("skipping chunk with unreadable metadata")
			continue
		}
		fragments = append(fragments, corpus.Fragment{
			Text:       chunk.ChunkText,
			SourceFile: meta.Filename,
			SourceType: corpus.SourceTypeFor(meta.FileType),
			Index:      chunk.ChunkIndex,
		})
	}

	s.corpus.ReplaceAll(fragments)
	s.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"fragments": len(fragments),
	}).Info("corpus reloaded from persisted chunks")

	return len(fragments), nil
}

// fileType returns the lowercased extension without the dot.
func fileType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
