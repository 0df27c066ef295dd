package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/savitara/dharma-assistant/internal/models"
)

func setupTestRepo(t *testing.T) DocumentRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Document{}, &models.DocumentChunk{}))

	return NewDocumentRepository(db)
}

func newTestDocument(id, userID, name string) *models.Document {
	return &models.Document{
		ID:       id,
		UserID:   userID,
		FileName: name,
		FileType: "txt",
		FilePath: "uploads/" + name,
		FileSize: 128,
		Status:   models.DocStatusUploaded,
	}
}

func TestDocumentCRUD(t *testing.T) {
	repo := setupTestRepo(t)

	doc := newTestDocument("doc-1", "user-1", "notes.txt")
	require.NoError(t, repo.Create(doc))
	assert.False(t, doc.UploadedAt.IsZero())

	got, err := repo.GetByID("doc-1")
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", got.FileName)
	assert.Equal(t, models.DocStatusUploaded, got.Status)

	got.ChunkCount = 7
	require.NoError(t, repo.Update(got))
	got, err = repo.GetByID("doc-1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.ChunkCount)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentList(t *testing.T) {
	repo := setupTestRepo(t)

	require.NoError(t, repo.Create(newTestDocument("doc-1", "user-1", "a.txt")))
	require.NoError(t, repo.Create(newTestDocument("doc-2", "user-1", "b.txt")))
	require.NoError(t, repo.Create(newTestDocument("doc-3", "user-2", "c.txt")))

	docs, total, err := repo.List("user-1", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, docs, 2)

	docs, total, err = repo.List("user-1", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, docs, 1)
}

func TestUpdateStatus(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Create(newTestDocument("doc-1", "user-1", "a.txt")))

	require.NoError(t, repo.UpdateStatus("doc-1", models.DocStatusFailed, "parse error"))

	got, err := repo.GetByID("doc-1")
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusFailed, got.Status)
	assert.Equal(t, "parse error", got.Error)

	assert.ErrorIs(t, repo.UpdateStatus("missing", models.DocStatusCompleted, ""), ErrDocumentNotFound)
}

func testChunks(docID, userID string, texts ...string) []*models.DocumentChunk {
	meta := models.ChunkMetadata{Filename: "a.txt", FileType: "txt", TotalChunks: len(texts)}
	chunks := make([]*models.DocumentChunk, 0, len(texts))
	for i, text := range texts {
		chunks = append(chunks, &models.DocumentChunk{
			DocumentID: docID,
			UserID:     userID,
			ChunkIndex: i,
			ChunkText:  text,
			Metadata:   meta.JSON(),
		})
	}
	return chunks
}

func TestChunkLifecycle(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Create(newTestDocument("doc-1", "user-1", "a.txt")))

	require.NoError(t, repo.SaveChunks(testChunks("doc-1", "user-1", "first", "second", "third")))

	count, err := repo.CountChunks("doc-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	chunks, err := repo.GetChunks("doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	// chunk order must reproduce the original index order
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
	}
	assert.Equal(t, "first", chunks[0].ChunkText)

	meta, err := chunks[0].Meta()
	require.NoError(t, err)
	assert.Equal(t, "a.txt", meta.Filename)
	assert.Equal(t, 3, meta.TotalChunks)

	require.NoError(t, repo.DeleteChunks("doc-1"))
	count, err = repo.CountChunks("doc-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLoadAllChunks(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Create(newTestDocument("doc-1", "user-1", "a.txt")))
	require.NoError(t, repo.Create(newTestDocument("doc-2", "user-1", "b.txt")))
	require.NoError(t, repo.Create(newTestDocument("doc-3", "user-2", "c.txt")))

	require.NoError(t, repo.SaveChunks(testChunks("doc-2", "user-1", "b0", "b1")))
	require.NoError(t, repo.SaveChunks(testChunks("doc-1", "user-1", "a0", "a1")))
	require.NoError(t, repo.SaveChunks(testChunks("doc-3", "user-2", "c0")))

	chunks, err := repo.LoadAllChunks("user-1")
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	// grouped by document, ordered by index inside each document
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.ChunkText)
	}
	assert.Equal(t, []string{"a0", "a1", "b0", "b1"}, texts)
}

func TestDeleteDocumentCascades(t *testing.T) {
	repo := setupTestRepo(t)
	require.NoError(t, repo.Create(newTestDocument("doc-1", "user-1", "a.txt")))
	require.NoError(t, repo.SaveChunks(testChunks("doc-1", "user-1", "x", "y")))

	require.NoError(t, repo.Delete("doc-1"))

	_, err := repo.GetByID("doc-1")
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	count, err := repo.CountChunks("doc-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
