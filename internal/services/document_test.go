package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/savitara/dharma-assistant/internal/corpus"
	"github.com/savitara/dharma-assistant/internal/document"
	"github.com/savitara/dharma-assistant/internal/models"
	"github.com/savitara/dharma-assistant/internal/repository"
	"github.com/savitara/dharma-assistant/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// failingEmbedder always errors, exercising the lexical-only path.
type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding backend unavailable")
}

func (failingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding backend unavailable")
}

func (failingEmbedder) Name() string {
	return "failing"
}

type documentTestEnv struct {
	service *DocumentService
	repo    repository.DocumentRepository
	corpus  *corpus.Corpus
}

func setupDocumentService(t *testing.T, opts ...DocumentOption) *documentTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Document{}, &models.DocumentChunk{}))
	repo := repository.NewDocumentRepository(db)

	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	corp := corpus.New()
	splitter := document.NewSentenceSplitter(document.DefaultSplitterConfig())
	return &documentTestEnv{
		service: NewDocumentService(store, splitter, repo, corp, opts...),
		repo:    repo,
		corpus:  corp,
	}
}

func TestUploadProcessesDocument(t *testing.T) {
	env := setupDocumentService(t)

	text := "Dharma is the eternal law of the cosmos. Karma binds every action to its fruit. Moksha is liberation from the cycle of rebirth."
	doc, err := env.service.Upload(context.Background(), strings.NewReader(text), "dharma.txt", "user1")
	require.NoError(t, err)

	assert.Equal(t, models.DocStatusCompleted, doc.Status)
	assert.NotNil(t, doc.ProcessedAt)
	assert.Positive(t, doc.ChunkCount)
	assert.Equal(t, "txt", doc.FileType)

	stored, err := env.repo.GetByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DocStatusCompleted, stored.Status)

	chunks, err := env.repo.GetChunks(doc.ID)
	require.NoError(t, err)
	assert.Len(t, chunks, doc.ChunkCount)
	meta, err := chunks[0].Meta()
	require.NoError(t, err)
	assert.Equal(t, "dharma.txt", meta.Filename)
	assert.Equal(t, "txt", meta.FileType)
	assert.Equal(t, doc.ChunkCount, meta.TotalChunks)

	assert.Equal(t, doc.ChunkCount, env.corpus.Len())
}

func TestUploadTabularDocument(t *testing.T) {
	env := setupDocumentService(t)

	csv := "Tithi,Ekadashi\nNakshatra,Rohini\n"
	doc, err := env.service.Upload(context.Background(), strings.NewReader(csv), "panchang.csv", "user1")
	require.NoError(t, err)

	assert.Equal(t, models.DocStatusCompleted, doc.Status)
	fragments := env.corpus.Snapshot()
	require.NotEmpty(t, fragments)
	assert.Equal(t, corpus.SourceTabular, fragments[0].SourceType)
	assert.Contains(t, fragments[0].Text, "Ekadashi")
}

func TestUploadUnsupportedTypeMarksFailed(t *testing.T) {
	env := setupDocumentService(t)

	doc, err := env.service.Upload(context.Background(), strings.NewReader("x"), "image.png", "user1")
	require.NoError(t, err, "upload itself must not fail")

	assert.Equal(t, models.DocStatusFailed, doc.Status)
	assert.NotEmpty(t, doc.Error)
	assert.Zero(t, env.corpus.Len())
}

func TestFailedDocumentDoesNotBlockOthers(t *testing.T) {
	env := setupDocumentService(t)

	_, err := env.service.Upload(context.Background(), strings.NewReader("x"), "broken.png", "user1")
	require.NoError(t, err)

	doc, err := env.service.Upload(context.Background(), strings.NewReader("Dharma is the cosmic moral order that sustains all beings."), "ok.txt", "user1")
	require.NoError(t, err)

	assert.Equal(t, models.DocStatusCompleted, doc.Status)
	assert.Positive(t, env.corpus.Len())
}

func TestEmbeddingFailureNeverBlocksIngestion(t *testing.T) {
	env := setupDocumentService(t, WithEmbedder(failingEmbedder{}))

	doc, err := env.service.Upload(context.Background(), strings.NewReader("Dharma is the eternal law that upholds the universe."), "dharma.txt", "user1")
	require.NoError(t, err)

	assert.Equal(t, models.DocStatusCompleted, doc.Status)
	fragments := env.corpus.Snapshot()
	require.NotEmpty(t, fragments)
	assert.Empty(t, fragments[0].Embedding)
}

func TestDeleteDocumentRemovesEverywhere(t *testing.T) {
	env := setupDocumentService(t)

	doc, err := env.service.Upload(context.Background(), strings.NewReader("Diwali is the festival of lights celebrated across India."), "diwali.txt", "user1")
	require.NoError(t, err)
	require.Positive(t, env.corpus.Len())

	require.NoError(t, env.service.DeleteDocument(context.Background(), doc.ID))

	assert.Zero(t, env.corpus.Len())
	_, err = env.repo.GetByID(doc.ID)
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)
	count, err := env.repo.CountChunks(doc.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReloadCorpusRestoresFragmentOrder(t *testing.T) {
	env := setupDocumentService(t)

	text := "The first teaching concerns dharma itself. The second teaching explains karma in detail. The third teaching describes moksha and liberation."
	doc, err := env.service.Upload(context.Background(), strings.NewReader(text), "teachings.txt", "user1")
	require.NoError(t, err)
	before := env.corpus.Snapshot()
	require.NotEmpty(t, before)

	// Simulate a restart: the in-memory corpus is gone.
	env.corpus.Clear()
	require.Zero(t, env.corpus.Len())

	loaded, err := env.service.ReloadCorpus(context.Background(), "user1")
	require.NoError(t, err)
	assert.Equal(t, len(before), loaded)

	after := env.corpus.Snapshot()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Text, after[i].Text)
		assert.Equal(t, before[i].Index, after[i].Index)
		assert.Equal(t, doc.FileName, after[i].SourceFile)
	}
}

func TestReprocessReplacesChunks(t *testing.T) {
	env := setupDocumentService(t)

	doc, err := env.service.Upload(context.Background(), strings.NewReader("Dharma is the foundation of a righteous life."), "dharma.txt", "user1")
	require.NoError(t, err)
	require.Equal(t, models.DocStatusCompleted, doc.Status)

	// Reprocessing the same document must not duplicate chunks.
	require.NoError(t, env.service.Process(context.Background(), doc))

	count, err := env.repo.CountChunks(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ChunkCount, count)
	assert.Equal(t, doc.ChunkCount, env.corpus.Len())
}
