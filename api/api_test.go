package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/savitara/dharma-assistant/api/handler"
	"github.com/savitara/dharma-assistant/api/model"
	"github.com/savitara/dharma-assistant/internal/cache"
	"github.com/savitara/dharma-assistant/internal/corpus"
	"github.com/savitara/dharma-assistant/internal/document"
	"github.com/savitara/dharma-assistant/internal/locale"
	"github.com/savitara/dharma-assistant/internal/models"
	"github.com/savitara/dharma-assistant/internal/repository"
	"github.com/savitara/dharma-assistant/internal/services"
	"github.com/savitara/dharma-assistant/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Document{}, &models.DocumentChunk{}))
	repo := repository.NewDocumentRepository(db)

	store, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)

	bundle, err := locale.Load("")
	require.NoError(t, err)

	answerCache, err := cache.NewCache(cache.DefaultConfig())
	require.NoError(t, err)

	corp := corpus.New()
	splitter := document.NewSentenceSplitter(document.DefaultSplitterConfig())

	docService := services.NewDocumentService(store, splitter, repo, corp)
	assistant := services.NewAssistantService(corp, bundle, answerCache)

	return SetupRouter(
		handler.NewDocumentHandler(docService),
		handler.NewChatHandler(assistant),
	)
}

func performRequest(router *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func askJSON(t *testing.T, router *gin.Engine, question string) (*model.Response, model.AskResponse) {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"question": question, "language": "english"})
	require.NoError(t, err)

	w := performRequest(router, http.MethodPost, "/api/ask", bytes.NewBuffer(payload), "application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var ask model.AskResponse
	require.NoError(t, json.Unmarshal(data, &ask))
	return &resp, ask
}

func uploadFile(t *testing.T, router *gin.Engine, filename, content string) model.DocumentUploadResponse {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := performRequest(router, http.MethodPost, "/api/documents", &buf, writer.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var upload model.DocumentUploadResponse
	require.NoError(t, json.Unmarshal(data, &upload))
	return upload
}

func TestHealthEndpoint(t *testing.T) {
	router := setupTestRouter(t)

	w := performRequest(router, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestAskRequiresQuestion(t *testing.T) {
	router := setupTestRouter(t)

	w := performRequest(router, http.MethodPost, "/api/ask", bytes.NewBufferString(`{"language":"english"}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAskGreeting(t *testing.T) {
	router := setupTestRouter(t)

	resp, ask := askJSON(t, router, "Namaste")
	assert.Equal(t, "greeting", ask.Kind)
	assert.NotEmpty(t, ask.Answer)
	assert.NotEmpty(t, resp.TraceID)
}

func TestAskRejectsOffTopic(t *testing.T) {
	router := setupTestRouter(t)

	_, ask := askJSON(t, router, "How do I fix my car engine?")
	assert.Equal(t, "rejected", ask.Kind)
}

func TestUploadAskAndDeleteFlow(t *testing.T) {
	router := setupTestRouter(t)

	upload := uploadFile(t, router, "festivals.txt",
		"Question: What is the festival of lights in dharma tradition? Answer: Diwali celebrates the victory of light over darkness.")
	require.NotEmpty(t, upload.FileID)
	assert.Equal(t, string(models.DocStatusCompleted), upload.Status)
	assert.Positive(t, upload.Chunks)

	// status endpoint sees the completed ingestion
	w := performRequest(router, http.MethodGet, fmt.Sprintf("/api/documents/%s/status", upload.FileID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(models.DocStatusCompleted))

	// the uploaded document answers questions
	_, ask := askJSON(t, router, "What is the festival of lights in dharma tradition?")
	assert.Equal(t, "direct", ask.Kind)
	assert.Contains(t, ask.Answer, "Diwali celebrates the victory of light over darkness")
	assert.Contains(t, ask.Sources, "festivals.txt")

	// listing shows the document
	w = performRequest(router, http.MethodGet, "/api/documents", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "festivals.txt")

	// delete removes it
	w = performRequest(router, http.MethodDelete, "/api/documents/"+upload.FileID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, fmt.Sprintf("/api/documents/%s/status", upload.FileID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	router := setupTestRouter(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "image.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not a document"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := performRequest(router, http.MethodPost, "/api/documents", &buf, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReloadRestoresCorpus(t *testing.T) {
	router := setupTestRouter(t)

	uploadFile(t, router, "dharma.txt", "Dharma is the eternal cosmic law that sustains the universe and all beings within it.")

	w := performRequest(router, http.MethodPost, "/api/documents/reload", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 0, resp.Code)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var reload model.ReloadResponse
	require.NoError(t, json.Unmarshal(data, &reload))
	assert.Positive(t, reload.Fragments)
}
