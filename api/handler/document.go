package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/savitara/dharma-assistant/api/middleware"
	"github.com/savitara/dharma-assistant/api/model"
	"github.com/savitara/dharma-assistant/internal/repository"
	"github.com/savitara/dharma-assistant/internal/services"
	"github.com/sirupsen/logrus"
)

// supported upload extensions
var validExtensions = map[string]struct{}{
	".pdf":      {},
	".md":       {},
	".markdown": {},
	".txt":      {},
	".csv":      {},
	".json":     {},
}

// DocumentHandler serves document management requests.
type DocumentHandler struct {
	documents *services.DocumentService
	logger    *logrus.Logger
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		logger:    middleware.GetLogger(),
	}
}

// Upload accepts a document and ingests it into the corpus.
// POST /api/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	var req model.DocumentUploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid document upload request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid request parameters",
		))
		return
	}

	ext := strings.ToLower(filepath.Ext(req.File.Filename))
	if _, ok := validExtensions[ext]; !ok {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"unsupported file type, allowed: .pdf, .md, .markdown, .txt, .csv, .json",
		))
		return
	}

	file, err := req.File.Open()
	if err != nil {
		h.logger.WithError(err).Error("Failed to open uploaded file")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to read uploaded file",
		))
		return
	}
	defer file.Close()

	userID := req.UserID
	if userID == "" {
		userID = defaultUserID
	}

	doc, err := h.documents.Upload(c.Request.Context(), file, req.File.Filename, userID)
	if err != nil {
		h.logger.WithError(err).WithField("filename", req.File.Filename).Error("Document upload failed")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to store document",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.DocumentUploadResponse{
		FileID:   doc.ID,
		FileName: doc.FileName,
		Status:   string(doc.Status),
		Chunks:   doc.ChunkCount,
	}))
}

// Status reports one document's ingestion status.
// GET /api/documents/:id/status
func (h *DocumentHandler) Status(c *gin.Context) {
	id := c.Param("id")

	doc, err := h.documents.GetDocument(id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"document not found",
			))
			return
		}
		h.logger.WithError(err).WithField("document_id", id).Error("Failed to load document")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to load document",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.DocumentStatusResponse{
		FileID:     doc.ID,
		FileName:   doc.FileName,
		Status:     string(doc.Status),
		Error:      doc.Error,
		Chunks:     doc.ChunkCount,
		UploadedAt: doc.UploadedAt.Format(time.RFC3339),
		UpdatedAt:  doc.UpdatedAt.Format(time.RFC3339),
	}))
}

// List returns a page of the caller's documents.
// GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	var req model.DocumentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid query parameters",
		))
		return
	}

	if req.UserID == "" {
		req.UserID = defaultUserID
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}

	docs, total, err := h.documents.ListDocuments(req.UserID, (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list documents")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to list documents",
		))
		return
	}

	infos := make([]model.DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, model.DocumentInfo{
			FileID:     doc.ID,
			FileName:   doc.FileName,
			FileType:   doc.FileType,
			Status:     string(doc.Status),
			Chunks:     doc.ChunkCount,
			UploadedAt: doc.UploadedAt,
		})
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.DocumentListResponse{
		Total:     total,
		Page:      req.Page,
		PageSize:  req.PageSize,
		Documents: infos,
	}))
}

// Delete removes a document from storage, database and corpus.
// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.documents.DeleteDocument(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, model.NewErrorResponse(
				http.StatusNotFound,
				"document not found",
			))
			return
		}
		h.logger.WithError(err).WithField("document_id", id).Error("Failed to delete document")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to delete document",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.DocumentDeleteResponse{
		Success: true,
		FileID:  id,
	}))
}

// Reload rebuilds the in-memory corpus from persisted chunks.
// POST /api/documents/reload
func (h *DocumentHandler) Reload(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		userID = defaultUserID
	}

	fragments, err := h.documents.ReloadCorpus(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Corpus reload failed")
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse(
			http.StatusInternalServerError,
			"failed to reload corpus",
		))
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.ReloadResponse{
		Fragments: fragments,
	}))
}
