package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/savitara/dharma-assistant/api/middleware"
	"github.com/savitara/dharma-assistant/api/model"
	"github.com/savitara/dharma-assistant/internal/services"
	"github.com/sirupsen/logrus"
)

// defaultUserID is used when the caller does not identify itself.
const defaultUserID = "default"

// ChatHandler serves question answering requests.
type ChatHandler struct {
	assistant *services.AssistantService
	logger    *logrus.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(assistant *services.AssistantService) *ChatHandler {
	return &ChatHandler{
		assistant: assistant,
		logger:    middleware.GetLogger(),
	}
}

// Ask resolves one question.
// POST /api/ask
func (h *ChatHandler) Ask(c *gin.Context) {
	var req model.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Warn("Invalid ask request")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			"invalid request parameters",
		))
		return
	}

	userID := req.UserID
	if userID == "" {
		userID = defaultUserID
	}

	h.logger.WithFields(logrus.Fields{
		"question": req.Question,
		"language": req.Language,
		"trace_id": c.GetString("TraceID"),
	}).Info("Question received")

	answer, err := h.assistant.Respond(c.Request.Context(), userID, req.Question, req.Language)
	if err != nil {
		h.logger.WithError(err).WithField("question", req.Question).Warn("Failed to resolve question")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(
			http.StatusBadRequest,
			err.Error(),
		))
		return
	}

	resp := model.NewSuccessResponse(model.AskResponse{
		Question: answer.Query,
		Answer:   answer.Answer,
		Kind:     string(answer.Kind),
		Language: answer.Language,
		Sources:  answer.Sources,
	})
	resp.TraceID = c.GetString("TraceID")
	c.JSON(http.StatusOK, resp)
}
