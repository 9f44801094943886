package chat

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pdfchat-backend/internal/genai"
	"pdfchat-backend/internal/records"
	"pdfchat-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ask", h.ask)
	rg.GET("/history", h.history)
}

type askRequest struct {
	UserID   string `json:"user_id"`
	DocID    string `json:"doc_id"`
	Question string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *Handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	c.Set("userId", strings.TrimSpace(req.UserID))
	c.Set("docId", strings.TrimSpace(req.DocID))

	answer, err := h.Svc.Ask(c.Request.Context(), req.UserID, req.DocID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, genai.ErrEmptyQuestion):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, records.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "Document not found for this user.", nil)
		case errors.Is(err, genai.ErrQuotaExhausted):
			respond.Error(c, http.StatusServiceUnavailable, "quota_exhausted", genai.QuotaRemediation, nil)
		case errors.Is(err, genai.ErrGenerationFailed):
			respond.Error(c, http.StatusBadGateway, "generation_failed", "AI service temporarily unavailable. Please try again.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to process question.", nil)
		}
		return
	}

	respond.OK(c, askResponse{Answer: answer})
}

// history returns the conversation for a document, or the user's document
// list when doc_id is omitted.
func (h *Handler) history(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	docID := strings.TrimSpace(c.Query("doc_id"))
	if userID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "user_id is required", nil)
		return
	}
	c.Set("userId", userID)

	if docID == "" {
		docs, err := h.Svc.Documents(c.Request.Context(), userID)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to fetch history.", nil)
			return
		}
		if docs == nil {
			docs = []records.DocumentSummary{}
		}
		respond.OK(c, docs)
		return
	}
	c.Set("docId", docID)

	msgs, err := h.Svc.History(c.Request.Context(), userID, docID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to fetch history.", nil)
		return
	}
	if msgs == nil {
		msgs = []records.Message{}
	}
	respond.OK(c, msgs)
}
