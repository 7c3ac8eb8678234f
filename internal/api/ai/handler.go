// Package ai exposes the endpoints the asynchronous AI backend and the
// polling client use to exchange payloads through the correlation store.
package ai

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/domain"
	"github.com/AmonApolonio/lookchat/internal/store"
)

// Handler handles webhook ingestion and response polling.
type Handler struct {
	responses *store.ResponseStore
	logger    *zap.Logger
}

// NewHandler creates a new AI handler.
func NewHandler(responses *store.ResponseStore, logger *zap.Logger) *Handler {
	return &Handler{responses: responses, logger: logger}
}

// RegisterRoutes registers AI-facing routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/ai-webhook", h.Webhook)
	r.GET("/ai-webhook", h.Liveness)
	r.GET("/check-ai-response", h.Poll)
}

// Webhook receives an asynchronous AI payload, validates and classifies
// it, and stores it for the owning conversation. A payload already waiting
// for that conversation is overwritten: the store keeps only the latest.
func (h *Handler) Webhook(c *gin.Context) {
	var req domain.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.ClienteID == "" || req.ChatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clienteId and chatId are required"})
		return
	}

	payload := req.Normalize()

	if !payload.IsLook() && payload.Question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required for Q&A responses"})
		return
	}

	h.responses.Put(payload.ChatID, payload)

	variant := "qa"
	message := "AI response stored"
	if payload.IsLook() {
		variant = "look"
		message = "look response stored"
		h.logger.Info("look batch ingested",
			zap.String("chat_id", payload.ChatID),
			zap.Int("remaining", payload.RemainingCount()),
		)
	} else {
		h.logger.Info("qa response ingested", zap.String("chat_id", payload.ChatID))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"variant": variant,
		"data":    payload,
	})
}

// Liveness answers GETs on the webhook path so the backend workflow can
// verify the endpoint before delivering.
func (h *Handler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "AI webhook endpoint is active",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Poll consumes the stored response for a conversation, if any. Each
// stored payload is handed to at most one caller.
func (h *Handler) Poll(c *gin.Context) {
	chatID := c.Query("chatId")
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chatId parameter is required"})
		return
	}

	entry, ok := h.responses.Take(chatID)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"hasResponse": false,
			"data":        nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"hasResponse": true,
		"data":        entry,
	})
}
