// Package chat exposes the endpoints the chat client calls: message
// dispatch, image upload, and product-detail lookup.
package chat

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/domain"
	"github.com/AmonApolonio/lookchat/internal/service"
)

// MaxUploadSize is the image upload size ceiling.
const MaxUploadSize = 10 << 20 // 10 MB

// Handler handles client-facing chat requests.
type Handler struct {
	dispatch *service.DispatchService
	upload   *service.UploadService
	products *service.ProductService
	logger   *zap.Logger
}

// NewHandler creates a new chat handler.
func NewHandler(
	dispatch *service.DispatchService,
	upload *service.UploadService,
	products *service.ProductService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		dispatch: dispatch,
		upload:   upload,
		products: products,
		logger:   logger,
	}
}

// RegisterRoutes registers client-facing routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/send-message", h.SendMessage)
	r.POST("/upload-photo", h.UploadPhoto)
	r.POST("/product-details", h.ProductDetails)
}

type sendMessageRequest struct {
	Message  string   `json:"message"`
	ChatID   string   `json:"chatId"`
	FilesURL []string `json:"filesUrl"`
}

// SendMessage forwards a user turn to the AI backend. The AI's answer
// arrives later via the webhook; this endpoint only acknowledges dispatch.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Message == "" || req.ChatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message and chatId are required"})
		return
	}

	err := h.dispatch.Send(c.Request.Context(), service.OutgoingMessage{
		Message:  req.Message,
		ChatID:   req.ChatID,
		FilesURL: req.FilesURL,
	})
	if err != nil {
		h.respondServiceError(c, err, "failed to send message to AI service")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "message sent to AI service",
		"chatId":  req.ChatID,
	})
}

// UploadPhoto validates and stores one image attachment, answering with
// its public URL. Validation failures never reach the storage backend.
func (h *Handler) UploadPhoto(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only image files are allowed"})
		return
	}

	if file.Size > MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file size must be less than 10MB"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}

	url, storedName, err := h.upload.Upload(c.Request.Context(), file.Filename, contentType, data)
	if err != nil {
		h.respondServiceError(c, err, "failed to upload file to storage service")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"image_url": url,
		"fileName":  storedName,
	})
}

type productDetailsRequest struct {
	PageToken string `json:"pageToken"`
}

// ProductDetails resolves an opaque page token into the search provider's
// product data, returned verbatim.
func (h *Handler) ProductDetails(c *gin.Context) {
	var req productDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.PageToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageToken is required"})
		return
	}

	data, err := h.products.Details(c.Request.Context(), req.PageToken)
	if err != nil {
		h.respondServiceError(c, err, "failed to fetch product details")
		return
	}

	c.JSON(http.StatusOK, data)
}

// respondServiceError maps service errors to the error taxonomy: missing
// configuration is a 500, upstream rejections propagate the upstream
// status, anything else is a generic 500.
func (h *Handler) respondServiceError(c *gin.Context, err error, message string) {
	var upstream *domain.UpstreamError

	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		h.logger.Error("missing server configuration", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server configuration error"})
	case errors.As(err, &upstream):
		c.JSON(upstream.Status, gin.H{"error": message})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": message})
	}
}
