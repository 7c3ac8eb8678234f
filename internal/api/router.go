package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/api/ai"
	"github.com/AmonApolonio/lookchat/internal/api/chat"
	"github.com/AmonApolonio/lookchat/internal/api/middleware"
	"github.com/AmonApolonio/lookchat/internal/store"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	AllowOrigins []string
}

// SetupRouter sets up the Gin router. The AI-facing endpoints (webhook
// ingestion, poll) and the client-facing endpoints (send, upload, product
// details) share the /api prefix the way the original client expects.
func SetupRouter(
	aiHandler *ai.Handler,
	chatHandler *chat.Handler,
	responses *store.ResponseStore,
	logger *zap.Logger,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.AllowOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "pending_responses": responses.Len()})
	})

	apiGroup := r.Group("/api")
	aiHandler.RegisterRoutes(apiGroup)
	chatHandler.RegisterRoutes(apiGroup)

	return r
}
