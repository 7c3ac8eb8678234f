package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/AmonApolonio/lookchat/internal/api"
	"github.com/AmonApolonio/lookchat/internal/api/ai"
	"github.com/AmonApolonio/lookchat/internal/api/chat"
	"github.com/AmonApolonio/lookchat/internal/config"
	"github.com/AmonApolonio/lookchat/internal/service"
	"github.com/AmonApolonio/lookchat/internal/store"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Correlation store: ephemeral by design, a restart drops pending
	// AI responses. The janitor bounds memory held for abandoned chats.
	responses := store.New(cfg.Store.TTL)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	go responses.Run(janitorCtx)

	// Initialize services
	dispatchService := service.NewDispatchService(cfg, logger)
	uploadService := service.NewUploadService(cfg, logger)
	productService := service.NewProductService(cfg, logger)

	// Initialize handlers
	aiHandler := ai.NewHandler(responses, logger)
	chatHandler := chat.NewHandler(dispatchService, uploadService, productService, logger)

	// Setup router
	router := api.SetupRouter(aiHandler, chatHandler, responses, logger, api.RouterConfig{
		AllowOrigins: []string{"*"},
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting lookchat server",
			zap.String("address", cfg.Address()),
			zap.Duration("store_ttl", cfg.Store.TTL),
			zap.Bool("dispatch_configured", cfg.DispatchConfigured()),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopJanitor()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
