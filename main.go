package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/srabbas1701/wealthlens/config"
	"github.com/srabbas1701/wealthlens/internal/cache"
	"github.com/srabbas1701/wealthlens/internal/database"
	"github.com/srabbas1701/wealthlens/internal/goldrate"
	"github.com/srabbas1701/wealthlens/internal/handlers"
	"github.com/srabbas1701/wealthlens/internal/middleware"
	"github.com/srabbas1701/wealthlens/internal/repository"
	"github.com/srabbas1701/wealthlens/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create context for initialization
	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize rate source adapters, primary first. Fallback order is the
	// order of this slice.
	ibjaClient := goldrate.NewIBJAClient()
	if cfg.IBJABaseURL != "" {
		ibjaClient = goldrate.NewIBJAClientWithBaseURL(cfg.IBJABaseURL)
	}
	metalsClient := goldrate.NewMetalsDevClient(cfg.MetalsDevAPIKey)
	if cfg.MetalsDevBaseURL != "" {
		metalsClient = goldrate.NewMetalsDevClientWithBaseURL(cfg.MetalsDevAPIKey, cfg.MetalsDevBaseURL)
	}
	sources := []goldrate.Source{ibjaClient, metalsClient}

	// Initialize caches
	memCache := cache.NewMemoryCache(5 * time.Minute)

	// Initialize repositories
	rateRepo := repository.NewRateRepository(db.Pool)
	holdingRepo := repository.NewHoldingRepository(db.Pool)
	portfolioRepo := repository.NewPortfolioRepository(db.Pool)

	// Initialize services
	normalizer := services.NewNormalizer(services.NormalizerConfig{
		MinPerGram:         cfg.RateMinPerGram,
		MaxPerGram:         cfg.RateMaxPerGram,
		SuspiciousDeltaPct: cfg.SuspiciousDeltaPct,
	})
	cascadeSvc := services.NewCascadeService(holdingRepo, portfolioRepo, cfg.CascadeWorkers)
	pipelineSvc := services.NewPipelineService(sources, normalizer, rateRepo, cascadeSvc, memCache)
	rateSvc := services.NewRateService(rateRepo, memCache)

	// Initialize handlers
	rateHandler := handlers.NewRateHandler(pipelineSvc, rateSvc)

	// Setup Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate pipeline routes
	router.POST("/api/rates/gold/refresh", middleware.RequireSchedulerKey(cfg.SchedulerKey), rateHandler.Refresh)
	router.GET("/api/rates/gold/latest", rateHandler.Latest)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	fmt.Println("Server exited")
}
