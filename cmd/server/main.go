// backend/cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/answerdesk/triage/backend/internal/api/handlers"
	"github.com/answerdesk/triage/backend/internal/config"
	"github.com/answerdesk/triage/backend/internal/database"
	"github.com/answerdesk/triage/backend/internal/health"
	"github.com/answerdesk/triage/backend/internal/middleware"
	"github.com/answerdesk/triage/backend/internal/repository"
	"github.com/answerdesk/triage/backend/internal/services"
	"github.com/answerdesk/triage/backend/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	// Initialize logger
	logger := utils.GetLogger()

	logger.Info("Starting triage API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Configuration validation failed")
	}

	// Initialize database manager
	dbConfig := &database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	dbManager, err := database.NewManager(dbConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	// Wire repositories, cache and services
	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	feedbackService := services.NewFeedbackService(repoManager, cache, logger)
	escalationService := services.NewEscalationService(repoManager, cache, logger)
	metricsService := services.NewMetricsService(repoManager, cache, logger, cfg.Metrics.RangeDays)
	healthChecker := health.NewHealthChecker(dbManager, logger)

	healthCtx, stopHealthChecks := context.WithCancel(context.Background())
	defer stopHealthChecks()
	go healthChecker.PeriodicHealthCheck(healthCtx, time.Minute)

	feedbackHandler := handlers.NewFeedbackHandler(feedbackService, logger)
	escalationHandler := handlers.NewEscalationHandler(escalationService, logger)
	metricsHandler := handlers.NewMetricsHandler(metricsService, logger)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	// Configure router
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute)
	router.Use(rateLimiter.RateLimit())

	router.GET("/health", healthHandler.HandleHealth)

	api := router.Group("/api")
	api.Use(middleware.Auth(cache, logger))
	{
		api.GET("/feedback", feedbackHandler.HandleList)
		api.GET("/feedback/:id", feedbackHandler.HandleGet)
		api.PATCH("/feedback/:id", feedbackHandler.HandleUpdate)

		api.POST("/escalations", escalationHandler.HandleCreate)
		api.GET("/escalations", escalationHandler.HandleList)
		api.GET("/escalations/:id", escalationHandler.HandleGet)
		api.PATCH("/escalations/:id", escalationHandler.HandleUpdate)

		api.GET("/metrics", metricsHandler.HandleReport)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Forced server shutdown")
	}

	logger.Info("Server stopped")
}
