package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"stonequote/internal/config"
	"stonequote/internal/database"
	"stonequote/internal/handlers"
	"stonequote/internal/logger"
	"stonequote/internal/migrations"
	"stonequote/internal/pricing"
	"stonequote/internal/redis"
	"stonequote/internal/repository"
	"stonequote/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer appLog.Sync()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("failed to connect to database", "error", err)
	}

	if err := migrations.SeedCatalog(db, appLog); err != nil {
		appLog.Warn("failed to seed default catalog", "error", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		appLog.Fatal("failed to connect to Redis", "error", err)
	}
	defer redisClient.Close()

	// Initialize repositories
	quoteRepo := repository.NewQuoteRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	optimizerRepo := repository.NewOptimizerRepository(db)

	// Initialize engine and services
	engine := pricing.NewEngine(appLog)
	quoteService := services.NewQuoteService(
		quoteRepo, catalogRepo, ruleRepo, optimizerRepo,
		redisClient, engine, cfg, appLog,
	)

	// Initialize handlers
	quoteHandler := handlers.NewQuoteHandler(quoteService)

	// Setup routes
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/quotes/:id/calculate", quoteHandler.Calculate)
		api.GET("/quotes/:id/calculation", quoteHandler.GetCalculation)
	}

	// Start server
	appLog.Info("server starting", "port", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		appLog.Fatal("failed to start server", "error", err)
	}
}
