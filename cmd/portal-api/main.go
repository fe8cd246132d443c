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
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"data-atlas/catalog-portal/catalog-portal-backend/internal/auth"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/changelog"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/config"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/person"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/question"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/reminders"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/role"
	"data-atlas/catalog-portal/catalog-portal-backend/internal/survey"
)

func main() {
	_ = godotenv.Load()

	// Initialize logger
	cfg, err := config.LoadConfig("config.json")
	logger := buildLogger(cfg)
	defer logger.Sync()

	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Security.JWTSecret == "" {
		logger.Fatal("JWT secret is not configured")
	}

	// Connect to database
	db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxConnections)
	}
	if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}

	// Collaborators
	personRepo := person.NewRepository(db)
	roleRepo := role.NewRepository(db)
	questionRepo := question.NewRepository(db)
	changelogService := changelog.NewService(changelog.NewRepository(db), logger)

	// Survey lifecycle engine
	surveyRepo := survey.NewRepository(db)
	responseRepo := survey.NewResponseRepository(db)
	surveyService := survey.NewService(surveyRepo, responseRepo, personRepo, roleRepo, questionRepo, changelogService, logger)
	surveyHandler := survey.NewHandler(surveyService, logger)

	// Overdue-instance scanner
	scanner := reminders.NewScanner(surveyRepo, changelogService, logger)
	if cfg.Reminders.Enabled {
		if err := scanner.Start(cfg.Reminders.Schedule); err != nil {
			logger.Fatal("Failed to start reminder scanner", zap.Error(err))
		}
	}

	// Setup Router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	api := router.Group("/api/v1")
	api.Use(auth.Middleware([]byte(cfg.Security.JWTSecret)))
	{
		surveyHandler.RegisterRoutes(api)
	}

	// Start Server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.Int("port", cfg.Server.Port))

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	scanner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}

func buildLogger(cfg *config.Config) *zap.Logger {
	if cfg != nil && cfg.Logging.Level == "debug" {
		logger, _ := zap.NewDevelopment()
		return logger
	}
	logger, _ := zap.NewProduction()
	return logger
}
