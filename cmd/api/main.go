package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ashleeec/quibly/internal/config"
	"github.com/ashleeec/quibly/internal/database"
	"github.com/ashleeec/quibly/internal/handler"
	"github.com/ashleeec/quibly/internal/middleware"
	"github.com/ashleeec/quibly/internal/models"
	"github.com/ashleeec/quibly/internal/repository"
	"github.com/ashleeec/quibly/internal/router"
	"github.com/ashleeec/quibly/internal/service"
	"github.com/ashleeec/quibly/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.Connect(cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.Assignment{}, &models.Session{}, &models.Message{}, &models.Assessment{}); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var cache *redis.Client
	if cfg.RedisURL != "" {
		cache, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer cache.Close()
	}

	openAIClient, err := ai.NewOpenAIClient(ai.OpenAIConfig{
		APIKey: cfg.OpenAIAPIKey,
		Model:  cfg.OpenAIModel,
		Logger: logger,
	})
	if err != nil {
		log.Fatalf("failed to create openai client: %v", err)
	}
	aiClient := ai.WithRetry(openAIClient, ai.RetryConfig{MaxAttempts: cfg.AIMaxRetries})

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	dialogueService := service.NewDialogueService(aiClient, service.DialogueConfig{
		MaxHistoryTurns: cfg.MaxHistoryTurns,
		Timeout:         cfg.AITimeout,
	}, logger)
	sessionService := service.NewSessionService(sessionRepo, messageRepo, assignmentRepo, dialogueService, validate, service.SessionConfig{
		CloseOnSignOff: cfg.CloseOnSignOff,
	}, logger)
	assessmentService := service.NewAssessmentService(assessmentRepo, sessionRepo, messageRepo, assignmentRepo, aiClient, cfg.AITimeout, logger)
	dashboardService := service.NewDashboardService(assignmentRepo, sessionRepo, messageRepo, assessmentService, aiClient, cache, cfg.ReportCacheTTL, cfg.AITimeout, logger)

	assignmentHandler := handler.NewAssignmentHandler(assignmentService, dashboardService, validate, logger)
	sessionHandler := handler.NewSessionHandler(sessionService, assessmentService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler: assignmentHandler,
		SessionHandler:    sessionHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
