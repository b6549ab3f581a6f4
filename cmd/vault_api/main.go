package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/finvault-backend/internal/ai"
	"github.com/finvault-backend/internal/config"
	"github.com/finvault-backend/internal/data/mongo"
	"github.com/finvault-backend/internal/data/postgres"
	"github.com/finvault-backend/internal/extraction"
	"github.com/finvault-backend/internal/logger"
	"github.com/finvault-backend/internal/pipeline/components"
	"github.com/finvault-backend/internal/platform/messaging/consumers"
	"github.com/finvault-backend/internal/platform/persistence"
	"github.com/finvault-backend/internal/platform/storage"
	"github.com/finvault-backend/internal/vault_api"
	"github.com/finvault-backend/internal/vault_api/service"
	"github.com/finvault-backend/internal/vault_api/ws"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("vault_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Vault API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize object storage for direct uploads
	objectStore, err := storage.NewGCSStore(appCtx, log, &cfg.Storage)
	if err != nil {
		log.Error("Failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	// Initialize the AI gateway used by the synchronous upload pipeline
	gateway, err := ai.NewGeminiGateway(appCtx, log, &cfg.AI)
	if err != nil {
		log.Error("Failed to initialize AI gateway", "error", err)
		os.Exit(1)
	}

	// Initialize content extraction for uploaded documents
	advanced := extraction.NewAdvancedBackend(log, &cfg.Extractor)
	builtin := extraction.NewBuiltinBackend(log)
	extractor := extraction.NewService(log, advanced, builtin, &cfg.Extractor)
	resolver := extraction.NewPasswordResolver(log, advanced, gateway)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(log, postgresDB)
	assetRepo := postgres.NewAssetRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	familyRepo := postgres.NewFamilyRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	documentRepo := mongo.NewDocumentRepository(log, mongoDB.Database())

	// The API runs the document pipeline synchronously: uploads and
	// edit-asset requests block until extraction and persistence finish.
	processingService := components.CreateProcessingService(
		postgresDB,
		gateway,
		assetRepo,
		transactionRepo,
		documentRepo,
		outboxRepo,
		log,
	)

	// Initialize services
	services := vault_api.Services{
		Auth:        service.NewAuthService(userRepo, &cfg.Auth),
		Asset:       service.NewAssetService(assetRepo, processingService),
		Transaction: service.NewTransactionService(transactionRepo, documentRepo, log),
		Document:    service.NewDocumentService(documentRepo),
		Upload:      service.NewUploadService(objectStore, extractor, resolver, processingService, log),
		Family:      service.NewFamilyService(familyRepo, userRepo, assetRepo),
	}

	// Initialize the websocket hub and feed it from the notification topic
	hub := ws.NewHub(log)
	go hub.Run(appCtx)

	notificationConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka, cfg.Kafka.NotificationTopic, cfg.Kafka.ConsumerGroup)

	// Create error channel for server errors
	errChan := make(chan error, 2)

	go func() {
		log.Info("Starting notification consumer",
			"topic", cfg.Kafka.NotificationTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := notificationConsumer.Subscribe(appCtx, cfg.Kafka.NotificationTopic, cfg.Kafka.ConsumerGroup, hub.HandleNotification); err != nil {
			errChan <- fmt.Errorf("notification consumer error: %w", err)
		}
	}()

	// Initialize REST server
	server := vault_api.NewServer(log, cfg, services, hub)
	log.Info("REST server initialized")

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so no new pipeline work arrives
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if err = notificationConsumer.Close(); err != nil {
		log.Error("Error closing notification consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("Vault API exited with error", "error", serverErr)
		os.Exit(1)
	}
	log.Info("Vault API shutdown complete")
}
