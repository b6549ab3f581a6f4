package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/finvault-backend/internal/ai"
	"github.com/finvault-backend/internal/config"
	"github.com/finvault-backend/internal/data/mongo"
	"github.com/finvault-backend/internal/data/postgres"
	"github.com/finvault-backend/internal/email_processor/consumer"
	"github.com/finvault-backend/internal/email_processor/gmail"
	"github.com/finvault-backend/internal/email_processor/outbox_poller"
	"github.com/finvault-backend/internal/email_processor/service"
	"github.com/finvault-backend/internal/extraction"
	"github.com/finvault-backend/internal/logger"
	"github.com/finvault-backend/internal/pipeline/components"
	"github.com/finvault-backend/internal/platform/messaging/consumers"
	"github.com/finvault-backend/internal/platform/messaging/producers"
	"github.com/finvault-backend/internal/platform/persistence"
	"github.com/finvault-backend/internal/platform/storage"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("email_processor")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Email Processor",
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

	// Initialize object storage for raw attachments
	objectStore, err := storage.NewGCSStore(appCtx, log, &cfg.Storage)
	if err != nil {
		log.Error("Failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	// Initialize the AI gateway
	gateway, err := ai.NewGeminiGateway(appCtx, log, &cfg.AI)
	if err != nil {
		log.Error("Failed to initialize AI gateway", "error", err)
		os.Exit(1)
	}

	// Initialize content extraction
	advanced := extraction.NewAdvancedBackend(log, &cfg.Extractor)
	builtin := extraction.NewBuiltinBackend(log)
	extractor := extraction.NewService(log, advanced, builtin, &cfg.Extractor)
	resolver := extraction.NewPasswordResolver(log, advanced, gateway)

	// Initialize repositories
	userRepo := postgres.NewUserRepository(log, postgresDB)
	assetRepo := postgres.NewAssetRepository(log, postgresDB)
	transactionRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	documentRepo := mongo.NewDocumentRepository(log, mongoDB.Database())

	// Initialize Kafka DLQ producer
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// dlqProducer might be nil if DLQTopic is not configured. Handler is nil-safe.

	// Base pipeline wrapped in a worker pool so one slow Gemini call does
	// not serialize the whole consumer.
	baseService := components.CreateProcessingService(
		postgresDB,
		gateway,
		assetRepo,
		transactionRepo,
		documentRepo,
		outboxRepo,
		log,
	)
	processingService, err := service.NewWorkerPoolProcessingService(
		baseService,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		log,
	)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize the email event handler
	attachments := service.NewAttachmentProcessor(objectStore, extractor, resolver, log)
	emailEventHandler := consumer.NewEmailEventHandler(
		log,
		processingService,
		attachments,
		dlqProducer,
	)

	// Initialize Kafka consumer for the email topic
	emailConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka, cfg.Kafka.EmailTopic, cfg.Kafka.ConsumerGroup)

	// Initialize outbox poller for notification delivery
	notificationProducer, err := producers.NewNotificationProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize notification Kafka producer", "error", err)
		os.Exit(1)
	}
	notificationPublisher := outbox_poller.NewNotificationPublisher(
		outboxRepo,
		notificationProducer,
		log,
	)
	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		outboxRepo,
		notificationPublisher,
		log,
	)

	// Create error channel for service errors
	errChan := make(chan error, 3)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start Kafka consumer in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Kafka consumer",
			"topic", cfg.Kafka.EmailTopic,
			"group", cfg.Kafka.ConsumerGroup,
		)
		if err := emailConsumer.Subscribe(appCtx, cfg.Kafka.EmailTopic, cfg.Kafka.ConsumerGroup, emailEventHandler.HandleMessage); err != nil {
			errChan <- fmt.Errorf("kafka consumer error: %w", err)
		}
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Start the Gmail poller when inbox polling is configured
	var emailJobProducer *producers.EmailJobProducer
	if cfg.Gmail.Enabled {
		emailJobProducer, err = producers.NewEmailJobProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize email job Kafka producer", "error", err)
			os.Exit(1)
		}

		gmailClient, err := gmail.NewAPIClient(appCtx, &cfg.Gmail)
		if err != nil {
			log.Error("Failed to initialize Gmail client", "error", err)
			os.Exit(1)
		}

		gmailPoller := gmail.NewPoller(
			&cfg.Gmail,
			gmailClient,
			userRepo,
			transactionRepo,
			objectStore,
			emailJobProducer,
			log,
		)

		wg.Add(1)
		go func() {
			defer wg.Done()
			gmailPoller.Start(appCtx)
		}()
	} else {
		log.Info("Gmail polling disabled, consuming the email topic only")
	}

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Drain the worker pool before closing its downstream dependencies
	log.Info("Shutting down worker pool",
		"running_workers", processingService.Running(),
		"in_flight", processingService.InFlight(),
	)
	processingService.Shutdown()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	log.Info("Waiting for services to stop...")
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	// Close Kafka producers and the consumer
	if dlqProducer != nil { // dlqProducer can be nil if DLQTopic was not configured
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	if emailJobProducer != nil {
		if err = emailJobProducer.Close(); err != nil {
			log.Error("Error closing email job Kafka producer", "error", err)
		}
	}

	if err = notificationProducer.Close(); err != nil {
		log.Error("Error closing notification Kafka producer", "error", err)
	}

	if err = emailConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serviceErr != nil {
		log.Error("Email Processor exited with error", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Email Processor shutdown complete")
}
