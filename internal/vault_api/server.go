package vault_api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finvault-backend/internal/config"
	"github.com/finvault-backend/internal/vault_api/handler"
	"github.com/finvault-backend/internal/vault_api/service"
	"github.com/finvault-backend/internal/vault_api/ws"
)

// Services bundles everything the HTTP surface needs
type Services struct {
	Auth        service.AuthService
	Asset       service.AssetService
	Transaction service.TransactionService
	Document    service.DocumentService
	Upload      service.UploadService
	Family      service.FamilyService
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, services Services, hub *ws.Hub) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	authHandler := handler.NewAuthHandler(log, services.Auth)
	assetHandler := handler.NewAssetHandler(log, services.Asset)
	transactionHandler := handler.NewTransactionHandler(log, services.Transaction)
	documentHandler := handler.NewDocumentHandler(log, services.Document)
	uploadHandler := handler.NewUploadHandler(log, services.Upload, cfg.Server.MaxUploadBytes)
	familyHandler := handler.NewFamilyHandler(log, services.Family)
	wsHandler := handler.NewWSHandler(log, hub)

	setupRouter(log, httpRouter, cfg.Auth.JWTSecret,
		authHandler, assetHandler, transactionHandler,
		documentHandler, uploadHandler, familyHandler, wsHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server with a timeout
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.httpServer.WriteTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}

	return nil
}
