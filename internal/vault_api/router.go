package vault_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finvault-backend/internal/vault_api/handler"
	"github.com/finvault-backend/internal/vault_api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	jwtSecret string,
	authHandler *handler.AuthHandler,
	assetHandler *handler.AssetHandler,
	transactionHandler *handler.TransactionHandler,
	documentHandler *handler.DocumentHandler,
	uploadHandler *handler.UploadHandler,
	familyHandler *handler.FamilyHandler,
	wsHandler *handler.WSHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Registration and login are the only unauthenticated endpoints
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		secured := v1.Group("")
		secured.Use(middleware.Auth(jwtSecret))
		{
			// Asset operations
			assets := secured.Group("/assets")
			{
				assets.GET("", assetHandler.List)
				assets.GET("/stats", assetHandler.Stats)
				assets.GET("/:id", assetHandler.GetByID)
				assets.PATCH("/:id", assetHandler.Update)
				assets.PUT("/:id/approve", assetHandler.Approve)
				assets.DELETE("/:id", assetHandler.Delete)
				assets.POST("/:id/share", familyHandler.ShareAsset)
			}

			// Synchronous re-extraction against an existing asset
			secured.PUT("/edit-asset/:assetId", assetHandler.EditAsset)

			// Transaction operations
			transactions := secured.Group("/transactions")
			{
				transactions.GET("", transactionHandler.List)
				transactions.GET("/:id", transactionHandler.GetByID)
				transactions.DELETE("/:id", transactionHandler.Delete)
			}

			// Document record operations
			documents := secured.Group("/documents")
			{
				documents.POST("/upload", uploadHandler.Upload)
				documents.GET("", documentHandler.List)
				documents.GET("/:id", documentHandler.GetByID)
			}

			// Family and sharing operations
			families := secured.Group("/families")
			{
				families.POST("", familyHandler.Create)
				families.GET("", familyHandler.List)
				families.POST("/:id/members", familyHandler.AddMember)
				families.GET("/:id/members", familyHandler.ListMembers)
				families.GET("/:id/assets", familyHandler.ListAssets)
			}

			// Websocket notification feed
			secured.GET("/ws", wsHandler.Connect)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
