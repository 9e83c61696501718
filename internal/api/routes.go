package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"civiguard-backend-go/internal/auth"
	"civiguard-backend-go/internal/config"
	"civiguard-backend-go/internal/core"
	"civiguard-backend-go/internal/middleware"
	"civiguard-backend-go/internal/models"
)

// Dependencies are the services and adapters the routes are built from.
type Dependencies struct {
	UserService        core.UserService
	ComplaintService   core.ComplaintService
	AdminService       core.AdminService
	EnhancementService core.EnhancementService
	OAuthProvider      OAuthProvider
	StateStore         auth.StateStore
	Tokens             *auth.TokenManager
	Store              Pinger
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS) is applied to router in main before this is called.
func SetupRoutes(router *gin.Engine, appConfig *config.Config, logger *zap.Logger, deps Dependencies) {
	authMW := middleware.NewAuthMiddleware(deps.Tokens, deps.UserService, logger)

	authHandler := NewAuthHandler(deps.OAuthProvider, deps.StateStore, deps.Tokens, deps.UserService, appConfig.FrontendURL, logger)
	complaintHandler := NewComplaintHandler(deps.ComplaintService, logger)
	adminHandler := NewAdminHandler(deps.AdminService, deps.ComplaintService, logger)
	assistHandler := NewAssistHandler(deps.EnhancementService, logger)
	clientHandler := NewClientHandler(appConfig, deps.Store, logger)

	apiGroup := router.Group("/api", middleware.ClientInfo())
	{
		authGroup := apiGroup.Group("/auth")
		{
			authGroup.GET("/google", authHandler.GoogleLogin)
			authGroup.GET("/google/callback", authHandler.GoogleCallback)
			authGroup.GET("/me", authMW.VerifyToken(), authHandler.Me)
		}

		complaintsGroup := apiGroup.Group("/complaints")
		{
			complaintsGroup.POST("", authMW.VerifyToken(), complaintHandler.CreateComplaint)
			complaintsGroup.GET("", authMW.VerifyToken(), complaintHandler.ListComplaints)
			complaintsGroup.GET("/my-reports", authMW.VerifyToken(), complaintHandler.ListMyComplaints)
			complaintsGroup.GET("/public", authMW.OptionalToken(), complaintHandler.ListPublicComplaints)
			complaintsGroup.GET("/:id", authMW.OptionalToken(), complaintHandler.GetComplaint)
			complaintsGroup.PATCH("/:id", authMW.VerifyToken(), complaintHandler.UpdateComplaint)
			complaintsGroup.POST("/:id/comments", authMW.VerifyToken(), complaintHandler.AddComment)
		}

		adminGroup := apiGroup.Group("/admin", authMW.VerifyToken(), middleware.RequireRole(models.RoleAdmin))
		{
			adminGroup.GET("/officers", adminHandler.ListOfficers)
			adminGroup.GET("/stats", adminHandler.GetStats)
			adminGroup.GET("/complaints", adminHandler.ListComplaints)
			adminGroup.POST("/email-drafts", adminHandler.DraftEmail)
			adminGroup.POST("/emails", adminHandler.SendEmail)
		}

		assistGroup := apiGroup.Group("/assist", authMW.VerifyToken())
		{
			assistGroup.POST("/analyze", assistHandler.Analyze)
			assistGroup.POST("/validate", assistHandler.Validate)
			assistGroup.POST("/enhance", assistHandler.Enhance)
			assistGroup.POST("/geocode", assistHandler.Geocode)
		}

		apiGroup.GET("/client-config", clientHandler.ClientConfig)
	}

	router.GET("/health", clientHandler.Health)
	router.NoRoute(clientHandler.NoRoute)

	logger.Info("API routes configured successfully under /api and /health.",
		zap.Bool("spa", appConfig.StaticDir != ""),
	)
}
