// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/codehaven/codehaven-backend/internal/config"
	"github.com/codehaven/codehaven-backend/internal/handlers"
	"github.com/codehaven/codehaven-backend/internal/middleware"
	"github.com/codehaven/codehaven-backend/internal/purchase"
	"github.com/codehaven/codehaven-backend/internal/services"
	"github.com/codehaven/codehaven-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config, tasks *purchase.TaskQueue) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	projectService := services.NewProjectService(db)
	libraryService := services.NewLibraryService(db)
	contactService := services.NewContactService(db, notificationService)
	paymentService := services.NewPaymentService(db, cfg, notificationService)
	adminService := services.NewAdminService(db, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	projectHandler := handlers.NewProjectHandler(projectService, libraryService, storageService)
	purchaseHandler := handlers.NewPurchaseHandler(db, cfg, tasks, projectService, libraryService, paymentService, storageService, notificationService)
	libraryHandler := handlers.NewLibraryHandler(libraryService)
	contactHandler := handlers.NewContactHandler(contactService)
	adminHandler := handlers.NewAdminHandler(adminService, paymentService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.POST("/change-password", middleware.AuthRequired(), authHandler.ChangePassword)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Catalog routes
		projects := v1.Group("/projects")
		{
			projects.GET("", middleware.OptionalAuth(), projectHandler.GetProjects)
			projects.GET("/featured", projectHandler.GetFeaturedProjects)
			projects.GET("/trending", projectHandler.GetTrendingProjects)
			projects.GET("/categories", projectHandler.GetCategories)
			projects.GET("/:id", middleware.OptionalAuth(), projectHandler.GetProject)
			projects.GET("/:id/reviews", projectHandler.GetProjectReviews)
			projects.POST("/:id/reviews", middleware.AuthRequired(), projectHandler.CreateReview)
		}

		// Checkout routes
		purchases := v1.Group("/purchases")
		{
			purchases.POST("/validate-details", purchaseHandler.ValidateDetails)

			protected := purchases.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", purchaseHandler.Checkout)
				protected.POST("/payment-intent", purchaseHandler.CreatePaymentIntent)
				protected.POST("/:id/download", middleware.DownloadRateLimit(), purchaseHandler.Download)
			}
		}

		// Customer dashboard routes
		me := v1.Group("/me")
		me.Use(middleware.AuthRequired())
		{
			me.GET("/purchases", libraryHandler.GetPurchases)
			me.GET("/purchases/:id", libraryHandler.GetPurchase)
			me.GET("/wishlist", libraryHandler.GetWishlist)
			me.POST("/wishlist/:projectId", libraryHandler.ToggleWishlist)
			me.GET("/cart", libraryHandler.GetCart)
			me.POST("/cart/:projectId", libraryHandler.AddToCart)
			me.DELETE("/cart/:projectId", libraryHandler.RemoveFromCart)
			me.DELETE("/cart", libraryHandler.ClearCart)
			me.PUT("/profile", libraryHandler.UpdateProfile)
			me.DELETE("/reviews/:id", libraryHandler.DeleteReview)
		}

		// Contact routes
		contact := v1.Group("/contact")
		{
			contact.POST("", middleware.ContactRateLimit(), contactHandler.CreateSubmission)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.GetDashboard)

			// User management
			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", adminHandler.GetUsers)
				adminUsers.PATCH("/:id/status", adminHandler.UpdateUserStatus)
			}

			// Catalog management
			adminProjects := admin.Group("/projects")
			{
				adminProjects.POST("", projectHandler.CreateProject)
				adminProjects.PUT("/:id", projectHandler.UpdateProject)
				adminProjects.DELETE("/:id", projectHandler.DeleteProject)
				adminProjects.POST("/:id/files", projectHandler.UploadProjectFile)
				adminProjects.DELETE("/:id/files/:fileId", projectHandler.DeleteProjectFile)
			}

			// Sales management
			adminPurchases := admin.Group("/purchases")
			{
				adminPurchases.GET("", adminHandler.GetPurchases)
				adminPurchases.POST("/:id/refund", adminHandler.RefundPurchase)
			}

			// Contact triage
			adminContact := admin.Group("/contact")
			{
				adminContact.GET("", contactHandler.GetSubmissions)
				adminContact.GET("/stats", contactHandler.GetQueueStats)
				adminContact.GET("/:id", contactHandler.GetSubmission)
				adminContact.PATCH("/:id", contactHandler.UpdateSubmission)
			}

			// Audit trail
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
