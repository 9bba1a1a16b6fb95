// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/sneakers-backend/internal/config"
	"github.com/javajoker/sneakers-backend/internal/handlers"
	"github.com/javajoker/sneakers-backend/internal/middleware"
	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/repository"
	"github.com/javajoker/sneakers-backend/internal/services"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

// maxMultipartMemory bounds the in-memory part of an upload form.
const maxMultipartMemory = 32 << 20

func Initialize(repos *repository.Repositories, images handlers.ImageStore, cfg *config.Config) *gin.Engine {
	// Initialize services
	authService := services.NewAuthService(repos.Users, cfg.JWT)
	catalogService := services.NewCatalogService(repos, images)
	orderService := services.NewOrderService(repos, cfg.Lifecycle)
	tradeService := services.NewTradeService(repos, images)
	dashboardService := services.NewDashboardService(repos)
	userService := services.NewUserService(repos)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	itemHandler := handlers.NewItemHandler(catalogService, images)
	orderHandler := handlers.NewOrderHandler(orderService)
	tradeHandler := handlers.NewTradeHandler(tradeService, images)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	userHandler := handlers.NewUserHandler(userService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()
	r.MaxMultipartMemory = maxMultipartMemory

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuditLogMiddleware(repos.AuditLogs))
	{
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}
		v1.GET("/auth/me", middleware.AuthRequired(), authHandler.Me)

		// Public catalog
		v1.GET("/items", itemHandler.ListItems)
		v1.GET("/items/:id", itemHandler.GetItem)
		v1.GET("/trade-items", itemHandler.ListTradeItems)
		v1.GET("/trade-items/:id", itemHandler.GetTradeItem)

		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			items := protected.Group("/items")
			{
				items.GET("/mine", itemHandler.ListMyItems)
				items.POST("", middleware.SellerRequired(), middleware.UploadRateLimit(), itemHandler.CreateItem)
				items.PATCH("/:id", middleware.SellerRequired(), middleware.UploadRateLimit(), itemHandler.UpdateItem)
				items.DELETE("/:id", middleware.SellerRequired(), itemHandler.DeleteItem)
			}

			tradeItems := protected.Group("/trade-items")
			{
				tradeItems.POST("", middleware.UploadRateLimit(), itemHandler.CreateTradeItem)
				tradeItems.PATCH("/:id", middleware.UploadRateLimit(), itemHandler.UpdateTradeItem)
				tradeItems.DELETE("/:id", itemHandler.DeleteTradeItem)
			}

			users := protected.Group("/users")
			{
				users.PATCH("/me", userHandler.UpdateMe)
				users.GET("", middleware.RoleRequired(models.UserRoleAdmin), userHandler.List)
				users.GET("/stats", middleware.RoleRequired(models.UserRoleAdmin), userHandler.Stats)
			}

			orders := protected.Group("/orders")
			{
				orders.POST("", orderHandler.Create)
				orders.GET("", orderHandler.List)
				orders.GET("/:id", orderHandler.Get)
				orders.PATCH("/:id", orderHandler.Transition)
			}

			trades := protected.Group("/trades")
			{
				trades.POST("", middleware.UploadRateLimit(), tradeHandler.Create)
				trades.GET("", tradeHandler.List)
				trades.PATCH("/:id", tradeHandler.UpdateStatus)
				trades.DELETE("/:id", tradeHandler.Delete)
			}

			protected.GET("/dashboard", middleware.SellerRequired(), dashboardHandler.Stats)
		}
	}

	return r
}
