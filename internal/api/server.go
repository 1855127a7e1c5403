package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/familynest/admin-backend/internal/auth"
	"github.com/familynest/admin-backend/internal/config"
	"github.com/familynest/admin-backend/internal/database"
)

// Server holds the admin API's shared dependencies: the connection pool, the
// auth service, and the loaded configuration. One instance is constructed at
// startup and shared by reference across request handlers.
type Server struct {
	DB   *sqlx.DB
	Auth *auth.Service
	Cfg  config.Config

	// Tracing must be set before Routes is called: gin combines handler
	// chains at registration time, so middleware attached afterwards never
	// runs for already-registered routes.
	Tracing bool
}

// New constructs a Server.
func New(db *sqlx.DB, authSvc *auth.Service, cfg config.Config) *Server {
	return &Server{DB: db, Auth: authSvc, Cfg: cfg}
}

// Routes wires the full HTTP surface onto a gin engine.
func Routes(s *Server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":   "Internal server error",
					"message": "An unexpected error occurred",
				})
			}
		}()
		c.Next()
	})
	if s.Tracing {
		router.Use(otelgin.Middleware("familynest-admin-api"))
	}
	router.Use(MetricsMiddleware())
	router.Use(RequestIDMiddleware())

	corsCfg := cors.Config{
		AllowOrigins:     []string{s.Cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   "FamilyNest Admin API",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 300*time.Millisecond)
		defer cancel()
		if err := s.DB.DB.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/login", s.RateLimitMiddleware(), s.Login)
		authRoutes.GET("/me", s.RequireAuth(), s.GetMe)
		authRoutes.POST("/verify", s.RequireAuth(), s.VerifyToken)
		authRoutes.POST("/logout", s.RequireAuth(), s.Logout)
	}

	userRoutes := api.Group("/users")
	userRoutes.Use(s.RequireAuth())
	{
		userRoutes.GET("/search", s.SearchUsers)
		userRoutes.GET("/stats", s.GetUserStats)
		userRoutes.GET("/:id", s.GetUserByID)
		userRoutes.GET("/:id/activity", s.GetUserActivity)
		userRoutes.PUT("/:id/subscription", s.UpdateUserSubscription)
		userRoutes.POST("/:id/extend-trial", s.ExtendUserTrial)
		userRoutes.DELETE("/:id", s.DeleteUser)
	}

	notifRoutes := api.Group("/notifications")
	notifRoutes.Use(s.RequireAuth())
	{
		notifRoutes.GET("", s.ListNotifications)
		notifRoutes.POST("", s.CreateNotification)
		notifRoutes.PUT("/:id", s.UpdateNotification)
		notifRoutes.DELETE("/:id", s.DeleteNotification)
	}

	settingRoutes := api.Group("/settings")
	settingRoutes.Use(s.RequireAuth())
	{
		settingRoutes.GET("", s.ListSettings)
		settingRoutes.GET("/:key", s.GetSetting)
		settingRoutes.PUT("/subscription-price", RequireRole(database.RoleSuperAdmin), s.UpdateSubscriptionPrice)
		settingRoutes.PUT("/:key", RequireRole(database.RoleSuperAdmin), s.UpdateSetting)
		settingRoutes.POST("", RequireRole(database.RoleSuperAdmin), s.CreateSetting)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Endpoint not found"})
	})

	return router
}
