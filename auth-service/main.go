package main

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"ultrabms-backend/auth-service/handlers"
	"ultrabms-backend/auth-service/middleware"
	"ultrabms-backend/auth-service/services"
	"ultrabms-backend/shared/config"
	"ultrabms-backend/shared/database"
	utils "ultrabms-backend/shared/utils/auth"
	"ultrabms-backend/shared/utils/cache"
	"ultrabms-backend/shared/utils/permission"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.GetConfig()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Redis is a fast-path only; the service runs without it
	if err := cache.InitCacheManager(); err != nil {
		log.Printf("Warning: Redis unavailable, revocation checks fall back to database: %v", err)
	}

	// Core components
	codec := utils.NewTokenCodecFromConfig()
	resolver := permission.NewResolver(permission.DefaultRolePermissions())
	ledger := services.NewRevocationLedger(database.GetDB())
	sessionStore := services.NewSessionStoreFromConfig(database.GetDB(), ledger)
	guard := middleware.NewSessionGuard(codec, ledger, sessionStore)

	authHandler := handlers.NewAuthHandler(database.GetDB(), codec, resolver, sessionStore, ledger)

	// Background sweeps: ledger prune + session timeout sweep
	cleanup := services.NewCleanupService(ledger, sessionStore, cfg.GetCleanupInterval())
	cleanup.Start()
	defer cleanup.Stop()

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(30 * time.Minute)

	generalConfig := middleware.RateLimitConfig{
		MaxRequests:   cfg.GetRateLimitMaxRequests(),
		TimeWindow:    time.Duration(cfg.GetRateLimitTimeWindowSeconds()) * time.Second,
		BlockDuration: time.Duration(cfg.GetRateLimitBlockDurationMinutes()) * time.Minute,
	}

	loginConfig := middleware.RateLimitConfig{
		MaxRequests:   intConfig(cfg.LoginRateLimitMaxAttempts, 5),
		TimeWindow:    time.Duration(intConfig(cfg.LoginRateLimitWindowSeconds, 300)) * time.Second,
		BlockDuration: time.Duration(intConfig(cfg.LoginRateLimitBlockMinutes, 30)) * time.Minute,
	}

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authenticated := guard.Middleware()
	sessionAccess := middleware.RequirePermission(resolver, "session:manage")

	// Auth endpoints
	router.POST("/api/auth/login", rateLimiter.LoginRateLimitMiddleware(loginConfig), authHandler.Login)
	router.POST("/api/auth/refresh", rateLimiter.RateLimitMiddleware(generalConfig), authHandler.Refresh)
	router.POST("/api/auth/logout", authenticated, authHandler.Logout)
	router.POST("/api/auth/logout-all", authenticated, authHandler.LogoutAll)
	router.POST("/api/auth/validate", rateLimiter.RateLimitMiddleware(generalConfig), authHandler.Validate)
	router.POST("/api/auth/change-password", authenticated, authHandler.ChangePassword)

	// Session management endpoints
	router.GET("/api/auth/sessions", authenticated, sessionAccess, authHandler.ListSessions)
	router.DELETE("/api/auth/sessions/:id", authenticated, sessionAccess, authHandler.TerminateSession)
	router.DELETE("/api/auth/sessions", authenticated, sessionAccess, authHandler.TerminateAllSessions)
	router.GET("/api/auth/login-history", authenticated, sessionAccess, authHandler.GetLoginHistory)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "auth",
		})
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := strings.Split(cfg.AuthServiceURL, ":")[2]
	log.Printf("Session & Token Authority starting on port %s...", port)
	router.Run(":" + port)
}

// intConfig is a helper to read integer configuration values
func intConfig(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: Could not convert config value '%s' to int, using default %d", value, defaultValue)
		return defaultValue
	}

	return intValue
}
