package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Harsh-BH/codepractice/internal/delivery/http/middleware"
	"github.com/Harsh-BH/codepractice/internal/language"
)

// RouterConfig collects the handlers and settings the router needs.
type RouterConfig struct {
	Code         *CodeHandler
	Submissions  *SubmissionHandler
	Stream       *WebSocketHandler
	Health       *HealthHandler
	Registry     *language.Registry
	JWTSecret    []byte
	JWTIssuer    string
	RateLimit    int
	MaxBodyBytes int64
	Logger       *zap.Logger
}

// NewRouter creates and configures the Gin router with all routes and middleware.
// ctx bounds the rate limiter's background sweeper.
func NewRouter(ctx context.Context, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(cfg.Logger))

	// Unauthenticated
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", cfg.Health.Health)
	router.GET("/languages", NewLanguageHandler(cfg.Registry).List)

	api := router.Group("/")
	api.Use(middleware.RateLimiter(ctx, cfg.RateLimit))
	api.Use(middleware.BodySizeLimit(cfg.MaxBodyBytes))
	api.Use(middleware.Auth(cfg.JWTSecret, cfg.JWTIssuer))
	{
		api.POST("/code/submit", cfg.Code.Submit)
		api.GET("/code/result/:token", cfg.Code.Result)
		api.GET("/code/result/:token/stream", cfg.Stream.Stream)
		api.POST("/code/execute", cfg.Code.Execute)
		api.GET("/code/stats", cfg.Code.Stats)
		api.POST("/submit-with-tests", cfg.Code.SubmitWithTests)

		api.GET("/submissions/:id", cfg.Submissions.GetByID)
		api.GET("/progress", cfg.Submissions.Progress)
	}

	return router
}
