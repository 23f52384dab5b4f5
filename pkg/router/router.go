// Package router assembles the gin engine, middleware chain, and routes.
package router

import (
	"ai-persona-chat/backend/internal/api"
	"ai-persona-chat/backend/pkg/config"
	"ai-persona-chat/backend/pkg/di"
	"ai-persona-chat/backend/pkg/errors"
	"ai-persona-chat/backend/pkg/logger"
	"ai-persona-chat/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container, cfg *config.Config) *Router {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rateLimiterOpts := middleware.DefaultRateLimiterOptions()
	rateLimiterOpts.Limit = rate.Limit(cfg.Security.RateLimit)
	rateLimiterOpts.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, rateLimiterOpts)
	engine.Use(rateLimiter.Middleware())

	engine.Use(corsMiddleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	chatHandler := api.NewChatHandler(r.Container.ChatService)
	personaHandler := api.NewPersonaHandler(r.Container.PersonaService)
	metricsHandler := api.NewMetricsHandler(r.Container.MetricsService)
	healthHandler := api.NewHealthHandler(r.Container.DB)

	// Health check stays unauthenticated for load balancers.
	r.Engine.GET("/health", healthHandler.Health)

	v1 := r.Engine.Group("/api/v1")
	v1.Use(middleware.APIKeyAuth(r.Config.Security.APIKey))
	{
		v1.POST("/chat", chatHandler.HandleChat)

		v1.GET("/personas", personaHandler.ListPersonas)
		v1.POST("/personas", personaHandler.CreatePersona)
		v1.PUT("/personas/:id", personaHandler.UpdatePersona)

		v1.GET("/metrics/summary", metricsHandler.Summary)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization, Origin, X-API-Key, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
