// Package di wires the application dependency graph. Everything is
// constructed once here and passed down explicitly; no component reaches for
// ambient global state.
package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"ai-persona-chat/backend/internal/llm"
	"ai-persona-chat/backend/internal/safety"
	"ai-persona-chat/backend/internal/service"
	"ai-persona-chat/backend/internal/store"
	"ai-persona-chat/backend/pkg/cache"
	"ai-persona-chat/backend/pkg/config"
	"ai-persona-chat/backend/pkg/logger"
	"ai-persona-chat/backend/pkg/observability"
)

// Container holds all the dependencies for the application
type Container struct {
	DB             *gorm.DB
	Logger         *logger.Logger
	Cache          cache.Cache
	Provider       llm.Provider
	ChatMetrics    *observability.ChatMetrics
	PersonaService *service.PersonaService
	MetricsService *service.MetricsService
	ChatService    *service.ChatService
}

// New creates a new dependency injection container.
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Container, error) {
	var personaCache cache.Cache
	switch cfg.Cache.Backend {
	case "redis":
		personaCache = cache.NewRedisCache(cfg.Cache.RedisAddr, log)
	default:
		personaCache = cache.NewMemoryCache(cfg.Cache.PurgeWindow)
	}

	personaStore := store.NewPersonaStore(db, personaCache, cfg.Cache.TTL)
	messageStore := store.NewMessageStore(db)

	provider, err := llm.NewProvider(llm.Config{
		Backend: cfg.LLM.Backend,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create reply provider: %w", err)
	}

	chatMetrics := observability.NewChatMetrics(prometheus.DefaultRegisterer)

	personaService := service.NewPersonaService(personaStore, log)
	metricsService := service.NewMetricsService(messageStore)
	chatService := service.NewChatService(
		personaStore,
		messageStore,
		provider,
		safety.Default(),
		log,
		chatMetrics,
		cfg.Chat.ProviderTimeout,
	)

	return &Container{
		DB:             db,
		Logger:         log,
		Cache:          personaCache,
		Provider:       provider,
		ChatMetrics:    chatMetrics,
		PersonaService: personaService,
		MetricsService: metricsService,
		ChatService:    chatService,
	}, nil
}
