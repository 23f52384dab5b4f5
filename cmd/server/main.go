package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-persona-chat/backend/internal/models"
	"ai-persona-chat/backend/pkg/config"
	"ai-persona-chat/backend/pkg/di"
	"ai-persona-chat/backend/pkg/logger"
	"ai-persona-chat/backend/pkg/observability"
	"ai-persona-chat/backend/pkg/router"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.New()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	appLog := logger.New(logConfig)
	logger.SetGlobal(appLog)

	appLog.Info("starting application",
		"env", cfg.Server.Env,
		"llm_backend", cfg.LLM.Backend,
	)

	// Tracing and metrics exposition
	shutdownTracing := observability.SetupTracing("ai-persona-chat", appLog)
	defer shutdownTracing()
	shutdownMetrics := observability.ServeMetrics(cfg.Observability.MetricsAddr, appLog)
	defer shutdownMetrics()

	// Initialize database
	db, err := config.NewDB()
	if err != nil {
		appLog.LogError(err, "failed to initialize database")
		os.Exit(1)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&models.Persona{}, &models.Message{}); err != nil {
		appLog.LogError(err, "failed to migrate database")
		os.Exit(1)
	}

	// Composite index for the per-persona metrics breakdown
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_messages_persona_created ON messages(persona_id, created_at)").Error; err != nil {
		appLog.LogError(err, "failed to create message index", "index", "idx_messages_persona_created")
	}

	// Initialize dependency injection container
	container, err := di.New(db, cfg, appLog)
	if err != nil {
		appLog.LogError(err, "failed to initialize dependency container")
		os.Exit(1)
	}

	// Seed the default persona on an empty database
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := container.PersonaService.EnsureDefault(seedCtx); err != nil {
		appLog.LogError(err, "failed to seed default persona")
	}
	cancelSeed()

	// Initialize and setup router
	r := router.New(container, cfg)
	r.SetupRoutes()

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     r.Engine,
		ReadTimeout: cfg.Server.Timeout,
		// Chat turns block on the provider call, so the write window must
		// outlast the provider deadline.
		WriteTimeout: cfg.Chat.ProviderTimeout + cfg.Server.Timeout,
	}

	// Start the server in a goroutine
	go func() {
		appLog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.LogError(err, "server failed to start")
			os.Exit(1)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLog.LogError(err, "server forced to shutdown")
	}

	appLog.Info("server exited")
}
